package auth

import (
	"github.com/bloppost/core/internal/middleware"
	"github.com/bloppost/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// Handler handles registration and authentication HTTP requests.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/users", h.register)

	auth := rg.Group("/auth")
	auth.POST("/login", h.login)

	authed := auth.Group("", authMW)
	authed.POST("/logout", h.logout)
	authed.GET("/sessions", h.sessions)
	authed.DELETE("/sessions", h.revokeOtherSessions)
	authed.DELETE("/sessions/:id", h.revokeSession)
}

// register POST /users
func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "missing required fields")
		return
	}
	u, err := h.svc.Register(&dto)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, toUserResponse(u))
}

// login POST /auth/login
func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "missing required fields")
		return
	}
	token, u, err := h.svc.Login(dto.Identifier, dto.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, loginResponse{Token: token, User: toUserResponse(u)})
}

// logout POST /auth/logout  [auth]
func (h *Handler) logout(c *gin.Context) {
	err := h.svc.Logout(middleware.CurrentUserID(c), middleware.CurrentSessionID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

// sessions GET /auth/sessions  [auth]
func (h *Handler) sessions(c *gin.Context) {
	sessions, err := h.svc.Sessions(middleware.CurrentUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, sessions)
}

// revokeOtherSessions DELETE /auth/sessions  [auth]
func (h *Handler) revokeOtherSessions(c *gin.Context) {
	err := h.svc.RevokeOtherSessions(middleware.CurrentUserID(c), middleware.CurrentSessionID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

// revokeSession DELETE /auth/sessions/:id  [auth]
func (h *Handler) revokeSession(c *gin.Context) {
	err := h.svc.RevokeSession(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}
