package user

import (
	"github.com/bloppost/core/internal/middleware"
	"github.com/bloppost/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// Handler handles user HTTP requests. Registration lives in the auth module.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	users := rg.Group("/users")
	users.GET("", h.list)
	users.GET("/:id", h.get)

	authed := users.Group("", authMW)
	authed.PATCH("/:id", h.update)
	authed.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	users, err := h.svc.List()
	if err != nil {
		response.FromError(c, err)
		return
	}
	items := make([]userResponse, len(users))
	for i, u := range users {
		items[i] = toResponse(&u)
	}
	response.OK(c, items)
}

func (h *Handler) get(c *gin.Context) {
	u, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, toResponse(u))
}

// update PATCH /users/:id  [auth, self]
func (h *Handler) update(c *gin.Context) {
	id := c.Param("id")
	if middleware.CurrentUserID(c) != id {
		response.Forbidden(c, "cannot modify another user")
		return
	}

	var dto UpdateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.Update(id, &dto)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, toResponse(u))
}

// delete DELETE /users/:id  [auth, self]
func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	if middleware.CurrentUserID(c) != id {
		response.Forbidden(c, "cannot delete another user")
		return
	}
	if err := h.svc.Delete(id); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"message": "User deleted successfully"})
}
