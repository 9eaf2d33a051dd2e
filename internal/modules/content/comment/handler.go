package comment

import (
	"github.com/bloppost/core/internal/middleware"
	"github.com/bloppost/core/internal/models"
	"github.com/bloppost/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	rg.GET("/comments", h.list)
	rg.GET("/posts/:id/comments", h.listByPost)

	authed := rg.Group("", auth)
	authed.POST("/posts/:id/comments", h.create)
	authed.DELETE("/comments/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	comments, err := h.svc.List()
	if err != nil {
		response.FromError(c, err)
		return
	}
	out := make([]gin.H, 0, len(comments))
	for i := range comments {
		out = append(out, toCommentResponse(&comments[i]))
	}
	response.OK(c, out)
}

func (h *Handler) listByPost(c *gin.Context) {
	comments, err := h.svc.ListByPost(c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	out := make([]gin.H, 0, len(comments))
	for i := range comments {
		out = append(out, toCommentResponse(&comments[i]))
	}
	response.OK(c, out)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateCommentDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	comment, err := h.svc.Create(c.Param("id"), middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, toCommentResponse(comment))
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id"), middleware.CurrentUserID(c)); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"message": "Comment deleted successfully"})
}

func toCommentResponse(comment *models.CommentModel) gin.H {
	out := gin.H{
		"id":         comment.ID,
		"content":    comment.Content,
		"post_id":    comment.PostID,
		"user_id":    comment.UserID,
		"created_at": comment.CreatedAt,
	}
	if comment.User != nil {
		out["author"] = gin.H{
			"id":       comment.User.ID,
			"username": comment.User.Username,
		}
	}
	return out
}
