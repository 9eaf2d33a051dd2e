package tag

import (
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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc, author gin.HandlerFunc) {
	rg.GET("/tags", h.list)
	rg.GET("/tags/:id", h.get)

	authed := rg.Group("", auth)
	authed.POST("/tags", author, h.create)
	authed.PATCH("/tags/:id", author, h.update)
	authed.DELETE("/tags/:id", author, h.remove)
}

func (h *Handler) list(c *gin.Context) {
	tags, err := h.svc.List()
	if err != nil {
		response.FromError(c, err)
		return
	}
	out := make([]gin.H, 0, len(tags))
	for i := range tags {
		out = append(out, toTagResponse(&tags[i]))
	}
	response.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	tag, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, toTagResponse(tag))
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateTagDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	tag, err := h.svc.Create(&dto)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, toTagResponse(tag))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateTagDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	tag, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, toTagResponse(tag))
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"message": "Tag deleted successfully"})
}

func toTagResponse(tag *models.TagModel) gin.H {
	out := gin.H{
		"id":          tag.ID,
		"name":        tag.Name,
		"category_id": tag.CategoryID,
		"created_at":  tag.CreatedAt,
	}
	if tag.Category != nil {
		out["category"] = gin.H{"id": tag.Category.ID, "name": tag.Category.Name}
	}
	return out
}
