package category

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
	rg.GET("/categories", h.list)
	rg.GET("/categories/:id", h.get)

	authed := rg.Group("", auth)
	authed.POST("/categories", author, h.create)
	authed.PATCH("/categories/:id", author, h.update)
	authed.DELETE("/categories/:id", author, h.remove)
}

func (h *Handler) list(c *gin.Context) {
	cats, err := h.svc.List()
	if err != nil {
		response.FromError(c, err)
		return
	}
	out := make([]gin.H, 0, len(cats))
	for i := range cats {
		out = append(out, toCategoryResponse(&cats[i]))
	}
	response.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	cat, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, toCategoryResponse(cat))
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	cat, err := h.svc.Create(&dto)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, toCategoryResponse(cat))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	cat, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, toCategoryResponse(cat))
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"message": "Category deleted successfully"})
}

func toCategoryResponse(cat *models.CategoryModel) gin.H {
	out := gin.H{
		"id":         cat.ID,
		"name":       cat.Name,
		"created_at": cat.CreatedAt,
	}
	if cat.Tags != nil {
		tags := make([]gin.H, 0, len(cat.Tags))
		for i := range cat.Tags {
			tags = append(tags, gin.H{"id": cat.Tags[i].ID, "name": cat.Tags[i].Name})
		}
		out["tags"] = tags
	}
	return out
}
