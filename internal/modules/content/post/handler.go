package post

import (
	"github.com/bloppost/core/internal/middleware"
	"github.com/bloppost/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// Handler handles post HTTP requests.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts post routes onto the given router group.
// Creation additionally requires the author role.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, authorMW gin.HandlerFunc) {
	posts := rg.Group("/posts")

	posts.GET("", h.list)
	posts.GET("/:id", h.get)

	authed := posts.Group("", authMW)
	authed.POST("", authorMW, h.create)
	authed.PUT("/:id", h.update)
	authed.PATCH("/:id", h.update)
	authed.PUT("/:id/tags", h.setTags)
	authed.DELETE("/:id", h.delete)
}

// list GET /posts
func (h *Handler) list(c *gin.Context) {
	var lq ListQuery
	if err := c.ShouldBindQuery(&lq); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	posts, err := h.svc.List(lq)
	if err != nil {
		response.FromError(c, err)
		return
	}
	items := make([]postResponse, len(posts))
	for i, p := range posts {
		items[i] = toResponse(&p)
	}
	response.OK(c, items)
}

// get GET /posts/:id
func (h *Handler) get(c *gin.Context) {
	post, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, toResponse(post))
}

// create POST /posts  [auth, author role]
func (h *Handler) create(c *gin.Context) {
	var dto CreatePostDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "missing required fields")
		return
	}
	if dto.UserID != middleware.CurrentUserID(c) {
		response.Forbidden(c, "cannot create posts for another user")
		return
	}

	post, err := h.svc.Create(&dto)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, toResponse(post))
}

// update PATCH /posts/:id  [auth, owner]
func (h *Handler) update(c *gin.Context) {
	id := c.Param("id")
	if !h.ownedByCaller(c, id) {
		return
	}

	var dto UpdatePostDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.svc.Update(id, &dto)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, toResponse(post))
}

// setTags PUT /posts/:id/tags  [auth, owner]
func (h *Handler) setTags(c *gin.Context) {
	id := c.Param("id")
	if !h.ownedByCaller(c, id) {
		return
	}

	var dto SetTagsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.svc.ReplaceTags(id, dto.TagIDs)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, toResponse(post))
}

// delete DELETE /posts/:id  [auth, owner]
func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	if !h.ownedByCaller(c, id) {
		return
	}
	if err := h.svc.Delete(id); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"message": "Post deleted successfully"})
}

// ownedByCaller loads the post and rejects callers who do not own it.
func (h *Handler) ownedByCaller(c *gin.Context, id string) bool {
	post, err := h.svc.GetByID(id)
	if err != nil {
		response.FromError(c, err)
		return false
	}
	if post.UserID != middleware.CurrentUserID(c) {
		response.Forbidden(c, "cannot modify another user's post")
		return false
	}
	return true
}
