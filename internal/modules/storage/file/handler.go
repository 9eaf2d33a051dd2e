package file

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bloppost/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// Handler serves uploaded files from the local static directory. Uploaded
// images are referenced from posts through their featured_image URL.
type Handler struct {
	staticDir string
}

func NewHandler(staticDir string) *Handler {
	if staticDir == "" {
		staticDir = "./static"
	}
	return &Handler{staticDir: staticDir}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	g := rg.Group("/files")

	g.POST("/upload", auth, h.upload)
	g.GET("/:type", auth, h.listByType)
	g.GET("/:type/:name", h.get)
	g.DELETE("/:type/:name", auth, h.remove)
	g.PATCH("/:type/:name/rename", auth, h.rename)
}

func (h *Handler) upload(c *gin.Context) {
	typ := normalizeTypeDefault(c.Query("type"), "image")
	if typ == "" {
		response.BadRequest(c, "invalid file type")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	filename := buildFileName(fileHeader.Filename)
	dir := filepath.Join(h.staticDir, typ)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		response.InternalError(c)
		return
	}
	if err := c.SaveUploadedFile(fileHeader, filepath.Join(dir, filename)); err != nil {
		response.InternalError(c)
		return
	}

	response.Created(c, gin.H{
		"name": filename,
		"url":  "/files/" + typ + "/" + filename,
	})
}

func (h *Handler) listByType(c *gin.Context) {
	typ := normalizeType(c.Param("type"))
	if typ == "" {
		response.BadRequest(c, "invalid file type")
		return
	}

	entries, err := os.ReadDir(filepath.Join(h.staticDir, typ))
	if err != nil {
		if os.IsNotExist(err) {
			response.OK(c, []gin.H{})
			return
		}
		response.InternalError(c)
		return
	}

	items := make([]gin.H, 0, len(entries))
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		info, err := ent.Info()
		if err != nil {
			continue
		}
		items = append(items, gin.H{
			"name":    ent.Name(),
			"url":     "/files/" + typ + "/" + ent.Name(),
			"created": info.ModTime().UnixMilli(),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i]["created"].(int64) > items[j]["created"].(int64)
	})
	response.OK(c, items)
}

func (h *Handler) get(c *gin.Context) {
	typ := normalizeType(c.Param("type"))
	name := safeName(c.Param("name"))
	if typ == "" || name == "" {
		response.NotFound(c, "file not found")
		return
	}

	path := filepath.Join(h.staticDir, typ, name)
	if _, err := os.Stat(path); err != nil {
		response.NotFound(c, "file not found")
		return
	}

	c.Header("Cache-Control", "public, max-age=31536000")
	c.File(path)
}

func (h *Handler) remove(c *gin.Context) {
	typ := normalizeType(c.Param("type"))
	name := safeName(c.Param("name"))
	if typ == "" || name == "" {
		response.BadRequest(c, "invalid path")
		return
	}

	_ = os.Remove(filepath.Join(h.staticDir, typ, name))
	response.NoContent(c)
}

func (h *Handler) rename(c *gin.Context) {
	typ := normalizeType(c.Param("type"))
	name := safeName(c.Param("name"))
	newName := safeName(c.Query("new_name"))
	if typ == "" || name == "" || newName == "" {
		response.BadRequest(c, "invalid rename params")
		return
	}

	oldPath := filepath.Join(h.staticDir, typ, name)
	newPath := filepath.Join(h.staticDir, typ, newName)
	if err := os.Rename(oldPath, newPath); err != nil {
		response.InternalError(c)
		return
	}
	response.NoContent(c)
}
