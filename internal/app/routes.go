package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bloppost/core/internal/config"
	"github.com/bloppost/core/internal/middleware"
	"github.com/bloppost/core/internal/modules/auth"
	"github.com/bloppost/core/internal/modules/content/category"
	"github.com/bloppost/core/internal/modules/content/comment"
	"github.com/bloppost/core/internal/modules/content/post"
	"github.com/bloppost/core/internal/modules/content/tag"
	"github.com/bloppost/core/internal/modules/storage/file"
	"github.com/bloppost/core/internal/modules/user"
	pkgredis "github.com/bloppost/core/internal/pkg/redis"
	"github.com/bloppost/core/internal/pkg/response"
)

func (a *App) registerRoutes() {
	mountRoutes(a.router, a.db, a.cfg, a.rc)
}

// mountRoutes wires every module handler onto the engine. Tests call this
// directly with their own database and no Redis.
// OptionalAuth runs first so the rate limiter can see authenticated callers.
func mountRoutes(r *gin.Engine, db *gorm.DB, cfg *config.AppConfig, rc *pkgredis.Client) {
	r.Use(middleware.OptionalAuth(db))
	if rc != nil {
		r.Use(middleware.RateLimit(rc.Raw()))
	}

	authMW := middleware.Auth(db)
	authorMW := middleware.RequireAuthor(db)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to Bloppost App!"})
	})
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	root := r.Group("")

	auth.NewHandler(auth.NewService(db, cfg)).RegisterRoutes(root, authMW)
	user.NewHandler(user.NewService(db)).RegisterRoutes(root, authMW)
	post.NewHandler(post.NewService(db)).RegisterRoutes(root, authMW, authorMW)
	category.NewHandler(category.NewService(db)).RegisterRoutes(root, authMW, authorMW)
	tag.NewHandler(tag.NewService(db)).RegisterRoutes(root, authMW, authorMW)
	comment.NewHandler(comment.NewService(db)).RegisterRoutes(root, authMW)
	file.NewHandler(cfg.Paths.Static).RegisterRoutes(root, authMW)
}
