package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/weiwangfds/galleria/config"
	"github.com/weiwangfds/galleria/internal/database"
	"github.com/weiwangfds/galleria/internal/handler"
	"github.com/weiwangfds/galleria/internal/middleware"
)

// Setup 初始化路由
func Setup(cfg *config.Config, galleryHandler *handler.GalleryHandler, renderHandler *handler.RenderHandler, settingsHandler *handler.SettingsHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// CORS配置，管理端跨域访问
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		dbStatus := "ok"
		code := http.StatusOK
		if err := database.HealthCheck(); err != nil {
			status = "degraded"
			dbStatus = err.Error()
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":   status,
			"database": dbStatus,
		})
	})

	// 图片文件静态访问
	r.Static(cfg.Storage.PublicPath, cfg.Storage.ContentRoot)

	// 管理端API
	v1 := r.Group("/api/v1")
	{
		galleries := v1.Group("/galleries")
		{
			galleries.POST("", galleryHandler.CreateGallery)
			galleries.GET("", galleryHandler.ListGalleries)
			galleries.GET("/:id", galleryHandler.GetGallery)
			galleries.PUT("/:id", galleryHandler.UpdateGallery)
			galleries.DELETE("/:id", galleryHandler.DeleteGallery)
			galleries.POST("/:id/images", galleryHandler.UploadImage)
			galleries.PUT("/:id/images/order", galleryHandler.ReorderImages)
		}

		images := v1.Group("/images")
		{
			images.PUT("/:imageId", galleryHandler.UpdateImage)
			images.DELETE("/:imageId", galleryHandler.DeleteImage)
		}

		settings := v1.Group("/settings")
		{
			settings.GET("", settingsHandler.GetSettings)
			settings.PUT("", settingsHandler.UpdateSettings)
			settings.POST("/mirror/test", settingsHandler.TestMirror)
		}
	}

	// 公开展示端
	renderGroup := r.Group("/render")
	{
		renderGroup.GET("/galleries/:id", renderHandler.RenderGallery)
		renderGroup.GET("/galleries/:id/slider", renderHandler.RenderSlider)
		renderGroup.POST("/shortcode", renderHandler.RenderShortcode)
	}

	return r
}
