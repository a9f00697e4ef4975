package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"

	"github.com/weiwangfds/galleria/config"
	"github.com/weiwangfds/galleria/internal/database"
	"github.com/weiwangfds/galleria/internal/handler"
	"github.com/weiwangfds/galleria/internal/i18n"
	"github.com/weiwangfds/galleria/internal/logger"
	"github.com/weiwangfds/galleria/internal/router"
	"github.com/weiwangfds/galleria/internal/service/gallery"
	"github.com/weiwangfds/galleria/internal/service/mirror"
	"github.com/weiwangfds/galleria/internal/service/render"
	"github.com/weiwangfds/galleria/internal/service/settings"
	"github.com/weiwangfds/galleria/internal/service/sweeper"
	"github.com/weiwangfds/galleria/internal/service/upload"
)

// @title Galleria API
// @version 1.0
// @description 相册管理与展示服务
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(logger.DefaultConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.Info("Logger initialized")

	i18n.GetInstance().SetDefaultLanguage(cfg.Language)

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	db := database.GetDB()

	// 服务装配
	settingsService := settings.NewService(db)
	uploadService := upload.NewService(&cfg.Storage, cfg.Server.PublicBase)
	mirrorService, err := mirror.NewService(&cfg.Mirror)
	if err != nil {
		logger.Fatalf("Failed to initialize mirror service: %v", err)
	}
	galleryService := gallery.NewService(db, uploadService, settingsService, mirrorService)
	renderService := render.NewService(galleryService, settingsService)

	galleryHandler := handler.NewGalleryHandler(galleryService)
	renderHandler := handler.NewRenderHandler(renderService)
	settingsHandler := handler.NewSettingsHandler(settingsService, mirrorService)

	r := router.Setup(cfg, galleryHandler, renderHandler, settingsHandler)

	// 后台孤儿文件清理
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Sweeper.Enabled {
		sw := sweeper.New(db, &cfg.Storage, &cfg.Sweeper)
		sw.Start(ctx)
		defer sw.Stop()
	}

	srv := &http.Server{
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		var err error
		if cfg.Server.EnableHTTPS {
			srv.Addr = fmt.Sprintf(":%d", cfg.Server.HTTPSPort)
			if cfg.Server.EnableHTTP2 {
				if err := http2.ConfigureServer(srv, &http2.Server{}); err != nil {
					logger.Fatalf("Failed to configure HTTP/2: %v", err)
				}
			}
			logger.Infof("Starting HTTPS server on %s", srv.Addr)
			err = srv.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			srv.Addr = fmt.Sprintf(":%d", cfg.Server.Port)
			logger.Infof("Starting HTTP server on %s", srv.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server error: %v", err)
		}
	}()

	// 等待退出信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	logger.Info("Server exited")
}
