package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/junekp/photoroll/internal/analytics"
	"github.com/junekp/photoroll/internal/http/handlers"
	"github.com/junekp/photoroll/internal/http/middleware"
	"github.com/junekp/photoroll/internal/pipeline"
	"github.com/junekp/photoroll/internal/storage"
	"github.com/junekp/photoroll/internal/userdata"
)

func New(logger *slog.Logger, control *pipeline.Controller, debouncer *pipeline.Debouncer, users *userdata.Service, events analytics.Sink, store storage.Store) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logging(logger))

	galleryHandler := handlers.NewGalleryHandler(logger, control, debouncer, users, events)
	userDataHandler := handlers.NewUserDataHandler(logger, users)

	api := r.Group("/api")
	api.GET("/gallery", galleryHandler.Snapshot)
	api.PUT("/gallery/filter", galleryHandler.UpdateFilter)
	api.POST("/gallery/filter/flush", galleryHandler.FlushFilter)
	api.POST("/gallery/more", galleryHandler.LoadMore)
	api.GET("/gallery/locations", galleryHandler.Locations)
	api.GET("/gallery/map", galleryHandler.Map)
	api.GET("/stats", userDataHandler.Stats)
	api.PUT("/stats", userDataHandler.UpdateStats)
	api.GET("/settings/slideshow", userDataHandler.Slideshow)
	api.PUT("/settings/slideshow", userDataHandler.UpdateSlideshow)

	r.GET("/healthz", func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return r
}
