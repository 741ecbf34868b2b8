package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/junekp/photoroll/internal/userdata"
)

// UserDataHandler serves the persisted statistics and slideshow preference.
type UserDataHandler struct {
	logger *slog.Logger
	users  *userdata.Service
}

func NewUserDataHandler(logger *slog.Logger, users *userdata.Service) *UserDataHandler {
	return &UserDataHandler{logger: logger, users: users}
}

func (h *UserDataHandler) Stats(c *gin.Context) {
	stats, err := h.users.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *UserDataHandler) UpdateStats(c *gin.Context) {
	var stats userdata.Stats
	if err := c.ShouldBindJSON(&stats); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stats payload"})
		return
	}

	if err := h.users.SaveStats(c.Request.Context(), stats); err != nil {
		h.logger.Error("failed to save stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *UserDataHandler) Slideshow(c *gin.Context) {
	pref, err := h.users.Slideshow(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load slideshow preference", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load slideshow preference"})
		return
	}
	c.JSON(http.StatusOK, pref)
}

func (h *UserDataHandler) UpdateSlideshow(c *gin.Context) {
	var pref userdata.Slideshow
	if err := c.ShouldBindJSON(&pref); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slideshow payload"})
		return
	}

	if err := h.users.SetSlideshow(c.Request.Context(), pref); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pref)
}
