package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/chat"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/config"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/storage"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/summarize"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/ws"
)

// handler is the core struct with all dependencies
type handler struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
	hub         *ws.Hub
	pipeline    *chat.Pipeline
	generator   *summarize.Generator
	audioStore  *storage.AudioStore
}

// NewHandler creates a new handler instance
func NewHandler(
	db *gorm.DB,
	redisClient *redis.Client,
	config *config.Config,
	hub *ws.Hub,
	pipeline *chat.Pipeline,
	generator *summarize.Generator,
	audioStore *storage.AudioStore,
) *handler {
	return &handler{
		db:          db,
		redisClient: redisClient,
		config:      config,
		hub:         hub,
		pipeline:    pipeline,
		generator:   generator,
		audioStore:  audioStore,
	}
}

// respondError maps the chat error taxonomy onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, chat.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, chat.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, chat.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, chat.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, chat.ErrInvalidTransition):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
