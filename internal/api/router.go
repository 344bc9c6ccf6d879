// Package api exposes the wheel over HTTP.
package api

import (
	"context"
	"time"

	"github.com/chrisdamba/whattoeat/internal/models"
	"github.com/chrisdamba/whattoeat/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Wheel is what the handlers need from the service layer.
type Wheel interface {
	Sections() []models.WheelSection
	CreateSession() (string, models.SpinState)
	State(id string) (models.SpinState, error)
	Spin(ctx context.Context, sessionID string, req service.SpinRequest) (*service.SpinResult, error)
	SearchRestaurants(ctx context.Context, sessionID string, req service.SearchRequest) (*service.SearchResult, error)
	Recommend(ctx context.Context, req models.RecommendationRequest) *models.Recommendation
	Weights(ctx context.Context, sessionID string) (models.CategoryWeights, error)
	SetWeights(ctx context.Context, sessionID string, w models.CategoryWeights) error
}

type Handler struct {
	wheel Wheel
	now   func() time.Time
}

func NewRouter(wheel Wheel) *gin.Engine {
	h := &Handler{wheel: wheel, now: time.Now}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/health", h.health)

	api := r.Group("/api")
	api.GET("/sections", h.sections)
	api.POST("/recommendations", h.recommend)
	api.POST("/hours/open", h.hoursOpen)

	sessions := api.Group("/sessions")
	sessions.POST("", h.createSession)
	sessions.GET("/:id", h.sessionState)
	sessions.POST("/:id/spin", h.spin)
	sessions.GET("/:id/restaurants", h.restaurants)
	sessions.GET("/:id/preferences", h.getPreferences)
	sessions.PUT("/:id/preferences", h.putPreferences)

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("Request handled")
	}
}
