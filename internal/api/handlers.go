package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/chrisdamba/whattoeat/internal/hours"
	"github.com/chrisdamba/whattoeat/internal/models"
	"github.com/chrisdamba/whattoeat/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type spinBody struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type preferencesBody struct {
	Weights models.CategoryWeights `json:"weights" binding:"required"`
}

type hoursBody struct {
	WeekdayText []string   `json:"weekdayText"`
	OpenNow     *bool      `json:"openNow"`
	At          *time.Time `json:"at"`
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) sections(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sections": h.wheel.Sections()})
}

func (h *Handler) createSession(c *gin.Context) {
	id, state := h.wheel.CreateSession()
	c.JSON(http.StatusCreated, gin.H{"sessionId": id, "state": state})
}

func (h *Handler) sessionState(c *gin.Context) {
	state, err := h.wheel.State(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) spin(c *gin.Context) {
	var body spinBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req service.SpinRequest
	if body.Lat != nil && body.Lng != nil {
		req.Location = &models.Location{Lat: *body.Lat, Lng: *body.Lng}
	}
	res, err := h.wheel.Spin(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) restaurants(c *gin.Context) {
	req := service.SearchRequest{
		Cuisine:   c.Query("cuisine"),
		PageToken: c.Query("pageToken"),
	}
	if lat, lng := c.Query("lat"), c.Query("lng"); lat != "" || lng != "" {
		loc, err := parseLocation(lat, lng)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.Location = &loc
	}
	res, err := h.wheel.SearchRestaurants(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) getPreferences(c *gin.Context) {
	w, err := h.wheel.Weights(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weights": w})
}

func (h *Handler) putPreferences(c *gin.Context) {
	var body preferencesBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.wheel.SetWeights(c.Request.Context(), c.Param("id"), body.Weights); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weights": body.Weights})
}

func (h *Handler) recommend(c *gin.Context) {
	var req models.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.wheel.Recommend(c.Request.Context(), req))
}

func (h *Handler) hoursOpen(c *gin.Context) {
	var body hoursBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	at := h.now()
	if body.At != nil {
		at = *body.At
	}
	oh := &models.OpeningHours{OpenNow: body.OpenNow, WeekdayText: body.WeekdayText}
	resp := gin.H{"open": hours.IsOpenNow(oh, at), "at": at}
	if line, err := hours.DayLine(body.WeekdayText, at.Weekday()); err == nil {
		resp["todayHours"] = line
	}
	c.JSON(http.StatusOK, resp)
}

func parseLocation(lat, lng string) (models.Location, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return models.Location{}, errors.New("lat must be a number")
	}
	ln, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return models.Location{}, errors.New("lng must be a number")
	}
	return models.Location{Lat: la, Lng: ln}, nil
}

func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrSpinInProgress):
		status = http.StatusConflict
	case errors.Is(err, models.ErrInvalidWeights):
		status = http.StatusBadRequest
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
