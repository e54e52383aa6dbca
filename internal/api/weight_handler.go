package api

import (
	"errors"
	"net/http"

	"github.com/NickBalanda/GymTracker/internal/service"

	"github.com/gin-gonic/gin"
)

// WeightHandler exposes the bodyweight log.
type WeightHandler struct {
	tracker *service.TrackerService
}

// NewWeightHandler creates a new WeightHandler.
func NewWeightHandler(tracker *service.TrackerService) *WeightHandler {
	return &WeightHandler{tracker: tracker}
}

// LogWeightRequest carries the raw user input; parsing and validation
// happen in the controller, which rejects anything non-positive.
type LogWeightRequest struct {
	Weight string `json:"weight" binding:"required"`
}

// ListEntries returns the full weight log.
func (h *WeightHandler) ListEntries(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.WeightLog())
}

// LogWeight appends a new measurement.
func (h *WeightHandler) LogWeight(c *gin.Context) {
	var req LogWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	entry, err := h.tracker.LogWeight(c.Request.Context(), req.Weight)
	switch {
	case errors.Is(err, service.ErrInvalidWeight):
		abortWithError(c, http.StatusBadRequest, "Weight must be a positive number.")
	case err != nil:
		abortWithError(c, http.StatusInternalServerError, "Failed to log weight.")
	default:
		c.JSON(http.StatusCreated, entry)
	}
}
