package api

import (
	"errors"
	"net/http"

	"github.com/NickBalanda/GymTracker/internal/domain"
	"github.com/NickBalanda/GymTracker/internal/generator"
	"github.com/NickBalanda/GymTracker/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler exposes the plan collection, the editing draft flow and AI
// generation over HTTP. The domain structs already carry the wire field
// names, so responses use them directly.
type PlanHandler struct {
	tracker *service.TrackerService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(tracker *service.TrackerService) *PlanHandler {
	return &PlanHandler{tracker: tracker}
}

// --- DTOs for API (Data Transfer Objects) ---

// GeneratePlanRequest defines the expected JSON for an AI generation request.
type GeneratePlanRequest struct {
	Focus      string `json:"focus" binding:"required"`
	Difficulty string `json:"difficulty" binding:"required"`
}

// UpdateExerciseFieldRequest replaces exactly one field on a draft exercise.
type UpdateExerciseFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value any    `json:"value"`
}

// --- Handler Methods ---

// ListPlans returns all stored plans.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.Plans())
}

// GetPlan returns one stored plan by id.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	plan, err := h.tracker.PlanByID(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, "Plan not found.")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// DeletePlan removes a stored plan. The confirm query parameter stands in
// for the UI confirmation dialog; without it nothing is deleted.
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	confirmed := c.Query("confirm") == "true"
	err := h.tracker.DeletePlan(c.Request.Context(), c.Param("id"), confirmed)
	switch {
	case errors.Is(err, service.ErrDeleteNotConfirmed):
		abortWithError(c, http.StatusBadRequest, "Deletion requires confirm=true.")
	case errors.Is(err, service.ErrPlanNotFound):
		abortWithError(c, http.StatusNotFound, "Plan not found.")
	case err != nil:
		abortWithError(c, http.StatusInternalServerError, "Failed to delete plan.")
	default:
		c.Status(http.StatusNoContent)
	}
}

// CreateDraft starts a new empty draft plan.
func (h *PlanHandler) CreateDraft(c *gin.Context) {
	c.JSON(http.StatusCreated, h.tracker.CreateDraftPlan())
}

// BeginEdit starts a draft as a deep copy of a stored plan.
func (h *PlanHandler) BeginEdit(c *gin.Context) {
	draft, err := h.tracker.BeginEdit(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, "Plan not found.")
		return
	}
	c.JSON(http.StatusCreated, draft)
}

// GetDraft returns the current editing draft.
func (h *PlanHandler) GetDraft(c *gin.Context) {
	draft, err := h.tracker.Draft()
	if err != nil {
		abortWithError(c, http.StatusNotFound, "No plan is being edited.")
		return
	}
	c.JSON(http.StatusOK, draft)
}

// DiscardDraft drops the current draft without saving.
func (h *PlanHandler) DiscardDraft(c *gin.Context) {
	h.tracker.DiscardDraft()
	c.Status(http.StatusNoContent)
}

// SaveDraft commits the draft into the plans collection (upsert by id).
func (h *PlanHandler) SaveDraft(c *gin.Context) {
	saved, err := h.tracker.SaveDraft(c.Request.Context())
	switch {
	case errors.Is(err, service.ErrNoDraft):
		abortWithError(c, http.StatusConflict, "No plan is being edited.")
	case err != nil:
		abortWithError(c, http.StatusInternalServerError, "Failed to save plan.")
	default:
		c.JSON(http.StatusOK, saved)
	}
}

// AddDraftExercise appends a default exercise to the draft.
func (h *PlanHandler) AddDraftExercise(c *gin.Context) {
	ex, err := h.tracker.AddExerciseToDraft()
	if err != nil {
		abortWithError(c, http.StatusConflict, "No plan is being edited.")
		return
	}
	c.JSON(http.StatusCreated, ex)
}

// UpdateDraftExercise replaces a single field on a draft exercise.
func (h *PlanHandler) UpdateDraftExercise(c *gin.Context) {
	var req UpdateExerciseFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	err := h.tracker.UpdateExerciseField(c.Param("id"), req.Field, req.Value)
	switch {
	case errors.Is(err, service.ErrNoDraft):
		abortWithError(c, http.StatusConflict, "No plan is being edited.")
	case errors.Is(err, service.ErrUnknownField), errors.Is(err, service.ErrInvalidFieldValue):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case err != nil:
		abortWithError(c, http.StatusInternalServerError, "Failed to update exercise.")
	default:
		c.Status(http.StatusNoContent)
	}
}

// RemoveDraftExercise removes an exercise from the draft.
func (h *PlanHandler) RemoveDraftExercise(c *gin.Context) {
	if err := h.tracker.RemoveExerciseFromDraft(c.Param("id")); err != nil {
		abortWithError(c, http.StatusConflict, "No plan is being edited.")
		return
	}
	c.Status(http.StatusNoContent)
}

// GeneratePlan runs an AI generation request and, on success, returns the
// plan that was appended to the collection.
func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	var req GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	plan, err := h.tracker.GeneratePlan(c.Request.Context(), req.Focus, domain.Difficulty(req.Difficulty))
	switch {
	case errors.Is(err, service.ErrEmptyFocus), errors.Is(err, service.ErrInvalidDifficulty):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrGenerationInFlight):
		abortWithError(c, http.StatusConflict, "A generation request is already in progress.")
	case errors.Is(err, generator.ErrMissingAPIKey):
		abortWithError(c, http.StatusServiceUnavailable, "Generation is not configured.")
	case err != nil:
		abortWithError(c, http.StatusBadGateway, "Failed to contact the generation service.")
	default:
		c.JSON(http.StatusCreated, plan)
	}
}
