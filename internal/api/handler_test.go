package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NickBalanda/GymTracker/internal/api"
	"github.com/NickBalanda/GymTracker/internal/domain"
	"github.com/NickBalanda/GymTracker/internal/generator"
	"github.com/NickBalanda/GymTracker/internal/kvstore"
	"github.com/NickBalanda/GymTracker/internal/repository/kv"
	"github.com/NickBalanda/GymTracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	plan *domain.WorkoutPlan
	err  error
}

func (g *stubGenerator) Generate(_ context.Context, _ string, _ domain.Difficulty) (*domain.WorkoutPlan, error) {
	if g.err != nil {
		return nil, g.err
	}
	cp := g.plan.Clone()
	return &cp, nil
}

func newRouter(t *testing.T, gen generator.PlanGenerator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := kvstore.NewMemoryStore()
	tracker := service.NewTrackerService(kv.NewPlanRepository(store), kv.NewWeightRepository(store), gen)
	require.NoError(t, tracker.Load(context.Background()))

	router := gin.New()
	api.SetupRoutes(router, tracker)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestDraftFlow(t *testing.T) {
	router := newRouter(t, &stubGenerator{})

	// No draft yet.
	rr := doJSON(t, router, http.MethodGet, "/api/v1/plans/draft", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Create a draft.
	rr = doJSON(t, router, http.MethodPost, "/api/v1/plans/draft", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	var draft domain.WorkoutPlan
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &draft))
	assert.Equal(t, "New Workout Plan", draft.Name)
	assert.Empty(t, draft.Exercises)

	// Add and edit an exercise.
	rr = doJSON(t, router, http.MethodPost, "/api/v1/plans/draft/exercises", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	var ex domain.Exercise
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ex))

	rr = doJSON(t, router, http.MethodPatch, "/api/v1/plans/draft/exercises/"+ex.ID,
		api.UpdateExerciseFieldRequest{Field: "name", Value: "Deadlift"})
	assert.Equal(t, http.StatusNoContent, rr.Code)

	// Plans collection is untouched before save.
	rr = doJSON(t, router, http.MethodGet, "/api/v1/plans", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())

	// Save and read back.
	rr = doJSON(t, router, http.MethodPost, "/api/v1/plans/draft/save", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/api/v1/plans/"+draft.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var stored domain.WorkoutPlan
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stored))
	require.Len(t, stored.Exercises, 1)
	assert.Equal(t, "Deadlift", stored.Exercises[0].Name)

	// Saving again without a draft conflicts.
	rr = doJSON(t, router, http.MethodPost, "/api/v1/plans/draft/save", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestDeletePlan_RequiresConfirmation(t *testing.T) {
	router := newRouter(t, &stubGenerator{})

	rr := doJSON(t, router, http.MethodPost, "/api/v1/plans/draft", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	var draft domain.WorkoutPlan
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &draft))
	rr = doJSON(t, router, http.MethodPost, "/api/v1/plans/draft/save", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodDelete, "/api/v1/plans/"+draft.ID, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, router, http.MethodDelete, "/api/v1/plans/"+draft.ID+"?confirm=true", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, router, http.MethodDelete, "/api/v1/plans/"+draft.ID+"?confirm=true", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLogWeight(t *testing.T) {
	router := newRouter(t, &stubGenerator{})

	rr := doJSON(t, router, http.MethodPost, "/api/v1/weight", api.LogWeightRequest{Weight: "72.5"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var entry domain.WeightEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entry))
	assert.Equal(t, 72.5, entry.Weight)
	assert.Equal(t, domain.UnitKG, entry.Unit)

	for _, raw := range []string{"abc", "-5", "0"} {
		rr = doJSON(t, router, http.MethodPost, "/api/v1/weight", api.LogWeightRequest{Weight: raw})
		assert.Equal(t, http.StatusBadRequest, rr.Code, "input %q", raw)
	}

	rr = doJSON(t, router, http.MethodGet, "/api/v1/weight", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var entries []domain.WeightEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	assert.Len(t, entries, 1)
}

func TestGeneratePlan(t *testing.T) {
	gen := &stubGenerator{plan: &domain.WorkoutPlan{
		ID:   "gen-1",
		Name: "Iron Fury",
		Exercises: []domain.Exercise{
			{ID: "e1", Name: "Bench Press", Sets: 4, Reps: 8, Weight: 60, Unit: domain.UnitKG},
		},
	}}
	router := newRouter(t, gen)

	rr := doJSON(t, router, http.MethodPost, "/api/v1/plans/generate",
		api.GeneratePlanRequest{Focus: "Chest & Triceps", Difficulty: "Intermediate"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var plan domain.WorkoutPlan
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &plan))
	assert.Equal(t, "Iron Fury", plan.Name)

	rr = doJSON(t, router, http.MethodGet, "/api/v1/plans", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var plans []domain.WorkoutPlan
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &plans))
	assert.Len(t, plans, 1)
}

func TestGeneratePlan_Failures(t *testing.T) {
	t.Run("missing body fields", func(t *testing.T) {
		router := newRouter(t, &stubGenerator{})
		rr := doJSON(t, router, http.MethodPost, "/api/v1/plans/generate", gin.H{"focus": "Chest"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown difficulty", func(t *testing.T) {
		router := newRouter(t, &stubGenerator{})
		rr := doJSON(t, router, http.MethodPost, "/api/v1/plans/generate",
			api.GeneratePlanRequest{Focus: "Chest", Difficulty: "Impossible"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing credential", func(t *testing.T) {
		router := newRouter(t, &stubGenerator{err: generator.ErrMissingAPIKey})
		rr := doJSON(t, router, http.MethodPost, "/api/v1/plans/generate",
			api.GeneratePlanRequest{Focus: "Chest", Difficulty: "Beginner"})
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("service failure leaves plans unchanged", func(t *testing.T) {
		router := newRouter(t, &stubGenerator{err: generator.ErrServiceFailure})
		rr := doJSON(t, router, http.MethodPost, "/api/v1/plans/generate",
			api.GeneratePlanRequest{Focus: "Chest", Difficulty: "Beginner"})
		assert.Equal(t, http.StatusBadGateway, rr.Code)

		rr = doJSON(t, router, http.MethodGet, "/api/v1/plans", nil)
		assert.Equal(t, "[]", rr.Body.String())
	})
}

func TestBeginEditEndpoint(t *testing.T) {
	router := newRouter(t, &stubGenerator{})

	rr := doJSON(t, router, http.MethodPost, "/api/v1/plans/missing/draft", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, router, http.MethodPost, "/api/v1/plans/draft", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	var draft domain.WorkoutPlan
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &draft))
	rr = doJSON(t, router, http.MethodPost, "/api/v1/plans/draft/save", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodPost, "/api/v1/plans/"+draft.ID+"/draft", nil)
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, router, http.MethodDelete, "/api/v1/plans/draft", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
