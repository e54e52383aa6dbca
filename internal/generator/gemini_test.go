package generator_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NickBalanda/GymTracker/internal/config"
	"github.com/NickBalanda/GymTracker/internal/domain"
	"github.com/NickBalanda/GymTracker/internal/generator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService returns a test server answering generateContent with the
// given candidate text.
func stubService(t *testing.T, candidateText string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, ":generateContent")
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		// The request must carry the structured-output config.
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		genCfg, ok := req["generationConfig"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "application/json", genCfg["responseMimeType"])
		assert.NotNil(t, genCfg["responseSchema"])

		resp := map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"parts": []any{map[string]any{"text": candidateText}},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newGenerator(baseURL string) *generator.GeminiGenerator {
	return generator.NewGeminiGenerator(config.GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-2.5-flash",
		BaseURL: baseURL,
	})
}

func TestGenerate_Success(t *testing.T) {
	srv := stubService(t, `{
		"name": "Iron Fury",
		"description": "Maximum pump. No mercy.",
		"exercises": [
			{"name": "Bench Press", "sets": 4, "reps": 8, "weight": 60}
		]
	}`)
	defer srv.Close()

	plan, err := newGenerator(srv.URL).Generate(context.Background(), "Chest & Triceps", domain.DifficultyIntermediate)
	require.NoError(t, err)

	assert.Equal(t, "Iron Fury", plan.Name)
	assert.Equal(t, "Maximum pump. No mercy.", plan.Description)
	assert.NotEmpty(t, plan.ID)
	assert.NotZero(t, plan.CreatedAt)

	require.Len(t, plan.Exercises, 1)
	ex := plan.Exercises[0]
	assert.Equal(t, "Bench Press", ex.Name)
	assert.Equal(t, 4, ex.Sets)
	assert.Equal(t, 8, ex.Reps)
	assert.Equal(t, 60.0, ex.Weight)
	assert.Equal(t, domain.UnitKG, ex.Unit)
	assert.NotEmpty(t, ex.ID)
	assert.NotEqual(t, plan.ID, ex.ID)
}

func TestGenerate_UnitForcedToKG(t *testing.T) {
	// Even if the service smuggles a unit in, the generated plan is kg only.
	srv := stubService(t, `{
		"name": "Leg Day Destruction",
		"description": "Quads of steel.",
		"exercises": [
			{"name": "Squat", "sets": 5, "reps": 5, "weight": 100, "unit": "lbs"}
		]
	}`)
	defer srv.Close()

	plan, err := newGenerator(srv.URL).Generate(context.Background(), "Legs", domain.DifficultyAdvanced)
	require.NoError(t, err)
	require.Len(t, plan.Exercises, 1)
	assert.Equal(t, domain.UnitKG, plan.Exercises[0].Unit)
}

func TestGenerate_FencedJSONFallback(t *testing.T) {
	srv := stubService(t, "```json\n{\"name\":\"Neon Blitz\",\"description\":\"Go go go\",\"exercises\":[]}\n```")
	defer srv.Close()

	plan, err := newGenerator(srv.URL).Generate(context.Background(), "Cardio", domain.DifficultyBeginner)
	require.NoError(t, err)
	assert.Equal(t, "Neon Blitz", plan.Name)
	assert.Empty(t, plan.Exercises)
}

func TestGenerate_MissingAPIKey(t *testing.T) {
	gen := generator.NewGeminiGenerator(config.GeminiConfig{})
	_, err := gen.Generate(context.Background(), "Back", domain.DifficultyBeginner)
	assert.ErrorIs(t, err, generator.ErrMissingAPIKey)
}

func TestGenerate_MalformedCandidateText(t *testing.T) {
	srv := stubService(t, "the mainframe is down, try again")
	defer srv.Close()

	_, err := newGenerator(srv.URL).Generate(context.Background(), "Arms", domain.DifficultyIntermediate)
	assert.ErrorIs(t, err, generator.ErrMalformedResponse)
}

func TestGenerate_MissingRequiredExerciseField(t *testing.T) {
	srv := stubService(t, `{
		"name": "Half Plan",
		"description": "Missing reps",
		"exercises": [{"name": "Curl", "sets": 3, "weight": 12.5}]
	}`)
	defer srv.Close()

	_, err := newGenerator(srv.URL).Generate(context.Background(), "Arms", domain.DifficultyBeginner)
	assert.ErrorIs(t, err, generator.ErrMalformedResponse)
}

func TestGenerate_MissingExercisesKey(t *testing.T) {
	// An absent exercises key is not the same as an empty array; the
	// whole response is rejected rather than yielding an empty plan.
	srv := stubService(t, `{"name":"Half Plan","description":"No exercises at all"}`)
	defer srv.Close()

	plan, err := newGenerator(srv.URL).Generate(context.Background(), "Arms", domain.DifficultyBeginner)
	assert.ErrorIs(t, err, generator.ErrMalformedResponse)
	assert.Nil(t, plan)
}

func TestGenerate_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newGenerator(srv.URL).Generate(context.Background(), "Chest", domain.DifficultyIntermediate)
	assert.ErrorIs(t, err, generator.ErrServiceFailure)
}

func TestGenerate_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := newGenerator(srv.URL).Generate(context.Background(), "Chest", domain.DifficultyIntermediate)
	assert.ErrorIs(t, err, generator.ErrMalformedResponse)
}
