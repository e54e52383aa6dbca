package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/NickBalanda/GymTracker/internal/config"
	"github.com/NickBalanda/GymTracker/internal/domain"

	"github.com/google/uuid"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash"

	promptTemplate = `Create a workout plan focusing on %s. Difficulty level: %s.
Make the plan name and description sound like it's from an 80s action movie or aerobics video.
For tutorialUrl, please provide a valid https://picsum.photos/200/300 url with a random seed.`
)

// GeminiGenerator implements PlanGenerator using the Gemini generateContent
// API with a JSON response schema, so the exercises array is structurally
// reliable and only value-level validation remains here.
type GeminiGenerator struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiGenerator creates a generator from configuration. A missing API
// key is not an error here; Generate reports it per attempt.
func NewGeminiGenerator(cfg config.GeminiConfig) *GeminiGenerator {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &GeminiGenerator{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// --- Wire types for the generateContent call ---

type responseSchema struct {
	Type        string                     `json:"type"`
	Description string                     `json:"description,omitempty"`
	Properties  map[string]*responseSchema `json:"properties,omitempty"`
	Items       *responseSchema            `json:"items,omitempty"`
	Required    []string                   `json:"required,omitempty"`
}

type generateContentRequest struct {
	Contents         []requestContent `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType"`
	ResponseSchema   *responseSchema `json:"responseSchema"`
	Temperature      float64         `json:"temperature"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// generatedExercise is the schema-constrained exercise shape the service
// must return. Required fields are pointers so absence is detectable.
type generatedExercise struct {
	Name        string   `json:"name"`
	Sets        *int     `json:"sets"`
	Reps        *int     `json:"reps"`
	Weight      *float64 `json:"weight"`
	TutorialURL string   `json:"tutorialUrl"`
	Notes       string   `json:"notes"`
}

// Exercises is a pointer so an absent key is distinguishable from an
// empty array; the schema marks it required.
type generatedPlan struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Exercises   *[]generatedExercise `json:"exercises"`
}

func planResponseSchema() *responseSchema {
	exerciseSchema := &responseSchema{
		Type: "OBJECT",
		Properties: map[string]*responseSchema{
			"name":        {Type: "STRING", Description: "Name of the exercise"},
			"sets":        {Type: "INTEGER", Description: "Number of sets"},
			"reps":        {Type: "INTEGER", Description: "Number of repetitions per set"},
			"weight":      {Type: "NUMBER", Description: "Recommended starting weight"},
			"tutorialUrl": {Type: "STRING", Description: "A placeholder URL for an image (use https://picsum.photos/200/200) or a YouTube search query link."},
			"notes":       {Type: "STRING", Description: "Short tip on form"},
		},
		Required: []string{"name", "sets", "reps", "weight"},
	}
	return &responseSchema{
		Type: "OBJECT",
		Properties: map[string]*responseSchema{
			"name":        {Type: "STRING", Description: "A cool, 80s action movie style name for the workout plan"},
			"description": {Type: "STRING", Description: "A short, hype-filled description"},
			"exercises":   {Type: "ARRAY", Items: exerciseSchema},
		},
		Required: []string{"name", "description", "exercises"},
	}
}

// Generate builds the prompt, submits it with the plan response schema, and
// maps the validated result into a domain plan with fresh identifiers.
func (g *GeminiGenerator) Generate(ctx context.Context, focus string, difficulty domain.Difficulty) (*domain.WorkoutPlan, error) {
	if g.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	reqBody := generateContentRequest{
		Contents: []requestContent{
			{Parts: []requestPart{{Text: fmt.Sprintf(promptTemplate, focus, difficulty)}}},
		},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   planResponseSchema(),
			Temperature:      0.7,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrServiceFailure, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrServiceFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrServiceFailure, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrServiceFailure, resp.StatusCode, string(body))
	}

	var apiResp generateContentResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: parse response envelope: %v", ErrMalformedResponse, err)
	}
	if apiResp.Error != nil {
		return nil, fmt.Errorf("%w: %s (code %d)", ErrServiceFailure, apiResp.Error.Message, apiResp.Error.Code)
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no candidates returned", ErrMalformedResponse)
	}

	text := apiResp.Candidates[0].Content.Parts[0].Text
	plan, err := decodeGeneratedPlan(text)
	if err != nil {
		return nil, err
	}

	return mapToDomain(plan), nil
}

// decodeGeneratedPlan parses the candidate text as a plan, falling back to
// the outermost JSON object when the model wraps it in extra prose.
func decodeGeneratedPlan(text string) (*generatedPlan, error) {
	var plan generatedPlan
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		start := strings.IndexByte(text, '{')
		end := strings.LastIndexByte(text, '}')
		if start == -1 || end == -1 || start >= end {
			return nil, fmt.Errorf("%w: no JSON object in candidate text", ErrMalformedResponse)
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &plan); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}

	if plan.Name == "" || plan.Description == "" || plan.Exercises == nil {
		return nil, fmt.Errorf("%w: missing plan name, description or exercises", ErrMalformedResponse)
	}
	for i, ex := range *plan.Exercises {
		if ex.Name == "" || ex.Sets == nil || ex.Reps == nil || ex.Weight == nil {
			return nil, fmt.Errorf("%w: exercise %d is missing required fields", ErrMalformedResponse, i)
		}
		if *ex.Sets <= 0 || *ex.Reps <= 0 || *ex.Weight < 0 {
			return nil, fmt.Errorf("%w: exercise %d has out-of-range values", ErrMalformedResponse, i)
		}
	}
	return &plan, nil
}

// mapToDomain assigns fresh identifiers and the creation timestamp. The
// unit is forced to kg regardless of anything the service supplied; kg is
// the only unit this path can produce.
func mapToDomain(plan *generatedPlan) *domain.WorkoutPlan {
	exercises := make([]domain.Exercise, len(*plan.Exercises))
	for i, ex := range *plan.Exercises {
		exercises[i] = domain.Exercise{
			ID:          uuid.NewString(),
			Name:        ex.Name,
			Sets:        *ex.Sets,
			Reps:        *ex.Reps,
			Weight:      *ex.Weight,
			Unit:        domain.UnitKG,
			TutorialURL: ex.TutorialURL,
			Notes:       ex.Notes,
		}
	}
	return &domain.WorkoutPlan{
		ID:          uuid.NewString(),
		Name:        plan.Name,
		Description: plan.Description,
		Exercises:   exercises,
		CreatedAt:   time.Now().UnixMilli(),
	}
}
