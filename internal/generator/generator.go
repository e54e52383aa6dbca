package generator

import (
	"context"
	"errors"

	"github.com/NickBalanda/GymTracker/internal/domain"
)

// --- Error Definitions ---
var (
	// ErrMissingAPIKey means no service credential is configured; the
	// request fails before any network attempt.
	ErrMissingAPIKey = errors.New("generative service API key is not configured")
	// ErrServiceFailure covers network and service-side failures.
	ErrServiceFailure = errors.New("generative service request failed")
	// ErrMalformedResponse means the response could not be decoded into the
	// expected plan structure. A partial plan is never produced.
	ErrMalformedResponse = errors.New("generative service returned a malformed plan")
)

// PlanGenerator produces a complete workout plan for a focus area and
// difficulty level. On success the returned plan carries fresh identifiers
// and a creation timestamp; on any failure no plan exists.
type PlanGenerator interface {
	Generate(ctx context.Context, focus string, difficulty domain.Difficulty) (*domain.WorkoutPlan, error)
}
