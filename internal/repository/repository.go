package repository

import (
	"context"

	"github.com/NickBalanda/GymTracker/internal/domain"
)

// Error constants for the repository layer
var (
	ErrDecodeFailed = RepositoryError("stored snapshot is not valid JSON")
	ErrSaveFailed   = RepositoryError("failed to persist snapshot")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// PlanRepository persists the workout plan collection as a full snapshot.
// Load is invoked once at startup; Save after every mutation. A corrupt
// stored snapshot yields an empty collection together with an error
// wrapping ErrDecodeFailed, so the caller can log and start fresh instead
// of crashing.
type PlanRepository interface {
	Load(ctx context.Context) ([]domain.WorkoutPlan, error)
	Save(ctx context.Context, plans []domain.WorkoutPlan) error
}

// WeightRepository persists the weight log the same way.
type WeightRepository interface {
	Load(ctx context.Context) ([]domain.WeightEntry, error)
	Save(ctx context.Context, entries []domain.WeightEntry) error
}
