package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NickBalanda/GymTracker/internal/domain"
	"github.com/NickBalanda/GymTracker/internal/kvstore"
	"github.com/NickBalanda/GymTracker/internal/repository"
)

// plansKey is the fixed name of the stored plans snapshot.
const plansKey = "neon_plans"

// kvPlanRepository implements repository.PlanRepository over a key-value store.
type kvPlanRepository struct {
	store kvstore.Store
}

// NewPlanRepository creates a plan repository backed by the given store.
func NewPlanRepository(store kvstore.Store) repository.PlanRepository {
	return &kvPlanRepository{store: store}
}

func (r *kvPlanRepository) Load(ctx context.Context) ([]domain.WorkoutPlan, error) {
	data, err := r.store.Get(ctx, plansKey)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return []domain.WorkoutPlan{}, nil
	}
	if err != nil {
		return nil, err
	}

	var plans []domain.WorkoutPlan
	if err := json.Unmarshal(data, &plans); err != nil {
		// Corrupt snapshot: hand back an empty collection so startup can
		// continue, but surface the condition for logging.
		return []domain.WorkoutPlan{}, fmt.Errorf("%w: %v", repository.ErrDecodeFailed, err)
	}
	if plans == nil {
		plans = []domain.WorkoutPlan{}
	}
	return plans, nil
}

func (r *kvPlanRepository) Save(ctx context.Context, plans []domain.WorkoutPlan) error {
	if plans == nil {
		plans = []domain.WorkoutPlan{}
	}
	data, err := json.Marshal(plans)
	if err != nil {
		return fmt.Errorf("%w: %v", repository.ErrSaveFailed, err)
	}
	if err := r.store.Set(ctx, plansKey, data); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrSaveFailed, err)
	}
	return nil
}
