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

// weightLogKey is the fixed name of the stored weight log snapshot.
const weightLogKey = "neon_weight_log"

// kvWeightRepository implements repository.WeightRepository over a key-value store.
type kvWeightRepository struct {
	store kvstore.Store
}

// NewWeightRepository creates a weight log repository backed by the given store.
func NewWeightRepository(store kvstore.Store) repository.WeightRepository {
	return &kvWeightRepository{store: store}
}

func (r *kvWeightRepository) Load(ctx context.Context) ([]domain.WeightEntry, error) {
	data, err := r.store.Get(ctx, weightLogKey)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return []domain.WeightEntry{}, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []domain.WeightEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return []domain.WeightEntry{}, fmt.Errorf("%w: %v", repository.ErrDecodeFailed, err)
	}
	if entries == nil {
		entries = []domain.WeightEntry{}
	}
	return entries, nil
}

func (r *kvWeightRepository) Save(ctx context.Context, entries []domain.WeightEntry) error {
	if entries == nil {
		entries = []domain.WeightEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: %v", repository.ErrSaveFailed, err)
	}
	if err := r.store.Set(ctx, weightLogKey, data); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrSaveFailed, err)
	}
	return nil
}
