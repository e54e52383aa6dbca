package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/NickBalanda/GymTracker/internal/domain"
	"github.com/NickBalanda/GymTracker/internal/generator"
	"github.com/NickBalanda/GymTracker/internal/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound       = errors.New("plan not found")
	ErrNoDraft            = errors.New("no plan is being edited")
	ErrInvalidWeight      = errors.New("weight must be a positive number")
	ErrDeleteNotConfirmed = errors.New("plan deletion requires confirmation")
	ErrEmptyFocus         = errors.New("focus is required to generate a plan")
	ErrGenerationInFlight = errors.New("a generation request is already in progress")
	ErrInvalidDifficulty  = errors.New("unknown difficulty level")
	ErrUnknownField       = errors.New("unknown exercise field")
	ErrInvalidFieldValue  = errors.New("invalid value for exercise field")
)

// Placeholder content for a freshly created draft.
const (
	draftPlanName        = "New Workout Plan"
	draftPlanDescription = "Describe your routine..."
)

// TrackerService is the application state controller. It holds the
// canonical in-memory collections plus the single editing draft, mediates
// every mutation, and persists the affected collection after each one.
// All state sits behind one mutex; the generator call is the only
// operation that runs outside it, gated by an in-flight flag so a second
// generation request is rejected while editing and weight logging continue
// to work.
type TrackerService struct {
	mu         sync.Mutex
	planRepo   repository.PlanRepository
	weightRepo repository.WeightRepository
	generator  generator.PlanGenerator

	plans      []domain.WorkoutPlan
	weightLog  []domain.WeightEntry
	draft      *domain.WorkoutPlan
	generating bool
}

// NewTrackerService creates a controller over the given repositories and
// plan generator.
func NewTrackerService(planRepo repository.PlanRepository, weightRepo repository.WeightRepository, gen generator.PlanGenerator) *TrackerService {
	return &TrackerService{
		planRepo:   planRepo,
		weightRepo: weightRepo,
		generator:  gen,
		plans:      []domain.WorkoutPlan{},
		weightLog:  []domain.WeightEntry{},
	}
}

// Load populates the in-memory collections from durable storage. It is
// invoked once at startup; storage is the sole source of truth at that
// point. A corrupt snapshot is logged and replaced with an empty
// collection rather than failing startup.
func (s *TrackerService) Load(ctx context.Context) error {
	plans, err := s.planRepo.Load(ctx)
	if errors.Is(err, repository.ErrDecodeFailed) {
		log.WithError(err).Warn("plans snapshot is corrupt, starting with an empty collection")
	} else if err != nil {
		return err
	}

	entries, err := s.weightRepo.Load(ctx)
	if errors.Is(err, repository.ErrDecodeFailed) {
		log.WithError(err).Warn("weight log snapshot is corrupt, starting with an empty collection")
	} else if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = plans
	s.weightLog = entries
	return nil
}

// --- Read access ---

// Plans returns a deep copy of the stored plans.
func (s *TrackerService) Plans() []domain.WorkoutPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePlans(s.plans)
}

// PlanByID returns a deep copy of the stored plan with the given id.
func (s *TrackerService) PlanByID(id string) (domain.WorkoutPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.plans {
		if p.ID == id {
			return p.Clone(), nil
		}
	}
	return domain.WorkoutPlan{}, ErrPlanNotFound
}

// WeightLog returns a copy of the weight entries.
func (s *TrackerService) WeightLog() []domain.WeightEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]domain.WeightEntry, len(s.weightLog))
	copy(entries, s.weightLog)
	return entries
}

// Draft returns a deep copy of the current editing draft.
func (s *TrackerService) Draft() (domain.WorkoutPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return domain.WorkoutPlan{}, ErrNoDraft
	}
	return s.draft.Clone(), nil
}

// --- Plan editing flow ---

// CreateDraftPlan starts a new draft with placeholder content. The draft is
// not inserted into the plans collection until SaveDraft. An existing draft
// is overwritten without warning.
func (s *TrackerService) CreateDraftPlan() domain.WorkoutPlan {
	draft := domain.WorkoutPlan{
		ID:          uuid.NewString(),
		Name:        draftPlanName,
		Description: draftPlanDescription,
		Exercises:   []domain.Exercise{},
		CreatedAt:   time.Now().UnixMilli(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = &draft
	return draft.Clone()
}

// BeginEdit sets the draft to a deep copy of a stored plan, so draft
// mutations cannot alias the stored entry.
func (s *TrackerService) BeginEdit(planID string) (domain.WorkoutPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.plans {
		if p.ID == planID {
			draft := p.Clone()
			s.draft = &draft
			return draft.Clone(), nil
		}
	}
	return domain.WorkoutPlan{}, ErrPlanNotFound
}

// DiscardDraft drops the editing draft without committing it.
func (s *TrackerService) DiscardDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = nil
}

// SaveDraft upserts the draft into the plans collection keyed by id
// (insert if unseen, replace if seen), clears the draft, and persists.
// Saving the same draft twice never yields a duplicate. On a persistence
// failure the collection and the draft are left untouched, so memory and
// storage never disagree.
func (s *TrackerService) SaveDraft(ctx context.Context) (domain.WorkoutPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return domain.WorkoutPlan{}, ErrNoDraft
	}

	saved := s.draft.Clone()
	next := make([]domain.WorkoutPlan, len(s.plans), len(s.plans)+1)
	copy(next, s.plans)
	replaced := false
	for i, p := range next {
		if p.ID == saved.ID {
			next[i] = saved
			replaced = true
			break
		}
	}
	if !replaced {
		next = append(next, saved)
	}

	if err := s.planRepo.Save(ctx, next); err != nil {
		return domain.WorkoutPlan{}, err
	}
	s.plans = next
	s.draft = nil
	return saved.Clone(), nil
}

// DeletePlan removes the plan with the matching id and persists. The caller
// must pass confirmed=true; an unconfirmed delete mutates nothing.
func (s *TrackerService) DeletePlan(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrDeleteNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.plans {
		if p.ID == id {
			next := make([]domain.WorkoutPlan, 0, len(s.plans)-1)
			next = append(next, s.plans[:i]...)
			next = append(next, s.plans[i+1:]...)
			if err := s.planRepo.Save(ctx, next); err != nil {
				return err
			}
			s.plans = next
			return nil
		}
	}
	return ErrPlanNotFound
}

// --- Draft exercise operations (no persistence until SaveDraft) ---

// AddExerciseToDraft appends a default exercise to the draft.
func (s *TrackerService) AddExerciseToDraft() (domain.Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return domain.Exercise{}, ErrNoDraft
	}
	ex := domain.Exercise{
		ID:     uuid.NewString(),
		Name:   "New Exercise",
		Sets:   3,
		Reps:   10,
		Weight: 0,
		Unit:   domain.UnitKG,
	}
	s.draft.Exercises = append(s.draft.Exercises, ex)
	return ex, nil
}

// UpdateExerciseField replaces exactly one field on the matching draft
// exercise. An unmatched exercise id is a no-op.
func (s *TrackerService) UpdateExerciseField(exerciseID, field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return ErrNoDraft
	}

	for i := range s.draft.Exercises {
		if s.draft.Exercises[i].ID != exerciseID {
			continue
		}
		return setExerciseField(&s.draft.Exercises[i], field, value)
	}
	return nil
}

// RemoveExerciseFromDraft removes the matching exercise from the draft.
func (s *TrackerService) RemoveExerciseFromDraft(exerciseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return ErrNoDraft
	}
	for i, ex := range s.draft.Exercises {
		if ex.ID == exerciseID {
			s.draft.Exercises = append(s.draft.Exercises[:i], s.draft.Exercises[i+1:]...)
			break
		}
	}
	return nil
}

// --- AI generation ---

// GeneratePlan runs a generation request and folds the result into the
// plans collection exactly like a manually created plan. While one request
// is outstanding a second is rejected; other operations are unaffected. No
// cancellation beyond ctx is supported; a failed result is simply dropped.
func (s *TrackerService) GeneratePlan(ctx context.Context, focus string, difficulty domain.Difficulty) (domain.WorkoutPlan, error) {
	if strings.TrimSpace(focus) == "" {
		return domain.WorkoutPlan{}, ErrEmptyFocus
	}
	if !difficulty.Valid() {
		return domain.WorkoutPlan{}, ErrInvalidDifficulty
	}

	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return domain.WorkoutPlan{}, ErrGenerationInFlight
	}
	s.generating = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.generating = false
		s.mu.Unlock()
	}()

	plan, err := s.generator.Generate(ctx, focus, difficulty)
	if err != nil {
		log.WithError(err).WithField("focus", focus).Warn("plan generation failed")
		return domain.WorkoutPlan{}, err
	}

	return s.IngestGeneratedPlan(ctx, *plan)
}

// IngestGeneratedPlan appends a successfully generated plan directly to the
// plans collection, bypassing the draft flow, and persists. A persistence
// failure leaves the collection unchanged.
func (s *TrackerService) IngestGeneratedPlan(ctx context.Context, plan domain.WorkoutPlan) (domain.WorkoutPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]domain.WorkoutPlan, len(s.plans), len(s.plans)+1)
	copy(next, s.plans)
	next = append(next, plan.Clone())
	if err := s.planRepo.Save(ctx, next); err != nil {
		return domain.WorkoutPlan{}, err
	}
	s.plans = next
	return plan.Clone(), nil
}

// --- Weight logging ---

// LogWeight parses rawInput and appends a new kg entry. Non-numeric,
// non-finite or non-positive input creates nothing and reports
// ErrInvalidWeight so the caller can decide whether to surface it.
func (s *TrackerService) LogWeight(ctx context.Context, rawInput string) (domain.WeightEntry, error) {
	w, err := strconv.ParseFloat(strings.TrimSpace(rawInput), 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
		return domain.WeightEntry{}, ErrInvalidWeight
	}

	entry := domain.WeightEntry{
		ID:     uuid.NewString(),
		Date:   time.Now().UnixMilli(),
		Weight: w,
		Unit:   domain.UnitKG,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]domain.WeightEntry, len(s.weightLog), len(s.weightLog)+1)
	copy(next, s.weightLog)
	next = append(next, entry)
	if err := s.weightRepo.Save(ctx, next); err != nil {
		return domain.WeightEntry{}, err
	}
	s.weightLog = next
	return entry, nil
}

// --- helpers ---

func clonePlans(plans []domain.WorkoutPlan) []domain.WorkoutPlan {
	out := make([]domain.WorkoutPlan, len(plans))
	for i, p := range plans {
		out[i] = p.Clone()
	}
	return out
}

// setExerciseField applies a single-field update. JSON-decoded numbers
// arrive as float64 and are coerced where the field is integral.
func setExerciseField(ex *domain.Exercise, field string, value any) error {
	switch field {
	case "name":
		v, ok := value.(string)
		if !ok || v == "" {
			return ErrInvalidFieldValue
		}
		ex.Name = v
	case "sets":
		v, ok := toInt(value)
		if !ok || v <= 0 {
			return ErrInvalidFieldValue
		}
		ex.Sets = v
	case "reps":
		v, ok := toInt(value)
		if !ok || v <= 0 {
			return ErrInvalidFieldValue
		}
		ex.Reps = v
	case "weight":
		v, ok := toFloat(value)
		if !ok || v < 0 {
			return ErrInvalidFieldValue
		}
		ex.Weight = v
	case "unit":
		v, ok := value.(string)
		unit := domain.MeasurementUnit(v)
		if !ok || (unit != domain.UnitKG && unit != domain.UnitLBS) {
			return ErrInvalidFieldValue
		}
		ex.Unit = unit
	case "tutorialUrl":
		v, ok := value.(string)
		if !ok {
			return ErrInvalidFieldValue
		}
		ex.TutorialURL = v
	case "notes":
		v, ok := value.(string)
		if !ok {
			return ErrInvalidFieldValue
		}
		ex.Notes = v
	default:
		return ErrUnknownField
	}
	return nil
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	}
	return 0, false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
	return 0, false
}
