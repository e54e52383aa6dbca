package domain

// MeasurementUnit tags a weight value with its unit.
// Values carrying different units are never combined arithmetically.
type MeasurementUnit string

const (
	UnitKG  MeasurementUnit = "kg"
	UnitLBS MeasurementUnit = "lbs"
)

// Exercise is a single movement prescription within a plan.
// An exercise belongs to exactly one plan; it is never shared.
type Exercise struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Sets        int             `json:"sets"`
	Reps        int             `json:"reps"`
	Weight      float64         `json:"weight"`
	Unit        MeasurementUnit `json:"unit"`
	TutorialURL string          `json:"tutorialUrl,omitempty"` // Image or external link; empty means no media
	Notes       string          `json:"notes,omitempty"`
}

// WorkoutPlan is a named, ordered collection of exercises.
// Exercise order is display/execution order and is meaningful.
type WorkoutPlan struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Exercises   []Exercise `json:"exercises"`
	CreatedAt   int64      `json:"createdAt"` // Unix milliseconds, set once at creation
}

// Clone returns a deep copy of the plan. Mutating the copy's exercises
// never aliases the original; the editing draft relies on this.
func (p WorkoutPlan) Clone() WorkoutPlan {
	cp := p
	cp.Exercises = make([]Exercise, len(p.Exercises))
	copy(cp.Exercises, p.Exercises)
	return cp
}
