package domain

// WeightEntry is a single timestamped bodyweight measurement.
// Entries are append-only; no update or delete is exposed.
type WeightEntry struct {
	ID     string          `json:"id"`
	Date   int64           `json:"date"` // Unix milliseconds, set at creation
	Weight float64         `json:"weight"`
	Unit   MeasurementUnit `json:"unit"`
}
