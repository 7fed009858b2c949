package types

import "time"

// Entity carries the bookkeeping timestamps shared by khata records.
// UpdatedAt only moves for metadata amendments; financial fields never change.
type Entity struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEntity creates a new Entity with current timestamps.
func NewEntity() Entity {
	return NewEntityAt(time.Now())
}

// NewEntityAt creates an Entity stamped with t (normalized to UTC).
func NewEntityAt(t time.Time) Entity {
	t = t.UTC()
	return Entity{CreatedAt: t, UpdatedAt: t}
}

// Touch sets UpdatedAt to t (normalized to UTC).
func (e *Entity) Touch(t time.Time) {
	e.UpdatedAt = t.UTC()
}

// Amended reports whether the record was changed after creation.
func (e Entity) Amended() bool {
	return e.UpdatedAt.After(e.CreatedAt)
}
