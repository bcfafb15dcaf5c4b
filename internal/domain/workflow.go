package domain

import (
	"time"

	"github.com/google/uuid"
)

type Workflow struct {
	ID        string     `json:"id"`
	Name      *string    `json:"name,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Mutation is a single path/value write applied by a workflow patch.
type Mutation struct {
	Path  []string `json:"path" binding:"required,min=1"`
	Value any      `json:"value"`
}

// RepairReport counts the index entries a repair pass touched.
type RepairReport struct {
	Collection string   `json:"collection"`
	Dropped    []string `json:"dropped,omitempty"`
	Added      []string `json:"added,omitempty"`
}

// --- FACTORY ---
func NewWorkflow() Workflow {
	return Workflow{ID: NewID()}
}

// NewID returns a time ordered id, so ids sort by creation time.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// --- METHODS ---
func (w Workflow) DisplayName() string {
	if w.Name == nil || *w.Name == "" {
		return w.ID
	}
	return *w.Name
}

func (r RepairReport) Changed() bool {
	return len(r.Dropped) > 0 || len(r.Added) > 0
}
