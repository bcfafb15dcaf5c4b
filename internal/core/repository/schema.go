package repository

import (
	"time"

	"jobtrack/internal/domain"
)

// timeLayout is how timestamps are written into documents.
const timeLayout = time.RFC3339Nano

// workflowSchema is the stored shape of a workflow document.
type workflowSchema struct {
	ID        string  `json:"id" validate:"required"`
	Name      *string `json:"name,omitempty"`
	UpdatedAt string  `json:"updatedAt,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05.999999999Z07:00"`
}

// jobSchema is the stored shape of a job document.
type jobSchema struct {
	ID         string `json:"id" validate:"required"`
	Status     string `json:"status" validate:"required,oneof=pending success rejected"`
	WorkflowID string `json:"workflowId" validate:"required"`
	CreatedAt  string `json:"createdAt" validate:"required,datetime=2006-01-02T15:04:05.999999999Z07:00"`
	Ack        string `json:"ack,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05.999999999Z07:00"`
}

func (s workflowSchema) toDomain() domain.Workflow {
	w := domain.Workflow{ID: s.ID, Name: s.Name}
	if s.UpdatedAt != "" {
		t := mustParse(s.UpdatedAt)
		w.UpdatedAt = &t
	}
	return w
}

func (s jobSchema) toDomain() domain.Job {
	j := domain.Job{
		ID:         s.ID,
		Status:     domain.JobStatus(s.Status),
		WorkflowID: s.WorkflowID,
		CreatedAt:  mustParse(s.CreatedAt),
	}
	if s.Ack != "" {
		t := mustParse(s.Ack)
		j.Ack = &t
	}
	return j
}

// mustParse is only called on values the datetime tag already accepted.
func mustParse(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
