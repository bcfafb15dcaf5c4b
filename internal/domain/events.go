package domain

import (
	"time"
)

type EventType string

const (
	EventWorkflowCreated EventType = "workflow.created"
	EventWorkflowUpdated EventType = "workflow.updated"
	EventWorkflowDeleted EventType = "workflow.deleted"

	EventJobCreated       EventType = "job.created"
	EventJobClaimed       EventType = "job.claimed"
	EventJobReactivated   EventType = "job.reactivated"
	EventJobStatusUpdated EventType = "job.status_updated"
)

// Event is published on the event bus after every successful write
type Event struct {
	Type       EventType `json:"type"`
	WorkflowID string    `json:"workflow_id"`
	JobID      string    `json:"job_id,omitempty"`
	Status     JobStatus `json:"status,omitempty"`
	At         time.Time `json:"at"`
}
