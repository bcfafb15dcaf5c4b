package domain

import (
	"fmt"
	"time"
)

type JobStatus string

const (
	StatusPending  JobStatus = "pending"
	StatusSuccess  JobStatus = "success"
	StatusRejected JobStatus = "rejected"
)

// DefaultLease is how long a claimed job stays invisible to other consumers.
const DefaultLease = 2 * time.Minute

type Job struct {
	ID         string     `json:"id"`
	Status     JobStatus  `json:"status"`
	WorkflowID string     `json:"workflowId"`
	CreatedAt  time.Time  `json:"createdAt"`
	Ack        *time.Time `json:"ack,omitempty"`
}

func NewJob(workflowID string, now time.Time) Job {
	return Job{
		ID:         NewID(),
		Status:     StatusPending,
		WorkflowID: workflowID,
		CreatedAt:  now.UTC(),
	}
}

func ParseJobStatus(s string) (JobStatus, error) {
	status := JobStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown job status %q", s)
	}
	return status, nil
}

func (s JobStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusRejected:
		return true
	}
	return false
}

func (s JobStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusRejected
}

// IsCollected reports whether a consumer claimed the job less than lease ago.
func (j Job) IsCollected(now time.Time, lease time.Duration) bool {
	if j.Ack == nil {
		return false
	}
	return now.Sub(*j.Ack) <= lease
}

func (j Job) Claimable(now time.Time, lease time.Duration) bool {
	return j.Status == StatusPending && !j.IsCollected(now, lease)
}

// WithAck returns a copy acked at now. The stored ack never moves backwards
// and always changes, even when the clock has not advanced.
func (j Job) WithAck(now time.Time) Job {
	ack := now.UTC()
	if j.Ack != nil && !ack.After(*j.Ack) {
		ack = j.Ack.Add(time.Nanosecond)
	}
	j.Ack = &ack
	return j
}
