package dto

import "jobtrack/internal/domain"

type ConsumeJob struct {
	WorkflowID string `json:"workflowId" binding:"required"`
}

type ReactiveJob struct {
	WorkflowID string `json:"workflowId" binding:"required"`
	JobID      string `json:"jobId" binding:"required"`
}

type UpdateStatusJob struct {
	WorkflowID string `json:"workflowId" binding:"required"`
	JobID      string `json:"jobId" binding:"required"`
	Status     string `json:"status" binding:"required,oneof=pending success rejected"`
}

// JobCallRequest is the tagged union accepted by POST /api/job.
// Exactly one member must be set.
type JobCallRequest struct {
	ConsumeJob      *ConsumeJob      `json:"consumeJob,omitempty"`
	ReactiveJob     *ReactiveJob     `json:"reactiveJob,omitempty"`
	UpdateStatusJob *UpdateStatusJob `json:"updateStatusJob,omitempty"`
}

// Members returns the names of the union members present in the request.
func (r JobCallRequest) Members() []string {
	var set []string
	if r.ConsumeJob != nil {
		set = append(set, "consumeJob")
	}
	if r.ReactiveJob != nil {
		set = append(set, "reactiveJob")
	}
	if r.UpdateStatusJob != nil {
		set = append(set, "updateStatusJob")
	}
	return set
}

type UpdateWorkflowRequest struct {
	Mutations []domain.Mutation `json:"mutations" binding:"required,dive"`
}

type RenameWorkflowRequest struct {
	Name string `form:"name" binding:"required"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Fields any    `json:"fields,omitempty"`
}
