package handler

import (
	"net/http"

	"jobtrack/internal/api/dto"
	"jobtrack/internal/domain"
	"jobtrack/internal/service"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobs      service.JobService
	workflows service.WorkflowService
}

func NewJobHandler(jobs service.JobService, workflows service.WorkflowService) *JobHandler {
	return &JobHandler{jobs: jobs, workflows: workflows}
}

// Schema serves the JSON schema of the job call payload.
func (h *JobHandler) Schema(c *gin.Context) {
	c.JSON(http.StatusOK, dto.JobCallSchema)
}

// Call dispatches one job call and answers with the resulting job, or null.
func (h *JobHandler) Call(c *gin.Context) {
	var req dto.JobCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if members := req.Members(); len(members) != 1 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:  "exactly one of consumeJob, reactiveJob or updateStatusJob is required",
			Fields: members,
		})
		return
	}

	ctx := c.Request.Context()
	var (
		job *domain.Job
		err error
	)
	switch {
	case req.ConsumeJob != nil:
		job, err = h.jobs.Consume(ctx, req.ConsumeJob.WorkflowID)
	case req.ReactiveJob != nil:
		job, err = h.jobs.Reactivate(ctx, req.ReactiveJob.WorkflowID, req.ReactiveJob.JobID)
	case req.UpdateStatusJob != nil:
		call := req.UpdateStatusJob
		job, err = h.jobs.UpdateStatus(ctx, call.WorkflowID, call.JobID, domain.JobStatus(call.Status))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) List(c *gin.Context) {
	jobs, err := h.jobs.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	workflowID := c.Param("id")

	workflow, err := h.workflows.Get(ctx, workflowID)
	if err != nil {
		respondError(c, err)
		return
	}
	if workflow == nil {
		notFound(c, "workflow")
		return
	}

	job, err := h.jobs.Create(ctx, workflowID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

// Consume answers 204 when no job is available.
func (h *JobHandler) Consume(c *gin.Context) {
	job, err := h.jobs.Consume(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if job == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Reactivate(c *gin.Context) {
	job, err := h.jobs.Reactivate(c.Request.Context(), c.Param("id"), c.Param("jobId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if job == nil {
		notFound(c, "job")
		return
	}
	c.JSON(http.StatusOK, job)
}
