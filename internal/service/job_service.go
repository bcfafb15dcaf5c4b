package service

import (
	"context"

	"jobtrack/internal/core/ports"
	"jobtrack/internal/document"
	"jobtrack/internal/domain"

	"github.com/sirupsen/logrus"
)

type JobService interface {
	Create(ctx context.Context, workflowID string) (*domain.Job, error)
	List(ctx context.Context, workflowID string) ([]domain.Job, error)

	// Consume claims the first pending job not acked within the lease.
	// It returns nil when no job is available.
	Consume(ctx context.Context, workflowID string) (*domain.Job, error)

	// Reactivate refreshes the ack of a job whatever its state.
	// It returns nil without writing when the job does not exist.
	Reactivate(ctx context.Context, workflowID, jobID string) (*domain.Job, error)

	// UpdateStatus sets the status and refreshes the ack. Any transition is
	// allowed. It returns nil without writing when the job does not exist.
	UpdateStatus(ctx context.Context, workflowID, jobID string, status domain.JobStatus) (*domain.Job, error)
}

type jobService struct {
	jobs ports.JobRepository
	bus  ports.EventBus
	opts options
}

func NewJobService(jobs ports.JobRepository, bus ports.EventBus, opts ...Option) JobService {
	o := newOptions(opts)
	o.log = o.log.WithField("service", "job")
	return &jobService{jobs: jobs, bus: bus, opts: o}
}

func (s *jobService) Create(ctx context.Context, workflowID string) (*domain.Job, error) {
	unlock := s.opts.locker.Lock(workflowID)
	defer unlock()

	job := domain.NewJob(workflowID, s.opts.now())
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	s.opts.metrics.ObserveJobStatus(job.Status)
	s.publish(ctx, domain.EventJobCreated, job)
	return &job, nil
}

func (s *jobService) List(ctx context.Context, workflowID string) ([]domain.Job, error) {
	return s.jobs.ListByWorkflow(ctx, workflowID)
}

func (s *jobService) Consume(ctx context.Context, workflowID string) (*domain.Job, error) {
	// The scan and the ack write happen under the workflow lock, so two
	// consumers in this process never claim the same job.
	unlock := s.opts.locker.Lock(workflowID)
	defer unlock()

	jobs, err := s.jobs.ListByWorkflow(ctx, workflowID)
	if err != nil {
		s.opts.metrics.ObserveConsume("error")
		return nil, err
	}

	now := s.opts.now()
	for _, job := range jobs {
		if !job.Claimable(now, s.opts.lease) {
			continue
		}

		claimed := job.WithAck(now)
		if err := s.jobs.Save(ctx, claimed); err != nil {
			s.opts.metrics.ObserveConsume("error")
			return nil, err
		}

		s.opts.log.WithFields(logrus.Fields{"workflow_id": workflowID, "job_id": job.ID}).Debug("job claimed")
		s.opts.metrics.ObserveConsume("claimed")
		s.publish(ctx, domain.EventJobClaimed, claimed)
		return &claimed, nil
	}

	s.opts.metrics.ObserveConsume("empty")
	return nil, nil
}

func (s *jobService) Reactivate(ctx context.Context, workflowID, jobID string) (*domain.Job, error) {
	unlock := s.opts.locker.Lock(workflowID)
	defer unlock()

	job, err := s.jobs.FindByID(ctx, workflowID, jobID)
	if err != nil || job == nil {
		return nil, err
	}

	reactivated := job.WithAck(s.opts.now())
	if err := s.jobs.Save(ctx, reactivated); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventJobReactivated, reactivated)
	return &reactivated, nil
}

func (s *jobService) UpdateStatus(ctx context.Context, workflowID, jobID string, status domain.JobStatus) (*domain.Job, error) {
	if !status.Valid() {
		return nil, &document.ValidationError{Fields: []document.FieldError{{
			Field:   "status",
			Message: "must be one of [pending success rejected]",
		}}}
	}

	unlock := s.opts.locker.Lock(workflowID)
	defer unlock()

	job, err := s.jobs.FindByID(ctx, workflowID, jobID)
	if err != nil || job == nil {
		return nil, err
	}

	updated := job.WithAck(s.opts.now())
	updated.Status = status
	if err := s.jobs.Save(ctx, updated); err != nil {
		return nil, err
	}

	s.opts.log.WithFields(logrus.Fields{
		"workflow_id": workflowID,
		"job_id":      jobID,
		"from":        job.Status,
		"to":          status,
	}).Info("job status updated")
	s.opts.metrics.ObserveJobStatus(status)
	s.publish(ctx, domain.EventJobStatusUpdated, updated)
	return &updated, nil
}

func (s *jobService) publish(ctx context.Context, t domain.EventType, job domain.Job) {
	event := domain.Event{
		Type:       t,
		WorkflowID: job.WorkflowID,
		JobID:      job.ID,
		Status:     job.Status,
		At:         s.opts.now(),
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.opts.log.WithError(err).WithField("event", t).Warn("failed to publish event")
	}
}
