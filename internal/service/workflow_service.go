package service

import (
	"context"
	"errors"
	"sync"

	"jobtrack/internal/core/ports"
	"jobtrack/internal/domain"

	"github.com/sirupsen/logrus"
)

type WorkflowService interface {
	Create(ctx context.Context) (*domain.Workflow, error)
	Get(ctx context.Context, workflowID string) (*domain.Workflow, error)
	List(ctx context.Context) ([]domain.Workflow, error)
	Update(ctx context.Context, workflowID string, mutations []domain.Mutation) (*domain.Workflow, error)
	Rename(ctx context.Context, workflowID, name string) (*domain.Workflow, error)
	Delete(ctx context.Context, workflowID string) (bool, error)
	Repair(ctx context.Context) ([]domain.RepairReport, error)
}

// The Implementation
type workflowService struct {
	workflows ports.WorkflowRepository
	jobs      ports.JobRepository
	bus       ports.EventBus
	opts      options

	// indexMu serializes writers of the global workflow index.
	indexMu sync.Mutex
}

// Constructor
func NewWorkflowService(workflows ports.WorkflowRepository, jobs ports.JobRepository, bus ports.EventBus, opts ...Option) WorkflowService {
	o := newOptions(opts)
	o.log = o.log.WithField("service", "workflow")
	return &workflowService{
		workflows: workflows,
		jobs:      jobs,
		bus:       bus,
		opts:      o,
	}
}

func (s *workflowService) Create(ctx context.Context) (*domain.Workflow, error) {
	workflow := domain.NewWorkflow()

	s.indexMu.Lock()
	err := s.workflows.Create(ctx, workflow)
	s.indexMu.Unlock()
	if err != nil {
		return nil, err
	}

	s.opts.log.WithField("workflow_id", workflow.ID).Info("workflow created")
	s.publish(ctx, domain.EventWorkflowCreated, workflow.ID)
	return &workflow, nil
}

func (s *workflowService) Get(ctx context.Context, workflowID string) (*domain.Workflow, error) {
	return s.workflows.GetByID(ctx, workflowID)
}

func (s *workflowService) List(ctx context.Context) ([]domain.Workflow, error) {
	// List rewrites the index document, so it takes the writer lock too.
	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	return s.workflows.List(ctx)
}

// Update stamps updatedAt even when mutations is empty.
func (s *workflowService) Update(ctx context.Context, workflowID string, mutations []domain.Mutation) (*domain.Workflow, error) {
	unlock := s.opts.locker.Lock(workflowID)
	workflow, err := s.workflows.Patch(ctx, workflowID, mutations, s.opts.now())
	unlock()
	if err != nil || workflow == nil {
		return workflow, err
	}

	s.opts.log.WithFields(logrus.Fields{
		"workflow_id": workflowID,
		"name":        workflow.DisplayName(),
		"mutations":   len(mutations),
	}).Debug("workflow updated")
	s.publish(ctx, domain.EventWorkflowUpdated, workflowID)
	return workflow, nil
}

func (s *workflowService) Rename(ctx context.Context, workflowID, name string) (*domain.Workflow, error) {
	return s.Update(ctx, workflowID, []domain.Mutation{{Path: []string{"name"}, Value: name}})
}

// Delete removes the workflow document, its index entry and then its jobs.
func (s *workflowService) Delete(ctx context.Context, workflowID string) (bool, error) {
	unlock := s.opts.locker.Lock(workflowID)
	defer unlock()

	s.indexMu.Lock()
	deleted, err := s.workflows.Delete(ctx, workflowID)
	s.indexMu.Unlock()
	if err != nil || !deleted {
		return deleted, err
	}

	if err := s.jobs.DeleteByWorkflow(ctx, workflowID); err != nil {
		return true, err
	}

	s.opts.log.WithField("workflow_id", workflowID).Info("workflow deleted")
	s.publish(ctx, domain.EventWorkflowDeleted, workflowID)
	return true, nil
}

// Repair reconciles the workflow index and then each workflow's job index.
func (s *workflowService) Repair(ctx context.Context) ([]domain.RepairReport, error) {
	s.indexMu.Lock()
	report, err := s.workflows.Repair(ctx)
	s.indexMu.Unlock()
	if err != nil {
		return nil, err
	}
	reports := []domain.RepairReport{report}

	workflows, err := s.List(ctx)
	if err != nil {
		return reports, err
	}

	var errs []error
	for _, w := range workflows {
		unlock := s.opts.locker.Lock(w.ID)
		jobReport, err := s.jobs.Repair(ctx, w.ID)
		unlock()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if jobReport.Changed() {
			reports = append(reports, jobReport)
		}
	}

	for _, r := range reports {
		if r.Changed() {
			s.opts.log.WithField("collection", r.Collection).
				WithField("dropped", len(r.Dropped)).
				WithField("added", len(r.Added)).
				Warn("index repaired")
		}
	}
	return reports, errors.Join(errs...)
}

func (s *workflowService) publish(ctx context.Context, t domain.EventType, workflowID string) {
	event := domain.Event{Type: t, WorkflowID: workflowID, At: s.opts.now()}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.opts.log.WithError(err).WithField("event", t).Warn("failed to publish event")
	}
}
