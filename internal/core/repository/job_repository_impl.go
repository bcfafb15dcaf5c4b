package repository

import (
	"context"
	"errors"
	"fmt"

	"jobtrack/internal/core/ports"
	"jobtrack/internal/document"
	"jobtrack/internal/domain"
	"jobtrack/internal/index"

	"github.com/sirupsen/logrus"
)

const jobIndexField = "jobs"

// job/workflow/<workflowId>
func workflowJobsCollection(workflowID string) document.Collection {
	return document.NewCollection("job").Collection("workflow").Collection(workflowID)
}

// job/workflow/<workflowId>/index
func jobIndexKey(workflowID string) document.Key {
	return workflowJobsCollection(workflowID).Key("index")
}

// job/workflow/<workflowId>/job
func jobCollection(workflowID string) document.Collection {
	return workflowJobsCollection(workflowID).Collection("job")
}

type jobRepository struct {
	store *document.Store
	log   *logrus.Entry
}

// NewJobRepository creates a new instance of JobRepository
func NewJobRepository(store *document.Store, log *logrus.Entry) ports.JobRepository {
	return &jobRepository{store: store, log: log.WithField("repository", "job")}
}

func (r *jobRepository) Create(ctx context.Context, job domain.Job) error {
	idx, err := index.Load(ctx, r.store, jobIndexKey(job.WorkflowID), jobIndexField)
	if err != nil {
		return err
	}

	jd := NewJobDocument(nil)
	jd.Apply(job)
	if _, err := jd.ToJob(); err != nil {
		return err
	}
	if err := idx.Append(job.ID); err != nil {
		return err
	}

	if err := r.store.Set(ctx, jobCollection(job.WorkflowID).Key(job.ID), jd.Document()); err != nil {
		return err
	}
	return idx.Save(ctx, r.store)
}

func (r *jobRepository) FindByID(ctx context.Context, workflowID, jobID string) (*domain.Job, error) {
	doc, err := r.store.Get(ctx, jobCollection(workflowID).Key(jobID))
	if err != nil || doc == nil {
		return nil, err
	}
	job, err := NewJobDocument(doc).ToJob()
	if err != nil {
		return nil, fmt.Errorf("job %s/%s: %w", workflowID, jobID, err)
	}
	return &job, nil
}

func (r *jobRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]domain.Job, error) {
	idx, err := index.Load(ctx, r.store, jobIndexKey(workflowID), jobIndexField)
	if err != nil {
		return nil, err
	}

	jobs := make([]domain.Job, 0, idx.Len())
	for _, id := range idx.List() {
		job, err := r.FindByID(ctx, workflowID, id)
		if err != nil {
			return nil, err
		}
		if job == nil {
			continue
		}
		if job.WorkflowID != workflowID {
			r.log.WithFields(logrus.Fields{"workflow_id": workflowID, "job_id": id, "job_workflow_id": job.WorkflowID}).
				Warn("job filed under another workflow, skipping")
			continue
		}
		jobs = append(jobs, *job)
	}
	return jobs, nil
}

// Save keeps fields of the stored document it does not know about.
func (r *jobRepository) Save(ctx context.Context, job domain.Job) error {
	key := jobCollection(job.WorkflowID).Key(job.ID)
	doc, err := r.store.Get(ctx, key)
	if err != nil {
		return err
	}
	jd := NewJobDocument(doc)
	jd.Apply(job)
	if _, err := jd.ToJob(); err != nil {
		return err
	}
	return r.store.Set(ctx, key, jd.Document())
}

func (r *jobRepository) DeleteByWorkflow(ctx context.Context, workflowID string) error {
	keys, err := r.store.List(ctx, jobCollection(workflowID))
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := r.store.Delete(ctx, key); err != nil && !errors.Is(err, ports.ErrNotFound) {
			return err
		}
	}
	// The index goes last so an interrupted delete can be resumed.
	if err := r.store.Delete(ctx, jobIndexKey(workflowID)); err != nil && !errors.Is(err, ports.ErrNotFound) {
		return err
	}
	return nil
}

func (r *jobRepository) Repair(ctx context.Context, workflowID string) (domain.RepairReport, error) {
	report := domain.RepairReport{Collection: jobCollection(workflowID).Path()}

	keys, err := r.store.List(ctx, jobCollection(workflowID))
	if err != nil {
		return report, err
	}
	present := make([]string, 0, len(keys))
	for _, k := range keys {
		present = append(present, k.Name())
	}

	idx, err := index.Load(ctx, r.store, jobIndexKey(workflowID), jobIndexField)
	if err != nil {
		return report, err
	}
	if idx.Len() == 0 && len(present) == 0 {
		return report, nil
	}
	report.Dropped, report.Added = idx.Reconcile(present)
	if !report.Changed() {
		return report, nil
	}
	return report, idx.Save(ctx, r.store)
}
