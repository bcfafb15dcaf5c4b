package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobtrack/internal/core/ports"
	"jobtrack/internal/document"
	"jobtrack/internal/domain"
	"jobtrack/internal/index"

	"github.com/sirupsen/logrus"
)

const workflowIndexField = "items"

var (
	workflowCollection = document.NewCollection("workflow")
	workflowIndexKey   = workflowCollection.Key("index")
)

// reserved reports whether id addresses the index document rather than a
// workflow. Such ids never resolve to a workflow.
func reserved(workflowID string) bool {
	return workflowID == workflowIndexKey.Name()
}

type workflowRepository struct {
	store *document.Store
	log   *logrus.Entry
}

// NewWorkflowRepository creates a new instance of WorkflowRepository
func NewWorkflowRepository(store *document.Store, log *logrus.Entry) ports.WorkflowRepository {
	return &workflowRepository{store: store, log: log.WithField("repository", "workflow")}
}

func (r *workflowRepository) Create(ctx context.Context, workflow domain.Workflow) error {
	idx, err := index.Load(ctx, r.store, workflowIndexKey, workflowIndexField)
	if err != nil {
		return err
	}

	wd := NewWorkflowDocument(nil)
	wd.SetID(workflow.ID)
	wd.SetName(workflow.Name)
	if workflow.UpdatedAt != nil {
		wd.SetUpdatedAt(*workflow.UpdatedAt)
	}
	if _, err := wd.ToWorkflow(); err != nil {
		return err
	}
	if err := idx.Append(workflow.ID); err != nil {
		return err
	}

	// Document first, then the index entry pointing at it.
	if err := r.store.Set(ctx, workflowCollection.Key(workflow.ID), wd.Document()); err != nil {
		return err
	}
	return idx.Save(ctx, r.store)
}

func (r *workflowRepository) GetByID(ctx context.Context, workflowID string) (*domain.Workflow, error) {
	if reserved(workflowID) {
		return nil, nil
	}
	doc, err := r.store.Get(ctx, workflowCollection.Key(workflowID))
	if err != nil || doc == nil {
		return nil, err
	}
	workflow, err := NewWorkflowDocument(doc).ToWorkflow()
	if err != nil {
		return nil, fmt.Errorf("workflow %s: %w", workflowID, err)
	}
	return &workflow, nil
}

// List walks the index. It writes the index back on every call, which
// creates it on first use.
func (r *workflowRepository) List(ctx context.Context) ([]domain.Workflow, error) {
	idx, err := index.Load(ctx, r.store, workflowIndexKey, workflowIndexField)
	if err != nil {
		return nil, err
	}

	workflows := make([]domain.Workflow, 0, idx.Len())
	for _, id := range idx.List() {
		workflow, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if workflow == nil {
			r.log.WithField("workflow_id", id).Warn("index entry without document, skipping")
			continue
		}
		workflows = append(workflows, *workflow)
	}

	if err := idx.Save(ctx, r.store); err != nil {
		return nil, err
	}
	return workflows, nil
}

func (r *workflowRepository) Patch(ctx context.Context, workflowID string, mutations []domain.Mutation, updatedAt time.Time) (*domain.Workflow, error) {
	if reserved(workflowID) {
		return nil, nil
	}
	key := workflowCollection.Key(workflowID)
	doc, err := r.store.Get(ctx, key)
	if err != nil || doc == nil {
		return nil, err
	}

	wd := NewWorkflowDocument(doc)
	for _, m := range mutations {
		wd.Mutate(m.Path, m.Value)
	}
	wd.SetUpdatedAt(updatedAt)

	// Reject the patch before writing anything that would not read back.
	workflow, err := wd.ToWorkflow()
	if err != nil {
		return nil, err
	}
	if workflow.ID != workflowID {
		return nil, &document.ValidationError{Fields: []document.FieldError{{Field: "id", Message: "cannot be changed"}}}
	}
	if err := r.store.Set(ctx, key, wd.Document()); err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (r *workflowRepository) Delete(ctx context.Context, workflowID string) (bool, error) {
	if reserved(workflowID) {
		return false, nil
	}
	idx, err := index.Load(ctx, r.store, workflowIndexKey, workflowIndexField)
	if err != nil {
		return false, err
	}
	pos := idx.IndexOf(workflowID)
	if pos < 0 {
		return false, nil
	}

	// Document first: a crash before the index write leaves an orphan entry
	// that List skips and Repair drops.
	err = r.store.Delete(ctx, workflowCollection.Key(workflowID))
	if errors.Is(err, ports.ErrNotFound) {
		r.log.WithField("workflow_id", workflowID).Warn("deleting orphan index entry")
	} else if err != nil {
		return false, err
	}

	if err := idx.RemoveAt(pos); err != nil {
		return false, err
	}
	if err := idx.Save(ctx, r.store); err != nil {
		return false, err
	}
	return true, nil
}

func (r *workflowRepository) Repair(ctx context.Context) (domain.RepairReport, error) {
	report := domain.RepairReport{Collection: workflowCollection.Path()}

	keys, err := r.store.List(ctx, workflowCollection)
	if err != nil {
		return report, err
	}
	present := make([]string, 0, len(keys))
	for _, k := range keys {
		if k.Name() != workflowIndexKey.Name() {
			present = append(present, k.Name())
		}
	}

	idx, err := index.Load(ctx, r.store, workflowIndexKey, workflowIndexField)
	if err != nil {
		return report, err
	}
	report.Dropped, report.Added = idx.Reconcile(present)
	if !report.Changed() {
		return report, nil
	}
	return report, idx.Save(ctx, r.store)
}
