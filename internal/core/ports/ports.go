package ports

import (
	"context"
	"time"

	"jobtrack/internal/domain"
)

// KVStore is the byte-level storage every backend implements.
// Keys are slash separated paths such as "job/workflow/<id>/index".
type KVStore interface {
	// Get returns ErrNotFound when nothing is stored under key
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes unconditionally (last writer wins)
	Set(ctx context.Context, key string, value []byte) error

	// Delete returns ErrNotFound when nothing is stored under key
	Delete(ctx context.Context, key string) error

	// List returns every stored key starting with prefix, sorted ascending
	List(ctx context.Context, prefix string) ([]string, error)

	Close() error
}

// EventBus represents the event bus operations
type EventBus interface {
	// Publish broadcasts a workflow or job change
	Publish(ctx context.Context, event domain.Event) error

	// Subscribe opens a stream that stays open until ctx is cancelled
	Subscribe(ctx context.Context) (<-chan domain.Event, error)
}

// WorkflowRepository represents the workflow repository operations
type WorkflowRepository interface {
	// Create stores a new workflow document and registers it in the index
	Create(ctx context.Context, workflow domain.Workflow) error

	// GetByID returns nil when the workflow document does not exist
	GetByID(ctx context.Context, workflowID string) (*domain.Workflow, error)

	// List walks the workflow index and skips ids whose document is missing
	List(ctx context.Context) ([]domain.Workflow, error)

	// Patch applies the mutations in order and stamps updatedAt.
	// It returns nil without writing when the workflow does not exist.
	Patch(ctx context.Context, workflowID string, mutations []domain.Mutation, updatedAt time.Time) (*domain.Workflow, error)

	// Delete reports false when the id is not in the index
	Delete(ctx context.Context, workflowID string) (bool, error)

	// Repair reconciles the index with the stored documents
	Repair(ctx context.Context) (domain.RepairReport, error)
}

// JobRepository represents the job repository operations
type JobRepository interface {
	// Create stores the job document and appends its id to the workflow's job index
	Create(ctx context.Context, job domain.Job) error

	// FindByID returns nil when the job document does not exist
	FindByID(ctx context.Context, workflowID, jobID string) (*domain.Job, error)

	// ListByWorkflow returns jobs in index order, skipping missing documents
	ListByWorkflow(ctx context.Context, workflowID string) ([]domain.Job, error)

	// Save overwrites an existing job document
	Save(ctx context.Context, job domain.Job) error

	// DeleteByWorkflow removes every job document of a workflow and its index
	DeleteByWorkflow(ctx context.Context, workflowID string) error

	// Repair reconciles the job index of one workflow with the stored documents
	Repair(ctx context.Context, workflowID string) (domain.RepairReport, error)
}
