package worker

import (
	"context"
	"sort"

	"jobtrack/internal/domain"

	"github.com/sirupsen/logrus"
)

// JobHandler runs a claimed job and returns the status to settle it with.
// A returned error settles the job as rejected.
type JobHandler func(ctx context.Context, job domain.Job) (domain.JobStatus, error)

// Registry maps workflow ids to the handler that runs their jobs.
type Registry map[string]JobHandler

func NewRegistry() Registry {
	return make(Registry)
}

func (r Registry) Register(workflowID string, handler JobHandler) {
	r[workflowID] = handler
}

// Workflows returns the registered workflow ids in a stable order.
func (r Registry) Workflows() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LogHandler acknowledges every job as successful after logging it.
func LogHandler(log *logrus.Entry) JobHandler {
	return func(ctx context.Context, job domain.Job) (domain.JobStatus, error) {
		log.WithFields(logrus.Fields{
			"workflow_id": job.WorkflowID,
			"job_id":      job.ID,
			"created_at":  job.CreatedAt,
		}).Info("processing job")
		return domain.StatusSuccess, nil
	}
}
