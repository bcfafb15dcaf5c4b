package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"jobtrack/internal/domain"
	"jobtrack/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrNoHandler settles jobs of workflows without a registered handler.
var ErrNoHandler = errors.New("worker: no handler registered for workflow")

type Worker struct {
	workerID     string
	jobs         service.JobService
	registry     Registry
	lease        time.Duration
	pollInterval time.Duration
	log          *logrus.Entry

	wg sync.WaitGroup
}

type Option func(*Worker)

// WithLease sets the claim lease; heartbeats run every half lease.
func WithLease(lease time.Duration) Option {
	return func(w *Worker) {
		if lease > 0 {
			w.lease = lease
		}
	}
}

// WithPollInterval sets how long an idle pool waits before polling again.
func WithPollInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

func WithLogger(log *logrus.Entry) Option {
	return func(w *Worker) { w.log = log }
}

func NewWorker(jobs service.JobService, reg Registry, opts ...Option) *Worker {
	w := &Worker{
		workerID:     uuid.NewString(),
		jobs:         jobs,
		registry:     reg,
		lease:        domain.DefaultLease,
		pollInterval: time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		w.log = logrus.NewEntry(l)
	}
	w.log = w.log.WithField("worker_id", w.workerID)
	return w
}

func (w *Worker) ID() string { return w.workerID }

// ProcessNext claims one job of the workflow, runs its handler while
// heartbeating the claim, and settles the job. It reports whether a job was
// claimed.
func (w *Worker) ProcessNext(ctx context.Context, workflowID string) (bool, error) {
	job, err := w.jobs.Consume(ctx, workflowID)
	if err != nil {
		return false, fmt.Errorf("worker: consume: %w", err)
	}
	if job == nil {
		return false, nil
	}

	log := w.log.WithFields(logrus.Fields{"workflow_id": workflowID, "job_id": job.ID})
	log.Debug("claimed job")

	hbCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.heartbeat(hbCtx, *job, log)
	}()

	status, runErr := w.run(ctx, workflowID, *job)
	stop()
	<-done

	if runErr != nil {
		log.WithError(runErr).Warn("job failed")
		status = domain.StatusRejected
	}

	// Settle even when ctx is cancelled so a finished job is not run twice.
	settleCtx := context.WithoutCancel(ctx)
	if _, err := w.jobs.UpdateStatus(settleCtx, workflowID, job.ID, status); err != nil {
		return true, fmt.Errorf("worker: settle job %s: %w", job.ID, err)
	}
	if status.Terminal() {
		log.WithField("status", status).Info("job settled")
	} else {
		log.Info("job released back to pending")
	}
	return true, nil
}

func (w *Worker) run(ctx context.Context, workflowID string, job domain.Job) (status domain.JobStatus, err error) {
	handler, ok := w.registry[workflowID]
	if !ok {
		return domain.StatusRejected, ErrNoHandler
	}

	defer func() {
		if r := recover(); r != nil {
			status, err = domain.StatusRejected, fmt.Errorf("worker: handler panic: %v", r)
		}
	}()

	status, err = handler(ctx, job)
	if err == nil && !status.Valid() {
		err = fmt.Errorf("worker: handler returned unknown status %q", status)
	}
	return status, err
}

// minHeartbeat bounds the reactivation rate for very short leases.
const minHeartbeat = 10 * time.Millisecond

// heartbeat keeps the claim alive by reactivating the job every half lease.
func (w *Worker) heartbeat(ctx context.Context, job domain.Job, log *logrus.Entry) {
	interval := w.lease / 2
	if interval < minHeartbeat {
		interval = minHeartbeat
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.jobs.Reactivate(ctx, job.WorkflowID, job.ID); err != nil && ctx.Err() == nil {
				log.WithError(err).Warn("heartbeat failed")
			}
		}
	}
}

// StartPool launches concurrent loops that poll every registered workflow
// in turn. Wait blocks until they exit after ctx is cancelled.
func (w *Worker) StartPool(ctx context.Context, concurrency int) {
	w.log.WithField("concurrency", concurrency).Info("starting worker pool")

	for i := 0; i < concurrency; i++ {
		w.wg.Add(1)
		go func(threadID int) {
			defer w.wg.Done()
			log := w.log.WithField("thread", threadID)
			log.Debug("worker thread started")

			for {
				processed := false
				for _, workflowID := range w.registry.Workflows() {
					if ctx.Err() != nil {
						break
					}
					ok, err := w.ProcessNext(ctx, workflowID)
					if err != nil && ctx.Err() == nil {
						log.WithError(err).Error("process job")
					}
					processed = processed || ok
				}

				if processed {
					continue
				}
				select {
				case <-ctx.Done():
					log.Debug("worker thread shutting down")
					return
				case <-time.After(w.pollInterval):
				}
			}
		}(i)
	}
}

func (w *Worker) Wait() {
	w.wg.Wait()
}
