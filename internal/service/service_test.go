package service_test

import (
	"io"
	"sync"
	"testing"
	"time"

	"jobtrack/internal/core/ports"
	"jobtrack/internal/core/repository"
	"jobtrack/internal/document"
	"jobtrack/internal/infrastructure/inproc"
	"jobtrack/internal/infrastructure/memdb"
	"jobtrack/internal/service"

	"github.com/sirupsen/logrus"
)

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	kv        ports.KVStore
	clock     *clock
	bus       *inproc.EventBus
	workflows service.WorkflowService
	jobs      service.JobService
}

func newFixture(t *testing.T, opts ...service.Option) *fixture {
	t.Helper()
	kv, err := memdb.New()
	if err != nil {
		t.Fatalf("memdb.New: %v", err)
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	log := logrus.NewEntry(l)

	store := document.NewStore(kv)
	workflowRepo := repository.NewWorkflowRepository(store, log)
	jobRepo := repository.NewJobRepository(store, log)

	c := newClock()
	bus := inproc.NewEventBus(128)
	common := append([]service.Option{
		service.WithClock(c.Now),
		service.WithLocker(service.NewLocker()),
	}, opts...)

	return &fixture{
		kv:        kv,
		clock:     c,
		bus:       bus,
		workflows: service.NewWorkflowService(workflowRepo, jobRepo, bus, common...),
		jobs:      service.NewJobService(jobRepo, bus, common...),
	}
}
