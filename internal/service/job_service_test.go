package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"jobtrack/internal/document"
	"jobtrack/internal/domain"
	"jobtrack/internal/service"
)

func TestJobService_ConsumeScenario(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	w, err := f.workflows.Create(ctx)
	if err != nil {
		t.Fatalf("Create workflow: %v", err)
	}
	j1, _ := f.jobs.Create(ctx, w.ID)
	f.clock.Advance(time.Millisecond)
	j2, _ := f.jobs.Create(ctx, w.ID)

	got, err := f.jobs.Consume(ctx, w.ID)
	if err != nil || got == nil || got.ID != j1.ID {
		t.Fatalf("first Consume = %v, %v; want %s", got, err, j1.ID)
	}
	if got.Status != domain.StatusPending || got.Ack == nil || got.Ack.Before(j1.CreatedAt) {
		t.Errorf("claimed job = %+v", got)
	}

	got, err = f.jobs.Consume(ctx, w.ID)
	if err != nil || got == nil || got.ID != j2.ID {
		t.Fatalf("second Consume = %v, %v; want %s", got, err, j2.ID)
	}

	got, err = f.jobs.Consume(ctx, w.ID)
	if err != nil || got != nil {
		t.Fatalf("third Consume within lease = %v, %v; want nil", got, err)
	}

	f.clock.Advance(domain.DefaultLease + time.Second)
	got, err = f.jobs.Consume(ctx, w.ID)
	if err != nil || got == nil || got.ID != j1.ID {
		t.Fatalf("Consume after lease = %v, %v; want %s", got, err, j1.ID)
	}
}

func TestJobService_LeaseBoundary(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, _ = f.jobs.Create(ctx, "w1")
	if got, _ := f.jobs.Consume(ctx, "w1"); got == nil {
		t.Fatal("Consume = nil")
	}

	f.clock.Advance(domain.DefaultLease)
	if got, _ := f.jobs.Consume(ctx, "w1"); got != nil {
		t.Errorf("Consume at exactly the lease = %v, want nil", got.ID)
	}
	f.clock.Advance(time.Nanosecond)
	if got, _ := f.jobs.Consume(ctx, "w1"); got == nil {
		t.Error("Consume just past the lease = nil")
	}
}

func TestJobService_CustomLease(t *testing.T) {
	t.Parallel()
	f := newFixture(t, service.WithLease(10*time.Second))
	ctx := context.Background()

	_, _ = f.jobs.Create(ctx, "w1")
	_, _ = f.jobs.Consume(ctx, "w1")
	f.clock.Advance(11 * time.Second)
	if got, _ := f.jobs.Consume(ctx, "w1"); got == nil {
		t.Error("job not reclaimable after custom lease")
	}
}

func TestJobService_ConcurrentConsumeClaimsDistinctJobs(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	const n = 8
	for i := 0; i < n; i++ {
		if _, err := f.jobs.Create(ctx, "w1"); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[string]int{}
		none int
	)
	for i := 0; i < n*2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			job, err := f.jobs.Consume(ctx, "w1")
			if err != nil {
				t.Errorf("Consume: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if job == nil {
				none++
				return
			}
			seen[job.ID]++
		}()
	}
	wg.Wait()

	if len(seen) != n || none != n {
		t.Errorf("claimed %d distinct jobs and %d empty results, want %d and %d", len(seen), none, n, n)
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("job %s claimed %d times", id, count)
		}
	}
}

func TestJobService_Reactivate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	job, _ := f.jobs.Create(ctx, "w1")
	claimed, _ := f.jobs.Consume(ctx, "w1")

	// The clock has not moved: the ack must still strictly increase.
	again, err := f.jobs.Reactivate(ctx, "w1", job.ID)
	if err != nil || again == nil {
		t.Fatalf("Reactivate = %v, %v", again, err)
	}
	if !again.Ack.After(*claimed.Ack) {
		t.Errorf("ack %v not after %v", again.Ack, claimed.Ack)
	}

	f.clock.Advance(time.Second)
	later, _ := f.jobs.Reactivate(ctx, "w1", job.ID)
	if !later.Ack.After(*again.Ack) {
		t.Errorf("ack %v not after %v", later.Ack, again.Ack)
	}
}

func TestJobService_MissingJobWritesNothing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.jobs.Reactivate(ctx, "w1", "ghost")
	if err != nil || got != nil {
		t.Errorf("Reactivate missing = %v, %v", got, err)
	}
	got, err = f.jobs.UpdateStatus(ctx, "w1", "ghost", domain.StatusSuccess)
	if err != nil || got != nil {
		t.Errorf("UpdateStatus missing = %v, %v", got, err)
	}

	keys, _ := f.kv.List(ctx, "")
	if len(keys) != 0 {
		t.Errorf("store written: %v", keys)
	}
}

func TestJobService_TerminalJobsAreNotConsumed(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.jobs.Create(ctx, "w1")
	b, _ := f.jobs.Create(ctx, "w1")

	for _, status := range []domain.JobStatus{domain.StatusSuccess, domain.StatusRejected} {
		if _, err := f.jobs.UpdateStatus(ctx, "w1", a.ID, status); err != nil {
			t.Fatalf("UpdateStatus: %v", err)
		}
		f.clock.Advance(domain.DefaultLease * 2)

		got, _ := f.jobs.Consume(ctx, "w1")
		if got == nil || got.ID != b.ID {
			t.Errorf("after %s: Consume = %v, want %s", status, got, b.ID)
		}
		// Put b back for the next round.
		f.clock.Advance(domain.DefaultLease * 2)
	}
}

func TestJobService_UpdateStatus(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	job, _ := f.jobs.Create(ctx, "w1")

	updated, err := f.jobs.UpdateStatus(ctx, "w1", job.ID, domain.StatusSuccess)
	if err != nil || updated == nil {
		t.Fatalf("UpdateStatus = %v, %v", updated, err)
	}
	if updated.Status != domain.StatusSuccess || updated.Ack == nil {
		t.Errorf("updated = %+v", updated)
	}

	// Any transition is allowed, including back to pending.
	back, err := f.jobs.UpdateStatus(ctx, "w1", job.ID, domain.StatusPending)
	if err != nil || back.Status != domain.StatusPending {
		t.Errorf("UpdateStatus pending = %+v, %v", back, err)
	}

	if _, err := f.jobs.UpdateStatus(ctx, "w1", job.ID, "done"); !document.IsValidationError(err) {
		t.Errorf("invalid status: err = %v, want validation error", err)
	}
}

func TestJobService_ListAndEvents(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _ := f.bus.Subscribe(ctx)

	a, _ := f.jobs.Create(ctx, "w1")
	b, _ := f.jobs.Create(ctx, "w1")
	_, _ = f.jobs.Consume(ctx, "w1")

	jobs, err := f.jobs.List(ctx, "w1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) != 2 || jobs[0].ID != a.ID || jobs[1].ID != b.ID {
		t.Errorf("List = %+v", jobs)
	}

	want := []domain.EventType{domain.EventJobCreated, domain.EventJobCreated, domain.EventJobClaimed}
	for i, typ := range want {
		select {
		case e := <-events:
			if e.Type != typ || e.WorkflowID != "w1" {
				t.Errorf("event %d = %+v, want %s", i, e, typ)
			}
		case <-time.After(time.Second):
			t.Fatalf("missing event %d (%s)", i, typ)
		}
	}
}
