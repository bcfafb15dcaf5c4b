package redis_test

import (
	"context"
	"io"
	"testing"
	"time"

	"jobtrack/internal/domain"
	redisinfra "jobtrack/internal/infrastructure/redis"

	"github.com/sirupsen/logrus"
)

func TestRedisEventBus_PublishSubscribe(t *testing.T) {
	_, client := newClient(t)
	log := logrus.New()
	log.SetOutput(io.Discard)
	bus := redisinfra.NewRedisEventBus(client, "jobtrack:", logrus.NewEntry(log))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	want := domain.Event{
		Type:       domain.EventJobClaimed,
		WorkflowID: "w1",
		JobID:      "j1",
		Status:     domain.StatusPending,
		At:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := bus.Publish(ctx, want); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-events:
		if got.Type != want.Type || got.WorkflowID != want.WorkflowID || got.JobID != want.JobID {
			t.Errorf("event = %+v, want %+v", got, want)
		}
		if !got.At.Equal(want.At) {
			t.Errorf("At = %v, want %v", got.At, want.At)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	cancel()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("channel not closed after cancel")
		}
	}
}

func TestRedisEventBus_CancelReleasesSubscription(t *testing.T) {
	mr, client := newClient(t)
	log := logrus.New()
	log.SetOutput(io.Discard)
	bus := redisinfra.NewRedisEventBus(client, "jobtrack:", logrus.NewEntry(log))

	ctx, cancel := context.WithCancel(context.Background())
	events, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if n := mr.PubSubNumSub("jobtrack:events")["jobtrack:events"]; n != 1 {
		t.Fatalf("subscribers = %d, want 1", n)
	}

	// No event is ever published, so the reader is parked in a blocking receive.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("unexpected event after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}

	deadline := time.Now().Add(2 * time.Second)
	for mr.PubSubNumSub("jobtrack:events")["jobtrack:events"] != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription still open after cancel")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
