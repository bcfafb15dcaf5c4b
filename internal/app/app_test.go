package app

import (
	"context"
	"io"
	"testing"
	"time"

	"jobtrack/internal/config"
	"jobtrack/internal/infrastructure/inproc"
	redisinfra "jobtrack/internal/infrastructure/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	return &config.Config{
		Store:  config.StoreConfig{Driver: driver, Path: t.TempDir()},
		Redis:  config.RedisConfig{Prefix: "jobtrack:"},
		Events: config.EventsConfig{Driver: "memory", Buffer: 8},
		Jobs:   config.JobsConfig{Lease: time.Minute},
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNew_Drivers(t *testing.T) {
	mr := miniredis.RunT(t)

	for _, driver := range []string{"fs", "memory", "pebble", "sqlite", "redis"} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t, driver)
			cfg.Redis.Addr = mr.Addr()
			ctx := context.Background()

			a, err := New(ctx, cfg, quietLogger())
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			defer func() {
				if err := a.Close(); err != nil {
					t.Errorf("Close: %v", err)
				}
			}()

			w, err := a.Workflows.Create(ctx)
			if err != nil {
				t.Fatalf("Create workflow: %v", err)
			}
			if _, err := a.Jobs.Create(ctx, w.ID); err != nil {
				t.Fatalf("Create job: %v", err)
			}
			job, err := a.Jobs.Consume(ctx, w.ID)
			if err != nil || job == nil {
				t.Fatalf("Consume = %v, %v", job, err)
			}
		})
	}
}

func TestNew_RedisEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, "memory")
	cfg.Events.Driver = "redis"
	cfg.Redis.Addr = mr.Addr()

	a, err := New(context.Background(), cfg, quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if _, ok := a.Bus.(*redisinfra.RedisEventBus); !ok {
		t.Errorf("bus = %T, want *redis.RedisEventBus", a.Bus)
	}
}

func TestNew_MemoryEvents(t *testing.T) {
	a, err := New(context.Background(), testConfig(t, "memory"), quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if _, ok := a.Bus.(*inproc.EventBus); !ok {
		t.Errorf("bus = %T, want *inproc.EventBus", a.Bus)
	}
}

func TestNew_RedisUnavailable(t *testing.T) {
	cfg := testConfig(t, "redis")
	cfg.Redis.Addr = "127.0.0.1:1"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := New(ctx, cfg, quietLogger()); err == nil {
		t.Fatal("expected error for unreachable redis")
	}
}
