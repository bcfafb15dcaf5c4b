package service

import (
	"io"
	"time"

	"jobtrack/internal/domain"
	"jobtrack/internal/metrics"

	"github.com/sirupsen/logrus"
)

type options struct {
	clock   func() time.Time
	lease   time.Duration
	locker  *Locker
	log     *logrus.Entry
	metrics *metrics.Metrics
}

// Option configures a service.
type Option func(*options)

// WithClock replaces time.Now, mostly for tests.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// WithLease sets how long a consumed job stays claimed.
func WithLease(lease time.Duration) Option {
	return func(o *options) {
		if lease > 0 {
			o.lease = lease
		}
	}
}

// WithLocker shares per-workflow locks between services.
func WithLocker(l *Locker) Option {
	return func(o *options) { o.locker = l }
}

func WithLogger(log *logrus.Entry) Option {
	return func(o *options) { o.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func newOptions(opts []Option) options {
	o := options{
		clock: time.Now,
		lease: domain.DefaultLease,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.locker == nil {
		o.locker = NewLocker()
	}
	if o.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.log = logrus.NewEntry(l)
	}
	return o
}

func (o options) now() time.Time {
	return o.clock().UTC()
}
