package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	apperrors "paylinks/internal/errors"
	"paylinks/internal/events"
	"paylinks/internal/metrics"
)

// DefaultStoreTimeout bounds every record store call.
const DefaultStoreTimeout = 5 * time.Second

type deps struct {
	log          *zap.Logger
	metrics      *metrics.Metrics
	publisher    events.Publisher
	now          func() time.Time
	storeTimeout time.Duration
}

// Option customizes a service.
type Option func(*deps)

// WithLogger sets the logger. The default discards output.
func WithLogger(log *zap.Logger) Option {
	return func(d *deps) { d.log = log }
}

// WithMetrics sets the metric collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *deps) { d.metrics = m }
}

// WithPublisher sets the status event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(d *deps) { d.publisher = p }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *deps) { d.now = now }
}

// WithStoreTimeout bounds each store call. Non-positive values keep the default.
func WithStoreTimeout(timeout time.Duration) Option {
	return func(d *deps) {
		if timeout > 0 {
			d.storeTimeout = timeout
		}
	}
}

func newDeps(opts []Option) deps {
	d := deps{
		log:          zap.NewNop(),
		publisher:    events.Nop{},
		now:          time.Now,
		storeTimeout: DefaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(&d)
	}
	if d.metrics == nil {
		d.metrics = metrics.NewNop()
	}
	return d
}

func (d deps) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.storeTimeout)
}

func (d deps) timestamp() time.Time {
	return d.now().UTC()
}

// outcomeLabel names the error kind for metric labels.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperrors.ErrValidation):
		return "validation_error"
	case errors.Is(err, apperrors.ErrConfiguration):
		return "configuration_error"
	case errors.Is(err, apperrors.ErrUpstream):
		return "upstream_error"
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrStore):
		return "store_error"
	default:
		return "error"
	}
}
