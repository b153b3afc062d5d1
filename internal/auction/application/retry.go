package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/clanarena/draftroom/internal/shared/logger"
)

var log = logger.GetLogger()

// RetryPolicy bounds the asynchronous retries applied to infra side effects
// (roster persistence, scrim creation, chat storage). These calls never gate
// the broadcast of the in-memory transition that already happened
type RetryPolicy struct {
	Attempts int
	// BaseDelay doubles after every failed attempt
	BaseDelay time.Duration
}

// DefaultRetryPolicy is what room actors use unless configured otherwise
var DefaultRetryPolicy = RetryPolicy{Attempts: 5, BaseDelay: 500 * time.Millisecond}

// Run executes op until it succeeds, the attempts are exhausted, or ctx is
// cancelled. Returns the last error on exhaustion
func (p RetryPolicy) Run(ctx context.Context, name string, op func(ctx context.Context) error) error {
	delay := p.BaseDelay
	var err error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		log.Warn("infra side effect failed, will retry",
			zap.String("op", name),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", p.Attempts),
			zap.Duration("nextDelay", delay),
			zap.Error(err),
		)
		if attempt == p.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	log.Error("infra side effect exhausted retries",
		zap.String("op", name),
		zap.Error(err),
	)
	return err
}
