package observer

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RetryConfig bounds the observer's network call. It governs only the
// judge-model call, never the heuristic gates. Read-only after startup.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryConfig returns the production defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
	}
}

// ObserveWithRetry runs the observer under the retry policy: transient
// failures back off exponentially (doubling from InitialDelay, capped at
// MaxDelay) up to MaxAttempts total tries; permanent failures return
// immediately. The context deadline aborts both in-flight calls and
// backoff sleeps.
func ObserveWithRetry(ctx context.Context, obs Observer, input, output string, cfg RetryConfig, logger *zap.Logger) (ObservationResult, error) {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		res, err := obs.Observe(ctx, input, output)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if !IsTransient(err) {
			logger.Warn("observer failed permanently, not retrying",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return ObservationResult{}, err
		}
		if attempt == attempts {
			break
		}

		logger.Warn("observer failed, backing off",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := sleep(ctx, delay); err != nil {
			return ObservationResult{}, err
		}
		delay *= 2
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return ObservationResult{}, lastErr
}

// sleep waits for d or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
