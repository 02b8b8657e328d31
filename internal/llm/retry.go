package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// RetryProvider is a decorator that retries transient errors with
// exponential backoff and jitter.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	logger *zap.Logger
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig, logger *zap.Logger) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryProvider{inner: p, config: cfg, logger: logger}
}

type retryClass int

const (
	retryNever retryClass = iota
	retryOnce
	retryAlways
)

// classify sorts a provider error by how often it is worth repeating.
// Rate limits, outages and network errors are transient. A malformed reply
// is retried once; the question source applies its own failure budget on
// top of that.
func classify(err error) retryClass {
	var (
		maxTok *ErrMaxTokensExceeded
		inv    *ErrInvalidResponse
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return retryNever
	case errors.As(err, &maxTok):
		return retryNever
	case errors.As(err, &inv):
		return retryOnce
	}
	return retryAlways
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	onceUsed := false
	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		switch classify(err) {
		case retryNever:
			return nil, err
		case retryOnce:
			if onceUsed {
				return nil, err
			}
			onceUsed = true
		}
		if attempt >= r.config.MaxAttempts {
			return nil, err
		}

		wait := r.backoff(attempt, err)
		r.logger.Debug("retrying llm request",
			zap.String("model", r.inner.ModelID()),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// backoff is the wait after the given 1-based attempt. A server supplied
// Retry-After wins but never exceeds MaxWait.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return min(rl.RetryAfter, r.config.MaxWait)
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt-1))
	wait = min(wait, float64(r.config.MaxWait))
	// ±20% jitter.
	wait *= 0.8 + 0.4*rand.Float64()
	return time.Duration(wait)
}

// TimeoutProvider bounds each Generate call with a deadline.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps p so every call is cancelled after d. A non-positive d
// returns p unchanged.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &TimeoutProvider{inner: p, timeout: d}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *TimeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
