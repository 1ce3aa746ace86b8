// internal/platform/resilience/retryable_storage.go
package resilience

import (
	"context"
	"io"
	"math"
	"time"

	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/core/ports"
	"ingestrouter/internal/platform/errors"
	"ingestrouter/internal/platform/logx"
)

// RetryOptions configura RetryableStorage.
type RetryOptions struct {
	MaxRetries        int
	BackoffBase       time.Duration
	BackoffMultiplier float64

	// Breaker es opcional; nil = sin circuit breaker
	Breaker *CircuitBreaker
	Logger  logx.Logger
}

// RetryableStorage envuelve un ports.Storage con retry exponencial y circuit breaker.
// Los errores not-found y de input inválido no se reintentan ni cuentan como fallos
// del backend. Save solo se reintenta si el reader implementa io.Seeker.
type RetryableStorage struct {
	inner ports.Storage
	opts  RetryOptions
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryableStorage crea el wrapper.
func NewRetryableStorage(inner ports.Storage, opts RetryOptions) *RetryableStorage {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = 500 * time.Millisecond
	}
	if opts.BackoffMultiplier < 1.0 {
		opts.BackoffMultiplier = 2.0
	}
	if opts.Logger == nil {
		opts.Logger = logx.NewSilent()
	}
	opts.Logger = opts.Logger.With("component", "retryable-storage", "backend", inner.Name())

	return &RetryableStorage{inner: inner, opts: opts, sleep: sleepContext}
}

func (r *RetryableStorage) Name() string { return r.inner.Name() }

// Breaker retorna el circuit breaker (nil si no hay).
func (r *RetryableStorage) Breaker() *CircuitBreaker { return r.opts.Breaker }

func (r *RetryableStorage) Fetch(ctx context.Context, ref domain.FileReference) (io.ReadCloser, error) {
	var rc io.ReadCloser
	err := r.do(ctx, "fetch", r.opts.MaxRetries, func() error {
		var err error
		rc, err = r.inner.Fetch(ctx, ref)
		return err
	})
	return rc, err
}

func (r *RetryableStorage) Save(ctx context.Context, key string, body io.Reader, size int64) error {
	seeker, ok := body.(io.Seeker)
	retries := r.opts.MaxRetries
	if !ok {
		retries = 0
	}

	first := true
	return r.do(ctx, "save", retries, func() error {
		if !first {
			if _, err := seeker.Seek(0, io.SeekStart); err != nil {
				return errors.Wrap(err, "rewind body")
			}
		}
		first = false
		return r.inner.Save(ctx, key, body, size)
	})
}

func (r *RetryableStorage) Delete(ctx context.Context, ref domain.FileReference) error {
	return r.do(ctx, "delete", r.opts.MaxRetries, func() error {
		return r.inner.Delete(ctx, ref)
	})
}

func (r *RetryableStorage) do(ctx context.Context, op string, maxRetries int, fn func() error) error {
	cb := r.opts.Breaker
	if cb != nil && !cb.Allow() {
		return errors.Wrapf(errors.Join(errors.ErrStorageUnavailable, ErrCircuitOpen), "%s %s", op, r.inner.Name())
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := r.backoff(attempt - 1)
			r.opts.Logger.Debug("retrying storage call", "op", op, "attempt", attempt, "delay_ms", delay.Milliseconds())
			if err := r.sleep(ctx, delay); err != nil {
				lastErr = err
				break
			}
		}

		err := fn()
		if err == nil {
			if cb != nil {
				cb.RecordSuccess()
			}
			return nil
		}
		if permanent(err) {
			// el backend respondió: no es una caída
			if cb != nil {
				cb.RecordSuccess()
			}
			return err
		}

		lastErr = err
		r.opts.Logger.Warn("storage call failed", "op", op, "attempt", attempt+1, "error", err.Error())
	}

	if cb != nil {
		cb.RecordFailure()
	}
	return errors.Wrapf(lastErr, "%s failed after retries", op)
}

func (r *RetryableStorage) backoff(attempt int) time.Duration {
	d := time.Duration(float64(r.opts.BackoffBase) * math.Pow(r.opts.BackoffMultiplier, float64(attempt)))
	if d > time.Minute {
		d = time.Minute
	}
	return d
}

func permanent(err error) bool {
	return errors.IsNotFound(err) || errors.IsInvalidInput(err) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
