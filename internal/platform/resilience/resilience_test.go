// internal/platform/resilience/resilience_test.go
package resilience

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/platform/errors"
	"ingestrouter/internal/testutil"
)

// flakyStorage falla las primeras `failures` llamadas con err.
type flakyStorage struct {
	failures int
	err      error
	calls    int
	saved    []string
}

func (f *flakyStorage) Name() string { return "flaky" }

func (f *flakyStorage) fail() error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func (f *flakyStorage) Fetch(ctx context.Context, ref domain.FileReference) (io.ReadCloser, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(ref.Key)), nil
}

func (f *flakyStorage) Save(ctx context.Context, key string, r io.Reader, size int64) error {
	data, _ := io.ReadAll(r)
	if err := f.fail(); err != nil {
		return err
	}
	f.saved = append(f.saved, string(data))
	return nil
}

func (f *flakyStorage) Delete(ctx context.Context, ref domain.FileReference) error {
	return f.fail()
}

func newTestStorage(inner *flakyStorage, retries int, cb *CircuitBreaker) *RetryableStorage {
	rs := NewRetryableStorage(inner, RetryOptions{MaxRetries: retries, Breaker: cb})
	rs.sleep = func(context.Context, time.Duration) error { return nil }
	return rs
}

var errBoom = errors.New("connection reset")

func TestRetryableStorage_RetriesTransientErrors(t *testing.T) {
	inner := &flakyStorage{failures: 2, err: errBoom}
	rs := newTestStorage(inner, 2, nil)

	rc, err := rs.Fetch(context.Background(), domain.NewS3Reference("raw", "a.zip"))
	testutil.AssertNoError(t, err, "fetch should succeed on third attempt")
	testutil.AssertEqual(t, inner.calls, 3, "attempts")
	_ = rc.Close()
}

func TestRetryableStorage_GivesUp(t *testing.T) {
	inner := &flakyStorage{failures: 10, err: errBoom}
	rs := newTestStorage(inner, 2, nil)

	err := rs.Delete(context.Background(), domain.NewS3Reference("raw", "a.zip"))
	testutil.AssertTrue(t, errors.Is(err, errBoom), "last error should be kept")
	testutil.AssertEqual(t, inner.calls, 3, "1 call + 2 retries")
}

func TestRetryableStorage_NotFoundIsPermanent(t *testing.T) {
	inner := &flakyStorage{failures: 10, err: errors.Wrap(errors.ErrNotFound, "a.zip")}
	cb := NewCircuitBreaker(1, time.Minute, 1)
	rs := newTestStorage(inner, 3, cb)

	_, err := rs.Fetch(context.Background(), domain.NewS3Reference("raw", "a.zip"))
	testutil.AssertTrue(t, errors.IsNotFound(err), "not-found should pass through")
	testutil.AssertEqual(t, inner.calls, 1, "no retries")
	testutil.AssertEqual(t, cb.State(), StateClosed, "breaker stays closed")
}

func TestRetryableStorage_SaveRewindsSeeker(t *testing.T) {
	inner := &flakyStorage{failures: 1, err: errBoom}
	rs := newTestStorage(inner, 1, nil)

	err := rs.Save(context.Background(), "k", bytes.NewReader([]byte("payload")), 7)
	testutil.AssertNoError(t, err, "save should succeed after rewind")
	testutil.AssertEqual(t, inner.saved, []string{"payload"}, "full body on retry")
}

func TestRetryableStorage_SaveWithoutSeekerIsNotRetried(t *testing.T) {
	inner := &flakyStorage{failures: 1, err: errBoom}
	rs := newTestStorage(inner, 3, nil)

	err := rs.Save(context.Background(), "k", io.LimitReader(strings.NewReader("payload"), 7), -1)
	testutil.AssertError(t, err, "save should fail")
	testutil.AssertEqual(t, inner.calls, 1, "single attempt")
}

func TestRetryableStorage_OpenCircuit(t *testing.T) {
	inner := &flakyStorage{failures: 100, err: errBoom}
	cb := NewCircuitBreaker(2, time.Minute, 1)
	rs := newTestStorage(inner, 0, cb)
	ref := domain.NewS3Reference("raw", "a.zip")

	_ = rs.Delete(context.Background(), ref)
	_ = rs.Delete(context.Background(), ref)
	testutil.AssertEqual(t, cb.State(), StateOpen, "breaker should open")

	err := rs.Delete(context.Background(), ref)
	testutil.AssertTrue(t, errors.Is(err, ErrCircuitOpen), "open circuit rejects calls")
	testutil.AssertTrue(t, errors.Is(err, errors.ErrStorageUnavailable), "reported as storage unavailable")
	testutil.AssertEqual(t, inner.calls, 2, "backend not called while open")
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	now := time.Date(2020, 12, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(1, 30*time.Second, 1)
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	testutil.AssertEqual(t, cb.State(), StateOpen, "open after threshold")
	testutil.AssertFalse(t, cb.Allow(), "rejects before timeout")

	now = now.Add(31 * time.Second)
	testutil.AssertTrue(t, cb.Allow(), "probe allowed after timeout")
	testutil.AssertEqual(t, cb.State(), StateHalfOpen, "half-open")
	testutil.AssertFalse(t, cb.Allow(), "only one probe in flight")

	cb.RecordSuccess()
	testutil.AssertEqual(t, cb.State(), StateClosed, "closed after successful probe")
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2020, 12, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(1, time.Second, 1)
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	now = now.Add(2 * time.Second)
	testutil.AssertTrue(t, cb.Allow(), "probe allowed")

	cb.RecordFailure()
	testutil.AssertEqual(t, cb.State(), StateOpen, "reopened")
	testutil.AssertEqual(t, cb.State().String(), "open", "state name")
}
