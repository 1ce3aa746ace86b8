// internal/platform/execlog/builder_test.go
package execlog

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/platform/errors"
	"ingestrouter/internal/testutil"
)

var fixedTime = time.Date(2020, 12, 1, 0, 0, 0, 0, time.UTC)

func newTestBuilder() *Builder {
	return NewBuilder().WithClock(func() time.Time { return fixedTime })
}

func matched() domain.Classification {
	return domain.Classification{
		Filename: testutil.FixtureBuoyHumboldt,
		Site:     "humboldt",
		Kind:     "a2e_buoy_ingest",
	}
}

func batch() []domain.FileReference {
	return []domain.FileReference{
		domain.NewS3Reference("a2e-raw", testutil.FixtureBuoyHumboldt),
		domain.NewLocalReference("/data/" + testutil.FixtureBuoyHumboldt),
	}
}

func TestBuilder_Lifecycle(t *testing.T) {
	b := newTestBuilder()

	start := b.Started("batch-1", matched(), batch())
	assert.Equal(t, domain.StateStart, start.State)
	assert.Equal(t, "batch-1", start.BatchID)
	assert.Equal(t, domain.PipelineKind("a2e_buoy_ingest"), start.Kind)
	assert.Equal(t, domain.SiteKey("humboldt"), start.Site)
	assert.Equal(t, fixedTime, start.Timestamp)
	assert.Equal(t, []string{
		"s3://a2e-raw/" + testutil.FixtureBuoyHumboldt,
		"/data/" + testutil.FixtureBuoyHumboldt,
	}, start.InputFiles)
	assert.Empty(t, start.ErrorType)

	done := b.Succeeded("batch-1", matched(), batch())
	assert.Equal(t, domain.StateSuccess, done.State)
	assert.False(t, done.IsError())
}

func TestBuilder_FailedWrappedError(t *testing.T) {
	b := newTestBuilder()
	err := errors.Wrap(fmt.Errorf("bad row 7"), "parse buoy csv")

	rec := b.Failed("batch-2", matched(), batch(), err)

	assert.True(t, rec.IsError())
	assert.Equal(t, "*errors.errorString", rec.ErrorType)
	assert.Equal(t, "parse buoy csv: bad row 7", rec.ErrorMessage)
	require.NotEmpty(t, rec.StackTrace)
	assert.Contains(t, rec.StackTrace[0], "TestBuilder_FailedWrappedError")
}

func TestBuilder_FailedCategorizedError(t *testing.T) {
	b := newTestBuilder()
	err := &domain.ConstructionError{Kind: "a2e_imu_ingest", Err: fmt.Errorf("yaml: line 3")}

	rec := b.Failed("", matched(), batch(), err)

	assert.Equal(t, "ConstructionError", rec.ErrorType)
	assert.NotEmpty(t, rec.StackTrace, "falls back to the call-site stack")
}

func TestBuilder_FailedPanic(t *testing.T) {
	b := newTestBuilder()

	var pe *PanicError
	func() {
		defer func() {
			if r := recover(); r != nil {
				pe = NewPanicError(r)
			}
		}()
		panic("index out of range")
	}()
	require.NotNil(t, pe)

	rec := b.Failed("batch-3", matched(), batch(), pe)

	assert.Equal(t, PanicCategory, rec.ErrorType)
	assert.Equal(t, "pipeline panic: index out of range", rec.ErrorMessage)
	assert.Equal(t, pe.Stack, rec.StackTrace)
	assert.True(t, strings.HasPrefix(rec.StackTrace[0], "goroutine "))
}

func TestBuilder_FailedNilError(t *testing.T) {
	rec := newTestBuilder().Failed("", matched(), batch(), nil)

	assert.Equal(t, domain.StateError, rec.State)
	assert.Empty(t, rec.ErrorType)
	assert.Nil(t, rec.StackTrace)
}

func TestBuilder_Skipped(t *testing.T) {
	c := domain.Classification{Filename: testutil.FixtureLidarRawSTA, Site: "morro"}
	files := []domain.FileReference{domain.NewS3Reference("a2e-raw", testutil.FixtureLidarRawSTA)}

	rec := newTestBuilder().Skipped("batch-4", c, files)

	assert.Equal(t, domain.StateSkipped, rec.State)
	assert.Equal(t, testutil.FixtureLidarRawSTA, rec.Filename)
	assert.Empty(t, rec.Kind)
	assert.Equal(t, []string{"s3://a2e-raw/" + testutil.FixtureLidarRawSTA}, rec.InputFiles)
}
