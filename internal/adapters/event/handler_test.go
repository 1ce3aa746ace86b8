// internal/adapters/event/handler_test.go
package event

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/core/usecases"
	"ingestrouter/internal/platform/classifier"
	"ingestrouter/internal/platform/logx"
	"ingestrouter/internal/testutil"
)

type fakeDispatcher struct {
	got    [][]domain.FileReference
	result usecases.Result
	err    error
	panic  bool
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, files []domain.FileReference) (usecases.Result, error) {
	f.got = append(f.got, files)
	if f.panic {
		panic("dispatcher exploded")
	}
	return f.result, f.err
}

func newTestHandler(d Dispatcher, buf *bytes.Buffer, outcomes *[]string) *Handler {
	return NewHandler(HandlerOptions{
		Dispatcher: d,
		Logger:     logx.NewWithOptions(logx.Options{Level: logx.LevelDebug, Format: logx.FormatJSON, Writer: buf}),
		Observe:    func(o string) { *outcomes = append(*outcomes, o) },
		Context:    []any{"storage_bucket", "a2e-tsdat-test-output"},
	})
}

func TestHandler_HandlePayload(t *testing.T) {
	var buf bytes.Buffer
	var outcomes []string
	d := &fakeDispatcher{result: usecases.Result{
		BatchID: "b-1",
		Outcome: usecases.OutcomeSucceeded,
		Classification: domain.Classification{
			Site: "humboldt",
			Kind: "a2e_buoy_ingest",
		},
	}}
	h := newTestHandler(d, &buf, &outcomes)

	rep := h.HandlePayload(context.Background(), "buoy_humboldt.json", readFixture(t, "buoy_humboldt.json"))

	require.Len(t, d.got, 1)
	assert.Equal(t, "s3://a2e-tsdat-test-raw/buoy.z05.00.20201201.000000.zip", d.got[0][0].String())
	assert.Equal(t, "succeeded", rep.Outcome)
	assert.Equal(t, "b-1", rep.BatchID)
	assert.Equal(t, "a2e_buoy_ingest", rep.Pipeline)
	assert.Equal(t, "humboldt", rep.Location)
	assert.False(t, rep.InvocationFail)
	assert.Equal(t, []string{"succeeded"}, outcomes)
	assert.Contains(t, buf.String(), "invoking handler")
	assert.Contains(t, buf.String(), "a2e-tsdat-test-output")
}

func TestHandler_MalformedEventIsLoggedNotReturned(t *testing.T) {
	var buf bytes.Buffer
	var outcomes []string
	d := &fakeDispatcher{}
	h := newTestHandler(d, &buf, &outcomes)

	rep := h.HandlePayload(context.Background(), "bad.json", []byte(`{"Records": [{"s3": {}}]}`))

	assert.Empty(t, d.got, "nothing dispatched")
	assert.True(t, rep.InvocationFail)
	assert.Equal(t, "aborted", rep.Outcome)
	assert.NotNil(t, rep.Files)
	data, err := json.Marshal(rep)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"input_files":[]`)
	assert.Contains(t, buf.String(), "failed to invoke handler")
	assert.Equal(t, []string{"aborted"}, outcomes)
}

func TestHandler_DispatchErrorIsLogged(t *testing.T) {
	var buf bytes.Buffer
	var outcomes []string
	d := &fakeDispatcher{
		result: usecases.Result{BatchID: "b-2", Outcome: usecases.OutcomeAborted},
		err:    &domain.ConfigNotFoundError{Kind: "a2e_buoy_ingest", Site: "humboldt", Path: "x.yml", Err: fmt.Errorf("stat")},
	}
	h := newTestHandler(d, &buf, &outcomes)

	rep := h.HandleFiles(context.Background(), "cli", []domain.FileReference{domain.NewLocalReference(testutil.FixtureBuoyHumboldt)})

	assert.True(t, rep.InvocationFail)
	assert.Equal(t, "b-2", rep.BatchID)
	assert.Contains(t, rep.Error, "not found")
	assert.Contains(t, buf.String(), `"error_type":"ConfigNotFound"`)
}

func TestHandler_ContainedFailureIsReported(t *testing.T) {
	var buf bytes.Buffer
	var outcomes []string
	d := &fakeDispatcher{result: usecases.Result{Outcome: usecases.OutcomeFailed, Err: fmt.Errorf("bad rows")}}
	h := newTestHandler(d, &buf, &outcomes)

	rep := h.HandleFiles(context.Background(), "cli", []domain.FileReference{domain.NewLocalReference("f")})

	assert.False(t, rep.InvocationFail, "pipeline failures are contained by the dispatcher")
	assert.Equal(t, "failed", rep.Outcome)
	assert.Equal(t, "bad rows", rep.Error)
	assert.NotContains(t, buf.String(), "failed to invoke handler")
}

func TestHandler_RecoversPanics(t *testing.T) {
	var buf bytes.Buffer
	var outcomes []string
	h := newTestHandler(&fakeDispatcher{panic: true}, &buf, &outcomes)

	rep := h.HandleFiles(context.Background(), "cli", []domain.FileReference{domain.NewLocalReference("f")})

	assert.True(t, rep.InvocationFail)
	assert.Contains(t, rep.Error, "dispatcher exploded")
}

func TestHandler_WithDispatcher(t *testing.T) {
	sink := &testutil.RecordingSink{}
	pipeline := &testutil.MockPipeline{}
	d := usecases.NewDispatcher(usecases.DispatcherOptions{
		Classifier: classifier.NewDefault(),
		Resolver:   staticResolver{},
		Builder:    &testutil.MockBuilder{Pipeline: pipeline},
		Sink:       sink,
		Logger:     logx.NewDiscard(),
	})
	var outcomes []string
	var buf bytes.Buffer
	h := newTestHandler(d, &buf, &outcomes)

	rep := h.HandlePayload(context.Background(), "waves", readFixture(t, "waves_morro_encoded.json"))

	assert.Equal(t, "succeeded", rep.Outcome)
	assert.Equal(t, "a2e_waves_ingest", rep.Pipeline)
	assert.Equal(t, "morro", rep.Location)
	require.Equal(t, 1, pipeline.CallCount())
	assert.Len(t, pipeline.Calls[0], 2)
	assert.Equal(t, []domain.ExecutionState{domain.StateStart, domain.StateSuccess}, sink.States())
}

type staticResolver struct{}

func (staticResolver) Resolve(kind domain.PipelineKind, site domain.SiteKey) (domain.ResolvedConfig, error) {
	return domain.ResolvedConfig{Kind: kind, Site: site}, nil
}
