// internal/platform/execlog/sink_test.go
package execlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/platform/logx"
	"ingestrouter/internal/testutil"
)

func jsonSink(buf *bytes.Buffer) *LoggerSink {
	return NewLoggerSink(logx.NewWithOptions(logx.Options{
		Level:  logx.LevelDebug,
		Format: logx.FormatJSON,
		Writer: buf,
	}))
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLoggerSink_Levels(t *testing.T) {
	var buf bytes.Buffer
	sink := jsonSink(&buf)
	b := newTestBuilder()

	sink.Emit(b.Started("b1", matched(), batch()))
	sink.Emit(b.Failed("b1", matched(), batch(), fmt.Errorf("boom")))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "Start", lines[0]["state"])
	assert.Equal(t, "a2e_buoy_ingest", lines[0]["pipeline_name"])
	assert.Equal(t, "humboldt", lines[0]["location"])

	assert.Equal(t, "ERROR", lines[1]["level"])
	assert.Equal(t, "*errors.errorString", lines[1]["error_type"])
	assert.Equal(t, "boom", lines[1]["exception_message"])
	assert.NotEmpty(t, lines[1]["stack_trace"])
}

func TestLoggerSink_Skipped(t *testing.T) {
	var buf bytes.Buffer
	c := domain.Classification{Filename: "readme.txt"}

	jsonSink(&buf).Emit(newTestBuilder().Skipped("", c, []domain.FileReference{
		domain.NewLocalReference("readme.txt"),
	}))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "readme.txt", lines[0]["query_file"])
	_, hasKind := lines[0]["pipeline_name"]
	assert.False(t, hasKind)
}

func TestMultiSink(t *testing.T) {
	a, b := &testutil.RecordingSink{}, &testutil.RecordingSink{}
	multi := MultiSink{a, nil, b}

	multi.Emit(newTestBuilder().Started("", matched(), batch()))

	assert.Equal(t, []domain.ExecutionState{domain.StateStart}, a.States())
	assert.Equal(t, []domain.ExecutionState{domain.StateStart}, b.States())
}
