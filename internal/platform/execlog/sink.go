// internal/platform/execlog/sink.go
package execlog

import (
	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/core/ports"
	"ingestrouter/internal/platform/logx"
)

// LoggerSink emite cada registro como una línea estructurada del logger.
type LoggerSink struct {
	logger logx.Logger
}

// NewLoggerSink crea un sink sobre logger.
func NewLoggerSink(logger logx.Logger) *LoggerSink {
	return &LoggerSink{logger: logger.With("component", "execlog")}
}

// Emit implementa ports.DiagnosticsSink.
func (s *LoggerSink) Emit(rec domain.ExecutionRecord) {
	switch rec.State {
	case domain.StateError:
		s.logger.Error("pipeline failed", append(fields(rec),
			"error_type", rec.ErrorType,
			"exception_message", rec.ErrorMessage,
			"stack_trace", rec.StackTrace,
		)...)
	case domain.StateSkipped:
		s.logger.Info("no pipeline matched, skipping", append(fields(rec), "query_file", rec.Filename)...)
	case domain.StateStart:
		s.logger.Info("pipeline started", fields(rec)...)
	default:
		s.logger.Info("pipeline succeeded", fields(rec)...)
	}
}

func fields(rec domain.ExecutionRecord) []any {
	kv := []any{"state", string(rec.State), "input_files", rec.InputFiles}
	if rec.BatchID != "" {
		kv = append(kv, "batch_id", rec.BatchID)
	}
	if rec.Kind != "" {
		kv = append(kv, "pipeline_name", string(rec.Kind))
	}
	if rec.Site != "" {
		kv = append(kv, "location", string(rec.Site))
	}
	return kv
}

// MultiSink reparte cada registro entre varios sinks, en orden.
type MultiSink []ports.DiagnosticsSink

// Emit implementa ports.DiagnosticsSink.
func (m MultiSink) Emit(rec domain.ExecutionRecord) {
	for _, s := range m {
		if s != nil {
			s.Emit(rec)
		}
	}
}
