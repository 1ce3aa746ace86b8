// internal/adapters/event/handler.go
package event

import (
	"context"
	"time"

	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/core/usecases"
	"ingestrouter/internal/platform/errors"
	"ingestrouter/internal/platform/logx"
)

// Dispatcher es el core que procesa un batch.
type Dispatcher interface {
	Dispatch(ctx context.Context, files []domain.FileReference) (usecases.Result, error)
}

// Report resume una invocación para la salida de la CLI.
type Report struct {
	Source         string        `json:"source"`
	BatchID        string        `json:"batch_id,omitempty"`
	Outcome        string        `json:"outcome"`
	Pipeline       string        `json:"pipeline_name,omitempty"`
	Location       string        `json:"location,omitempty"`
	Files          []string      `json:"input_files"`
	Error          string        `json:"error,omitempty"`
	Duration       time.Duration `json:"duration_ns"`
	InvocationFail bool          `json:"invocation_failed,omitempty"`
}

// Handler es la frontera de invocación: decodifica, despacha y registra.
// Ningún error sale de Handle; los fallos de frontera se registran y se reportan.
type Handler struct {
	dispatcher Dispatcher
	logger     logx.Logger
	observe    func(outcome string)
	context    []any
}

// HandlerOptions configura el handler.
type HandlerOptions struct {
	Dispatcher Dispatcher
	Logger     logx.Logger

	// Observe recibe el outcome de cada invocación (métricas)
	Observe func(outcome string)

	// Context son pares clave/valor de configuración que se registran en cada invocación
	Context []any
}

// NewHandler crea un handler.
func NewHandler(opts HandlerOptions) *Handler {
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}
	if opts.Observe == nil {
		opts.Observe = func(string) {}
	}
	return &Handler{
		dispatcher: opts.Dispatcher,
		logger:     opts.Logger.With("component", "handler"),
		observe:    opts.Observe,
		context:    opts.Context,
	}
}

// HandlePayload decodifica una notificación JSON y la procesa.
func (h *Handler) HandlePayload(ctx context.Context, source string, payload []byte) Report {
	h.logger.Debug("invoking handler", append([]any{"source", source, "event", string(payload)}, h.context...)...)

	n, err := Parse(payload)
	if err != nil {
		return h.fail(Report{Source: source, Files: []string{}}, err)
	}
	files, err := n.Files()
	if err != nil {
		return h.fail(Report{Source: source, Files: []string{}}, err)
	}
	return h.HandleFiles(ctx, source, files)
}

// HandleFiles procesa un batch ya resuelto.
func (h *Handler) HandleFiles(ctx context.Context, source string, files []domain.FileReference) (rep Report) {
	rep = Report{Source: source, Files: domain.FileStrings(files)}

	defer func() {
		if r := recover(); r != nil {
			rep = h.fail(rep, errors.Errorf("handler panic: %v", r))
		}
	}()

	res, err := h.dispatcher.Dispatch(ctx, files)
	rep.BatchID = res.BatchID
	rep.Outcome = string(res.Outcome)
	rep.Pipeline = string(res.Classification.Kind)
	rep.Location = string(res.Classification.Site)
	rep.Duration = res.Duration
	if err != nil {
		return h.fail(rep, err)
	}
	if res.Err != nil {
		rep.Error = res.Err.Error()
	}

	h.observe(rep.Outcome)
	return rep
}

func (h *Handler) fail(rep Report, err error) Report {
	rep.InvocationFail = true
	rep.Error = err.Error()
	if rep.Outcome == "" {
		rep.Outcome = string(usecases.OutcomeAborted)
	}

	h.logger.Error("failed to invoke handler",
		"source", rep.Source,
		"batch_id", rep.BatchID,
		"input_files", rep.Files,
		"error_type", errors.TypeName(err),
		"exception_message", err.Error(),
		"stack_trace", errors.StackTrace(err),
	)
	h.observe(rep.Outcome)
	return rep
}
