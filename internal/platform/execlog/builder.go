// internal/platform/execlog/builder.go
package execlog

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/platform/errors"
)

// PanicCategory es la categoría registrada cuando un pipeline entra en panic.
const PanicCategory = "panic"

// PanicError envuelve el valor recuperado de un panic junto a la pila del goroutine.
type PanicError struct {
	Value interface{}
	Stack []string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("pipeline panic: %v", e.Value)
}

// Category implementa la categoría usada en los registros de ejecución.
func (e *PanicError) Category() string { return PanicCategory }

// NewPanicError captura la pila actual; debe llamarse desde el recover.
func NewPanicError(v interface{}) *PanicError {
	return &PanicError{Value: v, Stack: splitStack(debug.Stack())}
}

func splitStack(raw []byte) []string {
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Builder construye los registros de ejecución para cada transición del batch.
type Builder struct {
	now func() time.Time
}

// NewBuilder crea un Builder con reloj UTC.
func NewBuilder() *Builder {
	return &Builder{now: func() time.Time { return time.Now().UTC() }}
}

// WithClock retorna una copia que usa now como reloj (tests).
func (b *Builder) WithClock(now func() time.Time) *Builder {
	return &Builder{now: now}
}

func (b *Builder) base(batchID string, c domain.Classification, files []domain.FileReference, state domain.ExecutionState) domain.ExecutionRecord {
	return domain.ExecutionRecord{
		BatchID:    batchID,
		Kind:       c.Kind,
		Site:       c.Site,
		InputFiles: domain.FileStrings(files),
		State:      state,
		Timestamp:  b.now(),
	}
}

// Started construye el registro Start.
func (b *Builder) Started(batchID string, c domain.Classification, files []domain.FileReference) domain.ExecutionRecord {
	return b.base(batchID, c, files, domain.StateStart)
}

// Succeeded construye el registro Success.
func (b *Builder) Succeeded(batchID string, c domain.Classification, files []domain.FileReference) domain.ExecutionRecord {
	return b.base(batchID, c, files, domain.StateSuccess)
}

// Failed construye el registro Error con categoría, mensaje y pila.
// La pila sale, en orden, de un PanicError, del error envuelto más profundo
// o, si ninguno la trae, del punto de llamada.
func (b *Builder) Failed(batchID string, c domain.Classification, files []domain.FileReference, err error) domain.ExecutionRecord {
	rec := b.base(batchID, c, files, domain.StateError)
	if err == nil {
		return rec
	}

	rec.ErrorType = errors.TypeName(err)
	rec.ErrorMessage = err.Error()

	var pe *PanicError
	switch {
	case errors.As(err, &pe) && len(pe.Stack) > 0:
		rec.StackTrace = pe.Stack
	default:
		rec.StackTrace = errors.StackTrace(err)
	}
	if len(rec.StackTrace) == 0 {
		rec.StackTrace = errors.StackTrace(errors.WithStack(err))
	}
	return rec
}

// Skipped construye el registro informativo de un batch sin clasificación.
func (b *Builder) Skipped(batchID string, c domain.Classification, files []domain.FileReference) domain.ExecutionRecord {
	rec := b.base(batchID, c, files, domain.StateSkipped)
	rec.Filename = c.Filename
	return rec
}
