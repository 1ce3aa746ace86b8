// internal/core/ports/sink.go
package ports

import "ingestrouter/internal/core/domain"

// DiagnosticsSink recibe cada registro de ciclo de vida emitido por el Dispatcher.
// El transporte y formato concretos pertenecen a la implementación.
type DiagnosticsSink interface {
	Emit(record domain.ExecutionRecord)
}
