// internal/core/domain/record.go
package domain

import "time"

// ExecutionState es el estado de ciclo de vida registrado para un batch.
type ExecutionState string

const (
	StateStart   ExecutionState = "Start"
	StateSuccess ExecutionState = "Success"
	StateError   ExecutionState = "Error"
	StateSkipped ExecutionState = "Skipped"
)

// ExecutionRecord es una entrada de diagnóstico estructurada e inmutable.
// Se crea y se emite; el core nunca la almacena ni la consulta.
type ExecutionRecord struct {
	BatchID    string         `json:"batch_id,omitempty"`
	Kind       PipelineKind   `json:"pipeline_name,omitempty"`
	Site       SiteKey        `json:"location,omitempty"`
	InputFiles []string       `json:"input_files"`
	State      ExecutionState `json:"state"`
	Timestamp  time.Time      `json:"timestamp"`

	// Solo para StateError
	ErrorType    string   `json:"error_type,omitempty"`
	ErrorMessage string   `json:"exception_message,omitempty"`
	StackTrace   []string `json:"stack_trace,omitempty"`

	// Solo para StateSkipped
	Filename string `json:"query_file,omitempty"`
}

// IsError indica si el registro corresponde a una ejecución fallida.
func (r ExecutionRecord) IsError() bool {
	return r.State == StateError
}
