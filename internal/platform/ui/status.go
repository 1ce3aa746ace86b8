// internal/platform/ui/status.go
package ui

import "github.com/pterm/pterm"

// Status representa el estado terminal de un batch en la salida de terminal.
type Status int

const (
	StatusIdle Status = iota
	StatusSucceeded
	StatusFailed
	StatusSkipped
	StatusAborted
)

// ParseStatus convierte el outcome del dispatcher en Status.
func ParseStatus(outcome string) Status {
	switch outcome {
	case "succeeded":
		return StatusSucceeded
	case "failed":
		return StatusFailed
	case "skipped":
		return StatusSkipped
	case "aborted":
		return StatusAborted
	default:
		return StatusIdle
	}
}

// String convierte el status a string
func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusAborted:
		return "aborted"
	default:
		return "idle"
	}
}

// Symbol retorna el símbolo Unicode para cada estado
func (s Status) Symbol() string {
	switch s {
	case StatusSucceeded:
		return "✓"
	case StatusFailed:
		return "✗"
	case StatusSkipped:
		return "⊘"
	case StatusAborted:
		return "⚠"
	default:
		return "⏸"
	}
}

// Color retorna el color pterm para cada estado
func (s Status) Color() pterm.Color {
	switch s {
	case StatusSucceeded:
		return pterm.FgGreen
	case StatusFailed:
		return pterm.FgRed
	case StatusAborted:
		return pterm.FgYellow
	default:
		return pterm.FgGray
	}
}

// Style retorna un pterm.Style configurado para el estado
func (s Status) Style() *pterm.Style {
	return pterm.NewStyle(s.Color())
}

// Label retorna "símbolo estado" coloreado.
func (s Status) Label() string {
	return s.Style().Sprint(s.Symbol() + " " + s.String())
}
