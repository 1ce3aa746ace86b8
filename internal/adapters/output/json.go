// internal/adapters/output/json.go
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"ingestrouter/internal/adapters/event"
)

// DispatchReport agrupa los reportes de una ejecución de la CLI.
type DispatchReport struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Batches     int            `json:"batches"`
	Outcomes    map[string]int `json:"outcomes"`
	Reports     []event.Report `json:"reports"`
}

// NewDispatchReport resume reports.
func NewDispatchReport(reports []event.Report) DispatchReport {
	r := DispatchReport{
		GeneratedAt: time.Now().UTC(),
		Batches:     len(reports),
		Outcomes:    make(map[string]int),
		Reports:     reports,
	}
	for _, rep := range reports {
		r.Outcomes[rep.Outcome]++
	}
	return r
}

// WriteJSON codifica v en w con indentación.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// WriteReportFile guarda el reporte en dir con nombre con timestamp y retorna la ruta.
func WriteReportFile(dir string, report DispatchReport) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	// Generar nombre de archivo con timestamp
	timestamp := report.GeneratedAt.Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("ingestrouter_%s.json", timestamp))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := WriteJSON(f, report); err != nil {
		return "", err
	}
	return path, nil
}
