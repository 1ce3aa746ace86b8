// internal/pipelines/waves/waves.go
package waves

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/core/ports"
	"ingestrouter/internal/pipelines/ingest"
	"ingestrouter/internal/platform/logx"
	"ingestrouter/internal/platform/registry"
)

// Kind es la clave con la que se registra el pipeline.
const Kind domain.PipelineKind = "a2e_waves_ingest"

// minColumns es el mínimo de columnas de la cabecera de un waves.csv.
const minColumns = 2

// Format acepta los resúmenes de oleaje en CSV.
var Format = ingest.Format{
	Extensions: []string{"waves.csv"},
	Check:      checkHeader,
	HeadSize:   4096,
}

func init() {
	if err := registry.Global().Register(
		Kind,
		New,
		ports.PipelineMetadata{
			Description: "Buoy wave statistics (waves.csv)",
			Version:     "1.0.0",
			Extensions:  Format.Extensions,
		},
	); err != nil {
		logx.New().Warn("failed to register waves pipeline", "error", err.Error())
	}
}

// New construye el pipeline de oleaje.
func New(cfg domain.ResolvedConfig, deps ports.PipelineDeps) (ports.Pipeline, error) {
	return ingest.New(Kind, Format, cfg, deps)
}

// checkHeader exige una primera línea CSV con al menos minColumns columnas.
func checkHeader(name string, head []byte) error {
	line, _, _ := bytes.Cut(head, []byte("\n"))
	r := csv.NewReader(bytes.NewReader(line))
	r.TrimLeadingSpace = true

	cols, err := r.Read()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ingest.ErrBadHeader, name, err)
	}
	if len(cols) < minColumns {
		return fmt.Errorf("%w: %s has %d columns", ingest.ErrBadHeader, name, len(cols))
	}
	return nil
}
