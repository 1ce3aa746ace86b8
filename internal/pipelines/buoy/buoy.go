// internal/pipelines/buoy/buoy.go
package buoy

import (
	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/core/ports"
	"ingestrouter/internal/pipelines/ingest"
	"ingestrouter/internal/platform/logx"
	"ingestrouter/internal/platform/registry"
)

// Kind es la clave con la que se registra el pipeline.
const Kind domain.PipelineKind = "a2e_buoy_ingest"

// Format acepta los archivos de datos de la boya, sueltos o empaquetados.
var Format = ingest.Format{
	Extensions: []string{".csv", ".zip", ".tar", ".tar.gz"},
	Check: ingest.BySuffix(map[string]func(string, []byte) error{
		".zip":    ingest.Magic([]byte("PK\x03\x04"), []byte("PK\x05\x06")),
		".tar.gz": ingest.Magic([]byte{0x1f, 0x8b}),
		".csv":    ingest.NonEmpty,
	}),
	HeadSize: 4,
}

func init() {
	if err := registry.Global().Register(
		Kind,
		New,
		ports.PipelineMetadata{
			Description: "Buoy met/ocean data (csv, zip and tar archives)",
			Version:     "1.0.0",
			Extensions:  Format.Extensions,
		},
	); err != nil {
		logx.New().Warn("failed to register buoy pipeline", "error", err.Error())
	}
}

// New construye el pipeline de la boya.
func New(cfg domain.ResolvedConfig, deps ports.PipelineDeps) (ports.Pipeline, error) {
	return ingest.New(Kind, Format, cfg, deps)
}
