// internal/pipelines/lidar/lidar.go
package lidar

import (
	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/core/ports"
	"ingestrouter/internal/pipelines/ingest"
	"ingestrouter/internal/platform/logx"
	"ingestrouter/internal/platform/registry"
)

// Kind es la clave con la que se registra el pipeline.
const Kind domain.PipelineKind = "a2e_lidar_ingest"

// sevenZip es la firma de un archivo 7z.
var sevenZip = []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}

// Format acepta los archivos .sta comprimidos del lidar.
var Format = ingest.Format{
	Extensions: []string{".sta.7z"},
	Check:      ingest.Magic(sevenZip),
	HeadSize:   len(sevenZip),
}

func init() {
	if err := registry.Global().Register(
		Kind,
		New,
		ports.PipelineMetadata{
			Description: "Floating lidar 10-minute statistics (.sta.7z)",
			Version:     "1.0.0",
			Extensions:  Format.Extensions,
		},
	); err != nil {
		logx.New().Warn("failed to register lidar pipeline", "error", err.Error())
	}
}

// New construye el pipeline del lidar.
func New(cfg domain.ResolvedConfig, deps ports.PipelineDeps) (ports.Pipeline, error) {
	return ingest.New(Kind, Format, cfg, deps)
}
