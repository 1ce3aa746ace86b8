// internal/pipelines/imu/imu.go
package imu

import (
	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/core/ports"
	"ingestrouter/internal/pipelines/ingest"
	"ingestrouter/internal/platform/logx"
	"ingestrouter/internal/platform/registry"
)

// Kind es la clave con la que se registra el pipeline.
const Kind domain.PipelineKind = "a2e_imu_ingest"

// Format acepta los registros binarios de la unidad inercial.
var Format = ingest.Format{
	Extensions: []string{".imu.bin"},
	Check:      ingest.NonEmpty,
	HeadSize:   1,
}

func init() {
	if err := registry.Global().Register(
		Kind,
		New,
		ports.PipelineMetadata{
			Description: "Buoy inertial measurement unit binary logs",
			Version:     "1.0.0",
			Extensions:  Format.Extensions,
		},
	); err != nil {
		logx.New().Warn("failed to register imu pipeline", "error", err.Error())
	}
}

// New construye el pipeline IMU.
func New(cfg domain.ResolvedConfig, deps ports.PipelineDeps) (ports.Pipeline, error) {
	return ingest.New(Kind, Format, cfg, deps)
}
