// internal/core/ports/pipeline.go
package ports

import (
	"context"

	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/platform/logx"
)

// Pipeline es la capacidad que toda implementación registrada debe exponer.
// El Dispatcher trata sus fallos de forma opaca.
type Pipeline interface {
	// Run procesa el batch completo de archivos, en el orden recibido.
	Run(ctx context.Context, files []domain.FileReference) error
}

// PipelineDeps agrupa los colaboradores compartidos que recibe cada factory.
type PipelineDeps struct {
	Storage Storage
	Logger  logx.Logger

	// RetainInputs conserva las entradas aunque storage_config.yml no lo pida
	RetainInputs bool
}

// PipelineFactory construye una instancia nueva de Pipeline para un batch.
type PipelineFactory func(cfg domain.ResolvedConfig, deps PipelineDeps) (Pipeline, error)

// PipelineMetadata describe un kind registrado.
type PipelineMetadata struct {
	Kind        domain.PipelineKind
	Description string
	Version     string

	// Extensions lista los sufijos de archivo que la implementación acepta
	Extensions []string
}

// Classifier resuelve (site, kind) a partir de un nombre de archivo.
type Classifier interface {
	Classify(filename string) domain.Classification
}

// ConfigResolver calcula las rutas de configuración para (kind, site).
type ConfigResolver interface {
	Resolve(kind domain.PipelineKind, site domain.SiteKey) (domain.ResolvedConfig, error)
}

// PipelineBuilder construye la implementación registrada para un kind.
type PipelineBuilder interface {
	Create(kind domain.PipelineKind, cfg domain.ResolvedConfig) (Pipeline, error)
}
