// internal/platform/registry/pipeline_registry.go
package registry

import (
	"fmt"
	"sort"
	"sync"

	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/core/ports"
	"ingestrouter/internal/platform/logx"
)

// PipelineRegistry gestiona el registro y construcción de pipelines.
// Implementa el patrón Registry + Factory: cada kind se asocia explícitamente
// a su constructor al arrancar el proceso, sin carga dinámica.
type PipelineRegistry struct {
	mu        sync.RWMutex
	factories map[domain.PipelineKind]ports.PipelineFactory
	metadata  map[domain.PipelineKind]ports.PipelineMetadata
	logger    logx.Logger
}

// globalRegistry es la instancia global del registry.
var globalRegistry *PipelineRegistry
var once sync.Once

// Global retorna la instancia global del registry.
func Global() *PipelineRegistry {
	once.Do(func() {
		globalRegistry = NewPipelineRegistry(logx.NewSilent())
	})
	return globalRegistry
}

// NewPipelineRegistry crea un nuevo registry de pipelines.
func NewPipelineRegistry(logger logx.Logger) *PipelineRegistry {
	return &PipelineRegistry{
		factories: make(map[domain.PipelineKind]ports.PipelineFactory),
		metadata:  make(map[domain.PipelineKind]ports.PipelineMetadata),
		logger:    logger.With("component", "pipeline-registry"),
	}
}

// Register registra una factory con su metadata.
// Típicamente llamado desde init() de cada paquete de pipeline.
func (r *PipelineRegistry) Register(kind domain.PipelineKind, factory ports.PipelineFactory, meta ports.PipelineMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if kind == "" {
		return fmt.Errorf("pipeline kind cannot be empty")
	}

	if factory == nil {
		return fmt.Errorf("factory cannot be nil for pipeline %s", kind)
	}

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("pipeline %s is already registered", kind)
	}

	if meta.Kind == "" {
		meta.Kind = kind
	}

	r.factories[kind] = factory
	r.metadata[kind] = meta
	r.logger.Debug("pipeline registered", "kind", kind, "version", meta.Version)

	return nil
}

// Create construye una instancia nueva para kind con ambas rutas de configuración.
// Un kind desconocido retorna *domain.LookupError; un fallo (o panic) del
// constructor retorna *domain.ConstructionError.
func (r *PipelineRegistry) Create(kind domain.PipelineKind, cfg domain.ResolvedConfig, deps ports.PipelineDeps) (p ports.Pipeline, err error) {
	r.mu.RLock()
	factory, exists := r.factories[kind]
	r.mu.RUnlock()

	if !exists {
		return nil, &domain.LookupError{Kind: kind}
	}

	defer func() {
		if rec := recover(); rec != nil {
			p = nil
			err = &domain.ConstructionError{Kind: kind, Err: fmt.Errorf("constructor panic: %v", rec)}
		}
	}()

	p, err = factory(cfg, deps)
	if err != nil {
		return nil, &domain.ConstructionError{Kind: kind, Err: err}
	}
	if p == nil {
		return nil, &domain.ConstructionError{Kind: kind, Err: fmt.Errorf("factory returned nil pipeline")}
	}

	r.logger.Debug("pipeline built",
		"kind", kind,
		"site", cfg.Site,
		"pipeline_config", cfg.PipelineConfigPath,
	)
	return p, nil
}

// Bind fija las dependencias compartidas y retorna un ports.PipelineBuilder.
func (r *PipelineRegistry) Bind(deps ports.PipelineDeps) *Builder {
	if deps.Logger == nil {
		deps.Logger = r.logger
	}
	return &Builder{registry: r, deps: deps}
}

// List retorna los kinds registrados ordenados alfabéticamente.
func (r *PipelineRegistry) List() []domain.PipelineKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]domain.PipelineKind, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// GetMetadata retorna el metadata de un kind.
func (r *PipelineRegistry) GetMetadata(kind domain.PipelineKind) (ports.PipelineMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, exists := r.metadata[kind]
	return meta, exists
}

// GetAllMetadata retorna una copia del metadata de todos los kinds.
func (r *PipelineRegistry) GetAllMetadata() map[domain.PipelineKind]ports.PipelineMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[domain.PipelineKind]ports.PipelineMetadata, len(r.metadata))
	for kind, meta := range r.metadata {
		result[kind] = meta
	}
	return result
}

// IsRegistered verifica si un kind está registrado.
func (r *PipelineRegistry) IsRegistered(kind domain.PipelineKind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[kind]
	return exists
}

// Clear elimina todos los registros (útil para testing).
func (r *PipelineRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories = make(map[domain.PipelineKind]ports.PipelineFactory)
	r.metadata = make(map[domain.PipelineKind]ports.PipelineMetadata)
}

// Builder adapta el registry a ports.PipelineBuilder con dependencias fijas.
type Builder struct {
	registry *PipelineRegistry
	deps     ports.PipelineDeps
}

// Create implementa ports.PipelineBuilder.
func (b *Builder) Create(kind domain.PipelineKind, cfg domain.ResolvedConfig) (ports.Pipeline, error) {
	deps := b.deps
	deps.Logger = b.deps.Logger.With("pipeline", kind, "location", cfg.Site)
	return b.registry.Create(kind, cfg, deps)
}
