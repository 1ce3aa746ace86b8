// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio comunes.
var (
	// File reference errors
	ErrInvalidFileReference = errors.New("invalid file reference")

	// Configuration errors
	ErrConfigNotFound = errors.New("pipeline configuration not found")

	// Pipeline errors
	ErrPipelineNotRegistered = errors.New("pipeline not registered")
	ErrPipelineConstruction  = errors.New("pipeline construction failed")
)

// ConfigNotFoundError indica que una ruta de configuración derivada no existe.
type ConfigNotFoundError struct {
	Kind PipelineKind
	Site SiteKey
	Path string
	Err  error
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config for pipeline %s at site %s not found: %s", e.Kind, e.Site, e.Path)
}

func (e *ConfigNotFoundError) Unwrap() []error {
	return []error{ErrConfigNotFound, e.Err}
}

// Category implementa la categoría usada en los registros de ejecución.
func (e *ConfigNotFoundError) Category() string { return "ConfigNotFound" }

// LookupError indica que no hay implementación registrada para un kind.
type LookupError struct {
	Kind PipelineKind
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no pipeline registered for kind %s", e.Kind)
}

func (e *LookupError) Unwrap() error { return ErrPipelineNotRegistered }

// Category implementa la categoría usada en los registros de ejecución.
func (e *LookupError) Category() string { return "LookupError" }

// ConstructionError indica que el constructor de la implementación falló.
type ConstructionError struct {
	Kind PipelineKind
	Err  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("failed to construct pipeline %s: %v", e.Kind, e.Err)
}

func (e *ConstructionError) Unwrap() []error {
	return []error{ErrPipelineConstruction, e.Err}
}

// Category implementa la categoría usada en los registros de ejecución.
func (e *ConstructionError) Category() string { return "ConstructionError" }
