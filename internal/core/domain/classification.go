// internal/core/domain/classification.go
package domain

// SiteKey identifica una ubicación física de despliegue (ej: "humboldt").
type SiteKey string

// PipelineKind identifica una categoría de pipeline (ej: "a2e_buoy_ingest").
type PipelineKind string

// Classification es el resultado etiquetado de clasificar un nombre de archivo.
// Matched o Unmatched: ambas claves son necesarias para que el batch sea procesado.
type Classification struct {
	// Filename es el nombre clasificado (sin directorios)
	Filename string

	// Site es la primera regla de sitio que hizo match (vacío = ninguna)
	Site SiteKey

	// Kind es la primera regla de pipeline que hizo match (vacío = ninguna)
	Kind PipelineKind

	// SiteCandidates lista todas las reglas de sitio que hicieron match, en orden
	SiteCandidates []SiteKey

	// KindCandidates lista todas las reglas de pipeline que hicieron match, en orden
	KindCandidates []PipelineKind
}

// Matched indica si se encontró tanto sitio como tipo de pipeline.
func (c Classification) Matched() bool {
	return c.Site != "" && c.Kind != ""
}

// Ambiguous indica si más de una regla hizo match en alguna categoría.
// El primer match siempre gana; esto solo sirve para diagnóstico.
func (c Classification) Ambiguous() bool {
	return len(c.SiteCandidates) > 1 || len(c.KindCandidates) > 1
}

// ResolvedConfig es el par de rutas de configuración para (kind, site).
// Función pura de sus entradas; se recalcula en cada invocación.
type ResolvedConfig struct {
	Kind               PipelineKind
	Site               SiteKey
	PipelineConfigPath string
	StorageConfigPath  string
}
