// internal/platform/pipeconf/resolver.go
package pipeconf

import (
	"fmt"
	"os"
	"path/filepath"

	"ingestrouter/internal/core/domain"
)

const (
	configDir         = "config"
	storageConfigFile = "storage_config.yml"
)

// Resolver derives configuration locations from a pipelines root directory:
//
//	<root>/config/storage_config.yml                      shared by every kind and site
//	<root>/<kind>/config/pipeline_config_<site>.yml       one per kind per site
//
// Only existence is checked; file contents belong to the pipeline implementation.
type Resolver struct {
	root string
}

// NewResolver creates a resolver rooted at dir.
func NewResolver(dir string) *Resolver {
	return &Resolver{root: dir}
}

// Root returns the pipelines root directory.
func (r *Resolver) Root() string {
	return r.root
}

// StorageConfigPath returns the shared storage configuration location.
func (r *Resolver) StorageConfigPath() string {
	return filepath.Join(r.root, configDir, storageConfigFile)
}

// PipelineConfigPath returns the site-specific configuration location for kind.
func (r *Resolver) PipelineConfigPath(kind domain.PipelineKind, site domain.SiteKey) string {
	return filepath.Join(r.root, string(kind), configDir, fmt.Sprintf("pipeline_config_%s.yml", site))
}

// Resolve implements ports.ConfigResolver.
func (r *Resolver) Resolve(kind domain.PipelineKind, site domain.SiteKey) (domain.ResolvedConfig, error) {
	cfg := domain.ResolvedConfig{
		Kind:               kind,
		Site:               site,
		PipelineConfigPath: r.PipelineConfigPath(kind, site),
		StorageConfigPath:  r.StorageConfigPath(),
	}

	for _, p := range []string{cfg.PipelineConfigPath, cfg.StorageConfigPath} {
		if err := mustExist(p); err != nil {
			return domain.ResolvedConfig{}, &domain.ConfigNotFoundError{
				Kind: kind,
				Site: site,
				Path: p,
				Err:  err,
			}
		}
	}
	return cfg, nil
}

func mustExist(p string) error {
	info, err := os.Stat(p)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", p)
	}
	return nil
}
