// internal/platform/storage/storage.go
package storage

import (
	"io/fs"
	"os"

	"ingestrouter/internal/core/ports"
	"ingestrouter/internal/platform/config"
	"ingestrouter/internal/platform/errors"
)

// New construye el backend seleccionado por cfg.Backend.
func New(cfg config.Storage) (ports.Storage, error) {
	switch cfg.Backend {
	case config.BackendFilesystem:
		return NewFilesystem(cfg.RootDir, cfg.Bucket)
	case config.BackendS3, "":
		return NewS3Storage(S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.Bucket,
			UseSSL:    cfg.S3.UseSSL,
		})
	default:
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "unknown storage backend %q", cfg.Backend)
	}
}

// notFound normaliza los errores de inexistencia para que respondan a errors.IsNotFound.
func notFound(err error, what string) error {
	return errors.Wrapf(errors.Join(errors.ErrNotFound, err), "%s not found", what)
}

// openLocal abre un archivo local; ambos backends aceptan referencias locales.
func openLocal(p string) (*os.File, error) {
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(err, p)
		}
		return nil, errors.Wrapf(err, "open %s", p)
	}
	return f, nil
}

func removeLocal(p string) error {
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "remove %s", p)
	}
	return nil
}
