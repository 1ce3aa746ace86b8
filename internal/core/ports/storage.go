// internal/core/ports/storage.go
package ports

import (
	"context"
	"io"

	"ingestrouter/internal/core/domain"
)

// Storage resuelve referencias de archivos a bytes y persiste las salidas.
// Implementaciones: filesystem local y almacenamiento compatible con S3.
type Storage interface {
	// Name retorna el nombre del backend (ej: "filesystem", "s3")
	Name() string

	// Fetch abre el contenido de un archivo de entrada
	Fetch(ctx context.Context, ref domain.FileReference) (io.ReadCloser, error)

	// Save escribe un objeto de salida bajo la key indicada
	Save(ctx context.Context, key string, r io.Reader, size int64) error

	// Delete elimina un archivo de entrada ya procesado
	Delete(ctx context.Context, ref domain.FileReference) error
}
