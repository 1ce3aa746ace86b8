// internal/core/domain/fileref.go
package domain

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Origin indica de dónde proviene un archivo de entrada.
type Origin string

const (
	// OriginS3 identifica un objeto en almacenamiento compatible con S3 (bucket + key).
	OriginS3 Origin = "s3"

	// OriginLocal identifica un archivo en el filesystem local.
	OriginLocal Origin = "local"
)

// String implementa fmt.Stringer.
func (o Origin) String() string {
	return string(o)
}

// FileReference identifica un archivo crudo recién llegado.
// Es un value type inmutable: se construye una vez en el borde del sistema
// y se pasa por valor al Dispatcher.
type FileReference struct {
	Origin Origin
	Bucket string
	Key    string
	Path   string
}

// NewS3Reference crea una referencia a un objeto (bucket + key).
func NewS3Reference(bucket, key string) FileReference {
	return FileReference{
		Origin: OriginS3,
		Bucket: bucket,
		Key:    key,
	}
}

// NewLocalReference crea una referencia a un archivo local.
func NewLocalReference(p string) FileReference {
	return FileReference{
		Origin: OriginLocal,
		Path:   p,
	}
}

// String retorna la forma canónica usada para clasificación y logs.
// Nunca se usa para I/O dentro del core.
func (f FileReference) String() string {
	switch f.Origin {
	case OriginS3:
		return fmt.Sprintf("s3://%s/%s", f.Bucket, strings.TrimLeft(f.Key, "/"))
	default:
		return f.Path
	}
}

// Name retorna el nombre del archivo sin componentes de directorio.
func (f FileReference) Name() string {
	switch f.Origin {
	case OriginS3:
		if f.Key == "" {
			return ""
		}
		return path.Base(f.Key)
	default:
		if f.Path == "" {
			return ""
		}
		return filepath.Base(f.Path)
	}
}

// Validate verifica que la referencia tenga coordenadas completas.
func (f FileReference) Validate() error {
	switch f.Origin {
	case OriginS3:
		if strings.TrimSpace(f.Bucket) == "" {
			return fmt.Errorf("%w: bucket is required", ErrInvalidFileReference)
		}
		if strings.TrimSpace(f.Key) == "" {
			return fmt.Errorf("%w: key is required", ErrInvalidFileReference)
		}
	case OriginLocal:
		if strings.TrimSpace(f.Path) == "" {
			return fmt.Errorf("%w: path is required", ErrInvalidFileReference)
		}
	default:
		return fmt.Errorf("%w: unknown origin %q", ErrInvalidFileReference, f.Origin)
	}
	return nil
}

// FileStrings retorna la forma canónica de cada archivo, preservando el orden.
func FileStrings(files []FileReference) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.String()
	}
	return out
}
