// internal/platform/storage/filesystem.go
package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/platform/errors"
)

// Filesystem guarda objetos bajo root/<bucket>/<key>.
// Las referencias s3 se leen de root/<ref.Bucket>/<ref.Key>, lo que permite
// reproducir notificaciones sin acceso a un object store.
type Filesystem struct {
	root   string
	bucket string
}

// NewFilesystem crea el backend; root se crea si no existe.
func NewFilesystem(root, bucket string) (*Filesystem, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.Wrap(errors.ErrMissingConfig, "filesystem root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create root %s", root)
	}
	return &Filesystem{root: root, bucket: strings.TrimSpace(bucket)}, nil
}

func (s *Filesystem) Name() string { return "filesystem" }

// Root retorna el directorio raíz.
func (s *Filesystem) Root() string { return s.root }

func (s *Filesystem) Fetch(ctx context.Context, ref domain.FileReference) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.locate(ref)
	if err != nil {
		return nil, err
	}
	return openLocal(p)
}

func (s *Filesystem) Save(ctx context.Context, key string, r io.Reader, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(s.bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.Wrapf(err, "create dir for %s", key)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".partial-*")
	if err != nil {
		return errors.Wrapf(err, "save %s", key)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write %s", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", key)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return errors.Wrapf(err, "commit %s", key)
	}
	return nil
}

func (s *Filesystem) Delete(ctx context.Context, ref domain.FileReference) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.locate(ref)
	if err != nil {
		return err
	}
	return removeLocal(p)
}

func (s *Filesystem) locate(ref domain.FileReference) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", err
	}
	if ref.Origin == domain.OriginLocal {
		return ref.Path, nil
	}
	return s.path(ref.Bucket, ref.Key)
}

// path resuelve bucket/key bajo root sin permitir escapar de él.
func (s *Filesystem) path(bucket, key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.Wrap(errors.ErrInvalidInput, "object key is required")
	}
	p := filepath.Join(s.root, bucket, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(errors.ErrInvalidInput, "key %q escapes storage root", key)
	}
	return p, nil
}
