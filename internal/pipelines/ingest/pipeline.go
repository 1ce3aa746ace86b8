// internal/pipelines/ingest/pipeline.go
package ingest

import (
	"bufio"
	"context"
	"io"
	"path"

	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/core/ports"
	"ingestrouter/internal/platform/errors"
	"ingestrouter/internal/platform/logx"
)

// ErrUnsupportedFile indica un archivo que el pipeline no sabe leer.
var ErrUnsupportedFile = errors.New("unsupported input file")

// Format describe los archivos de entrada que acepta un tipo de pipeline.
type Format struct {
	// Extensions son los sufijos aceptados (ej: ".imu.bin")
	Extensions []string

	// Check valida la cabecera del archivo; nil = sin validación
	Check func(name string, head []byte) error

	// HeadSize es cuántos bytes recibe Check
	HeadSize int
}

func (f Format) accepts(name string) bool {
	if len(f.Extensions) == 0 {
		return true
	}
	for _, ext := range f.Extensions {
		if hasSuffixFold(name, ext) {
			return true
		}
	}
	return false
}

// Pipeline es la implementación común de los ingest: valida cada entrada, la
// copia bajo el datastream de salida y, salvo retain_input_files (o
// PipelineDeps.RetainInputs), borra las entradas.
type Pipeline struct {
	kind    domain.PipelineKind
	spec    Spec
	store   StorageSpec
	format  Format
	storage ports.Storage
	logger  logx.Logger
}

// New construye el pipeline leyendo ambas configuraciones.
func New(kind domain.PipelineKind, format Format, cfg domain.ResolvedConfig, deps ports.PipelineDeps) (*Pipeline, error) {
	if deps.Storage == nil {
		return nil, errors.Wrap(errors.ErrMissingConfig, "storage is required")
	}
	spec, err := LoadSpec(cfg.PipelineConfigPath)
	if err != nil {
		return nil, err
	}
	store, err := LoadStorageSpec(cfg.StorageConfigPath)
	if err != nil {
		return nil, err
	}
	if deps.Logger == nil {
		deps.Logger = logx.NewSilent()
	}
	store.RetainInputFiles = store.RetainInputFiles || deps.RetainInputs

	return &Pipeline{
		kind:    kind,
		spec:    spec,
		store:   store,
		format:  format,
		storage: deps.Storage,
		logger:  deps.Logger.With("datastream", spec.Datastream()),
	}, nil
}

// Spec retorna la configuración cargada.
func (p *Pipeline) Spec() Spec { return p.spec }

// Retain indica si las entradas se conservan.
func (p *Pipeline) Retain() bool { return p.store.RetainInputFiles }

// OutputKey retorna la clave de salida de un archivo de entrada.
func (p *Pipeline) OutputKey(name string) string {
	key := path.Join(p.spec.LocationID, p.spec.Datastream(), name)
	if p.store.OutputPrefix != "" {
		key = path.Join(p.store.OutputPrefix, key)
	}
	return key
}

// Run implementa ports.Pipeline. El batch es atómico: si una entrada falla
// no se borra ninguna.
func (p *Pipeline) Run(ctx context.Context, files []domain.FileReference) error {
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "run canceled")
		}
		if err := p.stage(ctx, f); err != nil {
			return err
		}
	}

	if p.store.RetainInputFiles {
		return nil
	}
	for _, f := range files {
		if err := p.storage.Delete(ctx, f); err != nil {
			return errors.Wrapf(err, "delete input %s", f)
		}
	}
	p.logger.Debug("input files removed", "count", len(files))
	return nil
}

func (p *Pipeline) stage(ctx context.Context, f domain.FileReference) error {
	name := f.Name()
	if !p.format.accepts(name) {
		return errors.Wrapf(ErrUnsupportedFile, "%s: %s expects %v", name, p.kind, p.format.Extensions)
	}

	rc, err := p.storage.Fetch(ctx, f)
	if err != nil {
		return errors.Wrapf(err, "fetch %s", f)
	}
	defer rc.Close()

	var r io.Reader = rc
	if p.format.Check != nil && p.format.HeadSize > 0 {
		br := bufio.NewReaderSize(rc, p.format.HeadSize)
		head, err := br.Peek(p.format.HeadSize)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return errors.Wrapf(err, "read header of %s", name)
		}
		if err := p.format.Check(name, head); err != nil {
			return errors.Wrapf(err, "validate %s", name)
		}
		r = br
	}

	key := p.OutputKey(name)
	if err := p.storage.Save(ctx, key, r, -1); err != nil {
		return errors.Wrapf(err, "save %s", key)
	}
	p.logger.Debug("input staged", "file", f.String(), "key", key)
	return nil
}
