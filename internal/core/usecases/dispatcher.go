// internal/core/usecases/dispatcher.go
package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/core/ports"
	"ingestrouter/internal/platform/errors"
	"ingestrouter/internal/platform/execlog"
	"ingestrouter/internal/platform/logx"
)

// Outcome es el estado terminal alcanzado por un batch.
type Outcome string

const (
	// OutcomeIdle: batch vacío, no se hizo nada
	OutcomeIdle Outcome = "idle"

	// OutcomeSkipped: sin sitio o sin tipo de pipeline
	OutcomeSkipped Outcome = "skipped"

	// OutcomeSucceeded: el pipeline terminó sin error
	OutcomeSucceeded Outcome = "succeeded"

	// OutcomeFailed: el pipeline falló; el error quedó registrado y contenido
	OutcomeFailed Outcome = "failed"

	// OutcomeAborted: falló la resolución de configuración o la construcción
	OutcomeAborted Outcome = "aborted"
)

// Result resume una invocación de Dispatch.
type Result struct {
	BatchID        string
	Outcome        Outcome
	Classification domain.Classification
	Config         domain.ResolvedConfig
	Duration       time.Duration

	// Err es el fallo contenido del pipeline (solo OutcomeFailed)
	Err error
}

// Dispatcher enruta un batch de archivos al pipeline que le corresponde.
// Cada llamada a Dispatch es independiente; no hay estado entre batches.
type Dispatcher struct {
	classifier ports.Classifier
	resolver   ports.ConfigResolver
	builder    ports.PipelineBuilder
	sink       ports.DiagnosticsSink
	records    *execlog.Builder
	logger     logx.Logger
	newID      func() string
}

// DispatcherOptions configura el dispatcher.
type DispatcherOptions struct {
	Classifier ports.Classifier
	Resolver   ports.ConfigResolver
	Builder    ports.PipelineBuilder
	Sink       ports.DiagnosticsSink
	Records    *execlog.Builder
	Logger     logx.Logger

	// NewID genera el identificador de batch; por defecto un UUID v4
	NewID func() string
}

// NewDispatcher crea un dispatcher. Classifier, Resolver y Builder son obligatorios.
func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}
	if opts.Sink == nil {
		opts.Sink = execlog.NewLoggerSink(opts.Logger)
	}
	if opts.Records == nil {
		opts.Records = execlog.NewBuilder()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	return &Dispatcher{
		classifier: opts.Classifier,
		resolver:   opts.Resolver,
		builder:    opts.Builder,
		sink:       opts.Sink,
		records:    opts.Records,
		logger:     opts.Logger.With("component", "dispatcher"),
		newID:      opts.NewID,
	}
}

// Dispatch clasifica el batch usando solo el primer archivo, resuelve la
// configuración, construye el pipeline y lo ejecuta con todos los archivos.
//
// Los errores de configuración y construcción se retornan. Un fallo de Run
// se registra como Error y se contiene: Dispatch retorna nil y Result.Err
// lo conserva.
func (d *Dispatcher) Dispatch(ctx context.Context, files []domain.FileReference) (Result, error) {
	if len(files) == 0 {
		return Result{Outcome: OutcomeIdle}, nil
	}

	res := Result{BatchID: d.newID()}
	log := d.logger.With("batch_id", res.BatchID)

	c := d.classifier.Classify(files[0].String())
	res.Classification = c

	if c.Ambiguous() {
		log.Debug("multiple rules matched, using first",
			"file", c.Filename,
			"sites", c.SiteCandidates,
			"pipelines", c.KindCandidates,
		)
	}

	if !c.Matched() {
		res.Outcome = OutcomeSkipped
		d.sink.Emit(d.records.Skipped(res.BatchID, c, files))
		return res, nil
	}

	log.Debug("batch classified", "pipeline", c.Kind, "location", c.Site, "files", len(files))

	cfg, err := d.resolver.Resolve(c.Kind, c.Site)
	if err != nil {
		res.Outcome = OutcomeAborted
		return res, errors.Wrapf(err, "resolve config for %s/%s", c.Kind, c.Site)
	}
	res.Config = cfg

	pipeline, err := d.builder.Create(c.Kind, cfg)
	if err != nil {
		res.Outcome = OutcomeAborted
		return res, errors.Wrapf(err, "build pipeline %s", c.Kind)
	}

	d.sink.Emit(d.records.Started(res.BatchID, c, files))

	start := time.Now()
	err = run(ctx, pipeline, files)
	res.Duration = time.Since(start)

	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		d.sink.Emit(d.records.Failed(res.BatchID, c, files, err))
		return res, nil
	}

	res.Outcome = OutcomeSucceeded
	d.sink.Emit(d.records.Succeeded(res.BatchID, c, files))
	return res, nil
}

// run invoca el pipeline convirtiendo un panic en *execlog.PanicError.
func run(ctx context.Context, p ports.Pipeline, files []domain.FileReference) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = execlog.NewPanicError(r)
		}
	}()
	return p.Run(ctx, files)
}
