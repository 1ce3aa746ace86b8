// cmd/ingestrouter/app.go
package main

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ingestrouter/internal/adapters/event"
	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/core/ports"
	"ingestrouter/internal/core/usecases"
	"ingestrouter/internal/platform/classifier"
	"ingestrouter/internal/platform/config"
	"ingestrouter/internal/platform/errors"
	"ingestrouter/internal/platform/execlog"
	"ingestrouter/internal/platform/logx"
	"ingestrouter/internal/platform/metrics"
	"ingestrouter/internal/platform/pipeconf"
	"ingestrouter/internal/platform/registry"
	"ingestrouter/internal/platform/resilience"
	"ingestrouter/internal/platform/storage"
	"ingestrouter/internal/platform/workerpool"
)

// app agrupa los componentes construidos a partir de la configuración.
type app struct {
	cfg      config.Config
	logger   logx.Logger
	handler  *event.Handler
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

// newApp arma el grafo de dependencias: storage -> registry -> dispatcher -> handler.
func newApp(cfg config.Config, rules ports.Classifier, logger logx.Logger) (*app, error) {
	store, err := storage.New(cfg.Storage)
	if err != nil {
		return nil, errors.Wrap(err, "storage")
	}
	if cfg.Storage.Backend == config.BackendS3 && cfg.Storage.Retries > 0 {
		store = resilience.NewRetryableStorage(store, resilience.RetryOptions{
			MaxRetries: cfg.Storage.Retries,
			Breaker:    resilience.NewCircuitBreaker(0, 0, 0),
			Logger:     logger,
		})
	}

	cached, err := classifier.NewCached(rules, cfg.CacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "classifier cache")
	}

	reg := prometheus.NewRegistry()
	m, err := metrics.NewMetrics(reg)
	if err != nil {
		return nil, errors.Wrap(err, "metrics")
	}

	builder := registry.Global().Bind(ports.PipelineDeps{
		Storage:      store,
		Logger:       logger,
		RetainInputs: cfg.Storage.RetainInputFiles,
	})

	dispatcher := usecases.NewDispatcher(usecases.DispatcherOptions{
		Classifier: cached,
		Resolver:   pipeconf.NewResolver(cfg.PipelinesDir),
		Builder:    builder,
		Sink: execlog.MultiSink{
			execlog.NewLoggerSink(logger),
			metrics.NewSink(m),
		},
		Logger: logger,
	})

	handler := event.NewHandler(event.HandlerOptions{
		Dispatcher: dispatcher,
		Logger:     logger,
		Observe:    m.ObserveOutcome,
		Context:    cfg.Summary(),
	})

	logger.Debug("components ready",
		"storage", store.Name(),
		"pipelines", registry.Global().List(),
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		handler:  handler,
		registry: reg,
		metrics:  m,
	}, nil
}

// batchContext aplica el timeout por batch configurado.
func (a *app) batchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if t := a.cfg.Timeout(); t > 0 {
		return context.WithTimeout(ctx, t)
	}
	return context.WithCancel(ctx)
}

// newBatchPool crea el pool de los batches de NATS. La cancelación de ctx no
// llega a las tareas: lo drenado al apagar termina, acotado por el timeout por batch.
func (a *app) newBatchPool(ctx context.Context) *workerpool.WorkerPool {
	return workerpool.NewWorkerPool(workerpool.WorkerPoolConfig{
		Workers: a.cfg.Workers,
		Logger:  a.logger,
		Parent:  context.WithoutCancel(ctx),
	})
}

// drainTimeout acota la espera del drain de la suscripción al apagar.
func (a *app) drainTimeout() time.Duration {
	if t := a.cfg.Timeout(); t > defaultDrainTimeout {
		return t
	}
	return defaultDrainTimeout
}

const defaultDrainTimeout = 30 * time.Second

// fileRefs convierte argumentos de la CLI en referencias. "s3://bucket/key"
// identifica un objeto; cualquier otra cosa es una ruta local.
func fileRefs(args []string) []domain.FileReference {
	refs := make([]domain.FileReference, 0, len(args))
	for _, arg := range args {
		refs = append(refs, fileRef(arg))
	}
	return refs
}

func fileRef(arg string) domain.FileReference {
	rest, ok := strings.CutPrefix(arg, "s3://")
	if !ok {
		return domain.NewLocalReference(arg)
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}
	return domain.NewS3Reference(bucket, key)
}
