// cmd/ingestrouter/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ingestrouter/internal/adapters/event"
	"ingestrouter/internal/adapters/natsin"
	"ingestrouter/internal/adapters/output"
	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/core/usecases"
	"ingestrouter/internal/platform/classifier"
	"ingestrouter/internal/platform/config"
	"ingestrouter/internal/platform/logx"
	"ingestrouter/internal/platform/metrics"
	"ingestrouter/internal/platform/workerpool"

	// Registro de pipelines vía init()
	_ "ingestrouter/internal/pipelines/all"
)

var (
	// Rellenables con -ldflags en build
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: configuration load failed: %v\n", err)
		os.Exit(2)
	}
	if cfg.PrintHelp {
		config.PrintHelp()
	}
	if cfg.PrintVersion {
		config.PrintVersion(version, commit, date)
	}

	// 2. Logger
	logger := logx.NewWithOptions(logx.Options{
		Level:  logx.ParseLevel(cfg.Log.Level),
		Format: logx.ParseFormat(cfg.Log.Format),
	})

	// 3. Reglas
	rules, err := classifier.Load(cfg.RulesFile)
	if err != nil {
		logger.Err(err, "phase", "rules")
		os.Exit(2)
	}

	// Modos de inspección: no tocan storage ni pipelines
	if cfg.ListRules {
		exitOn(logger, output.RulesTable(os.Stdout, rules), "list-rules")
		return
	}
	if len(cfg.Classify) > 0 {
		exitOn(logger, classify(cfg, rules), "classify")
		return
	}

	if err := cfg.Validate(); err != nil {
		logger.Err(err, "phase", "validation")
		os.Exit(2)
	}
	if len(cfg.Files) == 0 && len(cfg.EventFiles) == 0 && !cfg.Subscribe {
		fmt.Fprintln(os.Stderr, "Error: nothing to do, pass files, --event or --nats")
		fmt.Fprintln(os.Stderr, "Try: ingestrouter -h for help")
		os.Exit(2)
	}

	logger.Info("ingestrouter starting", append([]any{"version", version, "commit", commit}, cfg.Summary()...)...)

	// 4. Context y señales
	ctx, cancel := rootContextWithSignals()
	defer cancel()

	// 5. Componentes
	a, err := newApp(cfg, rules, logger)
	if err != nil {
		logger.Err(err, "phase", "build")
		os.Exit(2)
	}

	if cfg.MetricsAddr != "" {
		srv, err := metrics.Start(cfg.MetricsAddr, a.registry, logger)
		if err != nil {
			logger.Err(err, "phase", "metrics")
			os.Exit(2)
		}
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// 6. Ejecución
	if cfg.Subscribe {
		if err := a.subscribe(ctx); err != nil {
			logger.Err(err, "phase", "nats")
			os.Exit(1)
		}
		return
	}

	start := time.Now()
	var reports []event.Report
	if len(cfg.Files) > 0 {
		reports = append(reports, a.runFiles(ctx))
	}
	reports = append(reports, a.runEvents(ctx)...)

	// 7. Salida
	if err := writeReports(cfg, reports); err != nil {
		logger.Err(err, "phase", "output")
		os.Exit(1)
	}

	failed := 0
	for _, r := range reports {
		if r.InvocationFail {
			failed++
		}
	}
	logger.Info("ingestrouter finished",
		"elapsed_ms", time.Since(start).Milliseconds(),
		"batches", len(reports),
		"invocation_failures", failed,
	)
	if failed > 0 {
		os.Exit(1)
	}
}

// runFiles procesa los argumentos posicionales como un único batch.
func (a *app) runFiles(ctx context.Context) event.Report {
	bctx, cancel := a.batchContext(ctx)
	defer cancel()
	return a.handler.HandleFiles(bctx, "cli", fileRefs(a.cfg.Files))
}

// runEvents procesa cada archivo de notificación como un batch independiente.
func (a *app) runEvents(ctx context.Context) []event.Report {
	if len(a.cfg.EventFiles) == 0 {
		return nil
	}

	pool := workerpool.NewWorkerPool(workerpool.WorkerPoolConfig{
		Workers: a.cfg.Workers,
		Logger:  a.logger,
		Parent:  ctx,
	})
	pool.Start()
	defer pool.Stop()

	reports := make([]event.Report, len(a.cfg.EventFiles))
	tasks := make([]workerpool.Task, len(a.cfg.EventFiles))
	for i, path := range a.cfg.EventFiles {
		tasks[i] = workerpool.TaskFunc{
			Label: path,
			Fn: func(ctx context.Context) error {
				payload, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				bctx, cancel := a.batchContext(ctx)
				defer cancel()
				reports[i] = a.handler.HandlePayload(bctx, path, payload)
				return nil
			},
		}
	}

	for _, res := range pool.Submit(tasks) {
		if res.Error != nil {
			a.logger.Err(res.Error, "event_file", res.Task.Name())
			reports[res.Index] = event.Report{
				Source:         res.Task.Name(),
				Files:          []string{},
				Outcome:        string(usecases.OutcomeAborted),
				Error:          res.Error.Error(),
				InvocationFail: true,
			}
		}
	}
	return reports
}

// subscribe atiende notificaciones de NATS hasta recibir una señal.
func (a *app) subscribe(ctx context.Context) error {
	conn, err := natsin.Connect(a.cfg.NATS.URL, a.logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	pool := a.newBatchPool(ctx)
	pool.Start()

	sub := natsin.NewSubscriber(natsin.Config{
		URL:     a.cfg.NATS.URL,
		Subject: a.cfg.NATS.Subject,
		Queue:   a.cfg.NATS.Queue,
		Timeout: a.cfg.Timeout(),
		Rate:    a.cfg.NATS.Rate,
	}, conn, a.handler, pool, a.logger)

	if err := sub.Start(context.WithoutCancel(ctx)); err != nil {
		pool.Stop()
		return err
	}

	<-ctx.Done()
	a.logger.Info("shutting down subscriber")

	// Primero el drain (los mensajes pendientes aún se encolan), luego el pool.
	dctx, cancel := context.WithTimeout(context.Background(), a.drainTimeout())
	defer cancel()
	if err := sub.Stop(dctx); err != nil {
		a.logger.Warn("drain failed", "error", err.Error())
	}
	pool.Stop()
	return nil
}

// classify imprime la clasificación de cada nombre sin ejecutar nada.
func classify(cfg config.Config, rules *classifier.Classifier) error {
	results := make([]domain.Classification, 0, len(cfg.Classify))
	for _, name := range cfg.Classify {
		results = append(results, rules.Classify(fileRef(name).String()))
	}
	if cfg.Output.Format == "json" {
		return output.WriteJSON(os.Stdout, results)
	}
	return output.ClassificationTable(os.Stdout, results)
}

// writeReports decide el formato de salida según la config.
func writeReports(cfg config.Config, reports []event.Report) error {
	summary := output.NewDispatchReport(reports)

	if cfg.Output.Dir != "" {
		path, err := output.WriteReportFile(cfg.Output.Dir, summary)
		if err != nil {
			return fmt.Errorf("report file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "report written to %s\n", path)
	}

	if cfg.Output.Format == "json" {
		return output.WriteJSON(os.Stdout, summary)
	}
	return output.ReportsTable(os.Stdout, reports)
}

func exitOn(logger logx.Logger, err error, phase string) {
	if err != nil {
		logger.Err(err, "phase", phase)
		os.Exit(1)
	}
}

// rootContextWithSignals crea el contexto raíz cancelado por SIGINT/SIGTERM.
// El timeout es por batch, no global.
func rootContextWithSignals() (context.Context, context.CancelFunc) {
	base, baseCancel := context.WithCancel(context.Background())

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-ch:
			baseCancel()
		case <-base.Done():
		}
	}()

	cleanup := func() {
		signal.Stop(ch)
		baseCancel()
	}
	return base, cleanup
}
