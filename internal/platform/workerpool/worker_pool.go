// internal/platform/workerpool/worker_pool.go
package workerpool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ingestrouter/internal/platform/errors"
	"ingestrouter/internal/platform/logx"
)

// Task representa una tarea a ejecutar en el worker pool.
type Task interface {
	// Execute ejecuta la tarea
	Execute(ctx context.Context) error

	// Name retorna el nombre de la tarea
	Name() string
}

// TaskFunc adapta una función a Task.
type TaskFunc struct {
	Label string
	Fn    func(ctx context.Context) error
}

func (t TaskFunc) Execute(ctx context.Context) error { return t.Fn(ctx) }
func (t TaskFunc) Name() string                      { return t.Label }

// TaskResult representa el resultado de una tarea.
type TaskResult struct {
	Task     Task
	Index    int // posición en el Submit original
	Error    error
	Duration time.Duration
}

type job struct {
	task  Task
	index int
	done  chan<- TaskResult // nil para tareas encoladas sin espera
}

// WorkerPool ejecuta tareas de forma concurrente en orden de llegada (FIFO).
type WorkerPool struct {
	workers int
	logger  logx.Logger

	queue chan job

	// Control
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	mu       sync.RWMutex
	stopped  bool
}

// WorkerPoolConfig configura el worker pool.
type WorkerPoolConfig struct {
	Workers int
	Logger  logx.Logger

	// Parent es el contexto raíz de las tareas; por defecto context.Background()
	Parent context.Context
}

// NewWorkerPool crea un nuevo worker pool.
func NewWorkerPool(cfg WorkerPoolConfig) *WorkerPool {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Logger == nil {
		cfg.Logger = logx.New()
	}
	if cfg.Parent == nil {
		cfg.Parent = context.Background()
	}

	ctx, cancel := context.WithCancel(cfg.Parent)

	return &WorkerPool{
		workers: cfg.Workers,
		logger:  cfg.Logger.With("component", "worker-pool"),
		queue:   make(chan job, cfg.Workers*2), // Buffer 2x workers
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start inicia el worker pool.
func (wp *WorkerPool) Start() {
	wp.logger.Debug("starting worker pool", "workers", wp.workers)

	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// worker es el goroutine que procesa tareas.
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for j := range wp.queue {
		res := wp.executeTask(id, j)
		if j.done != nil {
			j.done <- res
		}
	}
	wp.logger.Debug("task queue closed, worker stopping", "worker_id", id)
}

// executeTask ejecuta una tarea individual; un panic se convierte en error.
func (wp *WorkerPool) executeTask(workerID int, j job) (res TaskResult) {
	start := time.Now()
	res = TaskResult{Task: j.task, Index: j.index}

	defer func() {
		if r := recover(); r != nil {
			res.Error = fmt.Errorf("task %s panicked: %v", j.task.Name(), r)
		}
		res.Duration = time.Since(start)

		wp.logger.Debug("task completed",
			"worker_id", workerID,
			"task", j.task.Name(),
			"duration_ms", res.Duration.Milliseconds(),
			"error", res.Error != nil,
		)
		if j.done == nil && res.Error != nil {
			wp.logger.Err(res.Error, "task", j.task.Name())
		}
	}()

	if err := wp.ctx.Err(); err != nil {
		res.Error = err
		return res
	}
	res.Error = j.task.Execute(wp.ctx)
	return res
}

// Submit ejecuta tasks y espera a que todas terminen.
// Los resultados se retornan en el orden de tasks.
func (wp *WorkerPool) Submit(tasks []Task) []TaskResult {
	results := make([]TaskResult, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	done := make(chan TaskResult, len(tasks))
	sent := 0
	for i, task := range tasks {
		if err := wp.enqueue(job{task: task, index: i, done: done}); err != nil {
			results[i] = TaskResult{Task: task, Index: i, Error: err}
			continue
		}
		sent++
	}

	for ; sent > 0; sent-- {
		r := <-done
		results[r.Index] = r
	}
	return results
}

// Enqueue agrega una tarea sin esperar su resultado; los errores se registran en el log.
// Bloquea mientras la cola esté llena.
func (wp *WorkerPool) Enqueue(task Task) error {
	return wp.enqueue(job{task: task})
}

func (wp *WorkerPool) enqueue(j job) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.stopped {
		return ErrPoolStopped
	}
	select {
	case wp.queue <- j:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// ErrPoolStopped se retorna al encolar en un pool detenido.
var ErrPoolStopped = errors.New("worker pool stopped")

// Stop deja de aceptar tareas y espera a que terminen las encoladas.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		wp.logger.Debug("stopping worker pool")

		wp.mu.Lock()
		wp.stopped = true
		close(wp.queue)
		wp.mu.Unlock()

		// Wait for all workers to finish
		wp.wg.Wait()
		wp.cancel()
	})
}

// Abort cancela el contexto de las tareas en curso y detiene el pool.
func (wp *WorkerPool) Abort() {
	wp.cancel()
	wp.Stop()
}

// Stats retorna estadísticas del worker pool.
func (wp *WorkerPool) Stats() WorkerPoolStats {
	return WorkerPoolStats{
		Workers:   wp.workers,
		QueueSize: len(wp.queue),
	}
}

// WorkerPoolStats contiene estadísticas del worker pool.
type WorkerPoolStats struct {
	Workers   int
	QueueSize int
}
