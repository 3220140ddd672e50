package async

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/core"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Processor is the part of core.Processor the queue drives.
type Processor interface {
	Process(ctx context.Context, up core.Upload) (core.Outcome, error)
}

// Result is the outcome of one queued job.
type Result struct {
	Job     Job
	Outcome core.Outcome
	Err     error
	Elapsed time.Duration
}

type ProcessorQueue struct {
	proc     Processor
	logger   *slog.Logger
	workers  int
	timeout  time.Duration
	onResult func(Result)

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool

	resMu   sync.Mutex
	results []Result
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithResultHandler is called from worker goroutines after each job.
func WithResultHandler(fn func(Result)) Option {
	return func(q *ProcessorQueue) { q.onResult = fn }
}

func NewProcessorQueue(proc Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					res := q.run(job)
					if res.Err != nil {
						q.logger.Error("processing failed", "worker_id", workerID, "path", job.Path, "error", res.Err)
					} else {
						q.logger.Info("processed file successfully", "worker_id", workerID, "path", job.Path,
							"job_id", res.Outcome.JobID, "elapsed_ms", res.Elapsed.Milliseconds())
					}
					q.record(res)
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(job Job) Result {
	start := time.Now()
	res := Result{Job: job}

	data, err := os.ReadFile(job.Path)
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", job.Path, err)
		res.Elapsed = time.Since(start)
		return res
	}

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	res.Outcome, res.Err = q.proc.Process(ctx, core.Upload{Filename: filepath.Base(job.Path), Data: data})
	res.Elapsed = time.Since(start)
	return res
}

func (q *ProcessorQueue) record(res Result) {
	q.resMu.Lock()
	q.results = append(q.results, res)
	q.resMu.Unlock()
	if q.onResult != nil {
		q.onResult(res)
	}
}

func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", job.Path)
		return ErrQueueClosed
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queued file for processing", "path", job.Path)
		return nil
	default:
	}

	q.logger.Warn("queue full, applying backpressure", "path", job.Path)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for queued jobs to finish or ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}

// Results returns a copy of every result recorded so far, in completion order.
func (q *ProcessorQueue) Results() []Result {
	q.resMu.Lock()
	defer q.resMu.Unlock()
	out := make([]Result, len(q.results))
	copy(out, q.results)
	return out
}
