package async

import (
	"context"
	"errors"
	"sync"
	"time"

	"log/slog"

	"github.com/sultanMIB/pdf-ui/internal/common"
	"github.com/sultanMIB/pdf-ui/internal/entity"
)

// Analyzer is the work a queue worker runs for one staged document.
type Analyzer interface {
	AnalyzeFile(ctx context.Context, path string) entity.AnalysisResult
}

// Job is one staged upload waiting for analysis.
type Job struct {
	Path        string
	RequestID   string
	SubmittedAt time.Time

	ctx  context.Context
	done chan outcome
}

type outcome struct {
	res entity.AnalysisResult
	err error
}

// AnalysisQueue bounds how many documents are analyzed at once. Each job runs
// one request's pipeline start to finish on a single worker.
type AnalysisQueue struct {
	analyzer Analyzer
	logger   *slog.Logger
	workers  int
	timeout  time.Duration

	ch   chan *Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*AnalysisQueue)

func WithWorkers(n int) Option {
	return func(q *AnalysisQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *AnalysisQueue) {
		if n > 0 {
			q.ch = make(chan *Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *AnalysisQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewAnalysisQueue(analyzer Analyzer, logger *slog.Logger, opts ...Option) *AnalysisQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &AnalysisQueue{
		analyzer: analyzer,
		logger:   logger,
		workers:  4,
		timeout:  2 * time.Minute,
		ch:       make(chan *Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *AnalysisQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker.started", "worker_id", workerID)

				for job := range q.ch {
					job.done <- q.run(workerID, job)
				}

				q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *AnalysisQueue) run(workerID int, job *Job) outcome {
	if err := job.ctx.Err(); err != nil {
		return outcome{err: err}
	}
	ctx, cancel := context.WithTimeout(job.ctx, q.timeout)
	defer cancel()

	start := time.Now()
	res := q.analyzer.AnalyzeFile(ctx, job.Path)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && job.ctx.Err() == nil {
		q.logger.Error("queue.job.timeout", "worker_id", workerID, "request_id", job.RequestID, "timeout", q.timeout)
		return outcome{err: common.ErrTimeout}
	}
	q.logger.Info("queue.job.done",
		"worker_id", workerID,
		"request_id", job.RequestID,
		"success", res.Success,
		"waited_ms", start.Sub(job.SubmittedAt).Milliseconds(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return outcome{res: res}
}

// Submit enqueues the staged file at path and waits for its result. It
// returns ErrTimeout when the analysis outlives the process timeout,
// ErrQueueClosed after Shutdown, or ctx's error if the caller gives up.
func (q *AnalysisQueue) Submit(ctx context.Context, path string) (entity.AnalysisResult, error) {
	job := &Job{
		Path:        path,
		RequestID:   common.RequestIDFromContext(ctx),
		SubmittedAt: time.Now(),
		ctx:         ctx,
		done:        make(chan outcome, 1),
	}

	if err := q.enqueue(ctx, job); err != nil {
		return entity.AnalysisResult{}, err
	}

	select {
	case out := <-job.done:
		return out.res, out.err
	case <-ctx.Done():
		return entity.AnalysisResult{}, ctx.Err()
	}
}

func (q *AnalysisQueue) enqueue(ctx context.Context, job *Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "request_id", job.RequestID)
		return common.ErrQueueClosed
	}
	select {
	case q.ch <- job:
		return nil
	default:
	}
	q.logger.Warn("queue.full", "request_id", job.RequestID, "capacity", cap(q.ch))
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for queued ones to drain.
func (q *AnalysisQueue) Shutdown(ctx context.Context) {
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
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.drained")
	}
}
