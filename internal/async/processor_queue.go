package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/pipeline"
)

// Processor is the part of pipeline.Processor the queue drives.
type Processor interface {
	Process(ctx context.Context, doc pipeline.Document) (*pipeline.Outcome, error)
	ProcessImage(ctx context.Context, doc pipeline.Document) (*pipeline.Outcome, error)
}

// ProcessorQueue runs jobs on a fixed pool of workers. Each document is
// processed independently under its own timeout.
type ProcessorQueue struct {
	proc    Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration
	onDone  func(Result)

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool

	statusMu sync.RWMutex
	status   map[uuid.UUID]constants.JobStatus
	finished []uuid.UUID // oldest first
	retain   int
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

// WithStatusRetention keeps the status of the last n finished jobs.
// Older entries are evicted.
func WithStatusRetention(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.retain = n
		}
	}
}

// WithResultHandler is called from the worker goroutine after each job.
func WithResultHandler(fn func(Result)) Option {
	return func(q *ProcessorQueue) { q.onDone = fn }
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
		status:  make(map[uuid.UUID]constants.JobStatus),
		retain:  1024,
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
				q.logger.Info("worker started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, job Job) {
	q.setStatus(job.ID, constants.JobStatusRunning)
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	var (
		out *pipeline.Outcome
		err error
	)
	if job.Image {
		out, err = q.proc.ProcessImage(ctx, job.Document)
	} else {
		out, err = q.proc.Process(ctx, job.Document)
	}
	cancel()

	res := Result{
		Job:      job,
		Response: pipeline.NewResponse(job.Document, out, err),
		Err:      err,
		Duration: time.Since(start),
	}
	if err != nil {
		q.finish(job.ID, constants.JobStatusFailed)
		q.logger.Error("processing failed", "worker_id", workerID, "job_id", job.ID, "filename", job.Document.Filename, "error", err)
	} else {
		q.finish(job.ID, constants.JobStatusDone)
		q.logger.Info("processed document successfully", "worker_id", workerID, "job_id", job.ID, "filename", job.Document.Filename)
	}
	if q.onDone != nil {
		q.onDone(res)
	}
}

// Enqueue hands job to the workers. When the buffer is full it blocks until
// a slot frees up or ctx is done.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "job_id", job.ID)
		return ErrQueueClosed
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	q.setStatus(job.ID, constants.JobStatusQueued)

	select {
	case q.ch <- job:
		q.logger.Info("queued document for processing", "job_id", job.ID, "filename", job.Document.Filename)
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "job_id", job.ID)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		q.forget(job.ID)
		return ctx.Err()
	}
}

// Status reports the state of a job enqueued earlier. Finished jobs are
// remembered up to the retention limit.
func (q *ProcessorQueue) Status(id uuid.UUID) (constants.JobStatus, bool) {
	q.statusMu.RLock()
	defer q.statusMu.RUnlock()
	s, ok := q.status[id]
	return s, ok
}

func (q *ProcessorQueue) setStatus(id uuid.UUID, s constants.JobStatus) {
	q.statusMu.Lock()
	q.status[id] = s
	q.statusMu.Unlock()
}

// finish records a terminal status and evicts the oldest finished job once
// more than retain are held.
func (q *ProcessorQueue) finish(id uuid.UUID, s constants.JobStatus) {
	q.statusMu.Lock()
	defer q.statusMu.Unlock()
	q.status[id] = s
	q.finished = append(q.finished, id)
	for len(q.finished) > q.retain {
		delete(q.status, q.finished[0])
		q.finished = q.finished[1:]
	}
}

func (q *ProcessorQueue) forget(id uuid.UUID) {
	q.statusMu.Lock()
	delete(q.status, id)
	q.statusMu.Unlock()
}

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
