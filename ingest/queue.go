package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	pl "github.com/aqua777/vaultrag/pipeline"
)

// Job is one queued ingest run.
type Job struct {
	Ctx  *Context
	Deps Deps
}

// Queue runs queued ingest Jobs on a bounded pool of background workers,
// guarding against a document id being processed by two workers at
// once, the same shape as TicoDavid-RAGbox.co's PipelineService
// processing map/mutex guard.
type Queue struct {
	jobs    chan Job
	workers int
	logger  *slog.Logger

	mu         sync.Mutex
	processing map[string]bool

	wg sync.WaitGroup
}

// NewQueue constructs a Queue with the given worker count and a
// channel buffer sized to bufferSize.
func NewQueue(workers, bufferSize int, logger *slog.Logger) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		jobs:       make(chan Job, bufferSize),
		workers:    workers,
		logger:     logger,
		processing: make(map[string]bool),
	}
}

// Start launches the worker pool. goCtx cancellation stops all workers
// after their current job finishes.
func (q *Queue) Start(goCtx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(goCtx)
	}
}

// Wait blocks until all workers have exited (after goCtx is cancelled,
// or after Close once the job channel drains).
func (q *Queue) Wait() {
	q.wg.Wait()
}

// Enqueue submits job for background processing. It returns immediately
// and never blocks on pipeline completion; it only blocks briefly if the
// channel buffer is full.
func (q *Queue) Enqueue(job Job) {
	q.jobs <- job
}

// Close stops accepting new jobs; call after the last Enqueue.
func (q *Queue) Close() {
	close(q.jobs)
}

func (q *Queue) worker(goCtx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-goCtx.Done():
			return
		case job, ok := <-q.jobs:
			if !ok {
				return
			}
			q.process(goCtx, job)
		}
	}
}

func (q *Queue) process(goCtx context.Context, job Job) {
	docID := job.Ctx.DocumentID

	q.mu.Lock()
	if q.processing[docID] {
		q.mu.Unlock()
		q.logger.Warn("ingest skipped: already processing", "doc_id", docID)
		return
	}
	q.processing[docID] = true
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		delete(q.processing, docID)
		q.mu.Unlock()
	}()

	q.logger.Info("ingest starting", "doc_id", docID, "user_id", job.Ctx.UserID, "filename", job.Ctx.OriginalFilename)

	report := Run(goCtx, job.Ctx, job.Deps)

	switch report.Status {
	case pl.StatusSuccess:
		q.logger.Info("ingest completed", "doc_id", docID, "user_id", job.Ctx.UserID, "completed_steps", report.Completed)
	case pl.StatusFailed:
		q.logger.Error("ingest failed", "doc_id", docID, "user_id", job.Ctx.UserID, "failed_steps", report.Failed, "error", firstError(report))
	case pl.StatusCancelled:
		q.logger.Warn("ingest cancelled", "doc_id", docID, "user_id", job.Ctx.UserID, "error", report.Err)
	}
}

func firstError(report *pl.ExecutionReport) error {
	for _, name := range report.Steps {
		if r, ok := report.Results[name]; ok && r.Err != nil {
			return r.Err
		}
	}
	return fmt.Errorf("unknown failure")
}
