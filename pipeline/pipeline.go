// Package pipeline runs a declared, ordered list of Steps over a shared
// Context and reports the outcome of each. It is the generic engine behind
// the document ingest pipeline (convert, chunk, embed, persist), but knows
// nothing about documents, chunks, or embeddings itself — those live in
// the ingest package's Step implementations.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aqua777/vaultrag/internal/kinds"
)

// Status is the lifecycle state of a pipeline run or an individual step.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSuccess   Status = "success"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// StepResult records the outcome of one step's execution.
type StepResult struct {
	Status   Status
	Message  string
	Err      error
	Duration time.Duration
}

// Context is the mutable state threaded through a pipeline run. Steps may
// only add or overwrite entries in Metadata and Results for their own
// name; the engine never lets two steps run concurrently within a single
// run, so no internal locking is needed here.
type Context struct {
	Metadata map[string]any
	Results  map[string]StepResult
}

// NewContext returns an empty Context ready for a pipeline run.
func NewContext() *Context {
	return &Context{
		Metadata: make(map[string]any),
		Results:  make(map[string]StepResult),
	}
}

// Step is the capability set every pipeline stage implements: a name, a
// retry budget, a skip guard, the work itself, and a retry decision. This
// is modeled as an interface with one concrete type per stage rather than
// a base class with overridable hooks.
type Step interface {
	// Name identifies the step in ExecutionReport and logs.
	Name() string
	// MaxRetries is the non-negative retry budget for this step.
	MaxRetries() int
	// ShouldSkip inspects ctx and reports whether this step should be
	// skipped entirely (e.g. the work it would do was already done).
	ShouldSkip(ctx *Context) (bool, string)
	// Execute performs the step's work, mutating ctx as needed.
	Execute(goCtx context.Context, ctx *Context) error
	// ShouldRetry decides whether another attempt should be made after
	// err on the given attempt number (0-indexed). The default policy
	// used by DefaultShouldRetry is attempt < MaxRetries().
	ShouldRetry(attempt int, err error) bool
}

// DefaultShouldRetry implements the engine's default retry decision:
// attempt < maxRetries. Step implementations that don't need a custom
// policy can delegate to this from their ShouldRetry method.
func DefaultShouldRetry(attempt, maxRetries int) bool {
	return attempt < maxRetries
}

// ExecutionReport is the result of one Engine.Execute call.
type ExecutionReport struct {
	PipelineName string
	Status       Status
	Steps        []string
	Results      map[string]StepResult
	StartedAt    time.Time
	EndedAt      time.Time
	Completed    int
	Failed       int
	// Err carries kinds.TimedOut or kinds.Cancelled when Status is
	// StatusCancelled, distinguishing the engine's own soft timeout
	// from an externally cancelled goCtx.
	Err error
}

// cancellationCause classifies why goCtx.Done() fired: the engine's own
// soft timeout (spec's per-pipeline timeout, terminating the run with
// TimedOut) or an external cancellation.
func cancellationCause(goCtx context.Context) error {
	if errors.Is(goCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("pipeline: soft timeout exceeded: %w", kinds.TimedOut)
	}
	return fmt.Errorf("pipeline: run cancelled: %w", kinds.Cancelled)
}

// Engine runs an ordered list of Steps over a Context, honoring retries,
// skip predicates, cancellation, and a soft per-run timeout.
type Engine struct {
	// Name labels the run in the ExecutionReport.
	Name string
	// Timeout bounds the whole run; zero means no engine-imposed timeout.
	Timeout time.Duration
	// Sleep is the backoff sleep function, overridable in tests.
	Sleep func(time.Duration)

	mu sync.Mutex
}

// NewEngine constructs an Engine with the given name and soft timeout.
func NewEngine(name string, timeout time.Duration) *Engine {
	return &Engine{
		Name:    name,
		Timeout: timeout,
		Sleep:   time.Sleep,
	}
}

// Execute runs steps in order over ctx, honoring each step's skip
// predicate and retry policy. The first unretried step failure (or
// cancellation) terminates the run; remaining steps stay Pending.
func (e *Engine) Execute(goCtx context.Context, ctx *Context, steps []Step) *ExecutionReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		goCtx, cancel = context.WithTimeout(goCtx, e.Timeout)
		defer cancel()
	}

	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name()
	}

	report := &ExecutionReport{
		PipelineName: e.Name,
		Status:       StatusRunning,
		Steps:        names,
		Results:      ctx.Results,
		StartedAt:    nowOrZero(),
	}

	for _, step := range steps {
		select {
		case <-goCtx.Done():
			report.Status = StatusCancelled
			report.Err = cancellationCause(goCtx)
			report.EndedAt = nowOrZero()
			return report
		default:
		}

		if skip, msg := step.ShouldSkip(ctx); skip {
			result := StepResult{Status: StatusSkipped, Message: msg}
			ctx.Results[step.Name()] = result
			continue
		}

		result := e.runStep(goCtx, ctx, step)
		ctx.Results[step.Name()] = result

		switch result.Status {
		case StatusSuccess:
			report.Completed++
		case StatusFailed:
			report.Failed++
			report.Status = StatusFailed
			report.EndedAt = nowOrZero()
			return report
		case StatusCancelled:
			report.Status = StatusCancelled
			report.Err = result.Err
			report.EndedAt = nowOrZero()
			return report
		}
	}

	report.Status = StatusSuccess
	report.EndedAt = nowOrZero()
	return report
}

// runStep executes a single step with its retry policy, summing wall
// clock across all attempts including backoff sleeps.
func (e *Engine) runStep(goCtx context.Context, ctx *Context, step Step) StepResult {
	started := nowOrZero()
	attempt := 0

	for {
		select {
		case <-goCtx.Done():
			return StepResult{
				Status:   StatusCancelled,
				Message:  fmt.Sprintf("%s: cancelled", step.Name()),
				Err:      cancellationCause(goCtx),
				Duration: since(started),
			}
		default:
		}

		err := step.Execute(goCtx, ctx)
		if err == nil {
			return StepResult{
				Status:   StatusSuccess,
				Message:  fmt.Sprintf("%s: success", step.Name()),
				Duration: since(started),
			}
		}

		if !step.ShouldRetry(attempt, err) {
			return StepResult{
				Status:   StatusFailed,
				Message:  fmt.Sprintf("%s: failed after %d attempt(s)", step.Name(), attempt+1),
				Err:      err,
				Duration: since(started),
			}
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		e.Sleep(backoff)
		attempt++
	}
}

func nowOrZero() time.Time {
	return time.Now()
}

func since(t time.Time) time.Duration {
	return time.Since(t)
}
