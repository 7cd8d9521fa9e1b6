// Package queue serializes build requests through a single worker. Requests
// arriving while a build runs are coalesced into one follow-up build.
package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sandroweb/html-template-project/internal/logfields"
	"github.com/sandroweb/html-template-project/internal/retry"
	"github.com/sandroweb/html-template-project/internal/tasks"
)

// Builder executes one plan.
type Builder interface {
	Run(ctx context.Context, plan tasks.Plan) (*tasks.Report, error)
}

// Result is the outcome of the most recent build.
type Result struct {
	Report *tasks.Report
	Err    error
}

// BuildQueue runs at most one build at a time and holds at most one pending
// plan. Enqueuing while a plan is pending merges the two.
type BuildQueue struct {
	builder Builder
	logger  *slog.Logger
	policy  retry.Policy

	mu      sync.Mutex
	pending *tasks.Plan
	running bool
	last    *Result
	onDone  func(Result)

	wake     chan struct{}
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Option configures a BuildQueue.
type Option func(*BuildQueue)

// WithLogger sets the queue's logger.
func WithLogger(l *slog.Logger) Option {
	return func(q *BuildQueue) { q.logger = l }
}

// WithRetry retries builds whose error is classified as transient.
func WithRetry(p retry.Policy) Option {
	return func(q *BuildQueue) { q.policy = p }
}

// OnComplete registers a callback invoked by the worker after every build.
func OnComplete(fn func(Result)) Option {
	return func(q *BuildQueue) { q.onDone = fn }
}

// New creates a queue over builder.
func New(builder Builder, opts ...Option) *BuildQueue {
	if builder == nil {
		panic("queue.New: builder is required")
	}
	q := &BuildQueue{
		builder: builder,
		logger:  slog.Default(),
		policy:  retry.Disabled(),
		wake:    make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

// Start launches the worker. It stops when ctx is done or Stop is called.
func (q *BuildQueue) Start(ctx context.Context) {
	ctx, q.cancel = context.WithCancel(ctx)
	q.wg.Add(1)
	go q.worker(ctx)
}

// Stop cancels the running build, if any, and waits for the worker.
func (q *BuildQueue) Stop() {
	q.stopOnce.Do(func() {
		if q.cancel != nil {
			q.cancel()
		}
	})
	q.wg.Wait()
}

// Enqueue schedules plan. Empty plans are ignored.
func (q *BuildQueue) Enqueue(plan tasks.Plan) {
	if plan.Empty() {
		return
	}
	q.mu.Lock()
	if q.pending == nil {
		q.pending = &plan
	} else {
		merged := q.pending.Merge(plan)
		q.pending = &merged
	}
	running := q.running
	q.mu.Unlock()

	if running {
		q.logger.Debug("Build running, request queued as follow-up")
	}
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Running reports whether a build is executing.
func (q *BuildQueue) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// Pending returns the plan waiting for the worker.
func (q *BuildQueue) Pending() (tasks.Plan, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == nil {
		return tasks.Plan{}, false
	}
	return *q.pending, true
}

// Last returns the result of the most recent completed build.
func (q *BuildQueue) Last() (Result, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.last == nil {
		return Result{}, false
	}
	return *q.last, true
}

func (q *BuildQueue) worker(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		}
		for {
			plan, ok := q.take()
			if !ok {
				break
			}
			report, err := q.run(ctx, plan)
			if err != nil {
				q.logger.Warn("Queued build failed", logfields.Error(err))
			}
			q.complete(Result{Report: report, Err: err})
			if ctx.Err() != nil {
				return
			}
		}
	}
}

// run executes plan, retrying transient failures per the policy. A retry is
// abandoned when a newer request is pending; that request runs next anyway.
func (q *BuildQueue) run(ctx context.Context, plan tasks.Plan) (*tasks.Report, error) {
	report, err := q.builder.Run(ctx, plan)
	for attempt := 1; err != nil && attempt <= q.policy.MaxRetries; attempt++ {
		if !retry.Retryable(err) || ctx.Err() != nil || q.hasPending() {
			break
		}
		delay := q.policy.Delay(attempt)
		q.logger.Warn("Transient build failure, retrying",
			logfields.Error(err),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay))
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return report, err
		case <-t.C:
		}
		report, err = q.builder.Run(ctx, plan)
	}
	return report, err
}

func (q *BuildQueue) hasPending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending != nil
}

func (q *BuildQueue) take() (tasks.Plan, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == nil {
		q.running = false
		return tasks.Plan{}, false
	}
	plan := *q.pending
	q.pending = nil
	q.running = true
	return plan, true
}

func (q *BuildQueue) complete(r Result) {
	q.mu.Lock()
	q.last = &r
	fn := q.onDone
	q.mu.Unlock()
	if fn != nil {
		fn(r)
	}
}
