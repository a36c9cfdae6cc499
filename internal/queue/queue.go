// Package queue implements the bounded FIFO job queue and fixed-size worker
// pool: backpressure on submission, graceful shutdown, and a strict
// one-worker-owns-one-job execution model.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/reelmark/reelmark/internal/bus"
	"github.com/reelmark/reelmark/internal/job"
)

var timeNow = time.Now

// ErrQueueFull is returned by Submit when the bounded queue has no free
// slot. Submit has no blocking mode: it never waits for a slot to free up.
var ErrQueueFull = errors.New("queue_full")

// ErrShuttingDown is returned by Submit once Shutdown has been called.
var ErrShuttingDown = errors.New("shutdown")

// ErrNotFound is returned by Cancel for an unknown job id.
var ErrNotFound = errors.New("not_found")

// ErrNotCancellable is returned by Cancel for a job that has already left
// the queued state; a processing job is not cancellable.
var ErrNotCancellable = errors.New("not_cancellable")

// Handler executes one job to completion, reporting progress through
// progressFn (which forwards to the progress bus) and returning a result
// reference on success or a structured job.Error on failure.
type Handler func(ctx context.Context, j *job.Job, progressFn func(progress int, message string)) (resultRef string, jobErr *job.Error)

// Queue is a bounded FIFO of pending jobs served by a fixed worker pool.
type Queue struct {
	capacity int
	pending  chan *job.Job
	table    *job.Table
	bus      *bus.Bus
	handle   Handler

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	mu           sync.Mutex
	shuttingDown bool
	cancelled    map[string]bool
	submitCtx    map[string]context.Context
}

// New creates a Queue with the given capacity and worker count and starts
// the worker pool. handle is invoked once per dequeued job.
func New(capacity, workers int, table *job.Table, progressBus *bus.Bus, handle Handler) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	q := &Queue{
		capacity:  capacity,
		pending:   make(chan *job.Job, capacity),
		table:     table,
		bus:       progressBus,
		handle:    handle,
		ctx:       ctx,
		cancel:    cancel,
		group:     g,
		cancelled: make(map[string]bool),
		submitCtx: make(map[string]context.Context),
	}

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			q.runWorker(gctx)
			return nil
		})
	}

	return q
}

// Submit enqueues a job. ctx is the caller's context (the CLI's
// signal-driven context, an HTTP request context, and so on): it is merged
// into the worker-pool context that the handler observes while the job
// runs, so cancelling ctx aborts the job at its next frame boundary exactly
// like a pool Shutdown does. A nil ctx is treated as context.Background().
// Submit fails fast with ErrQueueFull when the queue has no free slot (it
// never blocks waiting for one) or ErrShuttingDown once Shutdown has begun.
func (q *Queue) Submit(ctx context.Context, j *job.Job) error {
	if ctx == nil {
		ctx = context.Background()
	}
	q.table.Put(j)

	// The send happens under q.mu so Shutdown cannot close the channel
	// between the shuttingDown check and the send.
	q.mu.Lock()
	if q.shuttingDown {
		q.mu.Unlock()
		q.table.Delete(j.ID)
		return ErrShuttingDown
	}
	select {
	case q.pending <- j:
		q.submitCtx[j.ID] = ctx
		q.mu.Unlock()
		return nil
	default:
		q.mu.Unlock()
		q.table.Delete(j.ID)
		return ErrQueueFull
	}
}

// Cancel removes a queued (not yet dequeued) job by id. Returns ErrNotFound
// for an unknown id and ErrNotCancellable for a job that has already been
// picked up by a worker.
func (q *Queue) Cancel(id string) error {
	snap, ok := q.table.Snapshot(id)
	if !ok {
		return ErrNotFound
	}
	if snap.Status != job.StatusQueued {
		return ErrNotCancellable
	}
	q.mu.Lock()
	q.cancelled[id] = true
	q.mu.Unlock()
	return nil
}

func (q *Queue) wasCancelled(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cancelled[id]
}

func (q *Queue) runWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-q.pending:
			if !ok {
				return
			}
			if q.wasCancelled(j.ID) {
				q.table.Delete(j.ID)
				q.mu.Lock()
				delete(q.submitCtx, j.ID)
				q.mu.Unlock()
				continue
			}
			q.process(ctx, j)
		}
	}
}

func (q *Queue) process(ctx context.Context, j *job.Job) {
	if !j.Start() {
		return
	}
	q.bus.Publish(bus.Event{JobID: j.ID, Status: j.Status, Progress: j.Progress, Message: j.Message, Timestamp: timeNow()})

	progressFn := func(progress int, message string) {
		j.SetProgress(progress, message)
		q.bus.Publish(bus.Event{JobID: j.ID, Status: j.Status, Progress: j.Progress, Message: j.Message, Timestamp: timeNow()})
	}

	if ctx.Err() != nil {
		j.Fail("shutdown", "worker pool is shutting down")
		q.bus.Publish(bus.Event{JobID: j.ID, Status: j.Status, Progress: j.Progress, Message: j.Message, Timestamp: timeNow()})
		return
	}

	jobCtx, stop := q.jobContext(ctx, j.ID)
	defer stop()

	resultRef, jobErr := q.handle(jobCtx, j, progressFn)
	if jobErr != nil {
		j.Fail(jobErr.Kind, jobErr.Message)
	} else {
		j.Complete(resultRef)
	}
	q.bus.Publish(bus.Event{JobID: j.ID, Status: j.Status, Progress: j.Progress, Message: j.Message, Timestamp: timeNow()})
}

// jobContext merges the worker-pool context (cancelled by Shutdown) with the
// caller's own submission context (cancelled by, e.g., a CLI Ctrl-C) into a
// single context the handler observes. Either side cancelling aborts the
// job at its next frame boundary. The returned stop func must be called
// once the job is done to release the watcher and the submitCtx entry.
func (q *Queue) jobContext(poolCtx context.Context, jobID string) (context.Context, func()) {
	q.mu.Lock()
	callerCtx := q.submitCtx[jobID]
	delete(q.submitCtx, jobID)
	q.mu.Unlock()

	if callerCtx == nil {
		return poolCtx, func() {}
	}

	merged, cancel := context.WithCancel(poolCtx)
	stopWatch := context.AfterFunc(callerCtx, cancel)
	return merged, func() {
		stopWatch()
		cancel()
	}
}

// Shutdown stops accepting new jobs, lets in-flight workers finish or abort
// at the next frame boundary, flushes the progress bus, and returns once
// every worker has exited. Safe to call more than once. Cancellation
// happens before the channel close so a worker sees it before picking up
// its next queued job rather than after the backlog has drained.
func (q *Queue) Shutdown() {
	q.mu.Lock()
	if q.shuttingDown {
		q.mu.Unlock()
		_ = q.group.Wait()
		return
	}
	q.shuttingDown = true
	q.mu.Unlock()

	q.cancel()

	q.mu.Lock()
	close(q.pending)
	q.mu.Unlock()

	_ = q.group.Wait()
	q.bus.Shutdown()
}

// Len returns the number of jobs currently waiting in the queue.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Capacity returns the queue's configured bound Q_max.
func (q *Queue) Capacity() int {
	return q.capacity
}
