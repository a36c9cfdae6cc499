package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/reelmark/reelmark/internal/bus"
	"github.com/reelmark/reelmark/internal/job"
)

func blockingHandler(release <-chan struct{}) Handler {
	return func(ctx context.Context, j *job.Job, progressFn func(int, string)) (string, *job.Error) {
		<-release
		return "out.mp4", nil
	}
}

func immediateHandler(resultRef string, jobErr *job.Error) Handler {
	return func(ctx context.Context, j *job.Job, progressFn func(int, string)) (string, *job.Error) {
		progressFn(50, "working")
		return resultRef, jobErr
	}
}

func TestSubmitAndCompleteSuccess(t *testing.T) {
	table := job.NewTable()
	b := bus.New()
	q := New(1, 1, table, b, immediateHandler("out.mp4", nil))
	defer q.Shutdown()

	j := job.New("job-1", job.KindEmbed, "in.mp4", job.Params{})
	if err := q.Submit(context.Background(), j); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		snap, ok := table.Snapshot("job-1")
		if ok && (snap.Status == job.StatusCompleted || snap.Status == job.StatusError) {
			if snap.Status != job.StatusCompleted || snap.ResultRef != "out.mp4" {
				t.Fatalf("unexpected terminal snapshot: %+v", snap)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("job never completed")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSubmitQueueFull(t *testing.T) {
	table := job.NewTable()
	b := bus.New()
	release := make(chan struct{})
	q := New(1, 1, table, b, blockingHandler(release))
	defer func() {
		close(release)
		q.Shutdown()
	}()

	// first job occupies the single worker; second fills the one queue slot.
	if err := q.Submit(context.Background(), job.New("job-1", job.KindEmbed, "in.mp4", job.Params{})); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	// give the worker a moment to dequeue job-1 so the channel slot frees up
	time.Sleep(20 * time.Millisecond)

	if err := q.Submit(context.Background(), job.New("job-2", job.KindEmbed, "in.mp4", job.Params{})); err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if err := q.Submit(context.Background(), job.New("job-3", job.KindEmbed, "in.mp4", job.Params{})); err != ErrQueueFull {
		t.Fatalf("third Submit error = %v, want ErrQueueFull", err)
	}
}

func TestCancelQueuedJob(t *testing.T) {
	table := job.NewTable()
	b := bus.New()
	release := make(chan struct{})
	q := New(1, 1, table, b, blockingHandler(release))
	defer q.Shutdown()

	q.Submit(context.Background(), job.New("job-1", job.KindEmbed, "in.mp4", job.Params{})) // occupies the worker
	time.Sleep(20 * time.Millisecond)
	q.Submit(context.Background(), job.New("job-2", job.KindEmbed, "in.mp4", job.Params{})) // sits in the queue

	if err := q.Cancel("job-2"); err != nil {
		t.Fatalf("Cancel on a still-queued job should succeed, got %v", err)
	}

	close(release)
	time.Sleep(50 * time.Millisecond)

	if _, ok := table.Get("job-2"); ok {
		t.Fatal("cancelled job should have been removed from the table")
	}
}

func TestCancelProcessingJobFails(t *testing.T) {
	table := job.NewTable()
	b := bus.New()
	release := make(chan struct{})
	q := New(1, 1, table, b, blockingHandler(release))
	defer func() {
		close(release)
		q.Shutdown()
	}()

	q.Submit(context.Background(), job.New("job-1", job.KindEmbed, "in.mp4", job.Params{}))
	time.Sleep(20 * time.Millisecond) // worker has dequeued and started it

	if err := q.Cancel("job-1"); err != ErrNotCancellable {
		t.Fatalf("Cancel on an already-processing job = %v, want ErrNotCancellable", err)
	}
	if err := q.Cancel("job-unknown"); err != ErrNotFound {
		t.Fatalf("Cancel on an unknown id = %v, want ErrNotFound", err)
	}
}

func TestShutdownWaitsForInFlightWorkers(t *testing.T) {
	table := job.NewTable()
	b := bus.New()
	release := make(chan struct{})
	q := New(1, 1, table, b, blockingHandler(release))

	q.Submit(context.Background(), job.New("job-1", job.KindEmbed, "in.mp4", job.Params{}))
	time.Sleep(20 * time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(1)
	done := make(chan struct{})
	go func() {
		defer wg.Done()
		q.Shutdown()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Shutdown returned before the in-flight handler released")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	wg.Wait()
}

func TestSubmitCtxCancellationAbortsJob(t *testing.T) {
	table := job.NewTable()
	b := bus.New()
	started := make(chan struct{})
	handler := func(ctx context.Context, j *job.Job, progressFn func(int, string)) (string, *job.Error) {
		close(started)
		<-ctx.Done()
		return "", &job.Error{Kind: "shutdown", Message: ctx.Err().Error()}
	}
	q := New(1, 1, table, b, handler)
	defer q.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	if err := q.Submit(ctx, job.New("job-1", job.KindEmbed, "in.mp4", job.Params{})); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	<-started
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		snap, ok := table.Snapshot("job-1")
		if ok && snap.Status == job.StatusError {
			return
		}
		select {
		case <-deadline:
			t.Fatal("cancelling the caller's submission context never aborted the job")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSubmitAfterShutdownRejected(t *testing.T) {
	table := job.NewTable()
	b := bus.New()
	q := New(1, 1, table, b, immediateHandler("out.mp4", nil))
	q.Shutdown()

	if err := q.Submit(context.Background(), job.New("job-1", job.KindEmbed, "in.mp4", job.Params{})); err != ErrShuttingDown {
		t.Fatalf("Submit after Shutdown = %v, want ErrShuttingDown", err)
	}
}
