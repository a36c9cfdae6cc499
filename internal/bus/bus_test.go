package bus

import (
	"testing"
	"time"

	"github.com/reelmark/reelmark/internal/job"
)

func TestSubscribeReceivesEvent(t *testing.T) {
	b := New()
	ch, unsubscribe := b.Subscribe("job-1")
	defer unsubscribe()

	b.Publish(Event{JobID: "job-1", Status: job.StatusProcessing, Progress: 10})

	select {
	case e := <-ch:
		if e.Progress != 10 {
			t.Errorf("Progress = %d, want 10", e.Progress)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPublishIgnoresOtherJobs(t *testing.T) {
	b := New()
	ch, unsubscribe := b.Subscribe("job-1")
	defer unsubscribe()

	b.Publish(Event{JobID: "job-2", Status: job.StatusProcessing, Progress: 50})

	select {
	case e := <-ch:
		t.Fatalf("unexpected event for unrelated job: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTerminalEventClosesChannel(t *testing.T) {
	b := New()
	ch, unsubscribe := b.Subscribe("job-1")
	defer unsubscribe()

	b.Publish(Event{JobID: "job-1", Status: job.StatusCompleted, Progress: 100})

	select {
	case e, ok := <-ch:
		if !ok {
			t.Fatal("channel closed before delivering the terminal event")
		}
		if e.Status != job.StatusCompleted {
			t.Errorf("Status = %s, want completed", e.Status)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for terminal event")
	}

	// channel should now be closed (or about to be), draining returns zero Event.
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected channel to be closed after terminal delivery")
		}
	case <-time.After(time.Second):
		t.Fatal("channel never closed after terminal event")
	}
}

func TestLossyIntermediateUpdatesNewestWins(t *testing.T) {
	b := New()
	ch, unsubscribe := b.Subscribe("job-1")
	defer unsubscribe()

	// Publish several intermediate updates without draining; only the
	// latest should be observable once we finally read.
	for p := 1; p <= 5; p++ {
		b.Publish(Event{JobID: "job-1", Status: job.StatusProcessing, Progress: p * 10})
	}

	select {
	case e := <-ch:
		if e.Progress != 50 {
			t.Errorf("Progress = %d, want 50 (newest of the lossy batch)", e.Progress)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	ch, unsubscribe := b.Subscribe("job-1")
	unsubscribe()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected channel closed after unsubscribe")
		}
	case <-time.After(time.Second):
		t.Fatal("channel never closed after unsubscribe")
	}
}

func TestShutdownClosesAllSubscribers(t *testing.T) {
	b := New()
	ch1, _ := b.Subscribe("job-1")
	ch2, _ := b.Subscribe("job-2")

	b.Shutdown()

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case _, ok := <-ch:
			if ok {
				t.Fatal("expected channel closed after Shutdown")
			}
		case <-time.After(time.Second):
			t.Fatal("channel never closed after Shutdown")
		}
	}
}

func TestMultipleSubscribersAllReceiveTerminal(t *testing.T) {
	b := New()
	ch1, unsub1 := b.Subscribe("job-1")
	ch2, unsub2 := b.Subscribe("job-1")
	defer unsub1()
	defer unsub2()

	b.Publish(Event{JobID: "job-1", Status: job.StatusError, Progress: 42})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case e, ok := <-ch:
			if !ok || e.Status != job.StatusError {
				t.Fatalf("subscriber missed terminal event: ok=%v e=%+v", ok, e)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for terminal event")
		}
	}
}
