package job

import (
	"testing"
	"time"
)

func withFixedClock(t *testing.T, at time.Time) {
	t.Helper()
	orig := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = orig })
}

func TestLifecycleHappyPath(t *testing.T) {
	withFixedClock(t, time.Unix(1000, 0))

	j := New("job-1", KindEmbed, "in.mp4", Params{Payload: "hi"})
	if j.Status != StatusQueued {
		t.Fatalf("new job status = %s, want %s", j.Status, StatusQueued)
	}

	if !j.Start() {
		t.Fatal("Start() on queued job returned false")
	}
	if j.Status != StatusProcessing {
		t.Fatalf("status after Start = %s, want %s", j.Status, StatusProcessing)
	}

	j.SetProgress(50, "halfway")
	if j.Progress != 50 || j.Message != "halfway" {
		t.Fatalf("progress/message = %d/%q, want 50/halfway", j.Progress, j.Message)
	}

	if !j.Complete("out.mp4") {
		t.Fatal("Complete() on processing job returned false")
	}
	if j.Status != StatusCompleted || j.Progress != 100 || j.ResultRef != "out.mp4" {
		t.Fatalf("unexpected terminal state: %+v", j)
	}
	if j.FinishedAt == nil {
		t.Fatal("FinishedAt not set on completion")
	}
}

func TestStartTwiceFails(t *testing.T) {
	j := New("job-1", KindEmbed, "in.mp4", Params{})
	if !j.Start() {
		t.Fatal("first Start() should succeed")
	}
	if j.Start() {
		t.Fatal("second Start() on an already-processing job should fail")
	}
}

func TestProgressMonotonic(t *testing.T) {
	j := New("job-1", KindEmbed, "in.mp4", Params{})
	j.Start()
	j.SetProgress(40, "")
	j.SetProgress(10, "") // lower value must be ignored
	if j.Progress != 40 {
		t.Errorf("progress regressed: got %d, want 40", j.Progress)
	}
}

func TestSetProgressIgnoredBeforeStart(t *testing.T) {
	j := New("job-1", KindEmbed, "in.mp4", Params{})
	j.SetProgress(50, "too early")
	if j.Progress != 0 {
		t.Errorf("progress = %d before Start(), want 0", j.Progress)
	}
}

func TestFailTransition(t *testing.T) {
	j := New("job-1", KindExtract, "in.mp4", Params{})
	j.Start()
	if !j.Fail("decoder_error", "bad container") {
		t.Fatal("Fail() on processing job returned false")
	}
	if j.Status != StatusError {
		t.Fatalf("status = %s, want %s", j.Status, StatusError)
	}
	if j.Err == nil || j.Err.Kind != "decoder_error" {
		t.Fatalf("Err = %+v, want kind decoder_error", j.Err)
	}
}

func TestCompleteOnQueuedJobFails(t *testing.T) {
	j := New("job-1", KindEmbed, "in.mp4", Params{})
	if j.Complete("x") {
		t.Fatal("Complete() on a queued (never started) job should fail")
	}
}

func TestSnapshotIsClone(t *testing.T) {
	j := New("job-1", KindEmbed, "in.mp4", Params{})
	j.Start()
	j.SetProgress(20, "going")

	snap := j.Snapshot()
	j.SetProgress(80, "later")

	if snap.Progress != 20 {
		t.Errorf("snapshot.Progress = %d, want 20 (should not see later mutation)", snap.Progress)
	}
}
