// Package job implements the per-video job state machine:
// queued -> processing -> {completed, error}, with monotonic progress and
// no concurrent mutation outside the owning worker.
package job

import (
	"sync"
	"time"
)

// Kind distinguishes an embed job from an extract job.
type Kind string

const (
	KindEmbed   Kind = "embed"
	KindExtract Kind = "extract"
)

// Status is a Job's lifecycle state.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Params bundles the caller-supplied parameters for one job, applicable
// fields depending on Kind.
type Params struct {
	InputPath    string
	Payload      string  // embed only
	Strength     float32 // embed only
	ExpectedBits int     // extract only; 0 means "use sentinel"
	Carriers     []string
	Redundancy   int
}

// Job is one embed or extract unit of work with its lifecycle state.
// A Job is created on submission and thereafter mutated only by the queue
// (on dequeue) and by its owning worker; it is never mutated concurrently.
// The mutex exists for status-query readers, who call Snapshot while the
// owning worker is writing.
type Job struct {
	mu sync.Mutex

	ID         string
	Kind       Kind
	Input      string
	Params     Params
	Status     Status
	Progress   int // 0..100
	Message    string
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
	ResultRef  string // set iff Status == StatusCompleted
	Err        *Error
}

// Error is a structured failure reason: a stable kind tag plus a
// human-readable message.
type Error struct {
	Kind    string
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Kind + ": " + e.Message
}

// New creates a Job in the queued state.
func New(id string, kind Kind, input string, params Params) *Job {
	return &Job{
		ID:        id,
		Kind:      kind,
		Input:     input,
		Params:    params,
		Status:    StatusQueued,
		CreatedAt: now(),
	}
}

// Start transitions a queued Job to processing. Returns false if the Job was
// not in the queued state.
func (j *Job) Start() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != StatusQueued {
		return false
	}
	t := now()
	j.Status = StatusProcessing
	j.StartedAt = &t
	j.Progress = 0
	return true
}

// SetProgress updates progress and message while processing. Progress is
// non-decreasing; a lower value is ignored.
func (j *Job) SetProgress(progress int, message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != StatusProcessing {
		return
	}
	if progress > j.Progress {
		j.Progress = progress
	}
	if message != "" {
		j.Message = message
	}
}

// Complete transitions a processing Job to completed with the given result
// reference. Returns false if the Job was not processing.
func (j *Job) Complete(resultRef string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != StatusProcessing {
		return false
	}
	t := now()
	j.Status = StatusCompleted
	j.Progress = 100
	j.ResultRef = resultRef
	j.FinishedAt = &t
	return true
}

// Fail transitions a processing Job to error with a structured reason.
// Returns false if the Job was not processing.
func (j *Job) Fail(kind, message string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != StatusProcessing {
		return false
	}
	t := now()
	j.Status = StatusError
	j.Err = &Error{Kind: kind, Message: message}
	j.Message = message
	j.FinishedAt = &t
	return true
}

// Snapshot is an immutable copy of a Job's observable state, safe to hand to
// a status-query caller without holding the job table lock.
type Snapshot struct {
	ID         string
	Kind       Kind
	Status     Status
	Progress   int
	Message    string
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
	ResultRef  string
	Err        *Error
}

// Snapshot clones j's current state.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Snapshot{
		ID:         j.ID,
		Kind:       j.Kind,
		Status:     j.Status,
		Progress:   j.Progress,
		Message:    j.Message,
		CreatedAt:  j.CreatedAt,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
		ResultRef:  j.ResultRef,
		Err:        j.Err,
	}
}

var now = time.Now
