// Package reelmark provides a Go library for block-DCT video watermarking.
package reelmark

import "time"

// Event type tags for external collaborators that consume JSON events
// instead of the progress bus directly.
const (
	EventTypeHardware           = "hardware"
	EventTypeJobSubmitted       = "job_submitted"
	EventTypeStageProgress      = "stage_progress"
	EventTypeCapacityReport     = "capacity_report"
	EventTypeWatermarkConfig    = "watermark_config"
	EventTypeProcessingStarted  = "processing_started"
	EventTypeProcessingProgress = "processing_progress"
	EventTypeValidationComplete = "validation_complete"
	EventTypeJobComplete        = "job_complete"
	EventTypeOperationComplete  = "operation_complete"
	EventTypeBatchStarted       = "batch_started"
	EventTypeFileProgress       = "file_progress"
	EventTypeBatchComplete      = "batch_complete"
	EventTypeWarning            = "warning"
	EventTypeError              = "error"
)

// Event is the interface for all reelmark events.
type Event interface {
	Type() string
	Timestamp() int64
}

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	EventType string `json:"type"`
	Time      int64  `json:"timestamp"`
}

func (e BaseEvent) Type() string     { return e.EventType }
func (e BaseEvent) Timestamp() int64 { return e.Time }

// ProcessingProgressEvent represents frame-iteration progress.
type ProcessingProgressEvent struct {
	BaseEvent
	JobID       string  `json:"job_id"`
	Percent     float32 `json:"percent"`
	FramesDone  int     `json:"frames_done"`
	FramesTotal int     `json:"frames_total"`
	ETASeconds  int64   `json:"eta_seconds"`
}

// ValidationCompleteEvent represents validation completion.
type ValidationCompleteEvent struct {
	BaseEvent
	ValidationPassed bool             `json:"validation_passed"`
	ValidationSteps  []ValidationStep `json:"validation_steps"`
}

// ValidationStep represents a single validation check.
type ValidationStep struct {
	Step    string `json:"step"`
	Passed  bool   `json:"passed"`
	Details string `json:"details"`
}

// JobCompleteEvent represents a successfully completed embed or extract job.
type JobCompleteEvent struct {
	BaseEvent
	JobID        string  `json:"job_id"`
	Kind         string  `json:"kind"`
	OutputFile   string  `json:"output_file,omitempty"`
	OriginalSize uint64  `json:"original_size,omitempty"`
	OutputSize   uint64  `json:"output_size,omitempty"`
	Payload      string  `json:"payload,omitempty"`
	Confidence   string  `json:"confidence,omitempty"`
	Agreement    float64 `json:"agreement,omitempty"`
}

// WarningEvent represents a warning message.
type WarningEvent struct {
	BaseEvent
	Message string `json:"message"`
}

// ErrorEvent represents an error.
type ErrorEvent struct {
	BaseEvent
	Title      string `json:"title"`
	Message    string `json:"message"`
	Context    string `json:"context"`
	Suggestion string `json:"suggestion"`
}

// BatchCompleteEvent represents batch completion.
type BatchCompleteEvent struct {
	BaseEvent
	SuccessfulCount int `json:"successful_count"`
	TotalFiles      int `json:"total_files"`
}

// EventHandler is called with events during processing.
type EventHandler func(Event) error

// NewTimestamp returns the current Unix timestamp.
func NewTimestamp() int64 {
	return time.Now().Unix()
}
