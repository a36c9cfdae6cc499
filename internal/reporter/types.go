// Package reporter defines the push-style event sink that the job queue
// worker and the CLI orchestrator report through. The progress bus serves
// external subscribers; Reporter is the local, synchronous sibling used by
// the CLI and library callers.
package reporter

import "time"

// Reporter receives every observable event of a watermark embed/extract run.
// Implementations must not block the caller for long; TerminalReporter and
// LogReporter are both effectively non-blocking.
type Reporter interface {
	Hardware(HardwareSummary)
	JobSubmitted(JobSubmittedSummary)
	StageProgress(StageProgress)
	CapacityReport(CapacitySummary)
	WatermarkConfig(WatermarkConfigSummary)
	ProcessingStarted(totalFrames uint64)
	ProcessingProgress(ProgressSnapshot)
	ValidationComplete(ValidationSummary)
	JobComplete(JobOutcome)
	Warning(string)
	Error(ReporterError)
	OperationComplete(string)
	BatchStarted(BatchStartInfo)
	FileProgress(FileProgressContext)
	BatchComplete(BatchSummary)
	Verbose(string)
}

// HardwareSummary describes the host the worker pool is running on.
type HardwareSummary struct {
	Hostname string
	Cores    int
	Workers  int
}

// JobSubmittedSummary is emitted once a job is accepted and about to start
// processing.
type JobSubmittedSummary struct {
	JobID      string
	Kind       string // "embed" or "extract"
	InputFile  string
	OutputFile string
}

// StageProgress reports a coarse-grained stage transition ("validating",
// "probing", "encoding", ...) with a human-readable message.
type StageProgress struct {
	Stage   string
	Message string
}

// CapacitySummary reports the block capacity available for an embed job,
// emitted once the job starts processing and before its first frame is read.
type CapacitySummary struct {
	Carriers        []string
	BlocksAvailable int
	RequiredBlocks  int
	MaxPayloadBytes int
	Sufficient      bool
}

// WatermarkConfigSummary reports the codec parameters in effect for a job.
type WatermarkConfigSummary struct {
	Strength    float32
	Redundancy  int
	CoeffRow    int
	CoeffCol    int
	Carrier     string
	UseSentinel bool
}

// ProgressSnapshot reports fractional completion of frame iteration.
type ProgressSnapshot struct {
	Percent     float32
	FPS         float32
	ETA         time.Duration
	FramesDone  int
	FramesTotal int
}

// ValidationSummary is the reporter-facing mirror of validation.Report.
type ValidationSummary struct {
	Passed bool
	Steps  []ValidationStep
}

// ValidationStep represents a single validation check.
type ValidationStep struct {
	Name    string
	Passed  bool
	Details string
}

// JobOutcome reports a completed job's result, embed or extract.
type JobOutcome struct {
	JobID        string
	Kind         string
	InputFile    string
	OutputFile   string
	OriginalSize uint64
	OutputSize   uint64
	Payload      string // extract only
	Confidence   string // extract only: high|medium|low
	Agreement    float64
	TotalTime    time.Duration
}

// ReporterError contains structured error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// BatchStartInfo contains batch start metadata.
type BatchStartInfo struct {
	TotalFiles int
	FileList   []string
	OutputDir  string
}

// FileProgressContext contains current file index within a batch.
type FileProgressContext struct {
	CurrentFile int
	TotalFiles  int
}

// FileResult contains a per-file outcome summary within a batch.
type FileResult struct {
	Filename string
	Outcome  string
}

// BatchSummary contains batch completion information.
type BatchSummary struct {
	SuccessfulCount       int
	TotalFiles            int
	FileResults           []FileResult
	TotalDuration         time.Duration
	ValidationPassedCount int
	ValidationFailedCount int
}

// NullReporter discards every event.
type NullReporter struct{}

func (NullReporter) Hardware(HardwareSummary)             {}
func (NullReporter) JobSubmitted(JobSubmittedSummary)     {}
func (NullReporter) StageProgress(StageProgress)          {}
func (NullReporter) CapacityReport(CapacitySummary)       {}
func (NullReporter) WatermarkConfig(WatermarkConfigSummary) {}
func (NullReporter) ProcessingStarted(uint64)             {}
func (NullReporter) ProcessingProgress(ProgressSnapshot)  {}
func (NullReporter) ValidationComplete(ValidationSummary) {}
func (NullReporter) JobComplete(JobOutcome)               {}
func (NullReporter) Warning(string)                       {}
func (NullReporter) Error(ReporterError)                  {}
func (NullReporter) OperationComplete(string)             {}
func (NullReporter) BatchStarted(BatchStartInfo)          {}
func (NullReporter) FileProgress(FileProgressContext)     {}
func (NullReporter) BatchComplete(BatchSummary)           {}
func (NullReporter) Verbose(string)                       {}

// CompositeReporter fans every event out to a fixed list of reporters, in
// order.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a Reporter that forwards to every given
// reporter in order.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	return &CompositeReporter{reporters: reporters}
}

func (c *CompositeReporter) each(f func(Reporter)) {
	for _, r := range c.reporters {
		f(r)
	}
}

func (c *CompositeReporter) Hardware(s HardwareSummary)         { c.each(func(r Reporter) { r.Hardware(s) }) }
func (c *CompositeReporter) JobSubmitted(s JobSubmittedSummary) {
	c.each(func(r Reporter) { r.JobSubmitted(s) })
}
func (c *CompositeReporter) StageProgress(s StageProgress) {
	c.each(func(r Reporter) { r.StageProgress(s) })
}
func (c *CompositeReporter) CapacityReport(s CapacitySummary) {
	c.each(func(r Reporter) { r.CapacityReport(s) })
}
func (c *CompositeReporter) WatermarkConfig(s WatermarkConfigSummary) {
	c.each(func(r Reporter) { r.WatermarkConfig(s) })
}
func (c *CompositeReporter) ProcessingStarted(total uint64) {
	c.each(func(r Reporter) { r.ProcessingStarted(total) })
}
func (c *CompositeReporter) ProcessingProgress(s ProgressSnapshot) {
	c.each(func(r Reporter) { r.ProcessingProgress(s) })
}
func (c *CompositeReporter) ValidationComplete(s ValidationSummary) {
	c.each(func(r Reporter) { r.ValidationComplete(s) })
}
func (c *CompositeReporter) JobComplete(s JobOutcome) { c.each(func(r Reporter) { r.JobComplete(s) }) }
func (c *CompositeReporter) Warning(msg string)       { c.each(func(r Reporter) { r.Warning(msg) }) }
func (c *CompositeReporter) Error(e ReporterError)    { c.each(func(r Reporter) { r.Error(e) }) }
func (c *CompositeReporter) OperationComplete(msg string) {
	c.each(func(r Reporter) { r.OperationComplete(msg) })
}
func (c *CompositeReporter) BatchStarted(s BatchStartInfo) {
	c.each(func(r Reporter) { r.BatchStarted(s) })
}
func (c *CompositeReporter) FileProgress(s FileProgressContext) {
	c.each(func(r Reporter) { r.FileProgress(s) })
}
func (c *CompositeReporter) BatchComplete(s BatchSummary) {
	c.each(func(r Reporter) { r.BatchComplete(s) })
}
func (c *CompositeReporter) Verbose(msg string) { c.each(func(r Reporter) { r.Verbose(msg) }) }
