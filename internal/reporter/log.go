package reporter

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/reelmark/reelmark/internal/util"
)

// LogReporter writes watermark job events to a log file.
type LogReporter struct {
	w                  io.Writer
	mu                 sync.Mutex
	lastProgressBucket int // Track progress in 5% buckets
}

// NewLogReporter creates a new log reporter that writes to the given writer.
func NewLogReporter(w io.Writer) *LogReporter {
	return &LogReporter{
		w:                  w,
		lastProgressBucket: -1,
	}
}

func (r *LogReporter) log(level, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(r.w, "%s [%s] %s\n", timestamp, level, msg)
}

func (r *LogReporter) Hardware(summary HardwareSummary) {
	r.log("INFO", "=== HARDWARE ===")
	r.log("INFO", "Hostname: %s", summary.Hostname)
	r.log("INFO", "Workers: %d (of %d cores)", summary.Workers, summary.Cores)
}

func (r *LogReporter) JobSubmitted(summary JobSubmittedSummary) {
	r.log("INFO", "=== JOB %s ===", summary.JobID)
	r.log("INFO", "Kind: %s", summary.Kind)
	r.log("INFO", "Input: %s", summary.InputFile)
	if summary.OutputFile != "" {
		r.log("INFO", "Output: %s", summary.OutputFile)
	}
}

func (r *LogReporter) StageProgress(update StageProgress) {
	r.log("INFO", "[%s] %s", strings.ToUpper(update.Stage), update.Message)
}

func (r *LogReporter) CapacityReport(summary CapacitySummary) {
	r.log("INFO", "Capacity: %d available, %d required, carriers=%s, sufficient=%v",
		summary.BlocksAvailable, summary.RequiredBlocks, strings.Join(summary.Carriers, "+"), summary.Sufficient)
}

func (r *LogReporter) WatermarkConfig(summary WatermarkConfigSummary) {
	r.log("INFO", "=== WATERMARK CONFIG ===")
	r.log("INFO", "Strength: %.2f", summary.Strength)
	r.log("INFO", "Redundancy: %dx", summary.Redundancy)
	r.log("INFO", "Coefficient: (%d,%d)", summary.CoeffRow, summary.CoeffCol)
	r.log("INFO", "Carrier: %s", summary.Carrier)
	r.log("INFO", "Sentinel: %v", summary.UseSentinel)
}

func (r *LogReporter) ProcessingStarted(totalFrames uint64) {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.mu.Unlock()
	r.log("INFO", "=== PROCESSING STARTED === (total frames: %d)", totalFrames)
}

func (r *LogReporter) ProcessingProgress(progress ProgressSnapshot) {
	bucket := int(progress.Percent / 5)
	r.mu.Lock()
	if bucket > r.lastProgressBucket && bucket <= 20 {
		r.lastProgressBucket = bucket
		r.mu.Unlock()
		r.log("INFO", "Progress: %.0f%% (frame %d/%d, %.1f fps, eta %s)",
			progress.Percent, progress.FramesDone, progress.FramesTotal, progress.FPS,
			util.FormatDurationFromSecs(int64(progress.ETA.Seconds())))
	} else {
		r.mu.Unlock()
	}
}

func (r *LogReporter) ValidationComplete(summary ValidationSummary) {
	r.log("INFO", "=== VALIDATION ===")
	if summary.Passed {
		r.log("INFO", "Result: PASSED")
	} else {
		r.log("WARN", "Result: FAILED")
	}

	for _, step := range summary.Steps {
		status := "ok"
		if !step.Passed {
			status = "FAILED"
		}
		r.log("INFO", "  - %s: %s (%s)", step.Name, status, step.Details)
	}
}

func (r *LogReporter) JobComplete(outcome JobOutcome) {
	r.log("INFO", "=== RESULT %s (%s) ===", outcome.JobID, outcome.Kind)
	if outcome.OutputFile != "" {
		r.log("INFO", "Output: %s", outcome.OutputFile)
	}
	if outcome.Kind == "embed" {
		r.log("INFO", "Size: %s -> %s",
			util.FormatBytesReadable(outcome.OriginalSize),
			util.FormatBytesReadable(outcome.OutputSize))
	} else {
		r.log("INFO", "Payload: %q", outcome.Payload)
		r.log("INFO", "Confidence: %s (agreement %.2f)", outcome.Confidence, outcome.Agreement)
	}
	r.log("INFO", "Time: %s", util.FormatDurationFromSecs(int64(outcome.TotalTime.Seconds())))
}

func (r *LogReporter) Warning(message string) {
	r.log("WARN", "%s", message)
}

func (r *LogReporter) Error(err ReporterError) {
	r.log("ERROR", "%s: %s", err.Title, err.Message)
	if err.Context != "" {
		r.log("ERROR", "  Context: %s", err.Context)
	}
	if err.Suggestion != "" {
		r.log("ERROR", "  Suggestion: %s", err.Suggestion)
	}
}

func (r *LogReporter) OperationComplete(message string) {
	r.log("INFO", "=== COMPLETE === %s", message)
}

func (r *LogReporter) BatchStarted(info BatchStartInfo) {
	r.log("INFO", "=== BATCH STARTED ===")
	r.log("INFO", "Processing %d files -> %s", info.TotalFiles, info.OutputDir)
	for i, name := range info.FileList {
		r.log("INFO", "  %d. %s", i+1, name)
	}
}

func (r *LogReporter) FileProgress(context FileProgressContext) {
	r.log("INFO", "--- File %d of %d ---", context.CurrentFile, context.TotalFiles)
}

func (r *LogReporter) BatchComplete(summary BatchSummary) {
	r.log("INFO", "=== BATCH COMPLETE ===")
	r.log("INFO", "%d of %d succeeded", summary.SuccessfulCount, summary.TotalFiles)
	r.log("INFO", "Validation: %d passed, %d failed", summary.ValidationPassedCount, summary.ValidationFailedCount)
	r.log("INFO", "Time: %s", util.FormatDurationFromSecs(int64(summary.TotalDuration.Seconds())))

	for _, result := range summary.FileResults {
		r.log("INFO", "  - %s: %s", result.Filename, result.Outcome)
	}
}

func (r *LogReporter) Verbose(message string) {
	r.log("DEBUG", "%s", message)
}
