package reporter

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/reelmark/reelmark/internal/util"
	"github.com/schollz/progressbar/v3"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu         sync.Mutex
	progress   *progressbar.ProgressBar
	maxPercent float32
	lastStage  string
	verbose    bool
	cyan       *color.Color
	green      *color.Color
	yellow     *color.Color
	red        *color.Color
	magenta    *color.Color
	bold       *color.Color
	dim        *color.Color
}

// NewTerminalReporter creates a new terminal reporter with verbose mode disabled.
func NewTerminalReporter() *TerminalReporter {
	return NewTerminalReporterVerbose(false)
}

// NewTerminalReporterVerbose creates a new terminal reporter with configurable verbose mode.
func NewTerminalReporterVerbose(verbose bool) *TerminalReporter {
	return &TerminalReporter{
		verbose: verbose,
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
		dim:     color.New(color.Faint),
	}
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

func (r *TerminalReporter) Hardware(summary HardwareSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("HARDWARE")
	r.printLabel("Hostname:", summary.Hostname)
	r.printLabel("Workers:", fmt.Sprintf("%d (of %d cores)", summary.Workers, summary.Cores))
}

// labelWidth is the global width for all labels to ensure consistent alignment.
const labelWidth = 18

// printLabel prints a bold label with fixed width padding followed by a value.
func (r *TerminalReporter) printLabel(label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", labelWidth, label)
	fmt.Printf("  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) JobSubmitted(summary JobSubmittedSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("JOB")
	r.printLabel("ID:", summary.JobID)
	r.printLabel("Kind:", summary.Kind)
	r.printLabel("Input:", summary.InputFile)
	if summary.OutputFile != "" {
		r.printLabel("Output:", summary.OutputFile)
	}
}

func (r *TerminalReporter) StageProgress(update StageProgress) {
	r.mu.Lock()
	if r.lastStage != update.Stage {
		r.mu.Unlock()
		fmt.Println()
		_, _ = r.cyan.Println(strings.ToUpper(update.Stage))
		r.mu.Lock()
		r.lastStage = update.Stage
	}
	r.mu.Unlock()
	fmt.Printf("  %s %s\n", r.magenta.Sprint("›"), update.Message)
}

func (r *TerminalReporter) CapacityReport(summary CapacitySummary) {
	var status string
	if summary.Sufficient {
		status = r.green.Sprint("sufficient")
	} else {
		status = r.red.Sprint("insufficient")
	}
	r.printLabel("Carriers:", strings.Join(summary.Carriers, "+"))
	r.printLabel("Capacity:", fmt.Sprintf("%d blocks available, %d required (%s)",
		summary.BlocksAvailable, summary.RequiredBlocks, status))
	r.printLabel("Max payload:", fmt.Sprintf("%d bytes at current redundancy", summary.MaxPayloadBytes))
}

func (r *TerminalReporter) WatermarkConfig(summary WatermarkConfigSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("WATERMARK")
	r.printLabel("Strength:", fmt.Sprintf("%.2f", summary.Strength))
	r.printLabel("Redundancy:", fmt.Sprintf("%dx", summary.Redundancy))
	r.printLabel("Coefficient:", fmt.Sprintf("(%d,%d)", summary.CoeffRow, summary.CoeffCol))
	r.printLabel("Carrier:", summary.Carrier)
	r.printLabel("Sentinel:", fmt.Sprintf("%v", summary.UseSentinel))
}

func (r *TerminalReporter) ProcessingStarted(totalFrames uint64) {
	r.finishProgress()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = progressbar.NewOptions64(
		100,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Processing [",
			BarEnd:        "]",
		}),
	)
	_ = totalFrames
}

func (r *TerminalReporter) ProcessingProgress(progress ProgressSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}

	clamped := progress.Percent
	if clamped > 100 {
		clamped = 100
	}
	if clamped < 0 {
		clamped = 0
	}

	if clamped >= r.maxPercent {
		r.maxPercent = clamped
		_ = r.progress.Set64(int64(clamped))
	}

	desc := fmt.Sprintf("frame %d/%d, %.1f fps, eta %s",
		progress.FramesDone, progress.FramesTotal, progress.FPS,
		util.FormatDurationFromSecs(int64(progress.ETA.Seconds())))
	r.progress.Describe(desc)
}

func (r *TerminalReporter) ValidationComplete(summary ValidationSummary) {
	r.finishProgress()

	fmt.Println()
	_, _ = r.cyan.Println("VALIDATION")

	if summary.Passed {
		r.printLabel("Status:", fmt.Sprintf("%s %s", r.green.Sprint("✓"), r.green.Add(color.Bold).Sprint("All checks passed")))
	} else {
		r.printLabel("Status:", fmt.Sprintf("%s %s", r.red.Sprint("✗"), r.red.Sprint("Validation failed")))
	}

	for _, step := range summary.Steps {
		var status string
		if step.Passed {
			status = r.green.Sprint("✓")
		} else {
			status = r.red.Sprint("✗")
		}
		r.printLabel(step.Name+":", fmt.Sprintf("%s %s", status, step.Details))
	}
}

func (r *TerminalReporter) JobComplete(outcome JobOutcome) {
	fmt.Println()
	_, _ = r.cyan.Println("RESULT")
	r.printLabel("Job:", fmt.Sprintf("%s (%s)", outcome.JobID, outcome.Kind))
	if outcome.OutputFile != "" {
		r.printLabel("Output:", outcome.OutputFile)
	}
	if outcome.Kind == "embed" {
		r.printLabel("Size:", fmt.Sprintf("%s -> %s",
			util.FormatBytesReadable(outcome.OriginalSize),
			util.FormatBytesReadable(outcome.OutputSize)))
	} else {
		r.printLabel("Payload:", fmt.Sprintf("%q", outcome.Payload))
		r.printLabel("Confidence:", fmt.Sprintf("%s (agreement %.2f)", outcome.Confidence, outcome.Agreement))
	}
	r.printLabel("Time:", util.FormatDurationFromSecs(int64(outcome.TotalTime.Seconds())))
}

func (r *TerminalReporter) Warning(message string) {
	fmt.Println()
	_, _ = r.yellow.Printf("WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	_, _ = fmt.Fprintln(os.Stderr)
	_, _ = r.red.Fprintf(os.Stderr, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(os.Stderr, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) OperationComplete(message string) {
	fmt.Println()
	fmt.Printf("%s %s\n", r.green.Add(color.Bold).Sprint("✓"), r.bold.Sprint(message))
}

func (r *TerminalReporter) BatchStarted(info BatchStartInfo) {
	fmt.Println()
	_, _ = r.cyan.Println("BATCH")
	fmt.Printf("  Processing %d files -> %s\n", info.TotalFiles, r.bold.Sprint(info.OutputDir))
	for i, name := range info.FileList {
		fmt.Printf("  %d. %s\n", i+1, name)
	}
}

func (r *TerminalReporter) FileProgress(context FileProgressContext) {
	fmt.Printf("\nFile %s of %d\n",
		r.bold.Sprint(context.CurrentFile),
		context.TotalFiles)
}

func (r *TerminalReporter) BatchComplete(summary BatchSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("BATCH SUMMARY")
	fmt.Printf("  %s\n", r.bold.Sprintf("%d of %d succeeded", summary.SuccessfulCount, summary.TotalFiles))
	fmt.Printf("  Validation: %s passed, %s failed\n",
		r.green.Sprint(summary.ValidationPassedCount),
		r.red.Sprint(summary.ValidationFailedCount))
	fmt.Printf("  Time: %s\n", util.FormatDurationFromSecs(int64(summary.TotalDuration.Seconds())))

	for _, result := range summary.FileResults {
		fmt.Printf("  - %s: %s\n", result.Filename, result.Outcome)
	}
}

func (r *TerminalReporter) Verbose(message string) {
	if !r.verbose {
		return
	}
	fmt.Printf("  %s %s\n", r.dim.Sprint("›"), r.dim.Sprint(message))
}
