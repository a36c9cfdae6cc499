// Package main provides the CLI entry point for reelmark.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/reelmark/reelmark"
	"github.com/reelmark/reelmark/internal/config"
	"github.com/reelmark/reelmark/internal/logging"
	"github.com/reelmark/reelmark/internal/reporter"
)

const (
	appName    = "reelmark"
	appVersion = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "embed":
		err = runEmbed(os.Args[2:])
	case "extract":
		err = runExtract(os.Args[2:])
	case "batch":
		err = runBatch(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "estimate":
		err = runEstimate(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("%s version %s\n", appName, appVersion)
		return
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - video watermarking tool

Usage:
  %s <command> [options]

Commands:
  embed       Embed a payload into a video file
  extract     Extract a payload from a watermarked video file
  batch       Embed a payload into every video file in a directory
  validate    Check a video file's readability and codec metadata
  estimate    Predict the wall-clock cost of a job
  version     Print version information
  help        Show this help message

Run '%s <command> --help' for command-specific options.
`, appName, appName, appName)
}

func withSignalCancellation() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, cancel
}

// awaitJob waits on a job's progress events until the channel closes,
// printing nothing extra: all observable output already goes through the
// reporter wired into the System. It returns nil if the job completed, or
// the job's error, a context error, or a timeout error.
func awaitJob(ctx context.Context, sys *reelmark.System, id string) error {
	events, unsubscribe := sys.Subscribe(id)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-events:
			if !ok {
				snap, found := sys.GetJob(id)
				if !found {
					return fmt.Errorf("job %s disappeared", id)
				}
				if snap.Err != nil {
					return snap.Err
				}
				return nil
			}
		case <-time.After(30 * time.Minute):
			return fmt.Errorf("job %s timed out waiting for terminal event", id)
		}
	}
}

type embedArgs struct {
	inputPath  string
	outputDir  string
	logDir     string
	payload    string
	strength   float64
	redundancy int
	carrier    string
	noSentinel bool
	verbose    bool
	noLog      bool
}

func runEmbed(args []string) error {
	fs := flag.NewFlagSet("embed", flag.ExitOnError)
	var ea embedArgs
	fs.StringVar(&ea.inputPath, "i", "", "Input video file")
	fs.StringVar(&ea.inputPath, "input", "", "Input video file")
	fs.StringVar(&ea.outputDir, "o", "", "Output directory")
	fs.StringVar(&ea.outputDir, "output", "", "Output directory")
	fs.StringVar(&ea.logDir, "l", "", "Log directory")
	fs.StringVar(&ea.payload, "payload", "", "Payload text to embed")
	fs.Float64Var(&ea.strength, "strength", float64(config.DefaultStrength), "Coefficient-modification strength")
	fs.IntVar(&ea.redundancy, "redundancy", config.DefaultRedundancy, "Blocks carrying each payload bit")
	fs.StringVar(&ea.carrier, "carrier", string(config.DefaultCarrier), "Carrier channels: y or ycrcb")
	fs.BoolVar(&ea.noSentinel, "no-sentinel", false, "Omit the end-of-message sentinel")
	fs.BoolVar(&ea.verbose, "v", false, "Enable verbose output")
	fs.BoolVar(&ea.verbose, "verbose", false, "Enable verbose output")
	fs.BoolVar(&ea.noLog, "no-log", false, "Disable log file creation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if ea.inputPath == "" || ea.payload == "" || ea.outputDir == "" {
		return fmt.Errorf("embed requires --input, --payload and --output")
	}

	inputPath, err := filepath.Abs(ea.inputPath)
	if err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}

	opts := []reelmark.Option{
		reelmark.WithRedundancy(ea.redundancy),
		reelmark.WithCarrier(config.Carrier(ea.carrier)),
	}
	if ea.noSentinel {
		opts = append(opts, reelmark.WithoutSentinel())
	}

	sys, cleanup, err := newSystemWithOptions(ea.outputDir, ea.logDir, ea.verbose, ea.noLog, os.Args, opts...)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := withSignalCancellation()
	defer cancel()

	id, err := sys.SubmitEmbed(ctx, inputPath, ea.payload, float32(ea.strength))
	if err != nil {
		return err
	}
	return awaitJob(ctx, sys, id)
}

type batchArgs struct {
	inputDir   string
	outputDir  string
	logDir     string
	payload    string
	strength   float64
	redundancy int
	carrier    string
	verbose    bool
	noLog      bool
}

func runBatch(args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	var ba batchArgs
	fs.StringVar(&ba.inputDir, "i", "", "Input directory containing video files")
	fs.StringVar(&ba.inputDir, "input", "", "Input directory containing video files")
	fs.StringVar(&ba.outputDir, "o", "", "Output directory")
	fs.StringVar(&ba.outputDir, "output", "", "Output directory")
	fs.StringVar(&ba.logDir, "l", "", "Log directory")
	fs.StringVar(&ba.payload, "payload", "", "Payload text to embed into every file")
	fs.Float64Var(&ba.strength, "strength", float64(config.DefaultStrength), "Coefficient-modification strength")
	fs.IntVar(&ba.redundancy, "redundancy", config.DefaultRedundancy, "Blocks carrying each payload bit")
	fs.StringVar(&ba.carrier, "carrier", string(config.DefaultCarrier), "Carrier channels: y or ycrcb")
	fs.BoolVar(&ba.verbose, "v", false, "Enable verbose output")
	fs.BoolVar(&ba.verbose, "verbose", false, "Enable verbose output")
	fs.BoolVar(&ba.noLog, "no-log", false, "Disable log file creation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if ba.inputDir == "" || ba.payload == "" || ba.outputDir == "" {
		return fmt.Errorf("batch requires --input, --payload and --output")
	}

	inputDir, err := filepath.Abs(ba.inputDir)
	if err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	files, err := reelmark.FindVideos(inputDir)
	if err != nil {
		return fmt.Errorf("discover video files: %w", err)
	}

	opts := []reelmark.Option{
		reelmark.WithRedundancy(ba.redundancy),
		reelmark.WithCarrier(config.Carrier(ba.carrier)),
	}

	sys, cleanup, err := newSystemWithOptions(ba.outputDir, ba.logDir, ba.verbose, ba.noLog, os.Args, opts...)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := withSignalCancellation()
	defer cancel()

	var failures int
	for _, f := range files {
		id, err := sys.SubmitEmbed(ctx, f, ba.payload, float32(ba.strength))
		if err != nil {
			fmt.Fprintf(os.Stderr, "submit %s: %v\n", f, err)
			failures++
			continue
		}
		if err := awaitJob(ctx, sys, id); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", f, err)
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d files failed", failures, len(files))
	}
	return nil
}

type extractArgs struct {
	inputPath    string
	logDir       string
	expectedBits int
	redundancy   int
	carrier      string
	verbose      bool
	noLog        bool
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	var ea extractArgs
	fs.StringVar(&ea.inputPath, "i", "", "Input video file")
	fs.StringVar(&ea.inputPath, "input", "", "Input video file")
	fs.StringVar(&ea.logDir, "l", "", "Log directory")
	fs.IntVar(&ea.expectedBits, "expected-bits", 0, "Expected payload bit length (0 seeks the sentinel)")
	fs.IntVar(&ea.redundancy, "redundancy", config.DefaultRedundancy, "Blocks carrying each payload bit")
	fs.StringVar(&ea.carrier, "carrier", string(config.DefaultCarrier), "Carrier channels: y or ycrcb")
	fs.BoolVar(&ea.verbose, "v", false, "Enable verbose output")
	fs.BoolVar(&ea.verbose, "verbose", false, "Enable verbose output")
	fs.BoolVar(&ea.noLog, "no-log", false, "Disable log file creation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if ea.inputPath == "" {
		return fmt.Errorf("extract requires --input")
	}

	inputPath, err := filepath.Abs(ea.inputPath)
	if err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}

	opts := []reelmark.Option{
		reelmark.WithRedundancy(ea.redundancy),
		reelmark.WithCarrier(config.Carrier(ea.carrier)),
	}

	sys, cleanup, err := newSystemWithOptions(".", ea.logDir, ea.verbose, ea.noLog, os.Args, opts...)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := withSignalCancellation()
	defer cancel()

	id, err := sys.SubmitExtract(ctx, inputPath, ea.expectedBits)
	if err != nil {
		return err
	}
	return awaitJob(ctx, sys, id)
}

func newSystemWithOptions(outputDir, logDir string, verbose, noLog bool, cmdArgs []string, extra ...reelmark.Option) (*reelmark.System, func(), error) {
	if logDir == "" {
		logDir = logging.DefaultLogDir()
	}

	logger, err := logging.Setup(logDir, verbose, noLog, cmdArgs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	termRep := reporter.NewTerminalReporterVerbose(verbose)
	var rep reporter.Reporter = termRep
	if logger != nil {
		logRep := reporter.NewLogReporter(logger.Writer())
		rep = reporter.NewCompositeReporter(termRep, logRep)
	}

	opts := append([]reelmark.Option{reelmark.WithOutputDir(outputDir), reelmark.WithLogDir(logDir)}, extra...)
	if verbose {
		opts = append(opts, reelmark.WithVerbose())
	}

	sys, err := reelmark.NewWithReporter(rep, opts...)
	if err != nil {
		if logger != nil {
			_ = logger.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		sys.Shutdown()
		if logger != nil {
			_ = logger.Close()
		}
	}
	return sys, cleanup, nil
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var inputPath string
	fs.StringVar(&inputPath, "i", "", "Input video file")
	fs.StringVar(&inputPath, "input", "", "Input video file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if inputPath == "" {
		return fmt.Errorf("validate requires --input")
	}

	sys, err := reelmark.New()
	if err != nil {
		return err
	}
	defer sys.Shutdown()

	report := sys.Validate(inputPath)
	fmt.Printf("exists: %v, readable: %v\n", report.Exists, report.Readable)
	fmt.Printf("video stream: %v, audio stream: %v\n", report.HasVideoStream, report.HasAudioStream)
	fmt.Printf("resolution: %dx%d, fps: %.2f, frames: %d, duration: %.1fs, codec: %s\n",
		report.Width, report.Height, report.FPS, report.FrameCount, report.DurationS, report.CodecTag)
	if report.Capacity != nil {
		fmt.Printf("capacity: %d blocks available, max payload %d bytes at redundancy %d\n",
			report.Capacity.AvailableBlocks, report.Capacity.MaxPayloadBytes, report.Capacity.Redundancy)
	}
	for _, w := range report.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	for _, e := range report.Errors {
		fmt.Printf("error: %s\n", e)
	}
	if !report.OK() {
		os.Exit(1)
	}
	return nil
}

func runEstimate(args []string) error {
	fs := flag.NewFlagSet("estimate", flag.ExitOnError)
	var inputPath string
	var payloadLen int
	var strength float64
	fs.StringVar(&inputPath, "i", "", "Input video file")
	fs.StringVar(&inputPath, "input", "", "Input video file")
	fs.IntVar(&payloadLen, "payload-len", 0, "Payload length in bytes")
	fs.Float64Var(&strength, "strength", float64(config.DefaultStrength), "Coefficient-modification strength")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if inputPath == "" {
		return fmt.Errorf("estimate requires --input")
	}

	sys, err := reelmark.New()
	if err != nil {
		return err
	}
	defer sys.Shutdown()

	est, err := sys.Estimate(inputPath, payloadLen, float32(strength))
	if err != nil {
		return err
	}
	fmt.Printf("estimated_seconds: %.1f, confidence: %.2f\n", est.EstimatedSeconds, est.Confidence)
	return nil
}
