// Package reelmark provides a Go library for block-DCT video watermarking.
//
// Reelmark embeds a short UTF-8 payload into a video's frames by perturbing
// mid-frequency DCT coefficient parity in 8x8 luma/chroma blocks, and
// recovers it later with majority-vote extraction over a prefix of frames.
// A System owns the process-wide job table, bounded queue, and worker pool;
// callers submit embed/extract jobs, poll or subscribe for progress, and
// shut the system down when done.
//
// Basic usage:
//
//	sys, err := reelmark.New(reelmark.WithOutputDir("out"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sys.Shutdown()
//
//	id, err := sys.SubmitEmbed(ctx, "input.mp4", "hello", 0.1)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	snap, _ := sys.GetJob(id)
//	fmt.Println(snap.Status)
package reelmark

import (
	"context"
	"fmt"
	"sync"

	"github.com/reelmark/reelmark/internal/bus"
	"github.com/reelmark/reelmark/internal/config"
	"github.com/reelmark/reelmark/internal/discovery"
	"github.com/reelmark/reelmark/internal/estimate"
	"github.com/reelmark/reelmark/internal/job"
	"github.com/reelmark/reelmark/internal/processing"
	"github.com/reelmark/reelmark/internal/queue"
	"github.com/reelmark/reelmark/internal/reporter"
	"github.com/reelmark/reelmark/internal/util"
	"github.com/reelmark/reelmark/internal/validation"
)

// System is the process-wide owner of the job table, queue, and progress
// bus. It is the only entry point external collaborators (CLI, HTTP
// adapter) use.
type System struct {
	cfg   *config.Config
	rep   reporter.Reporter
	table *job.Table
	bus   *bus.Bus
	queue *queue.Queue

	mu     sync.Mutex
	nextID int
}

// staleInflightMaxAgeHours is how old an orphaned in-flight output from a
// crashed run must be before startup sweeps it.
const staleInflightMaxAgeHours = 24

// Option configures a System at construction time.
type Option func(*config.Config)

// New creates a System with the given options and starts its worker pool.
func New(opts ...Option) (*System, error) {
	return NewWithReporter(reporter.NullReporter{}, opts...)
}

// NewWithReporter creates a System that reports every observable event
// through rep in addition to driving the job table and progress bus.
func NewWithReporter(rep reporter.Reporter, opts ...Option) (*System, error) {
	cfg := config.NewConfig(".", ".")
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := util.EnsureDirectory(cfg.OutputDir); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	if rep == nil {
		rep = reporter.NullReporter{}
	}

	util.CheckDiskSpace(cfg.OutputDir, func(format string, args ...any) {
		rep.Warning(fmt.Sprintf(format, args...))
	})
	if n, err := util.CleanupStaleTempFiles(cfg.OutputDir, processing.InflightPrefix, staleInflightMaxAgeHours); err == nil && n > 0 {
		rep.Verbose(fmt.Sprintf("removed %d stale in-flight output(s)", n))
	}

	info := util.GetSystemInfo()
	rep.Hardware(reporter.HardwareSummary{Hostname: info.Hostname, Cores: info.Cores, Workers: cfg.Workers})

	sys := &System{
		cfg:   cfg,
		rep:   rep,
		table: job.NewTable(),
		bus:   bus.New(),
	}
	sys.queue = queue.New(cfg.QueueCapacity, cfg.Workers, sys.table, sys.bus, sys.handle)
	return sys, nil
}

// WithOutputDir sets the directory embed jobs write their watermarked
// output into.
func WithOutputDir(dir string) Option {
	return func(c *config.Config) { c.OutputDir = dir }
}

// WithLogDir sets the directory run logs are written into.
func WithLogDir(dir string) Option {
	return func(c *config.Config) { c.LogDir = dir }
}

// WithRedundancy sets the number of blocks carrying each payload bit.
func WithRedundancy(r int) Option {
	return func(c *config.Config) { c.Redundancy = r }
}

// WithCoefficient sets the mid-frequency DCT coefficient position used for
// embedding.
func WithCoefficient(row, col int) Option {
	return func(c *config.Config) { c.CoeffRow, c.CoeffCol = row, col }
}

// WithCarrier sets the carrier-channel selection.
func WithCarrier(carrier config.Carrier) Option {
	return func(c *config.Config) { c.Carrier = carrier }
}

// WithoutSentinel disables the end-of-message sentinel on embed, requiring
// extract callers to supply an explicit expected bit length.
func WithoutSentinel() Option {
	return func(c *config.Config) { c.UseSentinel = false }
}

// WithWorkers sets the worker pool size.
func WithWorkers(n int) Option {
	return func(c *config.Config) { c.Workers = n }
}

// WithQueueCapacity sets the bounded job queue size.
func WithQueueCapacity(n int) Option {
	return func(c *config.Config) { c.QueueCapacity = n }
}

// WithVerbose enables verbose reporter output.
func WithVerbose() Option {
	return func(c *config.Config) { c.Verbose = true }
}

func (s *System) allocateID(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

// SubmitEmbed enqueues an embed job for inputPath. strength of 0 uses the
// configured default. Returns queue.ErrQueueFull if the bounded queue has
// no free slot.
func (s *System) SubmitEmbed(ctx context.Context, inputPath, payload string, strength float32) (string, error) {
	if strength == 0 {
		strength = s.cfg.Strength
	}
	if len(payload) > s.cfg.PayloadMax {
		return "", fmt.Errorf("invalid_input: payload exceeds max length %d", s.cfg.PayloadMax)
	}
	if err := validation.CheckPath(inputPath, s.cfg.MaxInputSizeBytes); err != nil {
		return "", fmt.Errorf("invalid_input: %w", err)
	}

	id := s.allocateID("embed")
	outputPath := util.ResolveOutputPath(inputPath, s.cfg.OutputDir, "")
	params := job.Params{
		InputPath:  inputPath,
		Payload:    payload,
		Strength:   strength,
		Carriers:   s.cfg.Carrier.Channels(),
		Redundancy: s.cfg.Redundancy,
	}
	j := job.New(id, job.KindEmbed, inputPath, params)

	if err := s.queue.Submit(ctx, j); err != nil {
		return "", err
	}
	s.rep.JobSubmitted(reporter.JobSubmittedSummary{JobID: id, Kind: string(job.KindEmbed), InputFile: inputPath, OutputFile: outputPath})
	return id, nil
}

// SubmitExtract enqueues an extract job for inputPath. expectedBits is the
// payload bit length (8 per payload byte); 0 makes the worker seek the
// end-of-message sentinel instead of decoding a fixed length.
func (s *System) SubmitExtract(ctx context.Context, inputPath string, expectedBits int) (string, error) {
	if err := validation.CheckPath(inputPath, s.cfg.MaxInputSizeBytes); err != nil {
		return "", fmt.Errorf("invalid_input: %w", err)
	}

	id := s.allocateID("extract")
	params := job.Params{
		InputPath:    inputPath,
		ExpectedBits: expectedBits,
		Carriers:     s.cfg.Carrier.Channels(),
		Redundancy:   s.cfg.Redundancy,
	}
	j := job.New(id, job.KindExtract, inputPath, params)

	if err := s.queue.Submit(ctx, j); err != nil {
		return "", err
	}
	s.rep.JobSubmitted(reporter.JobSubmittedSummary{JobID: id, Kind: string(job.KindExtract), InputFile: inputPath})
	return id, nil
}

// Validate runs the four-layer input validator against inputPath.
func (s *System) Validate(inputPath string) *validation.Report {
	return validation.Validate(inputPath, s.cfg.MaxInputSizeBytes, s.cfg.Carrier.Channels(), s.cfg.Redundancy)
}

// Estimate predicts the wall-clock cost of processing inputPath with the
// given payload length. The estimate is advisory; it never gates
// submission. strength of 0 uses the configured default; strength does not
// change the prediction.
func (s *System) Estimate(inputPath string, payloadLen int, strength float32) (estimate.Estimate, error) {
	if strength == 0 {
		strength = s.cfg.Strength
	}
	return processing.Estimate(inputPath, payloadLen, strength)
}

// GetJob returns a cloned snapshot of a job's current state. ok is false
// if the job id is unknown.
func (s *System) GetJob(id string) (job.Snapshot, bool) {
	return s.table.Snapshot(id)
}

// Subscribe returns a channel of progress events for id, and an unsubscribe
// function the caller must call once done reading. The channel closes on
// the job's terminal transition.
func (s *System) Subscribe(id string) (<-chan bus.Event, func()) {
	return s.bus.Subscribe(id)
}

// Cancel removes a still-queued job by id. Returns queue.ErrNotFound for an
// unknown id and queue.ErrNotCancellable for a job already dequeued for
// processing, which is not cancellable in this design.
func (s *System) Cancel(id string) error {
	return s.queue.Cancel(id)
}

// Shutdown stops accepting new jobs, waits for in-flight workers to finish
// or abort at the next frame boundary, and releases all resources.
func (s *System) Shutdown() {
	s.queue.Shutdown()
}

// FindVideos lists video files in a directory, for batch submission.
func FindVideos(dir string) ([]string, error) {
	return discovery.FindVideoFiles(dir)
}

// handle is the queue.Handler invoked once per dequeued job; it dispatches
// to the embed or extract pipeline and translates the result into the
// outcome the queue records on the Job.
func (s *System) handle(ctx context.Context, j *job.Job, progressFn func(progress int, message string)) (string, *job.Error) {
	start := j.StartedAt
	switch j.Kind {
	case job.KindEmbed:
		return s.handleEmbed(ctx, j, progressFn, start)
	case job.KindExtract:
		return s.handleExtract(ctx, j, progressFn, start)
	default:
		return "", &job.Error{Kind: "invalid_input", Message: fmt.Sprintf("unknown job kind %q", j.Kind)}
	}
}
