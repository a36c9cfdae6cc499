// Package config provides configuration types and defaults for reelmark.
package config

import (
	"fmt"

	"github.com/reelmark/reelmark/internal/util"
)

// Carrier selects which color channels carry payload bits.
type Carrier string

const (
	// CarrierY embeds in the luminance channel only (default).
	CarrierY Carrier = "y"
	// CarrierYCrCb embeds in luminance and both chrominance channels.
	CarrierYCrCb Carrier = "ycrcb"
)

// Channels returns the ordered list of channel names this carrier selection
// embeds into.
func (c Carrier) Channels() []string {
	if c == CarrierYCrCb {
		return []string{"Y", "Cr", "Cb"}
	}
	return []string{"Y"}
}

// Default constants
const (
	// DefaultPayloadMaxLen is the default maximum payload length in UTF-8
	// code units.
	DefaultPayloadMaxLen = 50

	// DefaultStrength is the default coefficient-modification strength.
	DefaultStrength float32 = 0.1

	// MinStrength and MaxStrength bound the valid strength range.
	MinStrength float32 = 0.05
	MaxStrength float32 = 0.30

	// DefaultRedundancy is the number of blocks carrying each payload bit.
	DefaultRedundancy = 3

	// DefaultCoeffRow and DefaultCoeffCol are the mid-frequency DCT
	// coefficient position used for embedding.
	DefaultCoeffRow = 4
	DefaultCoeffCol = 3

	// DefaultCarrier is the default carrier-channel selection.
	DefaultCarrier = CarrierY

	// DefaultUseSentinel controls whether embed appends the end-of-message
	// sentinel by default.
	DefaultUseSentinel = true

	// DefaultProgressEveryNFrames is the progress-publish interval, in frames.
	DefaultProgressEveryNFrames = 10

	// DefaultConfTotalVotes is the per-bit vote count after which multi-frame
	// extraction may stop early if agreement is high enough.
	DefaultConfTotalVotes = 9

	// DefaultConfAgreement is the agreement ratio required for early stop.
	DefaultConfAgreement = 0.9

	// DefaultQueueCapacity is the bounded job queue size.
	DefaultQueueCapacity = 100

	// MaxWorkers caps the worker pool size regardless of core count.
	MaxWorkers = 4

	// DefaultMaxInputSizeBytes bounds validator-accepted input size (4 GiB).
	DefaultMaxInputSizeBytes uint64 = 4 << 30

	// DefaultOutputContainer is the fallback output container extension.
	DefaultOutputContainer string = ".mp4"
)

// AutoWorkerCount returns the default worker-pool size: number of logical
// cores, capped at MaxWorkers.
func AutoWorkerCount() int {
	cores := util.LogicalCores()
	if cores > MaxWorkers {
		return MaxWorkers
	}
	if cores < 1 {
		return 1
	}
	return cores
}

// Config holds all configuration for watermark embed/extract processing.
type Config struct {
	// Input/output paths
	OutputDir string
	LogDir    string
	TempDir   string // Optional, defaults to OutputDir

	// Codec parameters
	Strength    float32 // coefficient-modification strength
	Redundancy  int     // blocks carrying each payload bit
	CoeffRow    int     // mid-frequency coefficient row
	CoeffCol    int     // mid-frequency coefficient column
	Carrier     Carrier // channel selection
	UseSentinel bool    // append end-of-message sentinel on embed
	PayloadMax  int     // max payload length in UTF-8 code units

	// Pipeline options
	ProgressEveryNFrames int    // frames between progress publishes
	Workers              int    // worker pool size
	QueueCapacity        int    // bounded job queue size
	MaxInputSizeBytes    uint64 // validator input size ceiling

	// Debug options
	Verbose bool // Enable verbose output
}

// NewConfig creates a new Config with default values.
func NewConfig(outputDir, logDir string) *Config {
	return &Config{
		OutputDir:            outputDir,
		LogDir:               logDir,
		Strength:             DefaultStrength,
		Redundancy:           DefaultRedundancy,
		CoeffRow:             DefaultCoeffRow,
		CoeffCol:             DefaultCoeffCol,
		Carrier:              DefaultCarrier,
		UseSentinel:          DefaultUseSentinel,
		PayloadMax:           DefaultPayloadMaxLen,
		ProgressEveryNFrames: DefaultProgressEveryNFrames,
		Workers:              AutoWorkerCount(),
		QueueCapacity:        DefaultQueueCapacity,
		MaxInputSizeBytes:    DefaultMaxInputSizeBytes,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Strength < MinStrength || c.Strength > MaxStrength {
		return fmt.Errorf("strength must be between %.2f and %.2f, got %.2f", MinStrength, MaxStrength, c.Strength)
	}

	if c.Redundancy < 1 {
		return fmt.Errorf("redundancy must be at least 1, got %d", c.Redundancy)
	}

	if c.CoeffRow < 0 || c.CoeffRow > 7 || c.CoeffCol < 0 || c.CoeffCol > 7 {
		return fmt.Errorf("coefficient position must be within the 8x8 block, got (%d,%d)", c.CoeffRow, c.CoeffCol)
	}

	if c.Carrier != CarrierY && c.Carrier != CarrierYCrCb {
		return fmt.Errorf("carrier must be %q or %q, got %q", CarrierY, CarrierYCrCb, c.Carrier)
	}

	if c.PayloadMax < 0 {
		return fmt.Errorf("payload_max must be non-negative, got %d", c.PayloadMax)
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}

	if c.QueueCapacity < 1 {
		return fmt.Errorf("queue_capacity must be at least 1, got %d", c.QueueCapacity)
	}

	if c.ProgressEveryNFrames < 1 {
		return fmt.Errorf("progress_every_n_frames must be at least 1, got %d", c.ProgressEveryNFrames)
	}

	return nil
}

// GetTempDir returns the temp directory, falling back to OutputDir if not set.
func (c *Config) GetTempDir() string {
	if c.TempDir != "" {
		return c.TempDir
	}
	return c.OutputDir
}
