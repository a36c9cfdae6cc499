// Package validation layers path, container, and decoder checks over a
// candidate input video before it is accepted into a job.
package validation

import (
	"fmt"
	"os"

	"github.com/reelmark/reelmark/internal/probe"
	"github.com/reelmark/reelmark/internal/watermark"
)

// Sanity-warning thresholds.
const (
	minFPS           = 1.0
	maxFPS           = 120.0
	maxDurationHours = 1.0
	minDimension     = 64
)

// magicSignatures maps the allow-listed container families to a byte
// signature found within the first bytes of the file.
var magicSignatures = map[string][]byte{
	"MP4/MOV": []byte("ftyp"), // appears at offset 4 for MP4/MOV/M4V
	"AVI":     []byte("RIFF"),
	"MKV":     {0x1A, 0x45, 0xDF, 0xA3},
	"WMV":     {0x30, 0x26, 0xB2, 0x75},
	"FLV":     []byte("FLV"),
}

// Capacity reports the block capacity a video's frame grid offers for
// embedding, so a caller can size a payload before submit_embed would
// otherwise fail with capacity_insufficient. MaxPayloadBytes is
// (AvailableBlocks / Redundancy) / 8 and counts payload bits only; the
// 16-bit checksum and optional 16-bit sentinel that embed appends are not
// subtracted.
type Capacity struct {
	AvailableBlocks int
	Carriers        []string
	Redundancy      int
	MaxPayloadBytes int
}

// Report is the structured result of the layered validation pipeline.
type Report struct {
	Exists         bool
	Readable       bool
	HasVideoStream bool
	HasAudioStream bool
	DurationS      float64
	FrameCount     int
	FPS            float64
	Width          int
	Height         int
	CodecTag       string
	Capacity       *Capacity // nil until the decoder probe layer succeeds
	Errors         []string
	Warnings       []string
}

// OK reports whether the input passed every validation layer with no errors.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs the layered validation pipeline against path: path & size,
// magic bytes, decoder probe, and sanity warnings. carriers and redundancy
// size the Capacity report attached once the decoder probe succeeds; pass
// the caller's configured carrier channels and redundancy factor.
func Validate(path string, maxSizeBytes uint64, carriers []string, redundancy int) *Report {
	r := &Report{}

	// 1. Path & size.
	info, err := os.Stat(path)
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("path not found: %v", err))
		return r
	}
	r.Exists = true

	if info.IsDir() {
		r.Errors = append(r.Errors, "path is a directory")
		return r
	}
	if info.Size() == 0 {
		r.Errors = append(r.Errors, "file is empty")
		return r
	}
	if maxSizeBytes > 0 && uint64(info.Size()) > maxSizeBytes {
		r.Errors = append(r.Errors, fmt.Sprintf("file exceeds maximum size of %d bytes", maxSizeBytes))
		return r
	}
	r.Readable = true

	// 2. Magic bytes.
	if !hasRecognizedSignature(path) {
		r.Errors = append(r.Errors, "container signature not recognized")
		return r
	}

	// 3. Decoder probe.
	props, err := probe.Probe(path)
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("decoder probe failed: %v", err))
		return r
	}
	r.HasVideoStream = props.HasVideoStream
	r.HasAudioStream = props.HasAudioStream
	r.DurationS = props.DurationSeconds
	r.FrameCount = props.FrameCount
	r.FPS = props.FPS
	r.Width = props.Width
	r.Height = props.Height
	r.CodecTag = props.CodecTag

	if !r.HasVideoStream {
		r.Errors = append(r.Errors, "no decodable video stream")
		return r
	}

	r.Capacity = computeCapacity(r.Height, r.Width, carriers, redundancy)

	// 4. Sanity warnings.
	if r.FPS < minFPS || r.FPS > maxFPS {
		r.Warnings = append(r.Warnings, fmt.Sprintf("unusual frame rate: %.2f fps", r.FPS))
	}
	if r.DurationS > maxDurationHours*3600 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("duration exceeds %g hour(s): %.1fs", maxDurationHours, r.DurationS))
	}
	if r.Width < minDimension || r.Height < minDimension {
		r.Warnings = append(r.Warnings, fmt.Sprintf("dimensions below %dpx on an axis: %dx%d", minDimension, r.Width, r.Height))
	}
	if r.Width%2 == 1 || r.Height%2 == 1 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("odd dimensions lose block alignment: %dx%d", r.Width, r.Height))
	}

	return r
}

// computeCapacity sizes the Capacity report: how many redundancy-sized
// payload bits the frame grid holds.
func computeCapacity(height, width int, carriers []string, redundancy int) *Capacity {
	if redundancy < 1 {
		redundancy = 1
	}
	blocks := watermark.Capacity(height, width, carriers)
	return &Capacity{
		AvailableBlocks: blocks,
		Carriers:        carriers,
		Redundancy:      redundancy,
		MaxPayloadBytes: (blocks / redundancy) / 8,
	}
}

// CheckPath runs only the cheap validation layers: path & size, then
// container signature. Job submission uses it to reject obviously invalid
// inputs without paying for a decoder probe.
func CheckPath(path string, maxSizeBytes uint64) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path not found: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory: %s", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file is empty: %s", path)
	}
	if maxSizeBytes > 0 && uint64(info.Size()) > maxSizeBytes {
		return fmt.Errorf("file exceeds maximum size of %d bytes: %s", maxSizeBytes, path)
	}
	if !hasRecognizedSignature(path) {
		return fmt.Errorf("container signature not recognized: %s", path)
	}
	return nil
}

func hasRecognizedSignature(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, 16)
	n, _ := f.Read(head)
	head = head[:n]

	for _, sig := range magicSignatures {
		if containsAt(head, sig, 0) || containsAt(head, sig, 4) {
			return true
		}
	}
	return false
}

func containsAt(haystack, needle []byte, offset int) bool {
	if offset+len(needle) > len(haystack) {
		return false
	}
	for i, b := range needle {
		if haystack[offset+i] != b {
			return false
		}
	}
	return true
}
