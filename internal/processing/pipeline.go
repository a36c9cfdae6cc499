// Package processing wires the probe/validator, block watermarker, and raw
// video I/O together into the two job bodies a worker executes: embed and
// extract. It is the only place that knows how to drive a whole video
// through the frame-level codec in internal/watermark.
package processing

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/reelmark/reelmark/internal/bitcodec"
	"github.com/reelmark/reelmark/internal/config"
	"github.com/reelmark/reelmark/internal/estimate"
	"github.com/reelmark/reelmark/internal/framegrab"
	"github.com/reelmark/reelmark/internal/probe"
	"github.com/reelmark/reelmark/internal/rawvideo"
	"github.com/reelmark/reelmark/internal/reporter"
	"github.com/reelmark/reelmark/internal/util"
	"github.com/reelmark/reelmark/internal/watermark"
)

// InflightPrefix names the in-flight output files ProcessEmbed encodes into
// before renaming to the final path; stale ones from crashed runs are swept
// at startup.
const InflightPrefix = "reelmark_inflight"

// preferredCodecTags is the H.264/MP4 fourCC family whose codec is kept on
// re-encode instead of falling back to mp4v.
var preferredCodecTags = map[string]bool{
	"avc1": true, "h264": true, "H264": true, "x264": true,
}

// ChooseOutputCodec picks the output encoder: inputs already in the
// preferred H.264 family keep it, everything else falls back to mp4v.
func ChooseOutputCodec(inputCodecTag string) string {
	if preferredCodecTags[inputCodecTag] {
		return "libx264"
	}
	return "mp4v"
}

// ProgressFunc reports (percent 0..100, message) to the owning worker, which
// forwards it to the job and the progress bus.
type ProgressFunc func(percent int, message string)

// JobError mirrors job.Error without importing internal/job, keeping this
// package free of job-table concerns; callers translate it.
type JobError struct {
	Kind    string
	Message string
}

func (e *JobError) Error() string { return e.Kind + ": " + e.Message }

func fail(kind, format string, args ...any) *JobError {
	return &JobError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// EmbedParams bundles everything ProcessEmbed needs for one job.
type EmbedParams struct {
	InputPath            string
	OutputPath           string
	Payload              string
	Strength             float32
	Redundancy           int
	CoeffRow, CoeffCol   int
	Carrier              config.Carrier
	UseSentinel          bool
	ProgressEveryNFrames int
	DiagnosticDir        string // optional: dump the offending frame here on error
	JobID                string
}

// ProcessEmbed iterates every frame of InputPath, embeds Payload's bit
// stream into each one (so extraction can recover it from any sufficiently
// long prefix), and re-encodes to OutputPath. It publishes progress every
// ProgressEveryNFrames frames and once at 100%, and deletes any partial
// output on error.
func ProcessEmbed(ctx context.Context, p EmbedParams, rep reporter.Reporter, progress ProgressFunc) *JobError {
	if rep == nil {
		rep = reporter.NullReporter{}
	}

	props, err := probe.Probe(p.InputPath)
	if err != nil {
		return fail("decoder_error", "probe failed: %v", err)
	}

	carriers := p.Carrier.Channels()
	var bits []int
	if p.Payload != "" {
		bits = bitcodec.Encode(p.Payload, p.UseSentinel)
	}

	capacity := watermark.Capacity(props.Height, props.Width, carriers)
	need := p.Redundancy * len(bits)
	rep.CapacityReport(reporter.CapacitySummary{
		Carriers:        carriers,
		BlocksAvailable: capacity,
		RequiredBlocks:  need,
		MaxPayloadBytes: maxPayloadBytes(capacity, p.Redundancy),
		Sufficient:      capacity >= need,
	})
	if len(bits) > 0 && capacity < need {
		return fail("capacity_insufficient",
			"have %d blocks, need %d (redundancy %dx%d bits)", capacity, need, p.Redundancy, len(bits))
	}

	codec := ChooseOutputCodec(props.CodecTag)
	reader, err := rawvideo.OpenReader(p.InputPath, props.Width, props.Height)
	if err != nil {
		return fail("decoder_error", "open input: %v", err)
	}
	defer reader.Close()

	// Encode into an in-flight temp path and rename on success, so an
	// aborted job never leaves a half-written file at the final path.
	workPath, err := util.CreateTempFilePath(filepath.Dir(p.OutputPath), InflightPrefix, "mp4")
	if err != nil {
		return fail("internal", "allocate in-flight output: %v", err)
	}

	writer, err := rawvideo.OpenWriter(workPath, props.Width, props.Height, props.FPS, codec)
	if err != nil {
		return fail("internal", "open output writer: %v", err)
	}

	wmParams := watermark.Params{
		Strength:   p.Strength,
		Redundancy: p.Redundancy,
		CoeffRow:   p.CoeffRow,
		CoeffCol:   p.CoeffCol,
		Carriers:   carriers,
	}

	total := props.FrameCount
	every := p.ProgressEveryNFrames
	if every < 1 {
		every = 1
	}

	var k int
	for {
		if ctx.Err() != nil {
			writer.Abort()
			_ = os.Remove(workPath)
			return fail("shutdown", "worker pool is shutting down at frame %d", k)
		}

		img, rerr := reader.NextFrame()
		if rerr == io.EOF {
			if jerr := checkDecoderExit(reader, k, props.FrameCount); jerr != nil {
				writer.Abort()
				_ = os.Remove(workPath)
				return jerr
			}
			break
		}
		if rerr != nil {
			writer.Abort()
			_ = os.Remove(workPath)
			return fail("frame_processing_failed", "frame %d: decode: %v", k, rerr)
		}

		if len(bits) > 0 {
			if jerr := embedOneFrame(img, bits, wmParams); jerr != nil {
				writer.Abort()
				_ = os.Remove(workPath)
				dumpDiagnostic(p.DiagnosticDir, p.JobID, k, img)
				return fail("frame_processing_failed", "frame %d: %v", k, jerr)
			}
		}

		if werr := writer.WriteFrame(img); werr != nil {
			writer.Abort()
			_ = os.Remove(workPath)
			return fail("frame_processing_failed", "frame %d: encode: %v", k, werr)
		}

		k++
		if k%every == 0 {
			reportProgress(progress, rep, k, total)
		}
	}

	if err := writer.Close(); err != nil {
		_ = os.Remove(workPath)
		return fail("internal", "finalize output: %v", err)
	}
	if err := os.Rename(workPath, p.OutputPath); err != nil {
		_ = os.Remove(workPath)
		return fail("internal", "finalize output: %v", err)
	}

	if progress != nil {
		progress(100, fmt.Sprintf("embedded into %d frames", k))
	}
	rep.ProcessingProgress(reporter.ProgressSnapshot{Percent: 100, FramesDone: k, FramesTotal: total})
	return nil
}

func embedOneFrame(img *image.RGBA, bits []int, p watermark.Params) error {
	planes := watermark.ExtractPlanes(img)
	if err := watermark.Embed(planes, bits, p); err != nil {
		return err
	}
	out := planes.ToRGBA()
	copy(img.Pix, out.Pix)
	return nil
}

func reportProgress(progress ProgressFunc, rep reporter.Reporter, done, total int) {
	pct := 0
	if total > 0 {
		pct = done * 100 / total
		if pct > 99 {
			pct = 99 // 100% is reserved for the final, single publish
		}
	}
	if progress != nil {
		progress(pct, fmt.Sprintf("frame %d/%d", done, total))
	}
	rep.ProcessingProgress(reporter.ProgressSnapshot{
		Percent:     float32(pct),
		FramesDone:  done,
		FramesTotal: total,
	})
}

func maxPayloadBytes(capacity, redundancy int) int {
	if redundancy <= 0 {
		return 0
	}
	return (capacity / redundancy) / 8
}

func dumpDiagnostic(dir, jobID string, frameIndex int, img image.Image) {
	if dir == "" || img == nil {
		return
	}
	_, _ = framegrab.Dump(dir, jobID, frameIndex, img)
}

// checkDecoderExit is called once the frame loop reaches a clean EOF from
// NextFrame. A short read near the end of the stream (ffmpeg hitting a
// corrupt frame partway through decode) surfaces the same way as a true
// end-of-stream, so the only way to tell them apart is the decoder's exit
// status: non-zero exit with fewer frames decoded than the probe promised
// means ffmpeg died mid-decode, not that the video legitimately ended
// there.
func checkDecoderExit(reader *rawvideo.Reader, framesRead, expected int) *JobError {
	exitErr := reader.Close()
	if exitErr == nil {
		return nil
	}
	if expected > 0 && framesRead >= expected {
		return nil
	}
	return fail("decoder_error", "decoder exited with error after %d/%d frames: %v", framesRead, expected, exitErr)
}

// ExtractParams bundles everything ProcessExtract needs for one job.
type ExtractParams struct {
	InputPath            string
	ExpectedBits         int // payload bit length (8 per payload byte); 0 means "seek the sentinel"
	PayloadMaxBytes      int // upper bound used to size accumulators in sentinel mode
	Strength             float32
	Redundancy           int
	CoeffRow, CoeffCol   int
	Carrier              config.Carrier
	MaxFrames            int // 0 means "no bound beyond the stream length"
	ConvergenceVotes     int
	ConvergenceAgreement float64
	ProgressEveryNFrames int
}

// ExtractResult is the decoded payload and the confidence in it.
type ExtractResult struct {
	Payload    string
	Confidence bitcodec.Confidence
	Agreement  float64
	FramesRead int
}

// ProcessExtract iterates a bounded prefix of InputPath's frames, recovers
// one majority-vote bit stream via internal/watermark, and decodes it to
// text.
//
// With ExpectedBits set, blocks are folded onto the known message period as
// they are read. In sentinel mode the message period is unknown until the
// sentinel is located, so votes are first accumulated per block index and
// folded onto the discovered period afterwards; folding early with a wrong
// period would smear each tile's bits across unrelated accumulators.
func ProcessExtract(ctx context.Context, p ExtractParams, rep reporter.Reporter, progress ProgressFunc) (*ExtractResult, *JobError) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}

	props, err := probe.Probe(p.InputPath)
	if err != nil {
		return nil, fail("decoder_error", "probe failed: %v", err)
	}

	carriers := p.Carrier.Channels()
	sentinelMode := p.ExpectedBits <= 0
	var n int
	if sentinelMode {
		maxMessage := p.PayloadMaxBytes*8 + bitcodec.ChecksumBitLen + len(bitcodec.Sentinel)
		n = p.Redundancy * maxMessage
		if capacity := watermark.Capacity(props.Height, props.Width, carriers); n > capacity {
			n = capacity
		}
	} else {
		n = p.ExpectedBits + bitcodec.ChecksumBitLen
	}
	if n == 0 {
		return &ExtractResult{Confidence: bitcodec.ConfidenceLow}, nil
	}

	reader, err := rawvideo.OpenReader(p.InputPath, props.Width, props.Height)
	if err != nil {
		return nil, fail("decoder_error", "open input: %v", err)
	}
	defer reader.Close()

	redundancy := p.Redundancy
	if sentinelMode {
		redundancy = 1 // one raw vote per block index until the period is known
	}
	wmParams := watermark.Params{
		Strength:   p.Strength,
		Redundancy: redundancy,
		CoeffRow:   p.CoeffRow,
		CoeffCol:   p.CoeffCol,
		Carriers:   carriers,
	}
	extraction := watermark.NewExtraction(n, wmParams)

	every := p.ProgressEveryNFrames
	if every < 1 {
		every = 1
	}

	var k int
	for {
		if p.MaxFrames > 0 && k >= p.MaxFrames {
			break
		}
		if ctx.Err() != nil {
			return nil, fail("shutdown", "worker pool is shutting down at frame %d", k)
		}

		img, rerr := reader.NextFrame()
		if rerr == io.EOF {
			if jerr := checkDecoderExit(reader, k, props.FrameCount); jerr != nil {
				return nil, jerr
			}
			break
		}
		if rerr != nil {
			return nil, fail("frame_processing_failed", "frame %d: decode: %v", k, rerr)
		}

		planes := watermark.ExtractPlanes(img)
		extraction.Observe(planes)
		k++

		if k%every == 0 {
			reportProgress(progress, rep, k, props.FrameCount)
		}
		if extraction.Converged(p.ConvergenceVotes, p.ConvergenceAgreement) {
			break
		}
	}

	bits, agreement := extraction.Resolve()
	if sentinelMode {
		idx := bitcodec.FindSentinel(bits)
		if idx < 0 {
			if progress != nil {
				progress(100, "no sentinel found")
			}
			return &ExtractResult{Confidence: bitcodec.ConfidenceLow, Agreement: agreement, FramesRead: k}, nil
		}
		bits, agreement = extraction.FoldResolve(idx + len(bitcodec.Sentinel))
		bits = bits[:idx]
	}

	text, printable := bitcodec.Decode(bits)
	confidence := bitcodec.ConfidenceFromAgreement(agreement)
	if !printable {
		text = ""
		confidence = bitcodec.ConfidenceLow
	}

	if progress != nil {
		progress(100, fmt.Sprintf("read %d frames", k))
	}
	rep.ProcessingProgress(reporter.ProgressSnapshot{Percent: 100, FramesDone: k, FramesTotal: props.FrameCount})

	return &ExtractResult{Payload: text, Confidence: confidence, Agreement: agreement, FramesRead: k}, nil
}

// Estimate wraps internal/estimate for a probed input.
func Estimate(inputPath string, payloadLen int, strength float32) (estimate.Estimate, error) {
	props, err := probe.Probe(inputPath)
	if err != nil {
		return estimate.Estimate{}, fmt.Errorf("probe failed: %w", err)
	}
	metadataComplete := props.Width > 0 && props.Height > 0 && props.FrameCount > 0
	return estimate.Predict(props.FrameCount, props.Width, props.Height, payloadLen, metadataComplete), nil
}
