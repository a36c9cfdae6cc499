// Package rawvideo streams decoded video frames to and from ffmpeg over
// pipes, one frame at a time, so a worker never holds more than a single
// decoded frame and its encode buffer in memory.
package rawvideo

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os/exec"
	"sync"
)

// Reader decodes a container's video stream to raw RGB24 frames by piping
// through ffmpeg, reusing a single frame buffer across calls.
type Reader struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	buf    *bufio.Reader
	width  int
	height int
	frame  []byte

	closeOnce sync.Once
	closeErr  error
}

// OpenReader starts an ffmpeg process decoding path's video stream to raw
// RGB24 frames at the given dimensions.
func OpenReader(path string, width, height int) (*Reader, error) {
	cmd := exec.Command("ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-map", "0:v:0",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("rawvideo: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("rawvideo: start decoder: %w", err)
	}

	return &Reader{
		cmd:    cmd,
		stdout: stdout,
		buf:    bufio.NewReaderSize(stdout, 1<<20),
		width:  width,
		height: height,
		frame:  make([]byte, width*height*3),
	}, nil
}

// NextFrame decodes the next frame into a newly allocated *image.RGBA and
// returns it; only the raw byte buffer is reused across calls. Returns
// io.EOF once the stream is exhausted.
func (r *Reader) NextFrame() (*image.RGBA, error) {
	if _, err := io.ReadFull(r.buf, r.frame); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	n := r.width * r.height
	for i := 0; i < n; i++ {
		off := i * 3
		img.Pix[i*4] = r.frame[off]
		img.Pix[i*4+1] = r.frame[off+1]
		img.Pix[i*4+2] = r.frame[off+2]
		img.Pix[i*4+3] = 0xff
	}
	return img, nil
}

// Close releases the decoder process and its pipe, waiting for ffmpeg to
// exit and returning its exit error if any. Safe to call more than once
// (e.g. once explicitly to inspect the exit status, once more via defer as
// a safety net on an early-return path) — only the first call's result is
// kept. A non-nil error here paired with fewer frames read than the probed
// frame count means the decoder died partway through, not a clean
// end-of-stream.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() {
		_ = r.stdout.Close()
		r.closeErr = r.cmd.Wait()
	})
	return r.closeErr
}
