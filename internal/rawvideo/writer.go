package rawvideo

import (
	"fmt"
	"image"
	"io"
	"os/exec"
)

// Writer streams raw RGB24 frames to ffmpeg, which re-encodes them with the
// requested codec, fps, and dimensions.
type Writer struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	width  int
	height int
}

// OpenWriter starts an ffmpeg process that re-encodes raw RGB24 frames piped
// to its stdin into outPath using the given codec, matching the input's fps
// and dimensions.
func OpenWriter(outPath string, width, height int, fps float64, codec string) (*Writer, error) {
	cmd := exec.Command("ffmpeg",
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", fmt.Sprintf("%g", fps),
		"-i", "pipe:0",
		"-c:v", codec,
		"-pix_fmt", "yuv420p",
		outPath,
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("rawvideo: stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("rawvideo: start encoder: %w", err)
	}

	return &Writer{cmd: cmd, stdin: stdin, width: width, height: height}, nil
}

// WriteFrame writes one RGBA frame's RGB24 bytes to the encoder's stdin.
func (w *Writer) WriteFrame(img *image.RGBA) error {
	n := w.width * w.height
	buf := make([]byte, n*3)
	for i := 0; i < n; i++ {
		off := i * 4
		buf[i*3] = img.Pix[off]
		buf[i*3+1] = img.Pix[off+1]
		buf[i*3+2] = img.Pix[off+2]
	}
	_, err := w.stdin.Write(buf)
	return err
}

// Close finishes the stream and waits for the encoder to exit.
func (w *Writer) Close() error {
	if err := w.stdin.Close(); err != nil {
		_ = w.cmd.Wait()
		return err
	}
	return w.cmd.Wait()
}

// Abort kills the encoder process without waiting for a clean finish, used
// when a frame-processing error requires discarding a partially written
// output.
func (w *Writer) Abort() {
	_ = w.stdin.Close()
	if w.cmd.Process != nil {
		_ = w.cmd.Process.Kill()
	}
	_ = w.cmd.Wait()
}
