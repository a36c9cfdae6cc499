// Package framegrab writes a single diagnostic frame to PNG when a job
// aborts mid-video, so the offending frame can be inspected alongside the
// run log without re-running the job. Alongside the full-resolution dump it
// writes a small thumbnail, scaled with golang.org/x/image/draw, since the
// run log only needs enough detail to spot which frame misbehaved.
package framegrab

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// ThumbnailMaxWidth bounds the longer axis of the diagnostic thumbnail
// written alongside the full-resolution frame dump.
const ThumbnailMaxWidth = 320

// Dump writes img to <dir>/<jobID>_frame<index>.png, plus a scaled-down
// <jobID>_frame<index>_thumb.png, and returns the full-resolution path.
func Dump(dir, jobID string, frameIndex int, img image.Image) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("framegrab: create dir: %w", err)
	}

	name := fmt.Sprintf("%s_frame%06d.png", jobID, frameIndex)
	path := filepath.Join(dir, name)
	if err := writePNG(path, img); err != nil {
		return "", err
	}

	thumbName := fmt.Sprintf("%s_frame%06d_thumb.png", jobID, frameIndex)
	thumbPath := filepath.Join(dir, thumbName)
	if err := writePNG(thumbPath, thumbnail(img)); err != nil {
		return "", err
	}

	return path, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("framegrab: create file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("framegrab: encode png: %w", err)
	}
	return nil
}

// thumbnail scales img down so its longer axis is at most ThumbnailMaxWidth,
// using a Catmull-Rom kernel for a smoother result than nearest-neighbor.
func thumbnail(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || (w <= ThumbnailMaxWidth && h <= ThumbnailMaxWidth) {
		return img
	}

	scale := float64(ThumbnailMaxWidth) / float64(w)
	if h > w {
		scale = float64(ThumbnailMaxWidth) / float64(h)
	}
	tw, th := int(float64(w)*scale), int(float64(h)*scale)
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
