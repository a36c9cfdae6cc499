package framegrab

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func syntheticFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func TestDumpWritesFullAndThumbnail(t *testing.T) {
	dir := t.TempDir()
	img := syntheticFrame(640, 480)

	path, err := Dump(dir, "job-1", 42, img)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}

	wantPath := filepath.Join(dir, "job-1_frame000042.png")
	if path != wantPath {
		t.Errorf("path = %q, want %q", path, wantPath)
	}

	decoded := decodePNG(t, path)
	if decoded.Bounds().Dx() != 640 || decoded.Bounds().Dy() != 480 {
		t.Errorf("full dump dims = %v, want 640x480", decoded.Bounds())
	}

	thumbPath := filepath.Join(dir, "job-1_frame000042_thumb.png")
	thumb := decodePNG(t, thumbPath)
	if thumb.Bounds().Dx() > ThumbnailMaxWidth || thumb.Bounds().Dy() > ThumbnailMaxWidth {
		t.Errorf("thumbnail dims = %v, want both axes <= %d", thumb.Bounds(), ThumbnailMaxWidth)
	}
}

func TestDumpSmallFrameSkipsDownscale(t *testing.T) {
	dir := t.TempDir()
	img := syntheticFrame(32, 32)

	if _, err := Dump(dir, "job-2", 0, img); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	thumb := decodePNG(t, filepath.Join(dir, "job-2_frame000000_thumb.png"))
	if thumb.Bounds().Dx() != 32 || thumb.Bounds().Dy() != 32 {
		t.Errorf("thumbnail of a frame already under ThumbnailMaxWidth should be untouched, got %v", thumb.Bounds())
	}
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img
}
