package watermark

import (
	"image"
	"image/color"
	"testing"
)

// syntheticFrame builds a textured RGBA image of the given size, giving
// embed/extract distinct per-pixel content to work against.
func syntheticFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := uint8((x*7 + y*3) % 256)
			g := uint8((x*5 + y*11) % 256)
			b := uint8((x*13 + y*2) % 256)
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}

func TestEmbedExtractSingleFrameRoundTrip(t *testing.T) {
	img := syntheticFrame(64, 64)
	fp := ExtractPlanes(img)

	bits := []int{1, 0, 1, 1, 0, 0, 1, 0}
	params := Params{
		Strength:   0.2,
		Redundancy: 3,
		CoeffRow:   4,
		CoeffCol:   3,
		Carriers:   []string{"Y"},
	}

	if err := Embed(fp, bits, params); err != nil {
		t.Fatalf("Embed: %v", err)
	}

	extraction := NewExtraction(len(bits), params)
	extraction.Observe(fp)
	got, agreement := extraction.Resolve()

	for i, want := range bits {
		if got[i] != want {
			t.Errorf("bit %d: got %d, want %d (agreement %.2f)", i, got[i], want, agreement)
		}
	}
}

func TestRawExtractionFoldRecoversUnknownPeriod(t *testing.T) {
	img := syntheticFrame(128, 128)
	fp := ExtractPlanes(img)

	bits := []int{1, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0, 1}
	params := Params{
		Strength:   0.2,
		Redundancy: 3,
		CoeffRow:   4,
		CoeffCol:   3,
		Carriers:   []string{"Y"},
	}
	if err := Embed(fp, bits, params); err != nil {
		t.Fatalf("Embed: %v", err)
	}

	// Reader that does not know the message length: one raw vote per block
	// index, folded onto the period once it is known.
	raw := params
	raw.Redundancy = 1
	extraction := NewExtraction(len(bits)*params.Redundancy, raw)
	extraction.Observe(fp)

	got, _ := extraction.FoldResolve(len(bits))
	if len(got) != len(bits) {
		t.Fatalf("FoldResolve length = %d, want %d", len(got), len(bits))
	}
	for i, want := range bits {
		if got[i] != want {
			t.Errorf("bit %d: got %d, want %d", i, got[i], want)
		}
	}
}

func TestEmbedCapacityInsufficient(t *testing.T) {
	img := syntheticFrame(16, 16)
	fp := ExtractPlanes(img)

	bits := make([]int, 100)
	params := Params{Strength: 0.1, Redundancy: 3, CoeffRow: 4, CoeffCol: 3, Carriers: []string{"Y"}}

	err := Embed(fp, bits, params)
	if err == nil {
		t.Fatal("expected capacity error, got nil")
	}
}

func TestCapacity(t *testing.T) {
	tests := []struct {
		h, w     int
		carriers []string
		want     int
	}{
		{64, 64, []string{"Y"}, 64},
		{64, 64, []string{"Y", "Cr", "Cb"}, 192},
		{65, 65, []string{"Y"}, 64}, // partial block discarded
		{7, 64, []string{"Y"}, 0},
	}
	for _, tt := range tests {
		if got := Capacity(tt.h, tt.w, tt.carriers); got != tt.want {
			t.Errorf("Capacity(%d,%d,%v) = %d, want %d", tt.h, tt.w, tt.carriers, got, tt.want)
		}
	}
}
