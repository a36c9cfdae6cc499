package dctcodec

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestForwardInverseRoundTrip(t *testing.T) {
	samples := make([]uint8, BlockSize*BlockSize)
	for i := range samples {
		samples[i] = uint8((i*37 + 11) % 256)
	}
	block := NewBlock(samples)
	coeffs := Forward2D(block)
	recovered := Inverse2D(coeffs)
	got := BlockSamples(recovered)

	for i, want := range samples {
		if diff := int(got[i]) - int(want); diff < -1 || diff > 1 {
			t.Fatalf("sample %d: got %d, want %d (+/-1 rounding)", i, got[i], want)
		}
	}
}

func TestForward2DConstantBlockIsDC(t *testing.T) {
	samples := make([]uint8, BlockSize*BlockSize)
	for i := range samples {
		samples[i] = 128
	}
	block := NewBlock(samples)
	coeffs := Forward2D(block)

	for r := 0; r < BlockSize; r++ {
		for c := 0; c < BlockSize; c++ {
			if r == 0 && c == 0 {
				continue
			}
			if math.Abs(coeffs.At(r, c)) > 1e-9 {
				t.Errorf("coeff(%d,%d) = %v, want 0 for a flat block", r, c, coeffs.At(r, c))
			}
		}
	}
}

func TestEmbedExtractBitRoundTrip(t *testing.T) {
	q := QuantStep(0.1)
	for _, bit := range []int{0, 1} {
		block := mat.NewDense(BlockSize, BlockSize, nil)
		block.Set(4, 3, 17.0)
		EmbedBit(block, 4, 3, bit, q)
		got := ExtractBit(block, 4, 3, q)
		if got != bit {
			t.Errorf("bit %d: ExtractBit returned %d after EmbedBit", bit, got)
		}
	}
}

func TestQuantStepFloor(t *testing.T) {
	if got := QuantStep(0.01); got != 10 {
		t.Errorf("QuantStep(0.01) = %v, want 10 (floor)", got)
	}
	if got := QuantStep(1.0); got != 25 {
		t.Errorf("QuantStep(1.0) = %v, want 25", got)
	}
}
