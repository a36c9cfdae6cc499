package dctcodec

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// QuantStep computes q = round(max(10, 25*s)), the quantization step used to
// force coefficient parity at a given embedding strength s.
func QuantStep(strength float32) float64 {
	q := 25.0 * float64(strength)
	if q < 10 {
		q = 10
	}
	return math.Round(q)
}

// EmbedBit modifies block in place at coefficient position (row, col) so
// that the recovered parity equals bit, using quantization step q. The
// block must already be in the DCT domain (output of Forward2D).
func EmbedBit(block *mat.Dense, row, col int, bit int, q float64) {
	y := block.At(row, col)
	k := math.Round(y / q)
	ki := int64(k)

	wantOdd := bit != 0
	isOdd := ki%2 != 0
	if isOdd != wantOdd {
		// Move to the nearer of k-1, k+1; ties go up.
		upDist := math.Abs((k+1)*q - y)
		downDist := math.Abs((k-1)*q - y)
		if downDist < upDist {
			ki--
		} else {
			ki++
		}
	}
	block.Set(row, col, float64(ki)*q)
}

// ExtractBit reads the parity bit encoded at coefficient position (row, col)
// of a DCT-domain block using quantization step q.
func ExtractBit(block *mat.Dense, row, col int, q float64) int {
	y := block.At(row, col)
	k := int64(math.Round(y / q))
	return int(((k % 2) + 2) % 2)
}
