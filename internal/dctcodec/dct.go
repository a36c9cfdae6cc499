// Package dctcodec implements the 8x8 orthonormal block DCT and the
// coefficient-parity embed/extract scheme used to carry one bit per block.
package dctcodec

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// BlockSize is the side length of the square block the codec operates on.
const BlockSize = 8

var basis *mat.Dense
var basisT *mat.Dense

func init() {
	basis = orthonormalBasis(BlockSize)
	basisT = mat.DenseCopyOf(basis.T())
}

// orthonormalBasis builds the n x n orthonormal DCT-II basis matrix B such
// that Y = B * X * B^T is the 2-D DCT-II and X = B^T * Y * B is its inverse,
// matching scipy.fft.dctn(norm='ortho') / cv2.dct conventions.
func orthonormalBasis(n int) *mat.Dense {
	b := mat.NewDense(n, n, nil)
	for k := 0; k < n; k++ {
		var alpha float64
		if k == 0 {
			alpha = math.Sqrt(1.0 / float64(n))
		} else {
			alpha = math.Sqrt(2.0 / float64(n))
		}
		for i := 0; i < n; i++ {
			v := alpha * math.Cos(math.Pi/float64(n)*(float64(i)+0.5)*float64(k))
			b.Set(k, i, v)
		}
	}
	return b
}

// Forward2D computes the 2-D orthonormal DCT-II of an 8x8 block.
func Forward2D(block *mat.Dense) *mat.Dense {
	var tmp, out mat.Dense
	tmp.Mul(basis, block)
	out.Mul(&tmp, basisT)
	return &out
}

// Inverse2D computes the 2-D orthonormal DCT-III (inverse of Forward2D).
func Inverse2D(coeffs *mat.Dense) *mat.Dense {
	var tmp, out mat.Dense
	tmp.Mul(basisT, coeffs)
	out.Mul(&tmp, basis)
	return &out
}

// NewBlock builds an 8x8 matrix of samples centered around zero (input
// minus 128) from a row-major slice of BlockSize*BlockSize uint8 samples.
func NewBlock(samples []uint8) *mat.Dense {
	data := make([]float64, BlockSize*BlockSize)
	for i, s := range samples {
		data[i] = float64(s) - 128
	}
	return mat.NewDense(BlockSize, BlockSize, data)
}

// BlockSamples converts a decoded (post-IDCT) block back to clamped uint8
// samples in [0,255], reversing the NewBlock centering.
func BlockSamples(block *mat.Dense) []uint8 {
	out := make([]uint8, BlockSize*BlockSize)
	for r := 0; r < BlockSize; r++ {
		for c := 0; c < BlockSize; c++ {
			v := block.At(r, c) + 128
			out[r*BlockSize+c] = clampU8(v)
		}
	}
	return out
}

func clampU8(v float64) uint8 {
	rv := math.Round(v)
	if rv < 0 {
		return 0
	}
	if rv > 255 {
		return 255
	}
	return uint8(rv)
}
