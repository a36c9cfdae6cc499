// Package watermark applies the block DCT engine across a frame's carrier
// channels with redundant placement, per-channel raster block visiting, and
// majority-vote recovery.
package watermark

import (
	"image"
	"image/color"
)

// Plane is a single-channel H x W grid of samples in [0,255].
type Plane struct {
	H, W int
	Data []uint8 // row-major, length H*W
}

func newPlane(h, w int) *Plane {
	return &Plane{H: h, W: w, Data: make([]uint8, h*w)}
}

func (p *Plane) at(r, c int) uint8     { return p.Data[r*p.W+c] }
func (p *Plane) set(r, c int, v uint8) { p.Data[r*p.W+c] = v }

// FramePlanes holds the Y, Cr, Cb planes of a frame extracted from an
// image.Image. Channel order is fixed: Y, Cr, Cb.
type FramePlanes struct {
	Y, Cr, Cb *Plane
}

// Channel returns the plane for the named channel ("Y", "Cr", or "Cb").
func (fp *FramePlanes) Channel(name string) *Plane {
	switch name {
	case "Y":
		return fp.Y
	case "Cr":
		return fp.Cr
	case "Cb":
		return fp.Cb
	default:
		return nil
	}
}

// ExtractPlanes converts an RGBA-family image to Y/Cr/Cb planes using the
// standard full-range BT.601 conversion (image/color.RGBToYCbCr).
func ExtractPlanes(img image.Image) *FramePlanes {
	bounds := img.Bounds()
	h, w := bounds.Dy(), bounds.Dx()
	fp := &FramePlanes{Y: newPlane(h, w), Cr: newPlane(h, w), Cb: newPlane(h, w)}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			yy, cb, cr := color.RGBToYCbCr(uint8(r>>8), uint8(g>>8), uint8(b>>8))
			fp.Y.set(y, x, yy)
			fp.Cr.set(y, x, cr)
			fp.Cb.set(y, x, cb)
		}
	}
	return fp
}

// ToRGBA reassembles Y/Cr/Cb planes (after in-place block modification)
// into an *image.RGBA frame.
func (fp *FramePlanes) ToRGBA() *image.RGBA {
	h, w := fp.Y.H, fp.Y.W
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b := color.YCbCrToRGB(fp.Y.at(y, x), fp.Cb.at(y, x), fp.Cr.at(y, x))
			out.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return out
}
