package raster

import (
	"image"
	"image/color"
	"math"
)

// Target is a writable pixel grid. Row 0 is the bottom of the picture, the
// way screen-space y grows.
type Target interface {
	Width() int
	Height() int
	Get(x, y int) color.NRGBA
	Set(x, y int, c color.NRGBA)
}

// FrameBuffer holds the rendering target as a flat slice for cache locality.
type FrameBuffer struct {
	w, h  int
	Color []uint8 // RGBA interleaved, len = W*H*4, row 0 = bottom
}

// NewFrameBuffer allocates a transparent black color buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	return &FrameBuffer{w: w, h: h, Color: make([]uint8, w*h*4)}
}

func (fb *FrameBuffer) Width() int  { return fb.w }
func (fb *FrameBuffer) Height() int { return fb.h }

func (fb *FrameBuffer) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < fb.w && y < fb.h
}

// Get returns the pixel at (x, y); out-of-range reads are transparent black.
func (fb *FrameBuffer) Get(x, y int) color.NRGBA {
	if !fb.inside(x, y) {
		return color.NRGBA{}
	}
	i := (y*fb.w + x) * 4
	p := fb.Color[i : i+4 : i+4]
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Set writes the pixel at (x, y); out-of-range writes are ignored.
func (fb *FrameBuffer) Set(x, y int, c color.NRGBA) {
	if !fb.inside(x, y) {
		return
	}
	i := (y*fb.w + x) * 4
	p := fb.Color[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
}

// Fill sets every pixel to c.
func (fb *FrameBuffer) Fill(c color.NRGBA) {
	for i := 0; i < len(fb.Color); i += 4 {
		fb.Color[i], fb.Color[i+1], fb.Color[i+2], fb.Color[i+3] = c.R, c.G, c.B, c.A
	}
}

// ToNRGBA converts the buffer to an image with the top row first.
func (fb *FrameBuffer) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.w, fb.h))
	stride := fb.w * 4
	for y := 0; y < fb.h; y++ {
		src := fb.Color[y*stride : (y+1)*stride]
		copy(img.Pix[(fb.h-1-y)*img.Stride:], src)
	}
	return img
}

// DepthBuffer is a per-pixel depth record, initialized to -inf. Larger depth
// values are closer to the camera.
type DepthBuffer struct {
	w, h int
	Z    []float64 // len = W*H, row 0 = bottom
}

// NewDepthBuffer allocates a depth buffer with every entry at -inf.
func NewDepthBuffer(w, h int) *DepthBuffer {
	z := make([]float64, w*h)
	for i := range z {
		z[i] = math.Inf(-1)
	}
	return &DepthBuffer{w: w, h: h, Z: z}
}

func (zb *DepthBuffer) Width() int  { return zb.w }
func (zb *DepthBuffer) Height() int { return zb.h }

// At returns the depth at (x, y), -inf when out of range.
func (zb *DepthBuffer) At(x, y int) float64 {
	if x < 0 || y < 0 || x >= zb.w || y >= zb.h {
		return math.Inf(-1)
	}
	return zb.Z[y*zb.w+x]
}

// Set stores d at (x, y); out-of-range writes are ignored.
func (zb *DepthBuffer) Set(x, y int, d float64) {
	if x < 0 || y < 0 || x >= zb.w || y >= zb.h {
		return
	}
	zb.Z[y*zb.w+x] = d
}

// Written reports whether anything was drawn at (x, y).
func (zb *DepthBuffer) Written(x, y int) bool {
	return !math.IsInf(zb.At(x, y), -1)
}

// Range returns the smallest and largest written depth. ok is false when
// nothing has been drawn.
func (zb *DepthBuffer) Range() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, d := range zb.Z {
		if math.IsInf(d, -1) {
			continue
		}
		lo = min(lo, d)
		hi = max(hi, d)
		ok = true
	}
	return lo, hi, ok
}
