package pipeline

import (
	"errors"
	"fmt"
	"math"

	"tinyrender/internal/camera"
	"tinyrender/internal/mathutil"
	"tinyrender/internal/raster"
	"tinyrender/internal/shader"
)

// ErrShadowNotReady is returned by the eye pass of a shadow render when the
// light pass has not produced a shadow buffer.
var ErrShadowNotReady = errors.New("pipeline: shadow buffer not ready")

// ShadowLookup selects which pixel of the shadow buffer a fragment reads.
type ShadowLookup string

const (
	// LookupEye indexes the shadow buffer at the fragment's eye-pass pixel.
	// The two passes have different cameras, so this only lines up where
	// they happen to agree; it is kept as the default rendering.
	LookupEye ShadowLookup = "eye"
	// LookupReproject projects the fragment into the light pass's screen
	// space and reads that pixel.
	LookupReproject ShadowLookup = "reproject"
)

// ParseShadowLookup accepts "" (eye), "eye" and "reproject".
func ParseShadowLookup(s string) (ShadowLookup, error) {
	switch ShadowLookup(s) {
	case "", LookupEye:
		return LookupEye, nil
	case LookupReproject:
		return LookupReproject, nil
	}
	return "", fmt.Errorf("pipeline: unknown shadow lookup %q", s)
}

// DefaultShadowBias is added to a fragment's normalized light depth before
// it is compared with the buffer.
const DefaultShadowBias = 0.01

// ShadowBuffer is the light pass's depth normalized to [0,1] over the drawn
// pixels as (d - min)/(max - min). Undrawn pixels hold 0. It is read-only once
// built.
type ShadowBuffer struct {
	w, h   int
	values []float64
	lo, hi float64
	light  camera.Frame

	Lookup ShadowLookup
	Bias   float64
}

// NewShadowBuffer normalizes zb, the depth of a light pass rendered with the
// light frame.
func NewShadowBuffer(zb *raster.DepthBuffer, light camera.Frame) *ShadowBuffer {
	sb := &ShadowBuffer{
		w:      zb.Width(),
		h:      zb.Height(),
		values: make([]float64, len(zb.Z)),
		light:  light,
		Lookup: LookupEye,
		Bias:   DefaultShadowBias,
	}
	lo, hi, ok := zb.Range()
	if !ok {
		return sb
	}
	sb.lo, sb.hi = lo, hi
	for i, d := range zb.Z {
		if math.IsInf(d, -1) {
			continue
		}
		sb.values[i] = sb.Normalize(d)
	}
	return sb
}

// Ready reports whether sb was built from a light pass.
func (sb *ShadowBuffer) Ready() bool {
	return sb != nil && sb.values != nil
}

func (sb *ShadowBuffer) Width() int  { return sb.w }
func (sb *ShadowBuffer) Height() int { return sb.h }

// Values returns the normalized buffer, row 0 at the bottom.
func (sb *ShadowBuffer) Values() []float64 { return sb.values }

// At returns the normalized depth at (x, y), 0 when out of range.
func (sb *ShadowBuffer) At(x, y int) float64 {
	if x < 0 || y < 0 || x >= sb.w || y >= sb.h {
		return 0
	}
	return sb.values[y*sb.w+x]
}

// Normalize maps a light-space depth into the buffer's [0,1] range. A light
// pass with a single depth maps everything to 1.
func (sb *ShadowBuffer) Normalize(d float64) float64 {
	if sb.hi <= sb.lo {
		return 1
	}
	return (d - sb.lo) / (sb.hi - sb.lo)
}

// forModel returns the ShadowMap of one object placed with model.
func (sb *ShadowBuffer) forModel(model mathutil.Mat4) shader.ShadowMap {
	f := sb.light.WithModel(model)
	return &shadowView{sb: sb, mvp: f.MVP(), viewport: f.Viewport}
}

type shadowView struct {
	sb       *ShadowBuffer
	mvp      mathutil.Mat4
	viewport mathutil.Mat4
}

// Visibility is 1 when the fragment is at least as close to the light as
// the depth recorded in the buffer (with bias), else 0.
func (v *shadowView) Visibility(pos mathutil.Vec3, x, y int) float64 {
	clip := v.mvp.MulVec4(pos.Point())
	if v.sb.Lookup == LookupReproject {
		s := v.viewport.MulVec4(clip).Project()
		x, y = int(math.Round(s[0])), int(math.Round(s[1]))
	}
	if v.sb.Normalize(clip[2])+v.sb.Bias >= v.sb.At(x, y) {
		return 1
	}
	return 0
}
