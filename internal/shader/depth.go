package shader

import (
	"image/color"

	"tinyrender/internal/camera"
	"tinyrender/internal/mathutil"
)

// DefaultDepthRange is the clip-space half depth mapped onto black..white.
const DefaultDepthRange = 1.0

// Depth writes the interpolated clip-space z as gray: -Range is black,
// +Range is white. It is the shader of the light pass.
type Depth struct {
	mesh  Mesh
	mvp   mathutil.Mat4
	Range float64
	v     Varyings
}

func NewDepth(mesh Mesh, frame camera.Frame) *Depth {
	return &Depth{mesh: mesh, mvp: frame.MVP(), Range: DefaultDepthRange}
}

func (s *Depth) Vertex(face, slot int) mathutil.Vec4 {
	clip := s.mvp.MulVec4(s.mesh.Vert(face, slot).Point())
	s.v.Depth[slot] = clip[2]
	return clip
}

func (s *Depth) Fragment(bar mathutil.Vec3, _, _ int) (color.NRGBA, bool) {
	r := s.Range
	if r <= 0 {
		r = DefaultDepthRange
	}
	z := Interp1(s.v.Depth, bar)
	g := clamp255(255 * (z + r) / (2 * r))
	return color.NRGBA{R: g, G: g, B: g, A: 255}, false
}
