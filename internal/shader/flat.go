package shader

import (
	"image/color"

	"tinyrender/internal/camera"
	"tinyrender/internal/mathutil"
)

// Flat lights each triangle with its face normal:
// color = diffuse(uv) × max(0, n·l).
type Flat struct {
	mesh  Mesh
	mvp   mathutil.Mat4
	light mathutil.Vec3
	v     Varyings
}

// NewFlat returns a flat shader for frame with light as the object-space
// direction towards the light.
func NewFlat(mesh Mesh, frame camera.Frame, light mathutil.Vec3) *Flat {
	return &Flat{mesh: mesh, mvp: frame.MVP(), light: light.Normalize()}
}

func (s *Flat) Vertex(face, slot int) mathutil.Vec4 {
	a, b, c := s.mesh.Vert(face, 0), s.mesh.Vert(face, 1), s.mesh.Vert(face, 2)
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	s.v.Intensity[slot] = max(0, n.Dot(s.light))
	s.v.UV[slot] = s.mesh.UV(face, slot)
	return s.mvp.MulVec4(s.mesh.Vert(face, slot).Point())
}

func (s *Flat) Fragment(bar mathutil.Vec3, _, _ int) (color.NRGBA, bool) {
	uv := Interp2(s.v.UV, bar)
	return Modulate(s.mesh.Diffuse(uv), s.v.Intensity[0]), false
}
