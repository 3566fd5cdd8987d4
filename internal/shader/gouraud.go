package shader

import (
	"image/color"

	"tinyrender/internal/camera"
	"tinyrender/internal/mathutil"
)

// Gouraud computes max(0, n·l) at each vertex from the mesh normals and
// interpolates the intensity across the triangle.
type Gouraud struct {
	mesh  Mesh
	mvp   mathutil.Mat4
	light mathutil.Vec3
	v     Varyings
}

func NewGouraud(mesh Mesh, frame camera.Frame, light mathutil.Vec3) *Gouraud {
	return &Gouraud{mesh: mesh, mvp: frame.MVP(), light: light.Normalize()}
}

func (s *Gouraud) Vertex(face, slot int) mathutil.Vec4 {
	s.v.Intensity[slot] = max(0, s.mesh.Normal(face, slot).Normalize().Dot(s.light))
	s.v.UV[slot] = s.mesh.UV(face, slot)
	return s.mvp.MulVec4(s.mesh.Vert(face, slot).Point())
}

func (s *Gouraud) Fragment(bar mathutil.Vec3, _, _ int) (color.NRGBA, bool) {
	uv := Interp2(s.v.UV, bar)
	return Modulate(s.mesh.Diffuse(uv), Interp1(s.v.Intensity, bar)), false
}
