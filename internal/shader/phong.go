package shader

import (
	"image/color"
	"math"

	"tinyrender/internal/camera"
	"tinyrender/internal/mathutil"
)

// PhongParams weight the terms of the Phong model:
// out = Ambient + c·shadow·(Diffuse·diff + Specular·spec), per channel.
type PhongParams struct {
	Ambient  float64
	Diffuse  float64
	Specular float64
}

var (
	// DefaultPhong is used without a shadow map.
	DefaultPhong = PhongParams{Ambient: 5, Diffuse: 1, Specular: 0.6}
	// ShadowPhong brightens the lit side to balance the darkened shadows.
	ShadowPhong = PhongParams{Ambient: 20, Diffuse: 1.2, Specular: 0.6}
)

// Phong shades per fragment with a normal taken from a tangent-space normal
// map. The tangent frame is rebuilt for each fragment from the triangle's
// NDC edges and texture-coordinate deltas. With a ShadowMap set, the lit
// terms are scaled by 0.3 + 0.7·visibility.
type Phong struct {
	mesh   Mesh
	mvp    mathutil.Mat4
	mit    mathutil.Mat4 // inverse transpose of mvp, for normals
	light  mathutil.Vec3 // light direction after mvp
	Params PhongParams
	Shadow ShadowMap
	v      Varyings
}

// NewPhong builds a Phong shader for frame; light is the object-space
// direction towards the light.
func NewPhong(mesh Mesh, frame camera.Frame, light mathutil.Vec3) *Phong {
	mvp := frame.MVP()
	mit, _ := mvp.InverseTranspose()
	return &Phong{
		mesh:   mesh,
		mvp:    mvp,
		mit:    mit,
		light:  mvp.MulVec4(light.Dir()).XYZ().Normalize(),
		Params: DefaultPhong,
	}
}

func (s *Phong) Vertex(face, slot int) mathutil.Vec4 {
	pos := s.mesh.Vert(face, slot)
	s.v.Pos[slot] = pos
	s.v.UV[slot] = s.mesh.UV(face, slot)
	s.v.Normal[slot] = s.mit.MulVec4(s.mesh.Normal(face, slot).Dir()).XYZ()

	clip := s.mvp.MulVec4(pos.Point())
	s.v.NDC[slot] = clip.Project()
	return clip
}

// tangentNormal maps the normal-map sample at uv into the Darboux frame
// around the interpolated normal bn.
func (s *Phong) tangentNormal(bn mathutil.Vec3, uv mathutil.Vec2) mathutil.Vec3 {
	ndc, uvs := s.v.NDC, s.v.UV
	a := mathutil.Mat3FromRows(ndc[1].Sub(ndc[0]), ndc[2].Sub(ndc[0]), bn)
	ai, ok := a.Inverse()
	if !ok {
		// Edge-on triangle: no usable tangent plane.
		return bn
	}
	i := ai.MulVec3(mathutil.Vec3{uvs[1][0] - uvs[0][0], uvs[2][0] - uvs[0][0], 0})
	j := ai.MulVec3(mathutil.Vec3{uvs[1][1] - uvs[0][1], uvs[2][1] - uvs[0][1], 0})
	b := mathutil.Mat3FromCols(i.Normalize(), j.Normalize(), bn)
	n := b.MulVec3(s.mesh.NormalMap(uv)).Normalize()
	if n.Len() == 0 {
		return bn
	}
	return n
}

func (s *Phong) Fragment(bar mathutil.Vec3, x, y int) (color.NRGBA, bool) {
	bn := Interp3(s.v.Normal, bar).Normalize()
	uv := Interp2(s.v.UV, bar)
	n := s.tangentNormal(bn, uv)
	l := s.light

	diff := max(0, n.Dot(l))
	r := n.Scale(2 * n.Dot(l)).Sub(l).Normalize()
	spec := math.Pow(max(r[2], 0), 5+s.mesh.Specular(uv))

	shadow := 1.0
	if s.Shadow != nil {
		shadow = 0.3 + 0.7*s.Shadow.Visibility(Interp3(s.v.Pos, bar), x, y)
	}

	p := s.Params
	c := s.mesh.Diffuse(uv)
	lit := shadow * (p.Diffuse*diff + p.Specular*spec)
	return color.NRGBA{
		R: clamp255(p.Ambient + float64(c.R)*lit),
		G: clamp255(p.Ambient + float64(c.G)*lit),
		B: clamp255(p.Ambient + float64(c.B)*lit),
		A: c.A,
	}, false
}
