package mesh

import (
	"image/color"
	"path/filepath"
	"strings"

	"tinyrender/internal/logging"
	"tinyrender/internal/mathutil"
	"tinyrender/internal/texture"
)

// Texture name suffixes looked up next to an OBJ file.
const (
	SuffixDiffuse       = "_diffuse"
	SuffixNormalTangent = "_nm_tangent"
	SuffixNormal        = "_nm"
	SuffixSpecular      = "_spec"
)

var white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// Model is a triangle mesh with its diffuse, tangent-space normal and
// specular maps. Any map may be missing; samplers then return neutral values.
type Model struct {
	*Geometry
	Name string
	// Filter applies to every map; the zero value samples nearest.
	Filter texture.Filter

	diffuse  *texture.Texture
	normal   *texture.Texture
	specular *texture.Texture
}

// Load parses the OBJ at path and resolves "<stem>_diffuse", "<stem>_nm_tangent"
// (or "<stem>_nm") and "<stem>_spec" through textures. A nil resolver indexes
// the OBJ's own directory.
func Load(path string, textures texture.Resolver) (*Model, error) {
	g, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	if textures == nil {
		textures = texture.NewCache(texture.BuildIndex(filepath.Dir(path)))
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m := &Model{
		Geometry: g,
		Name:     stem,
		diffuse:  textures.Resolve(stem + SuffixDiffuse),
		normal:   textures.Resolve(stem + SuffixNormalTangent),
		specular: textures.Resolve(stem + SuffixSpecular),
	}
	if m.normal == nil {
		m.normal = textures.Resolve(stem + SuffixNormal)
	}

	logging.Logger().Info("mesh loaded", "path", path,
		"verts", len(g.Verts), "faces", len(g.Faces), "uvs", len(g.UVs), "normals", len(g.Normals),
		"diffuse", m.diffuse != nil, "normal_map", m.normal != nil, "specular", m.specular != nil)
	return m, nil
}

// NewModel wraps already-parsed geometry and textures; any texture may be nil.
func NewModel(g *Geometry, diffuse, normal, specular *texture.Texture) *Model {
	return &Model{Geometry: g, diffuse: diffuse, normal: normal, specular: specular}
}

func (m *Model) NFaces() int {
	return len(m.Faces)
}

// Vert returns the object-space position of corner slot of face.
func (m *Model) Vert(face, slot int) mathutil.Vec3 {
	return m.Verts[m.Faces[face][slot].V]
}

// UV returns the texture coordinate of a corner, or (0, 0) when absent.
func (m *Model) UV(face, slot int) mathutil.Vec2 {
	t := m.Faces[face][slot].T
	if t < 0 {
		return mathutil.Vec2{}
	}
	return m.UVs[t]
}

// Normal returns the corner normal. Corners without one get the face normal.
func (m *Model) Normal(face, slot int) mathutil.Vec3 {
	n := m.Faces[face][slot].N
	if n < 0 {
		return m.FaceNormal(face)
	}
	return m.Normals[n]
}

// FaceNormal is the unit normal of face from its winding (counter-clockwise front).
func (m *Model) FaceNormal(face int) mathutil.Vec3 {
	a, b, c := m.Vert(face, 0), m.Vert(face, 1), m.Vert(face, 2)
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}

// Diffuse samples the diffuse map; white without one.
func (m *Model) Diffuse(uv mathutil.Vec2) color.NRGBA {
	if m.diffuse == nil {
		return white
	}
	return m.diffuse.Sample(uv[0], uv[1], m.Filter)
}

// NormalMap returns the tangent-space normal at uv, decoded from RGB as
// c/255·2−1; (0, 0, 1) without a map.
func (m *Model) NormalMap(uv mathutil.Vec2) mathutil.Vec3 {
	if m.normal == nil {
		return mathutil.Vec3{0, 0, 1}
	}
	c := m.normal.Sample(uv[0], uv[1], m.Filter)
	return mathutil.Vec3{
		float64(c.R)/255*2 - 1,
		float64(c.G)/255*2 - 1,
		float64(c.B)/255*2 - 1,
	}
}

// Specular returns the specular exponent stored in the map's blue channel
// (every channel of a grayscale map); 0 without a map.
func (m *Model) Specular(uv mathutil.Vec2) float64 {
	if m.specular == nil {
		return 0
	}
	return float64(m.specular.Sample(uv[0], uv[1], m.Filter).B)
}
