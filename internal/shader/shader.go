// Package shader defines the two-stage programmable shading contract used by
// the rasterizer and the shading modes built on it.
//
// Vertex runs once per triangle corner and returns a clip-space position,
// recording whatever the fragment stage needs in the shader's Varyings.
// Fragment runs once per covered pixel with perspective-corrected
// barycentric weights and returns a color or a discard signal.
package shader

import (
	"image/color"

	"tinyrender/internal/mathutil"
)

// Shader is one pass's shading program.
type Shader interface {
	Vertex(face, slot int) mathutil.Vec4
	Fragment(bar mathutil.Vec3, x, y int) (c color.NRGBA, discard bool)
}

// Mesh is what the shaders read per vertex and per fragment. Texture
// samplers clamp out-of-range coordinates themselves.
type Mesh interface {
	NFaces() int
	Vert(face, slot int) mathutil.Vec3
	UV(face, slot int) mathutil.Vec2
	Normal(face, slot int) mathutil.Vec3
	Diffuse(uv mathutil.Vec2) color.NRGBA
	NormalMap(uv mathutil.Vec2) mathutil.Vec3
	Specular(uv mathutil.Vec2) float64
}

// ShadowMap reports how visible a fragment is to the light: 1 lit, 0 shadowed.
// pos is the fragment's object-space position, (x, y) its pixel in the
// current pass.
type ShadowMap interface {
	Visibility(pos mathutil.Vec3, x, y int) float64
}

// Varyings is the per-triangle store written by Vertex and read by Fragment.
// Every array has exactly one column per triangle corner.
type Varyings struct {
	UV        [3]mathutil.Vec2
	Normal    [3]mathutil.Vec3
	NDC       [3]mathutil.Vec3
	Pos       [3]mathutil.Vec3 // object space
	Depth     [3]float64       // clip-space z
	Intensity [3]float64
}

// Interp2 returns Σ bar[i]·v[i].
func Interp2(v [3]mathutil.Vec2, bar mathutil.Vec3) mathutil.Vec2 {
	return v[0].Scale(bar[0]).Add(v[1].Scale(bar[1])).Add(v[2].Scale(bar[2]))
}

// Interp3 returns Σ bar[i]·v[i].
func Interp3(v [3]mathutil.Vec3, bar mathutil.Vec3) mathutil.Vec3 {
	return v[0].Scale(bar[0]).Add(v[1].Scale(bar[1])).Add(v[2].Scale(bar[2]))
}

// Interp1 returns Σ bar[i]·v[i].
func Interp1(v [3]float64, bar mathutil.Vec3) float64 {
	return v[0]*bar[0] + v[1]*bar[1] + v[2]*bar[2]
}

// Modulate scales the RGB channels of c by k clamped to [0,1]; alpha is kept.
func Modulate(c color.NRGBA, k float64) color.NRGBA {
	k = max(0, min(1, k))
	return color.NRGBA{
		R: uint8(float64(c.R) * k),
		G: uint8(float64(c.G) * k),
		B: uint8(float64(c.B) * k),
		A: c.A,
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
