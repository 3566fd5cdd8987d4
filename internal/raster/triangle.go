package raster

import (
	"math"

	"tinyrender/internal/mathutil"
	"tinyrender/internal/shader"
)

// degenerateEps is the smallest |signed area × 2| treated as a real triangle.
const degenerateEps = 1e-8

// Options tunes a Triangle call.
type Options struct {
	// Supersample scales each committed color by the fraction of four
	// sub-pixel samples (0.25/0.75 grid) inside the triangle.
	Supersample bool
}

// Stats counts what happened to the pixels of the triangle's bounding box.
type Stats struct {
	Drawn     int // color and depth written
	Occluded  int // failed the depth test
	Discarded int // rejected by the fragment stage
}

func (s *Stats) Add(o Stats) {
	s.Drawn += o.Drawn
	s.Occluded += o.Occluded
	s.Discarded += o.Discarded
}

// Barycentric returns the screen-space weights of p in triangle (a, b, c).
// Each weight comes from its own edge function, so points on an edge get an
// exact zero. A degenerate triangle yields (-1, 1, 1), which every caller
// rejects.
func Barycentric(a, b, c, p mathutil.Vec2) mathutil.Vec3 {
	det := b.Sub(a).Cross(c.Sub(a))
	if math.Abs(det) < degenerateEps {
		return mathutil.Vec3{-1, 1, 1}
	}
	return mathutil.Vec3{
		b.Sub(p).Cross(c.Sub(p)) / det,
		c.Sub(p).Cross(a.Sub(p)) / det,
		a.Sub(p).Cross(b.Sub(p)) / det,
	}
}

// coverage returns the fraction of the four sub-samples of pixel (x, y) that
// lie inside (a, b, c). Samples on an edge count as inside.
func coverage(a, b, c mathutil.Vec2, x, y int) float64 {
	offsets := [4]mathutil.Vec2{{0.25, 0.25}, {0.75, 0.25}, {0.25, 0.75}, {0.75, 0.75}}
	n := 0
	for _, o := range offsets {
		p := mathutil.Vec2{float64(x) + o[0], float64(y) + o[1]}
		bc := Barycentric(a, b, c, p)
		if bc[0] >= 0 && bc[1] >= 0 && bc[2] >= 0 {
			n++
		}
	}
	return float64(n) / 4
}

// Triangle rasterizes one triangle given in clip space.
//
// Each vertex goes through viewport and the perspective divide. Every integer
// pixel of the clamped bounding box with non-negative screen weights gets
// perspective-corrected weights (divided by each vertex's clip w and
// rescaled to sum 1). The interpolated clip z must be strictly greater than
// the stored depth; then sh.Fragment runs and, unless it discards, depth and
// color are committed.
func Triangle(clip [3]mathutil.Vec4, sh shader.Shader, viewport mathutil.Mat4, fb Target, zb *DepthBuffer, opt Options) Stats {
	var st Stats

	var pts [3]mathutil.Vec2
	for i, c := range clip {
		pts[i] = viewport.MulVec4(c).Project().XY()
	}

	// Bounding box, clamped to the target.
	minX := math.Floor(min(pts[0][0], pts[1][0], pts[2][0]))
	maxX := math.Ceil(max(pts[0][0], pts[1][0], pts[2][0]))
	minY := math.Floor(min(pts[0][1], pts[1][1], pts[2][1]))
	maxY := math.Ceil(max(pts[0][1], pts[1][1], pts[2][1]))
	if math.IsNaN(minX+maxX+minY+maxY) {
		return st
	}
	x0 := int(max(minX, 0))
	y0 := int(max(minY, 0))
	x1 := int(min(maxX, float64(fb.Width()-1)))
	y1 := int(min(maxY, float64(fb.Height()-1)))
	if x0 > x1 || y0 > y1 {
		return st
	}

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			screen := Barycentric(pts[0], pts[1], pts[2], mathutil.Vec2{float64(x), float64(y)})
			if screen[0] < 0 || screen[1] < 0 || screen[2] < 0 {
				continue
			}

			bc := mathutil.Vec3{screen[0] / clip[0][3], screen[1] / clip[1][3], screen[2] / clip[2][3]}
			sum := bc[0] + bc[1] + bc[2]
			if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
				continue
			}
			bc = bc.Scale(1 / sum)

			depth := bc[0]*clip[0][2] + bc[1]*clip[1][2] + bc[2]*clip[2][2]
			if depth <= zb.At(x, y) {
				st.Occluded++
				continue
			}

			c, discard := sh.Fragment(bc, x, y)
			if discard {
				st.Discarded++
				continue
			}
			if opt.Supersample {
				c = shader.Modulate(c, coverage(pts[0], pts[1], pts[2], x, y))
			}
			zb.Set(x, y, depth)
			fb.Set(x, y, c)
			st.Drawn++
		}
	}
	return st
}
