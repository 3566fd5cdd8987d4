package raster

import (
	"image/color"
	"math"
	"slices"
	"testing"

	"tinyrender/internal/mathutil"
)

var (
	red        = color.NRGBA{R: 200, A: 255}
	background = color.NRGBA{R: 1, G: 2, B: 3, A: 4}
)

// constShader returns fixed clip positions and a single color, and records
// the weights it is called with.
type constShader struct {
	clip    [][3]mathutil.Vec4
	color   color.NRGBA
	discard bool
	bars    []mathutil.Vec3
}

func (s *constShader) Vertex(face, slot int) mathutil.Vec4 { return s.clip[face][slot] }

func (s *constShader) Fragment(bar mathutil.Vec3, _, _ int) (color.NRGBA, bool) {
	s.bars = append(s.bars, bar)
	return s.color, s.discard
}

func (s *constShader) NFaces() int { return len(s.clip) }

// flat places screen-space points directly in clip space with w = 1.
func flat(z float64, pts ...mathutil.Vec2) [3]mathutil.Vec4 {
	var c [3]mathutil.Vec4
	for i, p := range pts {
		c[i] = mathutil.Vec4{p[0], p[1], z, 1}
	}
	return c
}

func newTarget(w, h int) (*FrameBuffer, *DepthBuffer) {
	fb := NewFrameBuffer(w, h)
	fb.Fill(background)
	return fb, NewDepthBuffer(w, h)
}

func draw(t *testing.T, fb *FrameBuffer, zb *DepthBuffer, opt Options, col color.NRGBA, tris ...[3]mathutil.Vec4) Stats {
	t.Helper()
	sh := &constShader{clip: tris, color: col}
	return Draw(sh, sh, mathutil.Mat4Identity(), fb, zb, opt)
}

func TestRightTriangleCoverage(t *testing.T) {
	fb, zb := newTarget(16, 16)
	st := draw(t, fb, zb, Options{}, red, flat(0, mathutil.Vec2{0, 0}, mathutil.Vec2{10, 0}, mathutil.Vec2{0, 10}))

	want := 0
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			got := fb.Get(x, y)
			if x+y <= 10 {
				want++
				if got != red {
					t.Errorf("(%d,%d) = %v, want %v", x, y, got, red)
				}
			} else if got != background {
				t.Errorf("(%d,%d) = %v, want untouched", x, y, got)
			}
		}
	}
	if st.Drawn != want {
		t.Errorf("Drawn = %d, want %d", st.Drawn, want)
	}
}

func TestPerspectiveWeightsSumToOne(t *testing.T) {
	ws := [3]float64{1, 2.5, 0.4}
	pts := [3]mathutil.Vec2{{1, 1}, {30, 4}, {6, 28}}
	var clip [3]mathutil.Vec4
	for i, p := range pts {
		w := ws[i]
		clip[i] = mathutil.Vec4{p[0] * w, p[1] * w, 0.1 * float64(i) * w, w}
	}

	fb, zb := newTarget(32, 32)
	sh := &constShader{clip: [][3]mathutil.Vec4{clip}, color: red}
	st := Draw(sh, sh, mathutil.Mat4Identity(), fb, zb, Options{})
	if st.Drawn == 0 || len(sh.bars) != st.Drawn {
		t.Fatalf("Drawn = %d, fragments = %d", st.Drawn, len(sh.bars))
	}
	for _, b := range sh.bars {
		if s := b[0] + b[1] + b[2]; math.Abs(s-1) > 1e-4 {
			t.Fatalf("weights %v sum to %v", b, s)
		}
		if b[0] < 0 || b[1] < 0 || b[2] < 0 {
			t.Fatalf("negative weight %v", b)
		}
	}
}

func TestDepthConvergesToMax(t *testing.T) {
	tri := func(z float64) [3]mathutil.Vec4 {
		return flat(z, mathutil.Vec2{0, 0}, mathutil.Vec2{8, 0}, mathutil.Vec2{0, 8})
	}
	depths := []float64{0.25, -0.75, 0.5, 0.125}
	orders := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {2, 0, 3, 1}, {1, 3, 0, 2}}

	for _, order := range orders {
		fb, zb := newTarget(10, 10)
		for _, i := range order {
			draw(t, fb, zb, Options{}, red, tri(depths[i]))
		}
		for _, p := range [][2]int{{0, 0}, {2, 3}, {4, 4}} {
			if got := zb.At(p[0], p[1]); math.Abs(got-0.5) > 1e-12 {
				t.Errorf("order %v: depth at %v = %v, want 0.5", order, p, got)
			}
		}
		if zb.Written(9, 9) {
			t.Errorf("order %v: uncovered pixel written", order)
		}
	}
}

func TestStrictDepthTest(t *testing.T) {
	fb, zb := newTarget(10, 10)
	tri := flat(0.5, mathutil.Vec2{0, 0}, mathutil.Vec2{8, 0}, mathutil.Vec2{0, 8})
	first := draw(t, fb, zb, Options{}, red, tri)
	second := draw(t, fb, zb, Options{}, color.NRGBA{G: 255, A: 255}, tri)
	if second.Drawn != 0 || second.Occluded != first.Drawn {
		t.Fatalf("equal depth redraw: %+v after %+v", second, first)
	}
	if got := fb.Get(1, 1); got != red {
		t.Fatalf("pixel overwritten at equal depth: %v", got)
	}
}

func TestCollinearTriangleIsNoop(t *testing.T) {
	fb, zb := newTarget(12, 12)
	draw(t, fb, zb, Options{}, red, flat(0, mathutil.Vec2{0, 0}, mathutil.Vec2{10, 10}, mathutil.Vec2{5, 5}))
	beforeZ := slices.Clone(zb.Z)
	beforeC := slices.Clone(fb.Color)

	st := draw(t, fb, zb, Options{}, red, flat(1, mathutil.Vec2{1, 1}, mathutil.Vec2{3, 3}, mathutil.Vec2{11, 11}))
	if st != (Stats{}) {
		t.Fatalf("collinear stats = %+v", st)
	}
	if !slices.Equal(beforeZ, zb.Z) || !slices.Equal(beforeC, fb.Color) {
		t.Fatal("collinear triangle modified the buffers")
	}
	if zb.Written(5, 5) {
		t.Fatal("first collinear triangle wrote depth")
	}
}

func TestOrderIndependence(t *testing.T) {
	a := flat(0.2, mathutil.Vec2{0, 0}, mathutil.Vec2{6, 0}, mathutil.Vec2{0, 6})
	b := flat(-0.4, mathutil.Vec2{15, 15}, mathutil.Vec2{9, 15}, mathutil.Vec2{15, 9})
	green := color.NRGBA{G: 180, A: 255}

	fb1, zb1 := newTarget(16, 16)
	draw(t, fb1, zb1, Options{}, red, a)
	draw(t, fb1, zb1, Options{}, green, b)

	fb2, zb2 := newTarget(16, 16)
	draw(t, fb2, zb2, Options{}, green, b)
	draw(t, fb2, zb2, Options{}, red, a)

	if !slices.Equal(fb1.Color, fb2.Color) {
		t.Fatal("images differ with submission order")
	}
	if !slices.Equal(zb1.Z, zb2.Z) {
		t.Fatal("depth differs with submission order")
	}
}

func TestSupersampleHalfCoverage(t *testing.T) {
	fb, zb := newTarget(10, 10)
	// Right edge is the vertical line x = 5.5.
	tri := flat(0, mathutil.Vec2{-20, -20}, mathutil.Vec2{5.5, -20}, mathutil.Vec2{5.5, 40})
	col := color.NRGBA{R: 200, G: 100, B: 40, A: 255}
	draw(t, fb, zb, Options{Supersample: true}, col, tri)

	full := fb.Get(3, 5)
	if full != col {
		t.Fatalf("interior pixel = %v, want %v", full, col)
	}
	edge := fb.Get(5, 5)
	want := color.NRGBA{R: 100, G: 50, B: 20, A: 255}
	if edge != want {
		t.Fatalf("edge pixel = %v, want %v", edge, want)
	}
	if got := fb.Get(6, 5); got != background {
		t.Fatalf("outside pixel = %v", got)
	}
}

func TestBoundingBoxClamped(t *testing.T) {
	fb, zb := newTarget(8, 8)
	st := draw(t, fb, zb, Options{}, red, flat(0, mathutil.Vec2{-5, -5}, mathutil.Vec2{30, -5}, mathutil.Vec2{-5, 30}))
	if st.Drawn == 0 || st.Drawn > 64 {
		t.Fatalf("Drawn = %d", st.Drawn)
	}

	st = draw(t, fb, zb, Options{}, red, flat(0, mathutil.Vec2{20, 20}, mathutil.Vec2{30, 20}, mathutil.Vec2{20, 30}))
	if st != (Stats{}) {
		t.Fatalf("off-target triangle stats = %+v", st)
	}
}

func TestDiscardLeavesBuffers(t *testing.T) {
	fb, zb := newTarget(8, 8)
	sh := &constShader{
		clip:    [][3]mathutil.Vec4{flat(0, mathutil.Vec2{0, 0}, mathutil.Vec2{6, 0}, mathutil.Vec2{0, 6})},
		color:   red,
		discard: true,
	}
	st := Draw(sh, sh, mathutil.Mat4Identity(), fb, zb, Options{})
	if st.Drawn != 0 || st.Discarded == 0 {
		t.Fatalf("stats = %+v", st)
	}
	if zb.Written(1, 1) || fb.Get(1, 1) != background {
		t.Fatal("discarded fragment was committed")
	}
}

func TestBarycentricDegenerateSentinel(t *testing.T) {
	got := Barycentric(mathutil.Vec2{0, 0}, mathutil.Vec2{1, 1}, mathutil.Vec2{2, 2}, mathutil.Vec2{1, 1})
	if got != (mathutil.Vec3{-1, 1, 1}) {
		t.Fatalf("got %v", got)
	}
}

func TestFrameBufferToNRGBAFlips(t *testing.T) {
	fb := NewFrameBuffer(2, 3)
	fb.Set(1, 0, red)
	img := fb.ToNRGBA()
	if got := img.NRGBAAt(1, 2); got != red {
		t.Fatalf("bottom row pixel = %v", got)
	}
	if got := img.NRGBAAt(1, 0); got != (color.NRGBA{}) {
		t.Fatalf("top row pixel = %v", got)
	}
}

func TestDepthBufferRange(t *testing.T) {
	zb := NewDepthBuffer(3, 3)
	if _, _, ok := zb.Range(); ok {
		t.Fatal("empty buffer reported a range")
	}
	zb.Set(0, 0, -2)
	zb.Set(2, 1, 3)
	zb.Set(5, 5, 100)
	lo, hi, ok := zb.Range()
	if !ok || lo != -2 || hi != 3 {
		t.Fatalf("Range = %v, %v, %v", lo, hi, ok)
	}
}

func TestLine(t *testing.T) {
	for _, tc := range []struct {
		name           string
		x0, y0, x1, y1 int
		want           [][2]int
	}{
		{"horizontal", 1, 2, 4, 2, [][2]int{{1, 2}, {2, 2}, {3, 2}, {4, 2}}},
		{"reversed", 4, 2, 1, 2, [][2]int{{1, 2}, {2, 2}, {3, 2}, {4, 2}}},
		{"vertical", 3, 0, 3, 3, [][2]int{{3, 0}, {3, 1}, {3, 2}, {3, 3}}},
		{"diagonal", 0, 0, 3, 3, [][2]int{{0, 0}, {1, 1}, {2, 2}, {3, 3}}},
		{"anti-diagonal", 0, 3, 3, 0, [][2]int{{0, 3}, {1, 2}, {2, 1}, {3, 0}}},
		{"point", 5, 5, 5, 5, [][2]int{{5, 5}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fb := NewFrameBuffer(8, 8)
			Line(fb, tc.x0, tc.y0, tc.x1, tc.y1, red)
			n := 0
			for y := 0; y < 8; y++ {
				for x := 0; x < 8; x++ {
					if fb.Get(x, y) == red {
						n++
					}
				}
			}
			if n != len(tc.want) {
				t.Errorf("got %d pixels, want %d", n, len(tc.want))
			}
			for _, p := range tc.want {
				if fb.Get(p[0], p[1]) != red {
					t.Errorf("pixel %v not set", p)
				}
			}
		})
	}
}

func TestLineClipsToTarget(t *testing.T) {
	fb := NewFrameBuffer(4, 4)
	Line(fb, -10, 1, 10, 1, red)
	for x := 0; x < 4; x++ {
		if fb.Get(x, 1) != red {
			t.Fatalf("pixel (%d,1) not set", x)
		}
	}
}

func TestSegmentClipsFarEndpoints(t *testing.T) {
	fb := NewFrameBuffer(8, 8)
	// Far ends as produced by a vertex near w = 0.
	Segment(fb, mathutil.Vec2{1, 1}, mathutil.Vec2{1e18, 3e17}, red)
	if fb.Get(1, 1) != red {
		t.Errorf("clipped segment lost its start pixel")
	}
	n := 0
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if fb.Get(x, y) == red {
				n++
			}
		}
	}
	if n < 6 || n > 7 {
		t.Errorf("clipped segment drew %d pixels, want one per column from x=1", n)
	}

	fb = NewFrameBuffer(8, 8)
	Segment(fb, mathutil.Vec2{1, 1}, mathutil.Vec2{math.Inf(1), 2}, red)
	Segment(fb, mathutil.Vec2{math.NaN(), 0}, mathutil.Vec2{3, 3}, red)
	Segment(fb, mathutil.Vec2{-5, -5}, mathutil.Vec2{-1, -9}, red)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if fb.Get(x, y) == red {
				t.Fatalf("pixel (%d,%d) drawn for a non-finite or off-target segment", x, y)
			}
		}
	}

	fb = NewFrameBuffer(4, 4)
	Segment(fb, mathutil.Vec2{-10, 1}, mathutil.Vec2{10, 1}, red)
	for x := 0; x < 4; x++ {
		if fb.Get(x, 1) != red {
			t.Errorf("pixel (%d,1) not set", x)
		}
	}
}
