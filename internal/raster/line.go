package raster

import (
	"image/color"
	"math"

	"tinyrender/internal/mathutil"
)

// Line draws a one-pixel segment from (x0, y0) to (x1, y1), both ends
// included, with Bresenham's integer error term. Pixels outside fb are
// skipped.
func Line(fb Target, x0, y0, x1, y1 int, c color.NRGBA) {
	steep := abs(x0-x1) < abs(y0-y1)
	if steep {
		x0, y0 = y0, x0
		x1, y1 = y1, x1
	}
	if x0 > x1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
	}

	dx := x1 - x0
	derr := abs(y1-y0) * 2
	step := 1
	if y1 < y0 {
		step = -1
	}

	err, y := 0, y0
	for x := x0; x <= x1; x++ {
		if steep {
			fb.Set(y, x, c)
		} else {
			fb.Set(x, y, c)
		}
		err += derr
		if err > dx {
			y += step
			err -= dx * 2
		}
	}
}

// Segment draws a to b after clipping it to fb's pixel range
// (Liang-Barsky). Segments with a NaN or infinite end draw nothing.
func Segment(fb Target, a, b mathutil.Vec2, c color.NRGBA) {
	for _, v := range [4]float64{a[0], a[1], b[0], b[1]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return
		}
	}
	d := b.Sub(a)
	xmax, ymax := float64(fb.Width()-1), float64(fb.Height()-1)
	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{
		{-d[0], a[0]}, {d[0], xmax - a[0]},
		{-d[1], a[1]}, {d[1], ymax - a[1]},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return
			}
			t1 = min(t1, r)
		}
	}
	p0, p1 := a.Add(d.Scale(t0)), a.Add(d.Scale(t1))
	Line(fb, int(p0[0]), int(p0[1]), int(p1[0]), int(p1[1]), c)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
