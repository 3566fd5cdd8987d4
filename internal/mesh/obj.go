// Package mesh reads Wavefront OBJ triangle meshes and the textures that sit
// next to them.
package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"tinyrender/internal/mathutil"
)

// Geometry is the parsed content of an OBJ file.
type Geometry struct {
	Verts   []mathutil.Vec3
	UVs     []mathutil.Vec2
	Normals []mathutil.Vec3 // normalised on load
	Faces   []Face
}

// ParseFile reads an OBJ file from disk.
func ParseFile(path string) (*Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("obj: read %s: %w", path, err)
	}
	defer f.Close()

	g, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("obj: %s: %w", path, err)
	}
	return g, nil
}

// Parse reads OBJ text. Supported statements are v, vt, vn and f; anything
// else is skipped. Polygons with more than three corners are split into a
// triangle fan around their first corner.
func Parse(r io.Reader) (*Geometry, error) {
	g := &Geometry{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		args := fields[1:]
		switch fields[0] {
		case "v":
			v, err := parseFloats(args, 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex: %w", line, err)
			}
			g.Verts = append(g.Verts, mathutil.Vec3{v[0], v[1], v[2]})
		case "vt":
			v, err := parseFloats(args, 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: texture coordinate: %w", line, err)
			}
			g.UVs = append(g.UVs, mathutil.Vec2{v[0], v[1]})
		case "vn":
			v, err := parseFloats(args, 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: normal: %w", line, err)
			}
			g.Normals = append(g.Normals, mathutil.Vec3{v[0], v[1], v[2]}.Normalize())
		case "f":
			if len(args) < 3 {
				return nil, fmt.Errorf("line %d: face has %d corners, need at least 3", line, len(args))
			}
			corners := make([]Corner, len(args))
			for i, a := range args {
				c, err := g.parseCorner(a)
				if err != nil {
					return nil, fmt.Errorf("line %d: face corner %q: %w", line, a, err)
				}
				corners[i] = c
			}
			for i := 1; i+1 < len(corners); i++ {
				g.Faces = append(g.Faces, Face{corners[0], corners[i], corners[i+1]})
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

func parseFloats(args []string, n int) ([]float64, error) {
	if len(args) < n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(args))
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// parseCorner reads v, v/t, v//n or v/t/n. Indices are 1-based; negative
// indices count back from the most recent element.
func (g *Geometry) parseCorner(s string) (Corner, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return Corner{}, fmt.Errorf("too many components")
	}
	c := Corner{V: -1, T: -1, N: -1}
	counts := [3]int{len(g.Verts), len(g.UVs), len(g.Normals)}
	dst := [3]*int{&c.V, &c.T, &c.N}
	for i, p := range parts {
		if p == "" {
			if i == 0 {
				return Corner{}, fmt.Errorf("missing vertex index")
			}
			continue
		}
		idx, err := strconv.Atoi(p)
		if err != nil {
			return Corner{}, err
		}
		switch {
		case idx > 0:
			idx--
		case idx < 0:
			idx += counts[i]
		default:
			return Corner{}, fmt.Errorf("index 0 is invalid")
		}
		if idx < 0 || idx >= counts[i] {
			return Corner{}, fmt.Errorf("index %s out of range (have %d)", p, counts[i])
		}
		*dst[i] = idx
	}
	return c, nil
}

// Bounds returns the axis-aligned box of all vertices.
func (g *Geometry) Bounds() (lo, hi mathutil.Vec3) {
	if len(g.Verts) == 0 {
		return lo, hi
	}
	lo, hi = g.Verts[0], g.Verts[0]
	for _, v := range g.Verts[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], v[k])
			hi[k] = max(hi[k], v[k])
		}
	}
	return lo, hi
}
