package main

import (
	"fmt"
	"math"
	"os"

	"tinyrender/internal/mesh"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s model.obj ...\n", os.Args[0])
		os.Exit(2)
	}

	failed := false
	for _, path := range os.Args[1:] {
		g, err := mesh.ParseFile(path)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			failed = true
			continue
		}
		lo, hi := g.Bounds()
		fmt.Printf("%s\n", path)
		fmt.Printf("  verts=%d, uvs=%d, normals=%d, faces=%d\n", len(g.Verts), len(g.UVs), len(g.Normals), len(g.Faces))
		fmt.Printf("  BBox: X[%.3f, %.3f] Y[%.3f, %.3f] Z[%.3f, %.3f]\n", lo[0], hi[0], lo[1], hi[1], lo[2], hi[2])
		fmt.Printf("  Size: %.3f x %.3f x %.3f\n", hi[0]-lo[0], hi[1]-lo[1], hi[2]-lo[2])

		// Surface area by dominant normal axis
		areaByDir := map[string]float64{}
		degenerate := 0
		for _, f := range g.Faces {
			a, b, c := g.Verts[f[0].V], g.Verts[f[1].V], g.Verts[f[2].V]
			n := b.Sub(a).Cross(c.Sub(a))
			area := 0.5 * n.Len()
			if area < 1e-12 {
				degenerate++
				continue
			}
			ax, ay, az := math.Abs(n[0]), math.Abs(n[1]), math.Abs(n[2])
			var dir string
			switch {
			case ax >= ay && ax >= az:
				dir = sign(n[0]) + "X"
			case ay >= az:
				dir = sign(n[1]) + "Y"
			default:
				dir = sign(n[2]) + "Z"
			}
			areaByDir[dir] += area
		}
		fmt.Println("  --- Surface area by direction ---")
		for _, d := range []string{"+X", "-X", "+Y", "-Y", "+Z", "-Z"} {
			fmt.Printf("  %s: %.4f\n", d, areaByDir[d])
		}
		if degenerate > 0 {
			fmt.Printf("  degenerate faces: %d\n", degenerate)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func sign(v float64) string {
	if v < 0 {
		return "-"
	}
	return "+"
}
