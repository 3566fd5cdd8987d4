package raster

import (
	"tinyrender/internal/mathutil"
	"tinyrender/internal/shader"
)

// Faces is the part of a mesh the draw loop needs.
type Faces interface {
	NFaces() int
}

// Draw runs sh over every face of mesh: Vertex for the three corners, then
// Triangle with the resulting clip-space positions.
func Draw(mesh Faces, sh shader.Shader, viewport mathutil.Mat4, fb Target, zb *DepthBuffer, opt Options) Stats {
	var st Stats
	for f := 0; f < mesh.NFaces(); f++ {
		var clip [3]mathutil.Vec4
		for slot := range clip {
			clip[slot] = sh.Vertex(f, slot)
		}
		st.Add(Triangle(clip, sh, viewport, fb, zb, opt))
	}
	return st
}
