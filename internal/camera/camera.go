// Package camera builds the per-pass transform chain: a view matrix from
// eye/center/up, a one-coefficient perspective projection and a viewport
// mapping normalized device coordinates to pixels.
package camera

import (
	"errors"
	"fmt"

	"tinyrender/internal/mathutil"
)

// ErrDegenerateBasis is returned by LookAt when eye == center or up is
// parallel to the viewing direction.
var ErrDegenerateBasis = errors.New("camera: degenerate look-at basis")

// minBasisLen is the shortest cross(up, forward) accepted before normalising.
const minBasisLen = 1e-9

// Viewport maps NDC [-1,1] to the pixel rectangle at (x, y) with size w×h.
// Only the x and y rows scale and translate; z and w pass through.
func Viewport(x, y, w, h float64) mathutil.Mat4 {
	return mathutil.Mat4{
		w / 2, 0, 0, x + w/2,
		0, h / 2, 0, y + h/2,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Projection is the identity with w' = coeff·z + w. coeff = 0 is
// orthographic; coeff = -1/|eye-center| is a pinhole camera.
func Projection(coeff float64) mathutil.Mat4 {
	m := mathutil.Mat4Identity()
	m[14] = coeff
	return m
}

// Basis returns the orthonormal camera basis for eye looking at center.
func Basis(eye, center, up mathutil.Vec3) (right, trueUp, forward mathutil.Vec3, err error) {
	dir := eye.Sub(center)
	if dir.Len() < minBasisLen {
		return right, trueUp, forward, fmt.Errorf("%w: eye %v equals center", ErrDegenerateBasis, eye)
	}
	forward = dir.Normalize()
	side := up.Cross(forward)
	if side.Len() < minBasisLen {
		return right, trueUp, forward, fmt.Errorf("%w: up %v parallel to view direction %v", ErrDegenerateBasis, up, forward)
	}
	right = side.Normalize()
	trueUp = forward.Cross(right)
	return right, trueUp, forward, nil
}

// LookAt returns the view matrix that translates by -center and rotates into
// the (right, up, forward) basis.
func LookAt(eye, center, up mathutil.Vec3) (mathutil.Mat4, error) {
	right, trueUp, forward, err := Basis(eye, center, up)
	if err != nil {
		return mathutil.Mat4{}, err
	}
	rot := mathutil.FromMat3Translation(mathutil.Mat3FromRows(right, trueUp, forward), mathutil.Vec3{})
	return mathutil.Mat4Mul(rot, mathutil.Translate(center.Scale(-1))), nil
}
