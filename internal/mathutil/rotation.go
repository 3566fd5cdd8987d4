package mathutil

import "math"

// AxisAngle is the rotation by angle radians about axis, counter-clockwise
// when axis points at the viewer. axis need not be unit length.
func AxisAngle(axis Vec3, angle float64) Mat3 {
	k := axis.Normalize()
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c
	x, y, z := k[0], k[1], k[2]
	return Mat3{
		t*x*x + c, t*x*y - s*z, t*x*z + s*y,
		t*x*y + s*z, t*y*y + c, t*y*z - s*x,
		t*x*z - s*y, t*y*z + s*x, t*z*z + c,
	}
}

// EulerYXZ applies deg[2] about z, then deg[0] about x, then deg[1] about y.
// Angles are in degrees.
func EulerYXZ(deg Vec3) Mat3 {
	rot := func(axis Vec3, d float64) Mat3 {
		return AxisAngle(axis, d*math.Pi/180)
	}
	return Mat3Mul(rot(Vec3{0, 1, 0}, deg[1]),
		Mat3Mul(rot(Vec3{1, 0, 0}, deg[0]), rot(Vec3{0, 0, 1}, deg[2])))
}
