package mesh

// Corner indexes one face corner into the position, texture-coordinate and
// normal arrays. -1 means the attribute was not given.
type Corner struct {
	V, T, N int
}

// Face is one triangle.
type Face [3]Corner
