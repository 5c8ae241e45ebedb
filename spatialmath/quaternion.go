// Package spatialmath defines spatial mathematical operations.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// If the sine of the half angle between two quaternions is smaller than this,
// slerp falls back to linear interpolation to avoid dividing by ~zero.
const slerpEpsilon = 1e-8

// Norm returns the norm of the quaternion, i.e. the sqrt of the sum of the squares of all components.
func Norm(q quat.Number) float64 {
	return math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
}

// Normalize scales a quaternion to unit length.
func Normalize(q quat.Number) quat.Number {
	length := Norm(q)
	if length == 1 {
		return q
	}
	return quat.Scale(1/length, q)
}

// Flip will multiply a quaternion by -1, returning a quaternion representing the same orientation
// but in the opposing octant.
func Flip(q quat.Number) quat.Number {
	return quat.Number{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
}

// Rotate rotates a vector by the rotation represented by the given unit quaternion.
func Rotate(q quat.Number, v r3.Vector) r3.Vector {
	rotated := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vector{X: rotated.Imag, Y: rotated.Jmag, Z: rotated.Kmag}
}

// Slerp performs spherical linear interpolation from q1 to q2 by amount t in [0,1],
// traveling along the shorter great-circle arc between the two orientations.
func Slerp(q1, q2 quat.Number, t float64) quat.Number {
	dot := q1.Real*q2.Real + q1.Imag*q2.Imag + q1.Jmag*q2.Jmag + q1.Kmag*q2.Kmag

	// Antipodal representations describe the same rotation; interpolate the short way around.
	if dot < 0 {
		q2 = Flip(q2)
		dot = -dot
	}
	if dot > 1 {
		dot = 1
	}

	theta := math.Acos(dot)
	sinTheta := math.Sin(theta)
	if sinTheta < slerpEpsilon {
		return Normalize(quat.Add(quat.Scale(1-t, q1), quat.Scale(t, q2)))
	}

	s1 := math.Sin((1-t)*theta) / sinTheta
	s2 := math.Sin(t*theta) / sinTheta
	return Normalize(quat.Add(quat.Scale(s1, q1), quat.Scale(s2, q2)))
}

// QuaternionAlmostEqual will return a bool describing whether two quaternions represent
// approximately the same orientation, accounting for the q/-q ambiguity.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	if quatComponentsAlmostEqual(a, b, tol) {
		return true
	}
	return quatComponentsAlmostEqual(a, Flip(b), tol)
}

func quatComponentsAlmostEqual(a, b quat.Number, tol float64) bool {
	return math.Abs(a.Real-b.Real) < tol &&
		math.Abs(a.Imag-b.Imag) < tol &&
		math.Abs(a.Jmag-b.Jmag) < tol &&
		math.Abs(a.Kmag-b.Kmag) < tol
}

// R3VectorAlmostEqual returns whether two r3 vectors are equal within the given tolerance per component.
func R3VectorAlmostEqual(a, b r3.Vector, tol float64) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}
