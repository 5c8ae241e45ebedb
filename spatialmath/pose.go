package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// Unit-norm check tolerance for rotations supplied from outside.
const unitNormTolerance = 1e-6

// ErrDegenerateRotation is returned when a rotation quaternion is too close to zero norm
// to represent any orientation.
var ErrDegenerateRotation = errors.New("rotation quaternion has near-zero norm")

// Pose is an immutable rigid-body transform: a rotation represented as a unit quaternion
// and a translation vector. The zero value is not a valid Pose; use NewZeroPose.
type Pose struct {
	rotation    quat.Number
	translation r3.Vector
}

// NewPose returns a Pose with the given translation and rotation. The rotation is
// normalized to unit length.
func NewPose(translation r3.Vector, rotation quat.Number) Pose {
	return Pose{rotation: Normalize(rotation), translation: translation}
}

// NewZeroPose returns the identity transform.
func NewZeroPose() Pose {
	return Pose{rotation: quat.Number{Real: 1}}
}

// NewPoseFromPoint returns a pure-translation Pose.
func NewPoseFromPoint(point r3.Vector) Pose {
	return Pose{rotation: quat.Number{Real: 1}, translation: point}
}

// NewPoseChecked is NewPose but returns ErrDegenerateRotation rather than normalizing
// a rotation whose norm is too close to zero to be meaningful.
func NewPoseChecked(translation r3.Vector, rotation quat.Number) (Pose, error) {
	if Norm(rotation) < unitNormTolerance {
		return Pose{}, ErrDegenerateRotation
	}
	return NewPose(translation, rotation), nil
}

// Point returns the translation component.
func (p Pose) Point() r3.Vector {
	return p.translation
}

// Rotation returns the rotation component.
func (p Pose) Rotation() quat.Number {
	return p.rotation
}

// Invert returns the inverse transform, such that Compose(p, p.Invert()) is the identity.
func (p Pose) Invert() Pose {
	invRot := quat.Conj(p.rotation)
	return Pose{
		rotation:    invRot,
		translation: Rotate(invRot, p.translation).Mul(-1),
	}
}

// TransformPoint applies the pose to a point.
func (p Pose) TransformPoint(point r3.Vector) r3.Vector {
	return Rotate(p.rotation, point).Add(p.translation)
}

// Compose returns the transform equivalent to applying b first, then a.
// For chained frames, Compose(aToB, bToC) yields aToC.
func Compose(a, b Pose) Pose {
	return Pose{
		rotation:    Normalize(quat.Mul(a.rotation, b.rotation)),
		translation: a.TransformPoint(b.translation),
	}
}

// HasUnitRotation reports whether the rotation component is a unit quaternion
// within tolerance. Poses built through NewPose always are; this is for
// validating rotations supplied by callers before they enter a graph.
func HasUnitRotation(rotation quat.Number) bool {
	return math.Abs(Norm(rotation)-1) < unitNormTolerance
}

// PoseAlmostEqual returns whether two poses are approximately equal.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostEqualEps(a, b, 1e-6)
}

// PoseAlmostEqualEps returns whether two poses are equal within the given tolerance.
func PoseAlmostEqualEps(a, b Pose, tol float64) bool {
	return QuaternionAlmostEqual(a.rotation, b.rotation, tol) &&
		R3VectorAlmostEqual(a.translation, b.translation, tol)
}
