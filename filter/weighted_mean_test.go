package filter

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"

	"github.com/poselink/poselink/spatialmath"
)

var q30z = quat.Number{Real: math.Cos(math.Pi / 12.), Kmag: math.Sin(math.Pi / 12.)}

func TestVectorMean(t *testing.T) {
	wm := NewWeightedMean()
	wm.AddVector(r3.Vector{X: 1, Y: 2, Z: 3}, 1)
	wm.AddVector(r3.Vector{X: 3, Y: 2, Z: 1}, 3)

	// (1*v1 + 3*v2) / 4
	mean := wm.Vector()
	test.That(t, mean.X, test.ShouldAlmostEqual, 2.5)
	test.That(t, mean.Y, test.ShouldAlmostEqual, 2)
	test.That(t, mean.Z, test.ShouldAlmostEqual, 1.5)
}

func TestVectorMeanZeroWeight(t *testing.T) {
	wm := NewWeightedMean()
	test.That(t, wm.Vector(), test.ShouldResemble, r3.Vector{})

	wm.AddVector(r3.Vector{X: 5}, 1)
	wm.AddVector(r3.Vector{X: 5}, -1)
	test.That(t, wm.Vector(), test.ShouldResemble, r3.Vector{})
}

func TestQuaternionMeanIdentical(t *testing.T) {
	wm := NewWeightedMean()
	wm.AddQuaternion(q30z, 1)
	wm.AddQuaternion(q30z, 1)

	mean, err := wm.Quaternion()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.QuaternionAlmostEqual(mean, q30z, 1e-9), test.ShouldBeTrue)
}

func TestQuaternionMeanAntipodal(t *testing.T) {
	// q and -q are the same rotation; a component-wise mean would cancel to
	// near zero, the eigen mean must not.
	wm := NewWeightedMean()
	wm.AddQuaternion(q30z, 1)
	wm.AddQuaternion(spatialmath.Flip(q30z), 1)

	mean, err := wm.Quaternion()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.Norm(mean), test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, spatialmath.QuaternionAlmostEqual(mean, q30z, 1e-9), test.ShouldBeTrue)
}

func TestQuaternionMeanWeighted(t *testing.T) {
	// Heavily favoring one sample pulls the mean toward it.
	identity := quat.Number{Real: 1}
	wm := NewWeightedMean()
	wm.AddQuaternion(identity, 10)
	wm.AddQuaternion(q30z, 0.1)

	mean, err := wm.Quaternion()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, math.Abs(mean.Real), test.ShouldBeGreaterThan, 0.999)
}

func TestQuaternionMeanEmpty(t *testing.T) {
	wm := NewWeightedMean()
	_, err := wm.Quaternion()
	test.That(t, err, test.ShouldBeError, ErrNoSamples)
}

func TestWeightedMeanReset(t *testing.T) {
	wm := NewWeightedMean()
	wm.AddVector(r3.Vector{X: 1}, 1)
	wm.AddQuaternion(q30z, 1)
	wm.Reset()

	test.That(t, wm.Vector(), test.ShouldResemble, r3.Vector{})
	_, err := wm.Quaternion()
	test.That(t, err, test.ShouldBeError, ErrNoSamples)
}
