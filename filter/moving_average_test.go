package filter

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/poselink/poselink/spatialmath"
)

func TestScalarSmoothing(t *testing.T) {
	ema := NewExponentialMovingAverage(0.5, 0, clock.NewMock())

	ema.AddScalar(10)
	test.That(t, ema.Scalar(), test.ShouldEqual, 10) // first value replaces
	ema.AddScalar(0)
	test.That(t, ema.Scalar(), test.ShouldAlmostEqual, 5)
	ema.AddScalar(0)
	test.That(t, ema.Scalar(), test.ShouldAlmostEqual, 2.5)
}

func TestVectorSmoothing(t *testing.T) {
	ema := NewExponentialMovingAverage(0.25, 0, clock.NewMock())

	ema.AddVector(r3.Vector{X: 4})
	ema.AddVector(r3.Vector{X: 0, Y: 4})
	smoothed := ema.Vector()
	test.That(t, smoothed.X, test.ShouldAlmostEqual, 3)
	test.That(t, smoothed.Y, test.ShouldAlmostEqual, 1)
}

func TestQuaternionSmoothing(t *testing.T) {
	ema := NewExponentialMovingAverage(0.5, 0, clock.NewMock())

	ema.AddQuaternion(q30z)
	test.That(t, spatialmath.QuaternionAlmostEqual(ema.Quaternion(), q30z, 1e-9), test.ShouldBeTrue)

	// Slerping halfway toward identity must remain a unit rotation.
	ema.AddQuaternion(spatialmath.Normalize(q30z))
	test.That(t, spatialmath.Norm(ema.Quaternion()), test.ShouldAlmostEqual, 1)
}

func TestConstantInputIdempotence(t *testing.T) {
	ema := NewExponentialMovingAverage(0.5, 0, clock.NewMock())
	for i := 0; i < 10; i++ {
		ema.AddScalar(7)
		ema.AddVector(r3.Vector{X: 1, Y: 2, Z: 3})
		ema.AddQuaternion(q30z)
	}
	test.That(t, ema.Scalar(), test.ShouldEqual, 7)
	test.That(t, ema.Vector(), test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, spatialmath.QuaternionAlmostEqual(ema.Quaternion(), q30z, 1e-9), test.ShouldBeTrue)
}

func TestStalenessReset(t *testing.T) {
	mock := clock.NewMock()
	ema := NewExponentialMovingAverage(0.5, time.Second, mock)

	ema.AddScalar(10)
	ema.AddQuaternion(q30z)
	mock.Add(500 * time.Millisecond)
	ema.AddScalar(0)
	test.That(t, ema.Scalar(), test.ShouldAlmostEqual, 5) // still fresh, blended

	// After the timeout the next value replaces rather than blends, and the
	// staleness is global: the quaternion channel un-initializes too.
	mock.Add(time.Second)
	ema.AddScalar(100)
	test.That(t, ema.Scalar(), test.ShouldEqual, 100)
	test.That(t, ema.QuaternionInitialized(), test.ShouldBeFalse)
	test.That(t, ema.ScalarInitialized(), test.ShouldBeTrue)
}

func TestZeroTimeoutNeverExpires(t *testing.T) {
	mock := clock.NewMock()
	ema := NewExponentialMovingAverage(0.5, 0, mock)

	ema.AddScalar(10)
	mock.Add(1000 * time.Hour)
	ema.AddScalar(0)
	test.That(t, ema.Scalar(), test.ShouldAlmostEqual, 5)
}

func TestReset(t *testing.T) {
	mock := clock.NewMock()
	mock.Add(time.Hour)
	ema := NewExponentialMovingAverage(0.5, 0, mock)

	ema.AddScalar(10)
	before := ema.TimeOfLastValue()
	ema.Reset()

	test.That(t, ema.ScalarInitialized(), test.ShouldBeFalse)
	test.That(t, ema.VectorInitialized(), test.ShouldBeFalse)
	test.That(t, ema.QuaternionInitialized(), test.ShouldBeFalse)
	test.That(t, ema.TimeOfLastValue(), test.ShouldResemble, before)

	ema.AddScalar(3)
	test.That(t, ema.Scalar(), test.ShouldEqual, 3)
}

func TestReconfigure(t *testing.T) {
	ema := NewExponentialMovingAverage(0.5, time.Second, clock.NewMock())
	ema.AddScalar(10)

	// Changing alpha or timeout must not reset accumulated state.
	ema.SetAlpha(1)
	ema.SetTimeout(time.Minute)
	test.That(t, ema.Alpha(), test.ShouldEqual, 1)
	test.That(t, ema.Scalar(), test.ShouldEqual, 10)
	test.That(t, ema.ScalarInitialized(), test.ShouldBeTrue)

	ema.AddScalar(4)
	test.That(t, ema.Scalar(), test.ShouldEqual, 4) // alpha 1 tracks input exactly
}

func TestAddPose(t *testing.T) {
	ema := NewExponentialMovingAverage(1, 0, clock.NewMock())
	p := spatialmath.NewPose(r3.Vector{X: 1, Z: 2}, q30z)
	ema.AddPose(p)

	test.That(t, ema.VectorInitialized(), test.ShouldBeTrue)
	test.That(t, ema.QuaternionInitialized(), test.ShouldBeTrue)
	test.That(t, spatialmath.PoseAlmostEqual(ema.Pose(), p), test.ShouldBeTrue)
}
