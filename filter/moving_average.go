package filter

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/poselink/poselink/spatialmath"
)

// ExponentialMovingAverage low-pass filters a stream of scalar, vector, and
// quaternion values with blend factor alpha. Quaternions blend by spherical
// linear interpolation so the accumulator stays a valid unit rotation.
//
// If a non-zero timeout is configured and no value of any kind arrives for
// that long, the whole filter re-initializes on the next add: the stale
// accumulators are replaced rather than blended into. A zero timeout never
// expires.
//
// Accessors return the accumulators verbatim; before the first add of a
// channel they hold that channel's zero value. An ExponentialMovingAverage is
// not safe for concurrent use.
type ExponentialMovingAverage struct {
	alpha   float64
	timeout time.Duration
	clock   clock.Clock

	scalarAccu        float64
	scalarInitialized bool

	vectorAccu        r3.Vector
	vectorInitialized bool

	quatAccu        quat.Number
	quatInitialized bool

	timeOfLastValue time.Time
}

// NewExponentialMovingAverage returns a filter with the given blend factor in
// (0,1] and staleness timeout, reading time from the given clock.
func NewExponentialMovingAverage(alpha float64, timeout time.Duration, clk clock.Clock) *ExponentialMovingAverage {
	return &ExponentialMovingAverage{alpha: alpha, timeout: timeout, clock: clk}
}

// AddScalar feeds one scalar sample.
func (ema *ExponentialMovingAverage) AddScalar(x float64) {
	ema.checkReinit()
	if ema.scalarInitialized {
		ema.scalarAccu = ema.alpha*x + (1-ema.alpha)*ema.scalarAccu
	} else {
		ema.scalarAccu = x
		ema.scalarInitialized = true
	}
	ema.timeOfLastValue = ema.clock.Now()
}

// AddVector feeds one vector sample.
func (ema *ExponentialMovingAverage) AddVector(v r3.Vector) {
	ema.checkReinit()
	if ema.vectorInitialized {
		ema.vectorAccu = v.Mul(ema.alpha).Add(ema.vectorAccu.Mul(1 - ema.alpha))
	} else {
		ema.vectorAccu = v
		ema.vectorInitialized = true
	}
	ema.timeOfLastValue = ema.clock.Now()
}

// AddQuaternion feeds one orientation sample.
func (ema *ExponentialMovingAverage) AddQuaternion(q quat.Number) {
	ema.checkReinit()
	if ema.quatInitialized {
		ema.quatAccu = spatialmath.Slerp(ema.quatAccu, q, ema.alpha)
	} else {
		ema.quatAccu = q
		ema.quatInitialized = true
	}
	ema.timeOfLastValue = ema.clock.Now()
}

// AddPose feeds the translation and rotation of a pose into the vector and
// quaternion channels.
func (ema *ExponentialMovingAverage) AddPose(p spatialmath.Pose) {
	ema.AddVector(p.Point())
	ema.AddQuaternion(p.Rotation())
}

// Reset marks every channel uninitialized. The next add of each channel
// replaces its accumulator. The time of the last value is left untouched.
func (ema *ExponentialMovingAverage) Reset() {
	ema.scalarInitialized = false
	ema.vectorInitialized = false
	ema.quatInitialized = false
}

// Scalar returns the scalar accumulator.
func (ema *ExponentialMovingAverage) Scalar() float64 {
	return ema.scalarAccu
}

// Vector returns the vector accumulator.
func (ema *ExponentialMovingAverage) Vector() r3.Vector {
	return ema.vectorAccu
}

// Quaternion returns the quaternion accumulator.
func (ema *ExponentialMovingAverage) Quaternion() quat.Number {
	return ema.quatAccu
}

// Pose returns the vector and quaternion accumulators as a pose.
func (ema *ExponentialMovingAverage) Pose() spatialmath.Pose {
	if !ema.quatInitialized {
		return spatialmath.NewPoseFromPoint(ema.vectorAccu)
	}
	return spatialmath.NewPose(ema.vectorAccu, ema.quatAccu)
}

// ScalarInitialized reports whether the scalar channel has received a value
// since construction or the last reset.
func (ema *ExponentialMovingAverage) ScalarInitialized() bool {
	return ema.scalarInitialized
}

// VectorInitialized reports whether the vector channel has received a value
// since construction or the last reset.
func (ema *ExponentialMovingAverage) VectorInitialized() bool {
	return ema.vectorInitialized
}

// QuaternionInitialized reports whether the quaternion channel has received a
// value since construction or the last reset.
func (ema *ExponentialMovingAverage) QuaternionInitialized() bool {
	return ema.quatInitialized
}

// TimeOfLastValue returns when any channel last received a value.
func (ema *ExponentialMovingAverage) TimeOfLastValue() time.Time {
	return ema.timeOfLastValue
}

// Alpha returns the current blend factor.
func (ema *ExponentialMovingAverage) Alpha() float64 {
	return ema.alpha
}

// SetAlpha changes the blend factor without resetting accumulated state.
func (ema *ExponentialMovingAverage) SetAlpha(alpha float64) {
	ema.alpha = alpha
}

// SetTimeout changes the staleness timeout without resetting accumulated state.
func (ema *ExponentialMovingAverage) SetTimeout(timeout time.Duration) {
	ema.timeout = timeout
}

// The staleness check is global to the filter: one expired channel
// un-initializes all of them.
func (ema *ExponentialMovingAverage) checkReinit() {
	if ema.timeout == 0 {
		return
	}
	if ema.clock.Now().Sub(ema.timeOfLastValue) >= ema.timeout {
		ema.Reset()
	}
}
