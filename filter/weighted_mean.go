// Package filter provides the statistical filters used to fuse repeated or
// multi-sensor observations of a relative pose into a single estimate.
package filter

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// ErrNoSamples is returned when a quaternion mean is requested from an empty batch.
var ErrNoSamples = errors.New("no quaternion samples to average")

// WeightedMean accumulates weighted vector and quaternion samples and computes
// their means. The quaternion mean uses the eigen-decomposition method of
// Markley et al. (http://www.acsu.buffalo.edu/~johnc/ave_quat07.pdf), which is
// correct under the q/-q ambiguity where component-wise averaging is not.
//
// The zero value is ready to use. A WeightedMean is not safe for concurrent use.
type WeightedMean struct {
	vectorSum     r3.Vector
	vectorWeights float64
	quats         []quat.Number // each sample pre-scaled by its weight
}

// NewWeightedMean returns an empty WeightedMean.
func NewWeightedMean() *WeightedMean {
	return &WeightedMean{}
}

// AddVector accumulates a weighted vector sample.
func (wm *WeightedMean) AddVector(v r3.Vector, weight float64) {
	wm.vectorSum = wm.vectorSum.Add(v.Mul(weight))
	wm.vectorWeights += weight
}

// AddQuaternion accumulates a weighted quaternion sample.
func (wm *WeightedMean) AddQuaternion(q quat.Number, weight float64) {
	wm.quats = append(wm.quats, quat.Scale(weight, q))
}

// Reset clears all accumulated samples.
func (wm *WeightedMean) Reset() {
	wm.vectorSum = r3.Vector{}
	wm.vectorWeights = 0
	wm.quats = nil
}

// Vector returns the weighted mean of the accumulated vector samples.
// If the weights sum to zero it returns the zero vector.
func (wm *WeightedMean) Vector() r3.Vector {
	if wm.vectorWeights == 0 {
		return r3.Vector{}
	}
	return wm.vectorSum.Mul(1 / wm.vectorWeights)
}

// Quaternion returns the weighted mean orientation of the accumulated
// quaternion samples: the eigenvector of the 4x4 accumulator matrix M = A·Aᵀ
// belonging to the eigenvalue of largest magnitude. Returns ErrNoSamples if
// no quaternions were added.
func (wm *WeightedMean) Quaternion() (quat.Number, error) {
	if len(wm.quats) == 0 {
		return quat.Number{}, ErrNoSamples
	}

	// M = A·Aᵀ where A has one weighted [x y z w] column per sample.
	m := mat.NewSymDense(4, nil)
	for _, q := range wm.quats {
		col := [4]float64{q.Imag, q.Jmag, q.Kmag, q.Real}
		for i := 0; i < 4; i++ {
			for j := i; j < 4; j++ {
				m.SetSym(i, j, m.At(i, j)+col[i]*col[j])
			}
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(m, true) {
		return quat.Number{}, errors.New("eigendecomposition of quaternion accumulator failed")
	}

	values := eig.Values(nil)
	index := 0
	maxVal := -1.0
	for i, v := range values {
		if math.Abs(v) > maxVal {
			maxVal = math.Abs(v)
			index = i
		}
	}

	var vectors mat.Dense
	eig.VectorsTo(&vectors)
	return quat.Number{
		Imag: vectors.At(0, index),
		Jmag: vectors.At(1, index),
		Kmag: vectors.At(2, index),
		Real: vectors.At(3, index),
	}, nil
}
