// Package fusion owns the per-measurement-stream smoothing pipeline: raw
// sensor observations of one entity pair are fused and low-pass filtered into
// a single estimate, then pushed into the transform graph under the stream's
// measurement key.
package fusion

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"

	"github.com/poselink/poselink/filter"
	"github.com/poselink/poselink/spatialmath"
	"github.com/poselink/poselink/transformgraph"
)

// StreamOptions configure one measurement stream.
type StreamOptions struct {
	// Alpha is the smoothing blend factor in (0,1]. Zero means 1 (no smoothing).
	Alpha float64
	// Timeout is how long the stream may go silent before smoothing state is
	// considered stale and replaced by the next observation. Zero never expires.
	Timeout time.Duration
	// Weight is the trust weight the stream's edges carry in the graph.
	// Zero means transformgraph.DefaultWeight.
	Weight float64
}

// Observation is one weighted raw sensor reading of the stream's relative pose.
type Observation struct {
	Pose   spatialmath.Pose
	Weight float64
}

// Stream fuses observations from one sensor watching one entity pair and
// keeps the corresponding graph edge fresh. Each stream owns its own filters;
// independent streams share no state.
type Stream struct {
	graph    *transformgraph.Graph
	from     string
	to       string
	key      transformgraph.MeasurementKey
	weight   float64
	smoother *filter.ExponentialMovingAverage
	logger   golog.Logger
}

// NewStream returns a stream for the named sensor observing the transform
// from one entity to another.
func NewStream(
	g *transformgraph.Graph,
	sensor, from, to string,
	opts StreamOptions,
	clk clock.Clock,
	logger golog.Logger,
) *Stream {
	alpha := opts.Alpha
	if alpha == 0 {
		alpha = 1
	}
	weight := opts.Weight
	if weight == 0 {
		weight = transformgraph.DefaultWeight
	}
	return &Stream{
		graph:    g,
		from:     from,
		to:       to,
		key:      transformgraph.NewMeasurementKey(sensor, from, to),
		weight:   weight,
		smoother: filter.NewExponentialMovingAverage(alpha, opts.Timeout, clk),
		logger:   logger,
	}
}

// Key returns the measurement key the stream's graph edges carry.
func (s *Stream) Key() transformgraph.MeasurementKey {
	return s.key
}

// Observe feeds one raw reading through the smoother and refreshes the
// stream's edge pair in the graph with the smoothed estimate.
func (s *Stream) Observe(pose spatialmath.Pose) error {
	s.smoother.AddPose(pose)
	smoothed := s.smoother.Pose()
	if err := s.graph.UpdateSensorData(s.from, s.to, s.key, smoothed, s.weight); err != nil {
		s.logger.Warnw("rejected sensor update", "key", s.key, "error", err)
		return err
	}
	return nil
}

// ObserveBatch fuses several simultaneous readings of the stream's relative
// pose into one estimate with a weighted mean, then feeds that estimate
// through the smoother like a single observation.
func (s *Stream) ObserveBatch(observations []Observation) error {
	wm := filter.NewWeightedMean()
	for _, o := range observations {
		wm.AddVector(o.Pose.Point(), o.Weight)
		wm.AddQuaternion(o.Pose.Rotation(), o.Weight)
	}
	rotation, err := wm.Quaternion()
	if err != nil {
		return err
	}
	return s.Observe(spatialmath.NewPose(wm.Vector(), rotation))
}

// Close tears the stream's edges out of the graph, e.g. on sensor disconnect.
func (s *Stream) Close() {
	s.graph.RemoveEdgesByKey(s.key)
}
