// Package config loads the declarative description of a cooperative-sensing
// network: the entities being tracked, the sensors mounted on them, and the
// static marker transforms that seed the transform graph before live sensor
// data arrives.
package config

import (
	"io"
	"os"
	"strconv"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/num/quat"
	"gopkg.in/yaml.v3"

	"github.com/poselink/poselink/spatialmath"
	"github.com/poselink/poselink/transformgraph"
)

// TransformConfig is a static transform given as a translation and an
// [x y z w] rotation quaternion.
type TransformConfig struct {
	Origin []float64 `yaml:"origin"`
	Rot    []float64 `yaml:"rot"`
}

// ParsePose converts the raw components into a pose. The rotation must have
// exactly 4 components and the origin exactly 3.
func (tc TransformConfig) ParsePose() (spatialmath.Pose, error) {
	if len(tc.Rot) != 4 {
		return spatialmath.Pose{}, errors.Errorf("'rot' is expected to have 4 elements; got %d", len(tc.Rot))
	}
	if len(tc.Origin) != 3 {
		return spatialmath.Pose{}, errors.Errorf("'origin' is expected to have 3 elements; got %d", len(tc.Origin))
	}
	return spatialmath.NewPoseChecked(
		r3.Vector{X: tc.Origin[0], Y: tc.Origin[1], Z: tc.Origin[2]},
		quat.Number{Real: tc.Rot[3], Imag: tc.Rot[0], Jmag: tc.Rot[1], Kmag: tc.Rot[2]},
	)
}

// Sensor describes one sensor mounted on an entity: its name, the transport
// topic its observations arrive on, and its static mount transform relative
// to the entity origin.
type Sensor struct {
	Name      string          `yaml:"name"`
	Topic     string          `yaml:"topic"`
	Transform TransformConfig `yaml:"transform"`
}

// Entity describes one named entity and its sensors.
type Entity struct {
	Name    string   `yaml:"name"`
	Sensors []Sensor `yaml:"sensors"`
}

// Marker describes a fiducial marker at a fixed transform relative to a
// reference entity.
type Marker struct {
	ID        int             `yaml:"id"`
	Ref       string          `yaml:"ref"`
	Transform TransformConfig `yaml:"transform"`
}

// EntityName returns the graph entity name used for this marker.
func (m Marker) EntityName() string {
	return "marker_" + strconv.Itoa(m.ID)
}

// Config is a validated network description.
type Config struct {
	Entities []Entity `yaml:"entities"`
	Markers  []Marker `yaml:"markers"`
}

// Read loads and validates a network description from a file.
func Read(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := FromReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config %q", filename)
	}
	return cfg, nil
}

// FromReader loads and validates a network description from a reader.
func FromReader(r io.Reader) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "cannot parse config document")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate collects every problem with the document rather than stopping at
// the first, so the operator can fix the file in one pass.
func (c *Config) validate() error {
	var errAll error
	if c.Entities == nil {
		multierr.AppendInto(&errAll, errors.New("cannot find 'entities'"))
	}
	if c.Markers == nil {
		multierr.AppendInto(&errAll, errors.New("cannot find 'markers'"))
	}
	for _, entity := range c.Entities {
		if entity.Name == "" {
			multierr.AppendInto(&errAll, errors.New("entity with empty name"))
		}
		for _, sensor := range entity.Sensors {
			if _, err := sensor.Transform.ParsePose(); err != nil {
				multierr.AppendInto(&errAll,
					errors.Wrapf(err, "sensor %q of entity %q", sensor.Name, entity.Name))
			}
		}
	}
	for _, marker := range c.Markers {
		if marker.Ref == "" {
			multierr.AppendInto(&errAll, errors.Errorf("marker %d has no 'ref' entity", marker.ID))
		}
		if _, err := marker.Transform.ParsePose(); err != nil {
			multierr.AppendInto(&errAll, errors.Wrapf(err, "marker %d", marker.ID))
		}
	}
	return errAll
}

// ApplyTo seeds a transform graph with the configured entities and the static
// marker edges. Marker edges carry a config-scoped measurement key so a live
// sensor stream observing the same marker can supersede them.
func (c *Config) ApplyTo(g *transformgraph.Graph) error {
	for _, entity := range c.Entities {
		g.AddEntity(entity.Name)
	}
	for _, marker := range c.Markers {
		pose, err := marker.Transform.ParsePose()
		if err != nil {
			return errors.Wrapf(err, "marker %d", marker.ID)
		}
		key := transformgraph.NewMeasurementKey("config", marker.Ref, marker.EntityName())
		if err := g.UpdateSensorData(marker.Ref, marker.EntityName(), key, pose, transformgraph.DefaultWeight); err != nil {
			return errors.Wrapf(err, "marker %d", marker.ID)
		}
	}
	return nil
}
