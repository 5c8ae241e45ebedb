package transformgraph

import "github.com/pkg/errors"

// ErrNotFound is returned by lookups when no chain of measurements connects
// the two entities, or when an entity name is not known to the graph. It is
// an expected condition while the network is still converging, not a fault.
var ErrNotFound = errors.New("no transform between entities")

// ErrInvalidMeasurement is returned when a sensor update carries a rotation
// that is not a unit quaternion; the update is rejected before any mutation.
var ErrInvalidMeasurement = errors.New("measurement rotation is not a unit quaternion")

func newEntityNotFoundError(name string) error {
	return errors.Wrapf(ErrNotFound, "entity %q not in graph", name)
}

func newUnreachableError(from, to string) error {
	return errors.Wrapf(ErrNotFound, "no path from %q to %q", from, to)
}
