// Package transformgraph maintains a live directed graph of relative pose
// measurements between named entities and answers transform queries by
// composing the best available chain of direct measurements.
package transformgraph

import (
	"sort"
	"sync"

	"github.com/edaniels/golog"

	"github.com/poselink/poselink/spatialmath"
)

// DefaultWeight is the edge weight used for measurements whose sensor does not
// supply a trust weight of its own.
const DefaultWeight = 1.0

// MeasurementKey identifies one sensor's observation stream between a specific
// entity pair. Updates carrying the same key supersede each other.
type MeasurementKey string

// NewMeasurementKey builds the key for the stream of the named sensor
// observing the transform between two entities.
func NewMeasurementKey(sensor, from, to string) MeasurementKey {
	return MeasurementKey(sensor + "/" + from + "/" + to)
}

type edge struct {
	from      string
	to        string
	weight    float64
	key       MeasurementKey
	transform spatialmath.Pose
}

// Graph is a directed weighted graph of entities. Every accepted measurement
// is held as a pair of directed edges, the reverse edge carrying the inverse
// transform, so paths may travel against a measurement's original direction.
//
// All operations serialize on an internal mutex; a Graph may be shared between
// a sensor-update goroutine and query goroutines.
type Graph struct {
	mu       sync.Mutex
	logger   golog.Logger
	vertices map[string][]*edge
	byKey    map[MeasurementKey][]*edge
}

// NewGraph returns an empty graph.
func NewGraph(logger golog.Logger) *Graph {
	return &Graph{
		logger:   logger,
		vertices: map[string][]*edge{},
		byKey:    map[MeasurementKey][]*edge{},
	}
}

// AddEntity inserts a named entity. Adding a name that already exists is a
// no-op; names are the entity identity.
func (g *Graph) AddEntity(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addEntityLocked(name)
}

func (g *Graph) addEntityLocked(name string) {
	if _, ok := g.vertices[name]; !ok {
		g.vertices[name] = nil
	}
}

// Entities returns the names of all entities in the graph.
func (g *Graph) Entities() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make([]string, 0, len(g.vertices))
	for name := range g.vertices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UpdateSensorData replaces all edges carrying the given measurement key with
// a fresh pair of directed edges: from->to with the given transform, and
// to->from with its inverse. Entities are created on first reference. The
// rotation must be a unit quaternion or the update is rejected with
// ErrInvalidMeasurement and the graph is left unchanged.
func (g *Graph) UpdateSensorData(from, to string, key MeasurementKey, transform spatialmath.Pose, weight float64) error {
	if !spatialmath.HasUnitRotation(transform.Rotation()) {
		return ErrInvalidMeasurement
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.addEntityLocked(from)
	g.addEntityLocked(to)
	g.removeEdgesByKeyLocked(key)

	forth := &edge{from: from, to: to, weight: weight, key: key, transform: transform}
	back := &edge{from: to, to: from, weight: weight, key: key, transform: transform.Invert()}
	g.vertices[from] = append(g.vertices[from], forth)
	g.vertices[to] = append(g.vertices[to], back)
	g.byKey[key] = []*edge{forth, back}

	g.logger.Debugw("sensor data updated", "from", from, "to", to, "key", key)
	return nil
}

// RemoveAllEdges removes every edge from one entity to another, in that
// direction only, regardless of measurement key.
func (g *Graph) RemoveAllEdges(from, to string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.vertices[from]; !ok {
		return
	}
	kept := g.vertices[from][:0]
	for _, e := range g.vertices[from] {
		if e.to == to {
			g.dropKeyEdgeLocked(e)
			continue
		}
		kept = append(kept, e)
	}
	g.vertices[from] = kept
}

// RemoveEdgesByKey removes every edge carrying the given measurement key, in
// both directions, regardless of endpoints. Used to tear down a sensor stream.
func (g *Graph) RemoveEdgesByKey(key MeasurementKey) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeEdgesByKeyLocked(key)
}

func (g *Graph) removeEdgesByKeyLocked(key MeasurementKey) {
	for _, e := range g.byKey[key] {
		kept := g.vertices[e.from][:0]
		for _, candidate := range g.vertices[e.from] {
			if candidate != e {
				kept = append(kept, candidate)
			}
		}
		g.vertices[e.from] = kept
	}
	delete(g.byKey, key)
}

// dropKeyEdgeLocked unindexes a single edge that is being removed from an
// adjacency list outside of removeEdgesByKeyLocked.
func (g *Graph) dropKeyEdgeLocked(e *edge) {
	kept := g.byKey[e.key][:0]
	for _, candidate := range g.byKey[e.key] {
		if candidate != e {
			kept = append(kept, candidate)
		}
	}
	if len(kept) == 0 {
		delete(g.byKey, e.key)
	} else {
		g.byKey[e.key] = kept
	}
}

// NumberOfEdges returns the current directed edge count; a measurement and
// its paired inverse count as two.
func (g *Graph) NumberOfEdges() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, edges := range g.vertices {
		n += len(edges)
	}
	return n
}

// LookupPath returns the entity names along the cheapest chain of
// measurements from one entity to the other, endpoints included. It returns
// ErrNotFound if either entity is unknown or no chain connects them. Ties in
// path cost resolve deterministically: the search settles entities in
// lexicographic order among equal distances.
func (g *Graph) LookupPath(from, to string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	path, err := g.shortestPathLocked(from, to)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(path)+1)
	names = append(names, from)
	for _, e := range path {
		names = append(names, e.to)
	}
	return names, nil
}

// LookupTransform composes the transforms along the cheapest chain of
// measurements from one entity to the other into a single pose. It returns
// ErrNotFound if either entity is unknown or no chain connects them.
func (g *Graph) LookupTransform(from, to string) (spatialmath.Pose, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	path, err := g.shortestPathLocked(from, to)
	if err != nil {
		return spatialmath.Pose{}, err
	}
	result := spatialmath.NewZeroPose()
	for _, e := range path {
		result = spatialmath.Compose(result, e.transform)
	}
	return result, nil
}

// CanTransform reports whether a chain of measurements currently connects the
// two entities.
func (g *Graph) CanTransform(from, to string) bool {
	_, err := g.LookupPath(from, to)
	return err == nil
}

// shortestPathLocked runs Dijkstra from the source and returns the edges of
// the cheapest path in travel order. A query from an entity to itself yields
// an empty path.
func (g *Graph) shortestPathLocked(from, to string) ([]*edge, error) {
	if _, ok := g.vertices[from]; !ok {
		return nil, newEntityNotFoundError(from)
	}
	if _, ok := g.vertices[to]; !ok {
		return nil, newEntityNotFoundError(to)
	}
	if from == to {
		return nil, nil
	}

	dist := map[string]float64{from: 0}
	via := map[string]*edge{}
	done := map[string]bool{}

	pq := &vertexQueue{{name: from, dist: 0}}
	for pq.Len() > 0 {
		current := popVertex(pq)
		if done[current.name] {
			continue
		}
		done[current.name] = true
		if current.name == to {
			break
		}

		neighbors := append([]*edge(nil), g.vertices[current.name]...)
		sort.Slice(neighbors, func(i, j int) bool {
			if neighbors[i].to != neighbors[j].to {
				return neighbors[i].to < neighbors[j].to
			}
			return neighbors[i].weight < neighbors[j].weight
		})
		for _, e := range neighbors {
			if done[e.to] {
				continue
			}
			alt := current.dist + e.weight
			if best, seen := dist[e.to]; !seen || alt < best {
				dist[e.to] = alt
				via[e.to] = e
				pushVertex(pq, vertexItem{name: e.to, dist: alt})
			}
		}
	}

	if _, reached := via[to]; !reached {
		return nil, newUnreachableError(from, to)
	}

	// Walk predecessors back from the goal, then reverse into travel order.
	var path []*edge
	for at := to; at != from; {
		e := via[at]
		path = append(path, e)
		at = e.from
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}
