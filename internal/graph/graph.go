// Package graph builds the traversal graphs the planners search: the gate
// graph from the starmap's adjacency relation, the spatial graph from
// nearest-neighbour queries, and the hybrid graph combining both.
package graph

import (
	"fmt"
	"math"
	"sort"

	"star-router/internal/logger"
	"star-router/internal/spatial"
	"star-router/internal/starmap"
)

// EdgeKind distinguishes gate connections from jump-drive reachability.
type EdgeKind uint8

const (
	Gate EdgeKind = iota
	Spatial
)

func (k EdgeKind) String() string {
	switch k {
	case Gate:
		return "gate"
	case Spatial:
		return "spatial"
	default:
		return "unknown"
	}
}

// Edge is a directed connection. Distance is NaN when either endpoint lacks
// coordinates; gate traversal tolerates that, weighted search does not.
type Edge struct {
	From, To starmap.SystemID
	Kind     EdgeKind
	Distance float64
}

// HasDistance reports whether the edge carries a defined distance.
func (e Edge) HasDistance() bool {
	return !math.IsNaN(e.Distance)
}

// Mode identifies which connectivity a graph models.
type Mode uint8

const (
	GateOnly Mode = iota
	SpatialOnly
	Hybrid
)

func (m Mode) String() string {
	switch m {
	case GateOnly:
		return "gate"
	case SpatialOnly:
		return "spatial"
	case Hybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// Graph is an immutable adjacency structure over starmap systems.
type Graph struct {
	mode      Mode
	adjacency map[starmap.SystemID][]Edge
	edgeCount int
}

// Mode returns the connectivity this graph models.
func (g *Graph) Mode() Mode {
	return g.mode
}

// Neighbours returns the outgoing edges of a system, ordered by
// (target, kind, distance). The returned slice must not be modified.
func (g *Graph) Neighbours(id starmap.SystemID) []Edge {
	return g.adjacency[id]
}

// EdgeBetween returns the cheapest edge from one system to another. Edges
// with a defined distance win over edges without one.
func (g *Graph) EdgeBetween(from, to starmap.SystemID) (Edge, bool) {
	return g.EdgeBetweenFunc(from, to, nil)
}

// EdgeBetweenFunc returns the cheapest edge from one system to another among
// those the allow predicate accepts. A nil predicate accepts every edge.
func (g *Graph) EdgeBetweenFunc(from, to starmap.SystemID, allow func(Edge) bool) (Edge, bool) {
	var best Edge
	found := false
	for _, e := range g.adjacency[from] {
		if e.To != to {
			continue
		}
		if allow != nil && !allow(e) {
			continue
		}
		if !found || betterEdge(e, best) {
			best = e
			found = true
		}
	}
	return best, found
}

func betterEdge(a, b Edge) bool {
	switch {
	case a.HasDistance() && !b.HasDistance():
		return true
	case !a.HasDistance():
		return false
	default:
		return a.Distance < b.Distance
	}
}

// NodeCount returns the number of systems with at least one outgoing edge.
func (g *Graph) NodeCount() int {
	return len(g.adjacency)
}

// EdgeCount returns the total number of directed edges.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// BuildOptions configures the spatial and hybrid builders.
type BuildOptions struct {
	// Index answers the nearest-neighbour queries. When nil, one is built
	// from the starmap's coordinates on the fly.
	Index *spatial.Index
	// MaxSpatialNeighbors caps the out-degree of each system's spatial
	// edges before symmetrization. Zero means the default of 12.
	MaxSpatialNeighbors int
	// MaxJump caps spatial edge length in light-years. Zero means unbounded.
	MaxJump float64
	// MaxTemperature, when set, excludes destinations hotter than the cap.
	// Systems with unknown temperature are never excluded.
	MaxTemperature *float64
}

// DefaultMaxSpatialNeighbors is the out-degree cap used when the caller does
// not set one.
const DefaultMaxSpatialNeighbors = 12

// BuildGateGraph builds the graph of gate connections. Edge distance comes
// from system coordinates when both endpoints have them, NaN otherwise.
func BuildGateGraph(m *starmap.Starmap) *Graph {
	g := &Graph{mode: GateOnly, adjacency: make(map[starmap.SystemID][]Edge, len(m.Adjacency))}
	for from, targets := range m.Adjacency {
		fromPos, fromOK := m.PositionOf(from)
		for _, to := range targets {
			dist := math.NaN()
			if toPos, toOK := m.PositionOf(to); fromOK && toOK {
				dist = fromPos.DistanceTo(toPos)
			}
			g.addEdge(Edge{From: from, To: to, Kind: Gate, Distance: dist})
		}
	}
	g.finalize()
	return g
}

// BuildSpatialGraph builds the graph of jump-drive reachability from
// nearest-neighbour queries. Edges are symmetrized so reachability never
// depends on which endpoint the query ran from; systems without coordinates
// get no spatial edges.
func BuildSpatialGraph(m *starmap.Starmap, opts BuildOptions) *Graph {
	idx := opts.Index
	if idx == nil {
		idx = spatial.Build(spatial.PointsFromStarmap(m))
	}
	k := opts.MaxSpatialNeighbors
	if k <= 0 {
		k = DefaultMaxSpatialNeighbors
	}

	g := &Graph{mode: SpatialOnly, adjacency: make(map[starmap.SystemID][]Edge, m.Len())}
	type pair struct{ a, b starmap.SystemID }
	seen := make(map[pair]float64)

	skipped := 0
	for id, sys := range m.Systems {
		if sys.Position == nil {
			skipped++
			continue
		}
		// A system hotter than the cap must not appear in the graph at
		// all: edges it gained here would be mirrored back into it.
		if opts.MaxTemperature != nil {
			if temp, ok := m.TemperatureOf(id); ok && temp > *opts.MaxTemperature {
				continue
			}
		}
		// One extra so the query point itself does not use up a slot.
		matches := idx.NearestFiltered(*sys.Position, spatial.Query{
			K:              k + 1,
			Radius:         opts.MaxJump,
			MaxTemperature: opts.MaxTemperature,
		})
		taken := 0
		for _, match := range matches {
			if match.ID == id || taken == k {
				continue
			}
			taken++
			key := pair{a: minID(id, match.ID), b: maxID(id, match.ID)}
			if prev, ok := seen[key]; !ok || match.Distance < prev {
				seen[key] = match.Distance
			}
		}
	}
	if skipped > 0 {
		logger.Warn("GRAPH", fmt.Sprintf("%d systems lack coordinates, no spatial edges for them", skipped))
	}

	for key, dist := range seen {
		g.addEdge(Edge{From: key.a, To: key.b, Kind: Spatial, Distance: dist})
		g.addEdge(Edge{From: key.b, To: key.a, Kind: Spatial, Distance: dist})
	}
	g.finalize()
	return g
}

// BuildHybridGraph combines gate and spatial connectivity. Both edge kinds
// are kept between the same pair of systems; the planner picks whichever is
// cheaper for its cost model.
func BuildHybridGraph(m *starmap.Starmap, opts BuildOptions) *Graph {
	gate := BuildGateGraph(m)
	spatialGraph := BuildSpatialGraph(m, opts)

	g := &Graph{mode: Hybrid, adjacency: make(map[starmap.SystemID][]Edge, len(gate.adjacency))}
	for _, src := range []*Graph{gate, spatialGraph} {
		for _, edges := range src.adjacency {
			for _, e := range edges {
				g.addEdge(e)
			}
		}
	}
	g.finalize()
	return g
}

func (g *Graph) addEdge(e Edge) {
	g.adjacency[e.From] = append(g.adjacency[e.From], e)
	g.edgeCount++
}

// finalize sorts every adjacency list and collapses duplicate (target, kind)
// entries down to the cheapest, so traversal order is deterministic.
func (g *Graph) finalize() {
	for id, edges := range g.adjacency {
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].To != edges[j].To {
				return edges[i].To < edges[j].To
			}
			if edges[i].Kind != edges[j].Kind {
				return edges[i].Kind < edges[j].Kind
			}
			return betterEdge(edges[i], edges[j])
		})
		dedup := edges[:0]
		for _, e := range edges {
			if n := len(dedup); n > 0 && dedup[n-1].To == e.To && dedup[n-1].Kind == e.Kind {
				continue
			}
			dedup = append(dedup, e)
		}
		g.edgeCount -= len(edges) - len(dedup)
		g.adjacency[id] = dedup
	}
}

func minID(a, b starmap.SystemID) starmap.SystemID {
	if a < b {
		return a
	}
	return b
}

func maxID(a, b starmap.SystemID) starmap.SystemID {
	if a > b {
		return a
	}
	return b
}
