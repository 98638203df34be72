package route

import (
	"fmt"
	"strings"

	"star-router/internal/graph"
	"star-router/internal/starmap"
)

// Algorithm is the closed set of supported search strategies. Adding one
// means adding a variant here and a case in SelectPlanner.
type Algorithm uint8

const (
	Bfs Algorithm = iota
	Dijkstra
	AStar
)

func (a Algorithm) String() string {
	switch a {
	case Bfs:
		return "bfs"
	case Dijkstra:
		return "dijkstra"
	case AStar:
		return "a-star"
	default:
		return "unknown"
	}
}

// ParseAlgorithm resolves a user-supplied algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bfs", "breadth-first":
		return Bfs, nil
	case "dijkstra":
		return Dijkstra, nil
	case "a-star", "astar", "a*":
		return AStar, nil
	default:
		return Bfs, fmt.Errorf("unknown algorithm %q (want bfs, dijkstra, or a-star)", s)
	}
}

// Planner is the common planning contract. FindPath returns the ordered
// system sequence from start to goal, or false when the reachable frontier
// is exhausted.
type Planner interface {
	Algorithm() Algorithm
	// RequiresSpatialIndex reports whether the planner benefits from a
	// prebuilt index for its heuristic.
	RequiresSpatialIndex() bool
	FindPath(g *graph.Graph, positions PositionSource, start, goal starmap.SystemID, ev *Evaluator) ([]starmap.SystemID, bool)
}

// SelectPlanner maps an algorithm to its planner.
func SelectPlanner(a Algorithm) Planner {
	switch a {
	case Dijkstra:
		return dijkstraPlanner{}
	case AStar:
		return astarPlanner{}
	default:
		return bfsPlanner{}
	}
}

type bfsPlanner struct{}

func (bfsPlanner) Algorithm() Algorithm       { return Bfs }
func (bfsPlanner) RequiresSpatialIndex() bool { return false }
func (bfsPlanner) FindPath(g *graph.Graph, _ PositionSource, start, goal starmap.SystemID, ev *Evaluator) ([]starmap.SystemID, bool) {
	return findPathBFS(g, start, goal, ev)
}

type dijkstraPlanner struct{}

func (dijkstraPlanner) Algorithm() Algorithm       { return Dijkstra }
func (dijkstraPlanner) RequiresSpatialIndex() bool { return false }
func (dijkstraPlanner) FindPath(g *graph.Graph, _ PositionSource, start, goal starmap.SystemID, ev *Evaluator) ([]starmap.SystemID, bool) {
	return findPathDijkstra(g, start, goal, ev)
}

type astarPlanner struct{}

func (astarPlanner) Algorithm() Algorithm       { return AStar }
func (astarPlanner) RequiresSpatialIndex() bool { return true }
func (astarPlanner) FindPath(g *graph.Graph, positions PositionSource, start, goal starmap.SystemID, ev *Evaluator) ([]starmap.SystemID, bool) {
	return findPathAStar(g, start, goal, ev, positions)
}
