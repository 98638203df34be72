package route

import (
	"container/heap"

	"star-router/internal/graph"
	"star-router/internal/starmap"
)

// PositionSource answers per-system coordinate lookups for the heuristic.
// Both *starmap.Starmap and *spatial.Index satisfy it.
type PositionSource interface {
	PositionOf(id starmap.SystemID) (starmap.Position, bool)
}

// findPathBFS finds the fewest-hop path. Every allowed edge costs the same,
// so edges without a defined distance are traversable.
func findPathBFS(g *graph.Graph, start, goal starmap.SystemID, ev *Evaluator) ([]starmap.SystemID, bool) {
	if start == goal {
		return []starmap.SystemID{start}, true
	}
	cameFrom := map[starmap.SystemID]starmap.SystemID{start: start}
	frontier := []starmap.SystemID{start}

	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]
		for _, e := range g.Neighbours(current) {
			if _, seen := cameFrom[e.To]; seen || !ev.Allows(e) {
				continue
			}
			cameFrom[e.To] = current
			if e.To == goal {
				return reconstruct(cameFrom, start, goal), true
			}
			frontier = append(frontier, e.To)
		}
	}
	return nil, false
}

// queueItem is an entry in the priority frontier. priority is accumulated
// distance for Dijkstra, distance plus heuristic for A*.
type queueItem struct {
	id       starmap.SystemID
	priority float64
}

// priorityQueue orders by priority, then system id, so equal-cost frontiers
// pop deterministically.
type priorityQueue []queueItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].priority != pq[j].priority {
		return pq[i].priority < pq[j].priority
	}
	return pq[i].id < pq[j].id
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *priorityQueue) Push(x any) { *pq = append(*pq, x.(queueItem)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// findPathDijkstra finds the minimum-total-distance path. Edges without a
// defined distance cannot be traversed by weighted search.
func findPathDijkstra(g *graph.Graph, start, goal starmap.SystemID, ev *Evaluator) ([]starmap.SystemID, bool) {
	return weightedSearch(g, start, goal, ev, func(starmap.SystemID) float64 { return 0 })
}

// findPathAStar is Dijkstra guided by straight-line distance to the goal.
// The heuristic never exceeds the true remaining cost, so optimality is
// preserved; systems without coordinates fall back to a zero estimate.
func findPathAStar(g *graph.Graph, start, goal starmap.SystemID, ev *Evaluator, positions PositionSource) ([]starmap.SystemID, bool) {
	goalPos, goalKnown := starmap.Position{}, false
	if positions != nil {
		goalPos, goalKnown = positions.PositionOf(goal)
	}
	heuristic := func(id starmap.SystemID) float64 {
		if !goalKnown {
			return 0
		}
		pos, ok := positions.PositionOf(id)
		if !ok {
			return 0
		}
		return pos.DistanceTo(goalPos)
	}
	return weightedSearch(g, start, goal, ev, heuristic)
}

func weightedSearch(g *graph.Graph, start, goal starmap.SystemID, ev *Evaluator, heuristic func(starmap.SystemID) float64) ([]starmap.SystemID, bool) {
	if start == goal {
		return []starmap.SystemID{start}, true
	}
	dist := map[starmap.SystemID]float64{start: 0}
	cameFrom := map[starmap.SystemID]starmap.SystemID{start: start}
	done := make(map[starmap.SystemID]bool)

	frontier := &priorityQueue{{id: start, priority: heuristic(start)}}
	heap.Init(frontier)

	for frontier.Len() > 0 {
		current := heap.Pop(frontier).(queueItem)
		if done[current.id] {
			continue
		}
		done[current.id] = true
		if current.id == goal {
			return reconstruct(cameFrom, start, goal), true
		}

		for _, e := range g.Neighbours(current.id) {
			if done[e.To] || !e.HasDistance() || !ev.Allows(e) {
				continue
			}
			candidate := dist[current.id] + e.Distance
			if known, seen := dist[e.To]; seen && known <= candidate {
				continue
			}
			dist[e.To] = candidate
			cameFrom[e.To] = current.id
			heap.Push(frontier, queueItem{id: e.To, priority: candidate + heuristic(e.To)})
		}
	}
	return nil, false
}

func reconstruct(cameFrom map[starmap.SystemID]starmap.SystemID, start, goal starmap.SystemID) []starmap.SystemID {
	var reversed []starmap.SystemID
	for at := goal; ; at = cameFrom[at] {
		reversed = append(reversed, at)
		if at == start {
			break
		}
	}
	path := make([]starmap.SystemID, len(reversed))
	for i, id := range reversed {
		path[len(path)-1-i] = id
	}
	return path
}
