// Package spatial provides a k-d tree over star-system coordinates with
// optional per-point temperature filtering, plus a versioned binary codec so
// a built index can be persisted and reused across sessions.
package spatial

import (
	"math"
	"sort"
	"time"

	"star-router/internal/starmap"
)

// Point is a single indexed system. Coordinates are stored at float32
// precision; distances are computed in float64. HasTemp distinguishes a
// genuinely unknown temperature from a zero one.
type Point struct {
	ID      starmap.SystemID
	Coords  [3]float32
	Temp    float32
	HasTemp bool
}

// Metadata ties a persisted index to the dataset snapshot it was built from.
type Metadata struct {
	DatasetChecksum [32]byte
	ReleaseTag      string
	BuiltAt         time.Time
}

// Result is one match from a spatial query.
type Result struct {
	ID       starmap.SystemID
	Distance float64
}

// Query bundles the filters a spatial lookup can apply. K limits the number
// of results (0 means unlimited), Radius caps the search distance (0 means
// unbounded), and MaxTemperature, when set, drops points hotter than the cap.
// Points with unknown temperature always pass the temperature filter.
type Query struct {
	K              int
	Radius         float64
	MaxTemperature *float64
}

type treeNode struct {
	point       int32
	left, right int32 // -1 when absent

	// Temperature aggregates over the whole subtree, used to prune or
	// bulk-accept branches during filtered queries.
	minTemp, maxTemp float32
	hasUnknownTemp   bool
}

// Index is an immutable k-d tree. Build once, query from any goroutine.
type Index struct {
	points []Point
	byID   map[starmap.SystemID]int32
	nodes  []treeNode
	root   int32
	meta   *Metadata
}

// Build constructs an index over the given points without dataset metadata.
func Build(points []Point) *Index {
	return BuildWithMetadata(points, nil)
}

// BuildWithMetadata constructs an index and attaches dataset metadata for
// later freshness checks. The input slice is copied; callers keep ownership.
func BuildWithMetadata(points []Point, meta *Metadata) *Index {
	idx := &Index{
		points: append([]Point(nil), points...),
		byID:   make(map[starmap.SystemID]int32, len(points)),
		nodes:  make([]treeNode, 0, len(points)),
		root:   -1,
		meta:   meta,
	}
	order := make([]int32, len(idx.points))
	for i := range order {
		order[i] = int32(i)
		idx.byID[idx.points[i].ID] = int32(i)
	}
	idx.root = idx.build(order, 0)
	return idx
}

// build splits the subrange on the median along axis depth%3 and recurses.
// Returns the node index, or -1 for an empty range.
func (idx *Index) build(order []int32, depth int) int32 {
	if len(order) == 0 {
		return -1
	}
	axis := depth % 3
	sort.Slice(order, func(i, j int) bool {
		a, b := idx.points[order[i]], idx.points[order[j]]
		if a.Coords[axis] != b.Coords[axis] {
			return a.Coords[axis] < b.Coords[axis]
		}
		return a.ID < b.ID
	})
	mid := len(order) / 2

	n := treeNode{
		point:   order[mid],
		minTemp: float32(math.Inf(1)),
		maxTemp: float32(math.Inf(-1)),
	}
	self := int32(len(idx.nodes))
	idx.nodes = append(idx.nodes, n)

	left := idx.build(order[:mid], depth+1)
	right := idx.build(order[mid+1:], depth+1)

	node := &idx.nodes[self]
	node.left, node.right = left, right
	idx.foldTemp(node, idx.points[node.point])
	if left >= 0 {
		idx.foldChild(node, &idx.nodes[left])
	}
	if right >= 0 {
		idx.foldChild(node, &idx.nodes[right])
	}
	return self
}

func (idx *Index) foldTemp(n *treeNode, p Point) {
	if !p.HasTemp {
		n.hasUnknownTemp = true
		return
	}
	if p.Temp < n.minTemp {
		n.minTemp = p.Temp
	}
	if p.Temp > n.maxTemp {
		n.maxTemp = p.Temp
	}
}

func (idx *Index) foldChild(n *treeNode, child *treeNode) {
	if child.minTemp < n.minTemp {
		n.minTemp = child.minTemp
	}
	if child.maxTemp > n.maxTemp {
		n.maxTemp = child.maxTemp
	}
	if child.hasUnknownTemp {
		n.hasUnknownTemp = true
	}
}

// Len returns the number of indexed points.
func (idx *Index) Len() int {
	return len(idx.points)
}

// Metadata returns the dataset metadata recorded at build time, or nil for
// indexes built (or persisted) without it.
func (idx *Index) Metadata() *Metadata {
	return idx.meta
}

// PositionOf returns the stored coordinates of an indexed system.
func (idx *Index) PositionOf(id starmap.SystemID) (starmap.Position, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return starmap.Position{}, false
	}
	c := idx.points[i].Coords
	return starmap.Position{X: float64(c[0]), Y: float64(c[1]), Z: float64(c[2])}, true
}

// TemperatureOf returns the stored temperature of an indexed system.
func (idx *Index) TemperatureOf(id starmap.SystemID) (float64, bool) {
	i, ok := idx.byID[id]
	if !ok || !idx.points[i].HasTemp {
		return 0, false
	}
	return float64(idx.points[i].Temp), true
}

// Nearest returns the single closest point to pos.
func (idx *Index) Nearest(pos starmap.Position) (Result, bool) {
	results := idx.search(pos, Query{K: 1})
	if len(results) == 0 {
		return Result{}, false
	}
	return results[0], true
}

// KNearest returns the k closest points to pos, ordered by distance.
func (idx *Index) KNearest(pos starmap.Position, k int) []Result {
	return idx.search(pos, Query{K: k})
}

// WithinRadius returns all points within radius of pos, ordered by distance.
func (idx *Index) WithinRadius(pos starmap.Position, radius float64) []Result {
	return idx.search(pos, Query{Radius: radius})
}

// NearestFiltered runs a k-nearest query with the full filter set.
func (idx *Index) NearestFiltered(pos starmap.Position, q Query) []Result {
	return idx.search(pos, q)
}

// WithinRadiusFiltered runs a radius query with an optional temperature cap.
func (idx *Index) WithinRadiusFiltered(pos starmap.Position, radius float64, maxTemp *float64) []Result {
	return idx.search(pos, Query{Radius: radius, MaxTemperature: maxTemp})
}

type searchState struct {
	target  [3]float64
	query   Query
	results []Result // sorted ascending by (distance, id)
}

func (s *searchState) worst() float64 {
	if s.query.K > 0 && len(s.results) == s.query.K {
		return s.results[len(s.results)-1].Distance
	}
	if s.query.Radius > 0 {
		return s.query.Radius
	}
	return math.Inf(1)
}

func (s *searchState) add(id starmap.SystemID, dist float64) {
	if s.query.Radius > 0 && dist > s.query.Radius {
		return
	}
	if s.query.K > 0 && len(s.results) == s.query.K && dist >= s.worst() {
		return
	}
	at := sort.Search(len(s.results), func(i int) bool {
		if s.results[i].Distance != dist {
			return s.results[i].Distance > dist
		}
		return s.results[i].ID > id
	})
	s.results = append(s.results, Result{})
	copy(s.results[at+1:], s.results[at:])
	s.results[at] = Result{ID: id, Distance: dist}
	if s.query.K > 0 && len(s.results) > s.query.K {
		s.results = s.results[:s.query.K]
	}
}

func (idx *Index) search(pos starmap.Position, q Query) []Result {
	if idx.root < 0 {
		return nil
	}
	state := &searchState{target: [3]float64{pos.X, pos.Y, pos.Z}, query: q}
	idx.walk(idx.root, 0, state, q.MaxTemperature != nil)
	return state.results
}

// walk descends the tree, visiting the near child first and pruning the far
// child by splitting-plane distance. skipTempCheck is set once a subtree's
// aggregate shows every point in it passes the temperature filter.
func (idx *Index) walk(nodeIdx int32, depth int, s *searchState, checkTemp bool) {
	node := &idx.nodes[nodeIdx]

	if checkTemp {
		maxT := float32(*s.query.MaxTemperature)
		// Entire subtree hotter than the cap with no unknowns: prune.
		if !node.hasUnknownTemp && node.minTemp > maxT {
			return
		}
		// Entire subtree at or below the cap: no per-point checks needed.
		// Unknown temperatures pass the filter, so they never block this.
		if node.maxTemp <= maxT {
			checkTemp = false
		}
	}

	p := idx.points[node.point]
	if !checkTemp || idx.tempAccepts(p, *s.query.MaxTemperature) {
		dx := s.target[0] - float64(p.Coords[0])
		dy := s.target[1] - float64(p.Coords[1])
		dz := s.target[2] - float64(p.Coords[2])
		s.add(p.ID, math.Sqrt(dx*dx+dy*dy+dz*dz))
	}

	axis := depth % 3
	diff := s.target[axis] - float64(p.Coords[axis])
	near, far := node.left, node.right
	if diff > 0 {
		near, far = node.right, node.left
	}
	if near >= 0 {
		idx.walk(near, depth+1, s, checkTemp)
	}
	if far >= 0 && math.Abs(diff) <= s.worst() {
		idx.walk(far, depth+1, s, checkTemp)
	}
}

func (idx *Index) tempAccepts(p Point, maxTemp float64) bool {
	// Unknown temperature never excludes a point.
	return !p.HasTemp || float64(p.Temp) <= maxTemp
}

// PointsFromStarmap extracts the indexable points of a starmap. Systems
// without coordinates cannot be indexed and are skipped; the returned slice
// is ordered by system ID so builds are reproducible.
func PointsFromStarmap(m *starmap.Starmap) []Point {
	points := make([]Point, 0, m.Len())
	for id, sys := range m.Systems {
		if sys.Position == nil {
			continue
		}
		p := Point{
			ID: id,
			Coords: [3]float32{
				float32(sys.Position.X),
				float32(sys.Position.Y),
				float32(sys.Position.Z),
			},
		}
		if sys.Metadata.MinExternalTemp != nil {
			p.Temp = float32(*sys.Metadata.MinExternalTemp)
			p.HasTemp = true
		}
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].ID < points[j].ID })
	return points
}
