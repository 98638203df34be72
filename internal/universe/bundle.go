// Package universe owns the long-lived handle a host process keeps across
// requests: the loaded starmap plus lazily built, cached graphs and spatial
// index. Builds for the same artifact are coalesced so concurrent requests
// never duplicate work.
package universe

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"star-router/internal/graph"
	"star-router/internal/logger"
	"star-router/internal/route"
	"star-router/internal/spatial"
	"star-router/internal/starmap"
)

// Bundle is the per-snapshot artifact cache. It is safe for concurrent use;
// the starmap and every built artifact are immutable.
type Bundle struct {
	m *starmap.Starmap

	mu     sync.RWMutex
	graphs map[string]*graph.Graph
	index  *spatial.Index

	group singleflight.Group
}

// NewBundle wraps a loaded starmap.
func NewBundle(m *starmap.Starmap) *Bundle {
	return &Bundle{m: m, graphs: make(map[string]*graph.Graph)}
}

// Starmap returns the underlying point-set.
func (b *Bundle) Starmap() *starmap.Starmap {
	return b.m
}

// Positions returns the spatial index when one has been built, for use as
// the planner's heuristic source. Nil when no index exists yet.
func (b *Bundle) Positions() route.PositionSource {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.index == nil {
		return nil
	}
	return b.index
}

// Index returns the cached spatial index, building it on first use.
// Concurrent callers share a single build.
func (b *Bundle) Index() *spatial.Index {
	b.mu.RLock()
	idx := b.index
	b.mu.RUnlock()
	if idx != nil {
		return idx
	}

	v, _, _ := b.group.Do("spatial-index", func() (interface{}, error) {
		b.mu.RLock()
		cached := b.index
		b.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		started := time.Now()
		built := spatial.BuildWithMetadata(spatial.PointsFromStarmap(b.m), &spatial.Metadata{
			DatasetChecksum: b.m.Fingerprint,
			ReleaseTag:      b.m.ReleaseTag,
			BuiltAt:         time.Now().UTC(),
		})
		logger.Info("INDEX", fmt.Sprintf("Built spatial index over %d points in %s",
			built.Len(), time.Since(started).Round(time.Millisecond)))

		b.mu.Lock()
		b.index = built
		b.mu.Unlock()
		return built, nil
	})
	return v.(*spatial.Index)
}

// AdoptIndex installs a previously persisted index, typically after a
// freshness check against the starmap's fingerprint.
func (b *Bundle) AdoptIndex(idx *spatial.Index) {
	b.mu.Lock()
	b.index = idx
	b.mu.Unlock()
}

// Graph returns the cached graph for a mode, building it on first use.
// Concurrent callers for the same mode share a single build.
func (b *Bundle) Graph(mode graph.Mode, opts graph.BuildOptions) *graph.Graph {
	key := graphKey(mode, opts)

	b.mu.RLock()
	g := b.graphs[key]
	b.mu.RUnlock()
	if g != nil {
		return g
	}

	v, _, _ := b.group.Do(key, func() (interface{}, error) {
		b.mu.RLock()
		cached := b.graphs[key]
		b.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		if mode != graph.GateOnly {
			// Spatial construction reuses the shared index.
			opts.Index = b.Index()
		}

		started := time.Now()
		var built *graph.Graph
		switch mode {
		case graph.GateOnly:
			built = graph.BuildGateGraph(b.m)
		case graph.SpatialOnly:
			built = graph.BuildSpatialGraph(b.m, opts)
		default:
			built = graph.BuildHybridGraph(b.m, opts)
		}
		logger.Info("GRAPH", fmt.Sprintf("Built %s graph: %d nodes, %d edges in %s",
			mode, built.NodeCount(), built.EdgeCount(), time.Since(started).Round(time.Millisecond)))

		b.mu.Lock()
		b.graphs[key] = built
		b.mu.Unlock()
		return built, nil
	})
	return v.(*graph.Graph)
}

func effectiveNeighbors(opts graph.BuildOptions) int {
	if opts.MaxSpatialNeighbors <= 0 {
		return graph.DefaultMaxSpatialNeighbors
	}
	return opts.MaxSpatialNeighbors
}

// graphKey covers every option that changes what the builders produce, so
// differently filtered graphs never collide in the cache.
func graphKey(mode graph.Mode, opts graph.BuildOptions) string {
	key := fmt.Sprintf("graph-%s-%d", mode, effectiveNeighbors(opts))
	if opts.MaxJump > 0 {
		key += fmt.Sprintf("-j%g", opts.MaxJump)
	}
	if opts.MaxTemperature != nil {
		key += fmt.Sprintf("-t%g", *opts.MaxTemperature)
	}
	return key
}
