// Package starmap holds the immutable point-set the routing engine works on:
// star systems with optional coordinates and metadata, plus the gate
// adjacency relation between them. A Starmap is loaded once per session and
// never mutated afterwards, so it can be shared read-only across requests.
package starmap

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// SystemID is the stable identifier of a star system within a starmap.
type SystemID int64

// Position is a 3D Cartesian coordinate in light-years.
type Position struct {
	X, Y, Z float64
}

// DistanceTo returns the Euclidean distance to another position.
func (p Position) DistanceTo(o Position) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	dz := p.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Metadata carries the optional per-system attributes the engine consumes.
// MinExternalTemp is an opaque precomputed scalar (Kelvin); the engine never
// derives it.
type Metadata struct {
	ConstellationName string
	RegionName        string
	SecurityStatus    *float64
	MinExternalTemp   *float64
}

// System is a single star system. Immutable once loaded.
type System struct {
	ID       SystemID
	Name     string
	Position *Position
	Metadata Metadata
}

// Starmap is the in-memory point-set plus gate adjacency. Fingerprint is the
// SHA-256 of the source dataset and identifies the exact snapshot; derived
// artifacts (graphs, spatial index) record it for freshness checks.
type Starmap struct {
	Systems     map[SystemID]*System
	Adjacency   map[SystemID][]SystemID
	Fingerprint [32]byte
	ReleaseTag  string

	nameToID map[string]SystemID
	names    []string
}

// New builds a Starmap over the given systems and gate adjacency, indexing
// names for resolution. Name lookup is case-insensitive.
func New(systems map[SystemID]*System, adjacency map[SystemID][]SystemID) *Starmap {
	if systems == nil {
		systems = make(map[SystemID]*System)
	}
	if adjacency == nil {
		adjacency = make(map[SystemID][]SystemID)
	}

	m := &Starmap{
		Systems:   systems,
		Adjacency: adjacency,
		nameToID:  make(map[string]SystemID, len(systems)),
		names:     make([]string, 0, len(systems)),
	}
	for _, sys := range systems {
		m.nameToID[strings.ToLower(sys.Name)] = sys.ID
		m.names = append(m.names, sys.Name)
	}
	sort.Strings(m.names)

	// Keep neighbour lists deterministic regardless of load order.
	for id := range adjacency {
		targets := adjacency[id]
		sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	}
	return m
}

// Len returns the number of systems in the starmap.
func (m *Starmap) Len() int {
	return len(m.Systems)
}

// SystemIDByName resolves a system name (case-insensitive) to its identifier.
func (m *Starmap) SystemIDByName(name string) (SystemID, bool) {
	id, ok := m.nameToID[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// SystemName returns the display name for an identifier, or "" when unknown.
func (m *Starmap) SystemName(id SystemID) string {
	if sys, ok := m.Systems[id]; ok {
		return sys.Name
	}
	return ""
}

// PositionOf returns the coordinates of a system when known.
func (m *Starmap) PositionOf(id SystemID) (Position, bool) {
	sys, ok := m.Systems[id]
	if !ok || sys.Position == nil {
		return Position{}, false
	}
	return *sys.Position, true
}

// TemperatureOf returns the minimum external temperature of a system when
// known.
func (m *Starmap) TemperatureOf(id SystemID) (float64, bool) {
	sys, ok := m.Systems[id]
	if !ok || sys.Metadata.MinExternalTemp == nil {
		return 0, false
	}
	return *sys.Metadata.MinExternalTemp, true
}

// Names returns all system names in sorted order.
func (m *Starmap) Names() []string {
	return m.names
}

// FuzzyMatches returns up to limit system names ranked by edit distance to
// the query. Candidates further than half the query length away are dropped,
// so wild guesses yield no suggestions rather than misleading ones.
func (m *Starmap) FuzzyMatches(name string, limit int) []string {
	if limit <= 0 || len(m.names) == 0 {
		return nil
	}
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return nil
	}
	maxDist := len(query)/2 + 1

	type scored struct {
		name string
		dist int
	}
	candidates := make([]scored, 0, 16)
	for _, candidate := range m.names {
		d := levenshtein.ComputeDistance(query, strings.ToLower(candidate))
		if d <= maxDist {
			candidates = append(candidates, scored{name: candidate, dist: d})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].name < candidates[j].name
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}
