package starmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSystems() map[SystemID]*System {
	sec := 0.9
	temp := 55.0
	return map[SystemID]*System{
		1: {ID: 1, Name: "Nod", Position: &Position{X: 0, Y: 0, Z: 0},
			Metadata: Metadata{SecurityStatus: &sec, MinExternalTemp: &temp}},
		2: {ID: 2, Name: "Brana", Position: &Position{X: 3, Y: 4, Z: 0}},
		3: {ID: 3, Name: "Eridu"},
	}
}

func TestSystemIDByName(t *testing.T) {
	m := New(testSystems(), nil)

	id, ok := m.SystemIDByName("Nod")
	require.True(t, ok)
	assert.Equal(t, SystemID(1), id)

	// Resolution is case-insensitive and ignores surrounding whitespace.
	id, ok = m.SystemIDByName("  bRaNa ")
	require.True(t, ok)
	assert.Equal(t, SystemID(2), id)

	_, ok = m.SystemIDByName("Unknown")
	assert.False(t, ok)
}

func TestPositionAndTemperature(t *testing.T) {
	m := New(testSystems(), nil)

	pos, ok := m.PositionOf(2)
	require.True(t, ok)
	assert.InDelta(t, 5.0, pos.DistanceTo(Position{}), 1e-12)

	_, ok = m.PositionOf(3)
	assert.False(t, ok, "coordless system must report no position")

	temp, ok := m.TemperatureOf(1)
	require.True(t, ok)
	assert.Equal(t, 55.0, temp)

	_, ok = m.TemperatureOf(2)
	assert.False(t, ok, "system without temperature must report unknown")
}

func TestAdjacencyDeterministic(t *testing.T) {
	m := New(testSystems(), map[SystemID][]SystemID{
		1: {3, 2},
	})
	assert.Equal(t, []SystemID{2, 3}, m.Adjacency[1])
}

func TestFuzzyMatches(t *testing.T) {
	m := New(testSystems(), nil)

	// One typo away from "Brana".
	got := m.FuzzyMatches("Brena", 3)
	require.NotEmpty(t, got)
	assert.Equal(t, "Brana", got[0])

	// A wild guess produces no suggestions at all.
	assert.Empty(t, m.FuzzyMatches("Zzzzzzzzzzzz", 3))
	assert.Empty(t, m.FuzzyMatches("", 3))
	assert.Empty(t, m.FuzzyMatches("Brena", 0))
}
