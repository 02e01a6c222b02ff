package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAnchorsSeedAtOne(t *testing.T) {
	record := &RunRecord{
		SeedSet: SingleSeed("S"),
		Scores:  map[string]float64{"S": 200, "A": 50, "B": 10},
	}
	weights := Normalize(record)
	assert.Equal(t, 1.0, weights["S"])
	assert.Equal(t, 0.25, weights["A"])
	assert.Equal(t, 0.05, weights["B"])
	assert.Equal(t, weights, record.Weights)
}

func TestNormalizeCapsAboveSeed(t *testing.T) {
	// A hub visited more than the seed still caps at 1.0
	record := &RunRecord{
		SeedSet: SingleSeed("S"),
		Scores:  map[string]float64{"S": 100, "hub": 150},
	}
	weights := Normalize(record)
	assert.Equal(t, 1.0, weights["S"])
	assert.Equal(t, 1.0, weights["hub"])
}

func TestNormalizeMultiSeedAnchorsAllSeeds(t *testing.T) {
	record := &RunRecord{
		SeedSet: SeedSet{ID: "pair", Seeds: []Seed{{Node: "S1"}, {Node: "S2"}}},
		Scores:  map[string]float64{"S1": 300, "S2": 120, "A": 30},
	}
	weights := Normalize(record)
	assert.Equal(t, 1.0, weights["S1"])
	// The weaker seed anchors at 1.0 too
	assert.Equal(t, 1.0, weights["S2"])
	// Others scale against the strongest seed
	assert.Equal(t, 0.1, weights["A"])
}

func TestNormalizeSkipsUnvisitedNodes(t *testing.T) {
	record := &RunRecord{
		SeedSet: SingleSeed("S"),
		Scores:  map[string]float64{"S": 10},
	}
	weights := Normalize(record)
	_, ok := weights["never_reached"]
	assert.False(t, ok)
	assert.Len(t, weights, 1)
}

func TestNormalizeIsMonotonic(t *testing.T) {
	record := &RunRecord{
		SeedSet: SingleSeed("S"),
		Scores: map[string]float64{
			"S": 80, "A": 60, "B": 40, "C": 40, "D": 5, "hub": 100,
		},
	}
	weights := Normalize(record)
	ranked := Ranking(weights)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Weight, ranked[i].Weight)
	}
	// Raw order survives normalization wherever it is not capped
	assert.GreaterOrEqual(t, weights["A"], weights["B"])
	assert.GreaterOrEqual(t, weights["B"], weights["D"])
}

func TestNormalizeEmptyScores(t *testing.T) {
	record := &RunRecord{
		SeedSet: SingleSeed("S"),
		Status:  StatusDeadEndExhausted,
		Scores:  map[string]float64{},
	}
	assert.Empty(t, Normalize(record))
}

func TestRankingBreaksTiesById(t *testing.T) {
	ranked := Ranking(map[string]float64{
		"B": 0.5, "A": 0.5, "C": 0.9, "D": 0.1,
	})
	require.Len(t, ranked, 4)
	assert.Equal(t, "C", ranked[0].ID)
	assert.Equal(t, "A", ranked[1].ID)
	assert.Equal(t, "B", ranked[2].ID)
	assert.Equal(t, "D", ranked[3].ID)
}
