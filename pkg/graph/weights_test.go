package graph

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverDistributionProportionalToWeights(t *testing.T) {
	g := hostPathogenGraph()
	r, err := newResolver(g, DefaultParams())
	require.NoError(t, err)

	probabilities := r.distribution("S")
	require.Len(t, probabilities, 2)
	assert.InDelta(t, 2.0/3.0, probabilities["A"], 1e-12)
	assert.InDelta(t, 1.0/3.0, probabilities["B"], 1e-12)
}

func TestResolverAppliesTypeMultiplier(t *testing.T) {
	g := hostPathogenGraph()
	params := DefaultParams()
	// Quadruple the pull toward host nodes typed like B's branch by
	// retyping B and boosting that type
	g.Nodes["B"].Type = "kinase"
	params.NodeTypeWeights = map[string]float64{"kinase": 4.0}

	r, err := newResolver(g, params)
	require.NoError(t, err)
	probabilities := r.distribution("S")
	// Effective weights: A = 2, B = 1 * 4 = 4
	assert.InDelta(t, 2.0/6.0, probabilities["A"], 1e-12)
	assert.InDelta(t, 4.0/6.0, probabilities["B"], 1e-12)
}

func TestResolverAppliesExperimentalMultiplier(t *testing.T) {
	g := hostPathogenGraph()
	g.Nodes["B"].Attributes = map[string]float64{"phospho_score": 0.9}
	params := DefaultParams()
	params.ExperimentalWeightMultiplier = 10

	r, err := newResolver(g, params)
	require.NoError(t, err)
	probabilities := r.distribution("S")
	// Effective weights: A = 2, B = 1 * 10 = 10
	assert.InDelta(t, 2.0/12.0, probabilities["A"], 1e-12)
	assert.InDelta(t, 10.0/12.0, probabilities["B"], 1e-12)
}

func TestResolverReportsDeadEnds(t *testing.T) {
	g := &Graph{}
	g.AddNode("isolated", &Node{})
	g.AddNode("zero", &Node{})
	g.AddNode("other", &Node{})
	g.AddEdge(Edge{Source: "zero", Target: "other", Weight: weightOf(0)})
	require.NoError(t, g.Build())

	r, err := newResolver(g, DefaultParams())
	require.NoError(t, err)
	assert.False(t, r.viable("isolated"))
	// All-zero outgoing weights count as a dead end too
	assert.False(t, r.viable("zero"))
	assert.False(t, r.anyViable())

	rng := rand.New(rand.NewSource(1))
	_, ok := r.sample(rng, "isolated")
	assert.False(t, ok)
}

func TestResolverRejectsNegativeMultiplier(t *testing.T) {
	g := hostPathogenGraph()
	params := DefaultParams()
	params.NodeTypeWeights = map[string]float64{"host": -2}
	_, err := Walk(g, SingleSeed("S"), params, 1)
	assert.ErrorIs(t, err, ErrInvalidWeight)
}

func TestResolverSampleFollowsDistribution(t *testing.T) {
	g := hostPathogenGraph()
	r, err := newResolver(g, DefaultParams())
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	counts := map[string]int{}
	const draws = 30000
	for i := 0; i < draws; i++ {
		next, ok := r.sample(rng, "S")
		require.True(t, ok)
		counts[next]++
	}
	assert.InDelta(t, 2.0/3.0, float64(counts["A"])/draws, 0.02)
	assert.InDelta(t, 1.0/3.0, float64(counts["B"])/draws, 0.02)
}
