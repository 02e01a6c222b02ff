package graph

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// resolver turns raw edge weights and run parameters into per-node
// transition distributions. Effective weight of u -> v is
//
//	base(u,v) * typeMultiplier(type(v)) * experimentalMultiplier(v)
//
// Distributions are precomputed once per run: the graph is read-only while
// a walk is in flight, so the cumulative sums never go stale.
type resolver struct {
	transitions map[string]*transition
}

// transition is a sampling table over the viable neighbors of one node.
// cdf[i] is the cumulative effective weight up to targets[i].
type transition struct {
	targets []string
	cdf     []float64
	total   float64
}

func newResolver(g *Graph, params Params) (*resolver, error) {
	if !g.built() {
		if err := g.Build(); err != nil {
			return nil, err
		}
	}
	r := resolver{transitions: make(map[string]*transition, len(g.Nodes))}
	for id := range g.Nodes {
		t, err := buildTransition(g, id, params)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", id, err)
		}
		r.transitions[id] = t
	}
	return &r, nil
}

func buildTransition(g *Graph, id string, params Params) (*transition, error) {
	neighbors := g.neighbors(id)
	if len(neighbors) == 0 {
		// Isolated node: no viable transition
		return nil, nil
	}
	targets := make([]string, 0, len(neighbors))
	weights := make([]float64, 0, len(neighbors))
	for _, n := range neighbors {
		effective, err := effectiveWeight(g, n, params)
		if err != nil {
			return nil, err
		}
		if effective == 0 {
			continue
		}
		targets = append(targets, n.id)
		weights = append(weights, effective)
	}
	// All edges weigh zero: same as having no neighbors at all
	if len(targets) == 0 {
		return nil, nil
	}
	cdf := make([]float64, len(weights))
	floats.CumSum(cdf, weights)
	return &transition{targets: targets, cdf: cdf, total: cdf[len(cdf)-1]}, nil
}

func effectiveWeight(g *Graph, n neighbor, params Params) (float64, error) {
	effective := n.weight
	target := g.Nodes[n.id]
	if multiplier, ok := params.NodeTypeWeights[target.Type]; ok {
		effective *= multiplier
	}
	if len(target.Attributes) > 0 {
		effective *= params.ExperimentalWeightMultiplier
	}
	if effective < 0 || math.IsNaN(effective) || math.IsInf(effective, 0) {
		return 0, fmt.Errorf("effective weight to %s is %f: %w", n.id, effective, ErrInvalidWeight)
	}
	return effective, nil
}

// sample draws the next node from the transition distribution of id.
// The second return is false on a dead end.
func (r *resolver) sample(rng *rand.Rand, id string) (string, bool) {
	t := r.transitions[id]
	if t == nil {
		return "", false
	}
	x := rng.Float64() * t.total
	i := sort.SearchFloat64s(t.cdf, x)
	if i >= len(t.targets) {
		i = len(t.targets) - 1
	}
	return t.targets[i], true
}

// viable reports whether id has at least one outgoing transition.
func (r *resolver) viable(id string) bool {
	return r.transitions[id] != nil
}

// anyViable reports whether any node in the graph can take a step. When this
// is false and restarts are disabled, a walk cannot move at all.
func (r *resolver) anyViable() bool {
	for _, t := range r.transitions {
		if t != nil {
			return true
		}
	}
	return false
}

// distribution returns the normalized transition probabilities out of id,
// or nil on a dead end.
func (r *resolver) distribution(id string) map[string]float64 {
	t := r.transitions[id]
	if t == nil {
		return nil
	}
	probabilities := make(map[string]float64, len(t.targets))
	previous := 0.0
	for i, target := range t.targets {
		probabilities[target] = (t.cdf[i] - previous) / t.total
		previous = t.cdf[i]
	}
	return probabilities
}
