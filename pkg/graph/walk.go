package graph

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Status classifies why a run stopped.
type Status string

const (
	// StatusMaxSteps: the hard step cap was reached.
	StatusMaxSteps Status = "max_steps"
	// StatusMaxScore: the top-ranked nodes captured the configured share
	// of the accumulated score.
	StatusMaxScore Status = "max_score"
	// StatusConverged: the score distribution stopped moving between
	// convergence checkpoints.
	StatusConverged Status = "converged"
	// StatusDeadEndExhausted: restarts are disabled and no node anywhere
	// in the graph has a viable transition, so the walk cannot take a
	// single step. A legitimate run outcome, not an error.
	StatusDeadEndExhausted Status = "dead_end_exhausted"
)

// RunRecord is the immutable result of one walk run. Its JSON field names
// are the stable contract with downstream hypothesis generation.
type RunRecord struct {
	SeedSet        SeedSet            `json:"seed_set"`
	Params         Params             `json:"parameters_used"`
	Status         Status             `json:"status"`
	Steps          int                `json:"steps_taken"`
	Restarts       int                `json:"restart_count"`
	ForcedRestarts int                `json:"forced_restart_count"`
	Scores         map[string]float64 `json:"score_map"`
	// Weights is filled by Normalize: seed-anchored propagation weights.
	Weights       map[string]float64 `json:"propagation_weights,omitempty"`
	RNGSeed       int64              `json:"rng_seed"`
	ExecutionTime float64            `json:"execution_time_seconds"`
}

// seedPicker draws restart targets from the (possibly weighted) seed
// distribution. Restarting to the node the walk already occupies is allowed.
type seedPicker struct {
	nodes []string
	cdf   []float64
	total float64
}

func newSeedPicker(g *Graph, set SeedSet) (*seedPicker, error) {
	if len(set.Seeds) == 0 {
		return nil, fmt.Errorf("seed set %q: %w", set.ID, ErrEmptySeedSet)
	}
	nodes := make([]string, 0, len(set.Seeds))
	weights := make([]float64, 0, len(set.Seeds))
	for _, seed := range set.Seeds {
		if g.Nodes[seed.Node] == nil {
			return nil, fmt.Errorf("seed set %q: %s: %w", set.ID, seed.Node, ErrUnknownSeed)
		}
		weight := seed.Weight
		if weight == 0 {
			// Equal share by default
			weight = 1.0
		}
		if err := validMultiplier(weight); err != nil {
			return nil, fmt.Errorf("seed set %q: seed %s: %w", set.ID, seed.Node, err)
		}
		nodes = append(nodes, seed.Node)
		weights = append(weights, weight)
	}
	cdf := make([]float64, len(weights))
	floats.CumSum(cdf, weights)
	total := cdf[len(cdf)-1]
	if total == 0 {
		return nil, fmt.Errorf("seed set %q: all seed weights are zero: %w", set.ID, ErrInvalidWeight)
	}
	return &seedPicker{nodes: nodes, cdf: cdf, total: total}, nil
}

func (p *seedPicker) pick(rng *rand.Rand) string {
	if len(p.nodes) == 1 {
		return p.nodes[0]
	}
	x := rng.Float64() * p.total
	i := sort.SearchFloat64s(p.cdf, x)
	if i >= len(p.nodes) {
		i = len(p.nodes) - 1
	}
	return p.nodes[i]
}

// Walk runs one random walk with restart for the given seed set and returns
// its raw run record. The input graph is never mutated. The caller supplies
// the random source, so a fixed seed value reproduces the exact trajectory.
func Walk(g *Graph, set SeedSet, params Params, rngSeed int64) (*RunRecord, error) {
	start := time.Now()
	params = params.withDefaults()
	if err := params.validate(); err != nil {
		return nil, err
	}
	picker, err := newSeedPicker(g, set)
	if err != nil {
		return nil, err
	}
	weights, err := newResolver(g, params)
	if err != nil {
		return nil, err
	}

	record := RunRecord{
		SeedSet: set,
		Params:  params,
		Scores:  make(map[string]float64),
		RNGSeed: rngSeed,
	}
	// Degenerate case: restarts disabled and nowhere to go from any node,
	// seeds included. Fail fast instead of looping.
	if params.RestartProbability == 0 && !weights.anyViable() {
		record.Status = StatusDeadEndExhausted
		record.ExecutionTime = time.Since(start).Seconds()
		return &record, nil
	}

	rng := rand.New(rand.NewSource(rngSeed))
	current := picker.pick(rng)
	record.Scores[current] += params.VisitScore
	totalScore := params.VisitScore

	var checkpoint map[string]float64
	for {
		if x := rng.Float64(); x < params.RestartProbability {
			// Probabilistic restart, always succeeds
			current = picker.pick(rng)
			record.Restarts++
		} else if next, ok := weights.sample(rng, current); ok {
			current = next
		} else {
			// Dead end: force a restart instead of terminating, so
			// sparse single-seed networks keep exploring
			current = picker.pick(rng)
			record.ForcedRestarts++
		}
		record.Scores[current] += params.VisitScore
		totalScore += params.VisitScore
		record.Steps++

		if record.Steps >= params.MaxSteps {
			record.Status = StatusMaxSteps
			break
		}
		if params.MaxScore > 0 && topShare(record.Scores, params.TopSetSize, totalScore) >= params.MaxScore {
			record.Status = StatusMaxScore
			break
		}
		if params.ConvergenceInterval > 0 && record.Steps%params.ConvergenceInterval == 0 {
			snapshot := normalizedScores(record.Scores, totalScore)
			if checkpoint != nil && scoreDrift(checkpoint, snapshot) < params.ConvergenceTolerance {
				record.Status = StatusConverged
				break
			}
			checkpoint = snapshot
		}
	}
	record.ExecutionTime = time.Since(start).Seconds()
	return &record, nil
}

// topShare is the fraction of all accumulated score held by the k
// highest-scoring nodes.
func topShare(scores map[string]float64, k int, total float64) float64 {
	if total == 0 {
		return 0
	}
	values := make([]float64, 0, len(scores))
	for _, v := range scores {
		values = append(values, v)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))
	if k > len(values) {
		k = len(values)
	}
	return floats.Sum(values[:k]) / total
}

func normalizedScores(scores map[string]float64, total float64) map[string]float64 {
	normalized := make(map[string]float64, len(scores))
	for id, v := range scores {
		normalized[id] = v / total
	}
	return normalized
}

// scoreDrift is the L1 distance between two normalized score snapshots.
func scoreDrift(previous, current map[string]float64) float64 {
	drift := 0.0
	for id, v := range current {
		drift += math.Abs(v - previous[id])
	}
	for id, v := range previous {
		if _, ok := current[id]; !ok {
			drift += v
		}
	}
	return drift
}
