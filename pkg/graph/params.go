package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Params configures a single propagation run.
type Params struct {
	// RestartProbability is the per-step chance of jumping back to a seed
	// instead of following an edge. 0 disables probabilistic restarts
	// (dead-end forced restarts still fire).
	RestartProbability float64 `json:"restart_probability"`
	// MaxSteps is the hard cap on walk length. Always enforced.
	MaxSteps int `json:"max_steps"`
	// MaxScore stops the run early once the top TopSetSize nodes hold at
	// least this fraction of all accumulated score. 0 disables the check.
	MaxScore   float64 `json:"max_score,omitempty"`
	TopSetSize int     `json:"top_set_size,omitempty"`
	// VisitScore is the raw score added on every node visit.
	VisitScore float64 `json:"visit_score,omitempty"`
	// NodeTypeWeights multiplies the weight of edges landing on nodes of
	// the given type (e.g. favor "host" kinases).
	NodeTypeWeights map[string]float64 `json:"node_type_weight_multipliers,omitempty"`
	// ExperimentalWeightMultiplier scales edges landing on nodes that
	// carry any experimental attribute.
	ExperimentalWeightMultiplier float64 `json:"experimental_weight_multiplier,omitempty"`
	// ConvergenceInterval enables a convergence check every N steps;
	// the run stops once the normalized score vector moved less than
	// ConvergenceTolerance (L1) since the previous checkpoint.
	ConvergenceInterval  int     `json:"convergence_interval,omitempty"`
	ConvergenceTolerance float64 `json:"convergence_tolerance,omitempty"`
}

func DefaultParams() Params {
	return Params{
		RestartProbability:           0.2,
		MaxSteps:                     100,
		TopSetSize:                   10,
		VisitScore:                   1.0,
		ExperimentalWeightMultiplier: 1.0,
	}
}

func (p Params) withDefaults() Params {
	if p.TopSetSize == 0 {
		p.TopSetSize = 10
	}
	if p.VisitScore == 0 {
		p.VisitScore = 1.0
	}
	if p.ExperimentalWeightMultiplier == 0 {
		p.ExperimentalWeightMultiplier = 1.0
	}
	return p
}

func (p Params) validate() error {
	if p.RestartProbability < 0 || p.RestartProbability >= 1 {
		return fmt.Errorf("restart probability %f not in [0, 1)", p.RestartProbability)
	}
	if p.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive, got %d", p.MaxSteps)
	}
	if p.MaxScore < 0 || p.MaxScore > 1 {
		return fmt.Errorf("max score %f not in [0, 1]", p.MaxScore)
	}
	if err := validMultiplier(p.VisitScore); err != nil {
		return fmt.Errorf("visit score: %w", err)
	}
	if err := validMultiplier(p.ExperimentalWeightMultiplier); err != nil {
		return fmt.Errorf("experimental weight multiplier: %w", err)
	}
	for nodeType, multiplier := range p.NodeTypeWeights {
		if err := validMultiplier(multiplier); err != nil {
			return fmt.Errorf("type multiplier %q: %w", nodeType, err)
		}
	}
	return nil
}

func validMultiplier(value float64) error {
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%f: %w", value, ErrInvalidWeight)
	}
	return nil
}

// Seed anchors walk restarts at a node. Weight biases multi-seed restart
// selection; 0 means the default equal share.
type Seed struct {
	Node   string  `json:"node"`
	Weight float64 `json:"weight,omitempty"`
}

// SeedSet is one independent propagation unit: a single protein or a named
// group walked together.
type SeedSet struct {
	ID    string `json:"id"`
	Seeds []Seed `json:"seeds"`
}

// SingleSeed is the common case of one protein walked on its own.
func SingleSeed(node string) SeedSet {
	return SeedSet{ID: node, Seeds: []Seed{{Node: node}}}
}

// LoadParams loads run parameters from a JSON config file, filling in the
// defaults for anything left out.
func LoadParams(path string) (Params, error) {
	params := DefaultParams()
	bytes, err := os.ReadFile(path)
	if err != nil {
		return params, fmt.Errorf("read: %v", err)
	}
	if err = json.Unmarshal(bytes, &params); err != nil {
		return params, fmt.Errorf("parse: %v", err)
	}
	return params, nil
}
