package graph

import "sort"

// Normalize rescales the raw visit scores of a terminated run into
// propagation weights: every seed anchors at exactly 1.0 and all other
// nodes are divided by the highest raw seed score. The seed is visited
// disproportionately by design, so anchoring there (instead of at the
// global maximum) keeps host-node weights comparable across runs. Values
// above the anchor are capped at 1.0.
//
// Nodes the walk never visited get no entry at all. The result is also
// stored on the record.
func Normalize(record *RunRecord) map[string]float64 {
	weights := make(map[string]float64, len(record.Scores))
	if len(record.Scores) == 0 {
		record.Weights = weights
		return weights
	}
	seedMax := 0.0
	seeds := make(map[string]bool, len(record.SeedSet.Seeds))
	for _, seed := range record.SeedSet.Seeds {
		seeds[seed.Node] = true
		if score := record.Scores[seed.Node]; score > seedMax {
			seedMax = score
		}
	}
	for id, score := range record.Scores {
		switch {
		case seeds[id]:
			weights[id] = 1.0
		case score >= seedMax:
			weights[id] = 1.0
		default:
			weights[id] = score / seedMax
		}
	}
	record.Weights = weights
	return weights
}

// RankedNode pairs a node id with its propagation weight.
type RankedNode struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
}

// Ranking orders propagation weights descending; ties break on node id so
// the output ordering is deterministic.
func Ranking(weights map[string]float64) []RankedNode {
	ranked := make([]RankedNode, 0, len(weights))
	for id, weight := range weights {
		ranked = append(ranked, RankedNode{ID: id, Weight: weight})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Weight != ranked[j].Weight {
			return ranked[i].Weight > ranked[j].Weight
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}
