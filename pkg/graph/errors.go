package graph

import "errors"

var (
	// ErrInvalidWeight marks a negative or non-finite edge weight or
	// multiplier. Rejected before a run starts, never silently clamped.
	ErrInvalidWeight = errors.New("invalid weight")
	// ErrEmptySeedSet marks a run requested with zero seeds.
	ErrEmptySeedSet = errors.New("empty seed set")
	// ErrUnknownSeed marks a seed id that is not a node of the graph.
	ErrUnknownSeed = errors.New("unknown seed node")
)
