package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"sort"
	"strings"
)

// Node is a protein (or other entity) in the interaction network.
// Attributes holds numeric experimental data (expression, phosphorylation,
// ...); an absent key means the measurement was not taken.
// PropagationWeight is only set on annotated copies produced after a run:
// nil means the walk never reached this node.
type Node struct {
	Name              string             `json:"name,omitempty"`
	Type              string             `json:"type,omitempty"`
	Attributes        map[string]float64 `json:"attributes,omitempty"`
	PropagationWeight *float64           `json:"propagation_weight,omitempty"`
}

// Edge connects two nodes. A nil Weight defaults to 1.0; an explicit 0 is a
// valid (never followed) weight. Edges are undirected unless Directed is set.
type Edge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Weight   *float64 `json:"weight,omitempty"`
	Directed bool     `json:"directed,omitempty"`
}

type Graph struct {
	Name  string           `json:"name,omitempty"`
	Nodes map[string]*Node `json:"nodes"`
	Edges []Edge           `json:"edges"`

	// Outgoing adjacency, built by Build; sorted by target id so walks
	// over the same graph are reproducible.
	adjacency map[string][]neighbor
}

type neighbor struct {
	id     string
	weight float64
}

// AddNode adds a node to the graph
func (g *Graph) AddNode(id string, node *Node) {
	if g.Nodes == nil {
		g.Nodes = make(map[string]*Node)
	}
	g.Nodes[id] = node
	g.adjacency = nil
}

// AddEdge adds an edge to the graph
func (g *Graph) AddEdge(edge Edge) {
	g.Edges = append(g.Edges, edge)
	g.adjacency = nil
}

// Build validates the graph and computes the adjacency used by walks:
// every endpoint must exist and every weight must be a finite, non-negative
// number. Called implicitly before a run if needed.
func (g *Graph) Build() error {
	adjacency := make(map[string][]neighbor, len(g.Nodes))
	for id := range g.Nodes {
		adjacency[id] = nil
	}
	for _, e := range g.Edges {
		if g.Nodes[e.Source] == nil {
			return fmt.Errorf("edge %s -> %s: unknown source node", e.Source, e.Target)
		}
		if g.Nodes[e.Target] == nil {
			return fmt.Errorf("edge %s -> %s: unknown target node", e.Source, e.Target)
		}
		weight := 1.0
		if e.Weight != nil {
			weight = *e.Weight
		}
		if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
			return fmt.Errorf("edge %s -> %s: weight %f: %w", e.Source, e.Target, weight, ErrInvalidWeight)
		}
		adjacency[e.Source] = append(adjacency[e.Source], neighbor{id: e.Target, weight: weight})
		if !e.Directed {
			adjacency[e.Target] = append(adjacency[e.Target], neighbor{id: e.Source, weight: weight})
		}
	}
	for id := range adjacency {
		sort.Slice(adjacency[id], func(i, j int) bool {
			return adjacency[id][i].id < adjacency[id][j].id
		})
	}
	g.adjacency = adjacency
	return nil
}

func (g *Graph) built() bool {
	return g.adjacency != nil
}

func (g *Graph) neighbors(id string) []neighbor {
	return g.adjacency[id]
}

// Copy returns a deep copy; walks never mutate their input graph, so
// repeated runs over the same graph stay independent.
func (g *Graph) Copy() *Graph {
	copied := &Graph{
		Name:  g.Name,
		Nodes: make(map[string]*Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for id, node := range g.Nodes {
		duplicate := *node
		if node.Attributes != nil {
			duplicate.Attributes = make(map[string]float64, len(node.Attributes))
			for k, v := range node.Attributes {
				duplicate.Attributes[k] = v
			}
		}
		if node.PropagationWeight != nil {
			w := *node.PropagationWeight
			duplicate.PropagationWeight = &w
		}
		copied.Nodes[id] = &duplicate
	}
	copy(copied.Edges, g.Edges)
	return copied
}

// AnnotateCopy returns a copy of the graph with propagation weights written
// on the visited nodes. Nodes the walk never reached keep no
// propagation_weight attribute at all, so "not reached" stays
// distinguishable from "reached with negligible weight".
func (g *Graph) AnnotateCopy(weights map[string]float64) *Graph {
	annotated := g.Copy()
	for id, node := range annotated.Nodes {
		if w, ok := weights[id]; ok {
			value := w
			node.PropagationWeight = &value
		} else {
			node.PropagationWeight = nil
		}
	}
	return annotated
}

// FindViralProteins returns the ids of all nodes typed "viral", sorted for
// stable output. These are the usual propagation seeds.
func (g *Graph) FindViralProteins() []string {
	var ids []string
	for id, node := range g.Nodes {
		if node.Type == "viral" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func LoadGraphResource(resource string) (*Graph, error) {
	var bytes []byte
	var err error
	// Check if it's a network resource or a local one
	if strings.HasPrefix(resource, "http") {
		// Loading file from network
		var resp *http.Response
		resp, err = http.Get(resource)
		if err != nil {
			log.Printf("Could not load network file at %s: %v", resource, err)
			return nil, err
		}
		defer resp.Body.Close()
		// Read response body
		bytes, err = io.ReadAll(resp.Body)
		if err != nil {
			log.Printf("Could not load body from request: %v", err)
			return nil, err
		}
	} else {
		// Loading file from local filesystem
		bytes, err = os.ReadFile(resource)
		if err != nil {
			log.Printf("Could not read graph at %s: %v", resource, err)
			return nil, err
		}
	}
	g, err := LoadGraphFromBytes(bytes)
	if err != nil {
		log.Printf("Could not load graph from %s: %v", resource, err)
		return nil, err
	}
	return g, nil
}

func LoadGraphFromBytes(contents []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(contents, &g); err != nil {
		return nil, fmt.Errorf("parse graph: %v", err)
	}
	if len(g.Nodes) == 0 {
		return nil, fmt.Errorf("graph has no nodes")
	}
	if err := g.Build(); err != nil {
		return nil, err
	}
	return &g, nil
}

// WriteRanking writes the ranked propagation weights to a text file.
func WriteRanking(output string, g *Graph, weights map[string]float64) error {
	file, err := os.Create(output)
	if err != nil {
		return err
	}
	defer file.Close()
	var contents strings.Builder
	for _, ranked := range Ranking(weights) {
		name := ranked.ID
		if node := g.Nodes[ranked.ID]; node != nil && node.Name != "" {
			name = node.Name
		}
		fmt.Fprintf(&contents, "Node %s (%s) with propagation weight %f\n", ranked.ID, name, ranked.Weight)
	}
	_, err = file.WriteString(contents.String())
	return err
}
