package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weightOf(w float64) *float64 {
	return &w
}

// hostPathogenGraph builds the 5-node network from the propagation scenario:
// viral seed S connected to host proteins A (weight 2) and B (weight 1),
// with A-C and B-D extending each branch.
func hostPathogenGraph() *Graph {
	g := &Graph{Name: "test network"}
	g.AddNode("S", &Node{Name: "NS2B3", Type: "viral"})
	g.AddNode("A", &Node{Name: "STAT2", Type: "host"})
	g.AddNode("B", &Node{Name: "TBK1", Type: "host"})
	g.AddNode("C", &Node{Name: "IRF3", Type: "host"})
	g.AddNode("D", &Node{Name: "IKBKE", Type: "host"})
	g.AddEdge(Edge{Source: "S", Target: "A", Weight: weightOf(2)})
	g.AddEdge(Edge{Source: "S", Target: "B", Weight: weightOf(1)})
	g.AddEdge(Edge{Source: "A", Target: "C"})
	g.AddEdge(Edge{Source: "B", Target: "D"})
	return g
}

func TestLoadGraphFromBytes(t *testing.T) {
	doc := `{
		"name": "dengue interactions",
		"nodes": {
			"NS5": {"name": "NS5", "type": "viral"},
			"STAT2": {"name": "STAT2", "type": "host",
			          "attributes": {"expression": 1.4}}
		},
		"edges": [{"source": "NS5", "target": "STAT2", "weight": 2.5}]
	}`
	g, err := LoadGraphFromBytes([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "dengue interactions", g.Name)
	assert.Len(t, g.Nodes, 2)
	assert.Equal(t, 1.4, g.Nodes["STAT2"].Attributes["expression"])
	// Undirected edge shows up in both adjacencies
	require.Len(t, g.neighbors("NS5"), 1)
	require.Len(t, g.neighbors("STAT2"), 1)
	assert.Equal(t, 2.5, g.neighbors("NS5")[0].weight)
}

func TestLoadGraphRejectsUnknownEndpoint(t *testing.T) {
	doc := `{
		"nodes": {"A": {}},
		"edges": [{"source": "A", "target": "missing"}]
	}`
	_, err := LoadGraphFromBytes([]byte(doc))
	assert.ErrorContains(t, err, "unknown target node")
}

func TestBuildRejectsNegativeWeight(t *testing.T) {
	g := &Graph{}
	g.AddNode("A", &Node{})
	g.AddNode("B", &Node{})
	g.AddEdge(Edge{Source: "A", Target: "B", Weight: weightOf(-1)})
	err := g.Build()
	assert.ErrorIs(t, err, ErrInvalidWeight)
}

func TestBuildDefaultsMissingWeight(t *testing.T) {
	g := &Graph{}
	g.AddNode("A", &Node{})
	g.AddNode("B", &Node{})
	g.AddEdge(Edge{Source: "A", Target: "B"})
	require.NoError(t, g.Build())
	require.Len(t, g.neighbors("A"), 1)
	assert.Equal(t, 1.0, g.neighbors("A")[0].weight)
}

func TestDirectedEdgeIsOneWay(t *testing.T) {
	g := &Graph{}
	g.AddNode("A", &Node{})
	g.AddNode("B", &Node{})
	g.AddEdge(Edge{Source: "A", Target: "B", Directed: true})
	require.NoError(t, g.Build())
	assert.Len(t, g.neighbors("A"), 1)
	assert.Empty(t, g.neighbors("B"))
}

func TestAnnotateCopyLeavesInputAlone(t *testing.T) {
	g := hostPathogenGraph()
	require.NoError(t, g.Build())
	annotated := g.AnnotateCopy(map[string]float64{"S": 1.0, "A": 0.5})

	require.NotNil(t, annotated.Nodes["S"].PropagationWeight)
	assert.Equal(t, 1.0, *annotated.Nodes["S"].PropagationWeight)
	assert.Equal(t, 0.5, *annotated.Nodes["A"].PropagationWeight)
	// Unvisited nodes carry no weight at all
	assert.Nil(t, annotated.Nodes["C"].PropagationWeight)
	// The input graph is untouched
	for id, node := range g.Nodes {
		assert.Nil(t, node.PropagationWeight, "input node %s was annotated", id)
	}
	// Mutating the copy must not leak back
	annotated.Nodes["A"].Name = "changed"
	assert.Equal(t, "STAT2", g.Nodes["A"].Name)
}

func TestFindViralProteins(t *testing.T) {
	g := hostPathogenGraph()
	assert.Equal(t, []string{"S"}, g.FindViralProteins())
}

func TestWriteRanking(t *testing.T) {
	g := hostPathogenGraph()
	path := filepath.Join(t.TempDir(), "ranking.txt")
	err := WriteRanking(path, g, map[string]float64{"S": 1.0, "A": 0.25})
	require.NoError(t, err)
	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "Node S (NS2B3) with propagation weight 1.000000")
	assert.Contains(t, string(contents), "Node A (STAT2) with propagation weight 0.250000")
}
