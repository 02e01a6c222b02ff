package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/netbio/viralwalk/pkg/graph"
	"github.com/netbio/viralwalk/pkg/node"
	"github.com/netbio/viralwalk/pkg/utils"
)

var api string      // Connection string of the server (empty = run locally)
var file string     // Graph file or URL
var seeds string    // Comma-separated seed node ids
var allViral bool   // Seed every viral protein
var config string   // Run parameter JSON file
var rngSeed int64   // Base random seed
var workers int     // Local worker pool size
var output string   // Ranking output file prefix
var annotate string // Annotated graph output file prefix
var top int         // How many top nodes to print per seed set

func init() {
	flag.StringVar(&api, "api", "", "API server address (e.g. 127.0.0.1:1234); empty runs locally")
	flag.StringVar(&file, "graph", "graph.json", "Graph file or http(s) URL")
	flag.StringVar(&seeds, "seeds", "", "Comma-separated seed node ids")
	flag.BoolVar(&allViral, "all-viral", false, "Seed every node typed viral")
	flag.StringVar(&config, "config", "", "Run parameter JSON file")
	flag.Int64Var(&rngSeed, "rng-seed", 0, "Base random seed for reproducible runs")
	flag.IntVar(&workers, "workers", 0, "Concurrent seed-set runs (0 = number of CPUs)")
	flag.StringVar(&output, "output", "", "Ranking output file prefix (one file per seed set)")
	flag.StringVar(&annotate, "annotate", "", "Annotated graph JSON output file prefix (one file per seed set)")
	flag.IntVar(&top, "top", 10, "Top nodes to print per seed set")
}

func main() {
	flag.Parse()

	params := graph.DefaultParams()
	if config != "" {
		var err error
		params, err = graph.LoadParams(config)
		utils.FailOnError("Failed to load parameters", err)
	}

	if api != "" {
		runRemote(params)
		return
	}

	g, err := graph.LoadGraphResource(file)
	utils.FailOnError("Failed to load graph", err)

	sets := seedSets(g)
	if len(sets) == 0 {
		utils.FailOnError("No seeds", fmt.Errorf("pass -seeds or -all-viral"))
	}
	reports, err := graph.RunBatch(context.Background(), g, sets, params, graph.BatchOptions{
		Workers: workers,
		RNGSeed: rngSeed,
	})
	utils.FailOnError("Propagation failed", err)
	printReports(g, reports)
}

func runRemote(params graph.Params) {
	g, err := graph.LoadGraphResource(file)
	utils.FailOnError("Failed to load graph", err)
	request := node.PropagationRequest{
		Graph:      g,
		SeedSets:   seedSets(g),
		AllViral:   false,
		Parameters: &params,
		RngSeed:    rngSeed,
	}
	body, err := json.Marshal(&request)
	utils.FailOnError("Failed to encode request", err)
	resp, err := http.Post(
		fmt.Sprintf("http://%s/propagation", api),
		"application/json",
		bytes.NewReader(body),
	)
	utils.FailOnError("Server call failed", err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	utils.FailOnError("Failed to read response", err)
	if resp.StatusCode != http.StatusOK {
		utils.FailOnError("Server error", fmt.Errorf("%s: %s", resp.Status, data))
	}
	var response node.PropagationResponse
	err = json.Unmarshal(data, &response)
	utils.FailOnError("Failed to parse response", err)
	printReports(g, response.Reports)
}

func seedSets(g *graph.Graph) []graph.SeedSet {
	var sets []graph.SeedSet
	if allViral {
		for _, id := range g.FindViralProteins() {
			sets = append(sets, graph.SingleSeed(id))
		}
	}
	for _, id := range strings.Split(seeds, ",") {
		if id = strings.TrimSpace(id); id != "" {
			sets = append(sets, graph.SingleSeed(id))
		}
	}
	return sets
}

func printReports(g *graph.Graph, reports map[string]*graph.RunReport) {
	ids := make([]string, 0, len(reports))
	for id := range reports {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		report := reports[id]
		if report.Error != "" {
			fmt.Printf("Seed set %s failed: %s\n", id, report.Error)
			continue
		}
		record := report.Record
		fmt.Printf("Seed set %s: status=%s steps=%d restarts=%d forced_restarts=%d visited=%d\n",
			id, record.Status, record.Steps, record.Restarts, record.ForcedRestarts, len(record.Scores))
		ranked := graph.Ranking(record.Weights)
		limit := top
		if limit > len(ranked) {
			limit = len(ranked)
		}
		for i := 0; i < limit; i++ {
			name := ranked[i].ID
			if n := g.Nodes[ranked[i].ID]; n != nil && n.Name != "" {
				name = n.Name
			}
			fmt.Printf("  %d. %s (%s): %.4f\n", i+1, name, ranked[i].ID, ranked[i].Weight)
		}
		if output != "" {
			path := fmt.Sprintf("%s_%s.txt", output, id)
			err := graph.WriteRanking(path, g, record.Weights)
			utils.FailOnError("Failed to write ranking", err)
			fmt.Printf("  Ranking written to %s\n", path)
		}
		if annotate != "" {
			path := fmt.Sprintf("%s_%s.json", annotate, id)
			annotated := g.AnnotateCopy(record.Weights)
			data, err := json.MarshalIndent(annotated, "", "  ")
			utils.FailOnError("Failed to encode annotated graph", err)
			err = os.WriteFile(path, data, 0644)
			utils.FailOnError("Failed to write annotated graph", err)
			fmt.Printf("  Annotated graph written to %s\n", path)
		}
	}
}
