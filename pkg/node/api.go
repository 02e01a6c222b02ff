package node

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/netbio/viralwalk/pkg/graph"
	"github.com/netbio/viralwalk/pkg/utils"
)

// ApiServer is the master's HTTP surface: callers submit a graph plus seed
// sets and get the batch report back in one round trip.
type ApiServer struct {
	Node *Node
}

// PropagationRequest is the POST /propagation body. Either an inline graph
// or a graph source (path or http(s) URL) must be given. With AllViral set
// every node typed "viral" becomes its own single-seed set, the way the
// original analysis iterated viral proteins.
type PropagationRequest struct {
	Graph       *graph.Graph    `json:"graph,omitempty"`
	GraphSource string          `json:"graph_source,omitempty"`
	SeedSets    []graph.SeedSet `json:"seed_sets,omitempty"`
	AllViral    bool            `json:"all_viral,omitempty"`
	Parameters  *graph.Params   `json:"parameters,omitempty"`
	RngSeed     int64           `json:"rng_seed,omitempty"`
}

type PropagationResponse struct {
	Node    string                      `json:"node"`
	Reports map[string]*graph.RunReport `json:"reports"`
}

func (s *ApiServer) Start(port int) error {
	e := echo.New()
	e.HideBanner = true
	e.GET("/health", s.handleHealth)
	e.POST("/propagation", s.handlePropagation)
	utils.ServerLog("Starting API server on port %d", port)
	return e.Start(fmt.Sprintf(":%d", port))
}

func (s *ApiServer) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"node": s.Node.Id,
		"role": RoleToString(s.Node.Role),
	})
}

func (s *ApiServer) handlePropagation(c echo.Context) error {
	var request PropagationRequest
	if err := c.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Could not parse request: %v", err))
	}
	g, err := requestGraph(&request)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sets := request.SeedSets
	if request.AllViral {
		for _, id := range g.FindViralProteins() {
			sets = append(sets, graph.SingleSeed(id))
		}
	}
	if len(sets) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no seed sets requested")
	}
	params := s.Node.Params
	if request.Parameters != nil {
		params = *request.Parameters
	}

	var reports map[string]*graph.RunReport
	if s.Node.Distributed() {
		reports, err = s.Node.RunDistributed(c.Request().Context(), g, sets, params, request.RngSeed)
	} else {
		reports, err = graph.RunBatch(c.Request().Context(), g, sets, params, graph.BatchOptions{
			Workers: s.Node.Workers,
			RNGSeed: request.RngSeed,
		})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("Propagation failed: %v", err))
	}
	return c.JSON(http.StatusOK, PropagationResponse{Node: s.Node.Id, Reports: reports})
}

func requestGraph(request *PropagationRequest) (*graph.Graph, error) {
	if request.Graph != nil {
		if err := request.Graph.Build(); err != nil {
			return nil, fmt.Errorf("invalid graph: %v", err)
		}
		return request.Graph, nil
	}
	if request.GraphSource == "" {
		return nil, fmt.Errorf("request carries neither a graph nor a graph source")
	}
	g, err := graph.LoadGraphResource(request.GraphSource)
	if err != nil {
		return nil, fmt.Errorf("could not load graph from %s: %v", request.GraphSource, err)
	}
	return g, nil
}
