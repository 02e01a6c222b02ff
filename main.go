package main

import (
	"fmt"
	"log"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/netbio/viralwalk/pkg/graph"
	"github.com/netbio/viralwalk/pkg/node"
	"github.com/netbio/viralwalk/pkg/utils"
)

func main() {
	// Read environment variables
	env := utils.ReadEnvVars()
	utils.InitLog(env.NodeLog, env.ServerLog)

	id, err := gonanoid.New()
	utils.FailOnError("Failed to generate node id", err)

	n := node.Node{
		Id:         id,
		Role:       node.Master,
		Params:     graph.DefaultParams(),
		Workers:    env.Workers,
		Connection: fmt.Sprintf("%s:%d", env.Host, env.Port),
	}
	if strings.EqualFold(env.Role, "worker") {
		n.Role = node.Worker
	}

	// Connect to RabbitMQ when configured; masters fall back to running
	// batches in-process without it
	err = n.ConnectQueue(env)
	utils.FailOnError("Could not set up message queue", err)
	if n.Queue.Conn != nil {
		defer n.Queue.Conn.Close()
		defer n.Queue.Channel.Close()
	}

	switch n.Role {
	case node.Worker:
		if !n.Distributed() {
			log.Fatalf("Worker nodes need RABBIT_HOST set")
		}
		log.Printf("Starting %s node %s", node.RoleToString(n.Role), n.Id)
		err = n.Update()
		utils.FailOnError("Worker stopped", err)
	case node.Master:
		log.Printf("Starting %s node %s", node.RoleToString(n.Role), n.Id)
		server := node.ApiServer{Node: &n}
		err = server.Start(env.Port)
		utils.FailOnError("Failed to serve", err)
	}
}
