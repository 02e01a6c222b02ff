package node

import (
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/netbio/viralwalk/pkg/graph"
)

type Role int32

const (
	Master Role = iota // Master node, accepting requests and collecting results
	Worker             // Worker node, running propagations
)

func RoleToString(role Role) string {
	switch role {
	case Master:
		return "Master"
	case Worker:
		return "Worker"
	}
	return "Undefined"
}

type Node struct {
	Id         string       // Node identifier
	Role       Role         // What this node has to do
	Params     graph.Params // Default run parameters
	Workers    int          // Worker pool size for in-process batches
	Connection string       // This node connection information
	Queue      Queue        // Queue information
}

type Queue struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
	Work    *amqp.Queue
	Result  *amqp.Queue
}

// Distributed reports whether a message queue is configured; without one the
// master runs every batch in-process.
func (n *Node) Distributed() bool {
	return n.Queue.Channel != nil
}

func (n *Node) Update() error {
	if n.Role == Worker {
		return n.workerUpdate()
	}
	return nil
}

// PropagationJob is one seed-set run shipped to a worker. The graph rides
// along inline so workers stay stateless; RngSeed pins the walk trajectory
// so the record is identical wherever the job lands.
type PropagationJob struct {
	BatchId string        `json:"batch_id"`
	JobId   string        `json:"job_id"`
	Graph   *graph.Graph  `json:"graph"`
	SeedSet graph.SeedSet `json:"seed_set"`
	Params  graph.Params  `json:"parameters"`
	RngSeed int64         `json:"rng_seed"`
}

// PropagationResult carries one finished (or failed) run back to the master.
type PropagationResult struct {
	BatchId string           `json:"batch_id"`
	JobId   string           `json:"job_id"`
	SetId   string           `json:"set_id"`
	Record  *graph.RunRecord `json:"record,omitempty"`
	Error   string           `json:"error,omitempty"`
}
