package node

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/netbio/viralwalk/pkg/graph"
	"github.com/netbio/viralwalk/pkg/utils"
)

func (n *Node) workerUpdate() error {
	// Register consumer
	msgs, err := n.Queue.Channel.Consume(
		n.Queue.Work.Name, // queue
		"",                // consumer
		false,             // auto-ack
		false,             // exclusive
		false,             // no-local
		false,             // no-wait
		nil,               // args
	)
	if err != nil {
		return err
	}
	utils.NodeLog("worker", "Waiting for propagation jobs")
	for d := range msgs {
		// Get job from bytes
		var job PropagationJob
		if err := json.Unmarshal(d.Body, &job); err != nil {
			utils.FailOnNack(d, err)
			continue
		}
		utils.NodeLog("worker", "Running job %s (seed set %s)", job.JobId, job.SeedSet.ID)
		result := runJob(&job)
		data, err := json.Marshal(result)
		if err != nil {
			utils.FailOnNack(d, err)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = n.Queue.Channel.PublishWithContext(ctx,
			"",
			n.Queue.Result.Name, // routing key
			false,               // mandatory
			false,
			amqp.Publishing{
				DeliveryMode: amqp.Persistent,
				ContentType:  "application/json",
				Body:         data,
			})
		cancel()
		if err != nil {
			utils.FailOnNack(d, err)
			continue
		}

		// Ack
		if err := d.Ack(false); err != nil {
			utils.FailOnNack(d, err)
			continue
		}
		utils.NodeLog("worker", "Completed job %s with status %v", job.JobId, jobStatus(result))
	}
	return nil
}

// runJob executes one propagation job with the core engine. Any failure is
// folded into the result so one broken seed set never poisons the batch.
func runJob(job *PropagationJob) *PropagationResult {
	result := PropagationResult{
		BatchId: job.BatchId,
		JobId:   job.JobId,
		SetId:   job.SeedSet.ID,
	}
	if job.Graph == nil {
		result.Error = "job carries no graph"
		return &result
	}
	record, err := graph.Walk(job.Graph, job.SeedSet, job.Params, job.RngSeed)
	if err != nil {
		result.Error = err.Error()
		return &result
	}
	graph.Normalize(record)
	result.Record = record
	return &result
}

func jobStatus(result *PropagationResult) string {
	if result.Error != "" {
		return "error: " + result.Error
	}
	return string(result.Record.Status)
}
