package node

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/netbio/viralwalk/pkg/graph"
	"github.com/netbio/viralwalk/pkg/utils"
)

// RunDistributed fans one batch out over the work queue, one propagation job
// per seed set, and collects the run records from the result queue. The
// master keeps one batch in flight at a time (the queue pair belongs to this
// node), so every result on the queue belongs to the current batch or to a
// crashed predecessor; stale results are acknowledged and dropped.
func (n *Node) RunDistributed(ctx context.Context, g *graph.Graph, sets []graph.SeedSet, params graph.Params, rngSeed int64) (map[string]*graph.RunReport, error) {
	if len(sets) == 0 {
		return nil, graph.ErrEmptySeedSet
	}
	batchId, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	reports := utils.NewSafeMap[string, *graph.RunReport]()
	jobs, err := n.masterWriteQueue(ctx, batchId, g, sets, params, rngSeed)
	if err != nil {
		return nil, err
	}
	utils.NodeLog("master", "Dispatched batch %s (%d jobs)", batchId, jobs)

	responses := make(chan *PropagationResult)
	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	go n.masterReadQueue(readCtx, batchId, responses)

	collected := 0
	for collected < jobs {
		select {
		case result := <-responses:
			report := graph.RunReport{Record: result.Record, Error: result.Error}
			reports.Put(result.SetId, &report)
			collected++
			utils.NodeLog("master", "Collected %d/%d results of batch %s", collected, jobs, batchId)
		case <-ctx.Done():
			return reports.Clone(), ctx.Err()
		}
	}
	return reports.Clone(), nil
}

func (n *Node) masterWriteQueue(ctx context.Context, batchId string, g *graph.Graph, sets []graph.SeedSet, params graph.Params, rngSeed int64) (int, error) {
	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, set := range sets {
		jobId, err := gonanoid.New()
		if err != nil {
			return 0, err
		}
		job := PropagationJob{
			BatchId: batchId,
			JobId:   jobId,
			Graph:   g,
			SeedSet: set,
			Params:  params,
			RngSeed: graph.SetSeed(rngSeed, set.ID),
		}
		data, err := json.Marshal(&job)
		if err != nil {
			utils.EmptyQueue(n.Queue.Channel, n.Queue.Work.Name)
			return 0, err
		}
		err = n.Queue.Channel.PublishWithContext(publishCtx,
			"",
			n.Queue.Work.Name, // routing key
			false,             // mandatory
			false,
			amqp.Publishing{
				DeliveryMode: amqp.Persistent,
				ContentType:  "application/json",
				Body:         data,
			})
		if err != nil {
			return 0, err
		}
	}
	return len(sets), nil
}

func (n *Node) masterReadQueue(ctx context.Context, batchId string, responses chan<- *PropagationResult) {
	// Register consumer
	msgs, err := n.Queue.Channel.Consume(
		n.Queue.Result.Name, // queue
		"",                  // consumer
		false,               // auto-ack
		false,               // exclusive
		false,               // no-local
		false,               // no-wait
		nil,                 // args
	)
	if err != nil {
		utils.WarnLog("master", "Could not register a consumer for %s queue: %v", n.Queue.Result.Name, err)
		return
	}
	utils.NodeLog("master", "Registered consumer for queue %s", n.Queue.Result.Name)
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var result PropagationResult
			if err := json.Unmarshal(msg.Body, &result); err != nil {
				utils.FailOnNack(msg, err)
				continue
			}
			if err := msg.Ack(false); err != nil {
				utils.FailOnNack(msg, err)
				continue
			}
			if result.BatchId != batchId {
				utils.WarnLog("master", "Dropping stale result for batch %s", result.BatchId)
				continue
			}
			select {
			case responses <- &result:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// ConnectQueue dials RabbitMQ and declares the work/result queue pair. An
// empty host leaves the node in in-process mode.
func (n *Node) ConnectQueue(env utils.EnvVars) error {
	if env.RabbitHost == "" {
		return nil
	}
	url := fmt.Sprintf("amqp://%s:%s@%s:5672/", env.RabbitUser, env.RabbitPass, env.RabbitHost)
	conn, err := amqp.Dial(url)
	if err != nil {
		return fmt.Errorf("could not connect to RabbitMQ: %v", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open a channel to RabbitMQ: %v", err)
	}
	work, err := utils.DeclareQueue(env.WorkQueue, ch)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to declare %q queue: %v", env.WorkQueue, err)
	}
	result, err := utils.DeclareQueue(env.ResultQueue, ch)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to declare %q queue: %v", env.ResultQueue, err)
	}
	n.Queue = Queue{Conn: conn, Channel: ch, Work: &work, Result: &result}
	return nil
}
