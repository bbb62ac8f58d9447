package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/helioskrill/alma-control/internal/config"
	"github.com/helioskrill/alma-control/internal/queue"
	"github.com/helioskrill/alma-control/internal/repository"
)

// Channel capacity between pipeline stages.
const pipelineBuffer = 100

// Consumer wires the receive, parse and batch-write stages into one
// pipeline draining the raw PDA payload queue.
type Consumer struct {
	receiver    *Receiver
	parser      *ParserStage
	batchWriter *BatchWriter
}

// NewConsumer builds the pipeline from configuration
func NewConsumer(cfg *config.Config, queueConsumer queue.QueueConsumer, repo repository.EventRepository, log *zap.Logger) *Consumer {
	receiver := NewReceiver(queueConsumer, ReceiverConfig{
		MaxMessages:     10,
		WaitTimeSeconds: 20,
		BufferSize:      pipelineBuffer,
	}, log)

	parser := NewParserStage(queueConsumer, NewJSONEventParser(), log)

	batchWriter := NewBatchWriter(repo, BatchWriterConfig{
		MaxBatchSize: cfg.Consumer.BatchSizeMax,
		FlushTimeout: time.Duration(cfg.Consumer.BatchTimeoutSec) * time.Second,
	}, log)

	return &Consumer{
		receiver:    receiver,
		parser:      parser,
		batchWriter: batchWriter,
	}
}

// Start runs all stages and blocks until every stage has drained after
// context cancellation.
func (c *Consumer) Start(ctx context.Context) error {
	rawMessages := make(chan types.Message, pipelineBuffer)
	envelopes := make(chan *Envelope, pipelineBuffer)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		c.receiver.Start(ctx, rawMessages)
	}()

	go func() {
		defer wg.Done()
		c.parser.Start(ctx, rawMessages, envelopes)
	}()

	go func() {
		defer wg.Done()
		c.batchWriter.Start(ctx, envelopes)
	}()

	wg.Wait()
	return nil
}
