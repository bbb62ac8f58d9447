package consumer

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/helioskrill/alma-control/internal/queue"
)

// Backoff applied after a failed receive call before polling again.
const receiveRetryDelay = time.Second

// ReceiverConfig configures the long-poll receive loop
type ReceiverConfig struct {
	MaxMessages     int32
	WaitTimeSeconds int32
	BufferSize      int
}

// Receiver long-polls the raw PDA payload queue and feeds messages into
// the pipeline.
type Receiver struct {
	consumer queue.QueueConsumer
	config   ReceiverConfig
	log      *zap.Logger
}

// NewReceiver creates a receiver for the given queue
func NewReceiver(consumer queue.QueueConsumer, config ReceiverConfig, log *zap.Logger) *Receiver {
	return &Receiver{
		consumer: consumer,
		config:   config,
		log:      log,
	}
}

// Start polls until the context is cancelled, forwarding every received
// message to out. The output channel is closed on return.
func (r *Receiver) Start(ctx context.Context, out chan<- types.Message) {
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Receiver stopped")
			return
		default:
		}

		messages, err := r.poll(ctx)
		if err != nil {
			r.log.Error("Receive from queue failed", zap.Error(err))
			time.Sleep(receiveRetryDelay)
			continue
		}

		if len(messages) == 0 {
			continue
		}

		r.log.Info("Pulled raw payload batch", zap.Int("message_count", len(messages)))

		for _, msg := range messages {
			select {
			case <-ctx.Done():
				r.log.Info("Receiver stopped mid-batch")
				return
			case out <- msg:
			}
		}
	}
}

func (r *Receiver) poll(ctx context.Context) ([]types.Message, error) {
	result, err := r.consumer.ReceiveMessages(ctx, &awssqs.ReceiveMessageInput{
		QueueUrl:              aws.String(r.consumer.QueueURL()),
		MaxNumberOfMessages:   r.config.MaxMessages,
		WaitTimeSeconds:       r.config.WaitTimeSeconds,
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		return nil, err
	}
	return result.Messages, nil
}
