package hutch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultHandlerTimeout = 5 * time.Minute

// ConsumeOptions tunes a single consumer registration. The zero value gives a
// parallel consumer with dead-lettering on and a five minute handler timeout.
type ConsumeOptions struct {
	// Timeout bounds a single handler invocation. Zero means the default.
	Timeout time.Duration
	// Sequential processes deliveries one at a time in arrival order instead
	// of spawning a task per delivery.
	Sequential bool
	// NoDeadLetter disables publishing error records for failed deliveries.
	NoDeadLetter bool
	// PrefetchCount caps unacknowledged deliveries on the channel. Zero means
	// no cap.
	PrefetchCount int
	Exclusive     bool
	NoWait        bool
	Args          amqp.Table
}

// Consumer supervises one subscription on one queue. It is created by
// Client.Consume and runs until the consume context is canceled or the
// delivery stream dies.
type Consumer struct {
	client       *Client
	queueName    string
	consumerName string

	handler       Handler
	timeout       time.Duration
	sequential    bool
	deadLettering bool

	channel *amqp.Channel
	logger  *slog.Logger

	// publishError is swappable so failure record publishing can be observed.
	publishError func(ctx context.Context, record *ErrorRecord) error

	done chan struct{}
	err  error // written once, before done is closed
}

// Done is closed when the consumer has fully shut down, in-flight deliveries included.
func (con *Consumer) Done() <-chan struct{} {
	return con.done
}

// Err reports why the consumer stopped. It is nil after a graceful shutdown
// and only valid once Done is closed.
func (con *Consumer) Err() error {
	return con.err
}

// QueueName returns the queue this consumer is subscribed to.
func (con *Consumer) QueueName() string {
	return con.queueName
}

// supervise is the consumer main loop. It pulls from the delivery stream and
// dispatches until the context is canceled or the stream dies, then waits for
// in-flight deliveries before releasing the channel.
func (con *Consumer) supervise(ctx context.Context, deliveries <-chan amqp.Delivery, closeErrors <-chan *amqp.Error) {
	defer close(con.done)

	con.logger.Info("consumer started",
		slog.String("queue", con.queueName),
		slog.String("consumer", con.consumerName),
		slog.Bool("sequential", con.sequential))

	inFlight := &sync.WaitGroup{}

ConsumeLoop:
	for {
		select {
		case <-ctx.Done():
			con.logger.Info("consumer stopping", slog.String("consumer", con.consumerName))
			break ConsumeLoop

		case amqpErr := <-closeErrors:
			if amqpErr == nil {
				con.err = ErrStreamClosed
			} else {
				con.err = fmt.Errorf("consumer channel closed: %w", amqpErr)
			}
			con.logger.Error("consumer stream died",
				slog.String("consumer", con.consumerName),
				slog.Any("error", con.err))
			break ConsumeLoop

		case delivery, ok := <-deliveries:
			if !ok {
				con.err = ErrStreamClosed
				con.logger.Error("consumer stream died",
					slog.String("consumer", con.consumerName),
					slog.Any("error", con.err))
				break ConsumeLoop
			}

			if con.sequential {
				con.processDelivery(ctx, WrapDelivery(&delivery))
				continue
			}

			inFlight.Add(1)
			go func(d amqp.Delivery) {
				defer inFlight.Done()
				con.processDelivery(ctx, WrapDelivery(&d))
			}(delivery)
		}
	}

	// Drain. New deliveries stopped above, in-flight handlers keep their
	// channel alive until they finished acknowledging.
	inFlight.Wait()

	if con.channel != nil {
		_ = con.channel.Cancel(con.consumerName, false)
		con.channel.Close()
	}

	con.logger.Info("consumer shut down", slog.String("consumer", con.consumerName))
}
