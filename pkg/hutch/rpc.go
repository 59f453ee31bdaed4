package hutch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	replyQueuePrefix = "rpc_response_queue_"

	// replyQueueExpireMargin pads the reply queue's x-expires past the call
	// timeout so the queue outlives a reply that arrives at the wire.
	replyQueueExpireMargin = 500 * time.Millisecond

	defaultCallTimeout = 10 * time.Second
)

type callConfig struct {
	timeout time.Duration
}

// CallOption tunes a single remote call.
type CallOption func(*callConfig)

// WithCallTimeout bounds how long Call waits for the reply.
func WithCallTimeout(timeout time.Duration) CallOption {
	return func(cfg *callConfig) { cfg.timeout = timeout }
}

// Call publishes args as JSON to requestQueueName and waits for a correlated
// reply, deserialized into R. A private reply queue is declared per call and
// expires on its own shortly after the call window closes; the consuming side
// is expected to publish its reply to the queue named in reply-to, stamped
// with the request's message ID as its correlation ID.
func Call[R any](ctx context.Context, client *Client, requestQueueName string, args any, options ...CallOption) (R, error) {
	var zero R

	cfg := callConfig{timeout: defaultCallTimeout}
	for _, option := range options {
		option(&cfg)
	}

	expires := cfg.timeout + replyQueueExpireMargin
	if expires.Milliseconds() > math.MaxUint32 {
		return zero, ErrTimeoutTooBig
	}

	replyQueue, err := client.QueueDeclare(replyQueuePrefix+uuid.NewString(), &QueueDeclareOptions{
		AutoDelete: true,
		Expires:    expires,
	})
	if err != nil {
		if errors.Is(err, ErrExpiresOutOfRange) {
			return zero, ErrTimeoutTooBig
		}
		return zero, fmt.Errorf("declaring the reply queue failed: %w", err)
	}

	messageID := uuid.NewString()
	err = client.PublishJSON(ctx, "", requestQueueName, args,
		WithMessageID(messageID),
		WithReplyTo(replyQueue.Name))
	if err != nil {
		return zero, fmt.Errorf("publishing the call request failed: %w", err)
	}

	channel, err := client.pool.GetTransientChannel(false)
	if err != nil {
		return zero, fmt.Errorf("opening the reply channel failed: %w", err)
	}
	defer channel.Close()

	deliveries, err := channel.Consume(replyQueue.Name, "", true, false, false, false, nil)
	if err != nil {
		return zero, fmt.Errorf("consuming the reply queue failed: %w", err)
	}

	reply, err := awaitReply(ctx, deliveries, messageID, cfg.timeout)
	if err != nil {
		return zero, err
	}

	var result R
	if err := json.Unmarshal(reply.Body, &result); err != nil {
		return zero, fmt.Errorf("deserializing the call reply failed: %w", err)
	}

	if _, err := client.QueuePurge(replyQueue.Name, false); err != nil {
		return zero, fmt.Errorf("purging the reply queue failed: %w", err)
	}

	return result, nil
}

// awaitReply waits for the first delivery on the reply stream and checks its
// correlation before handing it back.
func awaitReply(ctx context.Context, deliveries <-chan amqp.Delivery, messageID string, timeout time.Duration) (*amqp.Delivery, error) {

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()

	case <-timer.C:
		return nil, ErrCallTimeout

	case delivery, ok := <-deliveries:
		if !ok {
			return nil, ErrCallCanceled
		}
		if delivery.CorrelationId == "" {
			return nil, fmt.Errorf("%w: reply carries no correlation ID", ErrCorrelationMismatch)
		}
		if delivery.CorrelationId != messageID {
			return nil, fmt.Errorf("%w: got %q, want %q", ErrCorrelationMismatch, delivery.CorrelationId, messageID)
		}
		return &delivery, nil
	}
}

// Reply publishes a JSON payload back to the queue named in the request's
// reply-to property, correlated by the request's message ID. Handlers serving
// Call use it to complete the exchange.
func (c *Client) Reply(ctx context.Context, request Delivery, payload any) error {

	if request.ReplyTo() == "" {
		return errors.New("request carries no reply-to queue")
	}
	if request.MessageID() == "" {
		return ErrMessageIDMissing
	}

	return c.PublishJSON(ctx, "", request.ReplyTo(), payload,
		WithCorrelationID(request.MessageID()),
		WithDeliveryMode(amqp.Transient))
}
