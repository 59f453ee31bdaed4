package hutch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends messages through pooled channels. Every publish stamps a
// message ID, the client's app ID and a UTC timestamp unless overridden.
type Publisher struct {
	pool        *ChannelPool
	appID       string
	logger      *slog.Logger
	compression *CompressionConfig
	encryption  *EncryptionConfig
}

// NewPublisher builds a Publisher on top of a channel pool.
func NewPublisher(pool *ChannelPool, appID string, logger *slog.Logger, compression *CompressionConfig, encryption *EncryptionConfig) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Publisher{
		pool:        pool,
		appID:       appID,
		logger:      logger,
		compression: compression,
		encryption:  encryption,
	}
}

type publishProps struct {
	publishing amqp.Publishing
	mandatory  bool
}

// PublishOption overrides a property on an outgoing message.
type PublishOption func(*publishProps)

// WithMessageID sets the message-id property.
func WithMessageID(id string) PublishOption {
	return func(p *publishProps) { p.publishing.MessageId = id }
}

// WithCorrelationID sets the correlation-id property.
func WithCorrelationID(id string) PublishOption {
	return func(p *publishProps) { p.publishing.CorrelationId = id }
}

// WithReplyTo sets the reply-to property.
func WithReplyTo(queueName string) PublishOption {
	return func(p *publishProps) { p.publishing.ReplyTo = queueName }
}

// WithHeaders sets the application header table.
func WithHeaders(headers amqp.Table) PublishOption {
	return func(p *publishProps) { p.publishing.Headers = headers }
}

// WithContentType sets the content-type property.
func WithContentType(contentType string) PublishOption {
	return func(p *publishProps) { p.publishing.ContentType = contentType }
}

// WithDeliveryMode sets amqp.Transient or amqp.Persistent explicitly.
func WithDeliveryMode(mode uint8) PublishOption {
	return func(p *publishProps) { p.publishing.DeliveryMode = mode }
}

// WithPriority sets the priority property, 0 to 9.
func WithPriority(priority uint8) PublishOption {
	return func(p *publishProps) { p.publishing.Priority = priority }
}

// WithExpiration sets the per-message TTL in milliseconds.
func WithExpiration(expiration string) PublishOption {
	return func(p *publishProps) { p.publishing.Expiration = expiration }
}

// WithMandatory makes the broker return the message when it can't be routed.
func WithMandatory() PublishOption {
	return func(p *publishProps) { p.mandatory = true }
}

func (pub *Publisher) buildProps(body []byte, options []PublishOption) *publishProps {
	props := &publishProps{
		publishing: amqp.Publishing{
			Body:         body,
			MessageId:    uuid.NewString(),
			AppId:        pub.appID,
			Timestamp:    time.Now().UTC(),
			DeliveryMode: amqp.Persistent,
		},
	}

	for _, option := range options {
		option(props)
	}

	return props
}

// Publish sends a raw body to an exchange and routing key over a pooled channel.
func (pub *Publisher) Publish(ctx context.Context, exchangeName, routingKey string, body []byte, options ...PublishOption) error {

	props := pub.buildProps(body, options)

	chanHost, err := pub.pool.GetChannel()
	if err != nil {
		return err
	}

	err = chanHost.Channel.PublishWithContext(ctx, exchangeName, routingKey, props.mandatory, false, props.publishing)
	pub.pool.ReturnChannel(chanHost, err != nil)
	if err != nil {
		return fmt.Errorf("publishing to exchange %q with routing key %q failed: %w", exchangeName, routingKey, err)
	}

	return nil
}

// PublishJSON seals a payload with the publisher's compression and encryption
// settings and sends it as application/json.
func (pub *Publisher) PublishJSON(ctx context.Context, exchangeName, routingKey string, payload interface{}, options ...PublishOption) error {

	body, err := CreatePayload(payload, pub.compression, pub.encryption)
	if err != nil {
		return fmt.Errorf("sealing payload failed: %w", err)
	}

	options = append([]PublishOption{WithContentType("application/json")}, options...)

	return pub.Publish(ctx, exchangeName, routingKey, body, options...)
}

// PublishWithConfirmation sends a message over a transient confirm mode
// channel and waits for the broker confirmation. A nacked publish is retried
// until the context runs out.
func (pub *Publisher) PublishWithConfirmation(ctx context.Context, exchangeName, routingKey string, body []byte, options ...PublishOption) error {

	props := pub.buildProps(body, options)

	channel, err := pub.pool.GetTransientChannel(true)
	if err != nil {
		return err
	}
	defer channel.Close()

	confirms := make(chan amqp.Confirmation, 1)
	channel.NotifyPublish(confirms)

Publish:
	if err := channel.PublishWithContext(ctx, exchangeName, routingKey, props.mandatory, false, props.publishing); err != nil {
		return fmt.Errorf("publishing to exchange %q with routing key %q failed: %w", exchangeName, routingKey, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()

	case confirmation, ok := <-confirms:
		if !ok {
			return ErrConnectionClosed
		}
		if !confirmation.Ack {
			pub.logger.Warn("publish was nacked by the broker, retrying",
				slog.String("exchange", exchangeName),
				slog.String("routingKey", routingKey))
			goto Publish
		}
	}

	return nil
}
