package hutch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Client owns the broker connection, a channel pool, a Topologer and a
// Publisher, and registers consumers. One Client per application is the
// intended shape.
type Client struct {
	config *ClientConfig
	conn   *ConnectionHost
	pool   *ChannelPool
	logger *slog.Logger
	state  any

	*Topologer
	*Publisher

	consumerLock sync.Mutex
	consumers    []*Consumer
}

// NewClient dials the broker, builds the channel pool and verifies the dead
// letter exchange exists. The optional state value is served to handlers
// through the State extractor.
func NewClient(config *ClientConfig, state any) (*Client, error) {

	if config == nil {
		config = &ClientConfig{}
	}
	config.applyDefaults()

	conn, err := NewConnectionHost(
		config.URI,
		config.AppID,
		time.Duration(config.Heartbeat)*time.Second,
		time.Duration(config.ConnectionTimeout)*time.Second,
		config.TLSConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to broker failed: %w", err)
	}

	pool, err := NewChannelPool(conn, config.MaxChannelCount)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("building channel pool failed: %w", err)
	}

	client := &Client{
		config:    config,
		conn:      conn,
		pool:      pool,
		logger:    config.Logger,
		state:     state,
		Topologer: NewTopologer(pool),
		Publisher: NewPublisher(pool, config.AppID, config.Logger, config.CompressionConfig, config.EncryptionConfig),
	}

	// amq.direct exists on every broker, declaring it passively verifies we
	// can talk topology at all.
	err = client.ExchangeDeclare(&Exchange{
		Name:           DLXExchangeName,
		Type:           "direct",
		PassiveDeclare: true,
		Durable:        true,
	})
	if err != nil {
		client.Shutdown()
		return nil, fmt.Errorf("verifying the dead letter exchange failed: %w", err)
	}

	return client, nil
}

// Config exposes the effective configuration.
func (c *Client) Config() *ClientConfig {
	return c.config
}

// ConnectionErrors exposes the connection close notifications for callers that
// want to react to a dying connection themselves.
func (c *Client) ConnectionErrors() <-chan *amqp.Error {
	return c.conn.Errors
}

// Consume subscribes handler to queue and starts a supervisor for it. The
// consumer runs until ctx is canceled or its delivery stream dies; Join waits
// for either.
func (c *Client) Consume(ctx context.Context, queue *Queue, consumerName string, handler Handler, opts *ConsumeOptions) (*Consumer, error) {

	if opts == nil {
		opts = &ConsumeOptions{}
	}
	if consumerName == "" {
		consumerName = c.config.AppID + "-" + uuid.NewString()
	}

	channel, err := c.pool.GetTransientChannel(false)
	if err != nil {
		return nil, fmt.Errorf("opening consumer channel failed: %w", err)
	}

	if opts.PrefetchCount > 0 {
		if err := channel.Qos(opts.PrefetchCount, 0, false); err != nil {
			channel.Close()
			return nil, fmt.Errorf("setting consumer prefetch failed: %w", err)
		}
	}

	closeErrors := channel.NotifyClose(make(chan *amqp.Error, 1))

	deliveries, err := channel.Consume(queue.Name, consumerName, false, opts.Exclusive, false, opts.NoWait, opts.Args)
	if err != nil {
		channel.Close()
		return nil, fmt.Errorf("subscribing to queue %q failed: %w", queue.Name, err)
	}

	consumer := &Consumer{
		client:        c,
		queueName:     queue.Name,
		consumerName:  consumerName,
		handler:       handler,
		timeout:       opts.Timeout,
		sequential:    opts.Sequential,
		deadLettering: queue.DeadLettering && !opts.NoDeadLetter,
		channel:       channel,
		logger:        c.logger,
		publishError:  c.publishErrorRecord,
		done:          make(chan struct{}),
	}

	go consumer.supervise(ctx, deliveries, closeErrors)

	c.consumerLock.Lock()
	c.consumers = append(c.consumers, consumer)
	c.consumerLock.Unlock()

	return consumer, nil
}

// Join blocks until every consumer registered so far has shut down, the
// connection dies, or ctx is canceled. It takes ownership of the current
// consumer set; consumers registered afterwards belong to the next Join.
// Consumers finish in any order and the first failure is returned
// immediately, even while other consumers are still running.
func (c *Client) Join(ctx context.Context) error {

	c.consumerLock.Lock()
	taken := c.consumers
	c.consumers = nil
	c.consumerLock.Unlock()

	finished := make(chan *Consumer)
	stop := make(chan struct{})
	defer close(stop)

	for _, consumer := range taken {
		go func(con *Consumer) {
			select {
			case <-con.Done():
			case <-stop:
				return
			}
			select {
			case finished <- con:
			case <-stop:
			}
		}(consumer)
	}

	for remaining := len(taken); remaining > 0; remaining-- {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case amqpErr := <-c.conn.Errors:
			if amqpErr == nil {
				return ErrConnectionClosed
			}
			return fmt.Errorf("connection died: %w", amqpErr)

		case consumer := <-finished:
			if err := consumer.Err(); err != nil {
				return fmt.Errorf("consumer %q failed: %w", consumer.consumerName, err)
			}
		}
	}

	return nil
}

// Shutdown closes the channel pool and the connection. Cancel consumer
// contexts and Join before calling it, in-flight work loses its channels here.
func (c *Client) Shutdown() {
	c.pool.Shutdown()
	_ = c.conn.Close()
	c.logger.Info("client shut down", slog.String("appId", c.config.AppID))
}

// publishErrorRecord serializes a handler failure and routes it through the
// dead letter exchange's error routing key.
func (c *Client) publishErrorRecord(ctx context.Context, record *ErrorRecord) error {

	body, err := record.Marshal()
	if err != nil {
		return fmt.Errorf("serializing error record failed: %w", err)
	}

	return c.Publisher.Publish(ctx, DLXExchangeName, DLXRoutingKeyError, body,
		WithContentType("application/json"))
}
