package hutch

import (
	"math"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Queue is the handle returned by a successful declaration. Declared queues
// are kept in a registry so later operations can look them up by name.
type Queue struct {
	Name          string
	DeadLettering bool
	Messages      int
	Consumers     int
}

// QueueDeclareOptions tunes a queue declaration. Passing nil declares a
// durable queue with dead-lettering enabled.
type QueueDeclareOptions struct {
	Durable       bool
	AutoDelete    bool
	Exclusive     bool
	NoWait        bool
	Passive       bool
	DeadLettering bool
	// Expires sets the queue's x-expires in milliseconds when positive.
	Expires time.Duration
	Args    amqp.Table
}

// DefaultQueueDeclareOptions mirror the zero-config declaration: durable with dead-lettering.
func DefaultQueueDeclareOptions() *QueueDeclareOptions {
	return &QueueDeclareOptions{
		Durable:       true,
		DeadLettering: true,
	}
}

// Topologer builds RabbitMQ topology backed by a ChannelPool.
type Topologer struct {
	pool   *ChannelPool
	queues cmap.ConcurrentMap[string, *Queue]
}

// NewTopologer builds you a new Topologer.
func NewTopologer(pool *ChannelPool) *Topologer {
	return &Topologer{
		pool:   pool,
		queues: cmap.New[*Queue](),
	}
}

// QueueDeclare declares a queue and registers the resulting handle. Queues
// declared with dead-lettering route their rejected messages to the
// dead letter exchange.
func (top *Topologer) QueueDeclare(name string, opts *QueueDeclareOptions) (*Queue, error) {

	if opts == nil {
		opts = DefaultQueueDeclareOptions()
	}

	args := amqp.Table{}
	for key, value := range opts.Args {
		args[key] = value
	}

	if opts.DeadLettering {
		args["x-dead-letter-exchange"] = DLXExchangeName
		args["x-dead-letter-routing-key"] = DLXRoutingKeyDeadLetter
	}

	if opts.Expires > 0 {
		millis := opts.Expires.Milliseconds()
		if millis > math.MaxUint32 {
			return nil, ErrExpiresOutOfRange
		}
		// int64 is what the field table codec accepts, the bound above keeps
		// the value inside the broker's long-uint range.
		args["x-expires"] = millis
	}

	channel, err := top.pool.GetTransientChannel(false)
	if err != nil {
		return nil, err
	}
	defer channel.Close()

	var declared amqp.Queue
	if opts.Passive {
		declared, err = channel.QueueDeclarePassive(name, opts.Durable, opts.AutoDelete, opts.Exclusive, opts.NoWait, args)
	} else {
		declared, err = channel.QueueDeclare(name, opts.Durable, opts.AutoDelete, opts.Exclusive, opts.NoWait, args)
	}
	if err != nil {
		return nil, err
	}

	queue := &Queue{
		Name:          declared.Name,
		DeadLettering: opts.DeadLettering,
		Messages:      declared.Messages,
		Consumers:     declared.Consumers,
	}
	top.queues.Set(queue.Name, queue)

	return queue, nil
}

// Queue looks a previously declared queue up by name.
func (top *Topologer) Queue(name string) (*Queue, bool) {
	return top.queues.Get(name)
}

// QueueBind binds a Queue to an Exchange.
func (top *Topologer) QueueBind(binding *QueueBinding) error {

	channel, err := top.pool.GetTransientChannel(false)
	if err != nil {
		return err
	}
	defer channel.Close()

	return channel.QueueBind(
		binding.QueueName,
		binding.RoutingKey,
		binding.ExchangeName,
		binding.NoWait,
		binding.Args)
}

// QueueUnbind removes the binding of a Queue to an Exchange.
func (top *Topologer) QueueUnbind(queueName, routingKey, exchangeName string, args amqp.Table) error {

	channel, err := top.pool.GetTransientChannel(false)
	if err != nil {
		return err
	}
	defer channel.Close()

	return channel.QueueUnbind(queueName, routingKey, exchangeName, args)
}

// QueueDelete removes the queue from the server (and the registry) along with
// all the messages on it, returning the count of purged messages.
func (top *Topologer) QueueDelete(name string, ifUnused, ifEmpty, noWait bool) (int, error) {

	channel, err := top.pool.GetTransientChannel(false)
	if err != nil {
		return 0, err
	}
	defer channel.Close()

	count, err := channel.QueueDelete(name, ifUnused, ifEmpty, noWait)
	if err != nil {
		return 0, err
	}

	top.queues.Remove(name)

	return count, nil
}

// QueuePurge removes all non-consumed messages from the queue, returning the
// count of purged messages.
func (top *Topologer) QueuePurge(name string, noWait bool) (int, error) {

	channel, err := top.pool.GetTransientChannel(false)
	if err != nil {
		return 0, err
	}
	defer channel.Close()

	return channel.QueuePurge(name, noWait)
}

// ExchangeDeclare builds an Exchange topology.
func (top *Topologer) ExchangeDeclare(exchange *Exchange) error {

	channel, err := top.pool.GetTransientChannel(false)
	if err != nil {
		return err
	}
	defer channel.Close()

	if exchange.PassiveDeclare {
		return channel.ExchangeDeclarePassive(
			exchange.Name,
			exchange.Type,
			exchange.Durable,
			exchange.AutoDelete,
			exchange.InternalOnly,
			exchange.NoWait,
			exchange.Args)
	}

	return channel.ExchangeDeclare(
		exchange.Name,
		exchange.Type,
		exchange.Durable,
		exchange.AutoDelete,
		exchange.InternalOnly,
		exchange.NoWait,
		exchange.Args)
}

// ExchangeBind binds an Exchange to an Exchange.
func (top *Topologer) ExchangeBind(binding *ExchangeBinding) error {

	channel, err := top.pool.GetTransientChannel(false)
	if err != nil {
		return err
	}
	defer channel.Close()

	return channel.ExchangeBind(
		binding.ExchangeName,
		binding.RoutingKey,
		binding.ParentExchangeName,
		binding.NoWait,
		binding.Args)
}

// ExchangeDelete removes the exchange from the server.
func (top *Topologer) ExchangeDelete(exchangeName string, ifUnused, noWait bool) error {

	channel, err := top.pool.GetTransientChannel(false)
	if err != nil {
		return err
	}
	defer channel.Close()

	return channel.ExchangeDelete(exchangeName, ifUnused, noWait)
}

// BuildTopology builds a topology based on a TopologyConfig - stops on first error.
func (top *Topologer) BuildTopology(config *TopologyConfig, ignoreErrors bool) error {

	for _, exchange := range config.Exchanges {
		err := top.ExchangeDeclare(exchange)
		if err != nil && !ignoreErrors {
			return err
		}
	}

	for _, spec := range config.Queues {
		_, err := top.QueueDeclare(spec.Name, &QueueDeclareOptions{
			Durable:       spec.Durable,
			AutoDelete:    spec.AutoDelete,
			Exclusive:     spec.Exclusive,
			NoWait:        spec.NoWait,
			DeadLettering: spec.DeadLettering,
			Args:          spec.Args,
		})
		if err != nil && !ignoreErrors {
			return err
		}
	}

	for _, binding := range config.QueueBindings {
		err := top.QueueBind(binding)
		if err != nil && !ignoreErrors {
			return err
		}
	}

	for _, binding := range config.ExchangeBindings {
		err := top.ExchangeBind(binding)
		if err != nil && !ignoreErrors {
			return err
		}
	}

	return nil
}
