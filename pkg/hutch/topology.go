package hutch

import amqp "github.com/rabbitmq/amqp091-go"

// Exchange allows for you to create Exchange topology.
type Exchange struct {
	Name           string     `json:"Name" yaml:"Name"`
	Type           string     `json:"Type" yaml:"Type"` // "direct", "fanout", "topic", "headers"
	PassiveDeclare bool       `json:"PassiveDeclare" yaml:"PassiveDeclare"`
	Durable        bool       `json:"Durable" yaml:"Durable"`
	AutoDelete     bool       `json:"AutoDelete" yaml:"AutoDelete"`
	InternalOnly   bool       `json:"InternalOnly" yaml:"InternalOnly"`
	NoWait         bool       `json:"NoWait" yaml:"NoWait"`
	Args           amqp.Table `json:"Args,omitempty" yaml:"Args,omitempty"`
}

// QueueBinding allows for you to create Bindings between a Queue and Exchange.
type QueueBinding struct {
	QueueName    string     `json:"QueueName" yaml:"QueueName"`
	ExchangeName string     `json:"ExchangeName" yaml:"ExchangeName"`
	RoutingKey   string     `json:"RoutingKey" yaml:"RoutingKey"`
	NoWait       bool       `json:"NoWait" yaml:"NoWait"`
	Args         amqp.Table `json:"Args,omitempty" yaml:"Args,omitempty"`
}

// ExchangeBinding allows for you to create Bindings between an Exchange and Exchange.
type ExchangeBinding struct {
	ExchangeName       string     `json:"ExchangeName" yaml:"ExchangeName"`
	ParentExchangeName string     `json:"ParentExchangeName" yaml:"ParentExchangeName"`
	RoutingKey         string     `json:"RoutingKey" yaml:"RoutingKey"`
	NoWait             bool       `json:"NoWait" yaml:"NoWait"`
	Args               amqp.Table `json:"Args,omitempty" yaml:"Args,omitempty"`
}

// QueueSpec describes a queue declaration inside a TopologyConfig.
type QueueSpec struct {
	Name          string     `json:"Name" yaml:"Name"`
	Durable       bool       `json:"Durable" yaml:"Durable"`
	AutoDelete    bool       `json:"AutoDelete" yaml:"AutoDelete"`
	Exclusive     bool       `json:"Exclusive" yaml:"Exclusive"`
	NoWait        bool       `json:"NoWait" yaml:"NoWait"`
	DeadLettering bool       `json:"DeadLettering" yaml:"DeadLettering"`
	Args          amqp.Table `json:"Args,omitempty" yaml:"Args,omitempty"`
}

// TopologyConfig allows you to build simple topologies from a JSON file.
type TopologyConfig struct {
	Exchanges        []*Exchange        `json:"Exchanges" yaml:"Exchanges"`
	Queues           []*QueueSpec       `json:"Queues" yaml:"Queues"`
	QueueBindings    []*QueueBinding    `json:"QueueBindings" yaml:"QueueBindings"`
	ExchangeBindings []*ExchangeBinding `json:"ExchangeBindings" yaml:"ExchangeBindings"`
}
