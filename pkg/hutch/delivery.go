package hutch

import (
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Delivery wraps a single received AMQP message and allows acknowledging it,
// by its RabbitMQ tag, on the original channel it arrived on.
type Delivery struct {
	inner *amqp.Delivery
}

// WrapDelivery creates a Delivery around a raw AMQP delivery.
func WrapDelivery(delivery *amqp.Delivery) Delivery {
	return Delivery{inner: delivery}
}

// Body returns the raw payload bytes.
func (d Delivery) Body() []byte {
	return d.inner.Body
}

// MessageID returns the message-id property, empty when the publisher set none.
func (d Delivery) MessageID() string {
	return d.inner.MessageId
}

// AppID returns the app-id property, empty when the publisher set none.
func (d Delivery) AppID() string {
	return d.inner.AppId
}

// CorrelationID returns the correlation-id property.
func (d Delivery) CorrelationID() string {
	return d.inner.CorrelationId
}

// ReplyTo returns the reply-to property.
func (d Delivery) ReplyTo() string {
	return d.inner.ReplyTo
}

// Timestamp returns the publish timestamp property.
func (d Delivery) Timestamp() time.Time {
	return d.inner.Timestamp
}

// Headers returns the application header table.
func (d Delivery) Headers() amqp.Table {
	return d.inner.Headers
}

// DeliveryTag returns the channel-local delivery tag.
func (d Delivery) DeliveryTag() uint64 {
	return d.inner.DeliveryTag
}

// Raw exposes the underlying AMQP delivery. Access everything.
func (d Delivery) Raw() *amqp.Delivery {
	return d.inner
}

// Ack acknowledges the message on the original channel it was received.
// Will fail if channel is closed and this is by design per RabbitMQ server.
// Can't ack from a different channel.
func (d Delivery) Ack() error {
	if d.inner == nil || d.inner.Acknowledger == nil {
		return errors.New("can't acknowledge, internal channel is nil")
	}

	return d.inner.Acknowledger.Ack(d.inner.DeliveryTag, false)
}

// Nack negatively acknowledges the message on the original channel it was received.
// Will fail if channel is closed and this is by design per RabbitMQ server.
func (d Delivery) Nack(requeue bool) error {
	if d.inner == nil || d.inner.Acknowledger == nil {
		return errors.New("can't nack, internal channel is nil")
	}

	return d.inner.Acknowledger.Nack(d.inner.DeliveryTag, false, requeue)
}

// Reject rejects the message on the original channel it was received.
// Will fail if channel is closed and this is by design per RabbitMQ server.
func (d Delivery) Reject(requeue bool) error {
	if d.inner == nil || d.inner.Acknowledger == nil {
		return errors.New("can't reject, internal channel is nil")
	}

	return d.inner.Acknowledger.Reject(d.inner.DeliveryTag, requeue)
}
