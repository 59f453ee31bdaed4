package hutch

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// fakeAcknowledger records acknowledgements without a broker.
type fakeAcknowledger struct {
	acks    atomic.Int64
	nacks   atomic.Int64
	rejects atomic.Int64
	failAck bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	if f.failAck {
		return ErrConnectionClosed
	}
	f.acks.Add(1)
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	f.nacks.Add(1)
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	f.rejects.Add(1)
	return nil
}

func testDelivery(ack *fakeAcknowledger, messageID string, body []byte) Delivery {
	return WrapDelivery(&amqp.Delivery{
		Acknowledger: ack,
		MessageId:    messageID,
		AppId:        "hutch-tests",
		DeliveryTag:  7,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConsumer builds a consumer wired to fakes instead of a live channel.
func testConsumer(handler Handler, opts ConsumeOptions, publishError func(context.Context, *ErrorRecord) error) *Consumer {
	if publishError == nil {
		publishError = func(context.Context, *ErrorRecord) error { return nil }
	}

	return &Consumer{
		queueName:     "orders",
		consumerName:  "orders-consumer",
		handler:       handler,
		timeout:       opts.Timeout,
		sequential:    opts.Sequential,
		deadLettering: !opts.NoDeadLetter,
		logger:        testLogger(),
		publishError:  publishError,
		done:          make(chan struct{}),
	}
}
