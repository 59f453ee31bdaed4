package hutch

import (
	"sync"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestFlushConfirmsDrainsAllPending(t *testing.T) {
	chanHost := &ChannelHost{
		Confirmations: make(chan amqp.Confirmation, 8),
		chanLock:      &sync.Mutex{},
	}

	for i := uint64(1); i <= 5; i++ {
		chanHost.Confirmations <- amqp.Confirmation{DeliveryTag: i, Ack: true}
	}

	chanHost.FlushConfirms()

	assert.Empty(t, chanHost.Confirmations)
}

func TestFlushConfirmsStopsOnClosedChannel(t *testing.T) {
	chanHost := &ChannelHost{
		Confirmations: make(chan amqp.Confirmation, 2),
		chanLock:      &sync.Mutex{},
	}

	chanHost.Confirmations <- amqp.Confirmation{DeliveryTag: 1, Ack: false}
	close(chanHost.Confirmations)

	// must return instead of looping on the closed channel's zero values
	chanHost.FlushConfirms()

	_, ok := <-chanHost.Confirmations
	assert.False(t, ok)
}

func TestFlushConfirmsEmptyChannel(t *testing.T) {
	chanHost := &ChannelHost{
		Confirmations: make(chan amqp.Confirmation, 2),
		chanLock:      &sync.Mutex{},
	}

	chanHost.FlushConfirms()
}
