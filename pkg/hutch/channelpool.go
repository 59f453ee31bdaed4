package hutch

import (
	"errors"
	"sync"

	"github.com/Workiva/go-datastructures/queue"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ChannelPool houses a pool of AMQP channels opened on a single connection.
// Channels are checked out for one operation at a time and recycled on return.
type ChannelPool struct {
	connHost  *ConnectionHost
	channels  *queue.Queue
	channelID uint64
	poolLock  *sync.Mutex
	shutdown  bool
}

// NewChannelPool opens maxChannelCount channels against the connection host and caches them.
func NewChannelPool(connHost *ConnectionHost, maxChannelCount uint64) (*ChannelPool, error) {

	if connHost == nil {
		return nil, errors.New("channelpool requires a connection host")
	}

	if maxChannelCount == 0 {
		return nil, errors.New("channelpool maxchannelcount can't be 0")
	}

	cp := &ChannelPool{
		connHost: connHost,
		channels: queue.New(int64(maxChannelCount)), // possible overflow error
		poolLock: &sync.Mutex{},
	}

	for i := uint64(0); i < maxChannelCount; i++ {

		chanHost, err := NewChannelHost(connHost, cp.channelID, true)
		if err != nil {
			cp.Shutdown()
			return nil, err
		}

		if err = cp.channels.Put(chanHost); err != nil {
			cp.Shutdown()
			return nil, err
		}

		cp.channelID++
	}

	return cp, nil
}

// GetChannel gets an ackable channel based on whats available in the pool
// (blocking when everything is checked out). A channel found dead on checkout
// is discarded and rebuilt before being handed over; a rebuild failure is
// surfaced to the caller rather than retried.
func (cp *ChannelPool) GetChannel() (*ChannelHost, error) {

	structs, err := cp.channels.Get(1)
	if err != nil { // errors on disposed queue
		return nil, ErrChannelPoolClosed
	}

	chanHost, ok := structs[0].(*ChannelHost)
	if !ok {
		return nil, errors.New("invalid struct type found in ChannelPool queue")
	}

	if chanHost.Channel.IsClosed() {
		if err := chanHost.MakeChannel(); err != nil {
			// put the husk back so the pool doesn't shrink
			_ = cp.channels.Put(chanHost)
			return nil, err
		}
	}

	chanHost.PauseForFlowControl()

	return chanHost, nil
}

// ReturnChannel puts the channel back in the pool. Erred channels are rebuilt
// before reuse instead of being recycled as-is.
func (cp *ChannelPool) ReturnChannel(chanHost *ChannelHost, erred bool) {

	if erred {
		_ = chanHost.MakeChannel() // checkout rebuilds again if this failed
	} else {
		chanHost.FlushConfirms()
	}

	_ = cp.channels.Put(chanHost)
}

// GetTransientChannel opens a throwaway channel outside the pool, optionally in confirm mode.
func (cp *ChannelPool) GetTransientChannel(ackable bool) (*amqp.Channel, error) {

	channel, err := cp.connHost.Connection.Channel()
	if err != nil {
		return nil, err
	}

	if ackable {
		if err := channel.Confirm(false); err != nil {
			channel.Close()
			return nil, err
		}
	}

	return channel, nil
}

// Shutdown closes all the channels in the pool and disposes the pool itself.
// In-flight checkouts fail with ErrChannelPoolClosed afterwards.
func (cp *ChannelPool) Shutdown() {

	cp.poolLock.Lock()
	defer cp.poolLock.Unlock()

	if cp.shutdown {
		return
	}
	cp.shutdown = true

	for !cp.channels.Empty() {
		items, err := cp.channels.Get(cp.channels.Len())
		if err != nil {
			break
		}

		for _, item := range items {
			if chanHost, ok := item.(*ChannelHost); ok {
				chanHost.Close()
			}
		}
	}

	cp.channels.Dispose()
}
