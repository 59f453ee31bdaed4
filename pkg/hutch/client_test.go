package hutch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClientWithConnection() *Client {
	return &Client{
		config: &ClientConfig{AppID: "hutch-tests"},
		conn:   &ConnectionHost{Errors: make(chan *amqp.Error, 1)},
		logger: testLogger(),
	}
}

func finishedConsumer(name string, err error) *Consumer {
	con := &Consumer{
		consumerName: name,
		done:         make(chan struct{}),
		err:          err,
	}
	close(con.done)
	return con
}

func TestJoinReturnsWhenAllConsumersDrain(t *testing.T) {
	client := testClientWithConnection()
	client.consumers = []*Consumer{
		finishedConsumer("a", nil),
		finishedConsumer("b", nil),
	}

	assert.NoError(t, client.Join(context.Background()))
}

func TestJoinReportsConsumerFailure(t *testing.T) {
	client := testClientWithConnection()
	client.consumers = []*Consumer{
		finishedConsumer("a", nil),
		finishedConsumer("b", ErrStreamClosed),
	}

	err := client.Join(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStreamClosed)
	assert.Contains(t, err.Error(), `"b"`)
}

func TestJoinSurfacesFailureWhileOthersStillRun(t *testing.T) {
	defer leaktest.Check(t)()

	client := testClientWithConnection()

	stuck := &Consumer{consumerName: "stuck", done: make(chan struct{})}
	failed := finishedConsumer("failed", ErrStreamClosed)

	// the stuck consumer registered first must not delay the failure report
	client.consumers = []*Consumer{stuck, failed}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := client.Join(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStreamClosed)
	assert.Contains(t, err.Error(), `"failed"`)

	close(stuck.done)
}

func TestJoinCompletionOrderIndependent(t *testing.T) {
	defer leaktest.Check(t)()

	client := testClientWithConnection()

	late := &Consumer{consumerName: "late", done: make(chan struct{})}
	client.consumers = []*Consumer{late, finishedConsumer("early", nil)}

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(late.done)
	}()

	assert.NoError(t, client.Join(context.Background()))
}

func TestJoinTakesOwnershipOfConsumerSet(t *testing.T) {
	client := testClientWithConnection()
	client.consumers = []*Consumer{finishedConsumer("a", nil)}

	require.NoError(t, client.Join(context.Background()))
	assert.Empty(t, client.consumers, "joined consumers belong to that Join call")

	// a second Join with no registered consumers returns immediately
	assert.NoError(t, client.Join(context.Background()))
}

func TestJoinRacesConnectionDeath(t *testing.T) {
	client := testClientWithConnection()

	running := &Consumer{consumerName: "stuck", done: make(chan struct{})}
	client.consumers = []*Consumer{running}

	client.conn.Errors <- &amqp.Error{Code: amqp.ConnectionForced, Reason: "node going down"}

	err := client.Join(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node going down")
}

func TestJoinConnectionClosedGracefully(t *testing.T) {
	client := testClientWithConnection()
	client.consumers = []*Consumer{{consumerName: "stuck", done: make(chan struct{})}}

	// a closed notification channel delivers nil
	close(client.conn.Errors)

	assert.ErrorIs(t, client.Join(context.Background()), ErrConnectionClosed)
}

func TestJoinHonorsContext(t *testing.T) {
	client := testClientWithConnection()
	client.consumers = []*Consumer{{consumerName: "stuck", done: make(chan struct{})}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, client.Join(ctx), context.DeadlineExceeded)
}

func TestPublishErrorRecordSerializes(t *testing.T) {
	record := NewErrorRecord("orders", testDelivery(nil, "msg-1", nil), errors.New("boom"))

	// Marshal is what publishErrorRecord sends, it must be stable JSON
	body, err := record.Marshal()
	require.NoError(t, err)

	parsed, err := ParseErrorRecord(body)
	require.NoError(t, err)
	assert.Equal(t, record.Origin.QueueName, parsed.Origin.QueueName)
	assert.Equal(t, record.Error.Message, parsed.Error.Message)
}
