package hutch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingExtractor records how many times it ran, to observe short-circuits.
type countingExtractor struct {
	runs int
}

func (c *countingExtractor) Extract(_ *Client, _ Delivery) error {
	c.runs++
	return nil
}

func TestH0(t *testing.T) {
	invoked := false
	handler := H0(func(ctx context.Context) error {
		invoked = true
		return nil
	})

	require.NoError(t, handler.Invoke(context.Background(), nil, testDelivery(nil, "", nil)))
	assert.True(t, invoked)
}

func TestH1ExtractsArgument(t *testing.T) {
	delivery := testDelivery(nil, "", []byte(`{"id":"o-7","total":3}`))

	var seen testOrder
	handler := H1(func(ctx context.Context, order JSON[testOrder]) error {
		seen = order.Value
		return nil
	})

	require.NoError(t, handler.Invoke(context.Background(), nil, delivery))
	assert.Equal(t, testOrder{ID: "o-7", Total: 3}, seen)
}

func TestH2MixedArguments(t *testing.T) {
	delivery := testDelivery(nil, "msg-2", []byte(`{"id":"o-2","total":1}`))

	handler := H2(func(ctx context.Context, id MessageID, order JSON[testOrder]) error {
		assert.Equal(t, MessageID("msg-2"), id)
		assert.Equal(t, "o-2", order.Value.ID)
		return nil
	})

	require.NoError(t, handler.Invoke(context.Background(), nil, delivery))
}

func TestHandlerExtractionFailureNamesArgument(t *testing.T) {
	delivery := testDelivery(nil, "", nil) // no message ID

	handler := H1(func(ctx context.Context, id MessageID) error {
		t.Fatal("handler must not run on extraction failure")
		return nil
	})

	err := handler.Invoke(context.Background(), nil, delivery)
	require.Error(t, err)

	var extractorErr *ExtractorError
	require.ErrorAs(t, err, &extractorErr)
	assert.Equal(t, "hutch.MessageID", extractorErr.TypeName)
	assert.ErrorIs(t, err, ErrMessageIDMissing)
}

func TestHandlerExtractionShortCircuits(t *testing.T) {
	counter := &countingExtractor{}

	handler := HandlerFunc(func(ctx context.Context, client *Client, delivery Delivery) error {
		if _, err := extractArg[MessageID](client, delivery); err != nil {
			return err
		}
		if err := counter.Extract(client, delivery); err != nil {
			return err
		}
		return nil
	})

	err := handler.Invoke(context.Background(), nil, testDelivery(nil, "", nil))
	require.Error(t, err)
	assert.Zero(t, counter.runs, "later extractors must not run after a failure")
}

func TestHandlerErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	handler := H1(func(ctx context.Context, body Body) error {
		return boom
	})

	err := handler.Invoke(context.Background(), nil, testDelivery(nil, "", []byte("x")))
	assert.ErrorIs(t, err, boom)
}

func TestH8AllArguments(t *testing.T) {
	delivery := testDelivery(nil, "msg-8", []byte(`{"id":"o-8","total":8}`))

	handler := H8(func(ctx context.Context,
		d Delivery,
		body Body,
		id MessageID,
		appID AppID,
		optID Opt[MessageID, *MessageID],
		tryApp Try[AppID, *AppID],
		order JSON[testOrder],
		ref ClientRef,
	) error {
		assert.Equal(t, "msg-8", d.MessageID())
		assert.NotEmpty(t, []byte(body))
		assert.Equal(t, MessageID("msg-8"), id)
		assert.Equal(t, AppID("hutch-tests"), appID)
		assert.True(t, optID.OK)
		assert.NoError(t, tryApp.Err)
		assert.Equal(t, 8, order.Value.Total)
		return nil
	})

	require.NoError(t, handler.Invoke(context.Background(), nil, delivery))
}
