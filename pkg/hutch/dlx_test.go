package hutch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorRecordWireFormat(t *testing.T) {
	delivery := testDelivery(nil, "msg-1", nil)
	record := NewErrorRecord("orders", delivery, errors.New("boom"))

	data, err := record.Marshal()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	origin, ok := decoded["origin"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "orders", origin["queueName"])
	assert.Equal(t, "msg-1", origin["messageId"])

	recorded, ok := decoded["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "go", recorded["lang"])
	assert.Equal(t, "*errors.errorString", recorded["name"])
	assert.Equal(t, "boom", recorded["message"])
	assert.NotContains(t, recorded, "stacktrace")
}

func TestErrorRecordNullMessageID(t *testing.T) {
	delivery := testDelivery(nil, "", nil)
	record := NewErrorRecord("orders", delivery, errors.New("boom"))

	assert.Nil(t, record.Origin.MessageID)

	data, err := record.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"messageId":null`)
}

func TestErrorRecordDeterministic(t *testing.T) {
	delivery := testDelivery(nil, "msg-2", nil)
	cause := fmt.Errorf("wrapping: %w", errors.New("boom"))

	first, err := NewErrorRecord("orders", delivery, cause).Marshal()
	require.NoError(t, err)
	second, err := NewErrorRecord("orders", delivery, cause).Marshal()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestErrorRecordNamesDynamicType(t *testing.T) {
	delivery := testDelivery(nil, "msg-3", nil)

	record := NewErrorRecord("orders", delivery, &ExtractorError{TypeName: "hutch.AppID", Err: ErrAppIDMissing})
	assert.Equal(t, "*hutch.ExtractorError", record.Error.Name)
}

func TestParseErrorRecordForeignRecord(t *testing.T) {
	// a record published by a javascript service carrying a stacktrace
	wire := []byte(`{
		"origin": {"messageId": "m-1", "queueName": "orders"},
		"error": {"lang": "js", "name": "TypeError", "message": "nope", "stacktrace": "at main.js:1"}
	}`)

	record, err := ParseErrorRecord(wire)
	require.NoError(t, err)

	assert.Equal(t, "orders", record.Origin.QueueName)
	require.NotNil(t, record.Origin.MessageID)
	assert.Equal(t, "m-1", *record.Origin.MessageID)
	assert.Equal(t, "js", record.Error.Lang)
	assert.Equal(t, "TypeError", record.Error.Name)
	require.NotNil(t, record.Error.Stacktrace)
	assert.Equal(t, "at main.js:1", *record.Error.Stacktrace)
}

func TestParseErrorRecordMalformed(t *testing.T) {
	_, err := ParseErrorRecord([]byte(`{"origin":`))
	assert.Error(t, err)
}
