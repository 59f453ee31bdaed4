package hutch

import (
	"fmt"
)

const (
	// DLXExchangeName is the pre-declared direct exchange dead-lettered messages flow through.
	DLXExchangeName = "amq.direct"

	// DLXRoutingKeyDeadLetter routes broker-rejected messages to the dead letter queue.
	DLXRoutingKeyDeadLetter = "dlx.dead_letter"

	// DLXRoutingKeyError routes handler failure records to the error queue.
	DLXRoutingKeyError = "dlx.error"
)

// ErrorRecord describes a handler failure for a single delivery. Records are
// published to the error routing key so operators can correlate failures with
// the dead-lettered message by its message ID.
type ErrorRecord struct {
	Origin RecordOrigin  `json:"origin"`
	Error  RecordedError `json:"error"`
}

// RecordOrigin describes where a failure originated from.
type RecordOrigin struct {
	// MessageID is nil when the delivery carried no message-id property.
	MessageID *string `json:"messageId"`
	QueueName string  `json:"queueName"`
}

// RecordedError carries the failure itself, tagged with the language of the
// service that produced it so mixed fleets can share one error queue.
type RecordedError struct {
	Lang    string `json:"lang"`
	Name    string `json:"name"`
	Message string `json:"message"`
	// Stacktrace is only present on records from languages that attach one.
	Stacktrace *string `json:"stacktrace,omitempty"`
}

// NewErrorRecord builds an ErrorRecord for a failed delivery. The error name
// is the dynamic type of err, the message its Error() string.
func NewErrorRecord(queueName string, delivery Delivery, err error) *ErrorRecord {
	var messageID *string
	if id := delivery.MessageID(); id != "" {
		messageID = &id
	}

	return &ErrorRecord{
		Origin: RecordOrigin{
			MessageID: messageID,
			QueueName: queueName,
		},
		Error: RecordedError{
			Lang:    "go",
			Name:    fmt.Sprintf("%T", err),
			Message: err.Error(),
		},
	}
}

// Marshal serializes the record into its camelCase wire form. Two records
// built from the same inputs marshal to identical bytes.
func (rec *ErrorRecord) Marshal() ([]byte, error) {
	return json.Marshal(rec)
}

// ParseErrorRecord deserializes an error record from its wire form.
func ParseErrorRecord(data []byte) (*ErrorRecord, error) {
	record := &ErrorRecord{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("parsing error record failed: %w", err)
	}

	return record, nil
}
