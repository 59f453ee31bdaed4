package hutch

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrConnectionClosed is returned when the underlying AMQP connection has shut down.
	// you can check for this error with errors.Is
	ErrConnectionClosed = errors.New("connection is already closed")

	// ErrChannelPoolClosed is returned when a channel pool shutdown has been triggered.
	ErrChannelPoolClosed = errors.New("channel pool closed")

	// ErrStreamClosed is returned by a Consumer whose delivery stream ended unexpectedly.
	ErrStreamClosed = errors.New("delivery stream closed unexpectedly")

	// ErrAppIDMissing is returned when a delivery carries no app-id property.
	ErrAppIDMissing = errors.New("delivery has no app ID")

	// ErrMessageIDMissing is returned when a delivery carries no message-id property.
	ErrMessageIDMissing = errors.New("delivery has no message ID")

	// ErrStateUnavailable is returned when no application state of the requested type was registered.
	ErrStateUnavailable = errors.New("application state of the requested type is unavailable")

	// ErrCallTimeout is returned when no reply arrived inside the remote call window.
	ErrCallTimeout = errors.New("remote call timed out waiting for a reply")

	// ErrCallCanceled is returned when the reply stream ended before a reply arrived.
	ErrCallCanceled = errors.New("remote call canceled, reply stream closed")

	// ErrCorrelationMismatch is returned when a reply does not carry the expected correlation ID.
	ErrCorrelationMismatch = errors.New("reply correlation mismatch")

	// ErrTimeoutTooBig is returned when a timeout converts to more milliseconds
	// than an AMQP uint32 field can hold.
	ErrTimeoutTooBig = errors.New("timeout in milliseconds exceeds the AMQP field width")

	// ErrExpiresOutOfRange is returned when a queue expiry can't be expressed on the wire.
	ErrExpiresOutOfRange = errors.New("queue expiry in milliseconds exceeds the AMQP field width")
)

// ExtractorError reports which handler argument failed to populate and why.
type ExtractorError struct {
	TypeName string
	Err      error
}

// Error prints the failing argument type along with the underlying cause.
func (e *ExtractorError) Error() string {
	return fmt.Sprintf("extracting argument %s failed: %s", e.TypeName, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As.
func (e *ExtractorError) Unwrap() error {
	return e.Err
}

// TimeoutError is returned by a consumer when the handler overran its processing window.
type TimeoutError struct {
	After time.Duration
}

// Error prints the processing window that was exceeded.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("handler did not finish within %s", e.After)
}
