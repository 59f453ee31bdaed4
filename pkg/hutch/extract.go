package hutch

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
)

// Extractor populates itself from the client and an incoming delivery. Handler
// arguments implement Extractor on their pointer receiver; a failed extraction
// fails the whole delivery before the handler function ever runs.
type Extractor interface {
	Extract(client *Client, delivery Delivery) error
}

// ExtractorPtr constrains a pointer type to implement Extractor for its base
// type. It lets the handler adapters infer the pointer type from a plain value
// type parameter.
type ExtractorPtr[T any] interface {
	*T
	Extractor
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

// Extract makes Delivery itself usable as a handler argument.
func (d *Delivery) Extract(_ *Client, delivery Delivery) error {
	*d = delivery
	return nil
}

// ClientRef gives a handler access to the Client that received the delivery.
type ClientRef struct {
	*Client
}

// Extract captures the receiving client.
func (r *ClientRef) Extract(client *Client, _ Delivery) error {
	r.Client = client
	return nil
}

// StateProvider can be implemented by registered application state to serve
// values of more than one type. ProvideState receives a pointer to the
// requested value and reports whether it filled it.
type StateProvider interface {
	ProvideState(target any) bool
}

// State gives a handler access to application state registered on the client.
// The state either is an S itself or implements StateProvider for S.
type State[S any] struct {
	Value S
}

// Extract resolves state of type S from the client.
func (s *State[S]) Extract(client *Client, _ Delivery) error {
	if client == nil || client.state == nil {
		return fmt.Errorf("%w: no state registered", ErrStateUnavailable)
	}

	if value, ok := client.state.(S); ok {
		s.Value = value
		return nil
	}

	if provider, ok := client.state.(StateProvider); ok {
		if provider.ProvideState(&s.Value) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrStateUnavailable, typeName[S]())
}

// Body gives a handler the raw payload bytes.
type Body []byte

// Extract copies the payload bytes out of the delivery.
func (b *Body) Extract(_ *Client, delivery Delivery) error {
	*b = Body(delivery.Body())
	return nil
}

// AppID gives a handler the publishing application's ID. Extraction fails when
// the property is absent.
type AppID string

// Extract reads the app-id property.
func (a *AppID) Extract(_ *Client, delivery Delivery) error {
	if delivery.AppID() == "" {
		return ErrAppIDMissing
	}

	*a = AppID(delivery.AppID())
	return nil
}

// MessageID gives a handler the delivery's message ID. Extraction fails when
// the property is absent.
type MessageID string

// Extract reads the message-id property.
func (m *MessageID) Extract(_ *Client, delivery Delivery) error {
	if delivery.MessageID() == "" {
		return ErrMessageIDMissing
	}

	*m = MessageID(delivery.MessageID())
	return nil
}

// MessageUUID gives a handler the delivery's message ID parsed as a UUID.
type MessageUUID struct {
	uuid.UUID
}

// Extract reads and parses the message-id property.
func (m *MessageUUID) Extract(_ *Client, delivery Delivery) error {
	if delivery.MessageID() == "" {
		return ErrMessageIDMissing
	}

	parsed, err := uuid.Parse(delivery.MessageID())
	if err != nil {
		return fmt.Errorf("message ID is not a valid UUID: %w", err)
	}

	m.UUID = parsed
	return nil
}

// JSON gives a handler the payload deserialized into T. When the client was
// configured with compression or encryption the payload is unsealed first.
type JSON[T any] struct {
	Value T
}

// Extract unseals and unmarshals the payload.
func (j *JSON[T]) Extract(client *Client, delivery Delivery) error {
	data, err := unsealBody(client, delivery)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, &j.Value); err != nil {
		return fmt.Errorf("deserializing payload into %s failed: %w", typeName[T](), err)
	}

	return nil
}

// Proto gives a handler the payload deserialized as a protobuf message of type M.
type Proto[M proto.Message] struct {
	Value M
}

// Extract unseals the payload and unmarshals it into a freshly allocated M.
func (p *Proto[M]) Extract(client *Client, delivery Delivery) error {
	data, err := unsealBody(client, delivery)
	if err != nil {
		return err
	}

	// M is a pointer type, allocate the message it points at.
	message := reflect.New(reflect.TypeOf(p.Value).Elem()).Interface().(M)
	if err := proto.Unmarshal(data, message); err != nil {
		return fmt.Errorf("deserializing payload into %s failed: %w", typeName[M](), err)
	}

	p.Value = message
	return nil
}

// Opt wraps another extractor and turns its failure into absence. PT names the
// pointer form of the wrapped extractor, e.g. Opt[AppID, *AppID].
type Opt[T any, PT ExtractorPtr[T]] struct {
	Value T
	OK    bool
}

// Extract runs the wrapped extractor and records whether it succeeded.
func (o *Opt[T, PT]) Extract(client *Client, delivery Delivery) error {
	o.OK = PT(&o.Value).Extract(client, delivery) == nil
	if !o.OK {
		var zero T
		o.Value = zero
	}
	return nil
}

// Try wraps another extractor and hands its failure to the handler instead of
// failing the delivery. PT names the pointer form of the wrapped extractor.
type Try[T any, PT ExtractorPtr[T]] struct {
	Value T
	Err   error
}

// Extract runs the wrapped extractor and captures its error.
func (t *Try[T, PT]) Extract(client *Client, delivery Delivery) error {
	t.Err = PT(&t.Value).Extract(client, delivery)
	if t.Err != nil {
		var zero T
		t.Value = zero
	}
	return nil
}

// unsealBody reverses the client's payload sealing, if any was configured.
func unsealBody(client *Client, delivery Delivery) ([]byte, error) {
	if client == nil || client.config == nil {
		return delivery.Body(), nil
	}

	return ReadPayload(delivery.Body(), client.config.CompressionConfig, client.config.EncryptionConfig)
}
