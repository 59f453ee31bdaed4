package hutch

import (
	"crypto/tls"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConnectionHost is an internal representation of amqp.Connection. The
// connection is dialed exactly once; when it dies the host reports the closure
// through Errors and stays dead. Recovery is the caller's business.
type ConnectionHost struct {
	Connection        *amqp.Connection
	Errors            chan *amqp.Error
	Blockers          chan amqp.Blocking
	uri               string
	connectionName    string
	heartbeatInterval time.Duration
	connectionTimeout time.Duration
	tlsConfig         *TLSConfig
	connLock          *sync.Mutex
}

// NewConnectionHost dials the broker and wires up closure and flow control notifications.
func NewConnectionHost(
	uri string,
	connectionName string,
	heartbeatInterval time.Duration,
	connectionTimeout time.Duration,
	tlsConfig *TLSConfig) (*ConnectionHost, error) {

	connHost := &ConnectionHost{
		uri:               uri,
		connectionName:    connectionName,
		heartbeatInterval: heartbeatInterval,
		connectionTimeout: connectionTimeout,
		tlsConfig:         tlsConfig,
		Errors:            make(chan *amqp.Error, 10),
		Blockers:          make(chan amqp.Blocking, 10),
		connLock:          &sync.Mutex{},
	}

	if err := connHost.connect(); err != nil {
		return nil, err
	}

	return connHost, nil
}

func (ch *ConnectionHost) connect() error {

	ch.connLock.Lock()
	defer ch.connLock.Unlock()

	var amqpConn *amqp.Connection
	var actualTLSConfig *tls.Config
	var err error

	if ch.tlsConfig != nil && ch.tlsConfig.EnableTLS {
		actualTLSConfig, err = CreateTLSConfig(
			ch.tlsConfig.PEMCertLocation,
			ch.tlsConfig.LocalCertLocation)
		if err != nil {
			return err
		}
	}

	if actualTLSConfig == nil {
		amqpConn, err = amqp.DialConfig(ch.uri, amqp.Config{
			Heartbeat: ch.heartbeatInterval,
			Dial:      amqp.DefaultDial(ch.connectionTimeout),
			Properties: amqp.Table{
				"connection_name": ch.connectionName,
			},
		})
	} else {
		amqpConn, err = amqp.DialConfig("amqps://"+ch.tlsConfig.CertServerName, amqp.Config{
			Heartbeat:       ch.heartbeatInterval,
			Dial:            amqp.DefaultDial(ch.connectionTimeout),
			TLSClientConfig: actualTLSConfig,
			Properties: amqp.Table{
				"connection_name": ch.connectionName,
			},
		})
	}
	if err != nil {
		return err
	}

	ch.Connection = amqpConn

	ch.Connection.NotifyClose(ch.Errors) // ch.Errors is closed by amqp091-go in some scenarios :(
	ch.Connection.NotifyBlocked(ch.Blockers)

	return nil
}

// PauseOnFlowControl allows you to wait and sleep while receiving flow control messages.
// Sleeps for one second, repeatedly until the blocking has stopped.
func (ch *ConnectionHost) PauseOnFlowControl() {

	ch.connLock.Lock()
	defer ch.connLock.Unlock()

	for {
		// nothing we can do (race condition) Blockers
		// and will deadlock if it is read from.
		if ch.Connection.IsClosed( /* atomic */ ) {
			return
		}

		select {
		case blocker := <-ch.Blockers: // Check for flow control issues.
			if !blocker.Active {
				return
			}
			time.Sleep(time.Second)
		default:
			return
		}
	}
}

// Close shuts the underlying AMQP connection down.
func (ch *ConnectionHost) Close() error {

	ch.connLock.Lock()
	defer ch.connLock.Unlock()

	if ch.Connection == nil || ch.Connection.IsClosed() {
		return nil
	}

	return ch.Connection.Close()
}
