// Package transport carries protocol messages between nodes. The contract
// is deliberately weak: delivery is fire-and-forget and the network may
// drop, duplicate or delay any message. The one thing a transport must
// never do is fabricate a message nobody sent.
package transport

import (
	"errors"
	"time"
)

var (
	// ErrTimeout is returned by ReceiveTimeout when no message arrived in
	// time.
	ErrTimeout = errors.New("transport: receive timed out")
	// ErrClosed is returned once an endpoint has been closed.
	ErrClosed = errors.New("transport: endpoint closed")
	// ErrUnknownPeer is returned by Send for an address nobody registered.
	ErrUnknownPeer = errors.New("transport: unknown peer")
)

// Message is anything the transport can carry. Every protocol message
// names its sender so receivers know where replies go.
type Message interface {
	GetFrom() string
}

// Transport is one node's endpoint on the network.
type Transport interface {
	// Send delivers msg to the named peer. Fire-and-forget: a nil error
	// means the message was handed to the network, not that it will arrive.
	Send(to string, msg Message) error
	// Broadcast delivers msg to every registered peer, the sender included.
	Broadcast(msg Message) error
	// Receive blocks until a message addressed here arrives.
	Receive() (Message, error)
	// ReceiveTimeout is Receive bounded by d, failing with ErrTimeout.
	ReceiveTimeout(d time.Duration) (Message, error)
	Close() error
}
