package room

import "errors"

// WebSocket close codes used by the room when it tears a channel down.
const (
	CloseNormal        = 1000
	CloseInternalError = 1011
	CloseTryAgainLater = 1013
)

// Close reasons sent alongside those codes.
const (
	// PeerDisconnected goes with CloseNormal to the survivor of a pair.
	PeerDisconnected = "Peer disconnected"

	// DeliveryFailed goes with CloseInternalError to a peer that could not
	// accept a relayed message.
	DeliveryFailed = "Delivery failed"

	// RoomFullCloseMessage goes with CloseTryAgainLater to channels beyond
	// capacity when a room is recovered.
	RoomFullCloseMessage = "Room is full."
)

var (
	// ErrNotAWebSocketUpgrade is returned for a relay request without an upgrade header.
	ErrNotAWebSocketUpgrade = errors.New("expected websocket")

	// ErrRoomFull is returned when two sessions already exist.
	ErrRoomFull = errors.New("room is full")

	// ErrNotFound is returned for any room path other than the relay endpoint.
	ErrNotFound = errors.New("not found")

	// ErrSendFailed marks a relay whose peer could not accept the message.
	// It never reaches the sender.
	ErrSendFailed = errors.New("send failed")
)

// Message is an opaque payload moving between two peers.
type Message struct {
	// Data is relayed verbatim and never inspected.
	Data []byte

	// Text records whether the message arrived as a text frame, so the
	// peer receives the same frame type.
	Text bool
}

// Conn is a live bidirectional channel owned by the transport.
//
// The room holds a non-owning reference: it only routes messages through
// it and requests closure. Implementations must not call back into the room
// from Send or Close.
type Conn interface {
	// ID identifies the channel in logs.
	ID() string

	// Send delivers a message without blocking. It fails when the channel
	// is closed or cannot accept the message right now.
	Send(msg Message) error

	// Close asks the transport to close the channel with a code and reason.
	Close(code int, reason string) error
}

// Acceptor completes the host's protocol upgrade and returns the accepted
// channel. The room calls it only once it has decided to admit.
type Acceptor func() (Conn, error)
