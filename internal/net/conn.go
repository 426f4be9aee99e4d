package net

import (
	"net/netip"

	"github.com/thelostgroup/Impostor/internal/protocol"
)

// ConnState tracks the lifecycle of one client connection.
type ConnState int32

const (
	StateConnecting ConnState = iota // accepted, hello not yet received
	StateConnected                   // hello received, frames flowing
	StateDisconnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateDisconnected:
		return "Disconnected"
	}
	return "Unknown"
}

// Connection is the transport handle the session core sends through.
// Send is fire-and-forget: delivery failures surface as a later disconnect,
// never as an error to the caller.
type Connection interface {
	ID() int32
	State() ConnState
	RemoteAddr() netip.Addr

	// Send queues one built frame for transmission. The frame is copied;
	// the caller may reuse its buffer.
	Send(frame []byte)

	// Disconnect sends a disconnect notice with the given reason (plus a
	// text for DisconnectReasonCustom) and tears the connection down.
	Disconnect(reason protocol.DisconnectReason, message string)
}
