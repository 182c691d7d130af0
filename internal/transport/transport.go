// Package transport defines the boundary to the real-time peer layer.
// The recording core only consumes "new stream available" and "stream
// ended" signals; peer discovery, signaling, and the wire protocol live
// behind this interface.
package transport

import (
	"github.com/petems/trackdeck/internal/audio"
	"github.com/petems/trackdeck/internal/recorder"
)

// Event is a participant lifecycle signal. Concrete types: PeerJoined,
// PeerLeft.
type Event interface {
	isEvent()
}

// PeerJoined announces a new participant and their live stream.
type PeerJoined struct {
	ID          recorder.ID
	DisplayName string
	Stream      audio.Source
}

// PeerLeft announces that a participant's stream has ended.
type PeerLeft struct {
	ID recorder.ID
}

func (PeerJoined) isEvent() {}
func (PeerLeft) isEvent()   {}

// Transport supplies participant events for one session.
type Transport interface {
	// Events yields join/leave signals until Close. The channel is
	// closed when the transport shuts down.
	Events() <-chan Event
	Close() error
}

// nop is a transport with no remote participants; the host records
// alone.
type nop struct {
	ch chan Event
}

// NewNop returns a Transport that never emits events. Used when no peer
// layer is configured.
func NewNop() Transport {
	return &nop{ch: make(chan Event)}
}

func (n *nop) Events() <-chan Event { return n.ch }

func (n *nop) Close() error {
	close(n.ch)
	return nil
}
