package session

import "github.com/YisusLuligo/chat/internal/model"

// Handle is the transport-provided endpoint for one client connection.
// The coordinator only ever health-checks a handle and pushes events to it;
// everything else about the connection belongs to the transport.
type Handle interface {
	// Alive reports whether the connection is still reachable.
	// Implementations must return quickly and must not block; an
	// unresponsive peer must never stall the caller.
	Alive() bool

	// Push queues an event for delivery to the client. It returns an error
	// when the client is gone or its outbound buffer is full. Push must not
	// block.
	Push(ev model.Event) error
}
