package room

import (
	"github.com/rihaans/GameHub/session"
)

// Broadcaster delivers one encoded envelope to a set of member connections.
// This is defined here to break the import cycle between room and broadcast.
// Delivery is fire-and-forget: implementations enqueue per connection and
// never block on a slow peer.
type Broadcaster interface {
	Deliver(targets []*session.Session, payload []byte)
}
