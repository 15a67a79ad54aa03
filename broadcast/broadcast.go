// broadcast/broadcast.go
package broadcast

import (
	"github.com/rihaans/GameHub/logger"
	"github.com/rihaans/GameHub/session"
)

// RoomBroadcaster fans one encoded envelope out to a set of member
// connections. Each send is an independent enqueue onto that connection's
// outbound buffer; a full buffer or closed connection drops the envelope for
// that member only and delivery to the rest proceeds.
type RoomBroadcaster struct {
	onDrop func(playerID string)
}

// NewRoomBroadcaster creates a broadcaster. onDrop, if non-nil, is invoked
// once per dropped delivery (metrics hook).
func NewRoomBroadcaster(onDrop func(playerID string)) *RoomBroadcaster {
	return &RoomBroadcaster{onDrop: onDrop}
}

func (b *RoomBroadcaster) Deliver(targets []*session.Session, payload []byte) {
	for _, s := range targets {
		if err := s.Conn.Send(payload); err != nil {
			logger.Log.Warnf("Dropped envelope to player %s: %v", s.ID, err)
			if b.onDrop != nil {
				b.onDrop(s.ID)
			}
		}
	}
}
