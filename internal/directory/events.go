package directory

import (
	"fmt"

	"github.com/BioHazard786/relayroom/internal/room"
	"github.com/BioHazard786/relayroom/internal/transport"
)

// roomEvents routes one connection's transport events to its room.
type roomEvents struct {
	d  *Directory
	id ID
}

// Events returns the transport sink for channels of room id.
func (d *Directory) Events(id ID) transport.Events {
	return roomEvents{d: d, id: id}
}

func (e roomEvents) OnMessage(c *transport.Conn, msg room.Message) {
	e.d.Do(e.id, func(r *room.Room) {
		r.Relay(c, msg)
	})
}

func (e roomEvents) OnClose(c *transport.Conn, code int, reason string, clean bool) {
	e.disconnect(c, fmt.Sprintf("closed %d %q clean=%t", code, reason, clean))
}

func (e roomEvents) OnError(c *transport.Conn, err error) {
	e.disconnect(c, fmt.Sprintf("error: %v", err))
}

// disconnect runs against the room before the channel leaves the live
// registry, so a room woken by this event still sees c and can tear down
// its peer.
func (e roomEvents) disconnect(c *transport.Conn, reason string) {
	e.d.Do(e.id, func(r *room.Room) {
		r.Disconnect(c, reason)
	})
	e.d.Detach(e.id, c)
}
