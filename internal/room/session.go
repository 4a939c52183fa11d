package room

// Capacity is the number of peers a room can hold.
const Capacity = 2

// Session is the per-connection record kept by a room.
type Session struct {
	Conn Conn
	Peer Conn // nil until the room is paired
}

// table maps connections to sessions. It is a fixed slot pair kept in
// admission order: slots[0] is always filled before slots[1].
//
// Invariant: with two entries each peer points at the other, with fewer
// entries no peer is set.
type table struct {
	slots [Capacity]*Session
}

func (t *table) len() int {
	n := 0
	for _, s := range t.slots {
		if s != nil {
			n++
		}
	}
	return n
}

func (t *table) full() bool {
	return t.len() == Capacity
}

func (t *table) get(c Conn) *Session {
	for _, s := range t.slots {
		if s != nil && s.Conn == c {
			return s
		}
	}
	return nil
}

// insert adds c with no peer. The caller checks capacity and duplicates.
func (t *table) insert(c Conn) *Session {
	for i, s := range t.slots {
		if s == nil {
			t.slots[i] = &Session{Conn: c}
			return t.slots[i]
		}
	}
	return nil
}

// remove deletes the session for c and keeps the remaining one in slot 0.
func (t *table) remove(c Conn) *Session {
	for i, s := range t.slots {
		if s != nil && s.Conn == c {
			t.slots[i] = nil
			if i == 0 {
				t.slots[0], t.slots[1] = t.slots[1], nil
			}
			return s
		}
	}
	return nil
}

// pair links both sessions when the table is full.
func (t *table) pair() bool {
	if !t.full() {
		return false
	}
	a, b := t.slots[0], t.slots[1]
	a.Peer = b.Conn
	b.Peer = a.Conn
	return true
}

func (t *table) sessions() []Session {
	out := make([]Session, 0, Capacity)
	for _, s := range t.slots {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}
