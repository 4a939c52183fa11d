package directory

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/BioHazard786/relayroom/internal/room"
)

// Default values for Config fields left at zero.
const (
	DefaultIdleTimeout   = 5 * time.Minute
	DefaultSweepInterval = time.Minute
)

// Config controls when rooms hibernate.
type Config struct {
	// IdleTimeout is how long a room must go unused before its actor is
	// dropped. Its channels stay open.
	IdleTimeout time.Duration

	// SweepInterval is how often Run looks for idle rooms.
	SweepInterval time.Duration
}

// Stats is a point-in-time view of the directory.
type Stats struct {
	Rooms       int `json:"rooms"`
	Active      int `json:"active"`
	Hibernating int `json:"hibernating"`
	Connections int `json:"connections"`
}

// entry tracks one room. room is nil while the room hibernates; live is
// the transport's record of open channels and survives hibernation.
type entry struct {
	id         ID
	room       *room.Room
	live       []room.Conn
	refs       int
	lastActive time.Time
}

// Directory is the central registry of rooms. It creates rooms on first
// access, records which channels are still open for each, and rebuilds a
// hibernated room from those channels when it is next needed.
type Directory struct {
	mu      sync.Mutex
	entries map[ID]*entry

	cfg        Config
	logger     *slog.Logger
	roomLogger *slog.Logger
	now        func() time.Time
}

// New creates an empty Directory.
func New(cfg Config, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	return &Directory{
		entries:    make(map[ID]*entry),
		cfg:        cfg,
		logger:     logger.With("component", "directory"),
		roomLogger: logger.With("component", "room"),
		now:        time.Now,
	}
}

// Do runs fn against the room for id, creating or waking it first. The
// room cannot hibernate while fn runs.
func (d *Directory) Do(id ID, fn func(*room.Room)) {
	r := d.acquire(id)
	defer d.release(id)
	fn(r)
}

func (d *Directory) acquire(id ID) *room.Room {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.entries[id]
	if !ok {
		e = &entry{id: id}
		d.entries[id] = e
		d.logger.Debug("room created", "room", id.Short())
	}
	if e.room == nil {
		logger := d.roomLogger.With("room", id.Short())
		if len(e.live) == 0 {
			e.room = room.New(logger)
		} else {
			e.room = room.Recover(logger, slices.Clone(e.live))
			d.logger.Info("room woke up", "room", id.Short(), "channels", len(e.live))
		}
	}
	e.refs++
	e.lastActive = d.now()
	return e.room
}

func (d *Directory) release(id ID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.entries[id]; ok {
		e.refs--
		e.lastActive = d.now()
	}
}

// Attach records c as a live channel of room id.
func (d *Directory) Attach(id ID, c room.Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.entries[id]
	if !ok {
		e = &entry{id: id, lastActive: d.now()}
		d.entries[id] = e
	}
	if !slices.Contains(e.live, c) {
		e.live = append(e.live, c)
	}
}

// Detach forgets c once the transport reports it closed.
func (d *Directory) Detach(id ID, c room.Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.entries[id]; ok {
		e.live = slices.DeleteFunc(e.live, func(x room.Conn) bool { return x == c })
	}
}

// LiveChannels returns the open channels of room id in admission order.
func (d *Directory) LiveChannels(id ID) []room.Conn {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.entries[id]; ok {
		return slices.Clone(e.live)
	}
	return nil
}

// Sweep hibernates rooms that have been idle for IdleTimeout and removes
// idle entries that no longer have open channels.
func (d *Directory) Sweep() (hibernated, removed int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for id, e := range d.entries {
		if e.refs > 0 || now.Sub(e.lastActive) < d.cfg.IdleTimeout {
			continue
		}
		if len(e.live) == 0 {
			delete(d.entries, id)
			removed++
			continue
		}
		if e.room != nil {
			e.room = nil
			hibernated++
			d.logger.Debug("room hibernated", "room", id.Short(), "channels", len(e.live))
		}
	}
	return hibernated, removed
}

// Run sweeps idle rooms until ctx is done.
func (d *Directory) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			hibernated, removed := d.Sweep()
			if hibernated > 0 || removed > 0 {
				d.logger.Info("swept idle rooms", "hibernated", hibernated, "removed", removed)
			}
		}
	}
}

// Stats reports room and connection counts.
func (d *Directory) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	var s Stats
	for _, e := range d.entries {
		s.Rooms++
		if e.room != nil {
			s.Active++
		} else {
			s.Hibernating++
		}
		s.Connections += len(e.live)
	}
	return s
}
