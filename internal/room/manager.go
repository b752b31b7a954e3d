package room

import (
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/Zanex/poker-planning/internal/domain"
	"github.com/Zanex/poker-planning/internal/metrics"
)

// Manager hands out the single actor instance for each room id. The mutex
// only guards the room map; per-room state stays actor-owned.
type Manager struct {
	mu         sync.Mutex
	rooms      map[string]*Room
	recorder   domain.RoundRecorder
	clock      clockwork.Clock
	maxClients int
}

// NewManager creates a room manager. maxClients caps attached sessions per
// room.
func NewManager(recorder domain.RoundRecorder, clock clockwork.Clock, maxClients int) *Manager {
	return &Manager{
		rooms:      make(map[string]*Room),
		recorder:   recorder,
		clock:      clock,
		maxClients: maxClients,
	}
}

// Get returns the room actor for the id, creating it on first use. Rooms are
// kept for the lifetime of the process so that round number, card type, and
// session id survive the room becoming empty.
func (m *Manager) Get(roomID string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, exists := m.rooms[roomID]; exists {
		return r
	}

	r := New(roomID, m.recorder, m.clock, m.maxClients)
	m.rooms[roomID] = r
	metrics.ActiveRooms.Set(float64(len(m.rooms)))
	return r
}

// RoomCount returns the number of live room actors.
func (m *Manager) RoomCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

// Stop shuts down every room actor, disconnecting all sessions.
func (m *Manager) Stop() {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for id, r := range m.rooms {
		rooms = append(rooms, r)
		delete(m.rooms, id)
	}
	metrics.ActiveRooms.Set(0)
	m.mu.Unlock()

	for _, r := range rooms {
		r.Stop()
	}
}
