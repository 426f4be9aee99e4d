package game

import (
	"net/netip"
	"sort"
	"sync"
)

// playerRegistry is the concurrency-safe id → player mapping owned by one
// game. Iteration works on a snapshot taken under the read lock, so callers
// may add or remove players (including themselves) mid-iteration without
// corrupting the map.
type playerRegistry struct {
	mu      sync.RWMutex
	players map[int32]*Player
}

func newPlayerRegistry() *playerRegistry {
	return &playerRegistry{players: make(map[int32]*Player)}
}

// Add inserts p if the id is absent. A false return is a protocol invariant
// violation: ids are assigned by the connection layer and must be unique.
func (r *playerRegistry) Add(id int32, p *Player) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.players[id]; exists {
		return false
	}
	r.players[id] = p
	return true
}

// Remove atomically removes and returns the entry, or nil if absent.
func (r *playerRegistry) Remove(id int32) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.players[id]
	delete(r.players, id)
	return p
}

func (r *playerRegistry) Get(id int32) *Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.players[id]
}

func (r *playerRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// Snapshot returns the current players sorted by id. Sorting keeps
// host-migration picks and broadcast order deterministic.
func (r *playerRegistry) Snapshot() []*Player {
	r.mu.RLock()
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// banList is the set of banned client addresses scoped to one game.
// Append-only for the life of the game.
type banList struct {
	mu    sync.Mutex
	addrs map[netip.Addr]struct{}
}

func newBanList() *banList {
	return &banList{addrs: make(map[netip.Addr]struct{})}
}

func (b *banList) Add(addr netip.Addr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addrs[addr] = struct{}{}
}

func (b *banList) Contains(addr netip.Addr) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.addrs[addr]
	return ok
}
