package multi

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kisaten/bancho/internal/session"
)

var (
	// ErrNotHost is returned when a non-host session attempts a host-only
	// operation.
	ErrNotHost = errors.New("multi: requester is not the match host")
)

// Registry is the shared map of live matches. Match ids come from a strictly
// increasing counter so a disposed match's id is never reused.
type Registry struct {
	mu      sync.RWMutex
	matches map[uint16]*Match
	nextID  uint16
}

func NewRegistry() *Registry {
	return &Registry{matches: make(map[uint16]*Match), nextID: 1}
}

// Create allocates a match with the given initial settings and seats host in
// slot 0 as NotReady. The host session is associated with the new match before
// this returns.
func (r *Registry) Create(settings Settings, host *session.Session) *Match {
	settings.HostID = host.ID

	r.mu.Lock()
	m := &Match{ID: r.nextID, settings: settings}
	r.nextID++
	m.slots[0] = Slot{Status: SlotNotReady, Token: host.Token}
	r.matches[m.ID] = m
	r.mu.Unlock()

	host.SetMatchID(int32(m.ID))
	return m
}

// Get resolves a match id. A miss is an expected case: the match may have
// been disposed since the caller captured the id.
func (r *Registry) Get(id uint16) (*Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.matches[id]
	return m, ok
}

// Remove disposes the match by id, reporting whether it existed.
func (r *Registry) Remove(id uint16) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[id]; !ok {
		return false
	}
	delete(r.matches, id)
	return true
}

// Matches returns a snapshot of every live match.
func (r *Registry) Matches() []*Match {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Match, 0, len(r.matches))
	for _, m := range r.matches {
		out = append(out, m)
	}
	return out
}

func matchChannelName(id uint16) string {
	return fmt.Sprintf("#multi_%d", id)
}
