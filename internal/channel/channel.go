// Package channel implements named broadcast groups. Channels are the
// authoritative record of membership; the per-session membership set is only
// advisory.
package channel

import (
	"strings"
	"sync"

	"github.com/kisaten/bancho/internal/session"
)

// Synthetic per-match and per-spectator channels are presented to clients
// under fixed public aliases.
const (
	MatchPrefix     = "#multi_"
	SpectatorPrefix = "#spect_"

	MatchAlias     = "#multiplayer"
	SpectatorAlias = "#spectator"
)

// Channel is one broadcast group. Membership is keyed by session token; join
// is idempotent and reports whether the session was newly added.
type Channel struct {
	name        string
	description string
	public      bool

	mu      sync.RWMutex
	members map[string]*session.Session
}

// Name returns the channel's internal name (e.g. "#multi_3").
func (c *Channel) Name() string { return c.name }

// DisplayName returns the name shown to clients: synthetic match and
// spectator channels are aliased, everything else passes through. Every
// outbound packet that names a channel must use this.
func (c *Channel) DisplayName() string {
	switch {
	case strings.HasPrefix(c.name, MatchPrefix):
		return MatchAlias
	case strings.HasPrefix(c.name, SpectatorPrefix):
		return SpectatorAlias
	default:
		return c.name
	}
}

func (c *Channel) Description() string { return c.description }
func (c *Channel) Public() bool        { return c.public }

// Len returns the current member count.
func (c *Channel) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.members)
}

// Has reports whether s is a member.
func (c *Channel) Has(s *session.Session) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.members[s.Token]
	return ok
}

// Join adds s to the channel. It reports false, and changes nothing, if s is
// already a member.
func (c *Channel) Join(s *session.Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.members[s.Token]; ok {
		return false
	}
	c.members[s.Token] = s
	return true
}

// Part removes s from the channel, reporting false if s was not a member.
func (c *Channel) Part(s *session.Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.members[s.Token]; !ok {
		return false
	}
	delete(c.members, s.Token)
	return true
}

// Members returns a snapshot of the member sessions.
func (c *Channel) Members() []*session.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*session.Session, 0, len(c.members))
	for _, s := range c.members {
		out = append(out, s)
	}
	return out
}

// Broadcast enqueues packet bytes to every member except exclude (which may
// be nil). The exclusion keeps a sender from receiving its own chat echo;
// explicit acknowledgments go through separate packets.
func (c *Channel) Broadcast(b []byte, exclude *session.Session) {
	for _, s := range c.Members() {
		if exclude != nil && s.Token == exclude.Token {
			continue
		}
		s.Enqueue(b)
	}
}

// Registry is the shared map of channels by internal name.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]*Channel
}

func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]*Channel)}
}

// Create registers a new channel, replacing any existing channel with the
// same name.
func (r *Registry) Create(name, description string, public bool) *Channel {
	c := &Channel{
		name:        name,
		description: description,
		public:      public,
		members:     make(map[string]*session.Session),
	}
	r.mu.Lock()
	r.channels[name] = c
	r.mu.Unlock()
	return c
}

// Get resolves an internal channel name.
func (r *Registry) Get(name string) (*Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.channels[name]
	return c, ok
}

// Remove deletes the channel by name, reporting whether it existed. Used when
// a match ends and its paired channel is torn down.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.channels[name]; !ok {
		return false
	}
	delete(r.channels, name)
	return true
}

// Public returns a snapshot of the publicly-listed channels.
func (r *Registry) Public() []*Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Channel, 0, len(r.channels))
	for _, c := range r.channels {
		if c.public {
			out = append(out, c)
		}
	}
	return out
}
