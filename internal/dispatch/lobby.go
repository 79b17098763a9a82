package dispatch

import (
	"sync"

	"github.com/kisaten/bancho/internal/session"
)

// Lobby tracks the sessions currently browsing the list of open matches.
// Being in the lobby is independent of being inside a match.
type Lobby struct {
	mu      sync.RWMutex
	members map[string]*session.Session
}

func NewLobby() *Lobby {
	return &Lobby{members: make(map[string]*session.Session)}
}

// Join adds s, reporting false if already present.
func (l *Lobby) Join(s *session.Session) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.members[s.Token]; ok {
		return false
	}
	l.members[s.Token] = s
	return true
}

// Part removes s, reporting false if absent.
func (l *Lobby) Part(s *session.Session) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.members[s.Token]; !ok {
		return false
	}
	delete(l.members, s.Token)
	return true
}

// Broadcast enqueues packet bytes to every lobby member except exclude
// (which may be nil).
func (l *Lobby) Broadcast(b []byte, exclude *session.Session) {
	l.mu.RLock()
	members := make([]*session.Session, 0, len(l.members))
	for _, s := range l.members {
		members = append(members, s)
	}
	l.mu.RUnlock()

	for _, s := range members {
		if exclude != nil && s.Token == exclude.Token {
			continue
		}
		s.Enqueue(b)
	}
}
