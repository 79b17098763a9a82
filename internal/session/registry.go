package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrDuplicateSession is returned by Login when a session with the same user
// id is already registered.
var ErrDuplicateSession = errors.New("session: user already logged in")

// Registry owns every connected session, keyed by token. It is shared across
// all concurrently-handled requests; lookups take a read lock, insert and
// remove take the write lock.
type Registry struct {
	Logger *logrus.Logger

	mu      sync.RWMutex
	byToken map[string]*Session
}

func NewRegistry(logger *logrus.Logger) *Registry {
	return &Registry{
		Logger:  logger,
		byToken: make(map[string]*Session),
	}
}

// Login registers a new player session for the given user id, allocating an
// unguessable token. It fails with ErrDuplicateSession if the id is already
// registered.
//
// A non-zero timeout starts a liveness watcher: if no Heartbeat arrives
// within timeout, onTimeout is invoked once with the session's token. The
// watcher stops when the session is removed, and never fires after removal,
// so a concurrent manual logout cannot produce a duplicate.
func (r *Registry) Login(id int32, username string, timeout time.Duration, onTimeout func(token string)) (*Session, error) {
	token := uuid.NewString()
	s := newSession(id, username, token, true)

	r.mu.Lock()
	for _, other := range r.byToken {
		if other.ID == id {
			r.mu.Unlock()
			return nil, ErrDuplicateSession
		}
	}
	r.byToken[token] = s
	r.mu.Unlock()

	if timeout > 0 && onTimeout != nil {
		go r.watchLiveness(s, timeout, onTimeout)
	}
	return s, nil
}

// AddBot registers a bot session. Bots never time out and are never drained.
func (r *Registry) AddBot(id int32, username string) *Session {
	s := newSession(id, username, uuid.NewString(), false)
	r.mu.Lock()
	r.byToken[s.Token] = s
	r.mu.Unlock()
	return s
}

// Lookup resolves a token to its session.
func (r *Registry) Lookup(token string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byToken[token]
	return s, ok
}

// LookupID resolves a numeric user id to its session.
func (r *Registry) LookupID(id int32) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.byToken {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// LookupUsername resolves a username to its session.
func (r *Registry) LookupUsername(username string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.byToken {
		if s.Username == username {
			return s, true
		}
	}
	return nil, false
}

// Remove unregisters the session owning token, stops its liveness watcher,
// and returns it. Removal is the sole destruction path; callers are
// responsible for detaching the session from channels and matches.
func (r *Registry) Remove(token string) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.byToken[token]
	if ok {
		delete(r.byToken, token)
	}
	r.mu.Unlock()

	if ok {
		s.stopWatcher()
	}
	return s, ok
}

// Sessions returns a snapshot of every registered session.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.byToken))
	for _, s := range r.byToken {
		out = append(out, s)
	}
	return out
}

// IDs returns the user ids of every registered session.
func (r *Registry) IDs() []int32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int32, 0, len(r.byToken))
	for _, s := range r.byToken {
		out = append(out, s.ID)
	}
	return out
}

// Broadcast enqueues packet bytes to every registered session.
func (r *Registry) Broadcast(b []byte) {
	for _, s := range r.Sessions() {
		s.Enqueue(b)
	}
}

// watchLiveness runs as a background goroutine per player session, expecting
// a keep-alive at least every timeout. The registry holds no reference to
// the goroutine; it exits through the session's done channel on removal.
func (r *Registry) watchLiveness(s *Session, timeout time.Duration, onTimeout func(token string)) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-s.player.done:
			return
		case <-s.player.keepalive:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(timeout)
		case <-timer.C:
			if r.Logger != nil {
				r.Logger.Infof("session %s (%s) timed out after %v", s.Username, s.Token, timeout)
			}
			onTimeout(s.Token)
			return
		}
	}
}
