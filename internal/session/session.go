// Package session owns every connected session and its server-side state:
// presence stats, the outbound packet queue, channel memberships, and the
// liveness watcher that reaps clients which stop sending keep-alives.
package session

import (
	"sync"
)

// Action identifiers reported by the client in status updates.
const (
	ActionIdle uint8 = iota
	ActionAfk
	ActionPlaying
	ActionEditing
	ActionModding
	ActionMultiplayer
	ActionWatching
	ActionUnknown
	ActionTesting
	ActionSubmitting
	ActionPaused
	ActionLobby
	ActionMultiplaying
	ActionOsuDirect
	ActionNone
)

// Game mode identifiers.
const (
	ModeStandard uint8 = iota
	ModeTaiko
	ModeCatch
	ModeMania
)

// NoMatch is the matchID value for a session not associated with any match.
const NoMatch = -1

// Stats is the mutable presence block attached to a player session: what the
// client reports it is doing plus its score summary.
type Stats struct {
	Action     uint8
	ActionText string
	ActionMD5  string
	Mods       uint32
	GameMode   uint8
	BeatmapID  uint32

	RankedScore uint64
	Accuracy    float32
	Playcount   uint32
	TotalScore  uint64
	Rank        uint32
	PP          uint16
}

func defaultStats() Stats {
	return Stats{Action: ActionIdle, Accuracy: 1.0, Rank: 1}
}

// botStats is the canned presence block shared by all bot sessions.
var botStats = Stats{
	Action:     ActionTesting,
	ActionText: "beep boop",
	Accuracy:   1.0,
	Rank:       1,
}

// Session is the server-side record for one authenticated client. A session
// is either a real player or a server-operated bot; bots share the id,
// username, queue, and channel-membership capabilities but have no mutable
// stats and never time out.
//
// Each mutable sub-resource has its own lock so that touching one session's
// stats never blocks another session's queue.
type Session struct {
	ID       int32
	Username string
	// Token is the opaque capability credential the client presents on every
	// request. It is the registry key and must not be guessable.
	Token string

	// player is nil for bot sessions.
	player *playerState

	queueMu sync.Mutex
	queue   []byte

	channelsMu sync.Mutex
	channels   map[string]struct{}

	matchMu sync.Mutex
	matchID int32
}

// playerState holds the session state that only exists for real players.
type playerState struct {
	statsMu sync.RWMutex
	stats   Stats

	// keepalive receives a signal per heartbeat packet; done is closed when
	// the session is removed from the registry so the watcher can stop.
	keepalive chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
}

func newSession(id int32, username, token string, player bool) *Session {
	s := &Session{
		ID:       id,
		Username: username,
		Token:    token,
		channels: make(map[string]struct{}),
		matchID:  NoMatch,
	}
	if player {
		s.player = &playerState{
			stats:     defaultStats(),
			keepalive: make(chan struct{}, 1),
			done:      make(chan struct{}),
		}
	}
	return s
}

// IsBot reports whether this session is a server-operated bot.
func (s *Session) IsBot() bool {
	return s.player == nil
}

// Stats returns a copy of the session's presence block. Bots report a fixed
// canned block.
func (s *Session) Stats() Stats {
	if s.player == nil {
		return botStats
	}
	s.player.statsMu.RLock()
	defer s.player.statsMu.RUnlock()
	return s.player.stats
}

// MutateStats applies fn to the session's stats under the stats lock. It
// reports false for bot sessions, whose stats are immutable.
func (s *Session) MutateStats(fn func(*Stats)) bool {
	if s.player == nil {
		return false
	}
	s.player.statsMu.Lock()
	defer s.player.statsMu.Unlock()
	fn(&s.player.stats)
	return true
}

// Enqueue appends packet bytes to the session's outbound queue. Bot sessions
// discard everything; nothing reads their queue.
func (s *Session) Enqueue(b []byte) {
	if s.player == nil || len(b) == 0 {
		return
	}
	s.queueMu.Lock()
	s.queue = append(s.queue, b...)
	s.queueMu.Unlock()
}

// Drain atomically empties the outbound queue and returns its contents. It is
// called once per request/response cycle after the request's packets have all
// been dispatched.
func (s *Session) Drain() []byte {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	out := s.queue
	s.queue = nil
	return out
}

// JoinedChannel records name in the session's advisory membership set. The
// channel itself is authoritative; this set only exists so logout can find
// the channels to part.
func (s *Session) JoinedChannel(name string) {
	s.channelsMu.Lock()
	s.channels[name] = struct{}{}
	s.channelsMu.Unlock()
}

// PartedChannel removes name from the advisory membership set.
func (s *Session) PartedChannel(name string) {
	s.channelsMu.Lock()
	delete(s.channels, name)
	s.channelsMu.Unlock()
}

// ChannelNames returns a snapshot of the advisory membership set.
func (s *Session) ChannelNames() []string {
	s.channelsMu.Lock()
	defer s.channelsMu.Unlock()
	names := make([]string, 0, len(s.channels))
	for name := range s.channels {
		names = append(names, name)
	}
	return names
}

// MatchID returns the id of the match the session currently occupies, or
// NoMatch. The match may have been destroyed concurrently; callers must
// re-resolve through the match registry and treat a miss as expected.
func (s *Session) MatchID() int32 {
	s.matchMu.Lock()
	defer s.matchMu.Unlock()
	return s.matchID
}

// SetMatchID associates the session with a match (or NoMatch to clear).
func (s *Session) SetMatchID(id int32) {
	s.matchMu.Lock()
	s.matchID = id
	s.matchMu.Unlock()
}

// Heartbeat signals the liveness watcher that the client is still there.
// Non-blocking; a heartbeat queued while one is already pending is redundant.
func (s *Session) Heartbeat() {
	if s.player == nil {
		return
	}
	select {
	case s.player.keepalive <- struct{}{}:
	default:
	}
}

// stopWatcher releases the liveness watcher, if any. Safe to call more than
// once and from concurrent logout paths.
func (s *Session) stopWatcher() {
	if s.player == nil {
		return
	}
	s.player.stopOnce.Do(func() {
		close(s.player.done)
	})
}
