// Package dispatch demultiplexes request bodies into typed packets and
// routes them to handlers that mutate the shared session, channel, and match
// state.
package dispatch

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kisaten/bancho/internal/bot"
	"github.com/kisaten/bancho/internal/channel"
	"github.com/kisaten/bancho/internal/multi"
	"github.com/kisaten/bancho/internal/packets"
	"github.com/kisaten/bancho/internal/session"
)

// stateError is a handler precondition failure. It is surfaced to the client
// as a notification packet appended to the response and is never fatal to
// the session.
type stateError string

func (e stateError) Error() string { return string(e) }

func stateErrorf(format string, args ...any) error {
	return stateError(fmt.Sprintf(format, args...))
}

// Dispatcher holds the process-wide state every handler operates on. It is
// constructed once at startup and shared by all concurrently-handled
// requests; each registry carries its own locking.
type Dispatcher struct {
	Sessions *session.Registry
	Channels *channel.Registry
	Matches  *multi.Registry
	Lobby    *Lobby
	Bot      *bot.Handler
	Logger   *logrus.Logger
}

// Handle dispatches every envelope in body, in arrival order, on behalf of s.
// Framing errors drop the remainder of the request (the stream cannot be
// resynchronized); decode errors drop only the offending packet; handler
// state errors become notification packets on s's queue. A logout envelope
// terminates the batch.
func (d *Dispatcher) Handle(s *session.Session, body []byte) {
	for len(body) >= packets.HeaderSize {
		id, payload, n, err := packets.ParseFrame(body)
		if err != nil {
			d.Logger.Warnf("dropping request remainder from %s: %v", s.Username, err)
			return
		}
		body = body[n:]

		if id == packets.Logout {
			d.Logout(s.Token)
			return
		}

		if err := d.handle(s, id, payload); err != nil {
			var state stateError
			if errors.As(err, &state) {
				s.Enqueue(packets.NotificationPkt(state.Error()))
				continue
			}
			// Everything else is a decode failure on this packet alone.
			d.Logger.Warnf("dropping packet %d from %s: %v", id, s.Username, err)
		}
	}
}

func (d *Dispatcher) handle(s *session.Session, id packets.ID, payload []byte) error {
	switch id {
	case packets.Pong:
		s.Heartbeat()
		return nil
	case packets.SendPublicMessage:
		return d.handlePublicMessage(s, payload)
	case packets.SendPrivateMessage:
		return d.handlePrivateMessage(s, payload)
	case packets.ChangeAction:
		return d.handleChangeAction(s, payload)
	case packets.RequestStatusUpdate:
		return d.handleStatusUpdate(s)
	case packets.UserStatsRequest:
		return d.handleStatsRequest(s, payload)
	case packets.UserPanelRequest:
		return d.handlePanelRequest(s, payload)
	case packets.ChannelJoin:
		return d.handleChannelJoin(s, payload)
	case packets.ChannelPart:
		return d.handleChannelPart(s, payload)
	case packets.JoinLobby:
		return d.handleJoinLobby(s)
	case packets.PartLobby:
		return d.handlePartLobby(s)
	case packets.CreateMatch:
		return d.handleCreateMatch(s, payload)
	case packets.JoinMatch:
		return d.handleJoinMatch(s, payload)
	case packets.MatchChangeSettings:
		return d.handleMatchChangeSettings(s, payload)
	case packets.PartMatch:
		return d.handlePartMatch(s)
	case packets.MatchReady:
		return d.handleMatchReady(s, true)
	case packets.MatchNotReady:
		return d.handleMatchReady(s, false)
	case packets.MatchStartRequest:
		return d.handleMatchStart(s)
	case packets.MatchLock:
		return d.handleMatchLock(s, payload)
	default:
		d.Logger.Warnf("unhandled packet %d from %s (%d byte payload)", id, s.Username, len(payload))
		return nil
	}
}

// Logout tears a session down: removal from the registry, every channel, any
// occupied match slot, and a logout broadcast to everyone else. Removal is
// idempotent, so the liveness watcher and a client-initiated logout cannot
// both run the teardown.
func (d *Dispatcher) Logout(token string) {
	s, ok := d.Sessions.Remove(token)
	if !ok {
		return
	}

	for _, name := range s.ChannelNames() {
		if c, ok := d.Channels.Get(name); ok {
			c.Part(s)
		}
	}
	d.Lobby.Part(s)

	if matchID := s.MatchID(); matchID != session.NoMatch {
		if m, ok := d.Matches.Get(uint16(matchID)); ok {
			d.leaveMatch(s, m)
		}
	}

	d.Sessions.Broadcast(packets.UserLogoutPkt(s.ID))
	d.Logger.Infof("%s logged out", s.Username)
}
