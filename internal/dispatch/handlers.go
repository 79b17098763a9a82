package dispatch

import (
	"strings"

	"github.com/kisaten/bancho/internal/channel"
	"github.com/kisaten/bancho/internal/multi"
	"github.com/kisaten/bancho/internal/packets"
	"github.com/kisaten/bancho/internal/session"
	"github.com/kisaten/bancho/internal/wire"
)

func (d *Dispatcher) handlePublicMessage(s *session.Session, payload []byte) error {
	msg, err := packets.DecodeMessage(payload)
	if err != nil {
		return err
	}

	if strings.HasPrefix(msg.Content, "!") && len(msg.Content) > 1 {
		if err := d.Bot.Command(s, msg.Content[1:]); err != nil {
			return stateErrorf("%v", err)
		}
	}

	name := msg.Target
	if name == channel.MatchAlias {
		m, err := d.currentMatch(s)
		if err != nil {
			return err
		}
		name = m.ChannelName()
	}

	c, ok := d.Channels.Get(name)
	if !ok {
		return stateErrorf("no channel named %s", msg.Target)
	}
	if !c.Has(s) {
		return stateErrorf("you are not a member of %s", c.DisplayName())
	}

	c.Broadcast(packets.MessagePkt(s, c.DisplayName(), msg.Content), s)
	return nil
}

func (d *Dispatcher) handlePrivateMessage(s *session.Session, payload []byte) error {
	msg, err := packets.DecodeMessage(payload)
	if err != nil {
		return err
	}

	if strings.HasPrefix(msg.Content, "!") && len(msg.Content) > 1 {
		if err := d.Bot.Command(s, msg.Content[1:]); err != nil {
			return stateErrorf("%v", err)
		}
	}

	target, ok := d.Sessions.LookupUsername(msg.Target)
	if !ok {
		return stateErrorf("%s is not online", msg.Target)
	}
	target.Enqueue(packets.MessagePkt(s, target.Username, msg.Content))
	return nil
}

func (d *Dispatcher) handleChangeAction(s *session.Session, payload []byte) error {
	a, err := packets.DecodeAction(payload)
	if err != nil {
		return err
	}
	if a.ID > session.ActionNone {
		return stateErrorf("unknown action id %d", a.ID)
	}

	s.MutateStats(func(stats *session.Stats) {
		stats.Action = a.ID
		stats.ActionText = a.Text
		stats.ActionMD5 = a.MD5
		stats.Mods = a.Mods
	})
	d.Sessions.Broadcast(packets.UserPanelPkt(s))
	return nil
}

func (d *Dispatcher) handleStatusUpdate(s *session.Session) error {
	s.Enqueue(packets.UserStatsPkt(s))
	return nil
}

func (d *Dispatcher) handleStatsRequest(s *session.Session, payload []byte) error {
	ids, _, err := packets.DecodeIDList(payload)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == s.ID {
			continue
		}
		if t, ok := d.Sessions.LookupID(id); ok {
			s.Enqueue(packets.UserStatsPkt(t))
		}
	}
	return nil
}

func (d *Dispatcher) handlePanelRequest(s *session.Session, payload []byte) error {
	ids, _, err := packets.DecodeIDList(payload)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if t, ok := d.Sessions.LookupID(id); ok {
			s.Enqueue(packets.UserPanelPkt(t))
		}
	}
	return nil
}

func (d *Dispatcher) handleChannelJoin(s *session.Session, payload []byte) error {
	name, err := packets.DecodeChannelName(payload)
	if err != nil {
		return err
	}
	c, err := d.resolveChannel(s, name)
	if err != nil {
		return err
	}
	if !c.Join(s) {
		return stateErrorf("you are already a member of %s", c.DisplayName())
	}
	s.JoinedChannel(c.Name())
	s.Enqueue(packets.ChannelJoinSuccessPkt(c))
	return nil
}

func (d *Dispatcher) handleChannelPart(s *session.Session, payload []byte) error {
	name, err := packets.DecodeChannelName(payload)
	if err != nil {
		return err
	}
	c, err := d.resolveChannel(s, name)
	if err != nil {
		return err
	}
	if !c.Part(s) {
		return stateErrorf("you are not a member of %s", c.DisplayName())
	}
	s.PartedChannel(c.Name())
	s.Enqueue(packets.ChannelKickedPkt(c))
	return nil
}

// resolveChannel maps a client-facing channel name to the authoritative
// channel, translating the multiplayer alias to the session's own match
// channel.
func (d *Dispatcher) resolveChannel(s *session.Session, name string) (*channel.Channel, error) {
	if name == channel.MatchAlias {
		m, err := d.currentMatch(s)
		if err != nil {
			return nil, err
		}
		name = m.ChannelName()
	}
	c, ok := d.Channels.Get(name)
	if !ok {
		return nil, stateErrorf("no channel named %s", name)
	}
	return c, nil
}

func (d *Dispatcher) handleJoinLobby(s *session.Session) error {
	if !d.Lobby.Join(s) {
		return stateError("you are already in the lobby")
	}
	for _, m := range d.Matches.Matches() {
		st := d.matchState(m)
		s.Enqueue(packets.NewMatchPkt(st))
	}
	return nil
}

func (d *Dispatcher) handlePartLobby(s *session.Session) error {
	if !d.Lobby.Part(s) {
		return stateError("you are not in the lobby")
	}
	return nil
}

func (d *Dispatcher) handleCreateMatch(s *session.Session, payload []byte) error {
	p, err := packets.DecodeMatchSettings(payload)
	if err != nil {
		if err == packets.ErrEmptyName {
			return stateError("match name cannot be empty")
		}
		return err
	}
	if s.MatchID() != session.NoMatch {
		return stateError("you are already in a match")
	}

	settings := p.Settings
	settings.InProgress = false
	m := d.Matches.Create(settings, s)

	c := d.Channels.Create(m.ChannelName(), "", false)
	c.Join(s)
	s.JoinedChannel(c.Name())

	st := d.matchState(m)
	s.Enqueue(packets.MatchJoinSuccessPkt(st))
	s.Enqueue(packets.MatchTransferHostPkt())
	s.Enqueue(packets.ChannelJoinSuccessPkt(c))

	d.Lobby.Broadcast(packets.NewMatchPkt(st), s)
	d.Logger.Infof("%s created match %d (%q)", s.Username, m.ID, settings.Name)
	return nil
}

func (d *Dispatcher) handleJoinMatch(s *session.Session, payload []byte) error {
	j, err := packets.DecodeMatchJoin(payload)
	if err != nil {
		return err
	}
	if s.MatchID() != session.NoMatch {
		s.Enqueue(packets.MatchJoinFailPkt())
		return stateError("you are already in a match")
	}

	m, ok := d.Matches.Get(uint16(j.ID))
	if !ok {
		s.Enqueue(packets.MatchJoinFailPkt())
		return stateError("the match no longer exists")
	}
	settings := m.Settings()
	if settings.Password != "" && settings.Password != j.Password {
		s.Enqueue(packets.MatchJoinFailPkt())
		return stateError("wrong match password")
	}
	if _, ok := m.Occupy(s); !ok {
		s.Enqueue(packets.MatchJoinFailPkt())
		return stateError("the match is full")
	}
	s.SetMatchID(int32(m.ID))

	if c, ok := d.Channels.Get(m.ChannelName()); ok {
		c.Join(s)
		s.JoinedChannel(c.Name())
		s.Enqueue(packets.MatchJoinSuccessPkt(d.matchState(m)))
		s.Enqueue(packets.ChannelJoinSuccessPkt(c))
	}
	d.broadcastMatchUpdate(m)
	return nil
}

func (d *Dispatcher) handleMatchChangeSettings(s *session.Session, payload []byte) error {
	m, err := d.currentMatch(s)
	if err != nil {
		return err
	}
	p, err := packets.DecodeMatchSettings(payload)
	if err != nil {
		if err == packets.ErrEmptyName {
			return stateError("match name cannot be empty")
		}
		return err
	}

	if err := m.ChangeSettings(s.ID, p.Settings); err != nil {
		if err == multi.ErrNotHost {
			return stateError("only the host can change match settings")
		}
		return err
	}
	d.broadcastMatchUpdate(m)
	return nil
}

func (d *Dispatcher) handlePartMatch(s *session.Session) error {
	m, err := d.currentMatch(s)
	if err != nil {
		return err
	}
	d.leaveMatch(s, m)
	return nil
}

func (d *Dispatcher) handleMatchReady(s *session.Session, ready bool) error {
	m, err := d.currentMatch(s)
	if err != nil {
		return err
	}
	if !m.SetReady(s.Token, ready) {
		return stateError("you do not occupy a slot in this match")
	}
	d.broadcastMatchUpdate(m)
	return nil
}

func (d *Dispatcher) handleMatchStart(s *session.Session) error {
	m, err := d.currentMatch(s)
	if err != nil {
		return err
	}
	if m.Settings().HostID != s.ID {
		return stateError("only the host can start the match")
	}

	m.SetInProgress(true)
	st := d.matchState(m)
	if c, ok := d.Channels.Get(m.ChannelName()); ok {
		c.Broadcast(packets.MatchStartPkt(st), nil)
	}
	d.Lobby.Broadcast(packets.UpdateMatchPkt(st), nil)
	d.Logger.Infof("match %d started", m.ID)
	return nil
}

func (d *Dispatcher) handleMatchLock(s *session.Session, payload []byte) error {
	m, err := d.currentMatch(s)
	if err != nil {
		return err
	}
	if m.Settings().HostID != s.ID {
		return stateError("only the host can lock slots")
	}
	slot, _, err := wire.DecodeInt32(payload)
	if err != nil {
		return err
	}
	// Occupied slots are left alone; the client resends on a stale view.
	if m.ToggleLock(int(slot)) {
		d.broadcastMatchUpdate(m)
	}
	return nil
}

// currentMatch resolves the session's match association. The association is
// a non-owning reference: the match may have been disposed concurrently, in
// which case the stale association is cleared.
func (d *Dispatcher) currentMatch(s *session.Session) (*multi.Match, error) {
	id := s.MatchID()
	if id == session.NoMatch {
		return nil, stateError("you are not in a match")
	}
	m, ok := d.Matches.Get(uint16(id))
	if !ok {
		s.SetMatchID(session.NoMatch)
		return nil, stateError("the match no longer exists")
	}
	return m, nil
}

// leaveMatch removes s from its match slot and channel, transferring host or
// disposing the match as needed.
func (d *Dispatcher) leaveMatch(s *session.Session, m *multi.Match) {
	m.RemoveOccupant(s.Token)
	s.SetMatchID(session.NoMatch)

	if c, ok := d.Channels.Get(m.ChannelName()); ok {
		c.Part(s)
		s.PartedChannel(c.Name())
	}

	if m.Empty() {
		d.Matches.Remove(m.ID)
		d.Channels.Remove(m.ChannelName())
		d.Lobby.Broadcast(packets.DisposeMatchPkt(m.ID), nil)
		d.Logger.Infof("disposed match %d", m.ID)
		return
	}

	if m.Settings().HostID == s.ID {
		d.transferHost(m)
	}
	d.broadcastMatchUpdate(m)
}

// transferHost promotes the first remaining occupant to host.
func (d *Dispatcher) transferHost(m *multi.Match) {
	for _, slot := range m.Slots() {
		if !slot.Status.Occupied() || slot.Token == "" {
			continue
		}
		next, ok := d.Sessions.Lookup(slot.Token)
		if !ok {
			continue
		}
		m.SetHost(next.ID)
		next.Enqueue(packets.MatchTransferHostPkt())
		d.Logger.Infof("transferred host of match %d to %s", m.ID, next.Username)
		return
	}
}

// matchState snapshots m for serialization, handling any corrupted-slot
// repairs the snapshot performed.
func (d *Dispatcher) matchState(m *multi.Match) multi.State {
	st, repaired := m.State(func(token string) (int32, bool) {
		t, ok := d.Sessions.Lookup(token)
		if !ok {
			return 0, false
		}
		return t.ID, true
	})
	for _, i := range repaired {
		d.Logger.Errorf("match %d slot %d was marked occupied with no resolvable occupant; reset to free", m.ID, i)
		if c, ok := d.Channels.Get(m.ChannelName()); ok {
			c.Broadcast(packets.NotificationPkt("a corrupted slot was reset"), nil)
		}
	}
	return st
}

// broadcastMatchUpdate serializes the full match state and sends it to the
// lobby view and to the match's own channel members.
func (d *Dispatcher) broadcastMatchUpdate(m *multi.Match) {
	pkt := packets.UpdateMatchPkt(d.matchState(m))
	d.Lobby.Broadcast(pkt, nil)
	if c, ok := d.Channels.Get(m.ChannelName()); ok {
		c.Broadcast(pkt, nil)
	}
}
