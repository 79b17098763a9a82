package packets

import (
	"github.com/kisaten/bancho/internal/channel"
	"github.com/kisaten/bancho/internal/multi"
	"github.com/kisaten/bancho/internal/session"
	"github.com/kisaten/bancho/internal/wire"
)

// Builders for every server-to-client packet. Each returns a complete
// envelope ready to enqueue.

func NotificationPkt(text string) []byte {
	return Write(Notification, wire.AppendString(nil, text))
}

func AnnouncePkt(text string) []byte {
	return Write(Announce, wire.AppendString(nil, text))
}

func SilenceEndPkt(seconds uint32) []byte {
	return Write(SilenceEnd, wire.AppendUint32(nil, seconds))
}

func ProtocolVersionPkt(version uint32) []byte {
	return Write(ProtocolVersion, wire.AppendUint32(nil, version))
}

func UserIDPkt(id int32) []byte {
	return Write(UserID, wire.AppendInt32(nil, id))
}

// LoginFailedPkt carries the sentinel user id that tells the client
// authentication failed.
func LoginFailedPkt() []byte {
	return UserIDPkt(-1)
}

func UserRankPkt() []byte {
	// Fixed supporter/GMT flag value expected by the client.
	return Write(SupporterGMT, wire.AppendUint32(nil, 38))
}

func FriendsListPkt(ids []int32) []byte {
	return Write(FriendsList, wire.AppendInt32List(nil, ids))
}

func OnlineUsersPkt(ids []int32) []byte {
	return Write(UserPresenceBundle, wire.AppendInt32List(nil, ids))
}

func UserLogoutPkt(id int32) []byte {
	payload := wire.AppendInt32(nil, id)
	payload = wire.AppendUint8(payload, 0)
	return Write(UserLogout, payload)
}

func UserPanelPkt(s *session.Session) []byte {
	payload := wire.AppendInt32(nil, s.ID)
	payload = wire.AppendString(payload, s.Username)
	payload = wire.AppendInt16(payload, 0)  // UTC offset
	payload = wire.AppendUint8(payload, 16) // country
	payload = wire.AppendFloat32(payload, 0)
	payload = wire.AppendFloat32(payload, 0)
	payload = wire.AppendUint32(payload, 1) // rank
	return Write(UserPanel, payload)
}

func UserStatsPkt(s *session.Session) []byte {
	stats := s.Stats()
	payload := wire.AppendInt32(nil, s.ID)
	payload = wire.AppendUint8(payload, stats.Action)
	payload = wire.AppendString(payload, stats.ActionText)
	payload = wire.AppendString(payload, stats.ActionMD5)
	payload = wire.AppendUint32(payload, stats.Mods)
	payload = wire.AppendUint8(payload, stats.GameMode)
	payload = wire.AppendUint32(payload, stats.BeatmapID)
	payload = wire.AppendUint64(payload, stats.RankedScore)
	payload = wire.AppendFloat32(payload, stats.Accuracy)
	payload = wire.AppendUint32(payload, stats.Playcount)
	payload = wire.AppendUint64(payload, stats.TotalScore)
	payload = wire.AppendUint32(payload, stats.Rank)
	payload = wire.AppendUint16(payload, stats.PP)
	return Write(UserStats, payload)
}

func ChannelInfoEndPkt() []byte {
	return Write(ChannelInfoEnd, wire.AppendUint32(nil, 0))
}

func ChannelInfoPkt(c *channel.Channel) []byte {
	payload := wire.AppendString(nil, c.DisplayName())
	payload = wire.AppendString(payload, c.Description())
	payload = wire.AppendUint16(payload, uint16(c.Len()))
	return Write(ChannelInfo, payload)
}

func ChannelJoinSuccessPkt(c *channel.Channel) []byte {
	return Write(ChannelJoinSuccess, wire.AppendString(nil, c.DisplayName()))
}

func ChannelKickedPkt(c *channel.Channel) []byte {
	return Write(ChannelKicked, wire.AppendString(nil, c.DisplayName()))
}

// MessagePkt carries a chat message from a session to a target (a channel's
// display name or a username).
func MessagePkt(from *session.Session, target, content string) []byte {
	payload := wire.AppendString(nil, from.Username)
	payload = wire.AppendString(payload, content)
	payload = wire.AppendString(payload, target)
	payload = wire.AppendInt32(payload, from.ID)
	return Write(SendMessage, payload)
}

func MatchJoinFailPkt() []byte {
	return Write(MatchJoinFail, nil)
}

func MatchTransferHostPkt() []byte {
	return Write(MatchTransferHostOut, nil)
}

func DisposeMatchPkt(id uint16) []byte {
	return Write(DisposeMatch, wire.AppendUint32(nil, uint32(id)))
}

// NewMatchPkt advertises a match to the lobby view.
func NewMatchPkt(st multi.State) []byte {
	return Write(NewMatch, matchInfo(st))
}

// MatchJoinSuccessPkt tells a client it is now inside the match.
func MatchJoinSuccessPkt(st multi.State) []byte {
	return Write(MatchJoinSuccess, matchInfo(st))
}

// UpdateMatchPkt carries the full current match state.
func UpdateMatchPkt(st multi.State) []byte {
	return Write(UpdateMatch, matchInfo(st))
}

// MatchStartPkt tells match members the game is starting.
func MatchStartPkt(st multi.State) []byte {
	return Write(MatchStart, matchInfo(st))
}

// matchInfo serializes the full match state. The slot id sub-array is
// variable length: one entry per Occupied slot, its shape implied by the
// status array the client parses first.
func matchInfo(st multi.State) []byte {
	s := st.Settings
	payload := wire.AppendUint16(nil, st.ID)
	payload = wire.AppendBool(payload, s.InProgress)
	payload = wire.AppendUint8(payload, 0) // match type
	payload = wire.AppendUint32(payload, s.Mods)
	payload = wire.AppendString(payload, s.Name)
	payload = wire.AppendString(payload, s.Password)
	payload = wire.AppendString(payload, s.BeatmapName)
	payload = wire.AppendUint32(payload, s.BeatmapID)
	payload = wire.AppendString(payload, s.BeatmapMD5)
	payload = append(payload, st.SlotStatuses[:]...)
	payload = append(payload, st.SlotTeams[:]...)
	for _, id := range st.SlotIDs {
		payload = wire.AppendInt32(payload, id)
	}
	payload = wire.AppendInt32(payload, s.HostID)
	payload = wire.AppendUint8(payload, s.GameMode)
	payload = wire.AppendUint8(payload, s.ScoringType)
	payload = wire.AppendUint8(payload, s.TeamType)
	payload = wire.AppendBool(payload, s.Freemod)
	for _, mods := range st.SlotMods {
		payload = wire.AppendUint32(payload, mods)
	}
	payload = wire.AppendInt32(payload, s.Seed)
	return payload
}
