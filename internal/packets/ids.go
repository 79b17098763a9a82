// Package packets defines the packet identifier catalogue, the 7-byte
// envelope framing, and the encoders/decoders for the packet payloads the
// server understands.
package packets

// ID identifies a packet type within the session protocol. The same number
// space covers client-to-server and server-to-client packets.
type ID uint16

const (
	ChangeAction            ID = 0
	SendPublicMessage       ID = 1
	Logout                  ID = 2
	RequestStatusUpdate     ID = 3
	Pong                    ID = 4
	UserID                  ID = 5
	SendMessage             ID = 7
	IRCUsernameChange       ID = 9
	IRCQuit                 ID = 10
	UserStats               ID = 11
	UserLogout              ID = 12
	SpectatorJoined         ID = 13
	SpectatorLeft           ID = 14
	SpectateFramesOut       ID = 15
	StartSpectating         ID = 16
	StopSpectating          ID = 17
	SpectateFrames          ID = 18
	CantSpectate            ID = 21
	SpectatorCantSpectate   ID = 22
	GetAttention            ID = 23
	Notification            ID = 24
	SendPrivateMessage      ID = 25
	UpdateMatch             ID = 26
	NewMatch                ID = 27
	DisposeMatch            ID = 28
	PartLobby               ID = 29
	JoinLobby               ID = 30
	CreateMatch             ID = 31
	JoinMatch               ID = 32
	PartMatch               ID = 33
	MatchJoinSuccess        ID = 36
	MatchJoinFail           ID = 37
	MatchReady              ID = 39
	MatchLock               ID = 40
	MatchChangeSettings     ID = 41
	FellowSpectatorJoined   ID = 42
	FellowSpectatorLeft     ID = 43
	MatchStartRequest       ID = 44
	AllPlayersLoaded        ID = 45
	MatchStart              ID = 46
	MatchScoreUpdateIn      ID = 47
	MatchScoreUpdateOut     ID = 48
	MatchCompleteIn         ID = 49
	MatchTransferHostOut    ID = 50
	MatchChangeMods         ID = 51
	MatchLoadComplete       ID = 52
	MatchAllPlayersLoaded   ID = 53
	MatchNoBeatmap          ID = 54
	MatchNotReady           ID = 55
	MatchFailed             ID = 56
	MatchPlayerFailed       ID = 57
	MatchComplete           ID = 58
	MatchHasBeatmap         ID = 59
	MatchSkipRequest        ID = 60
	MatchSkip               ID = 61
	ChannelJoin             ID = 63
	ChannelJoinSuccess      ID = 64
	ChannelInfo             ID = 65
	ChannelKicked           ID = 66
	MatchTransferHostIn     ID = 70
	SupporterGMT            ID = 71
	FriendsList             ID = 72
	FriendAdd               ID = 73
	FriendRemove            ID = 74
	ProtocolVersion         ID = 75
	MainMenuIcon            ID = 76
	MatchChangeTeam         ID = 77
	ChannelPart             ID = 78
	ReceiveUpdates          ID = 79
	MatchPlayerSkipped      ID = 81
	SetAwayMessage          ID = 82
	UserPanel               ID = 83
	UserStatsRequest        ID = 85
	Restart                 ID = 86
	InviteOut               ID = 87
	InviteIn                ID = 88
	ChannelInfoEnd          ID = 89
	MatchChangePasswordIn   ID = 90
	MatchChangePasswordOut  ID = 91
	SilenceEnd              ID = 92
	SpecialMatchInfoRequest ID = 93
	UserSilenced            ID = 94
	UserPresenceBundle      ID = 96
	UserPanelRequest        ID = 97
	AccountRestricted       ID = 104
	Announce                ID = 105
	MatchAbort              ID = 106
	SwitchTourneyServer     ID = 107
	JoinMatchChannel        ID = 108
	LeaveMatchChannel       ID = 109
)
