// Package bancho ties the core registries together behind the two
// transport-facing entry points: Login, which trades credentials for a
// session token, and Dispatch, which processes a packet batch for an
// existing session.
package bancho

import (
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kisaten/bancho/internal/bot"
	"github.com/kisaten/bancho/internal/channel"
	"github.com/kisaten/bancho/internal/core"
	"github.com/kisaten/bancho/internal/core/data"
	"github.com/kisaten/bancho/internal/dispatch"
	"github.com/kisaten/bancho/internal/multi"
	"github.com/kisaten/bancho/internal/packets"
	"github.com/kisaten/bancho/internal/session"
)

// ProtocolVersion is advertised to clients at login and in every response.
const ProtocolVersion = 19

// NoSessionToken is the sentinel token returned when a request produced no
// valid session.
const NoSessionToken = "0"

// BotID is the reserved user id for the server bot.
const BotID = 3

// Authenticator is the credential-check collaborator.
type Authenticator interface {
	VerifyAccount(username, password string) (*data.Account, error)
}

// Server is the top-level server state, constructed once at startup and
// shared by every concurrently-handled request.
type Server struct {
	config *core.Config
	logger *logrus.Logger
	auth   Authenticator

	sessions   *session.Registry
	channels   *channel.Registry
	matches    *multi.Registry
	dispatcher *dispatch.Dispatcher
	bot        *session.Session
}

func NewServer(cfg *core.Config, logger *logrus.Logger, auth Authenticator) *Server {
	s := &Server{
		config:   cfg,
		logger:   logger,
		auth:     auth,
		sessions: session.NewRegistry(logger),
		channels: channel.NewRegistry(),
		matches:  multi.NewRegistry(),
	}

	osu := s.channels.Create("#osu", "main chatter", true)
	lobby := s.channels.Create("#lobby", "multiplayer matchmaking", true)

	s.bot = s.sessions.AddBot(BotID, cfg.Bancho.BotName)
	for _, c := range []*channel.Channel{osu, lobby} {
		c.Join(s.bot)
		s.bot.JoinedChannel(c.Name())
	}

	s.dispatcher = &dispatch.Dispatcher{
		Sessions: s.sessions,
		Channels: s.channels,
		Matches:  s.matches,
		Lobby:    dispatch.NewLobby(),
		Logger:   logger,
	}
	s.dispatcher.Bot = &bot.Handler{
		Sessions: s.sessions,
		Channels: s.channels,
		Bot:      s.bot,
		Kick:     s.dispatcher.Logout,
		Logger:   logger,
	}
	return s
}

// Login authenticates the credentials in body (username line, password line)
// and registers a session. It returns the session token and the login
// response bytes; on failure the token is NoSessionToken and the response is
// the failure payload.
func (s *Server) Login(body []byte) (string, []byte) {
	username, password, ok := splitCredentials(body)
	if !ok {
		return NoSessionToken, loginFailure("bad request")
	}

	account, err := s.auth.VerifyAccount(username, password)
	if err != nil {
		s.logger.Infof("failed login for %s: %v", username, err)
		return NoSessionToken, loginFailure(cases.Title(language.English).String(err.Error()))
	}

	sess, err := s.sessions.Login(int32(account.ID), account.Username, s.config.PingTimeout(), s.dispatcher.Logout)
	if err != nil {
		s.logger.Infof("rejected login for %s: %v", username, err)
		return NoSessionToken, loginFailure("you are already logged in")
	}

	s.logger.Infof("%s logged in (%s)", sess.Username, sess.Token)
	return sess.Token, s.loginResponse(sess)
}

// Dispatch processes a packet batch for the session owning token and returns
// everything queued for that session since its last exchange.
func (s *Server) Dispatch(token string, body []byte) (string, []byte) {
	sess, ok := s.sessions.Lookup(token)
	if !ok {
		return NoSessionToken, loginFailure("invalid session token")
	}

	s.dispatcher.Handle(sess, body)
	return sess.Token, sess.Drain()
}

// loginResponse assembles the fixed packet sequence a freshly authenticated
// client expects, in order: silence end, protocol version, own id and rank,
// friend list, own panel and stats, the online user id bundle, every
// session's panel, the channel list end marker, and every public channel's
// info.
func (s *Server) loginResponse(sess *session.Session) []byte {
	var out []byte
	out = append(out, packets.SilenceEndPkt(0)...)
	out = append(out, packets.ProtocolVersionPkt(ProtocolVersion)...)
	out = append(out, packets.UserIDPkt(sess.ID)...)
	out = append(out, packets.UserRankPkt()...)
	out = append(out, packets.FriendsListPkt(nil)...)
	out = append(out, packets.UserPanelPkt(sess)...)
	out = append(out, packets.UserStatsPkt(sess)...)
	out = append(out, packets.OnlineUsersPkt(s.sessions.IDs())...)
	for _, other := range s.sessions.Sessions() {
		out = append(out, packets.UserPanelPkt(other)...)
	}
	out = append(out, packets.ChannelInfoEndPkt()...)
	for _, c := range s.channels.Public() {
		out = append(out, packets.ChannelInfoPkt(c)...)
	}
	return out
}

// loginFailure is the payload shape for any failed login: the sentinel user
// id followed by a human-readable notification.
func loginFailure(reason string) []byte {
	out := packets.LoginFailedPkt()
	if reason != "" {
		out = append(out, packets.NotificationPkt(reason)...)
	}
	return out
}

func splitCredentials(body []byte) (username, password string, ok bool) {
	lines := strings.SplitN(string(body), "\n", 3)
	if len(lines) < 2 {
		return "", "", false
	}
	return strings.TrimSpace(lines[0]), strings.TrimRight(lines[1], "\r"), true
}
