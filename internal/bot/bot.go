// Package bot implements the chat command layer: messages starting with '!'
// addressed to the server bot are parsed here and answered purely with
// protocol packets. It sits above the core; nothing in the core depends on it.
package bot

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kisaten/bancho/internal/channel"
	"github.com/kisaten/bancho/internal/packets"
	"github.com/kisaten/bancho/internal/session"
)

// Handler runs bot commands. Kick is injected by the server so the bot can
// reuse the regular logout path without depending on the dispatcher.
type Handler struct {
	Sessions *session.Registry
	Channels *channel.Registry
	Bot      *session.Session
	Kick     func(token string)
	Logger   *logrus.Logger
}

// Command parses and executes one command line (without the leading '!').
// The returned error is user-facing and ends up in a notification packet.
func (h *Handler) Command(sender *session.Session, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return fmt.Errorf("empty command, try !help")
	}

	switch fields[0] {
	case "help":
		sender.Enqueue(packets.MessagePkt(h.Bot, sender.Username, "commands: !help, !echo <text>, !announce <channel> <text>, !kick <user> [reason]"))
		return nil
	case "echo":
		sender.Enqueue(packets.MessagePkt(h.Bot, sender.Username, strings.Join(fields[1:], " ")))
		return nil
	case "announce":
		if len(fields) < 3 {
			return fmt.Errorf("usage: !announce <channel> <text>")
		}
		return h.Announce(fields[1], strings.Join(fields[2:], " "))
	case "kick":
		return h.kick(sender, fields[1:])
	default:
		return fmt.Errorf("no such command %q, try !help", fields[0])
	}
}

func (h *Handler) kick(sender *session.Session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: !kick <user> [reason]")
	}
	target, ok := h.Sessions.LookupUsername(args[0])
	if !ok {
		return fmt.Errorf("%s is not online", args[0])
	}
	if target.IsBot() {
		return fmt.Errorf("nice try")
	}

	msg := fmt.Sprintf("You have been kicked by %s!", sender.Username)
	if reason := strings.Join(args[1:], " "); reason != "" {
		msg += fmt.Sprintf(" Reason: %q", reason)
	}
	target.Enqueue(packets.NotificationPkt(msg))

	h.Logger.Infof("%s kicked %s", sender.Username, target.Username)
	h.Kick(target.Token)
	return nil
}

// Announce sends a banner announcement to every member of the named channel.
func (h *Handler) Announce(channelName, content string) error {
	c, ok := h.Channels.Get(channelName)
	if !ok {
		return fmt.Errorf("no channel named %s", channelName)
	}
	c.Broadcast(packets.AnnouncePkt(content), nil)
	return nil
}
