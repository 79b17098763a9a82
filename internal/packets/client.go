package packets

import (
	"errors"
	"strings"

	"github.com/kisaten/bancho/internal/multi"
	"github.com/kisaten/bancho/internal/wire"
)

// Decoders for the client-to-server payloads the dispatcher understands.
// Each threads a wire.Reader forward field by field; where a later field's
// shape depends on an earlier field's value (the slot id list, the freemod
// mods array) the already-decoded value drives the read.

// ErrEmptyName rejects a match whose name decodes to whitespace.
var ErrEmptyName = errors.New("packets: empty match name")

// DecodeChannelName reads the single-string payload of ChannelJoin and
// ChannelPart.
func DecodeChannelName(payload []byte) (string, error) {
	name, _, err := wire.DecodeString(payload)
	return name, err
}

// DecodeIDList reads the user id list payload of UserStatsRequest and
// UserPanelRequest.
func DecodeIDList(payload []byte) ([]int32, int, error) {
	return wire.DecodeInt32List(payload)
}

// Message is the payload of SendPublicMessage and SendPrivateMessage.
type Message struct {
	// Sender is ignored; the session is authoritative for who is speaking.
	Sender  string
	Content string
	Target  string
}

func DecodeMessage(payload []byte) (Message, error) {
	r := wire.NewReader(payload)
	var msg Message
	var err error
	if msg.Sender, err = r.String(); err != nil {
		return Message{}, err
	}
	if msg.Content, err = r.String(); err != nil {
		return Message{}, err
	}
	if msg.Target, err = r.String(); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// Action is the payload of ChangeAction: the client's new presence state.
type Action struct {
	ID   uint8
	Text string
	MD5  string
	Mods uint32
}

func DecodeAction(payload []byte) (Action, error) {
	r := wire.NewReader(payload)
	var a Action
	var err error
	if a.ID, err = r.Uint8(); err != nil {
		return Action{}, err
	}
	if a.Text, err = r.String(); err != nil {
		return Action{}, err
	}
	if a.MD5, err = r.String(); err != nil {
		return Action{}, err
	}
	if a.Mods, err = r.Uint32(); err != nil {
		return Action{}, err
	}
	return a, nil
}

// MatchJoin is the payload of JoinMatch: the target match and the password
// the client was given.
type MatchJoin struct {
	ID       int32
	Password string
}

func DecodeMatchJoin(payload []byte) (MatchJoin, error) {
	r := wire.NewReader(payload)
	var j MatchJoin
	var err error
	if j.ID, err = r.Int32(); err != nil {
		return MatchJoin{}, err
	}
	if j.Password, err = r.String(); err != nil {
		return MatchJoin{}, err
	}
	return j, nil
}

// MatchSettingsPayload is the decoded CreateMatch / MatchChangeSettings
// payload. Slot arrays are carried alongside the settings block; the server
// is authoritative for actual slot state and only consults the settings
// fields.
type MatchSettingsPayload struct {
	ID       uint16
	Settings multi.Settings

	SlotStatuses [multi.SlotCount]multi.SlotStatus
	SlotTeams    [multi.SlotCount]multi.Team
	SlotIDs      [multi.SlotCount]int32
	SlotMods     [multi.SlotCount]uint32
}

func DecodeMatchSettings(payload []byte) (MatchSettingsPayload, error) {
	r := wire.NewReader(payload)
	var p MatchSettingsPayload
	var err error

	if p.ID, err = r.Uint16(); err != nil {
		return p, err
	}
	if p.Settings.InProgress, err = r.Bool(); err != nil {
		return p, err
	}
	if _, err = r.Uint8(); err != nil { // match type, unused
		return p, err
	}
	if p.Settings.Mods, err = r.Uint32(); err != nil {
		return p, err
	}
	if p.Settings.Name, err = r.String(); err != nil {
		return p, err
	}
	p.Settings.Name = strings.TrimSpace(p.Settings.Name)
	if p.Settings.Name == "" {
		return p, ErrEmptyName
	}
	if p.Settings.Password, err = r.String(); err != nil {
		return p, err
	}
	if p.Settings.BeatmapName, err = r.String(); err != nil {
		return p, err
	}
	if p.Settings.BeatmapID, err = r.Uint32(); err != nil {
		return p, err
	}
	if p.Settings.BeatmapMD5, err = r.String(); err != nil {
		return p, err
	}

	statuses, err := r.Bytes(multi.SlotCount)
	if err != nil {
		return p, err
	}
	for i, b := range statuses {
		p.SlotStatuses[i] = multi.SlotStatus(b)
	}
	teams, err := r.Bytes(multi.SlotCount)
	if err != nil {
		return p, err
	}
	for i, b := range teams {
		p.SlotTeams[i] = multi.Team(b)
	}

	// One id per slot the status bitmap marks Occupied; the other entries
	// are simply absent from the wire.
	for i := range p.SlotIDs {
		p.SlotIDs[i] = -1
		if !p.SlotStatuses[i].Occupied() {
			continue
		}
		if p.SlotIDs[i], err = r.Int32(); err != nil {
			return p, err
		}
	}

	if p.Settings.HostID, err = r.Int32(); err != nil {
		return p, err
	}
	if p.Settings.GameMode, err = r.Uint8(); err != nil {
		return p, err
	}
	if p.Settings.ScoringType, err = r.Uint8(); err != nil {
		return p, err
	}
	if p.Settings.TeamType, err = r.Uint8(); err != nil {
		return p, err
	}
	if p.Settings.Freemod, err = r.Bool(); err != nil {
		return p, err
	}
	if p.Settings.Freemod {
		for i := range p.SlotMods {
			if p.SlotMods[i], err = r.Uint32(); err != nil {
				return p, err
			}
		}
	}
	if p.Settings.Seed, err = r.Int32(); err != nil {
		return p, err
	}
	return p, nil
}
