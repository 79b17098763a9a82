package packets

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kisaten/bancho/internal/multi"
	"github.com/kisaten/bancho/internal/wire"
)

func TestDecodeMessage(t *testing.T) {
	payload := wire.AppendString(nil, "flandre")
	payload = wire.AppendString(payload, "hello world")
	payload = wire.AppendString(payload, "#osu")

	got, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("DecodeMessage() error = %v", err)
	}
	want := Message{Sender: "flandre", Content: "hello world", Target: "#osu"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("message mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeMessageTruncated(t *testing.T) {
	payload := wire.AppendString(nil, "flandre")
	payload = wire.AppendString(payload, "hello")
	// Target string missing entirely.
	if _, err := DecodeMessage(payload); !errors.Is(err, wire.ErrTruncated) {
		t.Errorf("DecodeMessage() error = %v, want %v", err, wire.ErrTruncated)
	}
}

func TestDecodeAction(t *testing.T) {
	payload := wire.AppendUint8(nil, 2)
	payload = wire.AppendString(payload, "playing something")
	payload = wire.AppendString(payload, "d41d8cd98f00b204e9800998ecf8427e")
	payload = wire.AppendUint32(payload, 64)

	got, err := DecodeAction(payload)
	if err != nil {
		t.Fatalf("DecodeAction() error = %v", err)
	}
	want := Action{
		ID:   2,
		Text: "playing something",
		MD5:  "d41d8cd98f00b204e9800998ecf8427e",
		Mods: 64,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("action mismatch (-want +got):\n%s", diff)
	}
}

// buildMatchSettings encodes a MatchChangeSettings payload the way the
// client does, with the slot id list driven by the occupancy mask and the
// per-slot mods array present only under freemod.
func buildMatchSettings(p MatchSettingsPayload) []byte {
	s := p.Settings
	out := wire.AppendUint16(nil, p.ID)
	out = wire.AppendBool(out, s.InProgress)
	out = wire.AppendUint8(out, 0)
	out = wire.AppendUint32(out, s.Mods)
	out = wire.AppendString(out, s.Name)
	out = wire.AppendString(out, s.Password)
	out = wire.AppendString(out, s.BeatmapName)
	out = wire.AppendUint32(out, s.BeatmapID)
	out = wire.AppendString(out, s.BeatmapMD5)
	for _, st := range p.SlotStatuses {
		out = wire.AppendUint8(out, uint8(st))
	}
	for _, tm := range p.SlotTeams {
		out = wire.AppendUint8(out, uint8(tm))
	}
	for i, st := range p.SlotStatuses {
		if st.Occupied() {
			out = wire.AppendInt32(out, p.SlotIDs[i])
		}
	}
	out = wire.AppendInt32(out, s.HostID)
	out = wire.AppendUint8(out, s.GameMode)
	out = wire.AppendUint8(out, s.ScoringType)
	out = wire.AppendUint8(out, s.TeamType)
	out = wire.AppendBool(out, s.Freemod)
	if s.Freemod {
		for _, mods := range p.SlotMods {
			out = wire.AppendUint32(out, mods)
		}
	}
	return wire.AppendInt32(out, s.Seed)
}

func TestDecodeMatchSettings(t *testing.T) {
	want := MatchSettingsPayload{
		ID: 12,
		Settings: multi.Settings{
			Name:        "4dm ffa",
			Password:    "",
			Mods:        8,
			BeatmapName: "some map",
			BeatmapID:   991,
			BeatmapMD5:  "abc123",
			HostID:      1001,
			GameMode:    3,
			ScoringType: multi.ScoringScoreV2,
			TeamType:    multi.TeamTypeHeadToHead,
			Seed:        42,
		},
	}
	for i := range want.SlotStatuses {
		want.SlotStatuses[i] = multi.SlotFree
		want.SlotIDs[i] = -1
	}
	want.SlotStatuses[0] = multi.SlotNotReady
	want.SlotIDs[0] = 1001
	want.SlotStatuses[5] = multi.SlotReady
	want.SlotIDs[5] = 1002
	want.SlotStatuses[6] = multi.SlotLocked
	want.SlotTeams[5] = multi.TeamRed

	got, err := DecodeMatchSettings(buildMatchSettings(want))
	if err != nil {
		t.Fatalf("DecodeMatchSettings() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeMatchSettingsFreemod(t *testing.T) {
	want := MatchSettingsPayload{
		ID: 3,
		Settings: multi.Settings{
			Name:    "freemod lobby",
			HostID:  7,
			Freemod: true,
			Seed:    -1,
		},
	}
	for i := range want.SlotStatuses {
		want.SlotStatuses[i] = multi.SlotFree
		want.SlotIDs[i] = -1
	}
	want.SlotStatuses[0] = multi.SlotNotReady
	want.SlotIDs[0] = 7
	want.SlotMods[0] = 16
	want.SlotMods[9] = 1

	got, err := DecodeMatchSettings(buildMatchSettings(want))
	if err != nil {
		t.Fatalf("DecodeMatchSettings() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeMatchSettingsRejectsBlankName(t *testing.T) {
	p := MatchSettingsPayload{Settings: multi.Settings{Name: "   "}}
	for i := range p.SlotStatuses {
		p.SlotStatuses[i] = multi.SlotFree
	}
	// The name check fires before the slot arrays are ever read, so the
	// truncated tail past it doesn't matter here.
	if _, err := DecodeMatchSettings(buildMatchSettings(p)); !errors.Is(err, ErrEmptyName) {
		t.Errorf("DecodeMatchSettings() error = %v, want %v", err, ErrEmptyName)
	}
}

func TestDecodeMatchSettingsTruncatedSlotIDs(t *testing.T) {
	p := MatchSettingsPayload{Settings: multi.Settings{Name: "x", HostID: 1}}
	for i := range p.SlotStatuses {
		p.SlotStatuses[i] = multi.SlotFree
	}
	p.SlotStatuses[2] = multi.SlotNotReady
	p.SlotIDs[2] = 9

	full := buildMatchSettings(p)
	// Cut the buffer in the middle of the occupied slot's id: 14 bytes
	// removes the seed, the four ruleset bytes, the host id, and half of
	// the lone slot id.
	truncated := full[:len(full)-14]
	if _, err := DecodeMatchSettings(truncated); !errors.Is(err, wire.ErrTruncated) {
		t.Errorf("DecodeMatchSettings() error = %v, want %v", err, wire.ErrTruncated)
	}
}
