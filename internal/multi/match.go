// Package multi implements the multiplayer match registry and the 16-slot
// state machine.
package multi

import (
	"sync"

	"github.com/kisaten/bancho/internal/session"
)

// SlotCount is fixed by the protocol: every match has exactly 16 slots.
const SlotCount = 16

// SlotStatus values are wire bytes, not an enumeration: Occupied is the
// bitmask union the client uses, and slot-iteration code must test with the
// mask rather than compare against a single value.
type SlotStatus uint8

const (
	SlotFree        SlotStatus = 1
	SlotLocked      SlotStatus = 2
	SlotNotReady    SlotStatus = 4
	SlotReady       SlotStatus = 8
	SlotNoMap       SlotStatus = 16
	SlotPlaying     SlotStatus = 32
	SlotPlayingQuit SlotStatus = 128

	// SlotOccupied is the historical occupancy mask. The value is fixed by
	// the wire protocol.
	SlotOccupied SlotStatus = 124
)

// Occupied reports whether the status falls inside the occupancy mask.
func (s SlotStatus) Occupied() bool {
	return s&SlotOccupied != 0
}

// Team assignments within a team-based match.
type Team uint8

const (
	TeamNone Team = iota
	TeamBlue
	TeamRed
)

// Scoring types.
const (
	ScoringScore uint8 = iota
	ScoringAccuracy
	ScoringCombo
	ScoringScoreV2
)

// Team types.
const (
	TeamTypeHeadToHead uint8 = iota
	TeamTypeTagCoop
	TeamTypeTeamVs
	TeamTypeTagTeamVs
)

// Slot is one seat in a match. Token is the occupant session's token, empty
// iff the slot's status is Free or Locked. Mods is meaningful only when the
// match has freemod set.
type Slot struct {
	Status SlotStatus
	Team   Team
	Token  string
	Mods   uint32
	Skip   bool
}

// Settings is the atomically-related group of match configuration fields.
// A settings change is applied as one update; readers never observe a mix of
// old and new values.
type Settings struct {
	Name       string
	Password   string
	InProgress bool
	Mods       uint32

	BeatmapName string
	BeatmapID   uint32
	BeatmapMD5  string

	HostID      int32
	GameMode    uint8
	ScoringType uint8
	TeamType    uint8
	Freemod     bool
	Seed        int32
}

// Match is one multiplayer lobby instance. One lock guards the settings
// block and the slot array together so that cross-field policies (a map or
// ruleset change demoting every Ready slot) are a single critical section.
type Match struct {
	ID uint16

	mu       sync.RWMutex
	settings Settings
	slots    [SlotCount]Slot
}

// ChannelName returns the internal name of the match's paired chat channel.
func (m *Match) ChannelName() string {
	return matchChannelName(m.ID)
}

// Settings returns a copy of the current settings block.
func (m *Match) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// Slots returns a copy of the slot array.
func (m *Match) Slots() [SlotCount]Slot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.slots
}

// SetHost reassigns the match host. Used by the host-transfer flow when the
// current host leaves.
func (m *Match) SetHost(id int32) {
	m.mu.Lock()
	m.settings.HostID = id
	m.mu.Unlock()
}

// ChangeSettings applies a full settings update requested by requesterID. It
// fails with ErrNotHost unless the requester is the current host; the match
// is left untouched on failure.
//
// If the mods or beatmap checksum changed relative to the previous settings,
// every Ready slot is demoted to NotReady in the same critical section: a
// ruleset or map change invalidates prior readiness.
func (m *Match) ChangeSettings(requesterID int32, updated Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.settings.HostID != requesterID {
		return ErrNotHost
	}

	invalidateReady := updated.Mods != m.settings.Mods || updated.BeatmapMD5 != m.settings.BeatmapMD5

	// Host reassignment goes through its own transfer flow, not through a
	// settings update.
	updated.HostID = m.settings.HostID
	m.settings = updated

	if invalidateReady {
		for i := range m.slots {
			if m.slots[i].Status == SlotReady {
				m.slots[i].Status = SlotNotReady
			}
		}
	}
	return nil
}

// SetInProgress flips the in-progress flag and propagates Playing status to
// every Ready slot on start.
func (m *Match) SetInProgress(inProgress bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.InProgress = inProgress
	if inProgress {
		for i := range m.slots {
			if m.slots[i].Status == SlotReady {
				m.slots[i].Status = SlotPlaying
			}
		}
	}
}

// SetReady toggles the occupant's slot between Ready and NotReady.
func (m *Match) SetReady(token string, ready bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.slots {
		if m.slots[i].Token != token || !m.slots[i].Status.Occupied() {
			continue
		}
		if ready {
			m.slots[i].Status = SlotReady
		} else {
			m.slots[i].Status = SlotNotReady
		}
		return true
	}
	return false
}

// ToggleLock flips slot i between Free and Locked. Occupied slots are left
// alone.
func (m *Match) ToggleLock(i int) bool {
	if i < 0 || i >= SlotCount {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.slots[i].Status {
	case SlotFree:
		m.slots[i].Status = SlotLocked
	case SlotLocked:
		m.slots[i].Status = SlotFree
	default:
		return false
	}
	return true
}

// Occupy seats s in the first Free slot as NotReady, returning the slot index
// or false when the match is full.
func (m *Match) Occupy(s *session.Session) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.slots {
		if m.slots[i].Status != SlotFree {
			continue
		}
		m.slots[i] = Slot{Status: SlotNotReady, Token: s.Token}
		return i, true
	}
	return 0, false
}

// RemoveOccupant clears the slot occupied by token, reporting whether a slot
// was cleared. In-progress occupants transition through PlayingQuit semantics
// on the wire, but the server-side slot is reset either way.
func (m *Match) RemoveOccupant(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.slots {
		if m.slots[i].Token == token {
			m.slots[i] = Slot{Status: SlotFree}
			return true
		}
	}
	return false
}

// Empty reports whether no slot is occupied.
func (m *Match) Empty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.slots {
		if m.slots[i].Status.Occupied() {
			return false
		}
	}
	return true
}
