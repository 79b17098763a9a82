package multi

// State is a consistent point-in-time copy of everything a match info packet
// serializes. Taking it under one read lock prevents torn views of a
// concurrent settings change.
type State struct {
	ID       uint16
	Settings Settings

	// SlotStatuses and SlotTeams carry one byte per slot in slot order.
	SlotStatuses [SlotCount]byte
	SlotTeams    [SlotCount]byte

	// SlotIDs carries one user id per Occupied slot, in slot order. Its
	// length is implied by the occupancy mask in SlotStatuses, which the
	// client parses first.
	SlotIDs []int32

	// SlotMods carries one value per slot under freemod, and is empty
	// otherwise.
	SlotMods []uint32
}

// State captures the match for serialization. Occupant tokens are resolved to
// user ids through lookup (the session registry); an Occupied slot whose
// occupant cannot be resolved is a consistency violation, which is recovered
// by resetting the slot to Free. The indexes of any repaired slots are
// returned so the caller can log and notify the match channel.
func (m *Match) State(lookup func(token string) (int32, bool)) (State, []int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var repaired []int
	st := State{ID: m.ID, Settings: m.settings}

	for i := range m.slots {
		slot := &m.slots[i]
		if slot.Status.Occupied() {
			id, ok := int32(0), false
			if slot.Token != "" {
				id, ok = lookup(slot.Token)
			}
			if !ok {
				*slot = Slot{Status: SlotFree}
				repaired = append(repaired, i)
			} else {
				st.SlotIDs = append(st.SlotIDs, id)
			}
		}
		st.SlotStatuses[i] = byte(slot.Status)
		st.SlotTeams[i] = byte(slot.Team)
	}

	if st.Settings.Freemod {
		st.SlotMods = make([]uint32, SlotCount)
		for i := range m.slots {
			st.SlotMods[i] = m.slots[i].Mods
		}
	}
	return st, repaired
}
