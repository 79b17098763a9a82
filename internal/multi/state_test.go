package multi

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kisaten/bancho/internal/session"
)

func registryLookup(r *session.Registry) func(token string) (int32, bool) {
	return func(token string) (int32, bool) {
		s, ok := r.Lookup(token)
		if !ok {
			return 0, false
		}
		return s.ID, true
	}
}

func TestStateSlotIDsInSlotOrder(t *testing.T) {
	sessions := session.NewRegistry(nil)
	host, _ := sessions.Login(1001, "host", 0, nil)
	guestA, _ := sessions.Login(1002, "a", 0, nil)
	guestB, _ := sessions.Login(1003, "b", 0, nil)

	m := NewRegistry().Create(Settings{Name: "lobby"}, host)
	m.Occupy(guestA)
	m.Occupy(guestB)
	// Free the middle slot so the id list skips it.
	m.RemoveOccupant(guestA.Token)

	st, repaired := m.State(registryLookup(sessions))
	if len(repaired) != 0 {
		t.Fatalf("repaired = %v, want none", repaired)
	}
	if diff := cmp.Diff([]int32{1001, 1003}, st.SlotIDs); diff != "" {
		t.Errorf("SlotIDs mismatch (-want +got):\n%s", diff)
	}
	if st.SlotMods != nil {
		t.Errorf("SlotMods = %v, want empty outside freemod", st.SlotMods)
	}
}

func TestStateRepairsUnresolvableSlot(t *testing.T) {
	sessions := session.NewRegistry(nil)
	host, _ := sessions.Login(1001, "host", 0, nil)
	ghost, _ := sessions.Login(1002, "ghost", 0, nil)

	m := NewRegistry().Create(Settings{Name: "lobby"}, host)
	m.Occupy(ghost)
	// The occupant vanished from the registry without leaving the match.
	sessions.Remove(ghost.Token)

	st, repaired := m.State(registryLookup(sessions))
	if diff := cmp.Diff([]int{1}, repaired); diff != "" {
		t.Fatalf("repaired mismatch (-want +got):\n%s", diff)
	}
	if st.SlotStatuses[1] != byte(SlotFree) {
		t.Errorf("repaired slot status = %d, want %d", st.SlotStatuses[1], SlotFree)
	}
	if diff := cmp.Diff([]int32{1001}, st.SlotIDs); diff != "" {
		t.Errorf("SlotIDs mismatch (-want +got):\n%s", diff)
	}

	// The repair is durable, not just cosmetic in the snapshot.
	if got := m.Slots()[1]; got.Status != SlotFree || got.Token != "" {
		t.Errorf("slot 1 after repair = %+v, want cleared", got)
	}
}

func TestStateFreemodMods(t *testing.T) {
	sessions := session.NewRegistry(nil)
	host, _ := sessions.Login(1001, "host", 0, nil)

	m := NewRegistry().Create(Settings{Name: "fm", Freemod: true}, host)
	st, _ := m.State(registryLookup(sessions))

	if len(st.SlotMods) != SlotCount {
		t.Errorf("len(SlotMods) = %d, want %d", len(st.SlotMods), SlotCount)
	}
}
