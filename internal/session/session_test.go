package session

import (
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoginRejectsDuplicateID(t *testing.T) {
	registry := NewRegistry(nil)
	if _, err := registry.Login(1001, "alice", 0, nil); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if _, err := registry.Login(1001, "alice", 0, nil); !errors.Is(err, ErrDuplicateSession) {
		t.Errorf("second Login() error = %v, want %v", err, ErrDuplicateSession)
	}
}

func TestLoginTokensAreUnique(t *testing.T) {
	registry := NewRegistry(nil)
	a, _ := registry.Login(1, "a", 0, nil)
	b, _ := registry.Login(2, "b", 0, nil)
	if a.Token == b.Token {
		t.Errorf("two sessions share token %q", a.Token)
	}
}

func TestLookupPaths(t *testing.T) {
	registry := NewRegistry(nil)
	s, _ := registry.Login(1001, "alice", 0, nil)

	if got, ok := registry.Lookup(s.Token); !ok || got != s {
		t.Errorf("Lookup(token) = %v, %v", got, ok)
	}
	if got, ok := registry.LookupID(1001); !ok || got != s {
		t.Errorf("LookupID(1001) = %v, %v", got, ok)
	}
	if got, ok := registry.LookupUsername("alice"); !ok || got != s {
		t.Errorf("LookupUsername(alice) = %v, %v", got, ok)
	}
	if _, ok := registry.Lookup("no-such-token"); ok {
		t.Error("Lookup() hit on unknown token")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	registry := NewRegistry(nil)
	s, _ := registry.Login(1001, "alice", 0, nil)

	var removals int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := registry.Remove(s.Token); ok {
				mu.Lock()
				removals++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if removals != 1 {
		t.Errorf("Remove() succeeded %d times, want exactly once", removals)
	}
	if _, ok := registry.Lookup(s.Token); ok {
		t.Error("session still resolvable after removal")
	}
}

func TestDrainEmptiesQueue(t *testing.T) {
	registry := NewRegistry(nil)
	s, _ := registry.Login(1001, "alice", 0, nil)

	s.Enqueue([]byte{1, 2})
	s.Enqueue([]byte{3})

	if diff := cmp.Diff([]byte{1, 2, 3}, s.Drain()); diff != "" {
		t.Errorf("first drain mismatch (-want +got):\n%s", diff)
	}
	if got := s.Drain(); len(got) != 0 {
		t.Errorf("second drain = %v, want empty", got)
	}
}

func TestBotSessionsDiscardAndCan(t *testing.T) {
	registry := NewRegistry(nil)
	bot := registry.AddBot(3, "nekobot")

	if !bot.IsBot() {
		t.Fatal("IsBot() = false for bot session")
	}
	bot.Enqueue([]byte{1, 2, 3})
	if got := bot.Drain(); len(got) != 0 {
		t.Errorf("bot drain = %v, want nothing queued", got)
	}
	if ok := bot.MutateStats(func(st *Stats) { st.Playcount = 1 }); ok {
		t.Error("MutateStats() = true for bot session")
	}
	if got := bot.Stats(); got != botStats {
		t.Errorf("bot Stats() = %+v, want the canned block", got)
	}
}

func TestMutateStatsVisibleToReaders(t *testing.T) {
	registry := NewRegistry(nil)
	s, _ := registry.Login(1001, "alice", 0, nil)

	ok := s.MutateStats(func(st *Stats) {
		st.Action = ActionPlaying
		st.ActionText = "mapset"
		st.Mods = 64
	})
	if !ok {
		t.Fatal("MutateStats() = false for player session")
	}
	got := s.Stats()
	if got.Action != ActionPlaying || got.ActionText != "mapset" || got.Mods != 64 {
		t.Errorf("Stats() = %+v after mutation", got)
	}
}

func TestChannelMembershipSet(t *testing.T) {
	registry := NewRegistry(nil)
	s, _ := registry.Login(1001, "alice", 0, nil)

	s.JoinedChannel("#osu")
	s.JoinedChannel("#lobby")
	s.JoinedChannel("#osu") // repeat join is a no-op
	s.PartedChannel("#lobby")

	names := s.ChannelNames()
	sort.Strings(names)
	if diff := cmp.Diff([]string{"#osu"}, names); diff != "" {
		t.Errorf("channel set mismatch (-want +got):\n%s", diff)
	}
}

func TestBroadcastReachesEveryPlayer(t *testing.T) {
	registry := NewRegistry(nil)
	a, _ := registry.Login(1, "a", 0, nil)
	b, _ := registry.Login(2, "b", 0, nil)

	registry.Broadcast([]byte{0xaa})

	if got := a.Drain(); !cmp.Equal([]byte{0xaa}, got) {
		t.Errorf("a drained %v", got)
	}
	if got := b.Drain(); !cmp.Equal([]byte{0xaa}, got) {
		t.Errorf("b drained %v", got)
	}
}

func TestLivenessTimeoutFiresOnce(t *testing.T) {
	registry := NewRegistry(nil)

	fired := make(chan string, 4)
	s, err := registry.Login(1001, "alice", 20*time.Millisecond, func(token string) {
		fired <- token
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	select {
	case token := <-fired:
		if token != s.Token {
			t.Errorf("timeout fired for token %q, want %q", token, s.Token)
		}
	case <-time.After(time.Second):
		t.Fatal("liveness timeout never fired")
	}

	select {
	case <-fired:
		t.Error("timeout fired a second time")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestHeartbeatDefersTimeout(t *testing.T) {
	registry := NewRegistry(nil)

	fired := make(chan struct{}, 1)
	s, err := registry.Login(1001, "alice", 50*time.Millisecond, func(string) {
		fired <- struct{}{}
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// Keep the session alive well past the timeout window.
	deadline := time.After(200 * time.Millisecond)
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
loop:
	for {
		select {
		case <-tick.C:
			s.Heartbeat()
		case <-fired:
			t.Fatal("timed out despite steady heartbeats")
		case <-deadline:
			break loop
		}
	}

	registry.Remove(s.Token)
	select {
	case <-fired:
		t.Error("timeout fired after removal")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRemoveStopsWatcher(t *testing.T) {
	registry := NewRegistry(nil)

	fired := make(chan struct{}, 1)
	s, _ := registry.Login(1001, "alice", 30*time.Millisecond, func(string) {
		fired <- struct{}{}
	})
	registry.Remove(s.Token)

	select {
	case <-fired:
		t.Error("watcher fired after Remove()")
	case <-time.After(100 * time.Millisecond):
	}
}
