package lobby

import (
	"testing"
	"time"

	"github.com/choeurtis18/MortPion/internal/board"
	"github.com/choeurtis18/MortPion/internal/room"
)

type noopOutbox struct{}

func (noopOutbox) Send(string, room.MessageType, interface{}) {}

func testRoomOptions() room.Options {
	return room.Options{
		TurnTimeout:      time.Hour,
		ReplayVoteWindow: 30 * time.Second,
		RoomTTL:          time.Hour,
		SkipLimit:        2,
		ColorPalette:     []board.Color{board.Red, board.Blue, board.Green, board.Yellow},
	}
}

func TestCreateEnforcesHostUniqueness(t *testing.T) {
	l := New(testRoomOptions(), time.Hour)
	defer l.Stop()

	if _, _, err := l.Create(CreateOptions{Name: "A", Capacity: 2, HostID: "host-1", HostName: "Alice"}, noopOutbox{}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, _, err := l.Create(CreateOptions{Name: "B", Capacity: 2, HostID: "host-1", HostName: "Alice"}, noopOutbox{}); err == nil {
		t.Fatal("expected second room for the same host to fail with HostBusy")
	}
}

func TestListFiltersJoinableRooms(t *testing.T) {
	l := New(testRoomOptions(), time.Hour)
	defer l.Stop()

	_, _, _ = l.Create(CreateOptions{Name: "Open Table", Capacity: 3, HostID: "h1", HostName: "A"}, noopOutbox{})
	full, _, _ := l.Create(CreateOptions{Name: "Full Table", Capacity: 2, HostID: "h2", HostName: "B"}, noopOutbox{})
	full.Join("Guest", "") // brings it to capacity, starting its match

	rooms := l.List(Filter{OnlyJoinable: true}, Sort{Field: SortCreatedAt}, Page{Limit: 10})
	if rooms.Total < 1 {
		t.Fatalf("expected at least one joinable room, got %d", rooms.Total)
	}
}

func TestListQueryFiltersByName(t *testing.T) {
	l := New(testRoomOptions(), time.Hour)
	defer l.Stop()

	l.Create(CreateOptions{Name: "Dragons Lair", Capacity: 2, HostID: "h1", HostName: "A"}, noopOutbox{})
	l.Create(CreateOptions{Name: "Quiet Room", Capacity: 2, HostID: "h2", HostName: "B"}, noopOutbox{})

	res := l.List(Filter{Query: "dragon"}, Sort{Field: SortName}, Page{Limit: 10})
	if res.Total != 1 {
		t.Fatalf("expected 1 match for query 'dragon', got %d", res.Total)
	}
}

func TestListSortsByActivity(t *testing.T) {
	l := New(testRoomOptions(), time.Hour)
	defer l.Stop()

	l.Create(CreateOptions{Name: "Still Waiting", Capacity: 3, HostID: "h1", HostName: "A"}, noopOutbox{})
	started, _, _ := l.Create(CreateOptions{Name: "Already Started", Capacity: 2, HostID: "h2", HostName: "B"}, noopOutbox{})
	started.Join("Guest", "") // brings it to capacity, starting its match and bumping LastActivityAt

	res := l.List(Filter{}, Sort{Field: SortActivity, Dir: Desc}, Page{Limit: 10})
	if len(res.Items) < 2 {
		t.Fatalf("expected at least 2 rooms, got %d", len(res.Items))
	}
	if res.Items[0].ID != started.ID {
		t.Fatalf("expected the started match %s to sort most-recently-active first, got %s", started.ID, res.Items[0].ID)
	}
}

func TestRemovePurgesHostIndex(t *testing.T) {
	l := New(testRoomOptions(), time.Hour)
	defer l.Stop()

	r, _, err := l.Create(CreateOptions{Name: "A", Capacity: 2, HostID: "host-1", HostName: "Alice"}, noopOutbox{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	l.Remove(r.ID)

	if _, _, err := l.Create(CreateOptions{Name: "B", Capacity: 2, HostID: "host-1", HostName: "Alice"}, noopOutbox{}); err != nil {
		t.Fatalf("expected host-1 to be free to create again after removal: %v", err)
	}
}

func TestSweepExpiredClosesStaleRooms(t *testing.T) {
	l := New(testRoomOptions(), 10*time.Millisecond)
	defer l.Stop()

	opts := testRoomOptions()
	opts.RoomTTL = -time.Hour // already expired at creation
	l.opts = opts

	l.Create(CreateOptions{Name: "Stale", Capacity: 2, HostID: "host-1", HostName: "Alice"}, noopOutbox{})

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if n := l.sweepExpired(); n > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected the sweep to evict the already-expired room")
}
