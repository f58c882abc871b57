package room

import (
	"math/rand"
	"testing"
	"time"

	"github.com/choeurtis18/MortPion/internal/board"
)

type recordedMessage struct {
	seatID  string
	msgType MessageType
	payload interface{}
}

type fakeOutbox struct {
	sent []recordedMessage
}

func (f *fakeOutbox) Send(seatID string, msgType MessageType, payload interface{}) {
	f.sent = append(f.sent, recordedMessage{seatID: seatID, msgType: msgType, payload: payload})
}

func (f *fakeOutbox) last(msgType MessageType) (recordedMessage, bool) {
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].msgType == msgType {
			return f.sent[i], true
		}
	}
	return recordedMessage{}, false
}

func testOptions() Options {
	return Options{
		TurnTimeout:      time.Hour, // tests drive moves directly, never via real timeout
		ReplayVoteWindow: 30 * time.Second,
		RoomTTL:          time.Hour,
		SkipLimit:        2,
		ColorPalette:     []board.Color{board.Red, board.Blue, board.Green, board.Yellow},
	}
}

func newTestRoom(t *testing.T, capacity int) (*Room, *fakeOutbox, string) {
	t.Helper()
	ob := &fakeOutbox{}
	r, hostID := New("room-1", "Test Room", capacity, false, nil, "Host", testOptions(), ob, rand.New(rand.NewSource(1)), time.Now(), nil)
	return r, ob, hostID
}

// TestForfeitByExplicitLeave mirrors spec scenario S3.
func TestForfeitByExplicitLeave(t *testing.T) {
	r, ob, hostID := newTestRoom(t, 2)
	guestID, err := r.Join("Guest", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := r.Leave(hostID, LeaveExplicit); err != nil {
		t.Fatalf("leave: %v", err)
	}

	msg, ok := ob.last(MsgGameEnded)
	if !ok {
		t.Fatal("expected a game-ended broadcast after forfeit")
	}
	payload := msg.payload.(GameEndedPayload)
	if payload.Room.Game == nil || payload.Room.Game.WinnerID == nil || *payload.Room.Game.WinnerID != guestID {
		t.Fatalf("expected guest %s to win by forfeit, got %+v", guestID, payload.Room.Game)
	}
	if payload.Room.Game.IsDraw {
		t.Fatal("forfeit must not be reported as a draw")
	}
}

// TestJoinStartsMatchAtCapacity checks capacity=2 starts the match on the
// second join, per spec §4.6 join().
func TestJoinStartsMatchAtCapacity(t *testing.T) {
	r, ob, _ := newTestRoom(t, 2)
	if _, err := r.Join("Guest", ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, ok := ob.last(MsgGameStarted); !ok {
		t.Fatal("expected game-started once capacity is reached")
	}
}

// TestPrivateRoomRequiresMatchingCode exercises the bcrypt-backed code
// check end to end through the Room's join path.
func TestPrivateRoomRequiresMatchingCode(t *testing.T) {
	ob := &fakeOutbox{}
	hash, err := HashCode("secret1")
	if err != nil {
		t.Fatalf("hashCode: %v", err)
	}
	r, _ := New("room-2", "Private", 2, true, hash, "Host", testOptions(), ob, rand.New(rand.NewSource(1)), time.Now(), nil)

	if _, err := r.Join("Guest", "wrong-code"); err == nil {
		t.Fatal("expected join to fail with the wrong code")
	}
	if _, err := r.Join("Guest", "secret1"); err != nil {
		t.Fatalf("expected join to succeed with the matching code: %v", err)
	}
}

// TestReplayUnanimousRestartsMatch mirrors spec scenario S5 at the Room
// level: every connected voter says yes and a fresh match begins.
func TestReplayUnanimousRestartsMatch(t *testing.T) {
	r, ob, hostID := newTestRoom(t, 2)
	guestID, _ := r.Join("Guest", "")

	// Force the match to a terminal state by three forfeits is overkill;
	// eliminate the guest directly via an explicit leave-and-rejoin is not
	// supported, so drive a forfeit instead to reach game-ended.
	if err := r.Leave(guestID, LeaveExplicit); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if _, ok := ob.last(MsgReplayVotingStarted); !ok {
		t.Fatal("expected replay-voting-started after the match ended")
	}

	if err := r.CastReplayVote(hostID, true); err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	if err := r.CastReplayVote(guestID, true); err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	if _, ok := ob.last(MsgGameRestarted); !ok {
		t.Fatal("expected game-restarted once every connected voter accepted")
	}
}

// TestLeaveDuringReplayVoteCountsAsReject covers the post-terminal window
// where Room.status is still Playing but the match itself has already
// finished: an explicit leave there must not be a silent no-op, since the
// leaving seat would otherwise sit in the voter tally forever.
func TestLeaveDuringReplayVoteCountsAsReject(t *testing.T) {
	r, ob, hostID := newTestRoom(t, 2)
	guestID, _ := r.Join("Guest", "")
	if err := r.Leave(guestID, LeaveExplicit); err != nil {
		t.Fatalf("forfeit leave: %v", err)
	}
	if _, ok := ob.last(MsgReplayVotingStarted); !ok {
		t.Fatal("expected replay-voting-started after the forfeit")
	}

	// The forfeiting guest stays in the voter set; once it has voted, the
	// host's leave casts the last ballot (a reject) and must resolve the
	// vote rather than leave it pending forever.
	if err := r.CastReplayVote(guestID, true); err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	if err := r.Leave(hostID, LeaveExplicit); err != nil {
		t.Fatalf("leave during replay vote: %v", err)
	}
	if _, ok := ob.last(MsgReplayRejected); !ok {
		t.Fatal("expected an explicit leave during the replay-vote window to count as a reject vote")
	}
}

// TestReplayRejectedMakesRoomTerminal mirrors spec scenario S6.
func TestReplayRejectedMakesRoomTerminal(t *testing.T) {
	r, ob, hostID := newTestRoom(t, 2)
	guestID, _ := r.Join("Guest", "")
	r.Leave(guestID, LeaveExplicit)

	if err := r.CastReplayVote(hostID, false); err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	if err := r.CastReplayVote(guestID, true); err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	if _, ok := ob.last(MsgReplayRejected); !ok {
		t.Fatal("expected replay-rejected once every voter had cast and one declined")
	}
}
