package room

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/choeurtis18/MortPion/internal/board"
	"github.com/choeurtis18/MortPion/internal/match"
)

func TestCellViewHidesEmptySlots(t *testing.T) {
	cell := board.Cell{P: board.Red}
	got := cellView(cell)
	want := CellView{P: colorPtr(board.Red), M: nil, G: nil}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("cellView mismatch (-want +got):\n%s", diff)
	}
}

func TestPlayerViewMirrorsStartingInventory(t *testing.T) {
	p := match.NewPlayer("seat-1", "Ada", board.Red, true)
	got := playerView(p).Inventory
	want := InventoryView{P: 3, M: 3, G: 3}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("inventory view mismatch (-want +got):\n%s", diff)
	}
}
