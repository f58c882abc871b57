package board

import "testing"

func TestIsLegalBounds(t *testing.T) {
	var b Board
	if !IsLegal(b, 0, Petite) {
		t.Fatal("cell 0 should be legal on an empty board")
	}
	if !IsLegal(b, 8, Petite) {
		t.Fatal("cell 8 should be legal on an empty board")
	}
	if IsLegal(b, -1, Petite) || IsLegal(b, 9, Petite) {
		t.Fatal("out of range cells must be illegal")
	}
}

func TestApplyMoveSlotIndependence(t *testing.T) {
	var b Board
	b, err := ApplyMove(b, 0, Petite, Red)
	if err != nil {
		t.Fatal(err)
	}
	b, err = ApplyMove(b, 0, Moyenne, Blue)
	if err != nil {
		t.Fatalf("different size slot in same cell must be legal: %v", err)
	}
	if b[0].P != Red || b[0].M != Blue {
		t.Fatalf("unexpected cell state: %+v", b[0])
	}
	if _, err := ApplyMove(b, 0, Petite, Green); err == nil {
		t.Fatal("re-occupying a filled slot must fail")
	}
}

func TestVisiblePrecedence(t *testing.T) {
	c := Cell{P: Red, M: Blue, G: Green}
	if Visible(c) != Green {
		t.Fatalf("G should dominate, got %v", Visible(c))
	}
	c = Cell{P: Red, M: Blue}
	if Visible(c) != Blue {
		t.Fatalf("M should dominate over P, got %v", Visible(c))
	}
	c = Cell{P: Red}
	if Visible(c) != Red {
		t.Fatalf("P alone should show, got %v", Visible(c))
	}
	if Visible(Cell{}) != None {
		t.Fatal("empty cell must have no visible color")
	}
}

// TestSameColorRowWin mirrors spec scenario S1: a plain same-size same-color
// row of P pieces wins.
func TestSameColorRowWin(t *testing.T) {
	var b Board
	moves := []struct {
		cell int
		size Size
		c    Color
	}{
		{0, Petite, Red}, {3, Petite, Blue},
		{1, Petite, Red}, {4, Petite, Blue},
		{2, Petite, Red},
	}
	var err error
	for _, m := range moves {
		b, err = ApplyMove(b, m.cell, m.size, m.c)
		if err != nil {
			t.Fatal(err)
		}
	}
	if !HasWin(b, Red) {
		t.Fatal("red should have won row 0-1-2")
	}
	if HasWin(b, Blue) {
		t.Fatal("blue should not have won")
	}
}

// TestNestedAlignmentDoesNotWin mirrors spec scenario S2: a nested-size
// pattern that looks win-shaped under the "alignment of sizes" reading does
// NOT win under the single visible-piece condition.
func TestNestedAlignmentDoesNotWin(t *testing.T) {
	var b Board
	var err error
	b, err = ApplyMove(b, 0, Petite, Red)
	if err != nil {
		t.Fatal(err)
	}
	b, err = ApplyMove(b, 0, Moyenne, Blue)
	if err != nil {
		t.Fatal(err)
	}
	b, err = ApplyMove(b, 1, Moyenne, Red)
	if err != nil {
		t.Fatal(err)
	}
	b, err = ApplyMove(b, 2, Grande, Blue)
	if err != nil {
		t.Fatal(err)
	}
	b, err = ApplyMove(b, 0, Grande, Red)
	if err != nil {
		t.Fatal(err)
	}

	if Visible(b[0]) != Red || Visible(b[1]) != Red || Visible(b[2]) != Blue {
		t.Fatalf("unexpected visibles: %v %v %v", Visible(b[0]), Visible(b[1]), Visible(b[2]))
	}
	if HasWin(b, Red) {
		t.Fatal("row 0-1-2 is red,red,blue: must not be a win")
	}
	if HasWin(b, Blue) {
		t.Fatal("blue has no winning line either")
	}
}

func TestAnyLegalMoveExhaustedInventory(t *testing.T) {
	var b Board
	if AnyLegalMove(b, Inventory{}) {
		t.Fatal("empty inventory must have no legal move")
	}
	if !AnyLegalMove(b, Inventory{P: 1}) {
		t.Fatal("one P left on an empty board must be a legal move")
	}

	// Fill the entire board's P slots; with only P inventory remaining,
	// no legal move should exist even though M/G slots are free.
	full := b
	var err error
	for cell := 0; cell < 9; cell++ {
		full, err = ApplyMove(full, cell, Petite, Red)
		if err != nil {
			t.Fatal(err)
		}
	}
	if AnyLegalMove(full, Inventory{P: 3}) {
		t.Fatal("no P slots remain; P-only inventory must have no legal move")
	}
	if !AnyLegalMove(full, Inventory{M: 1}) {
		t.Fatal("M slots are free; M inventory must have a legal move")
	}
}
