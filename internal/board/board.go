// Package board implements the pure, side-effect-free board and rule
// primitives for one 3x3 match (spec §4.1). Every function here is a
// value-in value-out transform; none of them hold a lock or touch a clock.
package board

import "github.com/choeurtis18/MortPion/internal/apperr"

// Color identifies a seat's piece color. The zero value means "no color".
type Color string

const (
	None   Color = ""
	Red    Color = "red"
	Blue   Color = "blue"
	Green  Color = "green"
	Yellow Color = "yellow"
)

// Palette is the fixed, ordered color assignment order (spec §6).
var Palette = []Color{Red, Blue, Green, Yellow}

// Size identifies one of the three independent slots in a cell.
type Size string

const (
	Petite  Size = "P"
	Moyenne Size = "M"
	Grande  Size = "G"
)

// Sizes lists all three sizes, largest first — the order win detection
// walks when computing a cell's visible piece.
var Sizes = [3]Size{Grande, Moyenne, Petite}

// Cell holds up to one color per size slot. Slots are independent: P, M
// and G in the same cell may carry three different colors.
type Cell struct {
	P Color
	M Color
	G Color
}

func (c Cell) slot(s Size) Color {
	switch s {
	case Petite:
		return c.P
	case Moyenne:
		return c.M
	case Grande:
		return c.G
	default:
		return None
	}
}

func (c Cell) withSlot(s Size, color Color) Cell {
	switch s {
	case Petite:
		c.P = color
	case Moyenne:
		c.M = color
	case Grande:
		c.G = color
	}
	return c
}

// Board is the 9-cell, row-major playing surface.
type Board [9]Cell

// Inventory counts remaining unplaced pieces per size for one seat.
type Inventory struct {
	P int
	M int
	G int
}

func (inv Inventory) count(s Size) int {
	switch s {
	case Petite:
		return inv.P
	case Moyenne:
		return inv.M
	case Grande:
		return inv.G
	default:
		return 0
	}
}

// lines enumerates the 8 win lines: 3 rows, 3 columns, 2 diagonals.
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// IsLegal reports whether placing a piece of the given size at cell is
// legal: the cell index is in range and that size's slot is empty. Color
// is not consulted — colors may mix within one cell across sizes (spec
// §4.1, Open Question 1: the slot-based variant is the one implemented
// here, matching the rules document over the source's stricter nested
// variant).
func IsLegal(b Board, cell int, size Size) bool {
	if cell < 0 || cell > 8 {
		return false
	}
	return b[cell].slot(size) == None
}

// ApplyMove returns a new board with the slot set to color. It fails with
// an IllegalMove apperr if IsLegal would reject the move.
func ApplyMove(b Board, cell int, size Size, color Color) (Board, error) {
	if !IsLegal(b, cell, size) {
		return b, apperr.ErrIllegalMove
	}
	b[cell] = b[cell].withSlot(size, color)
	return b, nil
}

// Visible returns the color of the largest occupied slot in a cell
// (G > M > P), or None if the cell is empty.
func Visible(c Cell) Color {
	for _, s := range Sizes {
		if v := c.slot(s); v != None {
			return v
		}
	}
	return None
}

// HasWin reports whether any of the 8 lines has all three cells' visible
// piece equal to color. This is the single win condition (spec Open
// Question 2): size-order and fully-nested-trio patterns are not checked
// independently — they only win when they happen to produce this visible
// pattern.
func HasWin(b Board, color Color) bool {
	if color == None {
		return false
	}
	for _, line := range lines {
		if Visible(b[line[0]]) == color && Visible(b[line[1]]) == color && Visible(b[line[2]]) == color {
			return true
		}
	}
	return false
}

// AnyLegalMove reports whether some (cell, size) pair exists with
// inventory remaining for that size and an empty slot at that cell.
func AnyLegalMove(b Board, inv Inventory) bool {
	for _, s := range Sizes {
		if inv.count(s) <= 0 {
			continue
		}
		for cell := 0; cell < 9; cell++ {
			if IsLegal(b, cell, s) {
				return true
			}
		}
	}
	return false
}
