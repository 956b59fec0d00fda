package domain

import "errors"

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// Board is a fixed 3x3 board stored row-major.
type Board [9]Cell

// Full reports whether every cell is occupied.
func (b Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// RowCol maps a cell index to its row and column.
func RowCol(i int) (row, col int) {
	return i / 3, i % 3
}

// Errors returned by domain operations.
var (
	ErrOutOfBounds    = errors.New("out of bounds")
	ErrOccupied       = errors.New("cell occupied")
	ErrGameOver       = errors.New("game over")
	ErrStepOutOfRange = errors.New("step out of range")
)

// Lines lists every three-in-a-row in the order they are checked.
var Lines = [8][3]int{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// Result is the outcome of evaluating a board.
type Result struct {
	Winner Cell
	Line   []int
}

// HasWinner reports whether a line was completed.
func (r Result) HasWinner() bool { return r.Winner != Empty }

// Evaluate returns the first completed line in Lines order, or an empty
// Result when no line is complete.
func Evaluate(b Board) Result {
	for _, ln := range Lines {
		a := b[ln[0]]
		if a != Empty && a == b[ln[1]] && a == b[ln[2]] {
			return Result{Winner: a, Line: []int{ln[0], ln[1], ln[2]}}
		}
	}
	return Result{}
}
