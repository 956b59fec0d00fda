// Package view projects a game into the data every front end draws: the
// board cells, the status line and the move list.
package view

import (
	"fmt"

	"github.com/jaminalder/timetravel-tic-tac-toe/internal/domain"
)

// Cell is one rendered board position.
type Cell struct {
	Index   int
	Row     int
	Col     int
	Value   string
	Winning bool
}

// Move is one entry of the move list.
type Move struct {
	Step     int
	Label    string
	Selected bool
}

// Frame is everything needed to draw one game.
type Frame struct {
	Cells    [9]Cell
	Rows     [3][3]Cell
	Status   string
	Moves    []Move
	Step     int
	Reversed bool
	Over     bool
}

// Board renders a snapshot. A cell is winning iff its index is in line.
func Board(b domain.Board, line []int) [9]Cell {
	var out [9]Cell
	for i, c := range b {
		r, col := domain.RowCol(i)
		out[i] = Cell{Index: i, Row: r, Col: col, Value: c.String()}
	}
	for _, i := range line {
		out[i].Winning = true
	}
	return out
}

// Status returns the status line for a board.
func Status(res domain.Result, full bool, next domain.Cell) string {
	switch {
	case res.HasWinner():
		return "Winner: " + res.Winner.String()
	case full:
		return "It's a draw!"
	default:
		return "Next player: " + next.String()
	}
}

// MoveLabel returns the move list label for a history step.
func MoveLabel(step, move int) string {
	if step == 0 {
		return "Go to game start"
	}
	r, c := domain.RowCol(move)
	return fmt.Sprintf("Go to move #%d (row:%d,col:%d)", step, r, c)
}

// Project derives a Frame from the game at its current step.
func Project(g *domain.Game) Frame {
	cur := g.Current()
	res := domain.Evaluate(cur.Board)
	f := Frame{
		Cells:    Board(cur.Board, res.Line),
		Status:   Status(res, cur.Board.Full(), g.Next()),
		Step:     g.Step(),
		Reversed: g.Reversed(),
		Over:     g.Over(),
	}
	for _, c := range f.Cells {
		f.Rows[c.Row][c.Col] = c
	}

	hist := g.History()
	f.Moves = make([]Move, len(hist))
	for step, e := range hist {
		m := Move{Step: step, Label: MoveLabel(step, e.Move), Selected: step == g.Step()}
		if g.Reversed() {
			f.Moves[len(hist)-1-step] = m
		} else {
			f.Moves[step] = m
		}
	}
	return f
}
