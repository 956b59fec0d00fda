package domain

// Entry is one snapshot in a game's history. Move is the cell played to
// reach the snapshot; the opening entry carries 0 as a placeholder.
type Entry struct {
	Board Board
	Move  int
}

// Game holds a match together with its full move history and the step
// currently being viewed.
type Game struct {
	history  []Entry
	step     int
	reversed bool
}

// New returns a game at the empty board with X to move.
func New() *Game {
	return &Game{history: []Entry{{}}}
}

// Click plays the current turn at cell i (0..8). When the viewed step is
// behind the latest entry, the later entries are discarded first.
func (g *Game) Click(i int) error {
	if i < 0 || i > 8 {
		return ErrOutOfBounds
	}
	cur := g.history[g.step].Board
	if Evaluate(cur).HasWinner() {
		return ErrGameOver
	}
	if cur[i] != Empty {
		return ErrOccupied
	}

	next := cur
	next[i] = g.Next()
	g.history = append(g.history[:g.step+1:g.step+1], Entry{Board: next, Move: i})
	g.step = len(g.history) - 1
	return nil
}

// JumpTo moves the view to an existing step. History is left untouched so
// the player can move forward again.
func (g *Game) JumpTo(step int) error {
	if step < 0 || step >= len(g.history) {
		return ErrStepOutOfRange
	}
	g.step = step
	return nil
}

// ToggleOrder flips the display order of the move list.
func (g *Game) ToggleOrder() { g.reversed = !g.reversed }

func (g *Game) Step() int      { return g.step }
func (g *Game) Len() int       { return len(g.history) }
func (g *Game) Reversed() bool { return g.reversed }

// XIsNext is derived from the step: X moves on even steps.
func (g *Game) XIsNext() bool { return g.step%2 == 0 }

// Next returns the symbol that plays the next accepted click.
func (g *Game) Next() Cell {
	if g.XIsNext() {
		return X
	}
	return O
}

// Current returns the entry at the viewed step.
func (g *Game) Current() Entry { return g.history[g.step] }

// History returns a copy of all entries.
func (g *Game) History() []Entry {
	out := make([]Entry, len(g.history))
	copy(out, g.history)
	return out
}

// Result evaluates the board at the viewed step.
func (g *Game) Result() Result { return Evaluate(g.Current().Board) }

// Over reports whether the viewed board is won or drawn.
func (g *Game) Over() bool {
	b := g.Current().Board
	return Evaluate(b).HasWinner() || b.Full()
}

// Clone returns an independent copy of the game.
func (g *Game) Clone() *Game {
	return &Game{history: g.History(), step: g.step, reversed: g.reversed}
}
