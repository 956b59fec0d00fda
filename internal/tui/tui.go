// Package tui plays a game in the terminal using the same controller and
// projection as the web front end.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/jaminalder/timetravel-tic-tac-toe/internal/domain"
	"github.com/jaminalder/timetravel-tic-tac-toe/internal/view"
)

// Model is the bubbletea model for one local game.
type Model struct {
	game     *domain.Game
	cursor   int
	keys     keyMap
	help     help.Model
	logger   *log.Logger
	quitting bool
}

// NewModel returns a model at a fresh game with the cursor on the centre.
func NewModel(logger *log.Logger) Model {
	return Model{game: domain.New(), cursor: 4, keys: defaultKeys(), help: help.New(), logger: logger}
}

// Game exposes the controller driven by the model.
func (m Model) Game() *domain.Game { return m.game }

// Cursor returns the highlighted cell index.
func (m Model) Cursor() int { return m.cursor }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	row, col := domain.RowCol(m.cursor)
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.cursor = (row+2)%3*3 + col
	case key.Matches(msg, m.keys.Down):
		m.cursor = (row+1)%3*3 + col
	case key.Matches(msg, m.keys.Left):
		m.cursor = row*3 + (col+2)%3
	case key.Matches(msg, m.keys.Right):
		m.cursor = row*3 + (col+1)%3
	case key.Matches(msg, m.keys.Play):
		m.click(m.cursor)
	case key.Matches(msg, m.keys.Cell):
		m.cursor = int(msg.String()[0] - '1')
		m.click(m.cursor)
	case key.Matches(msg, m.keys.Back):
		m.jump(m.game.Step() - 1)
	case key.Matches(msg, m.keys.Forward):
		m.jump(m.game.Step() + 1)
	case key.Matches(msg, m.keys.Start):
		m.jump(0)
	case key.Matches(msg, m.keys.Reverse):
		m.game.ToggleOrder()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) click(i int) {
	if err := m.game.Click(i); err != nil {
		m.logger.Debug("move ignored", "cell", i, "reason", err)
		return
	}
	m.logger.Debug("move", "cell", i, "step", m.game.Step())
}

// jump ignores steps outside the history, so [ and ] stop at the ends.
func (m Model) jump(step int) {
	if err := m.game.JumpTo(step); err == nil {
		m.logger.Debug("jump", "step", step)
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	f := view.Project(m.game)

	var b strings.Builder
	sep := gridStyle.Render("│")
	for r, row := range f.Rows {
		if r > 0 {
			b.WriteString(gridStyle.Render("───┼───┼───"))
			b.WriteByte('\n')
		}
		cells := make([]string, 3)
		for c, cell := range row {
			cells[c] = m.renderCell(cell, f.Over)
		}
		b.WriteString(strings.Join(cells, sep))
		b.WriteByte('\n')
	}
	board := panelStyle.Render(strings.TrimRight(b.String(), "\n"))

	var moves strings.Builder
	moves.WriteString(statusStyle.Render(f.Status))
	moves.WriteByte('\n')
	if f.Over {
		moves.WriteString(hintStyle.Render("[ to step back, g for game start"))
		moves.WriteByte('\n')
	}
	for _, mv := range f.Moves {
		if mv.Selected {
			moves.WriteString(selectedStyle.Render("> " + mv.Label))
		} else {
			moves.WriteString("  " + mv.Label)
		}
		moves.WriteByte('\n')
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, board, "  ", moves.String()),
		m.help.View(m.keys),
	) + "\n"
}

func (m Model) renderCell(c view.Cell, over bool) string {
	v := c.Value
	if v == "" {
		v = " "
	}
	switch {
	case c.Index == m.cursor && !over:
		return cursorStyle.Render(v)
	case c.Winning:
		return winningStyle.Render(v)
	default:
		return cellStyle.Render(v)
	}
}

// Run plays one game until the user quits or ctx ends.
func Run(ctx context.Context, logger *log.Logger) error {
	p := tea.NewProgram(NewModel(logger), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
