// Package tui is a terminal seat picker built on bubbletea.  It renders the
// orchestrator's read model and forwards key presses to it; it holds no
// booking state of its own.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iliyamo/cinema-seat-booking/internal/booking"
	"github.com/iliyamo/cinema-seat-booking/internal/model"
	"github.com/iliyamo/cinema-seat-booking/internal/seatmap"
)

// RefreshInterval is how often the view re-reads the orchestrator so
// background polls show up on screen.
const RefreshInterval = 250 * time.Millisecond

type tickMsg time.Time

type submitMsg struct {
	result booking.Result
	err    error
}

// Model is the bubbletea model of the seat picker.
type Model struct {
	ctx      context.Context
	orch     *booking.Orchestrator
	dispatch *seatmap.Dispatcher
	payment  string

	row, col int
	view     booking.View
	prev     map[string]model.SeatStatus
	changed  map[string]bool

	message  string
	isError  bool
	navigate string
}

// New returns a model for an orchestrator that has already been mounted.
// ctx bounds booking attempts started from the UI.
func New(ctx context.Context, orch *booking.Orchestrator, paymentMethod string) Model {
	m := Model{
		ctx:      ctx,
		orch:     orch,
		dispatch: seatmap.NewDispatcher(orch.Layout(), orch),
		payment:  paymentMethod,
		changed:  map[string]bool{},
	}
	m.view = orch.View()
	m.prev = m.view.Statuses
	return m
}

// Navigate returns the page the user was sent to, if any, once the
// program has exited.
func (m Model) Navigate() string { return m.navigate }

func tick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the refresh loop.
func (m Model) Init() tea.Cmd { return tick() }

// Update handles keys, refresh ticks and finished booking attempts.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh()
		return m, tick()

	case submitMsg:
		m.refresh()
		if msg.err == nil {
			m.navigate = msg.result.Navigate
			m.setMessage(fmt.Sprintf("Booking %s confirmed. Continue at %s", msg.result.BookingID, msg.result.Navigate), false)
			return m, tea.Quit
		}
		m.setMessage(errorText(msg.err), true)
		if msg.result.Navigate == booking.LoginPath {
			m.navigate = booking.LoginPath
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1, 0)
		case "down", "j":
			m.move(1, 0)
		case "left", "h":
			m.move(0, -1)
		case "right", "l":
			m.move(0, 1)
		case " ", "space", "enter", "x":
			if err := m.dispatch.Click(m.row, m.col); err != nil {
				m.setMessage(errorText(err), true)
			} else {
				m.setMessage("", false)
			}
			m.refresh()
		case "r":
			if err := m.orch.Refresh(m.ctx); err != nil {
				m.setMessage("Could not refresh seats", true)
			}
			m.refresh()
		case "b":
			if m.orch.Busy() {
				return m, nil
			}
			m.setMessage("Booking...", false)
			return m, m.submit()
		}
	}
	return m, nil
}

func (m Model) submit() tea.Cmd {
	ctx, orch, payment := m.ctx, m.orch, m.payment
	return func() tea.Msg {
		res, err := orch.Submit(ctx, payment)
		return submitMsg{result: res, err: err}
	}
}

func (m *Model) move(dr, dc int) {
	l := m.view.Layout
	m.row = clamp(m.row+dr, 0, l.Rows-1)
	m.col = clamp(m.col+dc, 0, l.Cols-1)
}

// refresh re-reads the orchestrator and records which seats changed
// status since the previous read.
func (m *Model) refresh() {
	m.view = m.orch.View()
	m.changed = map[string]bool{}
	for _, id := range seatmap.Diff(m.view.Layout, m.prev, m.view.Statuses) {
		m.changed[id] = true
	}
	m.prev = m.view.Statuses
}

func (m *Model) setMessage(s string, isErr bool) {
	m.message, m.isError = s, isErr
}

// View renders the seat map, legend, selection summary and status line.
func (m Model) View() string {
	var b strings.Builder
	v := m.view
	if v.Show != nil {
		b.WriteString(titleStyle.Render(fmt.Sprintf("Show %s  %s %s  screen %d", v.Show.ID, v.Show.Date, v.Show.Time, v.Show.Screen)))
		b.WriteString("\n\n")
	}

	width := v.Layout.Cols*3 - 1
	b.WriteString("   " + screenStyle.Render(centre("SCREEN", width)) + "\n\n")
	for r, row := range v.Grid.Cells {
		b.WriteString(fmt.Sprintf("%2s ", seatmap.RowLabel(r)))
		for c, cell := range row {
			style := seatStyles[cell.Status]
			if m.changed[cell.ID] {
				style = style.Inherit(changedStyle)
			}
			if r == m.row && c == m.col {
				style = style.Inherit(cursorStyle)
			}
			b.WriteString(style.Render(seatToken(cell.Status)))
			if c < len(row)-1 {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("[] available  <> selected  ~~ held  XX booked"))
	b.WriteString("\n\n")

	cursor := v.Layout.SeatID(m.row, m.col)
	selected := "none"
	if len(v.Selected) > 0 {
		selected = strings.Join(v.Selected, ", ")
	}
	b.WriteString(fmt.Sprintf("Seat: %s   Selected: %s   Total: %s\n", cursor, selected, FormatCents(v.TotalCents)))

	if v.Busy {
		b.WriteString(hintStyle.Render("Booking in progress...") + "\n")
	}
	switch {
	case m.message != "" && m.isError:
		b.WriteString(errorStyle.Render(m.message) + "\n")
	case m.message != "":
		b.WriteString(successStyle.Render(m.message) + "\n")
	}
	b.WriteString(hintStyle.Render("arrows/hjkl move • space select • r refresh • b book • q quit"))
	b.WriteString("\n")
	return b.String()
}

func errorText(err error) string {
	var ve *booking.ValidationError
	if errors.As(err, &ve) {
		return ve.Msg
	}
	return err.Error()
}

func centre(s string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
