package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/iliyamo/cinema-seat-booking/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	hintStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	changedStyle = lipgloss.NewStyle().Underline(true)

	seatStyles = map[model.SeatStatus]lipgloss.Style{
		model.SeatAvailable: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		model.SeatSelected:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		model.SeatLocked:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		model.SeatBooked:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}

	screenStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("214"))
)

// seatToken is the two-character glyph drawn for a seat.
func seatToken(st model.SeatStatus) string {
	switch st {
	case model.SeatSelected:
		return "<>"
	case model.SeatLocked:
		return "~~"
	case model.SeatBooked:
		return "XX"
	default:
		return "[]"
	}
}

// FormatCents renders minor units as a decimal amount.
func FormatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
