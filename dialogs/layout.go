package dialogs

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

const overlayBG = lipgloss.Color("236")

// boxStyle is shared by the dialogs so their borders blend into the overlay.
func boxStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("252")).
		BorderBackground(overlayBG).
		Padding(1, 2).
		Width(60)
}

// Overlay centres view on a dimmed screen of width x height.
func Overlay(width, height int, view string) string {
	if width <= 0 || height <= 0 {
		return view
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, view,
		lipgloss.WithWhitespaceBackground(overlayBG))
}

// helpLine renders bindings as "enter export • esc cancel".
func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
