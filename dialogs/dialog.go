// Package dialogs holds the modal boxes drawn over the timeline.
package dialogs

import tea "github.com/charmbracelet/bubbletea"

// Dialog is implemented by every modal (Export, Help).
type Dialog interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Dialog, tea.Cmd)
	View() string

	Focus() tea.Cmd
	Blur()
	IsVisible() bool
	Show()
	Hide()
}
