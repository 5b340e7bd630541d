package dialogs

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type HelpCanceledMsg struct{}

var helpClose = key.NewBinding(key.WithKeys("enter", "esc", "?", "q"), key.WithHelp("esc", "return"))

// Help lists key bindings until dismissed.
type Help struct {
	visible  bool
	bindings []key.Binding
}

func (d Help) Init() tea.Cmd { return nil }

func NewHelpDialog(bindings []key.Binding) *Help {
	return &Help{visible: true, bindings: bindings}
}

func (d *Help) Update(msg tea.Msg) (Dialog, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, helpClose) {
		d.visible = false
		return d, func() tea.Msg { return HelpCanceledMsg{} }
	}
	return d, nil
}

func (d Help) View() string {
	if !d.visible {
		return ""
	}
	lines := make([]string, 0, len(d.bindings))
	for _, b := range d.bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		lines = append(lines, fmt.Sprintf("%-12s %s", h.Key, h.Desc))
	}
	hint := lipgloss.NewStyle().Faint(true).Render(helpLine(helpClose))
	return boxStyle().Render(fmt.Sprintf("%s\n\n%s", strings.Join(lines, "\n"), hint))
}

func (d *Help) Show()          { d.visible = true }
func (d *Help) Hide()          { d.visible = false }
func (d *Help) Focus() tea.Cmd { return nil }
func (d *Help) Blur()          {}
func (d Help) IsVisible() bool { return d.visible }
