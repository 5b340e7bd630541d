package dialogs

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andareed/siftly-timeline/logging"
)

type (
	ExportConfirmedMsg struct{ Path string }
	ExportCanceledMsg  struct{}
)

var (
	exportConfirm = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "export"))
	exportCancel  = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
)

// Export asks where to write the bucket CSV.
type Export struct {
	input   textinput.Model
	visible bool
	dir     string // bare file names are placed here when set
}

// NewExportDialog pre-fills name; an emptied field falls back to it.
func NewExportDialog(name, dir string) *Export {
	in := textinput.New()
	in.Prompt = "Export buckets to: "
	in.Placeholder = name
	in.SetValue(name)
	in.CharLimit = 256
	in.Width = 40
	return &Export{input: in, visible: true, dir: dir}
}

func (d Export) Init() tea.Cmd { return d.input.Focus() }

// Path resolves the typed value against the dialog's directory.
func (d *Export) Path() string {
	p := strings.TrimSpace(d.input.Value())
	if p == "" {
		p = d.input.Placeholder
	}
	if p != "" && d.dir != "" && !filepath.IsAbs(p) && filepath.Dir(p) == "." {
		p = filepath.Join(d.dir, p)
	}
	return p
}

func (d *Export) Update(msg tea.Msg) (Dialog, tea.Cmd) {
	if !d.visible {
		return d, nil
	}
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, exportConfirm):
			path := d.Path()
			if path == "" {
				return d, nil
			}
			logging.Debugf("export dialog: %s", path)
			return d, func() tea.Msg { return ExportConfirmedMsg{Path: path} }
		case key.Matches(km, exportCancel):
			return d, func() tea.Msg { return ExportCanceledMsg{} }
		}
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return d, cmd
}

func (d Export) View() string {
	if !d.visible {
		return ""
	}
	hint := lipgloss.NewStyle().Faint(true).Render(helpLine(exportConfirm, exportCancel))
	return boxStyle().Render(d.input.View() + "\n\n" + hint)
}

func (d *Export) Show() {
	d.visible = true
	d.input.Focus()
}

func (d *Export) Hide() {
	d.visible = false
	d.input.Blur()
}

func (d *Export) Focus() tea.Cmd { return d.input.Focus() }
func (d *Export) Blur()          { d.input.Blur() }
func (d Export) IsVisible() bool { return d.visible }
