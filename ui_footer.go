package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/andareed/siftly-timeline/logging"
)

// minSourceWidth is how far the source segment may shrink before the
// filter summary starts giving up room.
const minSourceWidth = 16

type footerState struct {
	Mode      Command
	ModeInput string
	Source    string

	Filter    string
	Sort      string
	MarksOnly bool
	Position  string

	Status      string
	StatusIsErr bool
	Legend      string
}

type footerPalette struct {
	bar, statusBar  lipgloss.Color
	pillBG, pillFG  lipgloss.Color
	source, text    lipgloss.Color
	dim, status     lipgloss.Color
	errText, legend lipgloss.Color
}

var footerColors = footerPalette{
	bar:       lipgloss.Color("#2b2b2b"),
	statusBar: lipgloss.Color("#000000"),
	pillBG:    lipgloss.Color("#ff9f1c"),
	pillFG:    lipgloss.Color("#000000"),
	source:    lipgloss.Color("#e0e0e0"),
	text:      lipgloss.Color("#cfcfcf"),
	dim:       lipgloss.Color("#a0a0a0"),
	status:    lipgloss.Color("#9a9a9a"),
	errText:   lipgloss.Color("#ff6b6b"),
	legend:    lipgloss.Color("#b0b0b0"),
}

func (p footerPalette) on(bg, fg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Background(bg).Foreground(fg)
}

// footerView renders the control bar and the status line.
func (m *model) footerView(width int) string {
	st := footerState{
		Source:    m.sourceLabel(),
		Filter:    "none",
		Sort:      m.data.sort.String(),
		MarksOnly: m.data.showOnlyMarked,
		Position:  m.commandRightContext(),
		Legend:    "? help · +/- window · r refresh · f filter · / search · s sort",
	}
	if m.ui.mode == modeCommand {
		st.Mode = m.ui.command.cmd
		st.ModeInput = m.activeCommandLine()
	}
	if re := m.data.filterRegex; re != nil && re.String() != "" {
		st.Filter = re.String()
	}

	switch {
	case m.ui.noticeMsg != "":
		st.Status = noticeText(m.ui.noticeMsg, m.ui.noticeType)
		st.StatusIsErr = m.ui.noticeType == "error"
	case m.engine.Loading():
		st.Status = m.spinner.View() + " Loading " + m.timeWindowStatusLabel()
	case m.engine.LastError() != nil:
		st.Status = noticeText(m.engine.LastError().Error(), "error")
		st.StatusIsErr = true
	default:
		st.Status = m.timeWindowStatusLabel()
	}

	if logging.IsDebugMode() {
		st.Legend += fmt.Sprintf(" | term %dx%d rows %s gen %d epoch %d",
			m.terminalWidth, m.terminalHeight, m.engine.VisibleRowRange(),
			m.engine.Generation(), m.engine.Grid().Epoch())
	}

	return renderFooter(width, st, footerColors)
}

func (m *model) sourceLabel() string {
	name := "(no monitors file)"
	if m.source != "" {
		name = filepath.Base(m.source)
	}
	return fmt.Sprintf("%s · %d monitors", name, len(m.data.monitors))
}

func renderFooter(width int, st footerState, p footerPalette) string {
	if width <= 0 {
		return ""
	}
	return controlBar(width, st, p) + "\n" + statusLine(width, st, p)
}

// controlBar lays out, left to right: mode pill, source and command input,
// filter summary, cursor position. The source segment absorbs slack.
func controlBar(width int, st footerState, p footerPalette) string {
	pill := fitPlain(" "+commandLabel(st.Mode)+" ", width)
	right := fitPlain(" Row "+st.Position, width-cellWidth(pill))
	summary := fmt.Sprintf("[FILTER: %s] · [SORT: %s] · [MARKED: %v]",
		fitPlain(st.Filter, 12), st.Sort, st.MarksOnly)

	free := width - cellWidth(pill) - cellWidth(right) - 2
	sourceW := free - cellWidth(summary)
	if sourceW < minSourceWidth {
		summary = fitPlain(summary, max(0, free-minSourceWidth))
		sourceW = free - cellWidth(summary)
	}
	sourceW = max(0, sourceW)

	source := "▸ " + strings.TrimSpace(st.Source)
	if in := strings.TrimSpace(st.ModeInput); in != "" {
		source += " ▸ " + in
	}

	base := p.on(p.bar, p.text)
	var b strings.Builder
	b.WriteString(p.on(p.pillBG, p.pillFG).Render(pill))
	b.WriteString(base.Render(" "))
	b.WriteString(p.on(p.bar, p.source).Render(padPlain(fitPlain(source, sourceW), sourceW)))
	b.WriteString(base.Render(" "))
	b.WriteString(p.on(p.bar, p.dim).Render(summary))
	b.WriteString(base.Render(right))

	line := b.String()
	if gap := width - lipgloss.Width(line); gap > 0 {
		line += base.Render(strings.Repeat(" ", gap))
	}
	return line
}

// statusLine shows the notice or window label on the left and the key
// legend on the right.
func statusLine(width int, st footerState, p footerPalette) string {
	legend := fitPlain(st.Legend, width)
	msgW := width - cellWidth(legend)
	msg := padPlain(fitPlain(st.Status, msgW), msgW)

	fg := p.status
	if st.StatusIsErr {
		fg = p.errText
	}
	return p.on(p.statusBar, fg).Render(msg) + p.on(p.statusBar, p.legend).Render(legend)
}

func commandLabel(cmd Command) string {
	if c, ok := commands[cmd]; ok {
		return c.label
	}
	return "NORMAL"
}

func padPlain(s string, w int) string {
	if gap := w - cellWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func fitPlain(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return runewidth.Truncate(s, w, "")
}

func cellWidth(s string) int {
	return runewidth.StringWidth(s)
}
