package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andareed/siftly-timeline/timewindow"
)

const (
	timeInputLayout = "2006-01-02 15:04"
	tickTimeLayout  = "15:04"
	tickDayLayout   = "Jan 02"
)

// setWindow switches the window token and fetches for it.
func (m *model) setWindow(tok timewindow.Token) tea.Cmd {
	if tok == m.engine.Token() {
		return m.startNotice(fmt.Sprintf("Window already %s", tok), "info", noticeDuration)
	}
	m.ui.retries = 0
	req := m.engine.SetWindow(string(tok))
	return tea.Batch(m.issue(req), m.startNotice("Window "+string(m.engine.Token()), "info", noticeDuration))
}

// tickLayout picks the label format for the tick spacing.
func tickLayout(cfg timewindow.Config) string {
	if cfg.LabelIntervalSeconds >= int64((24 * time.Hour).Seconds()) {
		return tickDayLayout
	}
	return tickTimeLayout
}

func (m *model) timeWindowStatusLabel() string {
	w := m.engine.Window()
	if w.IsEmpty() {
		return "Window: none"
	}
	label := fmt.Sprintf("Window %s: %s - %s",
		m.engine.Token(),
		w.Start.Local().Format(timeInputLayout),
		w.End.Local().Format(timeInputLayout),
	)
	if r := m.engine.CurrentRollupInterval(); r > 0 {
		label += fmt.Sprintf(" · %s buckets", r.Duration())
	}
	return label
}
