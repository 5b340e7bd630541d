package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andareed/siftly-timeline/logging"
)

type MarkColor string

const (
	MarkNone  MarkColor = ""
	MarkRed   MarkColor = "red"
	MarkGreen MarkColor = "green"
	MarkAmber MarkColor = "amber"
)

func (m *model) MarkCurrent(colour MarkColor) {
	row, ok := m.currentRow()
	if !ok {
		return
	}
	if colour == MarkNone {
		delete(m.data.markedRows, row.id)
		logging.Debugf("Cursor %d (%s) unmarked", m.cursor, row.slug)
		return
	}
	logging.Debugf("Cursor %d (%s) marked %s", m.cursor, row.slug, colour)
	m.data.markedRows[row.id] = colour
}

func (m *model) handleMarkCommandKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var mark MarkColor
	switch msg.String() {
	case "r":
		mark = MarkRed
	case "g":
		mark = MarkGreen
	case "a":
		mark = MarkAmber
	case "c":
		mark = MarkNone
	default:
		// stay in mark mode
		return m, nil
	}

	m.MarkCurrent(mark)
	m.exitCommandMode()

	cmds := []tea.Cmd{m.startNotice(fmt.Sprintf("Row %d marked [%s]", m.cursor+1, msg.String()), "", noticeDuration)}
	if m.data.showOnlyMarked && mark == MarkNone {
		// the row just left the marked-only list
		cmds = append(cmds, m.applyFilter())
	}
	return m, tea.Batch(cmds...)
}

func (m *model) isMarked(row int) bool {
	if row < 0 || row >= len(m.data.filteredIndices) {
		return false
	}
	_, ok := m.data.markedRows[m.data.monitors[m.data.filteredIndices[row]].id]
	return ok
}

func (m *model) jumpToNextMark() {
	for i := m.cursor + 1; i < len(m.data.filteredIndices); i++ {
		if m.isMarked(i) {
			logging.Debugf("Next mark found at %d", i)
			m.setCursor(i)
			return
		}
	}
	logging.Debug("No next mark has been found")
}

func (m *model) jumpToPreviousMark() {
	for i := m.cursor - 1; i >= 0; i-- {
		if m.isMarked(i) {
			logging.Debugf("Previous mark found at %d", i)
			m.setCursor(i)
			return
		}
	}
	logging.Debug("No previous mark has been found")
}
