package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andareed/siftly-timeline/logging"
)

func (m *model) hasRows() bool {
	return len(m.data.filteredIndices) > 0
}

// currentRow returns the monitor under the cursor.
func (m *model) currentRow() (monitorRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.data.filteredIndices) {
		return monitorRow{}, false
	}
	return m.data.monitors[m.data.filteredIndices[m.cursor]], true
}

func (m *model) setCursor(row int) {
	if !m.hasRows() {
		m.cursor = 0
		return
	}
	m.cursor = max(0, min(row, len(m.data.filteredIndices)-1))
	m.ensureCursorVisible()
}

func (m *model) moveCursor(delta int) {
	m.setCursor(m.cursor + delta)
}

// ensureCursorVisible asks the grid for the minimal scroll that shows the
// cursor row; a row already in view does not move.
func (m *model) ensureCursorVisible() {
	if m.hasRows() {
		m.engine.ScrollToRow(m.cursor)
	}
}

// clampCursorToView keeps the cursor on screen after a free scroll.
func (m *model) clampCursorToView() {
	vr := m.engine.VisibleRowRange()
	if vr.IsEmpty() || vr.Contains(m.cursor) {
		return
	}
	m.cursor = max(vr.Start, min(m.cursor, vr.End-1))
}

func (m *model) pageSize() int {
	return max(1, m.engine.VisibleRowRange().Len()-1)
}

func (m *model) jumpToStart() {
	logging.Debug("jumpToStart called")
	m.setCursor(0)
}

func (m *model) jumpToEnd() {
	logging.Debug("jumpToEnd called")
	m.setCursor(len(m.data.filteredIndices) - 1)
}

// jumpToLine moves to the 1-based row of the current list.
func (m *model) jumpToLine(lineNo int) tea.Cmd {
	logging.Debugf("jumpToLine %d", lineNo)
	if lineNo <= 0 || lineNo > len(m.data.filteredIndices) {
		return m.startNotice(fmt.Sprintf("Row %d out of bounds", lineNo), "warn", noticeDuration)
	}
	m.setCursor(lineNo - 1)
	return nil
}
