package main

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andareed/siftly-timeline/logging"
	"github.com/andareed/siftly-timeline/provider"
)

func (m *model) setFilterPattern(pattern string) (tea.Cmd, error) {
	logging.Infof("Setting Pattern to: %s", pattern)
	if pattern == "" {
		m.data.filterRegex = nil
	} else {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		m.data.filterRegex = re
	}
	return m.applyFilter(), nil
}

// applyFilter rebuilds the displayed row list and hands it to the engine.
// Every filter, sort or reload goes through here; the cursor follows the
// monitor it was on when that monitor is still listed.
func (m *model) applyFilter() tea.Cmd {
	selected, hadSelection := m.currentRow()

	indices := make([]int, 0, len(m.data.monitors))
	for i, row := range m.data.monitors {
		if m.includeRow(row) {
			indices = append(indices, i)
		}
	}
	m.sortIndices(indices)
	m.data.filteredIndices = indices

	keys := make([]string, len(indices))
	for i, idx := range indices {
		keys[i] = m.data.monitors[idx].slug
	}
	req := m.engine.SetRows(keys)
	logging.Debugf("applyFilter: %d of %d monitors, sort %s", len(indices), len(m.data.monitors), m.data.sort)

	row := 0
	if hadSelection {
		if r, ok := m.engine.RowOf(selected.slug); ok {
			row = r
		}
	}
	m.setCursor(row)
	return m.issue(req)
}

func (m *model) includeRow(row monitorRow) bool {
	if m.data.showOnlyMarked {
		if _, ok := m.data.markedRows[row.id]; !ok {
			return false
		}
	}
	if m.data.filterRegex != nil && !m.data.filterRegex.MatchString(row.String()) {
		return false
	}
	return true
}

func (m *model) sortIndices(indices []int) {
	switch m.data.sort {
	case sortName:
		slices.SortStableFunc(indices, func(a, b int) int {
			return strings.Compare(
				strings.ToLower(m.data.monitors[a].Label()),
				strings.ToLower(m.data.monitors[b].Label()))
		})
	case sortStatus:
		worst := make(map[int]provider.Status, len(indices))
		for _, i := range indices {
			worst[i] = m.worstStatus(m.data.monitors[i].slug)
		}
		slices.SortStableFunc(indices, func(a, b int) int {
			return cmp.Compare(worst[b], worst[a])
		})
	default:
		slices.Sort(indices)
	}
}

// worstStatus is the most severe outcome of key across the window.
func (m *model) worstStatus(key string) provider.Status {
	var total provider.StatusCounts
	for _, c := range m.engine.Buckets(key) {
		total = total.Add(c)
	}
	return total.Worst()
}
