package main

import (
	"net/url"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andareed/siftly-timeline/clipboard"
	"github.com/andareed/siftly-timeline/provider"
)

func (m *model) copyCurrentRow() tea.Cmd {
	row, ok := m.currentRow()
	if !ok {
		return m.startNotice("Nothing to copy", "warn", noticeDuration)
	}
	if err := clipboard.Copy(row.slug, m.cfg.UI.OSC52); err != nil {
		return m.startNotice(err.Error(), "error", noticeDuration)
	}
	return m.startNotice("Copied "+row.slug, "success", noticeDuration)
}

// copyQuery copies the last issued query: a full URL for the HTTP provider,
// otherwise the encoded parameters.
func (m *model) copyQuery() tea.Cmd {
	text := m.queryText()
	if text == "" {
		return m.startNotice("No query issued yet", "warn", noticeDuration)
	}
	if err := clipboard.Copy(text, m.cfg.UI.OSC52); err != nil {
		return m.startNotice(err.Error(), "error", noticeDuration)
	}
	return m.startNotice("Copied query", "success", noticeDuration)
}

func (m *model) queryText() string {
	q := m.lastQuery
	if q.ResolutionSeconds == 0 {
		return ""
	}
	if h, ok := m.prov.(*provider.HTTP); ok {
		return h.URL(q, q.Keys)
	}
	s, err := url.QueryUnescape(q.Values(q.Keys).Encode())
	if err != nil {
		return q.Values(q.Keys).Encode()
	}
	return s
}
