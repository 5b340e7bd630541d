package main

import "strings"

// searchOnce moves to the first monitor matching query.
func (m *model) searchOnce(query string) bool {
	return m.searchFrom(query, 0)
}

// searchNext moves to the next match after the cursor, wrapping around.
func (m *model) searchNext(query string) bool {
	return m.searchFrom(query, m.cursor+1)
}

func (m *model) searchFrom(query string, start int) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	n := len(m.data.filteredIndices)
	if q == "" || n == 0 {
		return false
	}
	for i := 0; i < n; i++ {
		row := (start + i) % n
		r := m.data.monitors[m.data.filteredIndices[row]]
		if strings.Contains(strings.ToLower(r.String()), q) {
			m.setCursor(row)
			return true
		}
	}
	return false
}

func highlightMatches(text string, query string) string {
	q := strings.TrimSpace(query)
	if q == "" || text == "" {
		return text
	}
	lowerText := strings.ToLower(text)
	lowerQuery := strings.ToLower(q)
	if len(lowerText) != len(text) {
		// case folding changed byte offsets
		return text
	}
	var b strings.Builder
	start := 0
	for {
		idx := strings.Index(lowerText[start:], lowerQuery)
		if idx == -1 {
			b.WriteString(text[start:])
			break
		}
		idx += start
		b.WriteString(text[start:idx])
		b.WriteString(searchHighlight.Render(text[idx : idx+len(lowerQuery)]))
		start = idx + len(lowerQuery)
	}
	return b.String()
}
