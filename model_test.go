package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andareed/siftly-timeline/config"
	"github.com/andareed/siftly-timeline/provider"
)

// stubResult puts one point at the start of the window for each key.
func stubResult(counts map[string]provider.StatusCounts) provider.Func {
	return func(ctx context.Context, q provider.Query) (provider.Result, error) {
		res := provider.Result{}
		for _, k := range q.Keys {
			c, ok := counts[k]
			if !ok {
				continue
			}
			res[k] = []provider.Point{{Timestamp: q.Since, Value: c}}
		}
		return res, nil
	}
}

func testRows() []monitorRow {
	return []monitorRow{
		newMonitorRow("web", "Web frontend", 1),
		newMonitorRow("api", "", 2),
		newMonitorRow("cron", "Nightly cron", 3),
	}
}

func newTestModel(t *testing.T, p provider.Provider) *model {
	t.Helper()
	cfg := config.Default()
	cfg.Timeline.Window = "1h"
	cfg.UI.RefreshInterval = 0
	return newModel(cfg, p, testRows(), "monitors.csv")
}

// sized sends a window size and runs the resulting fetch inline.
func sized(t *testing.T, m *model, w, h int) {
	t.Helper()
	_, cmd := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	if cmd == nil {
		t.Fatal("resize issued no fetch")
	}
	msg, ok := cmd().(fetchedMsg)
	if !ok {
		t.Fatalf("fetch command returned %T", msg)
	}
	m.Update(msg)
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func displayedSlugs(m *model) []string {
	out := make([]string, len(m.data.filteredIndices))
	for i, idx := range m.data.filteredIndices {
		out[i] = m.data.monitors[idx].slug
	}
	return out
}

func TestModelFetchAndRender(t *testing.T) {
	m := newTestModel(t, stubResult(map[string]provider.StatusCounts{
		"web": {OK: 3},
		"api": {Error: 1, OK: 1},
	}))
	sized(t, m, 100, 10)

	if !m.engine.HasData() {
		t.Fatal("engine has no data after fetch")
	}
	if got := m.engine.Buckets("api"); len(got) == 0 || got[0].Error != 1 {
		t.Fatalf("api buckets = %v", got)
	}
	if m.engine.Loading() {
		t.Fatal("still loading after response")
	}

	m.View() // first frame reports the measured name widths
	view := m.View()
	for _, want := range []string{"Web frontend", "api", "Nightly cron", "MONITOR"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if lines := strings.Split(view, "\n"); len(lines) != 10 {
		t.Errorf("view has %d lines, want 10", len(lines))
	}
}

func TestModelStaleResponseDropped(t *testing.T) {
	m := newTestModel(t, stubResult(map[string]provider.StatusCounts{"web": {OK: 1}}))
	_, first := m.Update(tea.WindowSizeMsg{Width: 100, Height: 10})
	_, second := m.Update(tea.WindowSizeMsg{Width: 120, Height: 10})
	if first == nil || second == nil {
		t.Fatal("expected two fetches")
	}

	m.Update(first())
	if m.engine.HasData() {
		t.Fatal("stale response was applied")
	}
	m.Update(second())
	if !m.engine.HasData() {
		t.Fatal("current response was not applied")
	}
}

func TestModelFetchErrorKeepsBuckets(t *testing.T) {
	fail := false
	p := provider.Func(func(ctx context.Context, q provider.Query) (provider.Result, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return stubResult(map[string]provider.StatusCounts{"web": {OK: 1}})(ctx, q)
	})
	m := newTestModel(t, p)
	sized(t, m, 100, 10)

	fail = true
	cmd := m.refresh(true)
	m.Update(cmd())

	if m.engine.LastError() == nil {
		t.Fatal("expected an error")
	}
	if len(m.engine.Buckets("web")) == 0 {
		t.Fatal("previous buckets were dropped")
	}
	if m.ui.retries != 0 {
		t.Fatalf("non-retryable error scheduled %d retries", m.ui.retries)
	}
	if !strings.Contains(m.ui.noticeMsg, "boom") {
		t.Fatalf("notice = %q", m.ui.noticeMsg)
	}
}

func TestModelRetryableErrorRetries(t *testing.T) {
	p := provider.Func(func(ctx context.Context, q provider.Query) (provider.Result, error) {
		return nil, &provider.FetchError{Op: "fetch", StatusCode: 503, Retryable: true, Err: errors.New("unavailable")}
	})
	m := newTestModel(t, p)
	_, cmd := m.Update(tea.WindowSizeMsg{Width: 100, Height: 10})
	m.Update(cmd())

	if m.ui.retries != 1 {
		t.Fatalf("retries = %d, want 1", m.ui.retries)
	}
	if cmd := m.retry(retryMsg{gen: m.engine.Generation() + 1}); cmd != nil {
		t.Fatal("retry for an old generation should be ignored")
	}
	if cmd := m.retry(retryMsg{gen: m.engine.Generation()}); cmd == nil {
		t.Fatal("retry for the current generation should fetch")
	}
}

func TestSortByStatus(t *testing.T) {
	m := newTestModel(t, stubResult(map[string]provider.StatusCounts{
		"web":  {OK: 3},
		"api":  {Error: 1},
		"cron": {Missed: 1},
	}))
	sized(t, m, 100, 10)

	tests := []struct {
		mode sortMode
		want []string
	}{
		{sortName, []string{"api", "cron", "web"}},
		{sortStatus, []string{"api", "cron", "web"}},
		{sortOriginal, []string{"web", "api", "cron"}},
	}
	for _, tc := range tests {
		t.Run(tc.mode.String(), func(t *testing.T) {
			m.Update(keyMsg("s"))
			if m.data.sort != tc.mode {
				t.Fatalf("sort = %s, want %s", m.data.sort, tc.mode)
			}
			if got := displayedSlugs(m); strings.Join(got, ",") != strings.Join(tc.want, ",") {
				t.Fatalf("rows = %v, want %v", got, tc.want)
			}
			for i, slug := range tc.want {
				if k, _ := m.engine.Key(i); k != slug {
					t.Fatalf("engine row %d = %q, want %q", i, k, slug)
				}
			}
		})
	}
}

func TestSortKeepsCursorOnMonitor(t *testing.T) {
	m := newTestModel(t, stubResult(map[string]provider.StatusCounts{"api": {Error: 1}}))
	sized(t, m, 100, 10)
	m.setCursor(2) // cron

	m.Update(keyMsg("s")) // name: api, cron, web
	if row, _ := m.currentRow(); row.slug != "cron" {
		t.Fatalf("cursor on %q, want cron", row.slug)
	}
}

func TestFilterCommand(t *testing.T) {
	m := newTestModel(t, stubResult(nil))
	sized(t, m, 100, 10)

	m.Update(keyMsg("f"))
	if m.ui.mode != modeCommand || m.ui.command.cmd != CmdFilter {
		t.Fatal("f did not open the filter prompt")
	}
	for _, r := range "^(web|cron)" {
		m.Update(keyMsg(string(r)))
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if got := displayedSlugs(m); strings.Join(got, ",") != "web,cron" {
		t.Fatalf("rows = %v", got)
	}
	if cmd == nil {
		t.Fatal("a new key set should fetch")
	}
	if m.ui.mode != modeView {
		t.Fatal("still in command mode")
	}

	m.Update(keyMsg("F"))
	if got := len(m.data.filteredIndices); got != 3 {
		t.Fatalf("after clear: %d rows", got)
	}
}

func TestFilterInvalidRegex(t *testing.T) {
	m := newTestModel(t, stubResult(nil))
	if _, err := m.setFilterPattern("(["); err == nil {
		t.Fatal("expected regex error")
	}
	if got := len(m.data.filteredIndices); got != 3 {
		t.Fatalf("rows changed on bad pattern: %d", got)
	}
}

func TestMarksOnly(t *testing.T) {
	m := newTestModel(t, stubResult(nil))
	sized(t, m, 100, 10)

	m.setCursor(1)
	m.Update(keyMsg("m"))
	m.Update(keyMsg("r"))
	if !m.isMarked(1) {
		t.Fatal("row 1 not marked")
	}

	m.Update(keyMsg("M"))
	if got := displayedSlugs(m); len(got) != 1 || got[0] != "api" {
		t.Fatalf("marked rows = %v", got)
	}

	m.Update(keyMsg("m"))
	m.Update(keyMsg("c"))
	if m.hasRows() {
		t.Fatal("unmarked row still listed in marks-only mode")
	}
}

func TestJumpBetweenMarks(t *testing.T) {
	m := newTestModel(t, stubResult(nil))
	sized(t, m, 100, 10)
	m.data.markedRows[m.data.monitors[2].id] = MarkGreen

	m.Update(keyMsg("n"))
	if m.cursor != 2 {
		t.Fatalf("next mark: cursor %d", m.cursor)
	}
	m.Update(keyMsg("N"))
	if m.cursor != 2 {
		t.Fatalf("no previous mark, cursor moved to %d", m.cursor)
	}
}

func TestJumpToLine(t *testing.T) {
	tests := []struct {
		input      string
		wantCursor int
		wantNotice bool
	}{
		{"2", 1, false},
		{"3", 2, false},
		{"9", 0, true},
		{"x", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			m := newTestModel(t, stubResult(nil))
			sized(t, m, 100, 10)
			m.Update(keyMsg(":"))
			m.Update(keyMsg(tc.input))
			m.Update(tea.KeyMsg{Type: tea.KeyEnter})
			if m.cursor != tc.wantCursor {
				t.Fatalf("cursor = %d, want %d", m.cursor, tc.wantCursor)
			}
			if got := m.ui.noticeMsg != ""; got != tc.wantNotice {
				t.Fatalf("notice %q, want notice %v", m.ui.noticeMsg, tc.wantNotice)
			}
		})
	}
}

func TestSearchWraps(t *testing.T) {
	m := newTestModel(t, stubResult(nil))
	sized(t, m, 100, 10)

	if !m.searchOnce("NIGHTLY") {
		t.Fatal("case-insensitive search failed")
	}
	if m.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", m.cursor)
	}
	m.setCursor(2)
	if !m.searchNext("frontend") {
		t.Fatal("search did not wrap")
	}
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want 0", m.cursor)
	}
}

func TestCursorMovementClamps(t *testing.T) {
	m := newTestModel(t, stubResult(nil))
	sized(t, m, 100, 10)

	m.Update(keyMsg("G"))
	if m.cursor != 2 {
		t.Fatalf("end: %d", m.cursor)
	}
	m.Update(keyMsg("j"))
	if m.cursor != 2 {
		t.Fatalf("moved past end: %d", m.cursor)
	}
	m.Update(keyMsg("g"))
	m.Update(keyMsg("k"))
	if m.cursor != 0 {
		t.Fatalf("moved before start: %d", m.cursor)
	}
}

func TestWindowKeysChangeToken(t *testing.T) {
	m := newTestModel(t, stubResult(nil))
	sized(t, m, 100, 10)
	before := m.engine.Token()

	m.Update(keyMsg("+"))
	if m.engine.Token() == before {
		t.Fatal("+ did not widen the window")
	}
	if !m.engine.Loading() {
		t.Fatal("window change did not start a fetch")
	}
	m.Update(keyMsg("-"))
	if m.engine.Token() != before {
		t.Fatalf("token = %s, want %s", m.engine.Token(), before)
	}
}

func TestEmptyMonitorList(t *testing.T) {
	cfg := config.Default()
	m := newModel(cfg, stubResult(nil), nil, "")
	_, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 8})
	if cmd != nil {
		t.Fatal("no rows should mean no fetch")
	}
	if !strings.Contains(m.View(), "No monitors") {
		t.Fatalf("missing empty state:\n%s", m.View())
	}
}

func TestDialogOpensAndCloses(t *testing.T) {
	m := newTestModel(t, stubResult(nil))
	sized(t, m, 100, 20)

	m.Update(keyMsg("?"))
	if m.activeDialog == nil || m.ui.mode != modeDialog {
		t.Fatal("help did not open")
	}
	if !strings.Contains(m.View(), "refresh") {
		t.Fatal("help view missing bindings")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.activeDialog != nil || m.ui.mode != modeView {
		t.Fatal("help did not close")
	}
}
