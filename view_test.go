package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/andareed/siftly-timeline/config"
	"github.com/andareed/siftly-timeline/provider"
	"github.com/andareed/siftly-timeline/timewindow"
	"github.com/andareed/siftly-timeline/vgrid"
)

func TestRenderStrip(t *testing.T) {
	cfg := timewindow.Config{
		Start:                 time.Unix(0, 0),
		BucketDurationSeconds: 60,
		BucketCount:           3,
		BucketPixelWidth:      2,
	}
	tests := []struct {
		name      string
		buckets   []provider.StatusCounts
		cfg       timewindow.Config
		width     int
		wantFull  int
		wantDots  int
		wantBlank int
	}{
		{
			name:      "mixed with tail",
			buckets:   []provider.StatusCounts{{OK: 1}, {Error: 1}},
			cfg:       cfg,
			width:     8,
			wantFull:  4,
			wantDots:  2,
			wantBlank: 2,
		},
		{
			name:     "no data yet",
			cfg:      cfg,
			width:    6,
			wantDots: 6,
		},
		{
			name:      "zero config",
			width:     5,
			wantBlank: 5,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := renderStrip(tc.buckets, tc.cfg, tc.width)
			if got := lipgloss.Width(out); got != tc.width {
				t.Fatalf("width = %d, want %d", got, tc.width)
			}
			if got := strings.Count(out, statusGlyphs[provider.StatusOK]); got != tc.wantFull {
				t.Errorf("full cells = %d, want %d", got, tc.wantFull)
			}
			if got := strings.Count(out, statusGlyphs[provider.StatusNone]); got != tc.wantDots {
				t.Errorf("empty buckets = %d, want %d", got, tc.wantDots)
			}
			if got := strings.Count(out, " "); got != tc.wantBlank {
				t.Errorf("blank cells = %d, want %d", got, tc.wantBlank)
			}
		})
	}
}

func TestComposeRowsClipsPartialRows(t *testing.T) {
	cells := []vgrid.RenderedCell{
		{Box: vgrid.Box{Row: 0, Column: 0, ViewY: -1, Width: 2, Height: 2}, Content: "a1\na2"},
		{Box: vgrid.Box{Row: 0, Column: 1, X: 2, ViewX: 2, ViewY: -1, Width: 2, Height: 2}, Content: "b1\nb2"},
		{Box: vgrid.Box{Row: 1, Column: 0, Y: 2, ViewY: 1, Width: 2, Height: 1}, Content: "c1"},
		{Box: vgrid.Box{Row: 1, Column: 1, X: 2, Y: 2, ViewX: 2, ViewY: 1, Width: 2, Height: 1}, Content: "d1"},
		{Box: vgrid.Box{Row: 2, Column: 0, Y: 3, ViewY: 2, Width: 2, Height: 1}, Content: "e1"},
	}
	got := composeRows(cells, 4, 2)
	want := []string{"a2b2", "c1d1"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("lines = %q, want %q", got, want)
	}
}

func TestAxisLabelsSkipOverlaps(t *testing.T) {
	m := newTestModel(t, stubResult(nil))
	sized(t, m, 100, 10)

	line := m.axisLabels(40)
	if lipgloss.Width(line) != 40 {
		t.Fatalf("axis width = %d", lipgloss.Width(line))
	}
	if !strings.HasPrefix(line, "│") {
		t.Fatalf("first tick not at the origin: %q", line)
	}
	for _, f := range strings.Split(line, "│")[1:] {
		if len(strings.TrimSpace(f)) == 0 {
			t.Fatalf("empty label in %q", line)
		}
	}
}

func TestHeaderFillsWidth(t *testing.T) {
	m := newTestModel(t, stubResult(map[string]provider.StatusCounts{"web": {OK: 1}}))
	sized(t, m, 100, 10)
	m.View()

	w, _ := m.bodySize()
	if got := lipgloss.Width(m.headerView(w)); got != w {
		t.Fatalf("header width = %d, want %d", got, w)
	}
}

func TestEnvironmentLines(t *testing.T) {
	envs := provider.Func(func(ctx context.Context, q provider.Query) (provider.Result, error) {
		return provider.Result{
			"web": {{Timestamp: q.Since, Value: provider.StatusCounts{OK: 1, Error: 1}, Envs: map[string]provider.StatusCounts{
				"production": {OK: 1}, "staging": {Error: 1},
			}}},
			"api": {{Timestamp: q.Since, Value: provider.StatusCounts{OK: 1}, Envs: map[string]provider.StatusCounts{
				"production": {OK: 1},
			}}},
		}, nil
	})
	tests := []struct {
		name       string
		fixed      bool
		wantWeb    float64
		wantAPI    float64
		wantListed bool
	}{
		{"variable height", false, 3, 1, true},
		{"fixed height", true, 1, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Timeline.Window = "1h"
			cfg.UI.RefreshInterval = 0
			cfg.Grid.FixedRowHeight = tt.fixed
			m := newModel(cfg, envs, testRows(), "monitors.csv")
			sized(t, m, 100, 12)
			m.View()
			view := m.View()

			rows := map[string]float64{"web": tt.wantWeb, "api": tt.wantAPI}
			for slug, want := range rows {
				row, ok := m.engine.RowOf(slug)
				if !ok {
					t.Fatalf("%s not displayed", slug)
				}
				if got := m.engine.Grid().Cache().RowHeight(row); got != want {
					t.Errorf("%s row height = %v, want %v", slug, got, want)
				}
			}
			for _, env := range []string{"· production", "· staging"} {
				if got := strings.Contains(view, env); got != tt.wantListed {
					t.Errorf("view lists %q = %v, want %v:\n%s", env, got, tt.wantListed, view)
				}
			}
		})
	}
}

func TestRestoreRowStyleAfterReset(t *testing.T) {
	in := "a\x1b[0mb"
	if got := restoreRowStyleAfterReset(in, "X"); got != "a\x1b[0mXb" {
		t.Fatalf("got %q", got)
	}
	if got := restoreRowStyleAfterReset(in, ""); got != in {
		t.Fatalf("empty prefix changed input: %q", got)
	}
}
