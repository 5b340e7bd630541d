package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"

	"github.com/andareed/siftly-timeline/dialogs"
	"github.com/andareed/siftly-timeline/logging"
	"github.com/andareed/siftly-timeline/measure"
	"github.com/andareed/siftly-timeline/provider"
	"github.com/andareed/siftly-timeline/timeline"
	"github.com/andareed/siftly-timeline/timewindow"
	"github.com/andareed/siftly-timeline/vgrid"
)

// markerWidth is the pill plus one space in front of each name.
const markerWidth = 2

// envIndent prefixes environment names under their monitor.
const envIndent = "  · "

func (m *model) View() string {
	if !m.ready {
		return "loading..."
	}

	if m.activeDialog != nil && m.activeDialog.IsVisible() {
		return dialogs.Overlay(m.terminalWidth, m.terminalHeight, m.activeDialog.View())
	}

	w, _ := m.bodySize()
	parts := []string{m.headerView(w), m.bodyView(), m.footerView(w)}
	return appstyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// headerView draws the column title and the time axis labels.
func (m *model) headerView(width int) string {
	if width <= 0 {
		return ""
	}
	vp := m.engine.Grid().Viewport()
	nameW := int(m.engine.CellOffset(0, timeline.ColumnTimeline).X - vp.ScrollLeftPx)
	nameW = max(0, min(nameW, width))

	title := truncate.String(" MONITOR", uint(nameW))
	line := padPlain(title, nameW) + m.axisLabels(width-nameW)
	return headerStyle.Render(line)
}

// axisLabels lays the tick labels out along a line of width cells. A label
// that would overlap the previous one is skipped.
func (m *model) axisLabels(width int) string {
	if width <= 0 {
		return ""
	}
	cfg := m.engine.CurrentTimeWindowConfig()
	buf := []rune(strings.Repeat(" ", width))
	layout := tickLayout(cfg)
	next := 0
	for _, tick := range cfg.TickOffsets() {
		x := int(tick.Offset)
		label := []rune("│" + tick.Time.Local().Format(layout))
		if x < next || x+len(label) > width {
			continue
		}
		copy(buf[x:], label)
		next = x + len(label) + 1
	}
	return string(buf)
}

func (m *model) bodyView() string {
	w, h := m.bodySize()
	if w <= 0 || h <= 0 {
		return ""
	}
	if !m.hasRows() {
		msg := "No monitors"
		if len(m.data.monitors) > 0 {
			msg = "No monitors match the current filter"
		}
		lines := make([]string, h)
		lines[0] = emptyStateStyle.Render(truncate.String(" "+msg, uint(w)))
		return strings.Join(lines, "\n")
	}

	cells := m.renderCells()
	lines := composeRows(cells, float64(w), h)
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// renderCells renders the laid out cells. A second pass runs when the
// first reported sizes that moved the layout.
func (m *model) renderCells() []vgrid.RenderedCell {
	grid := m.engine.Grid()
	var cells []vgrid.RenderedCell
	for pass := 0; pass < 2; pass++ {
		m.measureChanged = false
		cells = grid.Render(vgrid.CellRendererFunc(m.renderCell))
		if !m.measureChanged {
			break
		}
		logging.Debugf("renderCells: measurements changed on pass %d", pass)
	}
	return cells
}

// composeRows joins the cells of each row side by side and stacks the rows
// at their viewport offsets, clipped to height.
func composeRows(cells []vgrid.RenderedCell, width float64, height int) []string {
	var (
		lines []string
		row   []string
		cur   = -1
		top   int
	)
	flush := func() {
		if len(row) == 0 {
			return
		}
		block := strings.Split(lipgloss.JoinHorizontal(lipgloss.Top, row...), "\n")
		skip := max(0, -top)
		for i := skip; i < len(block) && len(lines) < height; i++ {
			lines = append(lines, block[i])
		}
		row = row[:0]
	}
	for _, c := range cells {
		if !c.Visible(width, float64(height)) {
			continue
		}
		if c.Row != cur {
			flush()
			cur = c.Row
			top = int(c.ViewY)
		}
		row = append(row, c.Content)
	}
	flush()
	return lines
}

func (m *model) renderCell(row, col int, box vgrid.Box) string {
	idx := m.data.filteredIndices[row]
	mon := m.data.monitors[idx]
	switch col {
	case timeline.ColumnName:
		return m.renderNameCell(row, mon, box)
	case timeline.ColumnTimeline:
		return m.renderTimelineCell(row, mon, box)
	}
	return ""
}

func (m *model) renderNameCell(row int, mon monitorRow, box vgrid.Box) string {
	width := int(box.Width)
	textW := max(1, width-markerWidth)
	label := mon.Label()

	var lines []string
	envs := m.rowEnvironments(mon)
	switch {
	case m.engine.Grid().Cache().Config().FixedRowHeight, len(envs) > 0:
		lines = []string{truncate.StringWithTail(label, uint(textW), "…")}
		for _, env := range envs {
			lines = append(lines, truncate.StringWithTail(envIndent+env, uint(textW), "…"))
		}
	default:
		for _, l := range strings.Split(wordwrap.String(label, textW), "\n") {
			lines = append(lines, truncate.String(l, uint(textW)))
		}
	}

	natural := measure.Size{
		Width:  float64(runewidth.StringWidth(label) + markerWidth + 1),
		Height: float64(len(lines)),
	}
	for _, env := range envs {
		natural.Width = max(natural.Width, float64(runewidth.StringWidth(envIndent+env)+markerWidth+1))
	}
	if m.engine.Grid().ReportMeasured(box.Epoch, row, timeline.ColumnName, natural) {
		m.measureChanged = true
	}

	style := rowTextStyle
	if row == m.cursor {
		style = rowSelectedTextStyle
	}
	marker := m.getRowMarker(mon.id)
	height := max(1, int(box.Height))
	out := make([]string, height)
	for i := range out {
		text := ""
		if i < len(lines) {
			text = lines[i]
			if m.ui.searchQuery != "" {
				text = restoreRowStyleAfterReset(highlightMatches(text, m.ui.searchQuery), styleSeq(style))
			}
		}
		pad := max(0, textW-lipgloss.Width(text))
		prefix := defaultMarker
		if i == 0 {
			prefix = marker
		}
		out[i] = prefix + style.Render(" "+text+strings.Repeat(" ", pad))
	}
	return strings.Join(out, "\n")
}

// renderTimelineCell draws the summed strip of a monitor, followed by one
// strip per environment when the row shows its environments.
func (m *model) renderTimelineCell(row int, mon monitorRow, box vgrid.Box) string {
	envs := m.rowEnvironments(mon)
	natural := measure.Size{Width: box.Width, Height: float64(1 + len(envs))}
	if m.engine.Grid().ReportMeasured(box.Epoch, row, timeline.ColumnTimeline, natural) {
		m.measureChanged = true
	}
	width := int(box.Width)
	cfg := m.engine.CurrentTimeWindowConfig()
	lines := []string{renderStrip(m.engine.Buckets(mon.slug), cfg, width)}
	for _, env := range envs {
		lines = append(lines, renderStrip(m.engine.EnvironmentBuckets(mon.slug, env), cfg, width))
	}

	height := max(1, int(box.Height))
	blank := strings.Repeat(" ", width)
	for len(lines) < height {
		lines = append(lines, blank)
	}
	return strings.Join(lines[:height], "\n")
}

// rowEnvironments returns the environments drawn as their own lines under
// mon. Rows of a fixed height grid and monitors reporting fewer than two
// environments show only the summed strip.
func (m *model) rowEnvironments(mon monitorRow) []string {
	if m.engine.Grid().Cache().Config().FixedRowHeight {
		return nil
	}
	envs := m.engine.Environments(mon.slug)
	if len(envs) < 2 {
		return nil
	}
	return envs
}

// renderStrip draws one character per cell, coloured by the worst outcome
// of the bucket under it. Runs of equal status share one style call.
func renderStrip(buckets []provider.StatusCounts, cfg timewindow.Config, width int) string {
	if width <= 0 {
		return ""
	}
	if cfg.IsZero() || cfg.BucketPixelWidth <= 0 {
		return strings.Repeat(" ", width)
	}

	var b strings.Builder
	run, runLen := provider.Status(-1), 0
	emit := func() {
		if runLen == 0 {
			return
		}
		if run < 0 {
			b.WriteString(strings.Repeat(" ", runLen))
		} else {
			b.WriteString(statusStyles[run].Render(strings.Repeat(statusGlyphs[run], runLen)))
		}
	}
	for x := 0; x < width; x++ {
		st := provider.Status(-1)
		if i := int(float64(x) / cfg.BucketPixelWidth); i < cfg.BucketCount {
			st = provider.StatusNone
			if i < len(buckets) {
				st = buckets[i].Worst()
			}
		}
		if st != run {
			emit()
			run, runLen = st, 0
		}
		runLen++
	}
	emit()
	return b.String()
}

func (m *model) getRowMarker(id uint64) string {
	switch m.data.markedRows[id] {
	case MarkRed:
		return redMarker.Render(pillMarker)
	case MarkGreen:
		return greenMarker.Render(pillMarker)
	case MarkAmber:
		return amberMarker.Render(pillMarker)
	default:
		return defaultMarker
	}
}

// restoreRowStyleAfterReset re-applies the row colours after each reset
// emitted by an inner highlight.
func restoreRowStyleAfterReset(s string, rowPrefix string) string {
	if rowPrefix == "" {
		return s
	}
	reset := termenv.CSI + termenv.ResetSeq + "m"
	if !strings.Contains(s, reset) {
		return s
	}
	return strings.ReplaceAll(s, reset, reset+rowPrefix)
}

func styleSeq(s lipgloss.Style) string {
	fg, _ := s.GetForeground().(lipgloss.Color)
	bg, _ := s.GetBackground().(lipgloss.Color)
	return colorSeq(bg, true) + colorSeq(fg, false)
}

func colorSeq(c lipgloss.Color, bg bool) string {
	value := string(c)
	if value == "" {
		if bg {
			return termenv.CSI + "49m"
		}
		return termenv.CSI + "39m"
	}
	tc := lipgloss.ColorProfile().Color(value)
	if tc == nil {
		return ""
	}
	seq := tc.Sequence(bg)
	if seq == "" {
		return ""
	}
	return termenv.CSI + seq + "m"
}
