// Package vgrid decides which rows and columns of a large grid are drawn
// inside a fixed viewport and where each drawn cell sits.
package vgrid

import (
	"math"

	"github.com/andareed/siftly-timeline/logging"
	"github.com/andareed/siftly-timeline/measure"
)

// ViewportState is the observed geometry of the hosting viewport.
type ViewportState struct {
	ScrollOffsetPx    float64
	ScrollLeftPx      float64
	ContainerWidthPx  float64
	ContainerHeightPx float64
}

// ScrollRequest asks the next layout pass to bring TargetRow into view.
type ScrollRequest struct {
	TargetRow int
}

// Options tunes a Scheduler.
type Options struct {
	// OverscanRows extra rows are laid out above and below the viewport.
	OverscanRows int
	// OverscanColumns extra columns are laid out left and right.
	OverscanColumns int
}

// DefaultOptions returns a small overscan margin.
func DefaultOptions() Options {
	return Options{OverscanRows: 3, OverscanColumns: 1}
}

// Layout is the result of one layout pass.
type Layout struct {
	// VisibleRows and VisibleColumns intersect the viewport.
	VisibleRows    Range
	VisibleColumns Range
	// Rows and Columns include overscan; Cells covers exactly these.
	Rows    Range
	Columns Range
	Cells   []Box
	// Viewport is the geometry after scroll requests and clamping.
	Viewport ViewportState
	Epoch    uint64
}

// CellRenderer draws one cell. It is called once per laid out cell per
// Render call and reports real sizes back through Scheduler.ReportMeasured.
type CellRenderer interface {
	RenderCell(row, col int, box Box) string
}

// CellRendererFunc adapts a function to CellRenderer.
type CellRendererFunc func(row, col int, box Box) string

// RenderCell calls f.
func (f CellRendererFunc) RenderCell(row, col int, box Box) string {
	return f(row, col, box)
}

// RenderedCell is one cell's output from Render.
type RenderedCell struct {
	Box
	Content string
}

// Scheduler owns the viewport state and measurement cache of one grid and
// recomputes the laid out range whenever its inputs change. It is not safe
// for concurrent use.
type Scheduler struct {
	cache *measure.Cache
	opts  Options

	vp       ViewportState
	identity string
	rowCount int
	colCount int

	pending *ScrollRequest
	// target is the row of the last applied ScrollRequest, or -1. It is
	// scrolled back into view when rows up to it are measured, until the
	// user scrolls or the row set is replaced.
	target int

	layout Layout
	dirty  bool
}

// New returns a scheduler with an empty row set and its own cache.
func New(cacheCfg measure.Config, opts Options) *Scheduler {
	if opts.OverscanRows < 0 {
		opts.OverscanRows = 0
	}
	if opts.OverscanColumns < 0 {
		opts.OverscanColumns = 0
	}
	return &Scheduler{
		cache: measure.New(cacheCfg),
		opts:   opts,
		target: -1,
		dirty:  true,
	}
}

// Cache exposes the scheduler's cache for read access. Mutating it directly
// bypasses scroll anchoring; use ReportMeasured instead.
func (s *Scheduler) Cache() *measure.Cache {
	return s.cache
}

// Viewport returns the current viewport state.
func (s *Scheduler) Viewport() ViewportState {
	return s.vp
}

// RowCount returns the number of rows in the current row set.
func (s *Scheduler) RowCount() int {
	return s.rowCount
}

// ColumnCount returns the number of columns.
func (s *Scheduler) ColumnCount() int {
	return s.colCount
}

// Identity returns the current row-set identity.
func (s *Scheduler) Identity() string {
	return s.identity
}

// Epoch returns the cache epoch measurements must be tagged with.
func (s *Scheduler) Epoch() uint64 {
	return s.cache.Epoch()
}

// SetRowSet installs a row set. A different identity means rows were
// filtered, sorted or replaced, so every cached size is dropped. The scroll
// offset is clamped to the new content either way.
func (s *Scheduler) SetRowSet(identity string, rowCount int) {
	if rowCount < 0 {
		rowCount = 0
	}
	if identity != s.identity {
		logging.Debugf("vgrid: row set %q -> %q (%d rows), invalidating", s.identity, identity, rowCount)
		s.cache.Invalidate()
		s.identity = identity
		s.target = -1
	}
	s.rowCount = rowCount
	if s.pending != nil && s.pending.TargetRow >= rowCount {
		s.pending = nil
	}
	if s.target >= rowCount {
		s.target = -1
	}
	s.clampScroll()
	s.dirty = true
}

// SetColumnCount sets the number of columns.
func (s *Scheduler) SetColumnCount(n int) {
	if n < 0 {
		n = 0
	}
	if n == s.colCount {
		return
	}
	s.colCount = n
	s.clampScroll()
	s.dirty = true
}

// SetColumnWidths replaces the fixed column widths in the cache.
func (s *Scheduler) SetColumnWidths(widths []float64) {
	s.cache.SetColumnWidths(widths)
	s.clampScroll()
	s.dirty = true
}

// Resize records a new container size. Negative sizes are treated as 0.
func (s *Scheduler) Resize(width, height float64) {
	width, height = nonNegative(width), nonNegative(height)
	if width == s.vp.ContainerWidthPx && height == s.vp.ContainerHeightPx {
		return
	}
	s.vp.ContainerWidthPx = width
	s.vp.ContainerHeightPx = height
	s.clampScroll()
	s.dirty = true
}

// ScrollTo moves the vertical scroll offset. It cancels a pending
// ScrollRequest.
func (s *Scheduler) ScrollTo(px float64) {
	s.cancelPending()
	s.target = -1
	s.vp.ScrollOffsetPx = px
	s.clampScroll()
	s.dirty = true
}

// ScrollBy moves the vertical scroll offset by dy.
func (s *Scheduler) ScrollBy(dy float64) {
	s.ScrollTo(s.vp.ScrollOffsetPx + dy)
}

// ScrollLeftTo moves the horizontal scroll offset. It cancels a pending
// ScrollRequest.
func (s *Scheduler) ScrollLeftTo(px float64) {
	s.cancelPending()
	s.vp.ScrollLeftPx = px
	s.clampScroll()
	s.dirty = true
}

// ScrollLeftBy moves the horizontal scroll offset by dx.
func (s *Scheduler) ScrollLeftBy(dx float64) {
	s.ScrollLeftTo(s.vp.ScrollLeftPx + dx)
}

// ScrollToRow asks the next layout pass to scroll row into view. Rows past
// the end are clamped to the last row; with no rows the call does nothing.
func (s *Scheduler) ScrollToRow(row int) {
	if s.rowCount == 0 {
		return
	}
	row = max(0, min(row, s.rowCount-1))
	s.pending = &ScrollRequest{TargetRow: row}
	s.dirty = true
}

// PendingScroll returns the scroll request waiting for the next layout.
func (s *Scheduler) PendingScroll() (ScrollRequest, bool) {
	if s.pending == nil {
		return ScrollRequest{}, false
	}
	return *s.pending, true
}

func (s *Scheduler) cancelPending() {
	if s.pending != nil {
		logging.Debugf("vgrid: scroll to row %d cancelled by user scroll", s.pending.TargetRow)
		s.pending = nil
	}
}

// ReportMeasured stores a cell's real size. Reports tagged with an older
// epoch or naming a row outside the row set are dropped. When a row above
// the first visible row changes height, the scroll offset moves by the same
// amount so the visible content stays put. A row at or above the last
// ScrollToRow target instead re-queues that target, so the next layout
// scrolls it back into view with the new sizes.
func (s *Scheduler) ReportMeasured(epoch uint64, row, col int, size measure.Size) bool {
	if epoch != s.cache.Epoch() || row < 0 || row >= s.rowCount || col < 0 {
		return false
	}
	retarget := s.target >= 0 && row <= s.target
	anchor := s.layout.VisibleRows.Start
	anchored := s.pending == nil && !retarget && row < anchor && s.layout.Epoch == epoch
	before := s.cache.RowOffset(anchor)

	if !s.cache.ReportMeasured(row, col, size) {
		return false
	}
	if retarget && s.pending == nil {
		s.pending = &ScrollRequest{TargetRow: s.target}
	}
	if anchored {
		if delta := s.cache.RowOffset(anchor) - before; delta != 0 {
			s.vp.ScrollOffsetPx += delta
		}
	}
	s.clampScroll()
	s.dirty = true
	return true
}

// Layout returns the current layout, recomputing it if any input changed
// since the previous pass. A pending ScrollRequest is consumed here.
func (s *Scheduler) Layout() Layout {
	if !s.dirty && s.pending == nil {
		return s.layout
	}

	if s.pending != nil {
		s.applyScrollRequest(s.pending.TargetRow)
		s.target = s.pending.TargetRow
		s.pending = nil
	}
	s.clampScroll()

	vr := s.visibleRows()
	sample := make([]int, 0, vr.Len())
	for r := vr.Start; r < vr.End; r++ {
		sample = append(sample, r)
	}
	s.cache.SetSample(sample)
	// the dynamic column may have changed width with the new sample
	s.clampScroll()

	vc := s.visibleColumns()
	rows := vr.grow(s.opts.OverscanRows, s.rowCount)
	cols := vc.grow(s.opts.OverscanColumns, s.colCount)

	cells := make([]Box, 0, rows.Len()*cols.Len())
	for r := rows.Start; r < rows.End; r++ {
		y := s.cache.RowOffset(r)
		h := s.cache.RowHeight(r)
		x := s.cache.ColumnOffset(cols.Start)
		for c := cols.Start; c < cols.End; c++ {
			e := s.cache.Touch(r, c)
			w := s.cache.ColumnWidth(c)
			cells = append(cells, Box{
				Row:      r,
				Column:   c,
				X:        x,
				Y:        y,
				ViewX:    x - s.vp.ScrollLeftPx,
				ViewY:    y - s.vp.ScrollOffsetPx,
				Width:    w,
				Height:   h,
				Measured: e.Measured,
				Epoch:    s.cache.Epoch(),
			})
			x += w
		}
	}

	s.layout = Layout{
		VisibleRows:    vr,
		VisibleColumns: vc,
		Rows:           rows,
		Columns:        cols,
		Cells:          cells,
		Viewport:       s.vp,
		Epoch:          s.cache.Epoch(),
	}
	s.dirty = false
	return s.layout
}

// Render lays out the grid and calls r once for every laid out cell.
func (s *Scheduler) Render(r CellRenderer) []RenderedCell {
	l := s.Layout()
	out := make([]RenderedCell, 0, len(l.Cells))
	for _, box := range l.Cells {
		out = append(out, RenderedCell{Box: box, Content: r.RenderCell(box.Row, box.Column, box)})
	}
	return out
}

// VisibleRowRange returns the rows intersecting the viewport.
func (s *Scheduler) VisibleRowRange() Range {
	return s.Layout().VisibleRows
}

// VisibleColumnRange returns the columns intersecting the viewport.
func (s *Scheduler) VisibleColumnRange() Range {
	return s.Layout().VisibleColumns
}

// RenderedRowRange returns the visible rows plus overscan.
func (s *Scheduler) RenderedRowRange() Range {
	return s.Layout().Rows
}

// CellOffset returns the absolute offset of a cell's top-left corner.
func (s *Scheduler) CellOffset(row, col int) Point {
	return Point{X: s.cache.ColumnOffset(col), Y: s.cache.RowOffset(row)}
}

// ContentHeight returns the height of all rows.
func (s *Scheduler) ContentHeight() float64 {
	return s.cache.TotalHeight(s.rowCount)
}

// ContentWidth returns the width of all columns.
func (s *Scheduler) ContentWidth() float64 {
	return s.cache.TotalWidth(s.colCount)
}

// applyScrollRequest scrolls the least amount that shows row entirely. A
// row taller than the viewport is aligned to the top.
func (s *Scheduler) applyScrollRequest(row int) {
	if row >= s.rowCount {
		return
	}
	top := s.cache.RowOffset(row)
	bottom := s.cache.RowOffset(row + 1)
	h := s.vp.ContainerHeightPx
	switch {
	case top < s.vp.ScrollOffsetPx || bottom-top >= h:
		s.vp.ScrollOffsetPx = top
	case bottom > s.vp.ScrollOffsetPx+h:
		s.vp.ScrollOffsetPx = bottom - h
	}
}

func (s *Scheduler) clampScroll() {
	s.vp.ScrollOffsetPx = clamp(s.vp.ScrollOffsetPx, s.ContentHeight()-s.vp.ContainerHeightPx)
	s.vp.ScrollLeftPx = clamp(s.vp.ScrollLeftPx, s.ContentWidth()-s.vp.ContainerWidthPx)
}

func (s *Scheduler) visibleRows() Range {
	if s.rowCount == 0 || s.vp.ContainerHeightPx <= 0 {
		return Range{}
	}
	top := s.vp.ScrollOffsetPx
	bottom := top + s.vp.ContainerHeightPx
	start := s.cache.RowAt(top, s.rowCount)
	end := s.cache.RowAt(bottom, s.rowCount)
	if s.cache.RowOffset(end) < bottom {
		end++
	}
	return Range{Start: start, End: max(start+1, min(end, s.rowCount))}
}

func (s *Scheduler) visibleColumns() Range {
	if s.colCount == 0 || s.vp.ContainerWidthPx <= 0 {
		return Range{}
	}
	left := s.vp.ScrollLeftPx
	right := left + s.vp.ContainerWidthPx
	start := s.cache.ColumnAt(left, s.colCount)
	end := s.cache.ColumnAt(right, s.colCount)
	if s.cache.ColumnOffset(end) < right {
		end++
	}
	return Range{Start: start, End: max(start+1, min(end, s.colCount))}
}

// clamp limits v to [0, hi]; a negative hi means everything fits.
func clamp(v, hi float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if hi < 0 {
		hi = 0
	}
	if v > hi {
		return hi
	}
	return v
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
