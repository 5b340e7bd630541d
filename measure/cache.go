// Package measure stores observed and estimated cell sizes for a virtual grid
// so offsets can be accumulated without re-measuring every cell each frame.
package measure

import (
	"math"
	"slices"
	"sort"
)

// NoDynamicColumn disables the sampled-width column.
const NoDynamicColumn = -1

// Size is a cell size in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Entry is the cache record for one cell.
type Entry struct {
	Row      int
	Column   int
	Width    float64
	Height   float64
	Measured bool
}

// Size returns the entry's dimensions.
func (e Entry) Size() Size {
	return Size{Width: e.Width, Height: e.Height}
}

// Config holds the estimates and column rules for a Cache.
type Config struct {
	EstimatedWidth  float64
	EstimatedHeight float64
	// ColumnWidths fixes the width of the leading columns. Columns past the
	// end of the slice use EstimatedWidth.
	ColumnWidths []float64
	// DynamicColumn is sized from measurements, or NoDynamicColumn.
	DynamicColumn   int
	MinDynamicWidth float64
	MaxDynamicWidth float64 // 0 means unbounded
	// SampleSize bounds how many visible rows feed the dynamic column.
	SampleSize int
	// FixedRowHeight makes every row EstimatedHeight tall regardless of
	// measured heights.
	FixedRowHeight bool
}

// DefaultConfig returns a single-line, fixed-height configuration.
func DefaultConfig() Config {
	return Config{
		EstimatedWidth:  10,
		EstimatedHeight: 1,
		DynamicColumn:   NoDynamicColumn,
		SampleSize:      50,
		FixedRowHeight:  true,
	}
}

func (c Config) normalized() Config {
	out := c
	if !(out.EstimatedWidth > 0) {
		out.EstimatedWidth = 1
	}
	if !(out.EstimatedHeight > 0) {
		out.EstimatedHeight = 1
	}
	if out.SampleSize <= 0 {
		out.SampleSize = 50
	}
	if out.DynamicColumn < 0 {
		out.DynamicColumn = NoDynamicColumn
	}
	out.ColumnWidths = slices.Clone(c.ColumnWidths)
	return out
}

// Cache answers "what size is cell (row, col)". It starts from estimates and
// switches to measured sizes as the renderer reports them. It is not safe for
// concurrent use; a single grid owns it.
type Cache struct {
	cfg Config

	cells      map[int]map[int]*Entry
	rowHeights map[int]float64

	// sorted rows whose height differs from the estimate, with prefix sums
	// of (height - estimate); rebuilt lazily
	deltaRows   []int
	deltaPrefix []float64
	deltaDirty  bool

	sample       []int
	dynamicWidth float64
	dynamicDirty bool

	epoch uint64
}

// New returns an empty cache.
func New(cfg Config) *Cache {
	c := &Cache{cfg: cfg.normalized()}
	c.reset()
	return c
}

func (c *Cache) reset() {
	c.cells = make(map[int]map[int]*Entry)
	c.rowHeights = make(map[int]float64)
	c.deltaRows = nil
	c.deltaPrefix = []float64{0}
	c.deltaDirty = false
	c.sample = nil
	c.dynamicDirty = true
}

// Config returns a copy of the active configuration.
func (c *Cache) Config() Config {
	out := c.cfg
	out.ColumnWidths = slices.Clone(c.cfg.ColumnWidths)
	return out
}

// Epoch increments on every Invalidate. Reports tagged with an older epoch
// refer to cells that no longer exist.
func (c *Cache) Epoch() uint64 {
	return c.epoch
}

// Invalidate drops every entry. Call it whenever the identity or order of the
// underlying rows changes.
func (c *Cache) Invalidate() {
	c.reset()
	c.epoch++
}

// SetColumnWidths replaces the fixed column widths. Measurements are kept.
func (c *Cache) SetColumnWidths(widths []float64) {
	c.cfg.ColumnWidths = slices.Clone(widths)
	c.dynamicDirty = true
}

// Len returns the number of cells with an entry.
func (c *Cache) Len() int {
	n := 0
	for _, row := range c.cells {
		n += len(row)
	}
	return n
}

// Touch records an estimated entry for a cell entering view. An existing
// entry, measured or not, is returned unchanged.
func (c *Cache) Touch(row, col int) Entry {
	if e, ok := c.lookup(row, col); ok {
		return *e
	}
	est := c.Estimate(row, col)
	e := &Entry{Row: row, Column: col, Width: est.Width, Height: est.Height}
	r := c.cells[row]
	if r == nil {
		r = make(map[int]*Entry)
		c.cells[row] = r
	}
	r[col] = e
	return *e
}

// Entry returns the stored entry for a cell.
func (c *Cache) Entry(row, col int) (Entry, bool) {
	e, ok := c.lookup(row, col)
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

func (c *Cache) lookup(row, col int) (*Entry, bool) {
	r, ok := c.cells[row]
	if !ok {
		return nil, false
	}
	e, ok := r[col]
	return e, ok
}

// IsMeasured reports whether the renderer has reported the cell's size.
func (c *Cache) IsMeasured(row, col int) bool {
	e, ok := c.lookup(row, col)
	return ok && e.Measured
}

// Estimate returns the configured size for a cell, ignoring measurements.
func (c *Cache) Estimate(row, col int) Size {
	return Size{Width: c.fixedWidth(col), Height: c.cfg.EstimatedHeight}
}

// Size returns the measured size of a cell, or its estimate.
func (c *Cache) Size(row, col int) Size {
	if e, ok := c.lookup(row, col); ok && e.Measured {
		return e.Size()
	}
	return c.Estimate(row, col)
}

// ReportMeasured stores the real size of a cell. Reporting the same size
// twice is a no-op and reports for different cells commute. It returns true
// when the cache changed. Negative or non-finite sizes and zero heights are
// ignored.
func (c *Cache) ReportMeasured(row, col int, size Size) bool {
	if row < 0 || col < 0 || !validLength(size.Width) || !validLength(size.Height) || size.Height <= 0 {
		return false
	}
	c.Touch(row, col)
	e, _ := c.lookup(row, col)
	if e.Measured && e.Width == size.Width && e.Height == size.Height {
		return false
	}
	e.Width, e.Height, e.Measured = size.Width, size.Height, true

	c.updateRowHeight(row)
	if col == c.cfg.DynamicColumn && slices.Contains(c.sample, row) {
		c.dynamicDirty = true
	}
	return true
}

func validLength(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

func (c *Cache) updateRowHeight(row int) {
	h, found := 0.0, false
	for _, e := range c.cells[row] {
		if e.Measured && (!found || e.Height > h) {
			h, found = e.Height, true
		}
	}
	prev, had := c.rowHeights[row]
	switch {
	case !found && had:
		delete(c.rowHeights, row)
		c.deltaDirty = true
	case found && (!had || prev != h):
		c.rowHeights[row] = h
		c.deltaDirty = true
	}
}

// RowHeight returns the height used to lay out a row: the tallest measured
// cell, or the estimate when nothing is measured or rows are fixed height.
func (c *Cache) RowHeight(row int) float64 {
	if c.cfg.FixedRowHeight {
		return c.cfg.EstimatedHeight
	}
	if h, ok := c.rowHeights[row]; ok {
		return h
	}
	return c.cfg.EstimatedHeight
}

// RowOffset returns the pixel offset of the top edge of row.
func (c *Cache) RowOffset(row int) float64 {
	if row <= 0 {
		return 0
	}
	base := float64(row) * c.cfg.EstimatedHeight
	if c.cfg.FixedRowHeight {
		return base
	}
	c.rebuildDeltas()
	k := sort.SearchInts(c.deltaRows, row)
	return base + c.deltaPrefix[k]
}

// TotalHeight returns the height of the first rowCount rows.
func (c *Cache) TotalHeight(rowCount int) float64 {
	return c.RowOffset(rowCount)
}

// RowAt returns the row containing pixel offset px among rowCount rows,
// clamped to [0, rowCount-1]. It returns -1 when rowCount is 0.
func (c *Cache) RowAt(px float64, rowCount int) int {
	if rowCount <= 0 {
		return -1
	}
	if px <= 0 {
		return 0
	}
	r := sort.Search(rowCount, func(i int) bool {
		return c.RowOffset(i+1) > px
	})
	if r >= rowCount {
		return rowCount - 1
	}
	return r
}

func (c *Cache) rebuildDeltas() {
	if !c.deltaDirty {
		return
	}
	c.deltaRows = c.deltaRows[:0]
	for row, h := range c.rowHeights {
		if h != c.cfg.EstimatedHeight {
			c.deltaRows = append(c.deltaRows, row)
		}
	}
	sort.Ints(c.deltaRows)
	c.deltaPrefix = c.deltaPrefix[:0]
	c.deltaPrefix = append(c.deltaPrefix, 0)
	sum := 0.0
	for _, row := range c.deltaRows {
		sum += c.rowHeights[row] - c.cfg.EstimatedHeight
		c.deltaPrefix = append(c.deltaPrefix, sum)
	}
	c.deltaDirty = false
}

// SetSample sets the rows whose measurements size the dynamic column. Only
// the first SampleSize rows are kept.
func (c *Cache) SetSample(rows []int) {
	if len(rows) > c.cfg.SampleSize {
		rows = rows[:c.cfg.SampleSize]
	}
	if slices.Equal(rows, c.sample) {
		return
	}
	c.sample = slices.Clone(rows)
	c.dynamicDirty = true
}

// Sample returns the rows currently feeding the dynamic column.
func (c *Cache) Sample() []int {
	return slices.Clone(c.sample)
}

// ColumnWidth returns the layout width of col.
func (c *Cache) ColumnWidth(col int) float64 {
	if col == c.cfg.DynamicColumn {
		return c.dynamicColumnWidth()
	}
	return c.fixedWidth(col)
}

func (c *Cache) fixedWidth(col int) float64 {
	if col >= 0 && col < len(c.cfg.ColumnWidths) && c.cfg.ColumnWidths[col] >= 0 {
		return c.cfg.ColumnWidths[col]
	}
	return c.cfg.EstimatedWidth
}

func (c *Cache) dynamicColumnWidth() float64 {
	if !c.dynamicDirty {
		return c.dynamicWidth
	}
	col := c.cfg.DynamicColumn
	w, found := 0.0, false
	for _, row := range c.sample {
		if e, ok := c.lookup(row, col); ok && e.Measured && (!found || e.Width > w) {
			w, found = e.Width, true
		}
	}
	if !found {
		w = c.fixedWidth(col)
	}
	if w < c.cfg.MinDynamicWidth {
		w = c.cfg.MinDynamicWidth
	}
	if c.cfg.MaxDynamicWidth > 0 && w > c.cfg.MaxDynamicWidth {
		w = c.cfg.MaxDynamicWidth
	}
	c.dynamicWidth = w
	c.dynamicDirty = false
	return w
}

// ColumnOffset returns the pixel offset of the left edge of col.
func (c *Cache) ColumnOffset(col int) float64 {
	x := 0.0
	for i := 0; i < col; i++ {
		x += c.ColumnWidth(i)
	}
	return x
}

// TotalWidth returns the width of the first colCount columns.
func (c *Cache) TotalWidth(colCount int) float64 {
	return c.ColumnOffset(colCount)
}

// ColumnAt returns the column containing pixel offset px among colCount
// columns, clamped to [0, colCount-1]. It returns -1 when colCount is 0.
func (c *Cache) ColumnAt(px float64, colCount int) int {
	if colCount <= 0 {
		return -1
	}
	x := 0.0
	for i := 0; i < colCount; i++ {
		x += c.ColumnWidth(i)
		if x > px {
			return i
		}
	}
	return colCount - 1
}
