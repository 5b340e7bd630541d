// Package timeline ties the time-bucket derivation to the virtual grid: one
// row per monitor, a name column and a bucketed status strip.
package timeline

import (
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"slices"
	"strings"
	"time"

	"github.com/andareed/siftly-timeline/logging"
	"github.com/andareed/siftly-timeline/measure"
	"github.com/andareed/siftly-timeline/provider"
	"github.com/andareed/siftly-timeline/timewindow"
	"github.com/andareed/siftly-timeline/vgrid"
)

// Grid columns.
const (
	ColumnName = iota
	ColumnTimeline
	columnCount
)

// Options configures an Engine.
type Options struct {
	Buckets timewindow.Options
	Grid    measure.Config
	Layout  vgrid.Options
	// LabelWidth is reserved left of the timeline for the name column.
	LabelWidth float64
}

// DefaultOptions returns the engine defaults for a terminal front end.
func DefaultOptions() Options {
	grid := measure.DefaultConfig()
	grid.DynamicColumn = ColumnName
	grid.MinDynamicWidth = 8
	grid.MaxDynamicWidth = 32
	return Options{
		Buckets:    timewindow.DefaultOptions(),
		Grid:       grid,
		Layout:     vgrid.DefaultOptions(),
		LabelWidth: 32,
	}
}

// FetchRequest is a fetch the caller should run against a provider.
type FetchRequest struct {
	Generation uint64
	Query      provider.Query
}

// FetchResponse carries a provider result back to Apply.
type FetchResponse struct {
	Generation uint64
	Result     provider.Result
	Err        error
}

// Engine owns the time window, bucket layout and grid for one timeline
// view. Every change to a fetch parameter bumps the generation; responses
// from older generations are dropped. It is not safe for concurrent use.
type Engine struct {
	opts Options

	token  timewindow.Token
	now    time.Time
	window timewindow.TimeWindow

	width float64

	cfg    timewindow.Config
	rollup timewindow.RollupInterval

	keys    []string
	keySet  string
	grid    *vgrid.Scheduler
	gen     uint64
	pending bool

	// last successful response, re-indexed whenever cfg changes
	result  provider.Result
	indexed map[string][]provider.StatusCounts
	envs    map[string]envBuckets
	lastErr error
}

// New returns an engine showing token ending at now. It has no size and no
// rows yet, so it issues no fetch until Resize and SetRows are called.
func New(opts Options, token string, now time.Time) *Engine {
	if opts.LabelWidth < 0 {
		opts.LabelWidth = 0
	}
	e := &Engine{
		opts: opts,
		now:  now,
		grid: vgrid.New(opts.Grid, opts.Layout),
	}
	e.token, _ = timewindow.ParseToken(token)
	e.grid.SetColumnCount(columnCount)
	e.window = timewindow.Resolve(string(e.token), now)
	e.recompute()
	return e
}

// SetWindow switches to another window token. Unknown tokens fall back to
// the default window.
func (e *Engine) SetWindow(token string) *FetchRequest {
	t, ok := timewindow.ParseToken(token)
	if !ok {
		logging.Debugf("timeline: unknown window %q, using %s", token, t)
	}
	if t == e.token {
		return nil
	}
	e.token = t
	e.window = timewindow.Resolve(string(t), e.now)
	return e.recompute()
}

// Refresh re-resolves the window against now and always asks for new data.
func (e *Engine) Refresh(now time.Time) *FetchRequest {
	e.now = now
	e.window = timewindow.Resolve(string(e.token), now)
	return e.recompute()
}

// Resize records the container size. Only a change of the timeline width
// leads to a new fetch.
func (e *Engine) Resize(width, height float64) *FetchRequest {
	e.grid.Resize(width, height)
	if width == e.width {
		return nil
	}
	e.width = width
	return e.recompute()
}

// SetRows installs the ordered monitor keys. A new order invalidates the
// grid measurements; a new set of keys also triggers a fetch.
func (e *Engine) SetRows(keys []string) *FetchRequest {
	keys = slices.Clone(keys)
	e.grid.SetRowSet(identity(keys), len(keys))
	e.keys = keys

	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	set := identity(sorted)
	if set == e.keySet {
		return nil
	}
	e.keySet = set
	return e.recompute()
}

func (e *Engine) recompute() *FetchRequest {
	e.cfg = timewindow.BuildConfig(e.window, e.TimelineWidth(), e.opts.Buckets)
	e.rollup = timewindow.CalculateRollup(e.window, e.TimelineWidth(), e.opts.Buckets)
	e.grid.SetColumnWidths([]float64{e.opts.LabelWidth, e.TimelineWidth()})
	e.reindex()
	e.gen++
	e.pending = false

	if e.cfg.IsZero() || len(e.keys) == 0 {
		logging.Debugf("timeline: gen %d no fetch (buckets=%d keys=%d)", e.gen, e.cfg.BucketCount, len(e.keys))
		return nil
	}
	e.pending = true
	req := &FetchRequest{
		Generation: e.gen,
		Query: provider.Query{
			Since:             e.window.Start.Unix(),
			Until:             e.window.End.Unix(),
			ResolutionSeconds: e.rollup.Seconds(),
			Keys:              slices.Clone(e.keys),
		},
	}
	logging.Debugf("timeline: gen %d fetch %d keys %s..%s at %s",
		e.gen, len(e.keys), e.window.Start.Format(time.RFC3339), e.window.End.Format(time.RFC3339), e.rollup)
	return req
}

// Apply installs a fetch result. It returns false with a nil error for a
// stale response. A provider error keeps the previous buckets on screen and
// is returned wrapped.
func (e *Engine) Apply(resp FetchResponse) (bool, error) {
	if resp.Generation != e.gen {
		logging.Debugf("timeline: dropping stale response gen %d (current %d)", resp.Generation, e.gen)
		return false, nil
	}
	e.pending = false
	if resp.Err != nil {
		e.lastErr = fmt.Errorf("fetch buckets: %w", resp.Err)
		logging.Warnf("timeline: gen %d: %v", resp.Generation, resp.Err)
		return false, e.lastErr
	}
	e.lastErr = nil
	e.result = resp.Result
	if e.result == nil {
		e.result = provider.Result{}
	}
	e.reindex()
	return true, nil
}

// envBuckets holds one monitor's counts per environment, names sorted.
type envBuckets struct {
	names   []string
	buckets map[string][]provider.StatusCounts
}

func (e *Engine) reindex() {
	e.indexed = make(map[string][]provider.StatusCounts, len(e.result))
	e.envs = make(map[string]envBuckets, len(e.result))
	if e.cfg.IsZero() {
		return
	}
	for key, pts := range e.result {
		row := make([]provider.StatusCounts, e.cfg.BucketCount)
		eb := envBuckets{
			names:   provider.Environments(pts),
			buckets: make(map[string][]provider.StatusCounts),
		}
		for _, name := range eb.names {
			eb.buckets[name] = make([]provider.StatusCounts, e.cfg.BucketCount)
		}
		for _, p := range pts {
			i, ok := e.cfg.BucketIndex(time.Unix(p.Timestamp, 0))
			if !ok {
				continue
			}
			row[i] = row[i].Add(p.Value)
			for name, c := range p.Envs {
				eb.buckets[name][i] = eb.buckets[name][i].Add(c)
			}
		}
		e.indexed[key] = row
		e.envs[key] = eb
	}
}

// Buckets returns the counts of key per bucket of the current config, or
// nil when no data has arrived for it.
func (e *Engine) Buckets(key string) []provider.StatusCounts {
	return e.indexed[key]
}

// Environments returns the environment names reported for key, sorted.
func (e *Engine) Environments(key string) []string {
	return slices.Clone(e.envs[key].names)
}

// EnvironmentBuckets returns the counts of one environment of key per
// bucket, or nil when that environment never reported.
func (e *Engine) EnvironmentBuckets(key, env string) []provider.StatusCounts {
	return e.envs[key].buckets[env]
}

// HasData reports whether any fetch has succeeded.
func (e *Engine) HasData() bool {
	return e.result != nil
}

// Loading reports whether a fetch for the current generation is out.
func (e *Engine) Loading() bool {
	return e.pending
}

// LastError returns the error of the most recent failed fetch, cleared by
// the next success.
func (e *Engine) LastError() error {
	return e.lastErr
}

// Generation returns the current fetch generation.
func (e *Engine) Generation() uint64 {
	return e.gen
}

// Token returns the active window token.
func (e *Engine) Token() timewindow.Token {
	return e.token
}

// Window returns the resolved window.
func (e *Engine) Window() timewindow.TimeWindow {
	return e.window
}

// Now returns the reference instant of the current window.
func (e *Engine) Now() time.Time {
	return e.now
}

// TimelineWidth is the container width minus the label column.
func (e *Engine) TimelineWidth() float64 {
	return max(0, e.width-e.opts.LabelWidth)
}

// CurrentTimeWindowConfig returns the bucket layout in use.
func (e *Engine) CurrentTimeWindowConfig() timewindow.Config {
	return e.cfg
}

// CurrentRollupInterval returns the resolution requested from the provider.
func (e *Engine) CurrentRollupInterval() timewindow.RollupInterval {
	return e.rollup
}

// Keys returns the monitor keys in row order.
func (e *Engine) Keys() []string {
	return slices.Clone(e.keys)
}

// Key returns the monitor key drawn in row.
func (e *Engine) Key(row int) (string, bool) {
	if row < 0 || row >= len(e.keys) {
		return "", false
	}
	return e.keys[row], true
}

// RowOf returns the row holding key.
func (e *Engine) RowOf(key string) (int, bool) {
	i := slices.Index(e.keys, key)
	return i, i >= 0
}

// Grid exposes the row scheduler.
func (e *Engine) Grid() *vgrid.Scheduler {
	return e.grid
}

// VisibleRowRange returns the rows intersecting the viewport.
func (e *Engine) VisibleRowRange() vgrid.Range {
	return e.grid.VisibleRowRange()
}

// VisibleColumnRange returns the columns intersecting the viewport.
func (e *Engine) VisibleColumnRange() vgrid.Range {
	return e.grid.VisibleColumnRange()
}

// CellOffset returns the content position of a cell's top-left corner.
func (e *Engine) CellOffset(row, col int) vgrid.Point {
	return e.grid.CellOffset(row, col)
}

// ScrollToRow asks the next layout to bring row into view and keep it
// there while rows above it are measured.
func (e *Engine) ScrollToRow(row int) {
	e.grid.ScrollToRow(row)
}

// identity hashes an ordered key list so equal lists compare equal.
func identity(keys []string) string {
	h := fnv.New64a()
	for _, k := range keys {
		h.Write([]byte(strings.TrimSpace(k)))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
