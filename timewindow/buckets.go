package timewindow

import (
	"math"
	"slices"
	"time"
)

// Options controls bucket and rollup derivation. Zero fields take the
// package defaults.
type Options struct {
	// Ladder lists the bucket durations the builder may choose from.
	Ladder []time.Duration
	// MinBucketPixelWidth is the narrowest a bucket may be drawn.
	MinBucketPixelWidth float64
	// MaxLabels caps the number of tick labels across the window.
	MaxLabels int
	// Resolutions lists the aggregation intervals the data provider accepts.
	Resolutions []time.Duration
}

var (
	defaultLadder = []time.Duration{
		time.Minute,
		5 * time.Minute,
		10 * time.Minute,
		15 * time.Minute,
		30 * time.Minute,
		time.Hour,
		2 * time.Hour,
		3 * time.Hour,
		6 * time.Hour,
		12 * time.Hour,
		24 * time.Hour,
	}
	defaultResolutions = []time.Duration{
		time.Minute,
		5 * time.Minute,
		10 * time.Minute,
		15 * time.Minute,
		30 * time.Minute,
		time.Hour,
		2 * time.Hour,
		3 * time.Hour,
		6 * time.Hour,
		12 * time.Hour,
		24 * time.Hour,
	}
	// labelLadder holds the "nice" tick spacings, in seconds.
	labelLadder = []int64{
		60, 300, 600, 900, 1800,
		3600, 2 * 3600, 3 * 3600, 4 * 3600, 6 * 3600, 12 * 3600,
		86400, 2 * 86400, 7 * 86400, 14 * 86400, 30 * 86400,
	}
)

const (
	defaultMinBucketPixelWidth = 10
	defaultMaxLabels           = 8
)

// DefaultOptions returns the built-in ladder, resolutions and limits.
func DefaultOptions() Options {
	return Options{
		Ladder:              slices.Clone(defaultLadder),
		MinBucketPixelWidth: defaultMinBucketPixelWidth,
		MaxLabels:           defaultMaxLabels,
		Resolutions:         slices.Clone(defaultResolutions),
	}
}

func (o Options) normalized() Options {
	out := o
	out.Ladder = positiveSeconds(o.Ladder)
	if len(out.Ladder) == 0 {
		out.Ladder = slices.Clone(defaultLadder)
	}
	out.Resolutions = positiveSeconds(o.Resolutions)
	if len(out.Resolutions) == 0 {
		out.Resolutions = slices.Clone(defaultResolutions)
	}
	if out.MinBucketPixelWidth <= 0 || math.IsNaN(out.MinBucketPixelWidth) {
		out.MinBucketPixelWidth = defaultMinBucketPixelWidth
	}
	if out.MaxLabels <= 0 {
		out.MaxLabels = defaultMaxLabels
	}
	return out
}

// positiveSeconds drops sub-second entries, truncates to whole seconds,
// sorts ascending and removes duplicates.
func positiveSeconds(in []time.Duration) []time.Duration {
	out := make([]time.Duration, 0, len(in))
	for _, d := range in {
		d = d.Truncate(time.Second)
		if d >= time.Second {
			out = append(out, d)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Config is the bucket layout for one (window, width) pair. It is a value:
// recompute it when the inputs change instead of mutating it.
type Config struct {
	Start                 time.Time
	ElapsedSeconds        int64
	BucketDurationSeconds int64
	BucketPixelWidth      float64
	BucketCount           int
	LabelIntervalSeconds  int64
}

// Tick is one time label position along the timeline.
type Tick struct {
	Time   time.Time
	Offset float64
}

// BuildConfig derives the bucket layout for window w drawn across widthPx.
// A non-positive width or an empty window yields a config with no buckets.
func BuildConfig(w TimeWindow, widthPx float64, opts Options) Config {
	o := opts.normalized()
	elapsed := w.ElapsedSeconds()
	cfg := Config{Start: w.Start, ElapsedSeconds: elapsed}
	if elapsed <= 0 || !(widthPx > 0) || math.IsInf(widthPx, 0) {
		return cfg
	}

	chosen := int64(o.Ladder[len(o.Ladder)-1] / time.Second)
	for _, d := range o.Ladder {
		secs := int64(d / time.Second)
		if float64(ceilDiv(elapsed, secs))*o.MinBucketPixelWidth <= widthPx {
			chosen = secs
			break
		}
	}

	count := ceilDiv(elapsed, chosen)
	cfg.BucketDurationSeconds = chosen
	cfg.BucketCount = int(count)
	cfg.BucketPixelWidth = widthPx / float64(count)
	cfg.LabelIntervalSeconds = labelInterval(chosen, count, int64(o.MaxLabels))
	return cfg
}

func labelInterval(bucketSecs, count, maxLabels int64) int64 {
	minInterval := ceilDiv(count, maxLabels) * bucketSecs
	for _, nice := range labelLadder {
		if nice >= minInterval && nice%bucketSecs == 0 {
			return nice
		}
	}
	return minInterval
}

// IsZero reports whether the config holds no buckets.
func (c Config) IsZero() bool {
	return c.BucketCount == 0
}

// TotalWidth is the pixel width spanned by all buckets.
func (c Config) TotalWidth() float64 {
	return float64(c.BucketCount) * c.BucketPixelWidth
}

// End is the instant the last bucket closes. It may lie after the window end.
func (c Config) End() time.Time {
	return c.BucketStart(c.BucketCount)
}

// BucketStart returns the instant bucket i opens.
func (c Config) BucketStart(i int) time.Time {
	return c.Start.Add(time.Duration(int64(i)*c.BucketDurationSeconds) * time.Second)
}

// BucketOffset returns the pixel offset of bucket i from the timeline origin.
func (c Config) BucketOffset(i int) float64 {
	return float64(i) * c.BucketPixelWidth
}

// BucketIndex returns the bucket holding ts.
func (c Config) BucketIndex(ts time.Time) (int, bool) {
	if c.BucketCount == 0 || ts.Before(c.Start) {
		return 0, false
	}
	idx := int(int64(ts.Sub(c.Start)/time.Second) / c.BucketDurationSeconds)
	if idx >= c.BucketCount {
		return 0, false
	}
	return idx, true
}

// TickOffsets returns the label positions, starting at the window start and
// spaced LabelIntervalSeconds apart.
func (c Config) TickOffsets() []Tick {
	if c.BucketCount == 0 || c.LabelIntervalSeconds <= 0 {
		return nil
	}
	span := c.BucketDurationSeconds * int64(c.BucketCount)
	pxPerSecond := c.BucketPixelWidth / float64(c.BucketDurationSeconds)
	ticks := make([]Tick, 0, span/c.LabelIntervalSeconds+1)
	for s := int64(0); s < span; s += c.LabelIntervalSeconds {
		ticks = append(ticks, Tick{
			Time:   c.Start.Add(time.Duration(s) * time.Second),
			Offset: float64(s) * pxPerSecond,
		})
	}
	return ticks
}

func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
