package timewindow

import (
	"math"
	"strconv"
	"time"
)

// RollupInterval is the aggregation interval, in seconds, requested from the
// data provider.
type RollupInterval int64

// Seconds returns the interval as a plain integer.
func (r RollupInterval) Seconds() int64 {
	return int64(r)
}

// Duration returns the interval as a time.Duration.
func (r RollupInterval) Duration() time.Duration {
	return time.Duration(r) * time.Second
}

// String renders the interval in the provider's query form, e.g. "3600s".
func (r RollupInterval) String() string {
	return strconv.FormatInt(int64(r), 10) + "s"
}

// CalculateRollup returns the resolution to request for window w drawn
// across widthPx. The raw per-pixel interval is raised to the bucket duration
// BuildConfig picks for the same inputs and then snapped up to an accepted
// resolution; it is never snapped down.
func CalculateRollup(w TimeWindow, widthPx float64, opts Options) RollupInterval {
	o := opts.normalized()
	width := widthPx
	if !(width >= 1) {
		width = 1
	}

	raw := int64(math.Floor(float64(w.ElapsedSeconds()) / width))
	if cfg := BuildConfig(w, width, o); cfg.BucketDurationSeconds > raw {
		raw = cfg.BucketDurationSeconds
	}
	return RollupInterval(snapUp(raw, o.Resolutions))
}

// snapUp returns the smallest resolution >= raw. Past the largest
// resolution, raw is rounded up to a multiple of it. resolutions must be
// sorted ascending and non-empty.
func snapUp(raw int64, resolutions []time.Duration) int64 {
	for _, r := range resolutions {
		secs := int64(r / time.Second)
		if secs >= raw {
			return secs
		}
	}
	largest := int64(resolutions[len(resolutions)-1] / time.Second)
	return ceilDiv(raw, largest) * largest
}
