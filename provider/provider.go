// Package provider fetches bucketed check-in counts for a set of monitors.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
)

// Status is the dominant outcome inside one bucket.
type Status int

const (
	StatusNone Status = iota
	StatusOK
	StatusInProgress
	StatusMissed
	StatusTimeout
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInProgress:
		return "in_progress"
	case StatusMissed:
		return "missed"
	case StatusTimeout:
		return "timeout"
	case StatusError:
		return "error"
	default:
		return "none"
	}
}

// StatusCounts holds the number of check-ins per outcome.
type StatusCounts struct {
	OK         int `json:"ok"`
	Error      int `json:"error"`
	Missed     int `json:"missed"`
	Timeout    int `json:"timeout"`
	InProgress int `json:"in_progress"`
}

// Add returns the element-wise sum of c and o.
func (c StatusCounts) Add(o StatusCounts) StatusCounts {
	return StatusCounts{
		OK:         c.OK + o.OK,
		Error:      c.Error + o.Error,
		Missed:     c.Missed + o.Missed,
		Timeout:    c.Timeout + o.Timeout,
		InProgress: c.InProgress + o.InProgress,
	}
}

// Total returns the number of check-ins.
func (c StatusCounts) Total() int {
	return c.OK + c.Error + c.Missed + c.Timeout + c.InProgress
}

// Worst returns the most severe outcome present.
func (c StatusCounts) Worst() Status {
	switch {
	case c.Error > 0:
		return StatusError
	case c.Timeout > 0:
		return StatusTimeout
	case c.Missed > 0:
		return StatusMissed
	case c.InProgress > 0:
		return StatusInProgress
	case c.OK > 0:
		return StatusOK
	default:
		return StatusNone
	}
}

// Point is one aggregated sample. On the wire it is
// [timestamp, {"<environment>": {counts}}]. Envs keeps the counts per
// environment and Value is their sum.
type Point struct {
	Timestamp int64
	Value     StatusCounts
	Envs      map[string]StatusCounts
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("point: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("point: want [timestamp, counts], got %d elements", len(raw))
	}
	var ts float64
	if err := json.Unmarshal(raw[0], &ts); err != nil {
		return fmt.Errorf("point timestamp: %w", err)
	}
	var envs map[string]StatusCounts
	if err := json.Unmarshal(raw[1], &envs); err != nil {
		return fmt.Errorf("point counts: %w", err)
	}
	p.Timestamp = int64(ts)
	p.Value = StatusCounts{}
	p.Envs = envs
	for _, c := range envs {
		p.Value = p.Value.Add(c)
	}
	return nil
}

// MarshalJSON writes the wire form. A point without environments is
// written under DefaultEnvironment.
func (p Point) MarshalJSON() ([]byte, error) {
	envs := p.Envs
	if len(envs) == 0 {
		envs = map[string]StatusCounts{DefaultEnvironment: p.Value}
	}
	return json.Marshal([]any{p.Timestamp, envs})
}

// DefaultEnvironment names the counts of a point that carries no
// environment breakdown.
const DefaultEnvironment = "all"

// Environments returns the environment names of pts, sorted.
func Environments(pts []Point) []string {
	seen := make(map[string]struct{})
	for _, p := range pts {
		for env := range p.Envs {
			seen[env] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for env := range seen {
		names = append(names, env)
	}
	sort.Strings(names)
	return names
}

// Query is one bucket request. Since and Until are unix seconds.
type Query struct {
	Since             int64
	Until             int64
	ResolutionSeconds int64
	Keys              []string
}

// Resolution renders the resolution in query form, e.g. "3600s".
func (q Query) Resolution() string {
	return strconv.FormatInt(q.ResolutionSeconds, 10) + "s"
}

// Values encodes q as query parameters, one "monitor" per key.
func (q Query) Values(keys []string) url.Values {
	params := url.Values{}
	params.Set("since", strconv.FormatInt(q.Since, 10))
	params.Set("until", strconv.FormatInt(q.Until, 10))
	params.Set("resolution", q.Resolution())
	for _, k := range keys {
		params.Add("monitor", k)
	}
	return params
}

// Result maps a monitor key to its points in time order.
type Result map[string][]Point

// Provider serves bucket data. Implementations must honour ctx.
type Provider interface {
	FetchBuckets(ctx context.Context, q Query) (Result, error)
}

// Func adapts a function to Provider.
type Func func(ctx context.Context, q Query) (Result, error)

// FetchBuckets calls f.
func (f Func) FetchBuckets(ctx context.Context, q Query) (Result, error) {
	return f(ctx, q)
}

// FetchError is returned by providers when a fetch fails.
type FetchError struct {
	Op         string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether retrying the fetch that produced err might
// succeed. The engine never retries on its own; callers decide.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Retryable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func retryableStatus(code int) bool {
	return code == 429 || code >= 500
}
