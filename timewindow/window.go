// Package timewindow turns a symbolic window selection and a container width
// into the bucket layout and aggregation resolution used by the timeline grid.
package timewindow

import (
	"strings"
	"time"

	"github.com/andareed/siftly-timeline/logging"
)

// Token is a symbolic window selector such as "24h".
type Token string

const (
	Token1h  Token = "1h"
	Token24h Token = "24h"
	Token7d  Token = "7d"
	Token14d Token = "14d"
	Token30d Token = "30d"
	Token90d Token = "90d"
)

// DefaultToken is used whenever a token is unknown or malformed.
const DefaultToken = Token24h

var tokenOrder = []Token{Token1h, Token24h, Token7d, Token14d, Token30d, Token90d}

var tokenDurations = map[Token]time.Duration{
	Token1h:  time.Hour,
	Token24h: 24 * time.Hour,
	Token7d:  7 * 24 * time.Hour,
	Token14d: 14 * 24 * time.Hour,
	Token30d: 30 * 24 * time.Hour,
	Token90d: 90 * 24 * time.Hour,
}

// TimeWindow is a half-open [Start, End) instant pair.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Elapsed returns End-Start, or zero for an inverted or empty window.
func (w TimeWindow) Elapsed() time.Duration {
	d := w.End.Sub(w.Start)
	if d < 0 {
		return 0
	}
	return d
}

// ElapsedSeconds is Elapsed rounded up to whole seconds, so buckets built
// from it cover a trailing partial second.
func (w TimeWindow) ElapsedSeconds() int64 {
	d := w.Elapsed()
	if d <= 0 {
		return 0
	}
	return int64((d + time.Second - 1) / time.Second)
}

// IsEmpty reports whether the window covers no time.
func (w TimeWindow) IsEmpty() bool {
	return !w.Start.Before(w.End)
}

// Tokens returns the supported tokens from shortest to longest.
func Tokens() []Token {
	out := make([]Token, len(tokenOrder))
	copy(out, tokenOrder)
	return out
}

// ParseToken normalises s and reports whether it names a supported window.
func ParseToken(s string) (Token, bool) {
	t := Token(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := tokenDurations[t]; !ok {
		return DefaultToken, false
	}
	return t, true
}

// Duration returns the span of the token, falling back to DefaultToken.
func (t Token) Duration() time.Duration {
	if d, ok := tokenDurations[t]; ok {
		return d
	}
	return tokenDurations[DefaultToken]
}

// Next returns the next longer token, or t when already the longest.
func (t Token) Next() Token {
	i := t.index()
	if i < 0 {
		return DefaultToken
	}
	if i+1 < len(tokenOrder) {
		return tokenOrder[i+1]
	}
	return t
}

// Prev returns the next shorter token, or t when already the shortest.
func (t Token) Prev() Token {
	i := t.index()
	if i < 0 {
		return DefaultToken
	}
	if i > 0 {
		return tokenOrder[i-1]
	}
	return t
}

func (t Token) index() int {
	for i, v := range tokenOrder {
		if v == t {
			return i
		}
	}
	return -1
}

// Resolve maps a window token and a reference instant to a concrete window
// ending at now. Unknown tokens resolve as DefaultToken.
func Resolve(token string, now time.Time) TimeWindow {
	t, ok := ParseToken(token)
	if !ok {
		logging.Debugf("timewindow: unknown window %q, using %s", token, DefaultToken)
	}
	// queries carry unix seconds, so windows are whole seconds too
	now = now.Truncate(time.Second)
	return TimeWindow{
		Start: now.Add(-t.Duration()),
		End:   now,
	}
}
