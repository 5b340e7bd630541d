package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// File serves buckets from a JSON document shaped like a monitors-stats
// response. Points are regrouped into resolution-sized buckets starting at
// Since, so any raw sampling in the file can back any query.
type File struct {
	Path string
}

// FetchBuckets reads the file on every call so edits show up on refresh.
func (f File) FetchBuckets(ctx context.Context, q Query) (Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, &FetchError{Op: "read bucket file", Err: err}
	}
	var all Result
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, &FetchError{Op: "decode bucket file", Err: fmt.Errorf("%s: %w", f.Path, err)}
	}
	return Regroup(all, q), nil
}

// Regroup sums the points of each requested key into buckets of
// q.ResolutionSeconds aligned to q.Since, dropping points outside
// [Since, Until). Environment counts are summed per environment. Keys with
// no data get an empty slice.
func Regroup(in Result, q Query) Result {
	out := make(Result, len(q.Keys))
	res := q.ResolutionSeconds
	if res <= 0 {
		res = 1
	}
	for _, key := range q.Keys {
		sums := make(map[int64]*Point)
		for _, p := range in[key] {
			if p.Timestamp < q.Since || p.Timestamp >= q.Until {
				continue
			}
			start := q.Since + (p.Timestamp-q.Since)/res*res
			acc, ok := sums[start]
			if !ok {
				acc = &Point{Timestamp: start}
				sums[start] = acc
			}
			acc.Value = acc.Value.Add(p.Value)
			for env, c := range p.Envs {
				if acc.Envs == nil {
					acc.Envs = make(map[string]StatusCounts)
				}
				acc.Envs[env] = acc.Envs[env].Add(c)
			}
		}
		pts := make([]Point, 0, len(sums))
		for _, p := range sums {
			pts = append(pts, *p)
		}
		sort.Slice(pts, func(i, j int) bool { return pts[i].Timestamp < pts[j].Timestamp })
		out[key] = pts
	}
	return out
}
