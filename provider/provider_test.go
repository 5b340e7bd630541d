package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"
)

func TestPointUnmarshalSumsEnvironments(t *testing.T) {
	var p Point
	raw := `[1700000000, {"prod": {"ok": 2, "error": 1}, "staging": {"ok": 1, "missed": 3, "in_progress": 1}}]`
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := StatusCounts{OK: 3, Error: 1, Missed: 3, InProgress: 1}
	if p.Timestamp != 1700000000 || p.Value != want {
		t.Fatalf("Point = %+v, want ts 1700000000 counts %+v", p, want)
	}
	wantEnvs := map[string]StatusCounts{
		"prod":    {OK: 2, Error: 1},
		"staging": {OK: 1, Missed: 3, InProgress: 1},
	}
	if !reflect.DeepEqual(p.Envs, wantEnvs) {
		t.Fatalf("Envs = %+v, want %+v", p.Envs, wantEnvs)
	}

	for _, bad := range []string{`[1]`, `{"a":1}`, `["x", {}]`, `[1, [1,2]]`} {
		if err := json.Unmarshal([]byte(bad), &p); err == nil {
			t.Errorf("Unmarshal(%s) succeeded", bad)
		}
	}
}

func TestPointMarshalKeepsEnvironments(t *testing.T) {
	tests := []struct {
		name string
		in   Point
		want string
	}{
		{"environments", Point{Timestamp: 60, Value: StatusCounts{OK: 3}, Envs: map[string]StatusCounts{"prod": {OK: 1}, "dev": {OK: 2}}},
			`[60,{"dev":{"ok":2,"error":0,"missed":0,"timeout":0,"in_progress":0},"prod":{"ok":1,"error":0,"missed":0,"timeout":0,"in_progress":0}}]`},
		{"no environments", Point{Timestamp: 60, Value: StatusCounts{Error: 1}},
			`[60,{"all":{"ok":0,"error":1,"missed":0,"timeout":0,"in_progress":0}}]`},
	}
	for _, tt := range tests {
		got, err := json.Marshal(tt.in)
		if err != nil {
			t.Fatalf("%s: Marshal: %v", tt.name, err)
		}
		if string(got) != tt.want {
			t.Errorf("%s: Marshal = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestEnvironments(t *testing.T) {
	pts := []Point{
		{Envs: map[string]StatusCounts{"prod": {OK: 1}}},
		{},
		{Envs: map[string]StatusCounts{"staging": {}, "prod": {Error: 1}}},
	}
	if got, want := Environments(pts), []string{"prod", "staging"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Environments() = %v, want %v", got, want)
	}
	if got := Environments(nil); len(got) != 0 {
		t.Fatalf("Environments(nil) = %v, want empty", got)
	}
}

func TestStatusCountsWorst(t *testing.T) {
	tests := []struct {
		c    StatusCounts
		want Status
	}{
		{StatusCounts{}, StatusNone},
		{StatusCounts{OK: 4}, StatusOK},
		{StatusCounts{OK: 4, InProgress: 1}, StatusInProgress},
		{StatusCounts{OK: 4, Missed: 1, InProgress: 1}, StatusMissed},
		{StatusCounts{Missed: 1, Timeout: 1}, StatusTimeout},
		{StatusCounts{Timeout: 1, Error: 1}, StatusError},
	}
	for _, tt := range tests {
		if got := tt.c.Worst(); got != tt.want {
			t.Errorf("%+v.Worst() = %s, want %s", tt.c, got, tt.want)
		}
	}
}

func TestHTTPFetchBuckets(t *testing.T) {
	var (
		mu       sync.Mutex
		requests [][]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/0/organizations/acme/monitors-stats/" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			http.Error(w, "bad token "+got, http.StatusUnauthorized)
			return
		}
		q := r.URL.Query()
		if q.Get("since") != "100" || q.Get("until") != "7300" || q.Get("resolution") != "3600s" {
			http.Error(w, "bad params "+r.URL.RawQuery, http.StatusBadRequest)
			return
		}
		monitors := q["monitor"]
		mu.Lock()
		requests = append(requests, monitors)
		mu.Unlock()

		res := make(map[string]any, len(monitors))
		for _, m := range monitors {
			res[m] = []any{
				[]any{100, map[string]any{"prod": map[string]int{"ok": 1}}},
				[]any{3700, map[string]any{"prod": map[string]int{"error": len(m)}}},
			}
		}
		json.NewEncoder(w).Encode(res)
	}))
	defer srv.Close()

	h := NewHTTP(HTTPConfig{BaseURL: srv.URL + "/api/0/organizations/acme/", Token: "secret", ChunkSize: 2}, srv.Client())
	keys := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	res, err := h.FetchBuckets(context.Background(), Query{Since: 100, Until: 7300, ResolutionSeconds: 3600, Keys: keys})
	if err != nil {
		t.Fatalf("FetchBuckets: %v", err)
	}

	if len(requests) != 3 {
		t.Fatalf("%d requests, want 3 chunks", len(requests))
	}
	var seen []string
	for _, r := range requests {
		if len(r) > 2 {
			t.Errorf("chunk %v larger than 2", r)
		}
		seen = append(seen, r...)
	}
	sort.Strings(seen)
	if strings.Join(seen, ",") != strings.Join(keys, ",") {
		t.Fatalf("requested %v, want %v", seen, keys)
	}

	for _, k := range keys {
		pts := res[k]
		if len(pts) != 2 {
			t.Fatalf("res[%q] = %v, want 2 points", k, pts)
		}
		if pts[1].Timestamp != 3700 || pts[1].Value.Error != len(k) {
			t.Errorf("res[%q][1] = %+v", k, pts[1])
		}
	}
}

func TestHTTPFetchErrors(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusTooManyRequests, true},
		{http.StatusBadRequest, false},
		{http.StatusForbidden, false},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tt.status)
		}))
		h := NewHTTP(HTTPConfig{BaseURL: srv.URL}, srv.Client())
		_, err := h.FetchBuckets(context.Background(), Query{Since: 1, Until: 2, ResolutionSeconds: 60, Keys: []string{"a"}})
		srv.Close()

		var fe *FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("status %d: err = %v, want *FetchError", tt.status, err)
		}
		if fe.StatusCode != tt.status {
			t.Errorf("status %d: StatusCode = %d", tt.status, fe.StatusCode)
		}
		if got := IsRetryable(err); got != tt.retryable {
			t.Errorf("status %d: IsRetryable = %v, want %v", tt.status, got, tt.retryable)
		}
	}
}

func TestHTTPBadBodyNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "{not json")
	}))
	defer srv.Close()

	_, err := NewHTTP(HTTPConfig{BaseURL: srv.URL}, srv.Client()).
		FetchBuckets(context.Background(), Query{ResolutionSeconds: 60, Keys: []string{"a"}})
	if err == nil || IsRetryable(err) {
		t.Fatalf("err = %v, retryable %v; want non-retryable decode error", err, IsRetryable(err))
	}
}

func TestHTTPNoKeysNoRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	res, err := NewHTTP(HTTPConfig{BaseURL: srv.URL}, srv.Client()).FetchBuckets(context.Background(), Query{})
	if err != nil || len(res) != 0 || called {
		t.Fatalf("FetchBuckets(no keys) = %v, %v, called=%v", res, err, called)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("plain"), false},
		{context.Canceled, false},
		{context.DeadlineExceeded, true},
		{fmt.Errorf("wrapped: %w", &FetchError{Op: "x", Retryable: true, Err: errors.New("boom")}), true},
		{&FetchError{Op: "x", StatusCode: 404, Err: errors.New("gone")}, false},
	}
	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestFileProviderRegroups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buckets.json")
	doc := `{
		"api": [
			[1000, {"prod": {"ok": 1}}],
			[1030, {"prod": {"ok": 1}, "staging": {"missed": 2}}],
			[1070, {"prod": {"error": 1}}],
			[5000, {"prod": {"ok": 9}}]
		],
		"cron": [[990, {"prod": {"missed": 1}}]]
	}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := File{Path: path}.FetchBuckets(context.Background(),
		Query{Since: 1000, Until: 1200, ResolutionSeconds: 60, Keys: []string{"api", "cron", "ghost"}})
	if err != nil {
		t.Fatalf("FetchBuckets: %v", err)
	}
	want := []Point{
		{Timestamp: 1000, Value: StatusCounts{OK: 2, Missed: 2}, Envs: map[string]StatusCounts{"prod": {OK: 2}, "staging": {Missed: 2}}},
		{Timestamp: 1060, Value: StatusCounts{Error: 1}, Envs: map[string]StatusCounts{"prod": {Error: 1}}},
	}
	if got := res["api"]; !reflect.DeepEqual(got, want) {
		t.Fatalf("api = %+v, want %+v", got, want)
	}
	if got, ok := res["cron"]; !ok || len(got) != 0 {
		t.Fatalf("cron = %+v, want empty", got)
	}
	if _, ok := res["ghost"]; !ok {
		t.Fatal("missing key not present in result")
	}

	_, err = File{Path: filepath.Join(t.TempDir(), "missing.json")}.FetchBuckets(context.Background(), Query{})
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("missing file err = %v, want *FetchError", err)
	}
}
