package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/andareed/siftly-timeline/logging"
	"golang.org/x/sync/errgroup"
)

// HTTPConfig configures the HTTP provider.
type HTTPConfig struct {
	// BaseURL is the organization API root; "/monitors-stats/" is appended.
	BaseURL string
	Token   string
	Timeout time.Duration
	// ChunkSize caps the monitors sent in one request.
	ChunkSize int
	// MaxParallel caps concurrent requests for one fetch.
	MaxParallel int
}

// HTTP fetches buckets from a monitors-stats endpoint.
type HTTP struct {
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTP returns an HTTP provider. A nil client gets a default one with
// cfg.Timeout.
func NewHTTP(cfg HTTPConfig, client *http.Client) *HTTP {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 50
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 4
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &HTTP{cfg: cfg, client: client}
}

// FetchBuckets splits q.Keys into chunks, fetches them concurrently and
// merges the results. Any failed chunk fails the whole fetch.
func (h *HTTP) FetchBuckets(ctx context.Context, q Query) (Result, error) {
	out := make(Result, len(q.Keys))
	if len(q.Keys) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.cfg.MaxParallel)
	var mu sync.Mutex

	for _, keys := range chunk(q.Keys, h.cfg.ChunkSize) {
		g.Go(func() error {
			res, err := h.fetchChunk(gctx, q, keys)
			if err != nil {
				return err
			}
			mu.Lock()
			for k, pts := range res {
				out[k] = pts
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// URL returns the request URL for q restricted to keys.
func (h *HTTP) URL(q Query, keys []string) string {
	return h.cfg.BaseURL + "/monitors-stats/?" + q.Values(keys).Encode()
}

func (h *HTTP) fetchChunk(ctx context.Context, q Query, keys []string) (Result, error) {
	endpoint := h.URL(q, keys)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Op: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if h.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.cfg.Token)
	}

	logging.Debugf("provider: GET %s (%d monitors)", endpoint, len(keys))
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &FetchError{
			Op:        "fetch buckets",
			Retryable: !errors.Is(err, context.Canceled),
			Err:       err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &FetchError{
			Op:         "fetch buckets",
			StatusCode: resp.StatusCode,
			Retryable:  retryableStatus(resp.StatusCode),
			Err:        errors.New(msg),
		}
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, &FetchError{Op: "decode buckets", Err: err}
	}
	return res, nil
}

func chunk(keys []string, size int) [][]string {
	var out [][]string
	for len(keys) > size {
		out = append(out, keys[:size:size])
		keys = keys[size:]
	}
	if len(keys) > 0 {
		out = append(out, keys)
	}
	return out
}
