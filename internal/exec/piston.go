// Package exec talks to the remote code execution service (a
// Piston-compatible HTTP API). The caller hands it source + language +
// stdin and gets the service's response back verbatim; nothing in here
// understands language or version semantics.
package exec

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bisu2000/CodeTwine-Real-time-code-editor/pkg/metrics"
)

// Request is one execution: run Code as Language/Version with Stdin.
type Request struct {
	Language string
	Version  string
	Code     string
	Stdin    string
}

// wireRequest is the Piston execute body.
type wireRequest struct {
	Language string     `json:"language"`
	Version  string     `json:"version"`
	Files    []wireFile `json:"files"`
	Stdin    string     `json:"stdin"`
}

type wireFile struct {
	Content string `json:"content"`
}

// Client performs a single HTTP attempt per run. No retries: a failure
// is reported to the caller immediately. With a redis client attached,
// results are cached briefly so a room re-running the same code does
// not re-hit the remote service.
type Client struct {
	url  string
	http *http.Client
	log  *slog.Logger

	cache    *redis.Client // nil = caching off
	cacheTTL time.Duration
}

func New(url string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// WithCache enables the redis result cache.
func (c *Client) WithCache(rdb *redis.Client, ttl time.Duration) *Client {
	c.cache = rdb
	c.cacheTTL = ttl
	return c
}

// Run executes the request remotely and returns the response body
// verbatim. Any transport error, timeout, or non-2xx status is an
// error; the caller decides how to present failures.
func (c *Client) Run(ctx context.Context, req Request) (json.RawMessage, error) {
	if cached, ok := c.cacheGet(ctx, req); ok {
		metrics.ExecTotal.WithLabelValues("cached").Inc()
		return cached, nil
	}

	body, _ := json.Marshal(wireRequest{
		Language: req.Language,
		Version:  req.Version,
		Files:    []wireFile{{Content: req.Code}},
		Stdin:    req.Stdin,
	})

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(hreq)
	if err != nil {
		metrics.ExecTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ExecTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ExecTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("execute: status %d", resp.StatusCode)
	}

	metrics.ExecTotal.WithLabelValues("ok").Inc()
	c.cachePut(ctx, req, raw)
	return raw, nil
}

// cacheKey hashes the full request so distinct stdin or versions never
// collide.
func cacheKey(req Request) string {
	h := sha256.New()
	for _, s := range []string{req.Language, req.Version, req.Code, req.Stdin} {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return "exec:" + hex.EncodeToString(h.Sum(nil))
}

func (c *Client) cacheGet(ctx context.Context, req Request) (json.RawMessage, bool) {
	if c.cache == nil {
		return nil, false
	}
	raw, err := c.cache.Get(ctx, cacheKey(req)).Bytes()
	if err != nil {
		// Miss or redis trouble: fall through to the real call.
		return nil, false
	}
	return raw, true
}

func (c *Client) cachePut(ctx context.Context, req Request, raw []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, cacheKey(req), raw, c.cacheTTL).Err(); err != nil {
		c.log.Debug("exec.cache_put", "err", err)
	}
}
