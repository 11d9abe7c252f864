package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/txwater/studymap/pkg/buildinfo"
	"github.com/txwater/studymap/pkg/cache"
	"github.com/txwater/studymap/pkg/observability"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

var (
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, non-2xx responses).
	ErrNetwork = errors.New("network error")
)

// Client provides caching, retry, rate limiting and common headers for
// tile and map-export requests.
type Client struct {
	http     *http.Client
	cache    cache.Cache
	ttl      time.Duration
	headers  map[string]string
	limiter  *rate.Limiter
	attempts int
	delay    time.Duration
}

// NewClient creates a Client backed by c. Entries are stored with ttl; zero
// means they never expire. A nil cache disables caching. headers are sent
// with every request; a User-Agent is always set.
func NewClient(c cache.Cache, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	h := map[string]string{"User-Agent": buildinfo.UserAgent()}
	for k, v := range headers {
		h[k] = v
	}
	return &Client{
		http:     NewHTTPClient(DefaultTimeout),
		cache:    c,
		ttl:      ttl,
		headers:  h,
		attempts: 3,
		delay:    time.Second,
	}
}

// NewHTTPClient creates an HTTP client with the given request timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// SetTimeout replaces the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) { c.http = NewHTTPClient(d) }

// SetRetry configures the retry policy.
func (c *Client) SetRetry(attempts int, delay time.Duration) {
	c.attempts, c.delay = attempts, delay
}

// SetRateLimit caps requests at rps per second with the given burst.
// Zero or negative rps removes the limit.
func (c *Client) SetRateLimit(rps float64, burst int) {
	if rps <= 0 {
		c.limiter = nil
		return
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
}

// Cached returns the cached body for key, or calls fetch with retries and
// stores its result. With refresh the cache read is skipped but the fresh
// result is still stored. hit reports whether the body came from cache.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, fetch func(context.Context) ([]byte, error)) (data []byte, hit bool, err error) {
	kind := keyType(key)
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			observability.Cache().OnCacheHit(ctx, kind)
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, kind)
	}

	err = Retry(ctx, c.attempts, c.delay, func() error {
		var ferr error
		data, ferr = fetch(ctx)
		return ferr
	})
	if err != nil {
		return nil, false, err
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, kind, len(data))
	}
	return data, false, nil
}

// Get performs a GET with retries and returns the body and its
// Content-Type.
func (c *Client) Get(ctx context.Context, url string) (body []byte, contentType string, err error) {
	err = Retry(ctx, c.attempts, c.delay, func() error {
		var ferr error
		body, contentType, ferr = c.Fetch(ctx, url)
		return ferr
	})
	return body, contentType, err
}

// Fetch performs a single GET without retrying.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.Fetch().OnFetch(ctx, host, path, 0, 0, time.Since(start), err)
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	observability.Fetch().OnFetch(ctx, host, path, resp.StatusCode, len(data), time.Since(start), err)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// readBody checks the status and drains the body.
func readBody(resp *http.Response) ([]byte, error) {
	if err := checkStatus(resp.StatusCode); err != nil {
		if re, ok := err.(*RetryableError); ok {
			re.After = retryAfter(resp.Header)
		}
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("%w: read body: %v", ErrNetwork, err)}
	}
	return data, nil
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests, code >= 500:
		return &RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// keyType finds the key namespace, past any scope prefix, to label cache
// events.
func keyType(key string) string {
	for _, kind := range []string{"tile", "export", "http"} {
		if strings.HasPrefix(key, kind+":") || strings.Contains(key, ":"+kind+":") {
			return kind
		}
	}
	return "other"
}
