package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/txwater/studymap/pkg/cache"
	"github.com/txwater/studymap/pkg/observability"
)

func newTestClient(c cache.Cache) *Client {
	client := NewClient(c, time.Hour, nil)
	client.SetRetry(3, time.Millisecond)
	return client
}

func TestNewClient(t *testing.T) {
	client := NewClient(nil, 0, map[string]string{"Referer": "https://example.org"})
	if client.http == nil || client.cache == nil {
		t.Fatal("NewClient() left http client or cache nil")
	}
	if !strings.HasPrefix(client.headers["User-Agent"], "studymap/") {
		t.Errorf("User-Agent = %q", client.headers["User-Agent"])
	}
	if client.headers["Referer"] != "https://example.org" {
		t.Error("NewClient() dropped extra headers")
	}
}

func TestClientUserAgentOverride(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client := NewClient(nil, 0, map[string]string{"User-Agent": "custom/1.0"})
	if _, _, err := client.Fetch(context.Background(), server.URL); err != nil {
		t.Fatal(err)
	}
	if got != "custom/1.0" {
		t.Errorf("User-Agent = %q, want custom/1.0", got)
	}
}

func TestClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("\x89PNG"))
	}))
	defer server.Close()

	body, ct, err := newTestClient(nil).Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(body) != "\x89PNG" || ct != "image/png" {
		t.Errorf("Get() = %q, %q", body, ct)
	}
}

func TestClientGet404(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, _, err := newTestClient(nil).Get(context.Background(), server.URL)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if calls.Load() != 1 {
		t.Errorf("404 should not be retried, got %d calls", calls.Load())
	}
}

func TestClientGet500Retries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	body, _, err := newTestClient(nil).Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(body) != "ok" || calls.Load() != 3 {
		t.Errorf("Get() = %q after %d calls", body, calls.Load())
	}
}

func TestClientGetExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, _, err := newTestClient(nil).Get(context.Background(), server.URL)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Get() error = %v, want ErrNetwork", err)
	}
}

func TestClientCached(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	client := newTestClient(c)
	ctx := context.Background()

	calls := 0
	fetch := func(context.Context) ([]byte, error) {
		calls++
		return []byte("tile"), nil
	}

	data, hit, err := client.Cached(ctx, "tile:osm:1/0/0", false, fetch)
	if err != nil || hit || string(data) != "tile" {
		t.Fatalf("first Cached() = %q, %v, %v", data, hit, err)
	}
	data, hit, err = client.Cached(ctx, "tile:osm:1/0/0", false, fetch)
	if err != nil || !hit || string(data) != "tile" {
		t.Fatalf("second Cached() = %q, %v, %v", data, hit, err)
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
}

func TestClientCachedRefresh(t *testing.T) {
	c := cache.NewMemoryCache(0)
	client := newTestClient(c)
	ctx := context.Background()
	c.Set(ctx, "k", []byte("stale"), 0)

	data, hit, err := client.Cached(ctx, "k", true, func(context.Context) ([]byte, error) {
		return []byte("fresh"), nil
	})
	if err != nil || hit || string(data) != "fresh" {
		t.Fatalf("Cached(refresh) = %q, %v, %v", data, hit, err)
	}
	stored, _, _ := c.Get(ctx, "k")
	if string(stored) != "fresh" {
		t.Errorf("refresh should overwrite cache, got %q", stored)
	}
}

func TestClientCachedFetchError(t *testing.T) {
	c := cache.NewMemoryCache(0)
	client := newTestClient(c)

	wantErr := errors.New("boom")
	_, _, err := client.Cached(context.Background(), "k", false, func(context.Context) ([]byte, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Cached() error = %v, want %v", err, wantErr)
	}
	if c.Len() != 0 {
		t.Error("failed fetch should not be cached")
	}
}

func TestClientRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := newTestClient(nil)
	client.SetRateLimit(20, 1)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, _, err := client.Fetch(context.Background(), server.URL); err != nil {
			t.Fatal(err)
		}
	}
	// Burst of one: the second and third requests each wait ~50ms.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("3 requests at 20/s took %v, want >= 80ms", elapsed)
	}

	client.SetRateLimit(0, 0)
	if client.limiter != nil {
		t.Error("SetRateLimit(0) should remove the limiter")
	}
}

func TestClientContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := newTestClient(nil).Get(ctx, server.URL)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v, want context.Canceled", err)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		wantErr   error
		retryable bool
	}{
		{200, nil, false},
		{204, nil, false},
		{404, ErrNotFound, false},
		{403, ErrNetwork, false},
		{429, ErrNetwork, true},
		{500, ErrNetwork, true},
		{503, ErrNetwork, true},
	}
	for _, tt := range tests {
		err := checkStatus(tt.code)
		if !errors.Is(err, tt.wantErr) && !(err == nil && tt.wantErr == nil) {
			t.Errorf("checkStatus(%d) = %v, want %v", tt.code, err, tt.wantErr)
		}
		if IsRetryable(err) != tt.retryable {
			t.Errorf("checkStatus(%d) retryable = %v, want %v", tt.code, IsRetryable(err), tt.retryable)
		}
	}
}

func TestKeyType(t *testing.T) {
	tests := map[string]string{
		"tile:osm:1/2/3": "tile",
		"export:abc":     "export",
		"belton:tile:1":  "tile",
		"http:ns:k":      "http",
		"nocolon":        "other",
		":leading-colon": "other",
	}
	for key, want := range tests {
		if got := keyType(key); got != want {
			t.Errorf("keyType(%q) = %q, want %q", key, got, want)
		}
	}
}

type fetchRecorder struct {
	mu       sync.Mutex
	statuses []int
	sizes    []int
}

func (f *fetchRecorder) OnFetch(_ context.Context, _, _ string, status, size int, _ time.Duration, _ error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
	f.sizes = append(f.sizes, size)
}

func TestClientFetchHooks(t *testing.T) {
	rec := &fetchRecorder{}
	observability.SetFetchHooks(rec)
	defer observability.Reset()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("tile"))
	}))
	defer server.Close()

	if _, _, err := newTestClient(nil).Get(context.Background(), server.URL+"/9/117/208.png"); err != nil {
		t.Fatal(err)
	}
	if len(rec.statuses) != 2 || rec.statuses[0] != 503 || rec.statuses[1] != 200 || rec.sizes[1] != 4 {
		t.Errorf("fetch events = %v / %v, want a 503 then a 4-byte 200", rec.statuses, rec.sizes)
	}
}
