package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dailyart/pkg/cache"
	"github.com/matzehuels/dailyart/pkg/observability"
	"github.com/matzehuels/dailyart/pkg/palette"
	"github.com/matzehuels/dailyart/pkg/pipeline"
	"github.com/matzehuels/dailyart/pkg/seed"
	"github.com/matzehuels/dailyart/pkg/sink"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(fc, nil, logger)
	return New(runner, logger, Options{
		Width:  64,
		Height: 64,
		Now:    func() time.Time { return time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC) },
	})
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Version == "" || body.GoVersion == "" {
		t.Errorf("health = %+v", body)
	}
}

func TestPalettes(t *testing.T) {
	rec := get(t, newTestServer(t), "/palettes")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body []paletteResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body) != palette.Default().Len() {
		t.Fatalf("got %d palettes", len(body))
	}
	if body[0].Name != "Cosmic Scene" || body[0].BgStart != "#00000a" {
		t.Errorf("palette 0 = %+v", body[0])
	}
}

func TestArtReturnsPNG(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/art/2024-01-01")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}
	if got, want := rec.Header().Get(HeaderSeed), seed.Derive("2024-01-01").Hex(); got != want {
		t.Errorf("%s = %q, want %q", HeaderSeed, got, want)
	}
	if rec.Header().Get(HeaderPalette) == "" {
		t.Errorf("%s missing", HeaderPalette)
	}
	if rec.Header().Get(HeaderCache) != "MISS" {
		t.Errorf("first request should miss the cache")
	}

	img, err := sink.Decode(rec.Body.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Errorf("image is %v, want 64x64", b)
	}

	again := get(t, s, "/art/2024-01-01")
	if again.Header().Get(HeaderCache) != "HIT" {
		t.Error("second request should hit the cache")
	}
	if !bytes.Equal(rec.Body.Bytes(), again.Body.Bytes()) {
		t.Error("same date served different bytes")
	}
}

func TestArtQueryParameters(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/art/2024-01-01?width=40&height=20&format=jpeg&palette=Fever%20Dream&style=bubbles")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q", ct)
	}
	if p := rec.Header().Get(HeaderPalette); p != "Fever Dream" {
		t.Errorf("palette = %q", p)
	}
	img, err := sink.Decode(rec.Body.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Errorf("image is %v, want 40x20", b)
	}
}

func TestArtToday(t *testing.T) {
	rec := get(t, newTestServer(t), "/art/today")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got, want := rec.Header().Get(HeaderSeed), seed.Derive("2030-01-01").Hex(); got != want {
		t.Errorf("seed = %q, want today's %q", got, want)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "public, max-age=60" {
		t.Errorf("Cache-Control = %q", cc)
	}
}

func TestArtNotModified(t *testing.T) {
	s := newTestServer(t)
	first := get(t, s, "/art/2024-01-01")
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("no ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/art/2024-01-01", nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", rec.Code)
	}
}

func TestArtBadRequests(t *testing.T) {
	tests := []struct {
		name, target, code string
	}{
		{"bad date", "/art/2024-02-30", "INVALID_DATE"},
		{"not a date", "/art/yesterday", "INVALID_DATE"},
		{"bad width", "/art/2024-01-01?width=wide", "INVALID_DIMENSIONS"},
		{"zero width", "/art/2024-01-01?width=0", "INVALID_DIMENSIONS"},
		{"zero size", "/art/2024-01-01?width=0&height=0", "INVALID_DIMENSIONS"},
		{"negative height", "/art/2024-01-01?height=-3", "INVALID_DIMENSIONS"},
		{"too large", "/art/2024-01-01?width=5000", "INVALID_DIMENSIONS"},
		{"bad style", "/art/2024-01-01?style=splines", "INVALID_STYLE"},
		{"bad format", "/art/2024-01-01?format=svg", "INVALID_FORMAT"},
		{"bad palette", "/art/2024-01-01?palette=Sunset", "INVALID_PALETTE"},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var body errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
			if body.Error == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestHTTPHooks(t *testing.T) {
	rec := &recordingHTTPHooks{}
	observability.SetHTTPHooks(rec)
	defer observability.Reset()

	get(t, newTestServer(t), "/healthz")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.requests != 1 || len(rec.statuses) != 1 || rec.statuses[0] != http.StatusOK {
		t.Errorf("requests=%d statuses=%v", rec.requests, rec.statuses)
	}
}

func TestListenAndServeShutsDown(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	requests int
	statuses []int
}

func (h *recordingHTTPHooks) OnRequest(context.Context, string, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests++
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestMetricsEndpoint(t *testing.T) {
	if rec := get(t, newTestServer(t), "/metrics"); rec.Code != http.StatusNotFound {
		t.Errorf("/metrics without Stats = %d, want 404", rec.Code)
	}

	stats := observability.NewStats()
	stats.Register()
	defer observability.Reset()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(fc, nil, logger), logger, Options{Width: 32, Height: 32, Stats: stats})

	get(t, s, "/art/2024-01-01")
	get(t, s, "/art/2024-01-01")
	rec := get(t, s, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics = %d", rec.Code)
	}

	// A cache hit is not a generation.
	tests := []struct {
		metric string
		labels []string
		want   string
	}{
		{"dailyart_pipeline_generations_total", []string{`result="ok"`, `style="fractured"`}, "1"},
		{"dailyart_cache_events_total", []string{`event="hit"`}, "1"},
		{"dailyart_cache_events_total", []string{`event="miss"`}, "1"},
		{"dailyart_http_responses_total", []string{`method="GET"`, `status="200"`}, "2"},
	}
	body := rec.Body.String()
	for _, tt := range tests {
		if got := sampleValue(body, tt.metric, tt.labels...); got != tt.want {
			t.Errorf("%s%v = %q, want %q", tt.metric, tt.labels, got, tt.want)
		}
	}
}

// sampleValue returns the value of the first sample of metric carrying
// every label, or "" when there is none.
func sampleValue(exposition, metric string, labels ...string) string {
	for _, line := range strings.Split(exposition, "\n") {
		if !strings.HasPrefix(line, metric+"{") {
			continue
		}
		end := strings.LastIndex(line, "}")
		if end < 0 {
			continue
		}
		matched := true
		for _, l := range labels {
			if !strings.Contains(line[:end], l) {
				matched = false
				break
			}
		}
		if matched {
			return strings.TrimSpace(line[end+1:])
		}
	}
	return ""
}

func TestArtSizeLimit(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(fc, nil, logger), logger, Options{Width: 64, Height: 64, MaxSize: 128})

	tests := []struct {
		target string
		want   int
	}{
		{"/art/2024-01-01?width=128&height=128", http.StatusOK},
		{"/art/2024-01-01?width=200&height=200", http.StatusBadRequest},
		{"/art/2024-01-01?width=0&height=0", http.StatusBadRequest},
		{"/art/2024-01-01?width=0", http.StatusBadRequest},
		{"/art/2024-01-01?height=", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if rec := get(t, s, tt.target); rec.Code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.target, rec.Code, tt.want)
		}
	}
}

func TestArtTimeout(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(fc, nil, logger), logger, Options{
		Width:          64,
		Height:         64,
		RequestTimeout: time.Nanosecond,
	})

	rec := get(t, s, "/art/2024-01-01")
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("timed out response carried a body: %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); strings.HasPrefix(ct, "image/") {
		t.Errorf("timed out response has Content-Type %q", ct)
	}
}
