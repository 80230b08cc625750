package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistryDefaults(t *testing.T) {
	Reset()

	if _, ok := Generation().(NoopGenerationHooks); !ok {
		t.Errorf("Generation() = %T, want NoopGenerationHooks", Generation())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want NoopCacheHooks", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want NoopHTTPHooks", HTTP())
	}
}

func TestRegisterAndReset(t *testing.T) {
	defer Reset()

	stats := NewStats()
	stats.Register()
	if Generation() != GenerationHooks(stats) || Cache() != CacheHooks(stats) || HTTP() != HTTPHooks(stats) {
		t.Fatal("Register did not install every hook")
	}

	SetGenerationHooks(nil)
	if Generation() != GenerationHooks(stats) {
		t.Error("SetGenerationHooks(nil) replaced the registered hooks")
	}

	Reset()
	if _, ok := Generation().(NoopGenerationHooks); !ok {
		t.Error("Reset() did not restore the no-op hooks")
	}
}

func TestStatsCounts(t *testing.T) {
	ctx := context.Background()
	s := NewStats()

	s.OnGenerateStart(ctx, "2024-01-01", "fractured")
	s.OnPassComplete(ctx, "2024-01-01", "grid", 180, time.Millisecond)
	s.OnPassComplete(ctx, "2024-01-02", "grid", 20, time.Millisecond)
	s.OnPassComplete(ctx, "2024-01-02", "walkers", 900, 2*time.Millisecond)
	s.OnGenerateComplete(ctx, "2024-01-01", "fractured", 10*time.Millisecond, nil)
	s.OnGenerateComplete(ctx, "2024-13-01", "fractured", 0, errors.New("bad date"))

	s.OnCacheMiss(ctx, "artifact")
	s.OnCacheSet(ctx, "artifact", 4096)
	s.OnCacheHit(ctx, "artifact")
	s.OnCacheHit(ctx, "artifact")
	s.OnCacheHit(ctx, "artifact")

	s.OnRequest(ctx, "GET", "/art/today")
	s.OnResponse(ctx, "GET", "/art/today", 200, time.Millisecond)
	s.OnRequest(ctx, "GET", "/art/nope")
	s.OnResponse(ctx, "GET", "/art/nope", 400, time.Millisecond)

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"generations ok", s.generations.WithLabelValues("fractured", ResultOK), 1},
		{"generations error", s.generations.WithLabelValues("fractured", ResultError), 1},
		{"grid draws", s.passDraws.WithLabelValues("grid"), 200},
		{"walkers draws", s.passDraws.WithLabelValues("walkers"), 900},
		{"cache hits", s.cacheEvents.WithLabelValues("artifact", CacheEventHit), 3},
		{"cache misses", s.cacheEvents.WithLabelValues("artifact", CacheEventMiss), 1},
		{"cache sets", s.cacheEvents.WithLabelValues("artifact", CacheEventSet), 1},
		{"cache bytes", s.cacheBytes.WithLabelValues("artifact"), 4096},
		{"200 responses", s.requests.WithLabelValues("GET", "200"), 1},
		{"400 responses", s.requests.WithLabelValues("GET", "400"), 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}

	// Failed generations are counted but not timed.
	if n := testutil.CollectAndCount(s.generationDuration); n != 1 {
		t.Errorf("generation duration series = %d, want 1", n)
	}
	if n := testutil.CollectAndCount(s.passDuration); n != 2 {
		t.Errorf("pass duration series = %d, want 2", n)
	}
}

func TestStatsHandler(t *testing.T) {
	s := NewStats()
	s.OnCacheHit(context.Background(), "artifact")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"dailyart_cache_events_total", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition is missing %s", want)
		}
	}
}

func TestStatsConcurrent(t *testing.T) {
	ctx := context.Background()
	s := NewStats()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.OnPassComplete(ctx, "d", "walkers", 1, 0)
				s.OnCacheHit(ctx, "artifact")
				s.OnResponse(ctx, "GET", "/", 200, 0)
			}
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(s.passDraws.WithLabelValues("walkers")); got != 800 {
		t.Errorf("walkers draws = %v, want 800", got)
	}
	if got := testutil.ToFloat64(s.cacheEvents.WithLabelValues("artifact", CacheEventHit)); got != 800 {
		t.Errorf("cache hits = %v, want 800", got)
	}
	if got := testutil.ToFloat64(s.requests.WithLabelValues("GET", "200")); got != 800 {
		t.Errorf("200 responses = %v, want 800", got)
	}
}
