package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "artifact:x", []byte("png"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if data, hit, err := c.Get(ctx, "artifact:x"); hit || data != nil || err != nil {
		t.Errorf("Get = %v, %v, %v; want a clean miss", data, hit, err)
	}
	if err := c.Delete(ctx, "artifact:x"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	want := []byte{0x89, 'P', 'N', 'G'}
	if err := c.Set(ctx, "artifact:abc", want, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, hit, err := c.Get(ctx, "artifact:abc")
	if err != nil || !hit {
		t.Fatalf("Get = hit %v, err %v", hit, err)
	}
	if string(got) != string(want) {
		t.Errorf("Get = %v, want %v", got, want)
	}

	if err := c.Delete(ctx, "artifact:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "artifact:abc"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "artifact:abc"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	fc := c.(*FileCache)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fc.now = func() time.Time { return now }

	_ = c.Set(ctx, "ttl", []byte("v"), time.Hour)
	_ = c.Set(ctx, "forever", []byte("v"), 0)

	now = now.Add(59 * time.Minute)
	if _, hit, _ := c.Get(ctx, "ttl"); !hit {
		t.Error("entry expired early")
	}
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "ttl"); hit {
		t.Error("expired entry was returned")
	}
	if _, err := os.Stat(fc.path("ttl")); !os.IsNotExist(err) {
		t.Error("expired entry was not removed")
	}
	now = now.AddDate(10, 0, 0)
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl expired")
	}
}

func TestFileCacheTruncatedEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	fc := c.(*FileCache)

	_ = c.Set(ctx, "k", []byte("v"), 0)
	if err := os.WriteFile(fc.path("k"), []byte("xy"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("truncated entry: hit %v, err %v; want clean miss", hit, err)
	}
}

func TestFileCacheUsage(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	fc := c.(*FileCache)

	_ = c.Set(ctx, "a", []byte("12345"), 0)
	_ = c.Set(ctx, "b", []byte("123"), time.Hour)
	n, size, err := fc.Usage()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || size != 8 {
		t.Errorf("Usage = %d entries, %d bytes; want 2, 8", n, size)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)
	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	clearer, ok := c.(Clearer)
	if !ok {
		t.Fatal("FileCache should implement Clearer")
	}
	if err := clearer.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, k := range []string{"a", "b"} {
		if _, hit, _ := c.Get(ctx, k); hit {
			t.Errorf("%s survived Clear", k)
		}
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache dir missing after Clear: %v", err)
	}
	if got := c.(*FileCache).Dir(); got != dir {
		t.Errorf("Dir() = %q, want %q", got, dir)
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("DAILYART_REDIS_ADDR")
	if addr == "" {
		t.Skip("DAILYART_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisOptions{Addr: addr})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	key := "dailyart:test:" + Hash([]byte(t.Name()))
	defer c.Delete(ctx, key)

	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Fatalf("Get before Set = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, key, []byte("png"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(got) != "png" {
		t.Errorf("Get = %q, hit %v, err %v", got, hit, err)
	}
}

func TestNewRedisCacheRequiresAddr(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), RedisOptions{}); err == nil {
		t.Error("expected error for empty address")
	}
}

func TestHash(t *testing.T) {
	const want = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got := Hash([]byte("hello")); got != want {
		t.Errorf("Hash(hello) = %s, want %s", got, want)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := ArtifactKeyOpts{Width: 1080, Height: 1080, Style: "fractured", Format: "png", Registry: "abc"}

	key := k.ArtifactKey("2024-01-01", base)
	if !strings.HasPrefix(key, "artifact:") || len(key) != len("artifact:")+64 {
		t.Errorf("ArtifactKey = %q", key)
	}
	if key != k.ArtifactKey("2024-01-01", base) {
		t.Error("ArtifactKey should be deterministic")
	}

	variants := map[string]ArtifactKeyOpts{}
	v := base
	v.Width = 512
	variants["width"] = v
	v = base
	v.Height = 512
	variants["height"] = v
	v = base
	v.Style = "bubbles"
	variants["style"] = v
	v = base
	v.Palette = "Fever Dream"
	variants["palette"] = v
	v = base
	v.Registry = "def"
	variants["registry"] = v
	v = base
	v.Format = "jpeg"
	variants["format"] = v

	for name, opts := range variants {
		if k.ArtifactKey("2024-01-01", opts) == key {
			t.Errorf("changing %s did not change the key", name)
		}
	}
	if k.ArtifactKey("2024-01-02", base) == key {
		t.Error("changing the date did not change the key")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "dailyart:v1:")
	opts := ArtifactKeyOpts{Width: 64, Height: 64, Style: "fractured", Format: "png"}

	got := scoped.ArtifactKey("2024-01-01", opts)
	want := "dailyart:v1:" + inner.ArtifactKey("2024-01-01", opts)
	if got != want {
		t.Errorf("ScopedKeyer.ArtifactKey = %q, want %q", got, want)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.ArtifactKey("2024-01-01", ArtifactKeyOpts{})
	if !strings.HasPrefix(key, "prefix:artifact:") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string { return "i/o timeout" }
func (timeoutErr) Timeout() bool { return true }
func (timeoutErr) Temporary() bool { return true }

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}

	err := Retryable(ErrUnavailable)
	if !IsRetryable(err) {
		t.Error("marked error is not retryable")
	}
	if !errors.Is(err, ErrUnavailable) || err.Error() != ErrUnavailable.Error() {
		t.Errorf("marking changed the error: %v", err)
	}
	if !IsRetryable(fmt.Errorf("dial: %w", timeoutErr{})) {
		t.Error("network timeout is not retryable")
	}
	if IsRetryable(ErrUnavailable) {
		t.Error("unmarked error is retryable")
	}
}

func TestBackoffRetry(t *testing.T) {
	ctx := context.Background()
	fast := Backoff{Attempts: 3, Delay: time.Millisecond}
	permanent := errors.New("bad auth")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{"succeeds first time", 0, nil, 1, nil},
		{"permanent error stops", 5, permanent, 1, permanent},
		{"recovers after one failure", 1, Retryable(ErrUnavailable), 2, nil},
		{"gives up after attempts", 5, Retryable(ErrUnavailable), 3, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := fast.Retry(ctx, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil || tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBackoffRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(ErrUnavailable)
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
