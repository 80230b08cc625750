package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/dailyart/pkg/cache"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCacheClearCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := fc.Set(ctx, "artifact:abc", []byte("png"), time.Hour); err != nil {
		t.Fatal(err)
	}

	cfg := writeConfig(t, "[cache]\ndir = \""+filepath.ToSlash(dir)+"\"\n")
	if err := execute(t, newTestCLI(t), "--config", cfg, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, ok, _ := fc.Get(ctx, "artifact:abc"); ok {
		t.Error("entry survived cache clear")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache dir should be recreated: %v", err)
	}
}

func TestCacheClearMissingDir(t *testing.T) {
	cfg := writeConfig(t, "[cache]\ndir = \""+filepath.ToSlash(filepath.Join(t.TempDir(), "none"))+"\"\n")
	if err := execute(t, newTestCLI(t), "--config", cfg, "cache", "clear"); err != nil {
		t.Errorf("clearing a missing cache: %v", err)
	}
}

func TestNewCacheBackends(t *testing.T) {
	c := newTestCLI(t)
	cfg, err := c.Config()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	ch, keyer, err := c.newCache(ctx, cfg, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ch.(*cache.NullCache); !ok || keyer != nil {
		t.Errorf("--no-cache gave %T", ch)
	}

	ch, _, err = c.newCache(ctx, cfg, false)
	if err != nil {
		t.Fatal(err)
	}
	fc, ok := ch.(*cache.FileCache)
	if !ok {
		t.Fatalf("default backend = %T, want *cache.FileCache", ch)
	}
	if filepath.Base(fc.Dir()) != appName {
		t.Errorf("cache dir = %s", fc.Dir())
	}

	cfg.Cache.Disabled = true
	if ch, _, _ = c.newCache(ctx, cfg, false); ch == nil {
		t.Fatal("nil cache")
	}
	if _, ok := ch.(*cache.NullCache); !ok {
		t.Errorf("disabled cache gave %T", ch)
	}
}
