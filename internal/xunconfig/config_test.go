package xunconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(``), "xun.yaml")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Store != MemStoreBackend {
		t.Fatalf("Store = %q, want %q", cfg.Store, MemStoreBackend)
	}
	if cfg.Driver != SequentialDriver {
		t.Fatalf("Driver = %q, want %q", cfg.Driver, SequentialDriver)
	}
	if cfg.Workers != DefaultWorkers {
		t.Fatalf("Workers = %d, want %d", cfg.Workers, DefaultWorkers)
	}
	if cfg.CacheDir != DefaultCacheDir {
		t.Fatalf("CacheDir = %q, want %q", cfg.CacheDir, DefaultCacheDir)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	data := []byte("store: sqlite\ndriver: queued\nworkers: 8\ncache_dir: .cache\n")
	cfg, err := ParseConfig(data, "xun.yaml")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Store != SQLiteStoreBackend {
		t.Fatalf("Store = %q, want %q", cfg.Store, SQLiteStoreBackend)
	}
	if cfg.Driver != QueuedDriver {
		t.Fatalf("Driver = %q, want %q", cfg.Driver, QueuedDriver)
	}
	if cfg.Workers != 8 {
		t.Fatalf("Workers = %d, want 8", cfg.Workers)
	}
}

func TestParseConfigRejectsUnknownStore(t *testing.T) {
	_, err := ParseConfig([]byte("store: memcached\n"), "xun.yaml")
	if err == nil {
		t.Fatalf("expected error for unknown store backend")
	}
}

func TestParseConfigRequiresRPCAddr(t *testing.T) {
	_, err := ParseConfig([]byte("store: rpc\n"), "xun.yaml")
	if err == nil {
		t.Fatalf("expected error when store=rpc and rpc_addr is omitted")
	}
}

func TestParseConfigRequiresWorkerAddrs(t *testing.T) {
	_, err := ParseConfig([]byte("driver: remote\n"), "xun.yaml")
	if err == nil {
		t.Fatalf("expected error when driver=remote and worker_addrs is omitted")
	}
}

func TestFindConfigWalksUpToParent(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "xun.yaml"), []byte("store: mem\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	found, err := FindConfig(sub)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	want := filepath.Join(root, "xun.yaml")
	if found != want {
		t.Fatalf("FindConfig = %q, want %q", found, want)
	}
}

func TestFindConfigReturnsEmptyWhenMissing(t *testing.T) {
	dir := t.TempDir()
	found, err := FindConfig(dir)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if found != "" {
		t.Fatalf("FindConfig = %q, want empty", found)
	}
}

func TestSQLiteStorePath(t *testing.T) {
	cfg := &Config{CacheDir: ".xun"}
	got := cfg.SQLiteStorePath("/proj")
	want := filepath.Join("/proj", ".xun", DefaultSQLiteFile)
	if got != want {
		t.Fatalf("SQLiteStorePath = %q, want %q", got, want)
	}
}
