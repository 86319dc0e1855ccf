package synonyms

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "synonyms.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	h := NewHolder(nil)
	if _, err := h.Reload(path); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	var reloads atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, h, logger, func(int) { reloads.Add(1) })
	}()

	time.Sleep(100 * time.Millisecond)

	// An unrelated file in the same directory is ignored.
	_ = os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1"), 0o644)
	_ = os.WriteFile(path, []byte(`synonyms: {"#lazer": ["brincadeira"]}`), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return h.Synonyms()["#brincadeira"] == "#lazer"
	}, "synonym file change not picked up")
	if _, ok := h.Synonyms()["#corrida"]; ok {
		t.Error("old aliases still present after reload")
	}

	// A broken file keeps the previous table.
	before := reloads.Load()
	_ = os.WriteFile(path, []byte("synonyms: [unclosed"), 0o644)
	time.Sleep(500 * time.Millisecond)
	if reloads.Load() != before {
		t.Error("broken file must not count as a reload")
	}
	if h.Synonyms()["#brincadeira"] != "#lazer" {
		t.Error("previous table lost after broken reload")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	defer goleak.VerifyNone(t)

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "synonyms.yaml"), NewHolder(nil), logger, nil)
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
