package configwatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadInt parses a file holding one integer; anything else is rejected.
func loadInt(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse: %w", err)
	}
	return n, nil
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// start runs Watch in the background and returns the channel onChange feeds.
func start(t *testing.T, path string) <-chan int {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan int, 16)
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, "test config", loadInt, func(n int) { got <- n }) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	return got
}

// rewriteUntil rewrites path with content every 200ms until onChange reports
// want. Repeating covers the window before the watcher is registered.
func rewriteUntil(t *testing.T, path, content string, got <-chan int, want int) {
	t.Helper()
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()
	deadline := time.After(5 * time.Second)
	write(t, path, content)
	for {
		select {
		case n := <-got:
			if n == want {
				return
			}
		case <-tick.C:
			write(t, path, content)
		case <-deadline:
			t.Fatalf("onChange never reported %d", want)
		}
	}
}

// expectOnly fails if onChange reports anything but prev within 300ms. Late
// reloads of the previous content may still arrive and are allowed.
func expectOnly(t *testing.T, got <-chan int, prev int) {
	t.Helper()
	timeout := time.After(300 * time.Millisecond)
	for {
		select {
		case n := <-got:
			if n != prev {
				t.Fatalf("onChange reported %d, want nothing new after %d", n, prev)
			}
		case <-timeout:
			return
		}
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	write(t, p, "1")
	got := start(t, p)

	rewriteUntil(t, p, "2", got, 2)
}

func TestWatch_InvalidReloadSkipped(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	write(t, p, "1")
	got := start(t, p)

	// Let the watcher register, then write garbage: nothing may reach onChange.
	rewriteUntil(t, p, "5", got, 5)
	write(t, p, "not a number")
	expectOnly(t, got, 5)

	rewriteUntil(t, p, "7", got, 7)
}

func TestWatch_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	write(t, p, "1")
	got := start(t, p)

	rewriteUntil(t, p, "3", got, 3)
	write(t, filepath.Join(dir, "other.yaml"), "9")
	expectOnly(t, got, 3)
}

func TestWatch_MissingDirectory(t *testing.T) {
	p := filepath.Join(t.TempDir(), "absent", "config.yaml")
	err := Watch(context.Background(), p, "test config", loadInt, func(int) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test config: watch")
}
