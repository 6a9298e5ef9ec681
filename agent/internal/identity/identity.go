// Package identity gives a reporter a node_id that survives restarts and
// hostname or address changes.
//
// The token is a random UUID written to a state file on first run and read
// back afterwards. When the file cannot be created the reporter falls back to
// a host-derived id ("<hostname>-<os>-<version>") that is stable as long as
// the host is.
package identity

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Load returns the node token stored at path, creating it when absent.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		id := strings.TrimSpace(string(data))
		if _, perr := uuid.Parse(id); perr == nil {
			return id, nil
		}
		slog.Warn("identity: state file holds no valid token, replacing", "path", path)
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("identity: read %q: %w", path, err)
	}

	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("identity: create state dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("identity: write %q: %w", path, err)
	}
	slog.Info("identity: created node token", "path", path, "node_id", id)
	return id, nil
}

// HostDerived builds the fallback id from host facts.
func HostDerived(hostname, osName, osVersion string) string {
	orUnknown := func(s string) string {
		if s == "" {
			return "unknown"
		}
		return s
	}
	return orUnknown(hostname) + "-" + orUnknown(osName) + "-" + orUnknown(osVersion)
}
