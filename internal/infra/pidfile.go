package infra

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/focusshield/focusshield/internal/domain"
)

const pidFileName = "shieldd.pid"

// pidEntry is the persisted pidfile shape.
type pidEntry struct {
	PID       int   `json:"pid"`
	StartedAt int64 `json:"started_at"`
}

// PidFileRegistry implements domain.DaemonRegistry on a JSON pidfile.
// Writes are atomic (temp file + rename) so a crashed writer never leaves a
// torn file behind.
type PidFileRegistry struct {
	path           string
	processManager domain.ProcessManager
}

// NewPidFileRegistry creates a pidfile registry in dataDir.
func NewPidFileRegistry(dataDir string, pm domain.ProcessManager) *PidFileRegistry {
	return &PidFileRegistry{
		path:           filepath.Join(dataDir, pidFileName),
		processManager: pm,
	}
}

// NewPidFileRegistryWithPath creates a registry at a specific path (for testing).
func NewPidFileRegistryWithPath(path string, pm domain.ProcessManager) *PidFileRegistry {
	return &PidFileRegistry{path: path, processManager: pm}
}

// Register saves the daemon's PID and start time.
func (r *PidFileRegistry) Register(pid int, startedAt int64) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return fmt.Errorf("create pidfile directory: %w", err)
	}

	data, err := json.Marshal(pidEntry{PID: pid, StartedAt: startedAt})
	if err != nil {
		return err
	}

	tmpPath := fmt.Sprintf("%s.%d.tmp", r.path, os.Getpid())
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Current returns the registered PID and whether that process is alive.
// A missing pidfile yields pid 0 and alive false.
func (r *PidFileRegistry) Current() (int, bool, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, err
	}

	var entry pidEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return 0, false, err
	}

	return entry.PID, r.processManager.IsRunning(entry.PID), nil
}

// Clear removes the pidfile.
func (r *PidFileRegistry) Clear() error {
	err := os.Remove(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Ensure PidFileRegistry implements domain.DaemonRegistry.
var _ domain.DaemonRegistry = (*PidFileRegistry)(nil)
