package domain

import "context"

// SettingsStore persists the settings aggregate.
// Implementations: JSON file store, SQLCipher encrypted store.
type SettingsStore interface {
	// Load returns the current settings, performing legacy-shape migration
	// and defaulting of missing fields. Expired snooze/disable windows are
	// cleared on read.
	Load(ctx context.Context) (Settings, error)

	// Save persists the full settings document.
	Save(ctx context.Context, s Settings) error
}

// StatisticsStore persists the daily counters.
type StatisticsStore interface {
	// Load returns the current statistics, resetting them first if
	// SessionStart falls on an earlier calendar day than now.
	Load(ctx context.Context, now int64) (Statistics, error)

	// Save persists the statistics document.
	Save(ctx context.Context, s Statistics) error
}

// Notifier shows a user-facing notification. Failures are the caller's to
// swallow; no notification outcome may abort a state transition.
type Notifier interface {
	Notify(title, message string) error
}

// ProcessManager handles OS process operations.
// Implementation: uses gopsutil for cross-platform support.
type ProcessManager interface {
	// IsRunning checks if a PID exists and is running.
	IsRunning(pid int) bool

	// GetCurrentPID returns the current process PID.
	GetCurrentPID() int
}

// DaemonRegistry records the running daemon for single-instance checks and
// the status command. Implementation: pidfile with atomic writes.
type DaemonRegistry interface {
	// Register saves the current daemon's PID and start time.
	Register(pid int, startedAt int64) error

	// Current returns the registered PID and whether that process is alive.
	Current() (pid int, alive bool, err error)

	// Clear removes the registration.
	Clear() error
}
