package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/focusshield/focusshield/internal/domain"
)

const (
	settingsFileName = "settings.json"
	statsFileName    = "statistics.json"
)

// FileStore implements domain.SettingsStore and domain.StatisticsStore on
// two JSON files. Writes go through a temp file plus rename so readers never
// observe a torn document; a mutex serializes read-modify-write cycles
// within the process.
type FileStore struct {
	mu           sync.Mutex
	settingsPath string
	statsPath    string
	clock        func() time.Time
}

// NewFileStore creates a file store rooted at dataDir.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{
		settingsPath: filepath.Join(dataDir, settingsFileName),
		statsPath:    filepath.Join(dataDir, statsFileName),
		clock:        time.Now,
	}, nil
}

// NewFileStoreWithClock creates a file store with a fixed clock (for testing).
func NewFileStoreWithClock(dataDir string, clock func() time.Time) (*FileStore, error) {
	fs, err := NewFileStore(dataDir)
	if err != nil {
		return nil, err
	}
	fs.clock = clock
	return fs, nil
}

// Load reads the settings document, migrating the legacy single-zone shape
// when present and defaulting every missing field. A migrated document is
// persisted immediately so the legacy keys disappear.
func (f *FileStore) Load(ctx context.Context) (domain.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var doc document
	data, err := os.ReadFile(f.settingsPath)
	switch {
	case os.IsNotExist(err):
		// First run: defaults only.
	case err != nil:
		return domain.Settings{}, fmt.Errorf("read settings: %w", err)
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return domain.Settings{}, fmt.Errorf("decode settings: %w", err)
		}
	}

	if doc.hasLegacyShape() {
		doc.migrate()
		if err := atomicWriteJSON(f.settingsPath, &doc); err != nil {
			return domain.Settings{}, fmt.Errorf("persist migrated settings: %w", err)
		}
	}

	return doc.toSettings(f.clock()), nil
}

// Save persists the full settings document.
func (f *FileStore) Save(ctx context.Context, s domain.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc := fromSettings(s)
	if err := atomicWriteJSON(f.settingsPath, &doc); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// LoadStats reads the statistics document, resetting it first when its
// session started on an earlier calendar day.
func (f *FileStore) LoadStats(ctx context.Context, now int64) (domain.Statistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var stored *domain.Statistics
	data, err := os.ReadFile(f.statsPath)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return domain.Statistics{}, fmt.Errorf("read statistics: %w", err)
	default:
		var s domain.Statistics
		if err := json.Unmarshal(data, &s); err != nil {
			return domain.Statistics{}, fmt.Errorf("decode statistics: %w", err)
		}
		stored = &s
	}

	current, reset := statsCurrent(stored, now)
	if reset {
		if err := atomicWriteJSON(f.statsPath, &current); err != nil {
			return domain.Statistics{}, fmt.Errorf("persist reset statistics: %w", err)
		}
	}
	return current, nil
}

// SaveStats persists the statistics document.
func (f *FileStore) SaveStats(ctx context.Context, s domain.Statistics) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := atomicWriteJSON(f.statsPath, &s); err != nil {
		return fmt.Errorf("write statistics: %w", err)
	}
	return nil
}

// Stats adapts the store to the domain.StatisticsStore interface.
func (f *FileStore) Stats() domain.StatisticsStore {
	return statsAdapter{f}
}

type statsAdapter struct{ f *FileStore }

func (a statsAdapter) Load(ctx context.Context, now int64) (domain.Statistics, error) {
	return a.f.LoadStats(ctx, now)
}

func (a statsAdapter) Save(ctx context.Context, s domain.Statistics) error {
	return a.f.SaveStats(ctx, s)
}

// atomicWriteJSON writes v to path atomically (temp file + rename).
func atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := fmt.Sprintf("%s.%d.tmp", path, os.Getpid())
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Ensure FileStore implements domain.SettingsStore.
var _ domain.SettingsStore = (*FileStore)(nil)
