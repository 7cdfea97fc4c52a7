package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	// Ensure sqlcipher driver is registered.
	_ "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/focusshield/focusshield/internal/domain"
)

const (
	storeDBName = "shield.db"

	settingsKey = "settings"
	statsKey    = "statistics"
)

// EncryptedStore implements domain.SettingsStore and domain.StatisticsStore
// on a SQLCipher database. Zone documents carry real-world coordinates
// (home, office), so at-rest encryption is the default for shared machines.
type EncryptedStore struct {
	mu    sync.Mutex
	db    *sql.DB
	clock func() time.Time
}

// NewEncryptedStore opens (or creates) the encrypted database in dataDir,
// keyed with the SQLCipher passphrase via PRAGMA key.
func NewEncryptedStore(dataDir string, key []byte) (*EncryptedStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, storeDBName)
	keyHex := hex.EncodeToString(key)

	dsn := fmt.Sprintf("%s?_pragma_key=x'%s'&_pragma_cipher_page_size=4096", dbPath, keyHex)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open encrypted database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to encrypted database: %w", err)
	}

	s := &EncryptedStore{db: db, clock: time.Now}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *EncryptedStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the database connection.
func (s *EncryptedStore) Close() error {
	return s.db.Close()
}

// Load reads the settings document, migrating and defaulting like the file
// backend.
func (s *EncryptedStore) Load(ctx context.Context) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc document
	found, err := s.get(ctx, settingsKey, &doc)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("read settings: %w", err)
	}

	if found && doc.hasLegacyShape() {
		doc.migrate()
		if err := s.put(ctx, settingsKey, &doc); err != nil {
			return domain.Settings{}, fmt.Errorf("persist migrated settings: %w", err)
		}
	}

	return doc.toSettings(s.clock()), nil
}

// Save persists the full settings document.
func (s *EncryptedStore) Save(ctx context.Context, settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := fromSettings(settings)
	if err := s.put(ctx, settingsKey, &doc); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// LoadStats reads the statistics document with the lazy daily reset.
func (s *EncryptedStore) LoadStats(ctx context.Context, now int64) (domain.Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored domain.Statistics
	found, err := s.get(ctx, statsKey, &stored)
	if err != nil {
		return domain.Statistics{}, fmt.Errorf("read statistics: %w", err)
	}

	var ptr *domain.Statistics
	if found {
		ptr = &stored
	}
	current, reset := statsCurrent(ptr, now)
	if reset {
		if err := s.put(ctx, statsKey, &current); err != nil {
			return domain.Statistics{}, fmt.Errorf("persist reset statistics: %w", err)
		}
	}
	return current, nil
}

// SaveStats persists the statistics document.
func (s *EncryptedStore) SaveStats(ctx context.Context, st domain.Statistics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.put(ctx, statsKey, &st); err != nil {
		return fmt.Errorf("write statistics: %w", err)
	}
	return nil
}

// Stats adapts the store to the domain.StatisticsStore interface.
func (s *EncryptedStore) Stats() domain.StatisticsStore {
	return encStatsAdapter{s}
}

type encStatsAdapter struct{ s *EncryptedStore }

func (a encStatsAdapter) Load(ctx context.Context, now int64) (domain.Statistics, error) {
	return a.s.LoadStats(ctx, now)
}

func (a encStatsAdapter) Save(ctx context.Context, st domain.Statistics) error {
	return a.s.SaveStats(ctx, st)
}

func (s *EncryptedStore) get(ctx context.Context, key string, v any) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM documents WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, err
	}
	return true, nil
}

func (s *EncryptedStore) put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO documents (key, value, updated_at)
		VALUES (?, ?, ?)`,
		key, string(raw), s.clock().UnixMilli(),
	)
	return err
}

// Ensure EncryptedStore implements domain.SettingsStore.
var _ domain.SettingsStore = (*EncryptedStore)(nil)
