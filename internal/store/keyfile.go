package store

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
)

const (
	keyFileName = ".key"
	keySize     = 32 // 256-bit SQLCipher passphrase
)

// KeyFile stores the encryption key for the encrypted backend in a hidden
// file with 0600 permissions next to the database.
type KeyFile struct {
	path string
}

// NewKeyFile creates a KeyFile for the given data directory.
func NewKeyFile(dataDir string) *KeyFile {
	return &KeyFile{path: filepath.Join(dataDir, keyFileName)}
}

// Get reads the encryption key.
func (k *KeyFile) Get() ([]byte, error) {
	encoded, err := os.ReadFile(k.path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	key, err := base64.StdEncoding.DecodeString(string(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("invalid key size: got %d, want %d", len(key), keySize)
	}
	return key, nil
}

// Store writes the key with restricted permissions.
func (k *KeyFile) Store(key []byte) error {
	if len(key) != keySize {
		return fmt.Errorf("invalid key size: got %d, want %d", len(key), keySize)
	}
	if err := os.MkdirAll(filepath.Dir(k.path), 0700); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(key)
	if err := os.WriteFile(k.path, []byte(encoded), 0600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	return nil
}

// Exists checks whether a key has been generated.
func (k *KeyFile) Exists() bool {
	_, err := os.Stat(k.path)
	return err == nil
}

// Ensure returns the stored key, generating and persisting a fresh random
// one on first use.
func (k *KeyFile) Ensure() ([]byte, error) {
	if k.Exists() {
		return k.Get()
	}
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	if err := k.Store(key); err != nil {
		return nil, err
	}
	return key, nil
}
