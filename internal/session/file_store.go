package session

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// FileStore keeps all sessions in a single JSON file
// When a key is configured the file content is sealed with secretbox
type FileStore struct {
	mu     sync.Mutex
	path   string
	key    *[32]byte
	logger *zap.Logger
	now    func() time.Time
}

// NewFileStore creates a store backed by the file at path
// encryptionKey must be empty or exactly 32 bytes long
func NewFileStore(path, encryptionKey string, logger *zap.Logger) (*FileStore, error) {
	store := &FileStore{
		path:   path,
		logger: logger,
		now:    time.Now,
	}

	if encryptionKey != "" {
		if len(encryptionKey) != 32 {
			return nil, fmt.Errorf("encryption key must be 32 bytes long, got %d", len(encryptionKey))
		}
		store.key = new([32]byte)
		copy(store.key[:], encryptionKey)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	return store, nil
}

// Get retrieves a session by id
func (f *FileStore) Get(ctx context.Context, id string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sessions, err := f.load()
	if err != nil {
		return nil, err
	}

	sess, ok := sessions[id]
	if !ok || sess.Expired(f.now()) {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Save creates or replaces the session
func (f *FileStore) Save(ctx context.Context, sess *Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	sessions, err := f.load()
	if err != nil {
		return err
	}
	sessions[sess.ID] = *sess
	return f.write(sessions)
}

// Delete removes the session
func (f *FileStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	sessions, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := sessions[id]; !ok {
		return nil
	}
	delete(sessions, id)
	return f.write(sessions)
}

// Sweep removes expired sessions and returns how many were dropped
func (f *FileStore) Sweep() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	sessions, err := f.load()
	if err != nil {
		f.logger.Error("Failed to load sessions for sweep", zap.Error(err))
		return 0
	}

	now := f.now()
	removed := 0
	for id, sess := range sessions {
		if sess.Expired(now) {
			delete(sessions, id)
			removed++
		}
	}
	if removed == 0 {
		return 0
	}

	if err := f.write(sessions); err != nil {
		f.logger.Error("Failed to write swept sessions", zap.Error(err))
		return 0
	}
	f.logger.Info("expired sessions swept", zap.Int("removed", removed))
	return removed
}

func (f *FileStore) load() (map[string]Session, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]Session), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if f.key != nil {
		data, err = f.open(data)
		if err != nil {
			return nil, err
		}
	}

	sessions := make(map[string]Session)
	if len(data) == 0 {
		return sessions, nil
	}
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode session file: %w", err)
	}
	return sessions, nil
}

// write replaces the file atomically through a temporary file in the same directory
func (f *FileStore) write(sessions map[string]Session) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}

	if f.key != nil {
		data, err = f.seal(data)
		if err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".sessions-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

func (f *FileStore) seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plain, &nonce, f.key), nil
}

func (f *FileStore) open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize {
		return nil, fmt.Errorf("session file is corrupted")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, f.key)
	if !ok {
		return nil, fmt.Errorf("failed to decrypt session file")
	}
	return plain, nil
}
