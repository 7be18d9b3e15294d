package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const stagingDir = ".staging"

// FileStore persists uploaded and generated images on the local filesystem.
// Files written through Stage stay invisible under their final key until
// Commit is called.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(filepath.Join(basePath, stagingDir), 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// Write persists the provided bytes at the given relative key and returns the
// canonicalized storage key. Keys are cleaned to prevent directory traversal.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, fullPath, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return cleanKey, nil
}

// Read returns the bytes stored under key. Missing files satisfy
// errors.Is(err, fs.ErrNotExist).
func (s *FileStore) Read(ctx context.Context, key string) ([]byte, error) {
	if s == nil {
		return nil, errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("storage: read file: %w", err)
	}
	return data, nil
}

// Open returns the committed file stored under key for streaming.
func (s *FileStore) Open(key string) (*os.File, error) {
	if s == nil {
		return nil, errors.New("storage: no store configured")
	}
	_, fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}

// Exists reports whether a committed file is stored under key.
func (s *FileStore) Exists(key string) bool {
	if s == nil {
		return false
	}
	_, fullPath, err := s.resolve(key)
	if err != nil {
		return false
	}
	info, err := os.Stat(fullPath)
	return err == nil && !info.IsDir()
}

// Stage writes data to a private staging area. The file only appears under key
// once Commit succeeds; Discard removes it.
func (s *FileStore) Stage(ctx context.Context, key string, data []byte) (*StagedFile, error) {
	if s == nil {
		return nil, errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleanKey, fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(filepath.Join(s.basePath, stagingDir), "stage-*")
	if err != nil {
		return nil, fmt.Errorf("storage: create staging file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("storage: write staging file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("storage: close staging file: %w", err)
	}
	return &StagedFile{Key: cleanKey, tmpPath: tmpPath, finalPath: fullPath}, nil
}

func (s *FileStore) resolve(key string) (string, string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", "", err
	}
	if cleanKey == stagingDir || strings.HasPrefix(cleanKey, stagingDir+"/") {
		return "", "", errors.New("storage: invalid key")
	}
	return cleanKey, filepath.Join(s.basePath, filepath.FromSlash(cleanKey)), nil
}

// StagedFile is a pending write created by FileStore.Stage.
type StagedFile struct {
	Key string

	mu        sync.Mutex
	tmpPath   string
	finalPath string
	committed bool
	discarded bool
}

// Commit moves the staged bytes into place under Key.
func (f *StagedFile) Commit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.committed {
		return nil
	}
	if f.discarded {
		return errors.New("storage: staged file already discarded")
	}
	if err := os.MkdirAll(filepath.Dir(f.finalPath), 0o755); err != nil {
		return fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.Rename(f.tmpPath, f.finalPath); err != nil {
		return fmt.Errorf("storage: commit %s: %w", f.Key, err)
	}
	f.committed = true
	return nil
}

// Discard removes the staged bytes. It is a no-op after Commit and safe to
// call more than once.
func (f *StagedFile) Discard() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.committed || f.discarded {
		return nil
	}
	f.discarded = true
	if err := os.Remove(f.tmpPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: discard %s: %w", f.Key, err)
	}
	return nil
}

// Revert removes a committed file again. It does nothing for files that were
// never committed.
func (f *StagedFile) Revert() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.committed {
		return nil
	}
	if err := os.Remove(f.finalPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: revert %s: %w", f.Key, err)
	}
	f.committed = false
	f.discarded = true
	return nil
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
