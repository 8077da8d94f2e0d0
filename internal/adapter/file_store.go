// Package adapter contains filesystem and persistence adapters for the mend CLI.
package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	m "github.com/mouse-blink/mend/internal/model"
)

const fileWritePerm = 0o644

// FileStore abstracts loading and saving file content so the domain layer
// never touches the disk directly.
//
// Save is fire-and-forget: it schedules the write and returns before the
// write completes. A nil return means the write was accepted, not that it
// succeeded; completion failures are logged by the store. An error return
// (store closed, empty path) is recoverable and the caller may retry.
type FileStore interface {
	Load(path m.Path) (string, error)
	Save(path m.Path, content string) error
	Close(ctx context.Context) error
}

// LocalFileStore persists content to the local filesystem with asynchronous
// writes.
type LocalFileStore struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// NewLocalFileStore creates a LocalFileStore.
func NewLocalFileStore() *LocalFileStore {
	return &LocalFileStore{}
}

// Load reads the file at path.
func (s *LocalFileStore) Load(path m.Path) (string, error) {
	content, err := os.ReadFile(string(path))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	return string(content), nil
}

// Save schedules an asynchronous write of content to path.
func (s *LocalFileStore) Save(path m.Path, content string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("file store is closed")
	}

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		if err := os.WriteFile(string(path), []byte(content), fileWritePerm); err != nil {
			slog.Error("failed to write file", "path", path, "error", err)
			return
		}

		slog.Debug("saved file", "path", path, "bytes", len(content))
	}()

	return nil
}

// Close rejects further saves and waits for pending writes to finish or the
// context to expire.
func (s *LocalFileStore) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pending writes not finished: %w", ctx.Err())
	}
}
