// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/rba/internal/repositories"
	"github.com/desertthunder/rba/internal/shared"
)

// FailingStore wraps a [repositories.MemoryStore] and rejects writes to the keys listed in FailKeys.
// An empty FailKeys with FailAll set rejects every write.
type FailingStore struct {
	*repositories.MemoryStore
	FailKeys map[string]bool
	FailAll  bool
	Writes   int
}

// NewFailingStore creates a [FailingStore] that rejects writes to keys.
func NewFailingStore(keys ...string) *FailingStore {
	fail := make(map[string]bool, len(keys))
	for _, k := range keys {
		fail[k] = true
	}
	return &FailingStore{MemoryStore: repositories.NewMemoryStore(0), FailKeys: fail}
}

func (f *FailingStore) Write(key, value string) error {
	if f.FailAll || f.FailKeys[key] {
		return shared.ErrQuotaExceeded
	}
	f.Writes++
	return f.MemoryStore.Write(key, value)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

// MustWriteFile writes content to name inside dir and returns the full path.
func MustWriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
