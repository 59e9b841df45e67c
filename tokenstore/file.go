// tokenstore/file.go
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
)

// FileStorage persists values as a JSON object in a single file readable only by the
// owner. The file is re-read on every Get so writes from other processes are observed.
type FileStorage struct {
	path string
	mu   sync.Mutex
}

// NewFileStorage returns a FileStorage backed by path. The file is created on first write.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// DefaultFilePath returns the credentials file under the user's config directory.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rxctl", "credentials.json"), nil
}

func (f *FileStorage) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *FileStorage) Set(ctx context.Context, key, value string) error {
	return f.SetValues(ctx, map[string]string{key: value})
}

// SetValues merges values into the file in one rename.
func (f *FileStorage) SetValues(_ context.Context, values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.load()
	if err != nil {
		return err
	}
	for k, v := range values {
		current[k] = v
	}
	return f.save(current)
}

func (f *FileStorage) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(values, k)
	}
	return f.save(values)
}

func (f *FileStorage) load() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.path, err)
	}
	return values, nil
}

// save writes through a temp file and rename so readers never see a partial file.
func (f *FileStorage) save(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
