package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

const defaultFileName = ".metronome.json"

// FileStore persists every key in a single JSON object on disk. The whole
// file is rewritten on each Put.
type FileStore struct {
	Path string

	mu sync.Mutex
}

// NewFileStore returns a store backed by the file at path. The file is
// created lazily on the first Put.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// DefaultPath returns the store location in the user's home directory.
func DefaultPath() string {
	return filepath.Join(UserHomeDir(), defaultFileName)
}

// UserHomeDir returns the current user's home directory.
func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	if runtime.GOOS == "windows" {
		home := os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
		if home == "" {
			home = os.Getenv("USERPROFILE")
		}
		return home
	}
	return os.Getenv("HOME")
}

func (s *FileStore) load() (map[string]json.RawMessage, error) {
	values := make(map[string]json.RawMessage)

	f, err := os.Open(s.Path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", s.Path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", s.Path)
	}
	if info.Size() == 0 {
		return values, nil
	}

	if err := json.NewDecoder(f).Decode(&values); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", s.Path)
	}
	return values, nil
}

// Get implements KV.
func (s *FileStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return nil, err
	}
	v, ok := values[key]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "get %q", key)
	}
	return []byte(v), nil
}

// Put implements KV. value must itself be valid JSON.
func (s *FileStore) Put(key string, value []byte) error {
	if !json.Valid(value) {
		return errors.Errorf("value for %q is not valid JSON", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		// unreadable contents are overwritten
		values = make(map[string]json.RawMessage)
	}
	values[key] = json.RawMessage(value)

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding store")
	}

	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}
	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", s.Path)
	}
	return nil
}
