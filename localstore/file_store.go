package localstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

var _ Store = (*FileStore)(nil)

// FileStore persists the key-value map as a single JSON file. Every
// mutation rewrites the whole file; the data set is a handful of small
// entries, so read-modify-write is fine.
type FileStore struct {
	path string
	lock sync.Mutex
}

// NewFileStore creates the parent directory if needed and returns a store
// backed by the given file.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] create data directory")
	}
	return &FileStore{path: path}, nil
}

func (fs *FileStore) Get(key string) (string, bool, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	values, err := fs.read()
	if err != nil {
		return "", false, err
	}
	value, ok := values[key]
	return value, ok, nil
}

func (fs *FileStore) Set(key, value string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	values, err := fs.read()
	if err != nil {
		return err
	}
	values[key] = value
	return fs.write(values)
}

func (fs *FileStore) Delete(key string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	values, err := fs.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return fs.write(values)
}

func (fs *FileStore) read() (map[string]string, error) {
	blob, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileStore] read store file")
	}
	values := map[string]string{}
	if len(blob) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(blob, &values); err != nil {
		return nil, errors.Wrap(err, "[FileStore] corrupt store file")
	}
	return values, nil
}

func (fs *FileStore) write(values map[string]string) error {
	blob, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileStore] marshal store")
	}
	// Tokens live in here, so keep the file owner-only.
	return errors.Wrap(os.WriteFile(fs.path, blob, 0o600), "[FileStore] write store file")
}
