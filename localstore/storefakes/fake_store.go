package storefakes

import (
	"sync"

	"github.com/AntonAveryan/careermate/localstore"
)

var _ localstore.Store = (*FakeStore)(nil)

// FakeStore is an in-memory Store for tests.
type FakeStore struct {
	values map[string]string
	lock   sync.RWMutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{values: make(map[string]string)}
}

func (fs *FakeStore) Get(key string) (string, bool, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	value, ok := fs.values[key]
	return value, ok, nil
}

func (fs *FakeStore) Set(key, value string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.values[key] = value
	return nil
}

func (fs *FakeStore) Delete(key string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	delete(fs.values, key)
	return nil
}

// Snapshot returns a copy of everything currently stored.
func (fs *FakeStore) Snapshot() map[string]string {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	snapshot := make(map[string]string, len(fs.values))
	for k, v := range fs.values {
		snapshot[k] = v
	}
	return snapshot
}
