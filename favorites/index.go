package favorites

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/AntonAveryan/careermate/localstore"
)

// Index is the local urn → record mapping, mirrored into durable storage.
// It is rebuilt wholesale on reconciliation and mutated incrementally on
// optimistic add/remove. Two keys are kept in step: the detail map and a
// plain urn list, matching the original storage layout.
type Index struct {
	store localstore.Store
	lock  sync.Mutex
}

// NewIndex returns an Index backed by the given store.
func NewIndex(store localstore.Store) *Index {
	return &Index{store: store}
}

// Load reads the current urn → record map. A missing or empty key yields
// an empty map.
func (ix *Index) Load() (map[string]Record, error) {
	ix.lock.Lock()
	defer ix.lock.Unlock()
	return ix.load()
}

// Put inserts or replaces the record keyed by its URN and persists the
// index.
func (ix *Index) Put(rec Record) error {
	ix.lock.Lock()
	defer ix.lock.Unlock()

	records, err := ix.load()
	if err != nil {
		return err
	}
	records[rec.URN] = rec
	return ix.save(records)
}

// Remove drops the record for urn, if present, and persists the index.
func (ix *Index) Remove(urn string) error {
	ix.lock.Lock()
	defer ix.lock.Unlock()

	records, err := ix.load()
	if err != nil {
		return err
	}
	if _, ok := records[urn]; !ok {
		return nil
	}
	delete(records, urn)
	return ix.save(records)
}

// Replace swaps the entire index for the given map. This is the
// reconciliation point: whatever the optimistic cache held is gone.
func (ix *Index) Replace(records map[string]Record) error {
	ix.lock.Lock()
	defer ix.lock.Unlock()
	return ix.save(records)
}

func (ix *Index) load() (map[string]Record, error) {
	raw, ok, err := ix.store.Get(localstore.KeyFavoriteJobs)
	if err != nil {
		return nil, errors.Wrap(err, "[Index] read favorites map")
	}
	records := map[string]Record{}
	if !ok || raw == "" {
		return records, nil
	}
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, errors.Wrap(err, "[Index] corrupt favorites map")
	}
	return records, nil
}

func (ix *Index) save(records map[string]Record) error {
	blob, err := json.Marshal(records)
	if err != nil {
		return errors.Wrap(err, "[Index] marshal favorites map")
	}
	if err := ix.store.Set(localstore.KeyFavoriteJobs, string(blob)); err != nil {
		return errors.Wrap(err, "[Index] write favorites map")
	}

	urns := make([]string, 0, len(records))
	for urn := range records {
		urns = append(urns, urn)
	}
	sort.Strings(urns)
	list, err := json.Marshal(urns)
	if err != nil {
		return errors.Wrap(err, "[Index] marshal urn list")
	}
	return errors.Wrap(ix.store.Set(localstore.KeyFavoriteIDs, string(list)), "[Index] write urn list")
}
