// Package favorites keeps an optimistic local cache of favorited jobs in
// step with the backend's favorites collection. Local mutations apply and
// persist before any network call is made; the remote copy is best effort
// between reconciliations, and a List call replaces the cache wholesale.
package favorites

// SyncState tracks whether the backend has confirmed a record.
type SyncState string

const (
	// StatePendingRemote marks an optimistic entry the backend has not
	// acknowledged (either not yet, or the save failed).
	StatePendingRemote SyncState = "pending_remote"

	// StateConfirmed marks an entry the backend acknowledged with an id.
	StateConfirmed SyncState = "confirmed"
)

// Record is one favorited job. URN is the natural key. RemoteID exists
// only once the backend has persisted the record and is required for
// remote deletion.
type Record struct {
	RemoteID    *int64    `json:"id,omitempty"`
	URN         string    `json:"urn"`
	Title       string    `json:"title"`
	Company     string    `json:"company,omitempty"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	ApplyLink   string    `json:"apply_link,omitempty"`
	Source      string    `json:"source,omitempty"`
	State       SyncState `json:"state,omitempty"`
}

// Confirmed reports whether the backend has acknowledged this record.
func (r Record) Confirmed() bool {
	return r.State == StateConfirmed && r.RemoteID != nil
}
