// Package localstore is the client's durable key-value mirror, the
// equivalent of the browser's localStorage in the original front end.
// Session tokens and the favorites cache both persist through it under
// fixed keys.
package localstore

// Storage keys shared across the client. The names are kept compatible
// with the original front end's localStorage layout.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyFavoriteIDs  = "cv_favorites"
	KeyFavoriteJobs = "cv_favorite_jobs"
)

// Store abstracts durable string key-value storage.
type Store interface {
	// Get returns the stored value and whether the key was present.
	Get(key string) (string, bool, error)

	// Set creates or replaces the value for key.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}
