// Package session owns the access/refresh token pair and the cached
// identity of the signed-in user. Every authenticated call elsewhere in
// the client obtains its bearer token from Manager.
package session

import "time"

// State describes the session lifecycle. Authenticating is internal to the
// manager's operations; the observable states are these two.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// Identity is the backend's answer to "who am I".
type Identity struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// TokenPair is the credential pair minted by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
}

// TokenInfo is the unverified contents of the stored access token, for
// display only. The backend is the sole authority on validity; the client
// never enforces expiry locally.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
}
