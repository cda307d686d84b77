// Package credstore provides durable, encrypted-at-rest storage for the
// donor session's secrets. It is the persistence counterpart of the
// in-memory session: after every completed login, refresh or logout the two
// hold the same token values.
package credstore

import "errors"

// Keys under which the auth service persists its credential record.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyExpiresIn    = "expires_in"
)

// ErrNotFound is returned by Load when no value has been stored under a key.
var ErrNotFound = errors.New("credential not found")

// Store is durable key/value storage for named secret strings.
// Implementations must not leak plaintext values to other processes.
type Store interface {
	// Save writes value under key. Persistence failures are returned, never
	// swallowed.
	Save(key, value string) error

	// Load returns the stored value, or ErrNotFound if the key was never set.
	Load(key string) (string, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}
