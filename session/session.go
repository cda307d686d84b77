// Package session holds the in-memory authentication state of the running
// app instance. Exactly one Session exists per process; it is created at
// startup, populated by login/signup/refresh, and cleared by logout or an
// unrecoverable refresh failure. All durability is delegated to credstore.
package session

import "sync"

// Snapshot is an immutable view of the session at a point in time.
type Snapshot struct {
	AccessToken  string // Short-lived bearer credential for protected calls
	RefreshToken string // Longer-lived credential for obtaining new access tokens
	ExpiresIn    int    // Access token lifetime in seconds at issuance, 0 if unknown
}

// IsAuthenticated reports whether the snapshot carries an access token.
func (s Snapshot) IsAuthenticated() bool {
	return s.AccessToken != ""
}

// Session is the single in-memory source of truth for "am I logged in, and
// with what token". Updates are atomic with respect to readers: no reader
// ever observes a half-updated token pair.
type Session struct {
	mu      sync.RWMutex
	current Snapshot
}

func New() *Session {
	return &Session{}
}

// Set replaces all fields in one step.
func (s *Session) Set(accessToken, refreshToken string, expiresIn int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Snapshot{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}
}

// Clear empties the session; IsAuthenticated becomes false.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Snapshot{}
}

// Snapshot returns the current view.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// IsAuthenticated reports whether an access token is currently held.
func (s *Session) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated()
}
