package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements SessionStore using environment variables.
// This is primarily for CI and one-off runs.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based session store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(session *Session) error {
	return ErrStoreUnavailable
}

// Retrieve gets the session from environment variables
func (e *EnvironmentStore) Retrieve(name string) (*Session, error) {
	cookie := os.Getenv("TOKGRAB_SESSION_COOKIE")
	userAgent := os.Getenv("TOKGRAB_USER_AGENT")

	if cookie == "" {
		return nil, ErrSessionNotFound
	}

	// Environment variables don't carry an account name
	if name == "" {
		name = "default"
	}

	return &Session{
		Name:          name,
		SessionCookie: cookie,
		UserAgent:     userAgent,
		LastModified:  time.Now(),
	}, nil
}

// List returns a single session if environment variables are set
func (e *EnvironmentStore) List() ([]*Session, error) {
	session, err := e.Retrieve("")
	if err != nil {
		return []*Session{}, nil
	}
	return []*Session{session}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment session variables are set
func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv("TOKGRAB_SESSION_COOKIE") != ""
}
