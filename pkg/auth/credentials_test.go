package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSessionManager(t *testing.T) {
	// Use mock manager for reliable testing
	manager, mockStore := NewMockManager()

	session := &Session{
		Name:          "testuser",
		SessionCookie: "sessionid=test_cookie_value_12345",
		UserAgent:     "TestAgent/1.0",
		LastModified:  time.Now(),
	}

	err := manager.Store(session)
	if err != nil {
		t.Errorf("Failed to store session: %v", err)
	}

	retrieved, err := manager.Retrieve("testuser")
	if err != nil {
		t.Errorf("Failed to retrieve session: %v", err)
	}

	if retrieved.Name != session.Name {
		t.Errorf("Name mismatch: got %s, want %s", retrieved.Name, session.Name)
	}
	if retrieved.SessionCookie != session.SessionCookie {
		t.Errorf("SessionCookie mismatch: got %s, want %s", retrieved.SessionCookie, session.SessionCookie)
	}

	// Test listing sessions
	sessions, err := manager.List()
	if err != nil {
		t.Errorf("Failed to list sessions: %v", err)
	}
	if len(sessions) == 0 {
		t.Error("Expected at least one session in list")
	}

	// Test sanitization
	sanitized := SanitizeSession(session)
	if sanitized.SessionCookie == session.SessionCookie {
		t.Error("SessionCookie should be masked")
	}
	if sanitized.Name != session.Name {
		t.Error("Name should not be masked")
	}

	// Test deletion
	err = manager.Delete("testuser")
	if err != nil {
		t.Errorf("Failed to delete session: %v", err)
	}

	_, err = manager.Retrieve("testuser")
	if err == nil {
		t.Error("Expected error retrieving deleted session")
	}

	if mockStore.Count() != 0 {
		t.Errorf("Expected 0 sessions after deletion, got %d", mockStore.Count())
	}
}

func TestManagerRejectsIncompleteSession(t *testing.T) {
	manager, _ := NewMockManager()

	if err := manager.Store(&Session{SessionCookie: "sessionid=abc"}); err == nil {
		t.Error("Expected error for session without account name")
	}
	if err := manager.Store(&Session{Name: "user"}); err == nil {
		t.Error("Expected error for session without cookie")
	}
}

func TestEncryptedFileStore(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "test_sessions.enc")

	// Set test passphrase
	os.Setenv("TOKGRAB_PASSPHRASE", "test_passphrase_123")
	defer os.Unsetenv("TOKGRAB_PASSPHRASE")

	store, err := NewEncryptedFileStore(tempFile)
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	session := &Session{
		Name:          "encrypted_user",
		SessionCookie: "sessionid=encrypted_cookie",
	}

	err = store.Store(session)
	if err != nil {
		t.Errorf("Failed to store in encrypted file: %v", err)
	}

	retrieved, err := store.Retrieve("encrypted_user")
	if err != nil {
		t.Errorf("Failed to retrieve from encrypted file: %v", err)
	}

	if retrieved.SessionCookie != session.SessionCookie {
		t.Errorf("SessionCookie mismatch after encryption/decryption")
	}

	// Verify file is actually encrypted
	fileContent, err := os.ReadFile(tempFile)
	if err != nil {
		t.Fatal(err)
	}

	if contains(fileContent, []byte("encrypted_cookie")) {
		t.Error("File contains plaintext session cookie")
	}
}

func TestEnvironmentStore(t *testing.T) {
	os.Setenv("TOKGRAB_SESSION_COOKIE", "sessionid=env_cookie")
	os.Setenv("TOKGRAB_USER_AGENT", "EnvAgent/1.0")
	defer os.Unsetenv("TOKGRAB_SESSION_COOKIE")
	defer os.Unsetenv("TOKGRAB_USER_AGENT")

	store := NewEnvironmentStore()

	session, err := store.Retrieve("")
	if err != nil {
		t.Errorf("Failed to retrieve from environment: %v", err)
	}

	if session.SessionCookie != "sessionid=env_cookie" {
		t.Errorf("SessionCookie mismatch: got %s, want sessionid=env_cookie", session.SessionCookie)
	}
	if session.Name != "default" {
		t.Errorf("Expected default account name, got %s", session.Name)
	}
	if session.UserAgent != "EnvAgent/1.0" {
		t.Errorf("UserAgent mismatch: got %s", session.UserAgent)
	}

	// Test that store is not supported
	err = store.Store(&Session{})
	if err != ErrStoreUnavailable {
		t.Error("Expected ErrStoreUnavailable for environment store")
	}
}

func TestManagerWithEncryptedStore(t *testing.T) {
	tempDir := t.TempDir()

	os.Setenv("TOKGRAB_PASSPHRASE", "test_passphrase_real_manager")
	defer os.Unsetenv("TOKGRAB_PASSPHRASE")

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(tempDir, "sessions.enc"))
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	manager := NewMockManagerWithStores(encryptedStore)

	session := &Session{
		Name:          "realuser",
		SessionCookie: "sessionid=real_cookie",
		UserAgent:     "RealAgent/1.0",
		LastModified:  time.Now(),
	}

	err = manager.Store(session)
	if err != nil {
		t.Fatalf("Failed to store session: %v", err)
	}

	sessions, err := manager.List()
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("Expected 1 session in list, got %d", len(sessions))
	}

	retrieved, err := manager.Retrieve("realuser")
	if err != nil {
		t.Fatalf("Failed to retrieve session: %v", err)
	}

	if retrieved.Name != session.Name {
		t.Errorf("Name mismatch: got %s, want %s", retrieved.Name, session.Name)
	}
	if retrieved.SessionCookie != session.SessionCookie {
		t.Errorf("SessionCookie mismatch: got %s, want %s", retrieved.SessionCookie, session.SessionCookie)
	}
}

func TestMockStore(t *testing.T) {
	store := NewMockStore()

	sessions, err := store.List()
	if err != nil {
		t.Errorf("Failed to list empty store: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("Expected 0 sessions, got %d", len(sessions))
	}

	session := &Session{
		Name:          "mockuser",
		SessionCookie: "sessionid=mock_cookie",
	}

	err = store.Store(session)
	if err != nil {
		t.Errorf("Failed to store session: %v", err)
	}

	if store.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", store.Count())
	}

	if !store.Exists("mockuser") {
		t.Error("Session should exist")
	}

	// Test error injection
	store.ListError = fmt.Errorf("injected error")
	_, err = store.List()
	if err == nil || err.Error() != "injected error" {
		t.Error("Expected injected error")
	}
}

func contains(data []byte, substr []byte) bool {
	for i := 0; i <= len(data)-len(substr); i++ {
		if string(data[i:i+len(substr)]) == string(substr) {
			return true
		}
	}
	return false
}
