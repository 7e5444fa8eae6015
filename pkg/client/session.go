package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

// TokenStore persists the admin bearer credential between runs.
type TokenStore interface {
	Token() string
	SetToken(token string) error
}

// Session tracks the admin login state of a client.
type Session struct {
	client *Client
	tokens TokenStore

	mu       sync.RWMutex
	admin    bool
	username string
}

// NewSession loads any persisted token into client. The session is not
// considered admin until Verify or Login succeeds.
func NewSession(client *Client, tokens TokenStore) *Session {
	if tokens != nil {
		if token := tokens.Token(); token != "" {
			client.SetToken(token)
		}
	}
	return &Session{client: client, tokens: tokens}
}

// Login authenticates, stores the token and marks the session admin.
func (s *Session) Login(ctx context.Context, username, password string) (dashboard.LoginResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return dashboard.LoginResult{}, &dashboard.ValidationError{Message: "Username and password are required"}
	}
	result, err := s.client.Login(ctx, username, password)
	if err != nil {
		return dashboard.LoginResult{}, err
	}
	s.client.SetToken(result.Token)
	if s.tokens != nil {
		if err := s.tokens.SetToken(result.Token); err != nil {
			return result, err
		}
	}
	s.set(true, result.Username)
	return result, nil
}

// Verify checks the stored token. A rejected token is cleared; transport
// failures are returned without touching the token.
func (s *Session) Verify(ctx context.Context) (bool, error) {
	if s.client.Token() == "" {
		s.set(false, "")
		return false, nil
	}
	status, err := s.client.AuthStatus(ctx)
	if err != nil {
		if errors.Is(err, ErrManagementRequired) {
			return false, s.Logout()
		}
		return false, err
	}
	s.set(status.Authenticated, status.Username)
	return status.Authenticated, nil
}

// Logout forgets the token locally.
func (s *Session) Logout() error {
	s.client.SetToken("")
	s.set(false, "")
	if s.tokens != nil {
		return s.tokens.SetToken("")
	}
	return nil
}

// IsAdmin reports whether the last Login or Verify succeeded.
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin
}

// Username returns the logged-in admin name.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

func (s *Session) set(admin bool, username string) {
	s.mu.Lock()
	s.admin = admin
	s.username = username
	s.mu.Unlock()
}
