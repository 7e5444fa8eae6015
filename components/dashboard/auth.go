package dashboard

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
)

var errMissingCredentials = errors.New("dashboard: admin username, password and token are required")

// AdminCredentials is the single administrator account.
type AdminCredentials struct {
	Username string
	Password string
	Token    string
}

// Validate fails when any credential is empty.
func (c AdminCredentials) Validate() error {
	if c.Username == "" || c.Password == "" || c.Token == "" {
		return errMissingCredentials
	}
	return nil
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

// Authenticator issues and verifies admin tokens.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (LoginResult, error)
	Verify(ctx context.Context, token string) (ViewerContext, error)
}

// StaticAuthenticator checks against fixed credentials and hands out the
// configured token.
type StaticAuthenticator struct {
	creds AdminCredentials
}

// NewStaticAuthenticator validates creds and returns an authenticator.
func NewStaticAuthenticator(creds AdminCredentials) (*StaticAuthenticator, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return &StaticAuthenticator{creds: creds}, nil
}

// Login implements Authenticator.
func (a *StaticAuthenticator) Login(_ context.Context, username, password string) (LoginResult, error) {
	if username == "" || password == "" {
		return LoginResult{}, &ValidationError{Message: "Username and password are required"}
	}
	if !secureEqual(username, a.creds.Username) || !secureEqual(password, a.creds.Password) {
		return LoginResult{}, ErrInvalidCredentials
	}
	return LoginResult{Token: a.creds.Token, Role: "admin", Username: a.creds.Username}, nil
}

// Verify implements Authenticator.
func (a *StaticAuthenticator) Verify(_ context.Context, token string) (ViewerContext, error) {
	if token == "" || !secureEqual(token, a.creds.Token) {
		return ViewerContext{}, ErrUnauthorized
	}
	return ViewerContext{Username: a.creds.Username, Admin: true}, nil
}

// BearerToken extracts the credential from an Authorization header value,
// with or without the "Bearer " prefix.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

type denyAllAuthenticator struct{}

func (denyAllAuthenticator) Login(context.Context, string, string) (LoginResult, error) {
	return LoginResult{}, ErrInvalidCredentials
}

func (denyAllAuthenticator) Verify(context.Context, string) (ViewerContext, error) {
	return ViewerContext{}, ErrUnauthorized
}
