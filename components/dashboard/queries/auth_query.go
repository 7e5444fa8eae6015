package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

// LoginInput carries admin credentials.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthStatusInput carries the bearer token to verify.
type AuthStatusInput struct {
	Token string
}

type authService interface {
	Login(ctx context.Context, username, password string) (dashboard.LoginResult, error)
	Authenticate(ctx context.Context, token string) (dashboard.ViewerContext, error)
}

// LoginQuery exchanges credentials for a token.
type LoginQuery struct {
	service authService
}

// NewLoginQuery builds the query.
func NewLoginQuery(service authService) *LoginQuery {
	return &LoginQuery{service: service}
}

var _ gocommand.Querier[LoginInput, dashboard.LoginResult] = (*LoginQuery)(nil)

// Query performs the login.
func (q *LoginQuery) Query(ctx context.Context, msg LoginInput) (dashboard.LoginResult, error) {
	return q.service.Login(ctx, msg.Username, msg.Password)
}

// AuthStatusQuery resolves a token to a viewer.
type AuthStatusQuery struct {
	service authService
}

// NewAuthStatusQuery builds the query.
func NewAuthStatusQuery(service authService) *AuthStatusQuery {
	return &AuthStatusQuery{service: service}
}

var _ gocommand.Querier[AuthStatusInput, dashboard.ViewerContext] = (*AuthStatusQuery)(nil)

// Query verifies the token.
func (q *AuthStatusQuery) Query(ctx context.Context, msg AuthStatusInput) (dashboard.ViewerContext, error) {
	return q.service.Authenticate(ctx, msg.Token)
}
