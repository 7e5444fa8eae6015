package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

var (
	// ErrManagementRequired is returned when the server rejects a call with
	// 401 or 403.
	ErrManagementRequired = errors.New("client: management access required")

	// ErrConnectivity is returned once list retries are exhausted.
	ErrConnectivity = errors.New("client: dashboard server unreachable")

	errTransport = errors.New("client: transport failure")
)

// RemoteError is a non-2xx response from the server.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: remote error %d", e.Status)
	}
	return fmt.Sprintf("client: remote error %d: %s", e.Status, e.Message)
}

// Unwrap maps well-known statuses to sentinel errors.
func (e *RemoteError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrManagementRequired
	case http.StatusNotFound:
		return dashboard.ErrNotFound
	}
	return nil
}

// IsTransient reports whether err is worth retrying: transport failures and
// 5xx responses. Authorization and validation failures never are.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, errTransport) {
		return true
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Status >= http.StatusInternalServerError
	}
	return false
}
