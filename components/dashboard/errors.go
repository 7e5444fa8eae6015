package dashboard

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when an item id is unknown.
	ErrNotFound = errors.New("dashboard: item not found")

	// ErrUnauthorized is returned when a management operation runs without admin rights.
	ErrUnauthorized = errors.New("dashboard: unauthorized")

	// ErrInvalidCredentials is returned by Login for a wrong username or password.
	ErrInvalidCredentials = errors.New("dashboard: invalid credentials")

	// ErrNoChanges is returned when an update carries no editable field.
	ErrNoChanges = errors.New("dashboard: no valid fields to update")

	errMissingItemStore  = errors.New("dashboard: item store not configured")
	errMissingOrderStore = errors.New("dashboard: category order store not configured")
)

// ValidationError reports user-correctable input problems.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
