package dashboard

import (
	"context"
	"strings"
	"time"
)

// LinkState is the reachability of an item URL.
type LinkState string

const (
	LinkUnknown     LinkState = "unknown"
	LinkChecking    LinkState = "checking"
	LinkReachable   LinkState = "reachable"
	LinkUnreachable LinkState = "unreachable"
)

// LinkStatus reports the last check of one item's URL.
type LinkStatus struct {
	ItemID    string    `json:"id"`
	URL       string    `json:"url"`
	State     LinkState `json:"status"`
	Code      int       `json:"code,omitempty"`
	CheckedAt time.Time `json:"checked_at,omitempty"`
}

// LinkChecker reports reachability for a set of items.
type LinkChecker interface {
	Check(ctx context.Context, items []Item) ([]LinkStatus, error)
}

// CheckURL returns the URL to probe for a stored value. Values without a
// scheme are assumed to be https.
func CheckURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "http") {
		return raw
	}
	return "https://" + raw
}
