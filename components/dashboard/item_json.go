package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// flexBool accepts true/false as well as the 0/1 integers SQL exports carry.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true", "1", `"true"`, `"1"`:
		*b = true
	case "false", "0", "null", `"false"`, `"0"`, `""`:
		*b = false
	default:
		return fmt.Errorf("dashboard: invalid boolean %s", data)
	}
	return nil
}

// UnmarshalJSON decodes an item written with snake_case keys (API reads and
// export files) or camelCase keys (create payloads).
func (i *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var aux struct {
		plain
		IsAdminOnly     *flexBool `json:"is_admin_only"`
		CreatedAt       *string   `json:"created_at"`
		CategoryIconAlt *string   `json:"categoryIcon"`
		SecretKeyAlt    *string   `json:"secretKey"`
		OrderIndexAlt   *float64  `json:"orderIndex"`
		IsAdminOnlyAlt  *flexBool `json:"isAdminOnly"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*i = Item(aux.plain)
	if i.CategoryIcon == "" && aux.CategoryIconAlt != nil {
		i.CategoryIcon = *aux.CategoryIconAlt
	}
	if i.SecretKey == "" && aux.SecretKeyAlt != nil {
		i.SecretKey = *aux.SecretKeyAlt
	}
	if i.OrderIndex == 0 && aux.OrderIndexAlt != nil {
		i.OrderIndex = *aux.OrderIndexAlt
	}
	if aux.CreatedAt != nil {
		i.CreatedAt = parseTimestamp(*aux.CreatedAt)
	}
	switch {
	case aux.IsAdminOnly != nil:
		i.IsAdminOnly = bool(*aux.IsAdminOnly)
	case aux.IsAdminOnlyAlt != nil:
		i.IsAdminOnly = bool(*aux.IsAdminOnlyAlt)
	}
	return nil
}

// parseTimestamp accepts RFC 3339 and the RFC 1123 form HTTP frameworks emit.
// Unparseable values yield the zero time.
func parseTimestamp(value string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, http.TimeFormat, time.RFC1123, time.RFC1123Z} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
