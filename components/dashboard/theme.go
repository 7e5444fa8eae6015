package dashboard

import "strings"

// Theme is the display theme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme normalizes value, defaulting to light for anything unknown.
func ParseTheme(value string) Theme {
	if Theme(strings.ToLower(strings.TrimSpace(value))) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// Valid reports whether t is light or dark.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Toggle flips between light and dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Dark reports whether t is the dark theme.
func (t Theme) Dark() bool { return t == ThemeDark }
