package dashboard

import (
	"html"
	"sort"
	"strings"
	"sync"

	"github.com/ettle/strcase"
)

// FallbackIcon is rendered for names the registry does not know.
const FallbackIcon = "link"

// Icon is a registry entry: a canonical key and the glyph rendered for it.
type Icon struct {
	Key   string `json:"key"`
	Glyph string `json:"glyph"`
}

// HTML renders the icon as an inline span.
func (i Icon) HTML(class string) string {
	cls := "icon icon-" + i.Key
	if class != "" {
		cls += " " + class
	}
	return `<span class="` + html.EscapeString(cls) + `" aria-hidden="true">` + html.EscapeString(i.Glyph) + `</span>`
}

var builtinIcons = map[string]string{
	"activity":      "📈",
	"book":          "📖",
	"box":           "📦",
	"cloud":         "☁",
	"code":          "⌨",
	"cpu":           "🖥",
	"database":      "🗄",
	"external-link": "↗",
	"file":          "📄",
	"folder":        "📁",
	"git-branch":    "⎇",
	"globe":         "🌐",
	"home":          "🏠",
	"key":           "🔑",
	"layers":        "🗂",
	"link":          "🔗",
	"lock":          "🔒",
	"mail":          "✉",
	"monitor":       "🖵",
	"package":       "📦",
	"server":        "🗄",
	"settings":      "⚙",
	"shield":        "🛡",
	"terminal":      "💻",
	"tool":          "🛠",
	"users":         "👥",
	"wrench":        "🔧",
	"zap":           "⚡",
}

// IconRegistry maps icon names (in any casing) to a fixed set of icons. Unknown
// names resolve to the fallback entry.
type IconRegistry struct {
	mu    sync.RWMutex
	icons map[string]Icon
}

// NewIconRegistry returns a registry seeded with the built-in icons.
func NewIconRegistry() *IconRegistry {
	r := &IconRegistry{icons: make(map[string]Icon, len(builtinIcons))}
	for key, glyph := range builtinIcons {
		r.icons[key] = Icon{Key: key, Glyph: glyph}
	}
	return r
}

// CanonicalIconKey turns "ExternalLink", "external_link" or "externalLink"
// into "external-link".
func CanonicalIconKey(name string) string {
	return strcase.ToKebab(strings.TrimSpace(name))
}

// Register adds or replaces an icon.
func (r *IconRegistry) Register(name, glyph string) {
	key := CanonicalIconKey(name)
	if key == "" {
		return
	}
	r.mu.Lock()
	r.icons[key] = Icon{Key: key, Glyph: glyph}
	r.mu.Unlock()
}

// Lookup resolves name; ok is false when the fallback was used.
func (r *IconRegistry) Lookup(name string) (Icon, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if icon, found := r.icons[CanonicalIconKey(name)]; found {
		return icon, true
	}
	return r.icons[FallbackIcon], false
}

// Resolve is Lookup without the found flag.
func (r *IconRegistry) Resolve(name string) Icon {
	icon, _ := r.Lookup(name)
	return icon
}

// Keys lists the registered keys sorted.
func (r *IconRegistry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.icons))
	for key := range r.icons {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
