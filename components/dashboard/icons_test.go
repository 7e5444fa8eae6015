package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIconRegistryCanonicalizesNames(t *testing.T) {
	registry := NewIconRegistry()

	for _, name := range []string{"ExternalLink", "externalLink", "external_link", "external-link"} {
		icon, ok := registry.Lookup(name)
		assert.True(t, ok, name)
		assert.Equal(t, "external-link", icon.Key, name)
	}
}

func TestIconRegistryFallsBack(t *testing.T) {
	registry := NewIconRegistry()

	icon, ok := registry.Lookup("SiSomethingExotic")
	assert.False(t, ok)
	assert.Equal(t, FallbackIcon, icon.Key)

	registry.Register("SiSomethingExotic", "*")
	icon, ok = registry.Lookup("si-something-exotic")
	assert.True(t, ok)
	assert.Equal(t, "*", icon.Glyph)
}

func TestIconHTMLEscapesClass(t *testing.T) {
	html := NewIconRegistry().Resolve("Folder").HTML(`x" onload="y`)
	assert.Contains(t, html, `class="icon icon-folder x&#34; onload=&#34;y"`)
}
