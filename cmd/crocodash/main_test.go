package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
	"github.com/TatoZhvania/Croco-Dashboard/pkg/config"
)

func TestItemFlagsApplyOverlaysSetValues(t *testing.T) {
	base := dashboard.ItemInput{Name: "Grafana", URL: "https://grafana", Category: "Ops", IsAdminOnly: true}

	input, err := ItemFlags{Description: "metrics", Env: "Staging", Visibility: "public"}.apply(base)
	require.NoError(t, err)
	assert.Equal(t, "Grafana", input.Name)
	assert.Equal(t, "metrics", input.Description)
	assert.Equal(t, dashboard.EnvStaging, input.Environment)
	assert.False(t, input.IsAdminOnly)

	_, err = ItemFlags{Env: "prod-eu"}.apply(base)
	require.Error(t, err)
	_, err = ItemFlags{Size: "huge"}.apply(base)
	require.Error(t, err)
}

func TestServeConfigFailsWithoutCredentials(t *testing.T) {
	cmd := serveCmd{AdminUsername: "admin"}
	_, err := cmd.config(false)
	require.ErrorIs(t, err, config.ErrMissingSetting)

	cmd = serveCmd{AdminUsername: "admin", AdminPassword: "secret", AdminToken: "tok", Listen: ":8080"}
	cfg, err := cmd.config(true)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.True(t, cfg.Debug)
	assert.Equal(t, config.DefaultLinkCheckInterval, cfg.LinkCheck.Interval)
}

func TestRenderViewGroupsByCategory(t *testing.T) {
	items := []dashboard.Item{
		{ID: "1", Name: "Grafana", URL: "https://grafana", Category: "Ops", Environment: dashboard.EnvProduction},
		{ID: "2", Name: "Docs", URL: "https://docs", Category: "Reading", Description: "handbook"},
	}
	view := dashboard.Derive(items, "", dashboard.CategoryOrder{"Reading": 0})

	var out bytes.Buffer
	renderView(&out, view, dashboard.NewIconRegistry(), map[string]dashboard.LinkState{"1": dashboard.LinkReachable}, newPalette(dashboard.ThemeDark))

	text := out.String()
	assert.Less(t, bytes.Index(out.Bytes(), []byte("Reading")), bytes.Index(out.Bytes(), []byte("Ops")))
	assert.Contains(t, text, "Grafana")
	assert.Contains(t, text, "handbook")
	assert.Contains(t, text, "Production")
}

func TestRenderViewEmpty(t *testing.T) {
	var out bytes.Buffer
	renderView(&out, dashboard.View{}, dashboard.NewIconRegistry(), nil, newPalette(dashboard.ThemeLight))
	assert.Contains(t, out.String(), "No items.")
}
