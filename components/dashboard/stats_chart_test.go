package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCache struct {
	calls int
	keys  []string
}

func (c *countingCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	c.calls++
	c.keys = append(c.keys, key)
	return render()
}

func TestStatsChartRendersCategoriesAndEnvironments(t *testing.T) {
	chart := NewStatsChart(WithChartCache(nil))
	html, err := chart.Render(sampleItems(), CategoryOrder{"Tools": 0}, false)
	require.NoError(t, err)

	assert.Contains(t, html, "Items per category")
	assert.Contains(t, html, "Items per environment")
	assert.Contains(t, html, "Monitoring")
	assert.Contains(t, html, "Production")
	assert.Contains(t, html, "westeros")
}

func TestStatsChartUsesDarkThemeAndCacheKey(t *testing.T) {
	cache := &countingCache{}
	chart := NewStatsChart(WithChartCache(cache), WithChartThemes("", "dark-custom"))

	_, err := chart.Render(sampleItems(), nil, true)
	require.NoError(t, err)
	_, err = chart.Render(sampleItems(), nil, false)
	require.NoError(t, err)

	require.Len(t, cache.keys, 2)
	assert.Contains(t, cache.keys[0], "dark-custom")
	assert.NotEqual(t, cache.keys[0], cache.keys[1])
}

func TestEnvironmentCountsFollowDisplayOrder(t *testing.T) {
	counts := environmentCounts(sampleItems())
	require.Len(t, counts, 2)
	assert.Equal(t, EnvProduction, counts[0].Info.Value)
	assert.Equal(t, 1, counts[0].Count)
	assert.Equal(t, EnvCommon, counts[1].Info.Value)
	assert.Equal(t, 4, counts[1].Count)
}
