package dashboard

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

// StatsChart renders the /stats page: items per category and per environment.
type StatsChart struct {
	cache      RenderCache
	theme      string
	darkTheme  string
	assetsHost string
}

// StatsChartOption customizes chart rendering.
type StatsChartOption func(*StatsChart)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) StatsChartOption {
	return func(c *StatsChart) {
		c.cache = cache
	}
}

// WithChartThemes sets the light and dark echarts themes.
func WithChartThemes(light, dark string) StatsChartOption {
	return func(c *StatsChart) {
		if light != "" {
			c.theme = light
		}
		if dark != "" {
			c.darkTheme = dark
		}
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) StatsChartOption {
	return func(c *StatsChart) {
		c.assetsHost = host
	}
}

// NewStatsChart builds a chart renderer with a five minute cache.
func NewStatsChart(options ...StatsChartOption) *StatsChart {
	c := &StatsChart{
		cache:     NewChartCache(5 * time.Minute),
		theme:     types.ThemeWesteros,
		darkTheme: types.ThemeChalk,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Cache exposes the render cache so it can be purged on item changes.
func (c *StatsChart) Cache() RenderCache {
	return c.cache
}

// Render returns a complete HTML page with both charts.
func (c *StatsChart) Render(items []Item, order CategoryOrder, dark bool) (string, error) {
	view := Derive(items, "", order)
	categories := make([]opts.PieData, 0, len(view.Categories))
	for _, group := range view.Ordered() {
		categories = append(categories, opts.PieData{Name: group.Name, Value: len(group.Items)})
	}
	envs := environmentCounts(items)

	theme := c.theme
	if dark {
		theme = c.darkTheme
	}
	render := func() (string, error) {
		return c.render(categories, envs, theme)
	}
	if c.cache == nil {
		return render()
	}
	key := fmt.Sprintf("stats:%s:%s:%s", theme, contentHash(categories), contentHash(envs))
	return c.cache.GetOrRender(key, render)
}

func (c *StatsChart) render(categories []opts.PieData, envs []environmentCount, theme string) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(c.globalOptions("Items per category", theme)...)
	pie.AddSeries("categories", categories)

	bar := charts.NewBar()
	bar.SetGlobalOptions(c.globalOptions("Items per environment", theme)...)
	labels := make([]string, 0, len(envs))
	values := make([]opts.BarData, 0, len(envs))
	for _, env := range envs {
		labels = append(labels, env.Info.Label)
		values = append(values, opts.BarData{
			Value:     env.Count,
			ItemStyle: &opts.ItemStyle{Color: env.Info.Color},
		})
	}
	bar.SetXAxis(labels)
	bar.AddSeries("items", values)

	page := components.NewPage()
	page.PageTitle = "Croco Dashboard stats"
	if c.assetsHost != "" {
		page.AssetsHost = c.assetsHost
	}
	page.AddCharts(pie, bar)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return "", fmt.Errorf("dashboard: render stats: %w", err)
	}
	return buf.String(), nil
}

func (c *StatsChart) globalOptions(title, theme string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if c.assetsHost != "" {
		initOpts.AssetsHost = c.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

type environmentCount struct {
	Info  EnvironmentInfo
	Count int
}

func environmentCounts(items []Item) []environmentCount {
	tally := make(map[Environment]int)
	for _, item := range items {
		tally[itemEnvironment(item)]++
	}
	out := make([]environmentCount, 0, len(tally))
	for _, info := range Environments() {
		if n := tally[info.Value]; n > 0 {
			out = append(out, environmentCount{Info: info, Count: n})
		}
	}
	return out
}
