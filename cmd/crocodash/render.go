package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

type palette struct {
	header lipgloss.Style
	name   lipgloss.Style
	url    lipgloss.Style
	muted  lipgloss.Style
	ok     lipgloss.Style
	bad    lipgloss.Style
}

func newPalette(theme dashboard.Theme) palette {
	fg, dim := lipgloss.Color("#111827"), lipgloss.Color("#6b7280")
	accent := lipgloss.Color("#4f46e5")
	if theme.Dark() {
		fg, dim, accent = lipgloss.Color("#f3f4f6"), lipgloss.Color("#9ca3af"), lipgloss.Color("#a5b4fc")
	}
	return palette{
		header: lipgloss.NewStyle().Bold(true).Foreground(accent).MarginTop(1),
		name:   lipgloss.NewStyle().Bold(true).Foreground(fg),
		url:    lipgloss.NewStyle().Foreground(dim).Underline(true),
		muted:  lipgloss.NewStyle().Foreground(dim),
		ok:     lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")),
		bad:    lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),
	}
}

func envBadge(env dashboard.Environment) string {
	info := env.Info()
	return lipgloss.NewStyle().
		Background(lipgloss.Color(info.Color)).
		Foreground(lipgloss.Color(info.TextColor)).
		Padding(0, 1).
		Render(info.Label)
}

func (p palette) linkDot(state dashboard.LinkState) string {
	switch state {
	case dashboard.LinkReachable:
		return p.ok.Render("●")
	case dashboard.LinkUnreachable:
		return p.bad.Render("●")
	default:
		return p.muted.Render("○")
	}
}

// renderView writes the grouped listing. links may be nil.
func renderView(w io.Writer, view dashboard.View, icons *dashboard.IconRegistry, links map[string]dashboard.LinkState, p palette) {
	if len(view.Items) == 0 {
		fmt.Fprintln(w, p.muted.Render("No items."))
		return
	}
	for _, group := range view.Ordered() {
		glyph := icons.Resolve(group.Icon).Glyph
		fmt.Fprintln(w, p.header.Render(fmt.Sprintf("%s %s (%d)", glyph, group.Name, len(group.Items))))
		for _, item := range group.Items {
			var b strings.Builder
			if links != nil {
				b.WriteString(p.linkDot(links[item.ID]) + " ")
			}
			b.WriteString(icons.Resolve(item.Icon).Glyph + " ")
			b.WriteString(p.name.Render(item.Name) + " ")
			b.WriteString(envBadge(item.Environment) + " ")
			b.WriteString(p.url.Render(item.URL))
			if item.IsAdminOnly {
				b.WriteString(" " + p.muted.Render("[admin]"))
			}
			b.WriteString(" " + p.muted.Render(item.ID))
			fmt.Fprintln(w, "  "+b.String())
			if item.Description != "" {
				fmt.Fprintln(w, "    "+p.muted.Render(item.Description))
			}
		}
	}
}
