package dashboard

import (
	"maps"
	"sort"
	"strings"
	"sync"
)

// Query narrows the items a view shows.
type Query struct {
	Search      string
	Environment Environment
}

// CategoryGroup is one category of a derived view.
type CategoryGroup struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Items []Item `json:"items"`
}

// View is the derived, display-ready shape of an item list.
type View struct {
	Items      []Item                   `json:"items"`
	Groups     map[string]CategoryGroup `json:"groups"`
	Categories []string                 `json:"categories"`
}

// Ordered returns the groups following the category order.
func (v View) Ordered() []CategoryGroup {
	out := make([]CategoryGroup, 0, len(v.Categories))
	for _, name := range v.Categories {
		out = append(out, v.Groups[name])
	}
	return out
}

// Derive filters items by search, sorts them and groups them by category.
// It never mutates items.
func Derive(items []Item, search string, order CategoryOrder) View {
	return DeriveQuery(items, Query{Search: search}, order)
}

// DeriveQuery is Derive with the environment filter applied as well.
func DeriveQuery(items []Item, query Query, order CategoryOrder) View {
	term := strings.ToLower(strings.TrimSpace(query.Search))
	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		if query.Environment != "" && itemEnvironment(item) != query.Environment {
			continue
		}
		if term != "" && !matchesSearch(item, term) {
			continue
		}
		filtered = append(filtered, item)
	}
	SortItems(filtered)

	groups := make(map[string]CategoryGroup)
	names := make([]string, 0)
	for _, item := range filtered {
		name := item.CategoryName()
		group, ok := groups[name]
		if !ok {
			group = CategoryGroup{Name: name}
			names = append(names, name)
		}
		if group.Icon == "" {
			group.Icon = item.CategoryIcon
		}
		group.Items = append(group.Items, item)
		groups[name] = group
	}
	for name, group := range groups {
		if group.Icon == "" {
			group.Icon = DefaultCategoryIcon
			groups[name] = group
		}
	}
	return View{
		Items:      filtered,
		Groups:     groups,
		Categories: SortCategories(names, order),
	}
}

// SortItems orders items by category name, then order index, then creation
// time. The sort is stable so remaining ties keep their input order.
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if ca, cb := a.CategoryName(), b.CategoryName(); ca != cb {
			return ca < cb
		}
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex < b.OrderIndex
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

// SortCategories returns names ordered by rank; unranked names follow the
// ranked ones alphabetically.
func SortCategories(names []string, order CategoryOrder) []string {
	out := append([]string(nil), names...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iok := order[out[i]]
		rj, jok := order[out[j]]
		switch {
		case iok && jok:
			if ri != rj {
				return ri < rj
			}
			return out[i] < out[j]
		case iok:
			return true
		case jok:
			return false
		default:
			return out[i] < out[j]
		}
	})
	return out
}

func matchesSearch(item Item, term string) bool {
	for _, field := range []string{item.Name, item.Description, item.URL, item.CategoryName()} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func itemEnvironment(item Item) Environment {
	if item.Environment == "" {
		return EnvCommon
	}
	return item.Environment
}

// Memo caches the last derived view. It recomputes only when the item slice,
// the query or the category order changes.
type Memo struct {
	mu    sync.Mutex
	valid bool
	head  *Item
	size  int
	query Query
	order CategoryOrder
	view  View
}

// Derive returns the cached view when the inputs match the previous call.
func (m *Memo) Derive(items []Item, query Query, order CategoryOrder) View {
	m.mu.Lock()
	defer m.mu.Unlock()
	var head *Item
	if len(items) > 0 {
		head = &items[0]
	}
	if m.valid && m.head == head && m.size == len(items) && m.query == query && maps.Equal(m.order, order) {
		return m.view
	}
	m.view = DeriveQuery(items, query, order)
	m.head, m.size, m.query = head, len(items), query
	m.order = order.Clone()
	m.valid = true
	return m.view
}

// Reset drops the cached view.
func (m *Memo) Reset() {
	m.mu.Lock()
	m.valid = false
	m.view = View{}
	m.mu.Unlock()
}
