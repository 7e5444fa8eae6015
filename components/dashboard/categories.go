package dashboard

import (
	"sort"
	"strings"
)

// ExistingCategories lists every category present in items with its icon,
// sorted by name.
func ExistingCategories(items []Item) []Category {
	seen := make(map[string]string)
	for _, item := range items {
		name := item.CategoryName()
		if seen[name] == "" {
			seen[name] = item.CategoryIcon
		}
	}
	out := make([]Category, 0, len(seen))
	for name, icon := range seen {
		if icon == "" {
			icon = DefaultCategoryIcon
		}
		out = append(out, Category{Name: name, Icon: icon})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ItemsInCategory returns the members of category in display order.
func ItemsInCategory(items []Item, category string) []Item {
	out := make([]Item, 0)
	for _, item := range items {
		if item.CategoryName() == category {
			out = append(out, item)
		}
	}
	SortItems(out)
	return out
}

// CategoryEdit renames a category and/or changes its icon.
type CategoryEdit struct {
	From string
	Name string
	Icon string
}

// PatchTarget is a single item update produced by a plan.
type PatchTarget struct {
	ID    string
	Patch ItemPatch
}

// PlanCategoryEdit returns the per-item patches that apply edit. Categories
// only exist through their members, so renaming rewrites every member.
func PlanCategoryEdit(items []Item, edit CategoryEdit) ([]PatchTarget, error) {
	from := strings.TrimSpace(edit.From)
	if from == "" {
		return nil, &ValidationError{Message: "category name is required"}
	}
	name := strings.TrimSpace(edit.Name)
	icon := strings.TrimSpace(edit.Icon)
	members := ItemsInCategory(items, from)
	if len(members) == 0 {
		return nil, ErrNotFound
	}
	plan := make([]PatchTarget, 0, len(members))
	for _, item := range members {
		var patch ItemPatch
		if name != "" && name != from {
			patch.Category = &name
		}
		if icon != "" && icon != item.CategoryIconName() {
			patch.CategoryIcon = &icon
		}
		if patch.IsEmpty() {
			continue
		}
		plan = append(plan, PatchTarget{ID: item.ID, Patch: patch})
	}
	return plan, nil
}

// CategoryIcon returns the first explicit category icon among members, or
// DefaultCategoryIcon.
func CategoryIcon(members []Item) string {
	for _, item := range members {
		if item.CategoryIcon != "" {
			return item.CategoryIcon
		}
	}
	return DefaultCategoryIcon
}
