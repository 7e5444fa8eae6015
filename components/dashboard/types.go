package dashboard

import (
	"context"
	"time"
)

const (
	// DefaultCategory is used for items saved without a category.
	DefaultCategory = "Uncategorized"
	// DefaultCategoryIcon is used for categories without an explicit icon.
	DefaultCategoryIcon = "Folder"
	// DefaultItemIcon is the icon assigned to new items without one.
	DefaultItemIcon = "Link"
)

// ItemStore persists dashboard items. Implementations ensure thread safety.
type ItemStore interface {
	ListItems(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, id string) (Item, error)
	CreateItem(ctx context.Context, item Item) (Item, error)
	UpdateItem(ctx context.Context, id string, patch ItemPatch) (Item, error)
	DeleteItem(ctx context.Context, id string) error
	ReplaceItems(ctx context.Context, items []Item, replaceExisting bool) (int, error)
}

// CategoryOrderRepository persists the server-side category ranks.
type CategoryOrderRepository interface {
	CategoryOrder(ctx context.Context) (CategoryOrder, error)
	SaveCategoryOrder(ctx context.Context, order CategoryOrder) error
	DeleteCategoryOrder(ctx context.Context, category string) error
	EnsureCategory(ctx context.Context, category string) error
}

// RefreshHook notifies transports (REST/WebSocket) about item changes.
type RefreshHook interface {
	ItemsChanged(ctx context.Context, event ItemEvent) error
}

// ItemSize is the display size of an item card.
type ItemSize string

const (
	SizeExtraSmall ItemSize = "extra-small"
	SizeSmall      ItemSize = "small"
	SizeMedium     ItemSize = "medium"
	SizeLarge      ItemSize = "large"
	SizeExtraLarge ItemSize = "extra-large"
)

// Valid reports whether the size is one of the known card sizes.
func (s ItemSize) Valid() bool {
	switch s {
	case SizeExtraSmall, SizeSmall, SizeMedium, SizeLarge, SizeExtraLarge:
		return true
	}
	return false
}

// Item is a saved link as returned by the REST API.
type Item struct {
	ID           string      `json:"id" yaml:"id,omitempty"`
	Name         string      `json:"name" yaml:"name"`
	URL          string      `json:"url" yaml:"url"`
	Description  string      `json:"description" yaml:"description,omitempty"`
	Icon         string      `json:"icon" yaml:"icon,omitempty"`
	Category     string      `json:"category" yaml:"category,omitempty"`
	CategoryIcon string      `json:"category_icon" yaml:"category_icon,omitempty"`
	Username     string      `json:"username" yaml:"username,omitempty"`
	SecretKey    string      `json:"secret_key" yaml:"secret_key,omitempty"`
	OrderIndex   float64     `json:"order_index" yaml:"order_index,omitempty"`
	IsAdminOnly  bool        `json:"is_admin_only" yaml:"is_admin_only,omitempty"`
	Size         ItemSize    `json:"size" yaml:"size,omitempty"`
	Environment  Environment `json:"environment" yaml:"environment,omitempty"`
	CreatedAt    time.Time   `json:"created_at" yaml:"-"`
}

// CategoryName returns the item's category, falling back to DefaultCategory.
func (i Item) CategoryName() string {
	if i.Category == "" {
		return DefaultCategory
	}
	return i.Category
}

// CategoryIconName returns the item's category icon, falling back to DefaultCategoryIcon.
func (i Item) CategoryIconName() string {
	if i.CategoryIcon == "" {
		return DefaultCategoryIcon
	}
	return i.CategoryIcon
}

// ItemInput is the create payload (camelCase keys, like the web client sends).
type ItemInput struct {
	Name         string      `json:"name"`
	URL          string      `json:"url"`
	Description  string      `json:"description,omitempty"`
	Icon         string      `json:"icon,omitempty"`
	Category     string      `json:"category,omitempty"`
	CategoryIcon string      `json:"categoryIcon,omitempty"`
	Username     string      `json:"username,omitempty"`
	SecretKey    string      `json:"secretKey,omitempty"`
	OrderIndex   float64     `json:"orderIndex,omitempty"`
	IsAdminOnly  bool        `json:"isAdminOnly,omitempty"`
	Size         ItemSize    `json:"size,omitempty"`
	Environment  Environment `json:"environment,omitempty"`
}

// ItemPatch is a partial update. Nil fields are left untouched.
type ItemPatch struct {
	Name         *string      `json:"name,omitempty"`
	URL          *string      `json:"url,omitempty"`
	Description  *string      `json:"description,omitempty"`
	Icon         *string      `json:"icon,omitempty"`
	Category     *string      `json:"category,omitempty"`
	CategoryIcon *string      `json:"categoryIcon,omitempty"`
	Username     *string      `json:"username,omitempty"`
	SecretKey    *string      `json:"secretKey,omitempty"`
	OrderIndex   *float64     `json:"orderIndex,omitempty"`
	IsAdminOnly  *bool        `json:"isAdminOnly,omitempty"`
	Size         *ItemSize    `json:"size,omitempty"`
	Environment  *Environment `json:"environment,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ItemPatch) IsEmpty() bool {
	return p.Name == nil && p.URL == nil && p.Description == nil && p.Icon == nil &&
		p.Category == nil && p.CategoryIcon == nil && p.Username == nil &&
		p.SecretKey == nil && p.OrderIndex == nil && p.IsAdminOnly == nil &&
		p.Size == nil && p.Environment == nil
}

// Apply returns a copy of item with the patch applied.
func (p ItemPatch) Apply(item Item) Item {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.URL != nil {
		item.URL = *p.URL
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Icon != nil {
		item.Icon = *p.Icon
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.CategoryIcon != nil {
		item.CategoryIcon = *p.CategoryIcon
	}
	if p.Username != nil {
		item.Username = *p.Username
	}
	if p.SecretKey != nil {
		item.SecretKey = *p.SecretKey
	}
	if p.OrderIndex != nil {
		item.OrderIndex = *p.OrderIndex
	}
	if p.IsAdminOnly != nil {
		item.IsAdminOnly = *p.IsAdminOnly
	}
	if p.Size != nil {
		item.Size = *p.Size
	}
	if p.Environment != nil {
		item.Environment = *p.Environment
	}
	return item
}

// CategoryOrder maps a category name to its display rank.
type CategoryOrder map[string]int

// Clone returns an independent copy of the order map.
func (o CategoryOrder) Clone() CategoryOrder {
	out := make(CategoryOrder, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Category is a derived grouping: a name and its icon.
type Category struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// PendingMove is a cross-category move waiting for the user to confirm that the
// source category will disappear.
type PendingMove struct {
	ItemID       string    `json:"itemId"`
	FromCategory string    `json:"fromCategory"`
	ToCategory   string    `json:"toCategory"`
	Updates      ItemPatch `json:"updates"`
}

// ExportDocument is the payload of GET /api/items/export and of export files.
type ExportDocument struct {
	Items []Item `json:"items"`
}

// ImportRequest is the body of POST /api/items/import.
type ImportRequest struct {
	Items           []Item `json:"items"`
	ReplaceExisting bool   `json:"replaceExisting"`
}

// ViewerContext describes who is calling: a guest or the administrator.
type ViewerContext struct {
	Username string
	Admin    bool
}

// ItemEvent describes changes that transports might care about.
type ItemEvent struct {
	ItemID   string `json:"item_id,omitempty"`
	Category string `json:"category,omitempty"`
	Reason   string `json:"reason"`
}
