package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations (memory, SQLite) without
// touching the service.
type Options struct {
	Items         ItemStore
	CategoryOrder CategoryOrderRepository
	Auth          Authenticator
	Validator     PayloadValidator
	RefreshHook   RefreshHook
	Telemetry     Telemetry
}

// Service implements the item, category-order and auth operations behind the
// REST API.
type Service struct {
	opts Options
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Auth == nil {
		opts.Auth = denyAllAuthenticator{}
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.CategoryOrder == nil {
		if repo, ok := opts.Items.(CategoryOrderRepository); ok {
			opts.CategoryOrder = repo
		}
	}
	return &Service{opts: opts}
}

// Login exchanges admin credentials for a token.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	result, err := s.opts.Auth.Login(ctx, strings.TrimSpace(username), password)
	if err != nil {
		s.recordTelemetry(ctx, "dashboard.auth.login_failed", map[string]any{"username": username})
		return LoginResult{}, err
	}
	s.recordTelemetry(ctx, "dashboard.auth.login", map[string]any{"username": result.Username})
	return result, nil
}

// Authenticate resolves a bearer token. Unknown or empty tokens yield a guest
// viewer and ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, token string) (ViewerContext, error) {
	if token == "" {
		return ViewerContext{}, ErrUnauthorized
	}
	return s.opts.Auth.Verify(ctx, token)
}

// ListItems returns items ordered by category and order index. Admin-only
// items are hidden from guests.
func (s *Service) ListItems(ctx context.Context) ([]Item, error) {
	store, err := s.itemStore()
	if err != nil {
		return nil, err
	}
	items, err := store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: list items: %w", err)
	}
	if IsAdmin(ctx) {
		return items, nil
	}
	visible := items[:0:0]
	for _, item := range items {
		if !item.IsAdminOnly {
			visible = append(visible, item)
		}
	}
	return visible, nil
}

// GetItem returns one item, respecting admin-only visibility.
func (s *Service) GetItem(ctx context.Context, id string) (Item, error) {
	store, err := s.itemStore()
	if err != nil {
		return Item{}, err
	}
	item, err := store.GetItem(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if item.IsAdminOnly && !IsAdmin(ctx) {
		return Item{}, ErrNotFound
	}
	return item, nil
}

// CreateItem validates input, applies defaults and stores a new item.
func (s *Service) CreateItem(ctx context.Context, input ItemInput) (Item, error) {
	if err := requireManager(ctx); err != nil {
		return Item{}, err
	}
	store, err := s.itemStore()
	if err != nil {
		return Item{}, err
	}
	item, err := newItem(input)
	if err != nil {
		return Item{}, err
	}
	created, err := store.CreateItem(ctx, item)
	if err != nil {
		return Item{}, fmt.Errorf("dashboard: create item: %w", err)
	}
	s.ensureCategory(ctx, created.CategoryName())
	s.notify(ctx, ItemEvent{ItemID: created.ID, Category: created.CategoryName(), Reason: "create"})
	s.recordTelemetry(ctx, "dashboard.item.create", map[string]any{
		"item_id":  created.ID,
		"category": created.CategoryName(),
	})
	return created, nil
}

// UpdateItem applies a partial update.
func (s *Service) UpdateItem(ctx context.Context, id string, patch ItemPatch) (Item, error) {
	if err := requireManager(ctx); err != nil {
		return Item{}, err
	}
	store, err := s.itemStore()
	if err != nil {
		return Item{}, err
	}
	if patch.IsEmpty() {
		return Item{}, ErrNoChanges
	}
	if err := validatePatch(patch); err != nil {
		return Item{}, err
	}
	updated, err := store.UpdateItem(ctx, id, patch)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Item{}, err
		}
		return Item{}, fmt.Errorf("dashboard: update item: %w", err)
	}
	if patch.Category != nil {
		s.ensureCategory(ctx, updated.CategoryName())
	}
	s.notify(ctx, ItemEvent{ItemID: id, Category: updated.CategoryName(), Reason: "update"})
	s.recordTelemetry(ctx, "dashboard.item.update", map[string]any{"item_id": id})
	return updated, nil
}

// DeleteItem removes an item.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	if err := requireManager(ctx); err != nil {
		return err
	}
	store, err := s.itemStore()
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Message: "item id is required"}
	}
	if err := store.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("dashboard: delete item: %w", err)
	}
	s.notify(ctx, ItemEvent{ItemID: id, Reason: "delete"})
	s.recordTelemetry(ctx, "dashboard.item.delete", map[string]any{"item_id": id})
	return nil
}

// Export returns every item, admin-only ones included.
func (s *Service) Export(ctx context.Context) (ExportDocument, error) {
	if err := requireManager(ctx); err != nil {
		return ExportDocument{}, err
	}
	items, err := s.ListItems(ctx)
	if err != nil {
		return ExportDocument{}, err
	}
	s.recordTelemetry(ctx, "dashboard.items.export", map[string]any{"count": len(items)})
	return ExportDocument{Items: items}, nil
}

// ImportResult reports how many items an import wrote.
type ImportResult struct {
	Imported int `json:"imported"`
}

// Import stores the given items with fresh ids, optionally replacing every
// existing item.
func (s *Service) Import(ctx context.Context, req ImportRequest) (ImportResult, error) {
	if err := requireManager(ctx); err != nil {
		return ImportResult{}, err
	}
	store, err := s.itemStore()
	if err != nil {
		return ImportResult{}, err
	}
	items := make([]Item, 0, len(req.Items))
	var errs []error
	for i, raw := range req.Items {
		item, err := normalizeItem(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		items = append(items, item)
	}
	if len(errs) > 0 {
		return ImportResult{}, &ValidationError{Message: "import contains invalid items: " + errors.Join(errs...).Error()}
	}
	count, err := store.ReplaceItems(ctx, items, req.ReplaceExisting)
	if err != nil {
		return ImportResult{}, fmt.Errorf("dashboard: import items: %w", err)
	}
	for _, cat := range ExistingCategories(items) {
		s.ensureCategory(ctx, cat.Name)
	}
	s.notify(ctx, ItemEvent{Reason: "import"})
	s.recordTelemetry(ctx, "dashboard.items.import", map[string]any{
		"count":   count,
		"replace": req.ReplaceExisting,
	})
	return ImportResult{Imported: count}, nil
}

// DecodeItemInput validates a raw create payload and decodes it.
func (s *Service) DecodeItemInput(data []byte) (ItemInput, error) {
	if err := s.opts.Validator.Validate(ItemSchema, data); err != nil {
		return ItemInput{}, err
	}
	var input ItemInput
	if err := json.Unmarshal(data, &input); err != nil {
		return ItemInput{}, &ValidationError{Message: "invalid item payload: " + err.Error()}
	}
	return input, nil
}

// DecodeItemPatch validates a raw partial update payload and decodes it.
func (s *Service) DecodeItemPatch(data []byte) (ItemPatch, error) {
	if err := s.opts.Validator.Validate(ItemPatchSchema, data); err != nil {
		return ItemPatch{}, err
	}
	var patch ItemPatch
	if err := json.Unmarshal(data, &patch); err != nil {
		return ItemPatch{}, &ValidationError{Message: "invalid update payload: " + err.Error()}
	}
	return patch, nil
}

// DecodeImport validates a raw import document and decodes it.
func (s *Service) DecodeImport(data []byte) (ImportRequest, error) {
	if err := s.opts.Validator.Validate(ImportSchema, data); err != nil {
		return ImportRequest{}, err
	}
	var req ImportRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return ImportRequest{}, &ValidationError{Message: "invalid import document: " + err.Error()}
	}
	return req, nil
}

// CategoryOrder returns the server-side category ranks.
func (s *Service) CategoryOrder(ctx context.Context) (CategoryOrder, error) {
	repo, err := s.orderRepository()
	if err != nil {
		return nil, err
	}
	order, err := repo.CategoryOrder(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: load category order: %w", err)
	}
	return order, nil
}

// SaveCategoryOrder upserts ranks.
func (s *Service) SaveCategoryOrder(ctx context.Context, order CategoryOrder) error {
	if err := requireManager(ctx); err != nil {
		return err
	}
	repo, err := s.orderRepository()
	if err != nil {
		return err
	}
	for name := range order {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Message: "category name is required"}
		}
	}
	if err := repo.SaveCategoryOrder(ctx, order); err != nil {
		return fmt.Errorf("dashboard: save category order: %w", err)
	}
	s.notify(ctx, ItemEvent{Reason: "category-order"})
	s.recordTelemetry(ctx, "dashboard.category_order.save", map[string]any{"count": len(order)})
	return nil
}

// DeleteCategoryOrder removes a single category rank.
func (s *Service) DeleteCategoryOrder(ctx context.Context, category string) error {
	if err := requireManager(ctx); err != nil {
		return err
	}
	repo, err := s.orderRepository()
	if err != nil {
		return err
	}
	if err := repo.DeleteCategoryOrder(ctx, category); err != nil {
		return fmt.Errorf("dashboard: delete category order: %w", err)
	}
	s.notify(ctx, ItemEvent{Category: category, Reason: "category-order"})
	return nil
}

// CategoryCount is the number of visible items in a category.
type CategoryCount struct {
	Category string `json:"category"`
	Icon     string `json:"icon"`
	Count    int    `json:"count"`
}

// CategoryCounts tallies visible items per category in display order.
func (s *Service) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	order, err := s.CategoryOrder(ctx)
	if err != nil && !errors.Is(err, errMissingOrderStore) {
		return nil, err
	}
	view := Derive(items, "", order)
	counts := make([]CategoryCount, 0, len(view.Categories))
	for _, group := range view.Ordered() {
		counts = append(counts, CategoryCount{Category: group.Name, Icon: group.Icon, Count: len(group.Items)})
	}
	return counts, nil
}

// NotifyItemsChanged pushes an event through the refresh hook.
func (s *Service) NotifyItemsChanged(ctx context.Context, event ItemEvent) error {
	return s.opts.RefreshHook.ItemsChanged(ctx, event)
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

func (s *Service) notify(ctx context.Context, event ItemEvent) {
	if err := s.opts.RefreshHook.ItemsChanged(ctx, event); err != nil {
		s.recordTelemetry(ctx, "dashboard.refresh.error", map[string]any{
			"reason": event.Reason,
			"error":  err.Error(),
		})
	}
}

func (s *Service) ensureCategory(ctx context.Context, category string) {
	if s.opts.CategoryOrder == nil {
		return
	}
	if err := s.opts.CategoryOrder.EnsureCategory(ctx, category); err != nil {
		s.recordTelemetry(ctx, "dashboard.category_order.error", map[string]any{
			"category": category,
			"error":    err.Error(),
		})
	}
}

func (s *Service) itemStore() (ItemStore, error) {
	if s.opts.Items == nil {
		return nil, errMissingItemStore
	}
	return s.opts.Items, nil
}

func (s *Service) orderRepository() (CategoryOrderRepository, error) {
	if s.opts.CategoryOrder == nil {
		return nil, errMissingOrderStore
	}
	return s.opts.CategoryOrder, nil
}

func requireManager(ctx context.Context) error {
	if !IsAdmin(ctx) {
		return ErrUnauthorized
	}
	return nil
}

func newItem(input ItemInput) (Item, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.URL) == "" {
		return Item{}, &ValidationError{Message: "Missing required fields: name or url"}
	}
	return normalizeItem(Item{
		Name:         input.Name,
		URL:          input.URL,
		Description:  input.Description,
		Icon:         input.Icon,
		Category:     input.Category,
		CategoryIcon: input.CategoryIcon,
		Username:     input.Username,
		SecretKey:    input.SecretKey,
		OrderIndex:   input.OrderIndex,
		IsAdminOnly:  input.IsAdminOnly,
		Size:         input.Size,
		Environment:  input.Environment,
	})
}

// normalizeItem trims fields, fills defaults and rejects unknown enums.
func normalizeItem(item Item) (Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	item.URL = strings.TrimSpace(item.URL)
	item.Category = strings.TrimSpace(item.Category)
	if item.Name == "" || item.URL == "" {
		return Item{}, &ValidationError{Message: "Missing required fields: name or url"}
	}
	if item.Icon == "" {
		item.Icon = DefaultItemIcon
	}
	if item.Category == "" {
		item.Category = DefaultCategory
	}
	if item.CategoryIcon == "" {
		item.CategoryIcon = DefaultCategoryIcon
	}
	if item.Size == "" {
		item.Size = SizeMedium
	}
	if item.Environment == "" {
		item.Environment = EnvCommon
	}
	fields := map[string]string{}
	if !item.Size.Valid() {
		fields["size"] = "unknown size " + string(item.Size)
	}
	if !item.Environment.Valid() {
		fields["environment"] = "unknown environment " + string(item.Environment)
	}
	if len(fields) > 0 {
		return Item{}, &ValidationError{Message: "invalid item", Fields: fields}
	}
	return item, nil
}

func validatePatch(patch ItemPatch) error {
	fields := map[string]string{}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		fields["name"] = "must not be empty"
	}
	if patch.URL != nil && strings.TrimSpace(*patch.URL) == "" {
		fields["url"] = "must not be empty"
	}
	if patch.Size != nil && !patch.Size.Valid() {
		fields["size"] = "unknown size " + string(*patch.Size)
	}
	if patch.Environment != nil && !patch.Environment.Valid() {
		fields["environment"] = "unknown environment " + string(*patch.Environment)
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Message: "invalid update", Fields: fields}
}

// SortedCategoryNames returns the keys of order sorted by rank.
func SortedCategoryNames(order CategoryOrder) []string {
	names := make([]string, 0, len(order))
	for name := range order {
		names = append(names, name)
	}
	sort.Strings(names)
	return SortCategories(names, order)
}

type noopRefreshHook struct{}

func (noopRefreshHook) ItemsChanged(context.Context, ItemEvent) error { return nil }
