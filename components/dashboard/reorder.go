package dashboard

import (
	"context"
	"errors"
	"sync"
)

// ItemSource exposes the current cached item list.
type ItemSource interface {
	Items() []Item
}

// ItemMutator applies a partial update to one item.
type ItemMutator interface {
	Update(ctx context.Context, id string, patch ItemPatch) error
}

// CategoryOrderStore loads and persists the category rank map.
type CategoryOrderStore interface {
	CategoryOrder() (CategoryOrder, error)
	SetCategoryOrder(order CategoryOrder) error
}

// EditGate reports whether drag gestures may mutate anything.
type EditGate interface {
	EditMode() bool
	CanManage() bool
}

// PendingMoveSink receives moves that would empty their source category.
type PendingMoveSink interface {
	RaisePendingMove(move PendingMove)
}

// GestureState is the state of a drag gesture. State only ever reports idle
// or dragging; the dropped and cancelled states label the DropOutcome that
// ends a gesture, after which the engine is idle again.
type GestureState string

const (
	GestureIdle                  GestureState = "idle"
	GestureDragging              GestureState = "dragging"
	GestureDroppedOnItem         GestureState = "dropped-on-item"
	GestureDroppedOnCategory     GestureState = "dropped-on-category"
	GestureDroppedOnCategoryHead GestureState = "dropped-on-category-header"
	GestureCancelled             GestureState = "cancelled"
)

// DropAction describes what a drop did.
type DropAction string

const (
	ActionNone              DropAction = "none"
	ActionReordered         DropAction = "reordered"
	ActionRenumbered        DropAction = "renumbered"
	ActionMoved             DropAction = "moved"
	ActionPendingMove       DropAction = "pending-move"
	ActionCategoriesSwapped DropAction = "categories-swapped"
)

// DropOutcome reports the result of a completed gesture.
type DropOutcome struct {
	State      GestureState  `json:"state"`
	Action     DropAction    `json:"action"`
	ItemID     string        `json:"item_id,omitempty"`
	OrderIndex float64       `json:"order_index,omitempty"`
	Updated    int           `json:"updated"`
	Pending    *PendingMove  `json:"pending,omitempty"`
	Order      CategoryOrder `json:"order,omitempty"`
}

var (
	// ErrEditDisabled is returned when a gesture runs outside edit mode or
	// without management rights.
	ErrEditDisabled = errors.New("dashboard: edit mode disabled")

	// ErrNoDrag is returned when a drop arrives without an active drag.
	ErrNoDrag = errors.New("dashboard: no drag in progress")

	errUnknownItem = errors.New("dashboard: dragged item not in snapshot")
)

// EngineOptions wires the engine collaborators.
type EngineOptions struct {
	Items      ItemSource
	Mutator    ItemMutator
	OrderStore CategoryOrderStore
	Gate       EditGate
	Pending    PendingMoveSink
	Telemetry  Telemetry
}

type dragKind int

const (
	dragItem dragKind = iota + 1
	dragCategory
)

// Engine turns drag gestures into item and category-order mutations.
type Engine struct {
	opts EngineOptions

	mu      sync.Mutex
	state   GestureState
	kind    dragKind
	subject string
}

// NewEngine builds an engine. Missing gate or sink collaborators default to
// inert implementations.
func NewEngine(opts EngineOptions) *Engine {
	if opts.Gate == nil {
		opts.Gate = closedGate{}
	}
	if opts.Pending == nil {
		opts.Pending = discardPending{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Engine{opts: opts, state: GestureIdle}
}

// State returns the current gesture state.
func (e *Engine) State() GestureState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// BeginItemDrag starts dragging an item. It reports false when editing is not
// allowed or another gesture is running.
func (e *Engine) BeginItemDrag(itemID string) bool {
	return e.begin(dragItem, itemID)
}

// BeginCategoryDrag starts dragging a category header.
func (e *Engine) BeginCategoryDrag(category string) bool {
	return e.begin(dragCategory, category)
}

func (e *Engine) begin(kind dragKind, subject string) bool {
	if !e.editable() || subject == "" {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == GestureDragging {
		return false
	}
	e.state, e.kind, e.subject = GestureDragging, kind, subject
	return true
}

// Cancel abandons the current gesture and reports it as cancelled. Nothing is
// written. Without an active drag the outcome carries ErrNoDrag.
func (e *Engine) Cancel() (DropOutcome, error) {
	kind, subject, err := e.finish()
	out := DropOutcome{State: GestureCancelled, Action: ActionNone}
	if err != nil {
		return out, err
	}
	if kind == dragItem {
		out.ItemID = subject
	}
	return out, nil
}

// DropOnItem finishes an item drag on another item.
func (e *Engine) DropOnItem(ctx context.Context, targetID string) (DropOutcome, error) {
	kind, subject, err := e.finish()
	if err != nil {
		return DropOutcome{State: GestureCancelled, Action: ActionNone}, err
	}
	if kind != dragItem {
		return DropOutcome{State: GestureCancelled, Action: ActionNone}, nil
	}
	out, err := e.Reorder(ctx, subject, targetID)
	out.State = GestureDroppedOnItem
	return out, err
}

// DropOnCategory finishes an item drag on a category section.
func (e *Engine) DropOnCategory(ctx context.Context, category string) (DropOutcome, error) {
	kind, subject, err := e.finish()
	if err != nil {
		return DropOutcome{State: GestureCancelled, Action: ActionNone}, err
	}
	if kind != dragItem {
		return DropOutcome{State: GestureCancelled, Action: ActionNone}, nil
	}
	out, err := e.Move(ctx, subject, category)
	out.State = GestureDroppedOnCategory
	return out, err
}

// DropOnCategoryHeader finishes a drag on a category header. Dragged
// categories swap ranks; dragged items move into the category.
func (e *Engine) DropOnCategoryHeader(ctx context.Context, category string) (DropOutcome, error) {
	kind, subject, err := e.finish()
	if err != nil {
		return DropOutcome{State: GestureCancelled, Action: ActionNone}, err
	}
	var out DropOutcome
	switch kind {
	case dragCategory:
		out, err = e.SwapCategories(ctx, subject, category)
	default:
		out, err = e.Move(ctx, subject, category)
	}
	out.State = GestureDroppedOnCategoryHead
	return out, err
}

func (e *Engine) finish() (dragKind, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != GestureDragging {
		return 0, "", ErrNoDrag
	}
	kind, subject := e.kind, e.subject
	e.state, e.kind, e.subject = GestureIdle, 0, ""
	return kind, subject, nil
}

// Reorder places dragged at target's position. Items in different categories
// are handed to Move.
func (e *Engine) Reorder(ctx context.Context, draggedID, targetID string) (DropOutcome, error) {
	out := DropOutcome{Action: ActionNone, ItemID: draggedID}
	if !e.editable() {
		return out, ErrEditDisabled
	}
	if draggedID == targetID {
		return out, nil
	}
	items := e.snapshot()
	dragged, ok := findItem(items, draggedID)
	if !ok {
		return out, errUnknownItem
	}
	target, ok := findItem(items, targetID)
	if !ok {
		return out, errUnknownItem
	}
	if dragged.CategoryName() != target.CategoryName() {
		return e.Move(ctx, draggedID, target.CategoryName())
	}

	members := ItemsInCategory(items, dragged.CategoryName())
	from, to := indexOf(members, draggedID), indexOf(members, targetID)
	ordered := moveWithin(members, from, to)
	pos := indexOf(ordered, draggedID)
	place := midpointAt(ordered, pos)
	if place.ok {
		idx := place.index
		if err := e.opts.Mutator.Update(ctx, draggedID, ItemPatch{OrderIndex: &idx}); err != nil {
			return out, err
		}
		out.Action, out.OrderIndex, out.Updated = ActionReordered, idx, 1
		e.opts.Telemetry.Record(ctx, "dashboard.item.reorder", map[string]any{
			"item_id":     draggedID,
			"order_index": idx,
		})
		return out, nil
	}

	patches := renumber(ordered)
	for _, p := range patches {
		if err := e.opts.Mutator.Update(ctx, p.ID, p.Patch); err != nil {
			return out, err
		}
		out.Updated++
	}
	out.Action, out.OrderIndex = ActionRenumbered, float64(pos)
	e.opts.Telemetry.Record(ctx, "dashboard.item.renumber", map[string]any{
		"category": dragged.CategoryName(),
		"updated":  out.Updated,
	})
	return out, nil
}

// Move relocates an item to the end of another category. When the source
// category would be left empty the move is raised for confirmation instead.
func (e *Engine) Move(ctx context.Context, itemID, toCategory string) (DropOutcome, error) {
	out := DropOutcome{Action: ActionNone, ItemID: itemID}
	if !e.editable() {
		return out, ErrEditDisabled
	}
	items := e.snapshot()
	item, ok := findItem(items, itemID)
	if !ok {
		return out, errUnknownItem
	}
	from := item.CategoryName()
	if toCategory == "" || toCategory == from {
		return out, nil
	}
	move := PlanMove(items, item, toCategory)
	if len(ItemsInCategory(items, from)) <= 1 {
		e.opts.Pending.RaisePendingMove(move)
		out.Action, out.Pending = ActionPendingMove, &move
		return out, nil
	}
	if err := e.opts.Mutator.Update(ctx, itemID, move.Updates); err != nil {
		return out, err
	}
	out.Action, out.Updated = ActionMoved, 1
	if move.Updates.OrderIndex != nil {
		out.OrderIndex = *move.Updates.OrderIndex
	}
	e.opts.Telemetry.Record(ctx, "dashboard.item.move", map[string]any{
		"item_id": itemID,
		"from":    from,
		"to":      toCategory,
	})
	return out, nil
}

// PlanMove builds the update that moves item into category: the category
// name, the destination icon and an order index after every current member.
func PlanMove(items []Item, item Item, category string) PendingMove {
	dest := ItemsInCategory(items, category)
	icon := item.CategoryIconName()
	idx := 0.0
	if len(dest) > 0 {
		icon = CategoryIcon(dest)
		highest, _ := maxOrderIndex(dest)
		idx = highest + 1
	}
	name := category
	return PendingMove{
		ItemID:       item.ID,
		FromCategory: item.CategoryName(),
		ToCategory:   category,
		Updates: ItemPatch{
			Category:     &name,
			CategoryIcon: &icon,
			OrderIndex:   &idx,
		},
	}
}

// SwapCategories exchanges the ranks of two categories and persists the map.
// Unranked categories are first given ranks in their current display order.
func (e *Engine) SwapCategories(ctx context.Context, dragged, target string) (DropOutcome, error) {
	out := DropOutcome{Action: ActionNone}
	if !e.editable() {
		return out, ErrEditDisabled
	}
	if dragged == target {
		return out, nil
	}
	if e.opts.OrderStore == nil {
		return out, errMissingOrderStore
	}
	current, err := e.opts.OrderStore.CategoryOrder()
	if err != nil {
		return out, err
	}
	names := make([]string, 0)
	for _, cat := range ExistingCategories(e.snapshot()) {
		names = append(names, cat.Name)
	}
	order := SwapCategoryRanks(names, current, dragged, target)
	if err := e.opts.OrderStore.SetCategoryOrder(order); err != nil {
		return out, err
	}
	out.Action, out.Order = ActionCategoriesSwapped, order
	e.opts.Telemetry.Record(ctx, "dashboard.category.swap", map[string]any{
		"dragged": dragged,
		"target":  target,
	})
	return out, nil
}

// SwapCategoryRanks returns a copy of order where a and b have exchanged
// ranks. Every name in categories (and a, b) is ranked first, following the
// current display order.
func SwapCategoryRanks(categories []string, order CategoryOrder, a, b string) CategoryOrder {
	next := order.Clone()
	if next == nil {
		next = CategoryOrder{}
	}
	all := append([]string(nil), categories...)
	for _, name := range []string{a, b} {
		if !containsString(all, name) {
			all = append(all, name)
		}
	}
	highest := -1
	for _, rank := range next {
		if rank > highest {
			highest = rank
		}
	}
	for _, name := range SortCategories(all, next) {
		if _, ok := next[name]; !ok {
			highest++
			next[name] = highest
		}
	}
	next[a], next[b] = next[b], next[a]
	return next
}

func (e *Engine) editable() bool {
	return e.opts.Gate.EditMode() && e.opts.Gate.CanManage()
}

func (e *Engine) snapshot() []Item {
	if e.opts.Items == nil {
		return nil
	}
	return e.opts.Items.Items()
}

func findItem(items []Item, id string) (Item, bool) {
	if i := indexOf(items, id); i >= 0 {
		return items[i], true
	}
	return Item{}, false
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

type closedGate struct{}

func (closedGate) EditMode() bool  { return false }
func (closedGate) CanManage() bool { return false }

type discardPending struct{}

func (discardPending) RaisePendingMove(PendingMove) {}
