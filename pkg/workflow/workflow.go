package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
	"github.com/TatoZhvania/Croco-Dashboard/pkg/client"
	"go.uber.org/zap"
)

// Modal names the dialog currently shown. The zero value means none.
type Modal string

const (
	ModalNone           Modal = ""
	ModalAddItem        Modal = "add-item"
	ModalEditItem       Modal = "edit-item"
	ModalDeleteItem     Modal = "delete-item"
	ModalDeleteCategory Modal = "delete-category"
	ModalEditCategory   Modal = "edit-category"
	ModalImport         Modal = "import"
	ModalLogin          Modal = "login"
	ModalLogoutConfirm  Modal = "logout-confirm"
	ModalMoveConfirm    Modal = "move-confirm"
)

// Managed reports whether opening m requires management rights.
func (m Modal) Managed() bool {
	switch m {
	case ModalAddItem, ModalEditItem, ModalDeleteItem, ModalDeleteCategory,
		ModalEditCategory, ModalImport, ModalMoveConfirm:
		return true
	}
	return false
}

var (
	ErrNoPendingMove = errors.New("workflow: no pending move")
	ErrWrongModal    = errors.New("workflow: action does not match the open modal")
)

// errImportShape is the inline message shown for unusable import payloads.
var errImportShape = &dashboard.ValidationError{Message: `JSON must be an array or an object with an "items" array.`}

// Session is the authentication state the controller gates on.
type Session interface {
	IsAdmin() bool
	Login(ctx context.Context, username, password string) (dashboard.LoginResult, error)
	Logout() error
}

// Items is the item store the controller mutates.
type Items interface {
	dashboard.ItemSource
	Refresh(ctx context.Context) error
	Create(ctx context.Context, input dashboard.ItemInput) (string, error)
	Update(ctx context.Context, id string, patch dashboard.ItemPatch) error
	Remove(ctx context.Context, id string) error
	RemoveByCategory(ctx context.Context, category string) (client.BatchResult, error)
}

// Importer sends import payloads to the server.
type Importer interface {
	Import(ctx context.Context, req dashboard.ImportRequest) (dashboard.ImportResult, error)
}

// Options wires the controller collaborators. Session and Items are
// required; Importer is only needed for SubmitImport.
type Options struct {
	Session  Session
	Items    Items
	Importer Importer
	Logger   *zap.Logger
}

// State is a copy of the controller state.
type State struct {
	Modal     Modal
	Target    string
	EditMode  bool
	Pending   *dashboard.PendingMove
	ImportErr error
	AuthErr   error
}

// Controller keeps a single modal open at a time and gates management
// actions on the session. It is the EditGate and PendingMoveSink of the
// reorder engine.
type Controller struct {
	opts Options

	mu        sync.Mutex
	modal     Modal
	target    string
	editMode  bool
	pending   *dashboard.PendingMove
	importErr error
	authErr   error
}

var (
	_ dashboard.EditGate        = (*Controller)(nil)
	_ dashboard.PendingMoveSink = (*Controller)(nil)
)

// New builds a controller with no modal open and edit mode off.
func New(opts Options) (*Controller, error) {
	if opts.Session == nil {
		return nil, errors.New("workflow: session is required")
	}
	if opts.Items == nil {
		return nil, errors.New("workflow: items are required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{opts: opts}, nil
}

// State returns a snapshot of the open modal, edit mode and inline errors.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := State{
		Modal:     c.modal,
		Target:    c.target,
		EditMode:  c.editMode,
		ImportErr: c.importErr,
		AuthErr:   c.authErr,
	}
	if c.pending != nil {
		move := *c.pending
		state.Pending = &move
	}
	return state
}

// EditMode reports whether drag gestures are enabled.
func (c *Controller) EditMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editMode
}

// CanManage reports whether the session holds admin rights.
func (c *Controller) CanManage() bool {
	return c.opts.Session.IsAdmin()
}

// Open shows modal m for target (an item id or category name). Management
// modals open the login prompt instead when the session cannot manage; the
// returned modal is the one actually shown.
func (c *Controller) Open(m Modal, target string) Modal {
	if m.Managed() && !c.CanManage() {
		m, target = ModalLogin, ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modal, c.target = m, target
	c.importErr, c.authErr = nil, nil
	if m != ModalMoveConfirm {
		c.pending = nil
	}
	return m
}

// Close hides the current modal and drops any pending move.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closeLocked()
	c.mu.Unlock()
}

func (c *Controller) closeLocked() {
	c.modal, c.target = ModalNone, ""
	c.pending = nil
	c.importErr, c.authErr = nil, nil
}

// SetEditMode toggles drag-and-drop editing. Enabling it without management
// rights opens the login prompt and returns ErrUnauthorized.
func (c *Controller) SetEditMode(on bool) error {
	if on && !c.CanManage() {
		c.Open(ModalLogin, "")
		return dashboard.ErrUnauthorized
	}
	c.mu.Lock()
	c.editMode = on
	c.mu.Unlock()
	return nil
}

// SessionChanged reconciles the controller after login or logout. Losing
// admin rights closes the item dialogs and leaves edit mode.
func (c *Controller) SessionChanged() {
	if c.CanManage() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editMode = false
	if c.modal.Managed() {
		c.closeLocked()
	}
}

// RaisePendingMove stores move and opens the confirmation dialog.
func (c *Controller) RaisePendingMove(move dashboard.PendingMove) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = &move
	c.modal, c.target = ModalMoveConfirm, move.ItemID
}

// ConfirmMove applies the pending move. On failure the move stays pending so
// it can be retried or cancelled.
func (c *Controller) ConfirmMove(ctx context.Context) error {
	c.mu.Lock()
	move := c.pending
	c.mu.Unlock()
	if move == nil {
		return ErrNoPendingMove
	}
	if err := c.opts.Items.Update(ctx, move.ItemID, move.Updates); err != nil {
		return fmt.Errorf("workflow: confirm move: %w", err)
	}
	c.Close()
	return nil
}

// CancelMove drops the pending move without writing anything.
func (c *Controller) CancelMove() {
	c.Close()
}

// SaveItem creates an item when the add dialog is open, or updates the
// target when the edit dialog is open.
func (c *Controller) SaveItem(ctx context.Context, input dashboard.ItemInput) (string, error) {
	modal, target, err := c.active(ModalAddItem, ModalEditItem)
	if err != nil {
		return "", err
	}
	id := target
	if modal == ModalAddItem {
		id, err = c.opts.Items.Create(ctx, input)
	} else {
		err = c.opts.Items.Update(ctx, target, patchFromInput(input))
	}
	if err != nil {
		return "", fmt.Errorf("workflow: save item: %w", err)
	}
	c.Close()
	return id, nil
}

func (c *Controller) ConfirmDeleteItem(ctx context.Context) error {
	_, target, err := c.active(ModalDeleteItem)
	if err != nil {
		return err
	}
	if err := c.opts.Items.Remove(ctx, target); err != nil {
		return fmt.Errorf("workflow: delete item: %w", err)
	}
	c.Close()
	return nil
}

// ConfirmDeleteCategory deletes every member of the target category. The
// dialog closes even on partial failure; the result lists what failed.
func (c *Controller) ConfirmDeleteCategory(ctx context.Context) (client.BatchResult, error) {
	_, target, err := c.active(ModalDeleteCategory)
	if err != nil {
		return client.BatchResult{}, err
	}
	result, err := c.opts.Items.RemoveByCategory(ctx, target)
	c.Close()
	return result, err
}

// SaveCategoryEdits renames the target category and/or changes its icon by
// patching each member.
func (c *Controller) SaveCategoryEdits(ctx context.Context, name, icon string) error {
	_, target, err := c.active(ModalEditCategory)
	if err != nil {
		return err
	}
	plan, err := dashboard.PlanCategoryEdit(c.opts.Items.Items(), dashboard.CategoryEdit{From: target, Name: name, Icon: icon})
	if err != nil {
		return err
	}
	var errs []error
	for _, step := range plan {
		if err := c.opts.Items.Update(ctx, step.ID, step.Patch); err != nil {
			c.opts.Logger.Warn("category edit: update failed",
				zap.String("item_id", step.ID),
				zap.String("category", target),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("workflow: edit category %q: %w", target, errors.Join(errs...))
	}
	c.Close()
	return nil
}

// SubmitImport parses raw (an array of items or an object with an "items"
// array) and imports it. Parse and validation errors stay inline on the
// import dialog.
func (c *Controller) SubmitImport(ctx context.Context, raw []byte, replace bool) (dashboard.ImportResult, error) {
	if _, _, err := c.active(ModalImport); err != nil {
		return dashboard.ImportResult{}, err
	}
	if c.opts.Importer == nil {
		return dashboard.ImportResult{}, errors.New("workflow: importer is not configured")
	}
	items, err := ParseImport(raw)
	if err != nil {
		c.setImportErr(err)
		return dashboard.ImportResult{}, err
	}
	result, err := c.opts.Importer.Import(ctx, dashboard.ImportRequest{Items: items, ReplaceExisting: replace})
	if err != nil {
		c.setImportErr(err)
		return dashboard.ImportResult{}, err
	}
	if err := c.opts.Items.Refresh(ctx); err != nil {
		c.opts.Logger.Warn("import: refresh failed", zap.Error(err))
	}
	c.Close()
	return result, nil
}

// Login authenticates through the session. A failure stays on the login
// dialog.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	if _, err := c.opts.Session.Login(ctx, username, password); err != nil {
		c.mu.Lock()
		c.modal, c.authErr = ModalLogin, err
		c.mu.Unlock()
		return err
	}
	c.Close()
	return nil
}

// ConfirmLogout ends the session and leaves edit mode.
func (c *Controller) ConfirmLogout() error {
	if err := c.opts.Session.Logout(); err != nil {
		return fmt.Errorf("workflow: logout: %w", err)
	}
	c.Close()
	c.SessionChanged()
	return nil
}

// ParseImport accepts either a bare array of items or {"items": [...]}.
func ParseImport(raw []byte) ([]dashboard.Item, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, errImportShape
	}
	var items []dashboard.Item
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return nil, &dashboard.ValidationError{Message: "Invalid JSON: " + err.Error()}
		}
	} else {
		var doc struct {
			Items []dashboard.Item `json:"items"`
		}
		if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
			return nil, &dashboard.ValidationError{Message: "Invalid JSON: " + err.Error()}
		}
		items = doc.Items
	}
	if len(items) == 0 {
		return nil, errImportShape
	}
	return items, nil
}

func (c *Controller) setImportErr(err error) {
	c.mu.Lock()
	c.importErr = err
	c.mu.Unlock()
}

// active returns the open modal when it is one of allowed and the session
// can still manage.
func (c *Controller) active(allowed ...Modal) (Modal, string, error) {
	if !c.CanManage() {
		c.Open(ModalLogin, "")
		return ModalNone, "", dashboard.ErrUnauthorized
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range allowed {
		if c.modal == m {
			return c.modal, c.target, nil
		}
	}
	return ModalNone, "", ErrWrongModal
}

func patchFromInput(input dashboard.ItemInput) dashboard.ItemPatch {
	admin := input.IsAdminOnly
	patch := dashboard.ItemPatch{
		Name:         &input.Name,
		URL:          &input.URL,
		Description:  &input.Description,
		Icon:         &input.Icon,
		Category:     &input.Category,
		CategoryIcon: &input.CategoryIcon,
		Username:     &input.Username,
		SecretKey:    &input.SecretKey,
		IsAdminOnly:  &admin,
	}
	if input.Size != "" {
		patch.Size = &input.Size
	}
	if input.Environment != "" {
		patch.Environment = &input.Environment
	}
	return patch
}
