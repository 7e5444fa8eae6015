package commands

import (
	"context"
	"errors"
	"strings"
	"testing"

	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

func adminCtx() context.Context {
	return dashboard.ContextWithViewer(context.Background(), dashboard.ViewerContext{Username: "admin", Admin: true})
}

func TestSeedItemsCommand(t *testing.T) {
	service := dashboard.NewService(dashboard.Options{Items: dashboard.NewInMemoryItemStore()})
	telemetry := &stubTelemetry{}
	doc, err := dashboard.DecodeSeed(strings.NewReader("items:\n  - name: A\n    url: https://a\n"))
	if err != nil {
		t.Fatalf("DecodeSeed returned error: %v", err)
	}
	cmd := NewSeedItemsCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), SeedItemsInput{Document: doc}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	items, err := service.ListItems(context.Background())
	if err != nil {
		t.Fatalf("ListItems returned error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 seeded item, got %d", len(items))
	}
	if telemetry.calls == 0 {
		t.Fatalf("expected telemetry to record events")
	}
}

func TestCreateItemCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewCreateItemCommand(service, nil)
	var created dashboard.Item
	if err := cmd.Execute(context.Background(), CreateItemInput{
		Item:    dashboard.ItemInput{Name: "A", URL: "https://a"},
		Created: &created,
	}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.createCalls != 1 {
		t.Fatalf("expected create call")
	}
	if created.ID != "new-id" {
		t.Fatalf("expected created item to be returned, got %#v", created)
	}
}

func TestCreateItemCommandAgainstService(t *testing.T) {
	service := dashboard.NewService(dashboard.Options{Items: dashboard.NewInMemoryItemStore()})
	cmd := NewCreateItemCommand(service, nil)
	err := cmd.Execute(context.Background(), CreateItemInput{Item: dashboard.ItemInput{Name: "A", URL: "u"}})
	if !errors.Is(err, dashboard.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for guest, got %v", err)
	}
	if err := cmd.Execute(adminCtx(), CreateItemInput{Item: dashboard.ItemInput{Name: "A", URL: "u"}}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
}

func TestUpdateItemCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewUpdateItemCommand(service, nil)
	name := "renamed"
	if err := cmd.Execute(context.Background(), UpdateItemInput{ID: "1", Patch: dashboard.ItemPatch{Name: &name}}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.updateCalls != 1 {
		t.Fatalf("expected update call")
	}
	if err := cmd.Execute(context.Background(), UpdateItemInput{}); err == nil {
		t.Fatalf("expected error for missing id")
	}
}

func TestDeleteItemCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewDeleteItemCommand(service, nil)
	if err := cmd.Execute(context.Background(), DeleteItemInput{ID: "item-1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.deleteCalls != 1 {
		t.Fatalf("expected delete call")
	}
}

func TestImportItemsCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewImportItemsCommand(service, nil)
	var result dashboard.ImportResult
	req := dashboard.ImportRequest{Items: []dashboard.Item{{Name: "A", URL: "u"}}, ReplaceExisting: true}
	if err := cmd.Execute(context.Background(), ImportItemsInput{Request: req, Result: &result}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if result.Imported != 1 {
		t.Fatalf("expected 1 imported, got %d", result.Imported)
	}
}

func TestCategoryOrderCommands(t *testing.T) {
	service := &stubService{}
	save := NewSaveCategoryOrderCommand(service, nil)
	if err := save.Execute(context.Background(), SaveCategoryOrderInput{Order: dashboard.CategoryOrder{"Tools": 1}}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if err := save.Execute(context.Background(), SaveCategoryOrderInput{}); err != nil {
		t.Fatalf("empty order should be a no-op: %v", err)
	}
	if service.saveOrderCalls != 1 {
		t.Fatalf("expected one save call, got %d", service.saveOrderCalls)
	}
	del := NewDeleteCategoryOrderCommand(service, nil)
	if err := del.Execute(context.Background(), DeleteCategoryOrderInput{Category: "Tools"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.deleteOrderCalls != 1 {
		t.Fatalf("expected delete order call")
	}
}

func TestRefreshItemsCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewRefreshItemsCommand(service, nil)
	if err := cmd.Execute(context.Background(), RefreshItemsInput{}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.refreshCalls != 1 || service.lastEvent.Reason != "refresh" {
		t.Fatalf("expected refresh call with default reason, got %#v", service.lastEvent)
	}
}

func TestCommandsWithoutService(t *testing.T) {
	if err := NewDeleteItemCommand(nil, nil).Execute(context.Background(), DeleteItemInput{ID: "x"}); err == nil {
		t.Fatalf("expected error without service")
	}
}

type stubService struct {
	createCalls      int
	updateCalls      int
	deleteCalls      int
	saveOrderCalls   int
	deleteOrderCalls int
	refreshCalls     int
	lastEvent        dashboard.ItemEvent
}

func (s *stubService) CreateItem(_ context.Context, input dashboard.ItemInput) (dashboard.Item, error) {
	s.createCalls++
	return dashboard.Item{ID: "new-id", Name: input.Name, URL: input.URL}, nil
}

func (s *stubService) UpdateItem(_ context.Context, id string, patch dashboard.ItemPatch) (dashboard.Item, error) {
	s.updateCalls++
	return patch.Apply(dashboard.Item{ID: id}), nil
}

func (s *stubService) DeleteItem(context.Context, string) error {
	s.deleteCalls++
	return nil
}

func (s *stubService) Import(_ context.Context, req dashboard.ImportRequest) (dashboard.ImportResult, error) {
	return dashboard.ImportResult{Imported: len(req.Items)}, nil
}

func (s *stubService) SaveCategoryOrder(context.Context, dashboard.CategoryOrder) error {
	s.saveOrderCalls++
	return nil
}

func (s *stubService) DeleteCategoryOrder(context.Context, string) error {
	s.deleteOrderCalls++
	return nil
}

func (s *stubService) NotifyItemsChanged(_ context.Context, event dashboard.ItemEvent) error {
	s.refreshCalls++
	s.lastEvent = event
	return nil
}

type stubTelemetry struct {
	calls int
}

func (s *stubTelemetry) Record(context.Context, string, map[string]any) {
	s.calls++
}
