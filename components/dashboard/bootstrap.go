package dashboard

import (
	"context"
	"errors"
	"fmt"
)

// SeedItems imports doc when the store holds no items yet. It reports whether
// anything was written.
func SeedItems(ctx context.Context, service *Service, doc *SeedDocument) (bool, error) {
	if service == nil {
		return false, errors.New("dashboard: service is required to seed items")
	}
	if doc == nil || len(doc.Items) == 0 {
		return false, nil
	}
	ctx = ContextWithViewer(ctx, ViewerContext{Username: "seed", Admin: true})
	existing, err := service.ListItems(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	if _, err := service.Import(ctx, ImportRequest{Items: doc.Items}); err != nil {
		return false, fmt.Errorf("dashboard: seed items: %w", err)
	}
	var seedErr error
	if len(doc.CategoryOrder) > 0 {
		if err := service.SaveCategoryOrder(ctx, doc.CategoryOrder); err != nil {
			seedErr = errors.Join(seedErr, err)
		}
	}
	return true, seedErr
}
