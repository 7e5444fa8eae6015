package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

// CategoryOrderInput requests the server-side category ranks.
type CategoryOrderInput struct{}

type categoryOrderService interface {
	CategoryOrder(ctx context.Context) (dashboard.CategoryOrder, error)
}

// CategoryOrderQuery executes read-only category rank lookups.
type CategoryOrderQuery struct {
	service categoryOrderService
}

// NewCategoryOrderQuery builds the query.
func NewCategoryOrderQuery(service categoryOrderService) *CategoryOrderQuery {
	return &CategoryOrderQuery{service: service}
}

var _ gocommand.Querier[CategoryOrderInput, dashboard.CategoryOrder] = (*CategoryOrderQuery)(nil)

// Query returns the ranks.
func (q *CategoryOrderQuery) Query(ctx context.Context, _ CategoryOrderInput) (dashboard.CategoryOrder, error) {
	return q.service.CategoryOrder(ctx)
}

// CategoryCountsInput requests per-category item counts.
type CategoryCountsInput struct{}

type categoryCountsService interface {
	CategoryCounts(ctx context.Context) ([]dashboard.CategoryCount, error)
}

// CategoryCountsQuery tallies visible items per category.
type CategoryCountsQuery struct {
	service categoryCountsService
}

// NewCategoryCountsQuery builds the query.
func NewCategoryCountsQuery(service categoryCountsService) *CategoryCountsQuery {
	return &CategoryCountsQuery{service: service}
}

var _ gocommand.Querier[CategoryCountsInput, []dashboard.CategoryCount] = (*CategoryCountsQuery)(nil)

// Query returns the counts.
func (q *CategoryCountsQuery) Query(ctx context.Context, _ CategoryCountsInput) ([]dashboard.CategoryCount, error) {
	return q.service.CategoryCounts(ctx)
}
