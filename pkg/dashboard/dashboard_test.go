package dashboard

import (
	"context"
	"testing"

	core "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), Setup{Credentials: AdminCredentials{Username: "admin"}})
	require.Error(t, err)
}

func TestNewSeedsEmptyStore(t *testing.T) {
	ctx := context.Background()
	service, err := New(ctx, Setup{
		Credentials: AdminCredentials{Username: "admin", Password: "secret", Token: "tok"},
		Seed: &core.SeedDocument{
			Items: []Item{
				{Name: "Grafana", URL: "https://grafana", Category: "Ops"},
				{Name: "Docs", URL: "https://docs", Category: "Reading"},
			},
			CategoryOrder: core.CategoryOrder{"Reading": 0, "Ops": 1},
		},
	})
	require.NoError(t, err)

	items, err := service.ListItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	order, err := service.CategoryOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, order["Reading"])

	login, err := service.Login(ctx, "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", login.Token)
}
