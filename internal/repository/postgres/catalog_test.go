package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const burgerGroupsJSON = `[
	{"id":"grp-size","name":"Size","required":true,"min_selections":0,"display_order":1,
	 "modifiers":[{"id":"mod-large","name":"Large","price_adjustment_cents":150,"available":true}]}
]`

func TestCatalogStore_GetItem(t *testing.T) {
	mock := newMock(t)
	store := NewCatalogStore(mock)
	now := time.Now()

	mock.ExpectQuery("SELECT id, name, base_price_cents").
		WithArgs("item-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "base_price_cents", "active", "modifier_groups", "visibility_rules", "updated_at",
		}).AddRow("item-1", "Burger", int64(1000), true, []byte(burgerGroupsJSON), []byte(nil), now))

	item, err := store.GetItem(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), item.BasePriceCents)
	require.Len(t, item.ModifierGroups, 1)
	assert.Equal(t, "grp-size", item.ModifierGroups[0].ID)
	require.Len(t, item.ModifierGroups[0].Modifiers, 1)
	assert.Equal(t, int64(150), item.ModifierGroups[0].Modifiers[0].PriceAdjustmentCents)
}

func TestCatalogStore_GetItem_NotFound(t *testing.T) {
	mock := newMock(t)
	store := NewCatalogStore(mock)

	mock.ExpectQuery("SELECT id, name, base_price_cents").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := store.GetItem(context.Background(), "missing")
	assert.ErrorContains(t, err, "no longer on the menu")
}

func TestCatalogStore_GetItems_MissingIDsAbsent(t *testing.T) {
	mock := newMock(t)
	store := NewCatalogStore(mock)
	now := time.Now()

	mock.ExpectQuery("SELECT id, name, base_price_cents").
		WithArgs([]string{"item-1", "item-gone"}).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "base_price_cents", "active", "modifier_groups", "visibility_rules", "updated_at",
		}).AddRow("item-1", "Burger", int64(1000), true, []byte(nil), []byte(nil), now))

	items, err := store.GetItems(context.Background(), []string{"item-1", "item-gone"})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Contains(t, items, "item-1")
	assert.NotContains(t, items, "item-gone")
}
