package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/domain"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/database"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestPromoStore_GetByCode(t *testing.T) {
	mock := newMock(t)
	store := NewPromoStore(mock)
	now := time.Now()
	maxUses := 100

	mock.ExpectQuery("SELECT id, code, discount_type").
		WithArgs("SAVE10").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "code", "discount_type", "value", "max_uses", "current_uses",
			"per_user_limit", "min_order_cents", "active", "expires_at", "created_at", "updated_at",
		}).AddRow("promo-1", "SAVE10", domain.DiscountTypePercent, int64(10), &maxUses, 3,
			(*int)(nil), int64(0), true, (*time.Time)(nil), now, now))

	p, err := store.GetByCode(context.Background(), "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, "promo-1", p.ID)
	assert.Equal(t, int64(10), p.Value)
	require.NotNil(t, p.MaxUses)
	assert.Equal(t, 100, *p.MaxUses)
	assert.Nil(t, p.PerUserLimit)
}

func TestPromoStore_GetByCode_NotFound(t *testing.T) {
	mock := newMock(t)
	store := NewPromoStore(mock)

	mock.ExpectQuery("SELECT id, code, discount_type").
		WithArgs("NOPE").
		WillReturnError(pgx.ErrNoRows)

	_, err := store.GetByCode(context.Background(), "NOPE")
	assert.ErrorContains(t, err, "PROMO_NOT_FOUND")
}

func TestPromoStore_ReserveUse_Succeeds(t *testing.T) {
	mock := newMock(t)
	store := NewPromoStore(mock)

	mock.ExpectExec("UPDATE promo_codes").
		WithArgs("promo-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, store.ReserveUse(context.Background(), "promo-1"))
}

func TestPromoStore_ReserveUse_ExhaustedWhenGuardRejects(t *testing.T) {
	mock := newMock(t)
	store := NewPromoStore(mock)

	// The losing side of a concurrent race: the conditional UPDATE matched
	// zero rows because another attempt took the last slot.
	mock.ExpectExec("UPDATE promo_codes").
		WithArgs("promo-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.ReserveUse(context.Background(), "promo-1")
	assert.ErrorContains(t, err, "PROMO_EXHAUSTED")
}

func TestPromoStore_ReleaseUse(t *testing.T) {
	mock := newMock(t)
	store := NewPromoStore(mock)

	mock.ExpectExec("UPDATE promo_codes").
		WithArgs("promo-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, store.ReleaseUse(context.Background(), "promo-1"))
}

func TestPromoStore_CountUserRedemptions(t *testing.T) {
	mock := newMock(t)
	store := NewPromoStore(mock)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("promo-1", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	count, err := store.CountUserRedemptions(context.Background(), "promo-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPromoStore_RecordRedemption(t *testing.T) {
	mock := newMock(t)
	store := NewPromoStore(mock)

	mock.ExpectExec("INSERT INTO promo_redemptions").
		WithArgs("promo-1", "user-1", "sess-1", int64(200)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, store.RecordRedemption(context.Background(), "promo-1", "user-1", "sess-1", 200))
}
