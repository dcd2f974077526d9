package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/homegoods-vn/homegoods-backend/pkg/db/models"
	"github.com/homegoods-vn/homegoods-backend/pkg/enums"
)

func setupOrderTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  promotion_id TEXT,
  code TEXT NOT NULL UNIQUE,
  status INTEGER NOT NULL DEFAULT 1,
  total_price INTEGER NOT NULL,
  total_after_promotion INTEGER NOT NULL,
  paid_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  variant_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price INTEGER NOT NULL,
  line_total INTEGER NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, conn.Exec(ddl).Error)
	return conn
}

func seedOrder(t *testing.T, conn *gorm.DB, userID uuid.UUID, code string, status enums.OrderStatus, createdAt time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:                  uuid.New(),
		UserID:              userID,
		Code:                code,
		Status:              status,
		TotalPrice:          200_000,
		TotalAfterPromotion: 200_000,
		CreatedAt:           createdAt,
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func TestRepositoryCreateWithItems(t *testing.T) {
	conn := setupOrderTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	orderID := uuid.New()
	order := &models.Order{
		ID:                  orderID,
		UserID:              uuid.New(),
		Code:                "HG-20260501-AB12CD",
		Status:              enums.OrderStatusPending,
		TotalPrice:          200_000,
		TotalAfterPromotion: 180_000,
		Items: []models.OrderItem{
			{ID: uuid.New(), OrderID: orderID, VariantID: uuid.New(), Quantity: 2, UnitPrice: 100_000, LineTotal: 200_000},
		},
	}
	require.NoError(t, repo.Create(ctx, order))

	loaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "HG-20260501-AB12CD", loaded.Code)
	assert.EqualValues(t, 180_000, loaded.TotalAfterPromotion)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 2, loaded.Items[0].Quantity)
}

func TestRepositoryUpdateStatus(t *testing.T) {
	conn := setupOrderTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	order := seedOrder(t, conn, uuid.New(), "HG-1", enums.OrderStatusShipping, time.Now())

	paidAt := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateStatus(ctx, order.ID, enums.OrderStatusDelivered, &paidAt))

	loaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, loaded.Status)
	require.NotNil(t, loaded.PaidAt)

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, enums.OrderStatusDelivered, nil))
	loaded, err = repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.NotNil(t, loaded.PaidAt, "nil paidAt leaves the stamp untouched")
}

func TestRepositoryListByUser(t *testing.T) {
	conn := setupOrderTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	seedOrder(t, conn, userID, "HG-A", enums.OrderStatusPending, base)
	newest := seedOrder(t, conn, userID, "HG-B", enums.OrderStatusPending, base.Add(time.Hour))
	seedOrder(t, conn, uuid.New(), "HG-C", enums.OrderStatusPending, base)

	list, total, err := repo.ListByUser(ctx, userID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, newest.Code, list[0].Code)

	all, total, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)
}
