package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgdb "github.com/retailpoint/purchasing-backend/pkg/db"
	"github.com/retailpoint/purchasing-backend/pkg/db/models"
	"github.com/retailpoint/purchasing-backend/pkg/enums"
	pkgerrors "github.com/retailpoint/purchasing-backend/pkg/errors"
	"github.com/retailpoint/purchasing-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'NEW',
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT NOT NULL,
  address TEXT NOT NULL,
  city TEXT NOT NULL,
  postal_code TEXT NOT NULL,
  country TEXT NOT NULL,
  subtotal NUMERIC NOT NULL,
  tax NUMERIC NOT NULL,
  shipping_cost NUMERIC NOT NULL,
  total NUMERIC NOT NULL,
  notes TEXT,
  is_paid INTEGER NOT NULL DEFAULT 0,
  payment_date DATETIME,
  estimated_delivery DATETIME,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  supplier_offer_id TEXT,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  total_price NUMERIC NOT NULL,
  product_name TEXT NOT NULL,
  product_sku TEXT
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func newOrdersService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db), pkgdb.NewWithConn(db))
	require.NoError(t, err)
	return svc
}

func createTestOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, status enums.OrderStatus) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:           uuid.New(),
		UserID:       userID,
		Status:       status,
		FirstName:    "Jamie",
		LastName:     "Doe",
		Email:        "jamie@example.com",
		Phone:        "555-0100",
		Address:      "1 Main St",
		City:         "Springfield",
		PostalCode:   "12345",
		Country:      "US",
		Subtotal:     decimal.RequireFromString("50.00"),
		Tax:          decimal.RequireFromString("5.00"),
		ShippingCost: decimal.RequireFromString("10.00"),
		Total:        decimal.RequireFromString("65.00"),
		Items: []models.OrderItem{
			{
				ID:          uuid.New(),
				ProductID:   uuid.New(),
				Quantity:    2,
				UnitPrice:   decimal.RequireFromString("25.00"),
				TotalPrice:  decimal.RequireFromString("50.00"),
				ProductName: "Test Product",
				ProductSKU:  "SKU-1",
			},
		},
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestListForUserIsOwnerScoped(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)
	ctx := context.Background()
	owner := uuid.New()

	createTestOrder(t, db, owner, enums.OrderStatusNew)
	createTestOrder(t, db, uuid.New(), enums.OrderStatusNew)

	summaries, nextCursor, err := svc.ListForUser(ctx, owner, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Empty(t, nextCursor)
	assert.Equal(t, "65.00", summaries[0].Total)
	assert.Equal(t, 1, summaries[0].ItemCount)
}

func TestGetForUserRejectsCrossUserAccess(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)
	ctx := context.Background()

	order := createTestOrder(t, db, uuid.New(), enums.OrderStatusNew)

	_, err := svc.GetForUser(ctx, uuid.New(), order.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestSetStatusFollowsTransitionTable(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)
	ctx := context.Background()

	order := createTestOrder(t, db, uuid.New(), enums.OrderStatusNew)

	detail, err := svc.SetStatus(ctx, order.ID, enums.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, detail.Status)

	_, err = svc.SetStatus(ctx, order.ID, enums.OrderStatusDelivered)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestSetStatusDeliveredStampsDeliveredAt(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)
	ctx := context.Background()

	order := createTestOrder(t, db, uuid.New(), enums.OrderStatusShipped)

	detail, err := svc.SetStatus(ctx, order.ID, enums.OrderStatusDelivered)
	require.NoError(t, err)
	require.NotNil(t, detail.DeliveredAt)

	var stored models.Order
	require.NoError(t, db.Where("id = ?", order.ID).First(&stored).Error)
	assert.Equal(t, enums.OrderStatusDelivered, stored.Status)
	require.NotNil(t, stored.DeliveredAt)
}

func TestSetStatusNeverTouchesMoney(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)
	ctx := context.Background()

	order := createTestOrder(t, db, uuid.New(), enums.OrderStatusNew)

	_, err := svc.SetStatus(ctx, order.ID, enums.OrderStatusCancelled)
	require.NoError(t, err)

	var stored models.Order
	require.NoError(t, db.Where("id = ?", order.ID).First(&stored).Error)
	assert.True(t, stored.Subtotal.Equal(order.Subtotal))
	assert.True(t, stored.Total.Equal(order.Total))
}

func TestMarkPaidOnce(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)
	ctx := context.Background()

	order := createTestOrder(t, db, uuid.New(), enums.OrderStatusConfirmed)

	detail, err := svc.MarkPaid(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, detail.IsPaid)
	require.NotNil(t, detail.PaymentDate)

	_, err = svc.MarkPaid(ctx, order.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}
