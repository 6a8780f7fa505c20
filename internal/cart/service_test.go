package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/retailpoint/purchasing-backend/internal/catalog"
	"github.com/retailpoint/purchasing-backend/internal/pricing"
	"github.com/retailpoint/purchasing-backend/internal/suppliers"
	pkgdb "github.com/retailpoint/purchasing-backend/pkg/db"
	"github.com/retailpoint/purchasing-backend/pkg/db/models"
	pkgerrors "github.com/retailpoint/purchasing-backend/pkg/errors"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  sku TEXT,
  description TEXT,
  price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	supplierTable := `
CREATE TABLE IF NOT EXISTS suppliers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT,
  address TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  accepts_orders INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`
	offers := `
CREATE TABLE IF NOT EXISTS supplier_offers (
  id TEXT PRIMARY KEY,
  supplier_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  is_available INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (supplier_id, product_id)
);`
	carts := `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  supplier_offer_id TEXT,
  quantity INTEGER NOT NULL DEFAULT 1,
  added_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, product_id, supplier_offer_id)
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(supplierTable).Error)
	require.NoError(t, db.Exec(offers).Error)
	require.NoError(t, db.Exec(carts).Error)
	require.NoError(t, db.Exec(cartItems).Error)
	return db
}

func newCartService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	supplierRepo := suppliers.NewRepository(db)
	resolver, err := pricing.NewResolver(supplierRepo, pricing.FirstEligible)
	require.NoError(t, err)

	svc, err := NewService(
		NewRepository(db),
		catalog.NewRepository(db),
		supplierRepo,
		resolver,
		pkgdb.NewWithConn(db),
		nil,
	)
	require.NoError(t, err)
	return svc
}

func createProduct(t *testing.T, db *gorm.DB, price string, quantity int, active bool) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:       uuid.New(),
		Name:     "Test Product",
		SKU:      "SKU-1",
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
		IsActive: active,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func createSupplierOffer(t *testing.T, db *gorm.DB, productID uuid.UUID, price string, quantity int) *models.SupplierOffer {
	t.Helper()

	supplier := &models.Supplier{
		ID:            uuid.New(),
		Name:          "Test Supplier",
		Email:         "supplier@example.com",
		IsActive:      true,
		AcceptsOrders: true,
	}
	require.NoError(t, db.Create(supplier).Error)

	offer := &models.SupplierOffer{
		ID:          uuid.New(),
		SupplierID:  supplier.ID,
		ProductID:   productID,
		Price:       decimal.RequireFromString(price),
		Quantity:    quantity,
		IsAvailable: true,
	}
	require.NoError(t, db.Create(offer).Error)
	return offer
}

func TestAddItemMergesSameProductLine(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	product := createProduct(t, db, "10.00", 100, true)

	_, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, "10.00", view.Items[0].UnitPrice)
	assert.Equal(t, "30.00", view.Items[0].LineTotal)
	assert.Equal(t, "30.00", view.Subtotal)
}

func TestAddItemMergesWhenOfferAutoSelected(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	product := createProduct(t, db, "10.00", 100, true)
	offer := createSupplierOffer(t, db, product.ID, "8.00", 50)

	_, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	// A read between adds must not break the merge.
	_, err = svc.View(ctx, userID)
	require.NoError(t, err)

	view, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 4, view.Items[0].Quantity)
	require.NotNil(t, view.Items[0].SupplierOfferID)
	assert.Equal(t, offer.ID, *view.Items[0].SupplierOfferID)
	assert.Equal(t, "8.00", view.Items[0].UnitPrice)
	assert.Equal(t, "32.00", view.Subtotal)

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", view.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAddItemMergesOnExplicitOffer(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	product := createProduct(t, db, "10.00", 100, true)
	offer := createSupplierOffer(t, db, product.ID, "8.50", 50)

	_, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, SupplierOfferID: &offer.ID, Quantity: 1})
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 4, view.Items[0].Quantity)
	assert.Equal(t, "34.00", view.Subtotal)
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)

	product := createProduct(t, db, "10.00", 100, false)

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: product.ID, Quantity: 1})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestAddItemRejectsMismatchedOffer(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)

	product := createProduct(t, db, "10.00", 100, true)
	other := createProduct(t, db, "5.00", 100, true)
	offer := createSupplierOffer(t, db, other.ID, "4.00", 50)

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{
		ProductID:       product.ID,
		SupplierOfferID: &offer.ID,
		Quantity:        1,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestViewAutoSelectsAndPersistsOffer(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	product := createProduct(t, db, "10.00", 100, true)
	offer := createSupplierOffer(t, db, product.ID, "8.00", 50)

	_, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	view, err := svc.View(ctx, userID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	require.NotNil(t, view.Items[0].SupplierOfferID)
	assert.Equal(t, offer.ID, *view.Items[0].SupplierOfferID)
	assert.Equal(t, "8.00", view.Items[0].UnitPrice)
	assert.Equal(t, "16.00", view.Subtotal)

	var stored models.CartItem
	require.NoError(t, db.Where("id = ?", view.Items[0].ID).First(&stored).Error)
	require.NotNil(t, stored.SupplierOfferID)
	assert.Equal(t, offer.ID, *stored.SupplierOfferID)
}

func TestUpdateItemQuantityZeroRemovesLine(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	product := createProduct(t, db, "10.00", 100, true)
	view, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)

	view, err = svc.UpdateItemQuantity(ctx, userID, view.Items[0].ID, 0)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, "0.00", view.Subtotal)
}

func TestItemOperationsAreOwnerScoped(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	owner := uuid.New()
	intruder := uuid.New()

	product := createProduct(t, db, "10.00", 100, true)
	view, err := svc.AddItem(ctx, owner, AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = svc.RemoveItem(ctx, intruder, view.Items[0].ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = svc.UpdateItemQuantity(ctx, intruder, view.Items[0].ID, 5)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestClearIsIdempotent(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	product := createProduct(t, db, "10.00", 100, true)
	_, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, userID))
	require.NoError(t, svc.Clear(ctx, userID))
	require.NoError(t, svc.Clear(ctx, uuid.New()))

	view, err := svc.View(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}
