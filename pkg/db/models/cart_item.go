package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem references live catalog data; unit price and line total are
// derived on read, never stored. The unique index backs merge-by-product
// semantics under concurrent adds.
type CartItem struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID          uuid.UUID      `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:uq_cart_items_cart_product_offer"`
	ProductID       uuid.UUID      `gorm:"column:product_id;type:uuid;not null;uniqueIndex:uq_cart_items_cart_product_offer"`
	SupplierOfferID *uuid.UUID     `gorm:"column:supplier_offer_id;type:uuid;uniqueIndex:uq_cart_items_cart_product_offer"`
	Quantity        int            `gorm:"column:quantity;not null;default:1"`
	Product         *Product       `gorm:"foreignKey:ProductID"`
	SupplierOffer   *SupplierOffer `gorm:"foreignKey:SupplierOfferID"`
	AddedAt         time.Time      `gorm:"column:added_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
