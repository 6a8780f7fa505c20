package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierOffer proposes an alternate price and stock for a product from a
// specific supplier. Only one offer may exist per (supplier, product).
type SupplierOffer struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID  uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null;uniqueIndex:uq_supplier_offers_supplier_product"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:uq_supplier_offers_supplier_product"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null;default:0"`
	IsAvailable bool            `gorm:"column:is_available;not null;default:true"`
	Supplier    *Supplier       `gorm:"foreignKey:SupplierID"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
