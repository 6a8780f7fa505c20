package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailpoint/purchasing-backend/pkg/enums"
)

// Order is the immutable result of a checkout. Monetary fields are frozen at
// creation; status transitions afterward never touch them.
type Order struct {
	ID     uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Status enums.OrderStatus `gorm:"column:status;not null;default:'NEW'"`

	FirstName string `gorm:"column:first_name;not null"`
	LastName  string `gorm:"column:last_name;not null"`
	Email     string `gorm:"column:email;not null"`
	Phone     string `gorm:"column:phone;not null"`

	Address    string `gorm:"column:address;not null"`
	City       string `gorm:"column:city;not null"`
	PostalCode string `gorm:"column:postal_code;not null"`
	Country    string `gorm:"column:country;not null"`

	Subtotal     decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2);not null"`
	Tax          decimal.Decimal `gorm:"column:tax;type:numeric(10,2);not null"`
	ShippingCost decimal.Decimal `gorm:"column:shipping_cost;type:numeric(10,2);not null"`
	Total        decimal.Decimal `gorm:"column:total;type:numeric(10,2);not null"`

	Notes             string     `gorm:"column:notes"`
	IsPaid            bool       `gorm:"column:is_paid;not null;default:false"`
	PaymentDate       *time.Time `gorm:"column:payment_date"`
	EstimatedDelivery *time.Time `gorm:"column:estimated_delivery"`
	DeliveredAt       *time.Time `gorm:"column:delivered_at"`

	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
