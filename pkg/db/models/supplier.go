package models

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is an external seller that may undercut the base catalog price.
type Supplier struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string    `gorm:"column:name;not null"`
	Email         string    `gorm:"column:email;not null"`
	Phone         string    `gorm:"column:phone"`
	Address       string    `gorm:"column:address"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true"`
	AcceptsOrders bool      `gorm:"column:accepts_orders;not null;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
