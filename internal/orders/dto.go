package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailpoint/purchasing-backend/pkg/db/models"
	"github.com/retailpoint/purchasing-backend/pkg/enums"
)

// ItemDetail is one frozen order line.
type ItemDetail struct {
	ID              uuid.UUID  `json:"id"`
	ProductID       uuid.UUID  `json:"product_id"`
	SupplierOfferID *uuid.UUID `json:"supplier_offer_id,omitempty"`
	ProductName     string     `json:"product_name"`
	ProductSKU      string     `json:"product_sku,omitempty"`
	Quantity        int        `json:"quantity"`
	UnitPrice       string     `json:"unit_price"`
	TotalPrice      string     `json:"total_price"`
}

// Detail is the full order representation returned to its owner.
type Detail struct {
	ID     uuid.UUID         `json:"id"`
	Status enums.OrderStatus `json:"status"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`

	Subtotal     string `json:"subtotal"`
	Tax          string `json:"tax"`
	ShippingCost string `json:"shipping_cost"`
	Total        string `json:"total"`

	Notes             string     `json:"notes,omitempty"`
	IsPaid            bool       `json:"is_paid"`
	PaymentDate       *time.Time `json:"payment_date,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	DeliveredAt       *time.Time `json:"delivered_at,omitempty"`

	Items     []ItemDetail `json:"items"`
	CreatedAt time.Time    `json:"created_at"`
}

// Summary is the list-view projection.
type Summary struct {
	ID        uuid.UUID         `json:"id"`
	Status    enums.OrderStatus `json:"status"`
	Total     string            `json:"total"`
	ItemCount int               `json:"item_count"`
	IsPaid    bool              `json:"is_paid"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewDetail maps a persisted order to its API representation.
func NewDetail(order *models.Order) *Detail {
	detail := &Detail{
		ID:                order.ID,
		Status:            order.Status,
		FirstName:         order.FirstName,
		LastName:          order.LastName,
		Email:             order.Email,
		Phone:             order.Phone,
		Address:           order.Address,
		City:              order.City,
		PostalCode:        order.PostalCode,
		Country:           order.Country,
		Subtotal:          order.Subtotal.StringFixed(2),
		Tax:               order.Tax.StringFixed(2),
		ShippingCost:      order.ShippingCost.StringFixed(2),
		Total:             order.Total.StringFixed(2),
		Notes:             order.Notes,
		IsPaid:            order.IsPaid,
		PaymentDate:       order.PaymentDate,
		EstimatedDelivery: order.EstimatedDelivery,
		DeliveredAt:       order.DeliveredAt,
		Items:             make([]ItemDetail, 0, len(order.Items)),
		CreatedAt:         order.CreatedAt,
	}
	for _, item := range order.Items {
		detail.Items = append(detail.Items, ItemDetail{
			ID:              item.ID,
			ProductID:       item.ProductID,
			SupplierOfferID: item.SupplierOfferID,
			ProductName:     item.ProductName,
			ProductSKU:      item.ProductSKU,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice.StringFixed(2),
			TotalPrice:      item.TotalPrice.StringFixed(2),
		})
	}
	return detail
}

// NewSummary maps a persisted order to its list projection.
func NewSummary(order models.Order) Summary {
	return Summary{
		ID:        order.ID,
		Status:    order.Status,
		Total:     order.Total.StringFixed(2),
		ItemCount: len(order.Items),
		IsPaid:    order.IsPaid,
		CreatedAt: order.CreatedAt,
	}
}
