package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailpoint/purchasing-backend/internal/pricing"
	"github.com/retailpoint/purchasing-backend/pkg/db/models"
)

// ItemView is one priced cart line. Prices are derived from live catalog and
// offer data at read time and serialized as fixed two-decimal strings.
type ItemView struct {
	ID              uuid.UUID  `json:"id"`
	ProductID       uuid.UUID  `json:"product_id"`
	ProductName     string     `json:"product_name"`
	ProductSKU      string     `json:"product_sku,omitempty"`
	SupplierOfferID *uuid.UUID `json:"supplier_offer_id,omitempty"`
	SupplierName    string     `json:"supplier_name,omitempty"`
	Quantity        int        `json:"quantity"`
	UnitPrice       string     `json:"unit_price"`
	LineTotal       string     `json:"line_total"`
	Available       bool       `json:"available"`
}

// View is the full priced cart.
type View struct {
	ID        uuid.UUID  `json:"id"`
	Items     []ItemView `json:"items"`
	Subtotal  string     `json:"subtotal"`
	ItemCount int        `json:"item_count"`
}

// AddItemInput carries a validated add-to-cart request.
type AddItemInput struct {
	ProductID       uuid.UUID
	SupplierOfferID *uuid.UUID
	Quantity        int
}

func newItemView(item models.CartItem, quote pricing.Quote) ItemView {
	view := ItemView{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		UnitPrice: quote.UnitPrice.StringFixed(2),
		LineTotal: quote.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).StringFixed(2),
		Available: quote.Available,
	}
	if item.Product != nil {
		view.ProductName = item.Product.Name
		view.ProductSKU = item.Product.SKU
	}
	view.SupplierOfferID = quote.OfferID()
	if quote.Offer != nil && quote.Offer.Supplier != nil {
		view.SupplierName = quote.Offer.Supplier.Name
	}
	return view
}
