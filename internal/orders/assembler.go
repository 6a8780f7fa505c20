package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailpoint/purchasing-backend/pkg/config"
	"github.com/retailpoint/purchasing-backend/pkg/db/models"
	pkgerrors "github.com/retailpoint/purchasing-backend/pkg/errors"
)

// Policy is the pricing policy applied when an order is assembled.
type Policy struct {
	TaxRate               decimal.Decimal
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// PolicyFromConfig lifts the configured pricing policy.
func PolicyFromConfig(cfg config.PricingConfig) Policy {
	return Policy{
		TaxRate:               cfg.TaxRate,
		ShippingFee:           cfg.ShippingFee,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
	}
}

// Line is one resolved cart line entering assembly. UnitPrice is the
// authoritative resolved price; product name and SKU are snapshotted here.
type Line struct {
	ProductID       uuid.UUID
	SupplierOfferID *uuid.UUID
	ProductName     string
	ProductSKU      string
	UnitPrice       decimal.Decimal
	Quantity        int
}

// Draft holds the frozen monetary breakdown and item snapshots for a new
// order. Nothing here re-reads live catalog data.
type Draft struct {
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	ShippingCost decimal.Decimal
	Total        decimal.Decimal
	Items        []models.OrderItem
}

// Assemble turns resolved lines into an order draft. Tax is rounded to two
// decimals half-up; shipping is waived once the subtotal reaches the
// free-shipping threshold.
func Assemble(lines []Line, policy Policy) (*Draft, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodePrecondition, "cart is empty")
	}

	draft := &Draft{
		Subtotal: decimal.Zero,
		Items:    make([]models.OrderItem, 0, len(lines)),
	}
	for _, line := range lines {
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		draft.Subtotal = draft.Subtotal.Add(lineTotal)
		draft.Items = append(draft.Items, models.OrderItem{
			ProductID:       line.ProductID,
			SupplierOfferID: line.SupplierOfferID,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			TotalPrice:      lineTotal,
			ProductName:     line.ProductName,
			ProductSKU:      line.ProductSKU,
		})
	}

	draft.Tax = draft.Subtotal.Mul(policy.TaxRate).Round(2)
	if draft.Subtotal.LessThan(policy.FreeShippingThreshold) {
		draft.ShippingCost = policy.ShippingFee
	} else {
		draft.ShippingCost = decimal.Zero
	}
	draft.Total = draft.Subtotal.Add(draft.Tax).Add(draft.ShippingCost)
	return draft, nil
}
