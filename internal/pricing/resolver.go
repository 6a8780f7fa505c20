package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailpoint/purchasing-backend/pkg/db/models"
)

// OfferSource yields the eligible supplier offers for a product.
type OfferSource interface {
	EligibleOffers(ctx context.Context, productID uuid.UUID) ([]models.SupplierOffer, error)
}

// Quote is the authoritative pricing verdict for one line.
type Quote struct {
	UnitPrice decimal.Decimal
	Offer     *models.SupplierOffer
	Available bool
}

// OfferID returns the winning offer id, if any.
func (q Quote) OfferID() *uuid.UUID {
	if q.Offer == nil {
		return nil
	}
	id := q.Offer.ID
	return &id
}

// Resolver selects the effective unit price and availability for a product,
// choosing between the base catalog price and supplier offers.
type Resolver struct {
	offers   OfferSource
	selector Selector
}

// NewResolver builds a resolver over the given offer source and selection policy.
func NewResolver(offers OfferSource, selector Selector) (*Resolver, error) {
	if offers == nil {
		return nil, fmt.Errorf("offer source required")
	}
	if selector == nil {
		selector = FirstEligible
	}
	return &Resolver{offers: offers, selector: selector}, nil
}

// WithOffers returns a resolver reading offers from the provided source,
// typically a transaction-scoped repository.
func (r *Resolver) WithOffers(offers OfferSource) *Resolver {
	if offers == nil {
		return r
	}
	return &Resolver{offers: offers, selector: r.selector}
}

// Resolve prices one line. An explicitly attached offer is authoritative;
// otherwise an offer is auto-selected, falling back to the base product price.
// Prices are exact decimals; no rounding happens here.
func (r *Resolver) Resolve(ctx context.Context, product *models.Product, attached *models.SupplierOffer, quantity int) (Quote, error) {
	if product == nil {
		return Quote{}, fmt.Errorf("product required")
	}

	if attached != nil {
		return Quote{
			UnitPrice: attached.Price,
			Offer:     attached,
			Available: attached.IsAvailable && attached.Quantity >= quantity,
		}, nil
	}

	offer, err := r.AutoSelect(ctx, product.ID)
	if err != nil {
		return Quote{}, err
	}
	if offer != nil {
		return Quote{
			UnitPrice: offer.Price,
			Offer:     offer,
			Available: offer.Quantity >= quantity,
		}, nil
	}

	return Quote{
		UnitPrice: product.Price,
		Available: product.Quantity >= quantity,
	}, nil
}

// AutoSelect picks an offer for the product according to the configured
// policy, or nil when no offer is eligible.
func (r *Resolver) AutoSelect(ctx context.Context, productID uuid.UUID) (*models.SupplierOffer, error) {
	offers, err := r.offers.EligibleOffers(ctx, productID)
	if err != nil {
		return nil, err
	}
	return r.selector(offers), nil
}
