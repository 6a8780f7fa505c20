package pricing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailpoint/purchasing-backend/pkg/db/models"
)

type stubOfferSource struct {
	offers []models.SupplierOffer
	err    error
}

func (s *stubOfferSource) EligibleOffers(ctx context.Context, productID uuid.UUID) ([]models.SupplierOffer, error) {
	return s.offers, s.err
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func testProduct(price string, quantity int) *models.Product {
	return &models.Product{
		ID:       uuid.New(),
		Name:     "Widget",
		Price:    dec(price),
		Quantity: quantity,
		IsActive: true,
	}
}

func testOffer(price string, quantity int, available bool) models.SupplierOffer {
	return models.SupplierOffer{
		ID:          uuid.New(),
		SupplierID:  uuid.New(),
		Price:       dec(price),
		Quantity:    quantity,
		IsAvailable: available,
	}
}

func TestResolveAttachedOfferIsAuthoritative(t *testing.T) {
	resolver, err := NewResolver(&stubOfferSource{}, FirstEligible)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	attached := testOffer("8.50", 5, true)
	quote, err := resolver.Resolve(context.Background(), testProduct("10.00", 100), &attached, 3)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !quote.UnitPrice.Equal(dec("8.50")) {
		t.Fatalf("expected attached offer price 8.50, got %s", quote.UnitPrice)
	}
	if !quote.Available {
		t.Fatal("expected available with offer quantity 5 >= requested 3")
	}

	quote, err = resolver.Resolve(context.Background(), testProduct("10.00", 100), &attached, 6)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if quote.Available {
		t.Fatal("expected unavailable when requested quantity exceeds offer quantity")
	}
}

func TestResolveAutoSelectsFirstEligible(t *testing.T) {
	first := testOffer("9.00", 10, true)
	second := testOffer("7.00", 10, true)
	resolver, err := NewResolver(&stubOfferSource{offers: []models.SupplierOffer{first, second}}, FirstEligible)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	quote, err := resolver.Resolve(context.Background(), testProduct("10.00", 100), nil, 2)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if quote.Offer == nil || quote.Offer.ID != first.ID {
		t.Fatal("expected first eligible offer to win under first policy")
	}
	if !quote.UnitPrice.Equal(dec("9.00")) {
		t.Fatalf("expected 9.00, got %s", quote.UnitPrice)
	}
}

func TestResolveCheapestPolicy(t *testing.T) {
	first := testOffer("9.00", 10, true)
	second := testOffer("7.00", 10, true)
	resolver, err := NewResolver(&stubOfferSource{offers: []models.SupplierOffer{first, second}}, CheapestEligible)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	quote, err := resolver.Resolve(context.Background(), testProduct("10.00", 100), nil, 2)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if quote.Offer == nil || quote.Offer.ID != second.ID {
		t.Fatal("expected cheapest offer to win under cheapest policy")
	}
}

func TestResolveFallsBackToBasePrice(t *testing.T) {
	resolver, err := NewResolver(&stubOfferSource{}, FirstEligible)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	quote, err := resolver.Resolve(context.Background(), testProduct("10.00", 4), nil, 4)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if quote.Offer != nil {
		t.Fatal("expected no offer")
	}
	if !quote.UnitPrice.Equal(dec("10.00")) {
		t.Fatalf("expected base price 10.00, got %s", quote.UnitPrice)
	}
	if !quote.Available {
		t.Fatal("expected available at exact stock boundary")
	}

	quote, err = resolver.Resolve(context.Background(), testProduct("10.00", 3), nil, 4)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if quote.Available {
		t.Fatal("expected unavailable when stock below requested quantity")
	}
}

func TestSelectorForPolicy(t *testing.T) {
	offers := []models.SupplierOffer{
		testOffer("9.00", 1, true),
		testOffer("7.00", 1, true),
	}
	if got := SelectorForPolicy("cheapest")(offers); !got.Price.Equal(dec("7.00")) {
		t.Fatalf("cheapest policy picked %s", got.Price)
	}
	if got := SelectorForPolicy("first")(offers); !got.Price.Equal(dec("9.00")) {
		t.Fatalf("first policy picked %s", got.Price)
	}
	if got := SelectorForPolicy("unknown")(offers); !got.Price.Equal(dec("9.00")) {
		t.Fatalf("unknown policy must fall back to first, picked %s", got.Price)
	}
	if got := SelectorForPolicy("first")(nil); got != nil {
		t.Fatal("no candidates must yield nil")
	}
}
