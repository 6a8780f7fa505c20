package pricing

import "github.com/retailpoint/purchasing-backend/pkg/db/models"

// Selector picks the winning offer among eligible candidates. Candidates are
// already filtered to available offers from suppliers accepting orders.
type Selector func(offers []models.SupplierOffer) *models.SupplierOffer

// FirstEligible keeps the historical behavior: the oldest eligible offer wins.
func FirstEligible(offers []models.SupplierOffer) *models.SupplierOffer {
	if len(offers) == 0 {
		return nil
	}
	return &offers[0]
}

// CheapestEligible prefers the lowest offer price; ties go to the oldest offer.
func CheapestEligible(offers []models.SupplierOffer) *models.SupplierOffer {
	if len(offers) == 0 {
		return nil
	}
	best := &offers[0]
	for i := range offers[1:] {
		candidate := &offers[i+1]
		if candidate.Price.LessThan(best.Price) {
			best = candidate
		}
	}
	return best
}

// SelectorForPolicy maps a configured policy name to its selector.
// Unknown values fall back to the historical first-eligible behavior.
func SelectorForPolicy(policy string) Selector {
	if policy == "cheapest" {
		return CheapestEligible
	}
	return FirstEligible
}
