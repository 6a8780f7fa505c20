package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/retailpoint/purchasing-backend/internal/catalog"
	"github.com/retailpoint/purchasing-backend/internal/pricing"
	"github.com/retailpoint/purchasing-backend/internal/suppliers"
	pkgdb "github.com/retailpoint/purchasing-backend/pkg/db"
	"github.com/retailpoint/purchasing-backend/pkg/db/models"
	pkgerrors "github.com/retailpoint/purchasing-backend/pkg/errors"
	"github.com/retailpoint/purchasing-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the cart operations exposed to the API layer.
type Service interface {
	View(ctx context.Context, userID uuid.UUID) (*View, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*View, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo      Repository
	catalog   catalog.Repository
	suppliers suppliers.Repository
	resolver  *pricing.Resolver
	tx        txRunner
	logg      *logger.Logger
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, catalogRepo catalog.Repository, supplierRepo suppliers.Repository, resolver *pricing.Resolver, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if supplierRepo == nil {
		return nil, fmt.Errorf("suppliers repository required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("pricing resolver required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:      repo,
		catalog:   catalogRepo,
		suppliers: supplierRepo,
		resolver:  resolver,
		tx:        tx,
		logg:      logg,
	}, nil
}

// View prices the cart against live catalog and offer data. Auto-selected
// offers are persisted back onto their lines so checkout sees the same choice.
func (s *service) View(ctx context.Context, userID uuid.UUID) (*View, error) {
	var view *View
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		built, err := s.buildView(ctx, tx, userID)
		if err != nil {
			return err
		}
		view = built
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) buildView(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*View, error) {
	repo := s.repo.WithTx(tx)
	resolver := s.resolver.WithOffers(s.suppliers.WithTx(tx))

	cart, err := repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &View{ID: cart.ID, Items: make([]ItemView, 0, len(cart.Items))}
	subtotal := decimal.Zero
	for i := range cart.Items {
		item := cart.Items[i]
		if item.Product == nil {
			continue
		}

		quote, err := resolver.Resolve(ctx, item.Product, item.SupplierOffer, item.Quantity)
		if err != nil {
			return nil, err
		}

		if item.SupplierOfferID == nil && quote.Offer != nil {
			if err := repo.UpdateItemOffer(ctx, item.ID, quote.OfferID()); err != nil {
				return nil, err
			}
		}

		line := newItemView(item, quote)
		view.Items = append(view.Items, line)
		subtotal = subtotal.Add(quote.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	view.ItemCount = len(view.Items)
	view.Subtotal = subtotal.StringFixed(2)
	return view, nil
}

// AddItem merges into an existing line or creates a new one. The effective
// offer (explicit or auto-selected) is resolved before the lookup so repeated
// adds of the same product land on one row. A concurrent create losing the
// unique-index race falls back to incrementing the winner's row.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var view *View
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)
		supplierRepo := s.suppliers.WithTx(tx)
		resolver := s.resolver.WithOffers(supplierRepo)

		product, err := catalogRepo.FindActiveByID(ctx, input.ProductID)
		if err != nil {
			return err
		}

		var offerID *uuid.UUID
		if input.SupplierOfferID != nil {
			offer, err := supplierRepo.FindOfferByID(ctx, *input.SupplierOfferID)
			if err != nil {
				return err
			}
			if offer.ProductID != product.ID {
				return pkgerrors.New(pkgerrors.CodeValidation, "supplier offer does not match product")
			}
			offerID = &offer.ID
		} else {
			offer, err := resolver.AutoSelect(ctx, product.ID)
			if err != nil {
				return err
			}
			if offer != nil {
				id := offer.ID
				offerID = &id
			}
		}

		cart, err := repo.GetOrCreateByUser(ctx, userID)
		if err != nil {
			return err
		}

		existing, err := repo.FindItemByProduct(ctx, cart.ID, product.ID, offerID)
		if err == nil {
			return repo.IncrementItemQuantity(ctx, existing.ID, input.Quantity)
		}
		if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			return err
		}

		item := &models.CartItem{
			CartID:          cart.ID,
			ProductID:       product.ID,
			SupplierOfferID: offerID,
			Quantity:        input.Quantity,
		}
		if err := repo.CreateItem(ctx, item); err != nil {
			if pkgdb.IsUniqueViolation(err, "") {
				winner, findErr := repo.FindItemByProduct(ctx, cart.ID, product.ID, offerID)
				if findErr != nil {
					return findErr
				}
				return repo.IncrementItemQuantity(ctx, winner.ID, input.Quantity)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		view, err = s.buildView(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// UpdateItemQuantity sets the line quantity; zero or negative removes the line.
func (s *service) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*View, error) {
	var view *View
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindByUser(ctx, userID)
		if err != nil {
			return err
		}
		item, err := repo.FindItemByID(ctx, cart.ID, itemID)
		if err != nil {
			return err
		}

		if quantity <= 0 {
			if err := repo.DeleteItem(ctx, item.ID); err != nil {
				return err
			}
		} else if err := repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
			return err
		}

		view, err = s.buildView(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// RemoveItem deletes one line from the caller's cart.
func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*View, error) {
	var view *View
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindByUser(ctx, userID)
		if err != nil {
			return err
		}
		item, err := repo.FindItemByID(ctx, cart.ID, itemID)
		if err != nil {
			return err
		}
		if err := repo.DeleteItem(ctx, item.ID); err != nil {
			return err
		}

		view, err = s.buildView(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Clear removes every line. Clearing a missing or already-empty cart succeeds.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindByUser(ctx, userID)
		if err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
				return nil
			}
			return err
		}
		return repo.DeleteItemsByCart(ctx, cart.ID)
	})
}
