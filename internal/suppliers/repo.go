package suppliers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailpoint/purchasing-backend/pkg/db/models"
	pkgerrors "github.com/retailpoint/purchasing-backend/pkg/errors"
)

// Repository exposes supplier offer lookups for pricing resolution.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	EligibleOffers(ctx context.Context, productID uuid.UUID) ([]models.SupplierOffer, error)
	FindOfferByID(ctx context.Context, id uuid.UUID) (*models.SupplierOffer, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a suppliers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// EligibleOffers returns offers that are available and whose supplier is
// currently accepting orders, oldest first so selection order is stable.
func (r *repository) EligibleOffers(ctx context.Context, productID uuid.UUID) ([]models.SupplierOffer, error) {
	var offers []models.SupplierOffer
	err := r.db.WithContext(ctx).
		Joins("JOIN suppliers ON suppliers.id = supplier_offers.supplier_id").
		Where("supplier_offers.product_id = ?", productID).
		Where("supplier_offers.is_available = ?", true).
		Where("suppliers.accepts_orders = ?", true).
		Preload("Supplier").
		Order("supplier_offers.created_at ASC").
		Order("supplier_offers.id ASC").
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *repository) FindOfferByID(ctx context.Context, id uuid.UUID) (*models.SupplierOffer, error) {
	var offer models.SupplierOffer
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Where("id = ?", id).
		First(&offer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier offer not found")
		}
		return nil, err
	}
	return &offer, nil
}
