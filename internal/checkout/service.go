package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailpoint/purchasing-backend/internal/cart"
	"github.com/retailpoint/purchasing-backend/internal/orders"
	"github.com/retailpoint/purchasing-backend/internal/pricing"
	"github.com/retailpoint/purchasing-backend/internal/suppliers"
	"github.com/retailpoint/purchasing-backend/pkg/db/models"
	"github.com/retailpoint/purchasing-backend/pkg/enums"
	pkgerrors "github.com/retailpoint/purchasing-backend/pkg/errors"
	"github.com/retailpoint/purchasing-backend/pkg/logger"
	"github.com/retailpoint/purchasing-backend/pkg/metrics"
	"github.com/retailpoint/purchasing-backend/pkg/outbox"
	"github.com/retailpoint/purchasing-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Input carries the contact and shipping details for a new order.
type Input struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode string
	Country    string
	Notes      string
}

// Service converts a cart into an order.
type Service interface {
	Execute(ctx context.Context, userID uuid.UUID, input Input) (*orders.Detail, error)
}

type service struct {
	cartRepo  cart.Repository
	orderRepo orders.Repository
	suppliers suppliers.Repository
	resolver  *pricing.Resolver
	policy    orders.Policy
	tx        txRunner
	outbox    outboxPublisher
	metrics   *metrics.CheckoutMetrics
	logg      *logger.Logger
}

// NewService builds a checkout service with the required dependencies.
func NewService(
	cartRepo cart.Repository,
	orderRepo orders.Repository,
	supplierRepo suppliers.Repository,
	resolver *pricing.Resolver,
	policy orders.Policy,
	tx txRunner,
	publisher outboxPublisher,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
) (Service, error) {
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
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
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
		suppliers: supplierRepo,
		resolver:  resolver,
		policy:    policy,
		tx:        tx,
		outbox:    publisher,
		metrics:   checkoutMetrics,
		logg:      logg,
	}, nil
}

// Execute converts the user's cart into an order inside one transaction:
// re-resolve every line, assemble totals, persist the order, clear the cart
// and queue the order.created event. Any failure rolls the whole thing back.
func (s *service) Execute(ctx context.Context, userID uuid.UUID, input Input) (*orders.Detail, error) {
	started := time.Now()

	var detail *orders.Detail
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)
		resolver := s.resolver.WithOffers(s.suppliers.WithTx(tx))

		userCart, err := cartRepo.FindByUser(ctx, userID)
		if err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
				return pkgerrors.New(pkgerrors.CodePrecondition, "cart is empty")
			}
			return err
		}
		if len(userCart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodePrecondition, "cart is empty")
		}

		lines := make([]orders.Line, 0, len(userCart.Items))
		for i := range userCart.Items {
			item := userCart.Items[i]
			if item.Product == nil {
				return pkgerrors.New(pkgerrors.CodeInternal, "cart item references missing product")
			}

			quote, err := resolver.Resolve(ctx, item.Product, item.SupplierOffer, item.Quantity)
			if err != nil {
				return err
			}
			lines = append(lines, orders.Line{
				ProductID:       item.ProductID,
				SupplierOfferID: quote.OfferID(),
				ProductName:     item.Product.Name,
				ProductSKU:      item.Product.SKU,
				UnitPrice:       quote.UnitPrice,
				Quantity:        item.Quantity,
			})
		}

		draft, err := orders.Assemble(lines, s.policy)
		if err != nil {
			return err
		}

		order := &models.Order{
			UserID:       userID,
			Status:       enums.OrderStatusNew,
			FirstName:    input.FirstName,
			LastName:     input.LastName,
			Email:        input.Email,
			Phone:        input.Phone,
			Address:      input.Address,
			City:         input.City,
			PostalCode:   input.PostalCode,
			Country:      input.Country,
			Subtotal:     draft.Subtotal,
			Tax:          draft.Tax,
			ShippingCost: draft.ShippingCost,
			Total:        draft.Total,
			Notes:        input.Notes,
			Items:        draft.Items,
		}
		if err := orderRepo.Create(ctx, order); err != nil {
			return err
		}

		if err := cartRepo.DeleteItemsByCart(ctx, userCart.ID); err != nil {
			return err
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.OrderCreatedEvent{
				OrderID: order.ID,
				UserID:  userID,
				Email:   order.Email,
			},
		}); err != nil {
			return err
		}

		detail = orders.NewDetail(order)
		return nil
	})

	s.metrics.ObserveDuration("execute", time.Since(started))
	if err != nil {
		s.metrics.IncFailure("execute")
		if s.logg != nil {
			s.logg.Error(ctx, "checkout failed", err)
		}
		return nil, err
	}
	s.metrics.IncSuccess("execute")

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": detail.ID.String(),
			"total":    detail.Total,
		})
		s.logg.Info(logCtx, "order created")
	}
	return detail, nil
}
