package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailpoint/purchasing-backend/pkg/enums"
	pkgerrors "github.com/retailpoint/purchasing-backend/pkg/errors"
	"github.com/retailpoint/purchasing-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes order reads and administrative status changes.
type Service interface {
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]Summary, string, error)
	GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*Detail, error)
	SetStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*Detail, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID) (*Detail, error)
}

type service struct {
	repo Repository
	tx   txRunner
	now  func() time.Time
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, now: time.Now}, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]Summary, string, error) {
	orders, nextCursor, err := s.repo.ListForUser(ctx, userID, params)
	if err != nil {
		return nil, "", err
	}
	summaries := make([]Summary, 0, len(orders))
	for _, order := range orders {
		summaries = append(summaries, NewSummary(order))
	}
	return summaries, nextCursor, nil
}

func (s *service) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*Detail, error) {
	order, err := s.repo.FindForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return NewDetail(order), nil
}

// SetStatus applies an administrative status change, enforcing the
// transition table. Reaching DELIVERED stamps delivered_at.
func (s *service) SetStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*Detail, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	var detail *Detail
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
				WithDetails(map[string]string{
					"from": order.Status.String(),
					"to":   status.String(),
				})
		}

		var deliveredAt *time.Time
		if status == enums.OrderStatusDelivered {
			now := s.now()
			deliveredAt = &now
		}
		if err := repo.SetStatus(ctx, order.ID, status, deliveredAt); err != nil {
			return err
		}

		order.Status = status
		if deliveredAt != nil {
			order.DeliveredAt = deliveredAt
		}
		detail = NewDetail(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// MarkPaid records payment once; repeating it is a state conflict.
func (s *service) MarkPaid(ctx context.Context, orderID uuid.UUID) (*Detail, error) {
	var detail *Detail
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.IsPaid {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already paid")
		}

		paidAt := s.now()
		if err := repo.MarkPaid(ctx, order.ID, paidAt); err != nil {
			return err
		}

		order.IsPaid = true
		order.PaymentDate = &paidAt
		detail = NewDetail(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}
