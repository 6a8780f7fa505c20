package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/retailpoint/purchasing-backend/internal/orders"
	"github.com/retailpoint/purchasing-backend/pkg/config"
	"github.com/retailpoint/purchasing-backend/pkg/db/models"
	"github.com/retailpoint/purchasing-backend/pkg/enums"
	"github.com/retailpoint/purchasing-backend/pkg/logger"
	"github.com/retailpoint/purchasing-backend/pkg/metrics"
	"github.com/retailpoint/purchasing-backend/pkg/outbox"
	"github.com/retailpoint/purchasing-backend/pkg/outbox/payloads"
)

type eventStore interface {
	FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublished(id uuid.UUID) error
	MarkFailed(id uuid.UUID, err error) error
}

// Dispatcher drains order.created outbox rows and emails the purchaser and
// the operator. Send failures increment the attempt counter and are retried
// on a later poll; they never reach the checkout path.
type Dispatcher struct {
	events        eventStore
	orders        orders.Repository
	mailer        Mailer
	operatorEmail string
	cfg           config.OutboxConfig
	metrics       *metrics.CheckoutMetrics
	logg          *logger.Logger
}

// NewDispatcher builds a notification dispatcher.
func NewDispatcher(
	events eventStore,
	orderRepo orders.Repository,
	mailer Mailer,
	operatorEmail string,
	cfg config.OutboxConfig,
	jobMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
) (*Dispatcher, error) {
	if events == nil {
		return nil, fmt.Errorf("event store required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.PollIntervalMS <= 0 {
		cfg.PollIntervalMS = 500
	}
	return &Dispatcher{
		events:        events,
		orders:        orderRepo,
		mailer:        mailer,
		operatorEmail: operatorEmail,
		cfg:           cfg,
		metrics:       jobMetrics,
		logg:          logg,
	}, nil
}

// Run polls until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(d.cfg.PollIntervalMS) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := d.RunOnce(ctx); err != nil && d.logg != nil {
				d.logg.Error(ctx, "outbox poll failed", err)
			}
		}
	}
}

// RunOnce processes one batch and returns how many events were published.
func (d *Dispatcher) RunOnce(ctx context.Context) (int, error) {
	events, err := d.events.FetchUnpublished(d.cfg.BatchSize, d.cfg.MaxAttempts)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, event := range events {
		if err := d.dispatch(ctx, event); err != nil {
			d.metrics.IncFailure("notify")
			if markErr := d.events.MarkFailed(event.ID, err); markErr != nil && d.logg != nil {
				d.logg.Error(ctx, "marking outbox event failed", markErr)
			}
			if d.logg != nil {
				logCtx := d.logg.WithField(ctx, "event_id", event.ID.String())
				d.logg.Error(logCtx, "notification dispatch failed", err)
			}
			continue
		}
		if err := d.events.MarkPublished(event.ID); err != nil {
			if d.logg != nil {
				d.logg.Error(ctx, "marking outbox event published", err)
			}
			continue
		}
		d.metrics.IncSuccess("notify")
		published++
	}
	return published, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, event models.OutboxEvent) error {
	if event.EventType != enums.EventOrderCreated {
		if d.logg != nil {
			logCtx := d.logg.WithField(ctx, "event_type", event.EventType)
			d.logg.Warn(logCtx, "skipping unhandled outbox event type")
		}
		return nil
	}

	envelope, err := outbox.DecodeEnvelope(event.Payload)
	if err != nil {
		return err
	}
	var payload payloads.OrderCreatedEvent
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		return err
	}

	order, err := d.orders.FindByID(ctx, payload.OrderID)
	if err != nil {
		return err
	}

	var sendErr error
	if order.Email != "" {
		sendErr = multierr.Append(sendErr, d.mailer.Send(ctx, purchaserEmail(order)))
	}
	if d.operatorEmail != "" {
		sendErr = multierr.Append(sendErr, d.mailer.Send(ctx, operatorEmail(order, d.operatorEmail)))
	}
	return sendErr
}

func purchaserEmail(order *models.Order) Message {
	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\nThanks for your order %s.\n\n", order.FirstName, order.ID)
	writeOrderLines(&body, order)
	body.WriteString("\nWe will let you know when it ships.\n")
	return Message{
		To:      []string{order.Email},
		Subject: fmt.Sprintf("Order confirmation %s", order.ID),
		Body:    body.String(),
	}
}

func operatorEmail(order *models.Order, to string) Message {
	var body strings.Builder
	fmt.Fprintf(&body, "New order %s from %s %s (%s).\n\n", order.ID, order.FirstName, order.LastName, order.Email)
	writeOrderLines(&body, order)
	fmt.Fprintf(&body, "\nShip to: %s, %s %s, %s\n", order.Address, order.City, order.PostalCode, order.Country)
	return Message{
		To:      []string{to},
		Subject: fmt.Sprintf("New order %s", order.ID),
		Body:    body.String(),
	}
}

func writeOrderLines(body *strings.Builder, order *models.Order) {
	for _, item := range order.Items {
		fmt.Fprintf(body, "%d x %s @ %s = %s\n",
			item.Quantity, item.ProductName,
			item.UnitPrice.StringFixed(2), item.TotalPrice.StringFixed(2))
	}
	fmt.Fprintf(body, "\nSubtotal: %s\nTax: %s\nShipping: %s\nTotal: %s\n",
		order.Subtotal.StringFixed(2), order.Tax.StringFixed(2),
		order.ShippingCost.StringFixed(2), order.Total.StringFixed(2))
}
