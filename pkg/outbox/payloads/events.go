package payloads

import "github.com/google/uuid"

// OrderCreatedEvent is emitted inside the checkout transaction and consumed
// by the notification worker after commit.
type OrderCreatedEvent struct {
	OrderID uuid.UUID `json:"order_id"`
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email"`
}
