package enums

// OutboxEventType names a domain event stored in the outbox table.
type OutboxEventType string

const (
	EventOrderCreated OutboxEventType = "order.created"
)

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder OutboxAggregateType = "order"
)
