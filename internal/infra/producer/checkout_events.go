package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

type CheckoutEventType string

const (
	CheckoutCompletedEvent          CheckoutEventType = "CheckoutCompleted"
	CheckoutCartCleanupPendingEvent CheckoutEventType = "CheckoutCartCleanupPending"
	CheckoutCompensatedEvent        CheckoutEventType = "CheckoutCompensated"
	CheckoutCompensationFailedEvent CheckoutEventType = "CheckoutCompensationFailed"
)

const eventTypeHeader = "event_type"

var eventTypeByState = map[model.CheckoutState]CheckoutEventType{
	model.CheckoutCompleted:          CheckoutCompletedEvent,
	model.CheckoutCartCleanupPending: CheckoutCartCleanupPendingEvent,
	model.CheckoutCompensated:        CheckoutCompensatedEvent,
	model.CheckoutCompensationFailed: CheckoutCompensationFailedEvent,
}

type BaseEvent struct {
	EventID     string            `json:"event_id"`
	AggregateID string            `json:"aggregate_id"`
	EventType   CheckoutEventType `json:"event_type"`
	CreatedAt   time.Time         `json:"created_at"`
}

type CheckoutEventLine struct {
	LineNo      int                `json:"line"`
	ProductLink int64              `json:"product_link"`
	Quantity    int                `json:"quantity"`
	Price       decimal.Decimal    `json:"price"`
	OrderID     int64              `json:"order_id"`
	Stock       model.StockOutcome `json:"stock"`
}

type CheckoutEvent struct {
	BaseEvent
	CustomerID    int64               `json:"customer_id"`
	State         model.CheckoutState `json:"state"`
	DeclaredTotal decimal.Decimal     `json:"declared_total"`
	CartCleared   bool                `json:"cart_cleared"`
	Reason        string              `json:"reason,omitempty"`
	Lines         []CheckoutEventLine `json:"lines"`
}

func NewCheckoutEvent(c *model.Checkout, eventType CheckoutEventType) CheckoutEvent {
	lines := make([]CheckoutEventLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, CheckoutEventLine{
			LineNo:      l.LineNo,
			ProductLink: l.ProductLink,
			Quantity:    l.Quantity,
			Price:       l.Price,
			OrderID:     l.OrderID,
			Stock:       l.StockOutcome,
		})
	}
	return CheckoutEvent{
		BaseEvent: BaseEvent{
			EventID:     uuid.NewString(),
			AggregateID: c.PaymentID,
			EventType:   eventType,
			CreatedAt:   time.Now().UTC(),
		},
		CustomerID:    c.CustomerLink,
		State:         c.State,
		DeclaredTotal: c.DeclaredTotal,
		CartCleared:   c.CartCleared,
		Reason:        c.FailureReason,
		Lines:         lines,
	}
}

const publishTimeout = 5 * time.Second

// CheckoutEventPublisher turns checkout state changes into kafka messages keyed
// by payment id, so every event of one checkout lands on the same partition.
type CheckoutEventPublisher struct {
	producer Producer
}

func NewCheckoutEventPublisher(p Producer) *CheckoutEventPublisher {
	return &CheckoutEventPublisher{producer: p}
}

func (p *CheckoutEventPublisher) PublishCheckout(ctx context.Context, c *model.Checkout) error {
	eventType, ok := eventTypeByState[c.State]
	if !ok {
		return nil
	}

	value, err := json.Marshal(NewCheckoutEvent(c, eventType))
	if err != nil {
		return err
	}

	// placement 的 ctx 不會被取消, 不能無限等 buffer
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return p.producer.Produce(ctx, kafka.Message{
		Key:   []byte(c.PaymentID),
		Value: value,
		Headers: []kafka.Header{
			{Key: eventTypeHeader, Value: []byte(eventType)},
		},
	})
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishCheckout(context.Context, *model.Checkout) error {
	return nil
}
