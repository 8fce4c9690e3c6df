package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Satakshi24/order-management/internal/domain"
)

const (
	TypeOrderCreated   = "OrderCreated"
	TypeOrderConfirmed = "OrderConfirmed"
)

// Envelope wraps every published event. Payload is event-specific.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID int64              `json:"order_id"`
	UserID  int64              `json:"user_id"`
	Items   []domain.OrderItem `json:"items"`
}

type OrderConfirmedPayload struct {
	OrderID int64 `json:"order_id"`
}

func newEnvelope(eventType string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}
