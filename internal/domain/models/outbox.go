package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const EventTypeOrderPlaced = "ORDER_PLACED"

var errEmptyLineItems = errors.New("order event has no line items")

type OutboxMessage struct {
	ID        int64     `db:"id"`
	EventUUID uuid.UUID `db:"event_uuid"`
	EventType string    `db:"event_type"`
	OrderID   int64     `db:"order_id"`
	Payload   []byte    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
}

func EncodeOrderEvent(event OrderEvent) ([]byte, error) {
	if len(event.LineItems) == 0 {
		return nil, errEmptyLineItems
	}

	return json.Marshal(event)
}

func DecodeOrderEvent(data []byte) (OrderEvent, error) {
	var event OrderEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return OrderEvent{}, fmt.Errorf("decode order event: %w", err)
	}

	if len(event.LineItems) == 0 {
		return OrderEvent{}, errEmptyLineItems
	}

	return event, nil
}
