package models

import "time"

const OrderStatusConfirmed = "Confirmed"

type Order struct {
	ID        int64       `json:"id" db:"id"`
	Customer  string      `json:"customer" db:"customer"`
	Status    string      `json:"status" db:"status"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	Items     []OrderItem `json:"items"`
}

type OrderItem struct {
	OrderID   int64 `json:"-" db:"order_id"`
	ProductID int64 `json:"product_id" db:"product_id"`
	Quantity  int   `json:"quantity" db:"quantity"`
}

// OrderEvent is published once per confirmed order. It is encoded into the
// outbox in the same transaction as the order and never changes afterwards,
// so a redelivery always carries the identical payload.
type OrderEvent struct {
	OrderID   int64      `json:"order_id"`
	LineItems []LineItem `json:"items"`
}

type LineItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (o *Order) Event() OrderEvent {
	items := make([]LineItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, LineItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	return OrderEvent{OrderID: o.ID, LineItems: items}
}
