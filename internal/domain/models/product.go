package models

// Product is the inventory record the reconciler mutates. Quantity is allowed
// to drop below zero when orders outrun stock.
type Product struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	PriceCents  int64  `json:"price_cents" db:"price_cents"`
	Quantity    int    `json:"quantity" db:"quantity"`
	Version     int64  `json:"version" db:"version"`
}

// StockChange is the outcome of one line item during reconciliation.
type StockChange struct {
	ProductID int64
	Requested int
	Before    int
	After     int
	Skipped   bool
}
