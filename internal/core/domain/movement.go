package domain

import "time"

// MovementKind identifies what caused a stock level change.
type MovementKind string

const (
	MovementPurchase MovementKind = "purchase"
	MovementRestock  MovementKind = "restock"
)

// StockMovement is an audit record of a single stock change on a sweet.
// Movements are immutable once recorded.
type StockMovement struct {
	SweetID      string       `json:"sweet_id"`
	Kind         MovementKind `json:"kind"`
	Quantity     int          `json:"quantity"`
	ResultingQty int          `json:"resulting_quantity"`
	Actor        string       `json:"actor"`
	Timestamp    time.Time    `json:"timestamp"`
}
