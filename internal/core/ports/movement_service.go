package ports

import (
	"context"

	"github.com/sweetshop/inventory-system/internal/core/domain"
)

// MovementService processes stock movement audit records.
type MovementService interface {
	Record(ctx context.Context, m domain.StockMovement) error
	ListBySweet(ctx context.Context, sweetID string, limit int) ([]*domain.StockMovement, error)
}

// MovementQueue decouples inventory operations from audit persistence.
// Enqueue must not block the purchase/restock request path.
type MovementQueue interface {
	Enqueue(m domain.StockMovement)
}
