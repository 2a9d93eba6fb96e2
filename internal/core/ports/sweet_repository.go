package ports

import (
	"context"

	"github.com/sweetshop/inventory-system/internal/core/domain"
)

// SearchFilter carries the optional catalog search parameters. Absent filters
// impose no constraint; name and category are case-insensitive substring
// matches and the price bounds are inclusive.
type SearchFilter struct {
	Name     string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// SweetRepository defines persistence operations for catalog items.
//
// DecrementStock must be an atomic conditional update: the quantity check and
// the decrement happen as one indivisible store operation so that two
// concurrent purchases cannot both pass a stale read. It returns
// domain.ErrInsufficientStock when stock is short and domain.ErrSweetNotFound
// when the item does not exist.
type SweetRepository interface {
	Create(ctx context.Context, s *domain.Sweet) (*domain.Sweet, error)
	FindByID(ctx context.Context, id string) (*domain.Sweet, error)
	Update(ctx context.Context, s *domain.Sweet) (*domain.Sweet, error)
	Delete(ctx context.Context, id string) error
	// List returns all items, newest-created first.
	List(ctx context.Context) ([]*domain.Sweet, error)
	// Search returns items matching filter, newest-created first.
	Search(ctx context.Context, filter SearchFilter) ([]*domain.Sweet, error)
	DecrementStock(ctx context.Context, id string, qty int) (*domain.Sweet, error)
	IncrementStock(ctx context.Context, id string, qty int) (*domain.Sweet, error)
}
