package domain

import (
	"errors"
	"time"
)

var (
	ErrSweetNotFound     = errors.New("sweet not found")
	ErrInsufficientStock = errors.New("insufficient quantity available")
	ErrInvalidQuantity   = errors.New("quantity must be greater than 0")
)

// Sweet is a sellable catalog item. Quantity is the stock on hand and must
// never go negative; purchase is rejected rather than allowed to overdraw.
type Sweet struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
