package handler

import (
	"time"

	"github.com/sweetshop/inventory-system/internal/core/domain"
)

type createSweetRequest struct {
	Name        string  `json:"name"        validate:"required,max=100"`
	Category    string  `json:"category"    validate:"required,max=50"`
	Price       float64 `json:"price"       validate:"gte=0"`
	Quantity    int     `json:"quantity"    validate:"gte=0"`
	Description string  `json:"description" validate:"max=500"`
}

// updateSweetRequest applies partially: only fields present in the JSON body
// are changed.
type updateSweetRequest struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	Description *string  `json:"description"`
}

// purchaseRequest carries the purchase quantity; a missing quantity means 1.
type purchaseRequest struct {
	Quantity *int `json:"quantity"`
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

type sweetResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func sweetView(s *domain.Sweet) sweetResponse {
	return sweetResponse{
		ID:          s.ID,
		Name:        s.Name,
		Category:    s.Category,
		Price:       s.Price,
		Quantity:    s.Quantity,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func sweetViews(sweets []*domain.Sweet) []sweetResponse {
	out := make([]sweetResponse, 0, len(sweets))
	for _, s := range sweets {
		out = append(out, sweetView(s))
	}
	return out
}

type movementResponse struct {
	SweetID      string    `json:"sweet_id"`
	Kind         string    `json:"kind"`
	Quantity     int       `json:"quantity"`
	ResultingQty int       `json:"resulting_quantity"`
	Actor        string    `json:"actor"`
	Timestamp    time.Time `json:"timestamp"`
}
