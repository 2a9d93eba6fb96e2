package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweetshop/inventory-system/internal/core/domain"
	"github.com/sweetshop/inventory-system/internal/core/ports"
)

// SweetService implements catalog CRUD, search and the two inventory
// operations. Purchase relies on the repository's atomic conditional
// decrement so stock can never be observed negative, even under concurrent
// purchases against the same item.
type SweetService struct {
	repo      ports.SweetRepository
	movements ports.MovementQueue
	log       zerolog.Logger
}

// NewSweetService builds a SweetService. movements may be nil, in which case
// no audit records are produced.
func NewSweetService(repo ports.SweetRepository, movements ports.MovementQueue, log zerolog.Logger) *SweetService {
	return &SweetService{repo: repo, movements: movements, log: log}
}

func (s *SweetService) Create(ctx context.Context, input ports.CreateSweetInput) (*domain.Sweet, error) {
	now := time.Now().UTC()
	sweet := &domain.Sweet{
		Name:        input.Name,
		Category:    input.Category,
		Price:       input.Price,
		Quantity:    input.Quantity,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := sweet.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, sweet)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("sweet_id", created.ID).Str("name", created.Name).Msg("sweet created")
	return created, nil
}

func (s *SweetService) Get(ctx context.Context, id string) (*domain.Sweet, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *SweetService) List(ctx context.Context) ([]*domain.Sweet, error) {
	return s.repo.List(ctx)
}

func (s *SweetService) Search(ctx context.Context, filter ports.SearchFilter) ([]*domain.Sweet, error) {
	return s.repo.Search(ctx, filter)
}

// Update applies a partial update: only fields present in the input change.
func (s *SweetService) Update(ctx context.Context, id string, input ports.UpdateSweetInput) (*domain.Sweet, error) {
	sweet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		sweet.Name = *input.Name
	}
	if input.Category != nil {
		sweet.Category = *input.Category
	}
	if input.Price != nil {
		sweet.Price = *input.Price
	}
	if input.Quantity != nil {
		sweet.Quantity = *input.Quantity
	}
	if input.Description != nil {
		sweet.Description = *input.Description
	}
	if err := sweet.Validate(); err != nil {
		return nil, err
	}

	sweet.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, sweet)
}

func (s *SweetService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("sweet_id", id).Msg("sweet deleted")
	return nil
}

// Purchase decrements stock by qty if and only if enough is available. The
// check and the decrement are one indivisible store operation.
func (s *SweetService) Purchase(ctx context.Context, id string, qty int, actor string) (*domain.Sweet, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	sweet, err := s.repo.DecrementStock(ctx, id, qty)
	if err != nil {
		return nil, err
	}

	s.record(domain.StockMovement{
		SweetID:      sweet.ID,
		Kind:         domain.MovementPurchase,
		Quantity:     qty,
		ResultingQty: sweet.Quantity,
		Actor:        actor,
		Timestamp:    time.Now().UTC(),
	})

	s.log.Info().
		Str("sweet_id", sweet.ID).
		Int("quantity", qty).
		Int("remaining", sweet.Quantity).
		Msg("purchase completed")
	return sweet, nil
}

// Restock increments stock by qty.
func (s *SweetService) Restock(ctx context.Context, id string, qty int, actor string) (*domain.Sweet, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	sweet, err := s.repo.IncrementStock(ctx, id, qty)
	if err != nil {
		return nil, err
	}

	s.record(domain.StockMovement{
		SweetID:      sweet.ID,
		Kind:         domain.MovementRestock,
		Quantity:     qty,
		ResultingQty: sweet.Quantity,
		Actor:        actor,
		Timestamp:    time.Now().UTC(),
	})

	s.log.Info().
		Str("sweet_id", sweet.ID).
		Int("quantity", qty).
		Int("stock", sweet.Quantity).
		Msg("restock completed")
	return sweet, nil
}

func (s *SweetService) record(m domain.StockMovement) {
	if s.movements == nil {
		return
	}
	s.movements.Enqueue(m)
}
