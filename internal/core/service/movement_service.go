package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sweetshop/inventory-system/internal/core/domain"
	"github.com/sweetshop/inventory-system/internal/core/ports"
)

const defaultMovementLimit = 50

type movementService struct {
	repo ports.MovementRepository
	log  zerolog.Logger
}

// NewMovementService returns a MovementService persisting the stock movement
// audit trail.
func NewMovementService(repo ports.MovementRepository, log zerolog.Logger) ports.MovementService {
	return &movementService{repo: repo, log: log}
}

func (s *movementService) Record(ctx context.Context, m domain.StockMovement) error {
	if err := s.repo.Insert(ctx, &m); err != nil {
		return fmt.Errorf("record movement: %w", err)
	}

	s.log.Debug().
		Str("sweet_id", m.SweetID).
		Str("kind", string(m.Kind)).
		Int("quantity", m.Quantity).
		Msg("stock movement recorded")
	return nil
}

func (s *movementService) ListBySweet(ctx context.Context, sweetID string, limit int) ([]*domain.StockMovement, error) {
	if limit <= 0 {
		limit = defaultMovementLimit
	}
	return s.repo.ListBySweet(ctx, sweetID, limit)
}
