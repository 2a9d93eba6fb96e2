package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweetshop/inventory-system/internal/core/domain"
)

type stubMovementRepo struct {
	inserted []*domain.StockMovement
	err      error
	gotID    string
	gotLimit int
}

func (r *stubMovementRepo) Insert(_ context.Context, m *domain.StockMovement) error {
	if r.err != nil {
		return r.err
	}
	r.inserted = append(r.inserted, m)
	return nil
}

func (r *stubMovementRepo) ListBySweet(_ context.Context, sweetID string, limit int) ([]*domain.StockMovement, error) {
	r.gotID, r.gotLimit = sweetID, limit
	return r.inserted, r.err
}

func TestMovementService_Record(t *testing.T) {
	repo := &stubMovementRepo{}
	svc := NewMovementService(repo, zerolog.Nop())

	m := domain.StockMovement{SweetID: "sweet_1", Kind: domain.MovementPurchase, Quantity: 2, ResultingQty: 8, Timestamp: time.Now()}
	if err := svc.Record(context.Background(), m); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if len(repo.inserted) != 1 || repo.inserted[0].SweetID != "sweet_1" {
		t.Fatalf("unexpected inserted movements: %+v", repo.inserted)
	}
}

func TestMovementService_Record_WrapsRepoError(t *testing.T) {
	cause := errors.New("write concern failed")
	svc := NewMovementService(&stubMovementRepo{err: cause}, zerolog.Nop())

	err := svc.Record(context.Background(), domain.StockMovement{SweetID: "sweet_1"})
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped repo error, got %v", err)
	}
}

func TestMovementService_ListBySweet_DefaultLimit(t *testing.T) {
	repo := &stubMovementRepo{}
	svc := NewMovementService(repo, zerolog.Nop())

	if _, err := svc.ListBySweet(context.Background(), "sweet_1", 0); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if repo.gotLimit != defaultMovementLimit {
		t.Fatalf("expected default limit %d, got %d", defaultMovementLimit, repo.gotLimit)
	}

	if _, err := svc.ListBySweet(context.Background(), "sweet_1", 7); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if repo.gotLimit != 7 {
		t.Fatalf("expected limit 7, got %d", repo.gotLimit)
	}
}
