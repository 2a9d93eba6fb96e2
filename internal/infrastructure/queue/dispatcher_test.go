package queue

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sweetshop/inventory-system/internal/core/domain"
)

type recordingMovementService struct {
	mu       sync.Mutex
	recorded []domain.StockMovement
}

func (s *recordingMovementService) Record(_ context.Context, m domain.StockMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorded = append(s.recorded, m)
	return nil
}

func (s *recordingMovementService) ListBySweet(_ context.Context, _ string, _ int) ([]*domain.StockMovement, error) {
	return nil, nil
}

func (s *recordingMovementService) snapshot() []domain.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.StockMovement, len(s.recorded))
	copy(out, s.recorded)
	return out
}

func TestDispatcher_ProcessesAllMovements(t *testing.T) {
	svc := &recordingMovementService{}
	d := NewDispatcher(4, svc, zerolog.Nop())
	d.Start(context.Background())

	const total = 40
	for i := 0; i < total; i++ {
		d.Enqueue(domain.StockMovement{
			SweetID:  "sweet_" + strconv.Itoa(i%5),
			Kind:     domain.MovementPurchase,
			Quantity: 1,
		})
	}
	d.Stop()

	if got := svc.snapshot(); len(got) != total {
		t.Fatalf("expected %d movements, got %d", total, len(got))
	}
}

// Movements for one item always land on the same worker, so their relative
// order survives concurrent processing of other items.
func TestDispatcher_PerItemOrdering(t *testing.T) {
	svc := &recordingMovementService{}
	d := NewDispatcher(4, svc, zerolog.Nop())
	d.Start(context.Background())

	const perItem = 20
	items := []string{"sweet_a", "sweet_b", "sweet_c"}
	for seq := 0; seq < perItem; seq++ {
		for _, id := range items {
			d.Enqueue(domain.StockMovement{SweetID: id, Kind: domain.MovementRestock, Quantity: seq})
		}
	}
	d.Stop()

	got := svc.snapshot()
	seen := make(map[string]int)
	for _, m := range got {
		if m.Quantity != seen[m.SweetID] {
			t.Fatalf("item %s: expected sequence %d, got %d", m.SweetID, seen[m.SweetID], m.Quantity)
		}
		seen[m.SweetID]++
	}
	for _, id := range items {
		if seen[id] != perItem {
			t.Fatalf("item %s: expected %d movements, got %d", id, perItem, seen[id])
		}
	}
}

func TestDispatcher_ShardIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingMovementService{}, zerolog.Nop())
	for _, id := range []string{"a", "sweet_1", "653f1c..."} {
		first := d.shardIndex(id)
		for i := 0; i < 10; i++ {
			if got := d.shardIndex(id); got != first {
				t.Fatalf("shard for %q changed from %d to %d", id, first, got)
			}
		}
	}
}

// Stop must not abandon buffered movements: everything enqueued before the
// shutdown, including a late burst, is recorded by the time Stop returns.
func TestDispatcher_StopDrainsBuffered(t *testing.T) {
	svc := &recordingMovementService{}
	d := NewDispatcher(2, svc, zerolog.Nop())
	d.Start(context.Background())

	const total = 60
	for i := 0; i < total; i++ {
		d.Enqueue(domain.StockMovement{
			SweetID:  "sweet_" + strconv.Itoa(i%7),
			Kind:     domain.MovementPurchase,
			Quantity: 1,
		})
	}
	d.Stop()

	// Stop blocks until the workers finish, so the count is final here.
	if got := svc.snapshot(); len(got) != total {
		t.Fatalf("expected all %d movements drained, got %d", total, len(got))
	}
}
