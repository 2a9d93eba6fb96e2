package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweetshop/inventory-system/internal/core/domain"
	"github.com/sweetshop/inventory-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

// stubSweetRepo serializes stock updates behind a mutex, mirroring the
// single-document atomicity the real Mongo repository gets from
// FindOneAndUpdate.
type stubSweetRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Sweet
	nextID int
}

func newStubSweetRepo() *stubSweetRepo {
	return &stubSweetRepo{byID: make(map[string]*domain.Sweet)}
}

func cloneSweet(s *domain.Sweet) *domain.Sweet {
	clone := *s
	return &clone
}

func (r *stubSweetRepo) Create(_ context.Context, s *domain.Sweet) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	created := cloneSweet(s)
	created.ID = "sweet_" + strconv.Itoa(r.nextID)
	r.byID[created.ID] = cloneSweet(created)
	return created, nil
}

func (r *stubSweetRepo) FindByID(_ context.Context, id string) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	return cloneSweet(s), nil
}

func (r *stubSweetRepo) Update(_ context.Context, s *domain.Sweet) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[s.ID]; !ok {
		return nil, domain.ErrSweetNotFound
	}
	r.byID[s.ID] = cloneSweet(s)
	return cloneSweet(s), nil
}

func (r *stubSweetRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrSweetNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubSweetRepo) List(_ context.Context) ([]*domain.Sweet, error) {
	return r.Search(context.Background(), ports.SearchFilter{})
}

// Search applies the same filters the real Mongo repo would use.
func (r *stubSweetRepo) Search(_ context.Context, f ports.SearchFilter) ([]*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*domain.Sweet
	for _, s := range r.byID {
		if f.Name != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.Category != "" && !strings.Contains(strings.ToLower(s.Category), strings.ToLower(f.Category)) {
			continue
		}
		if f.MinPrice != nil && s.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && s.Price > *f.MaxPrice {
			continue
		}
		matched = append(matched, cloneSweet(s))
	}

	// Newest-created first, same as the unfiltered listing.
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (r *stubSweetRepo) DecrementStock(_ context.Context, id string, qty int) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	if s.Quantity < qty {
		return nil, domain.ErrInsufficientStock
	}
	s.Quantity -= qty
	return cloneSweet(s), nil
}

func (r *stubSweetRepo) IncrementStock(_ context.Context, id string, qty int) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	s.Quantity += qty
	return cloneSweet(s), nil
}

func (r *stubSweetRepo) quantity(t *testing.T, id string) int {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		t.Fatalf("sweet %s not found", id)
	}
	return s.Quantity
}

type stubQueue struct {
	mu        sync.Mutex
	movements []domain.StockMovement
}

func (q *stubQueue) Enqueue(m domain.StockMovement) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.movements = append(q.movements, m)
}

func newTestSweetService(repo ports.SweetRepository, queue ports.MovementQueue) *SweetService {
	return NewSweetService(repo, queue, zerolog.Nop())
}

func mustCreate(t *testing.T, svc *SweetService, input ports.CreateSweetInput) *domain.Sweet {
	t.Helper()
	sweet, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return sweet
}

// ---------------------------------------------------------------------------
// CRUD
// ---------------------------------------------------------------------------

func TestSweetService_Create_Validation(t *testing.T) {
	svc := newTestSweetService(newStubSweetRepo(), nil)

	cases := []ports.CreateSweetInput{
		{Name: "", Category: "Traditional", Price: 5},
		{Name: "Ladoo", Category: "", Price: 5},
		{Name: "Ladoo", Category: "Traditional", Price: -1},
		{Name: "Ladoo", Category: "Traditional", Price: 5, Quantity: -2},
		{Name: strings.Repeat("x", 101), Category: "Traditional", Price: 5},
		{Name: "Ladoo", Category: strings.Repeat("x", 51), Price: 5},
		{Name: "Ladoo", Category: "Traditional", Price: 5, Description: strings.Repeat("x", 501)},
	}
	for i, input := range cases {
		_, err := svc.Create(context.Background(), input)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("case %d: expected ValidationError, got %v", i, err)
		}
	}
}

func TestSweetService_Update_Partial(t *testing.T) {
	repo := newStubSweetRepo()
	svc := newTestSweetService(repo, nil)
	sweet := mustCreate(t, svc, ports.CreateSweetInput{Name: "Barfi", Category: "Traditional", Price: 4, Quantity: 6})

	price := 4.5
	updated, err := svc.Update(context.Background(), sweet.ID, ports.UpdateSweetInput{Price: &price})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Price != 4.5 {
		t.Fatalf("expected price 4.5, got %v", updated.Price)
	}
	// Untouched fields survive.
	if updated.Name != "Barfi" || updated.Category != "Traditional" || updated.Quantity != 6 {
		t.Fatalf("unexpected entity after partial update: %+v", updated)
	}
}

func TestSweetService_Update_Validation(t *testing.T) {
	repo := newStubSweetRepo()
	svc := newTestSweetService(repo, nil)
	sweet := mustCreate(t, svc, ports.CreateSweetInput{Name: "Barfi", Category: "Traditional", Price: 4})

	bad := -1.0
	_, err := svc.Update(context.Background(), sweet.ID, ports.UpdateSweetInput{Price: &bad})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSweetService_Update_NotFound(t *testing.T) {
	svc := newTestSweetService(newStubSweetRepo(), nil)
	name := "x"
	if _, err := svc.Update(context.Background(), "missing", ports.UpdateSweetInput{Name: &name}); !errors.Is(err, domain.ErrSweetNotFound) {
		t.Fatalf("expected ErrSweetNotFound, got %v", err)
	}
}

func TestSweetService_Delete(t *testing.T) {
	repo := newStubSweetRepo()
	svc := newTestSweetService(repo, nil)
	sweet := mustCreate(t, svc, ports.CreateSweetInput{Name: "Barfi", Category: "Traditional", Price: 4})

	if err := svc.Delete(context.Background(), sweet.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), sweet.ID); !errors.Is(err, domain.ErrSweetNotFound) {
		t.Fatalf("expected ErrSweetNotFound after delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), sweet.ID); !errors.Is(err, domain.ErrSweetNotFound) {
		t.Fatalf("expected ErrSweetNotFound on second delete, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Search
// ---------------------------------------------------------------------------

func TestSweetService_Search_PriceRange(t *testing.T) {
	repo := newStubSweetRepo()
	svc := newTestSweetService(repo, nil)

	for i, p := range []float64{5, 10, 15, 20, 25} {
		s := &domain.Sweet{
			Name:      "Sweet" + strconv.Itoa(i),
			Category:  "Misc",
			Price:     p,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
			UpdatedAt: time.Now(),
		}
		if _, err := repo.Create(context.Background(), s); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	min, max := 10.0, 20.0
	got, err := svc.Search(context.Background(), ports.SearchFilter{MinPrice: &min, MaxPrice: &max})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	for _, s := range got {
		if s.Price < 10 || s.Price > 20 {
			t.Fatalf("price %v outside inclusive range [10, 20]", s.Price)
		}
	}

	// Absent filters impose no constraint.
	all, err := svc.Search(context.Background(), ports.SearchFilter{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected all 5 results, got %d", len(all))
	}
}

func TestSweetService_List_NewestFirst(t *testing.T) {
	repo := newStubSweetRepo()
	svc := newTestSweetService(repo, nil)

	base := time.Now()
	for i := 0; i < 3; i++ {
		s := &domain.Sweet{
			Name:      "Sweet" + strconv.Itoa(i),
			Category:  "Misc",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if _, err := repo.Create(context.Background(), s); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0].Name != "Sweet2" || got[2].Name != "Sweet0" {
		t.Fatalf("expected newest-created first, got %s..%s", got[0].Name, got[2].Name)
	}
}

// ---------------------------------------------------------------------------
// Purchase / restock
// ---------------------------------------------------------------------------

func TestSweetService_Purchase_InvalidQuantity(t *testing.T) {
	repo := newStubSweetRepo()
	svc := newTestSweetService(repo, nil)
	sweet := mustCreate(t, svc, ports.CreateSweetInput{Name: "Ladoo", Category: "Traditional", Price: 5, Quantity: 10})

	for _, qty := range []int{0, -1, -10} {
		if _, err := svc.Purchase(context.Background(), sweet.ID, qty, "a@b.com"); !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Fatalf("qty %d: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
	if q := repo.quantity(t, sweet.ID); q != 10 {
		t.Fatalf("stock must not change on rejected purchase, got %d", q)
	}
}

func TestSweetService_Purchase_NotFound(t *testing.T) {
	svc := newTestSweetService(newStubSweetRepo(), nil)
	if _, err := svc.Purchase(context.Background(), "missing", 1, "a@b.com"); !errors.Is(err, domain.ErrSweetNotFound) {
		t.Fatalf("expected ErrSweetNotFound, got %v", err)
	}
}

func TestSweetService_PurchaseRestock_Scenario(t *testing.T) {
	repo := newStubSweetRepo()
	queue := &stubQueue{}
	svc := newTestSweetService(repo, queue)
	sweet := mustCreate(t, svc, ports.CreateSweetInput{Name: "Ladoo", Category: "Traditional", Price: 5, Quantity: 10})

	got, err := svc.Purchase(context.Background(), sweet.ID, 3, "a@b.com")
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if got.Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", got.Quantity)
	}

	if _, err := svc.Purchase(context.Background(), sweet.ID, 8, "a@b.com"); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if q := repo.quantity(t, sweet.ID); q != 7 {
		t.Fatalf("stock must not change on rejected purchase, got %d", q)
	}

	got, err = svc.Restock(context.Background(), sweet.ID, 5, "admin@b.com")
	if err != nil {
		t.Fatalf("restock failed: %v", err)
	}
	if got.Quantity != 12 {
		t.Fatalf("expected quantity 12, got %d", got.Quantity)
	}

	// One movement per successful operation, none for the rejected purchase.
	if len(queue.movements) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(queue.movements))
	}
	if queue.movements[0].Kind != domain.MovementPurchase || queue.movements[0].ResultingQty != 7 {
		t.Fatalf("unexpected first movement: %+v", queue.movements[0])
	}
	if queue.movements[1].Kind != domain.MovementRestock || queue.movements[1].ResultingQty != 12 {
		t.Fatalf("unexpected second movement: %+v", queue.movements[1])
	}
}

func TestSweetService_Restock_InvalidQuantity(t *testing.T) {
	repo := newStubSweetRepo()
	svc := newTestSweetService(repo, nil)
	sweet := mustCreate(t, svc, ports.CreateSweetInput{Name: "Ladoo", Category: "Traditional", Price: 5, Quantity: 10})

	for _, qty := range []int{0, -5} {
		if _, err := svc.Restock(context.Background(), sweet.ID, qty, "admin@b.com"); !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Fatalf("qty %d: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
	if q := repo.quantity(t, sweet.ID); q != 10 {
		t.Fatalf("stock must not change on rejected restock, got %d", q)
	}
}

func TestSweetService_RestockPurchase_RoundTrip(t *testing.T) {
	repo := newStubSweetRepo()
	svc := newTestSweetService(repo, nil)
	sweet := mustCreate(t, svc, ports.CreateSweetInput{Name: "Jalebi", Category: "Fried", Price: 3, Quantity: 4})

	if _, err := svc.Restock(context.Background(), sweet.ID, 9, "admin@b.com"); err != nil {
		t.Fatalf("restock failed: %v", err)
	}
	if _, err := svc.Purchase(context.Background(), sweet.ID, 9, "a@b.com"); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if q := repo.quantity(t, sweet.ID); q != 4 {
		t.Fatalf("expected original quantity 4 after round trip, got %d", q)
	}
}

// Under N concurrent purchases whose sum exceeds stock, exactly the requests
// whose cumulative total fits must succeed and quantity must never go
// negative.
func TestSweetService_Purchase_ConcurrentNeverNegative(t *testing.T) {
	repo := newStubSweetRepo()
	svc := newTestSweetService(repo, nil)
	sweet := mustCreate(t, svc, ports.CreateSweetInput{Name: "Ladoo", Category: "Traditional", Price: 5, Quantity: 10})

	const attempts = 25
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, insufficient := 0, 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.Purchase(context.Background(), sweet.ID, 1, "a@b.com")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				if got.Quantity < 0 {
					t.Errorf("observed negative quantity %d", got.Quantity)
				}
				succeeded++
			case errors.Is(err, domain.ErrInsufficientStock):
				insufficient++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Fatalf("expected exactly 10 successful purchases, got %d", succeeded)
	}
	if insufficient != attempts-10 {
		t.Fatalf("expected %d insufficient-stock failures, got %d", attempts-10, insufficient)
	}
	if q := repo.quantity(t, sweet.ID); q != 0 {
		t.Fatalf("expected final quantity 0, got %d", q)
	}
}
