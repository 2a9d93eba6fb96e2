package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sweetshop/inventory-system/internal/core/domain"
)

const movementsCollection = "stock_movements"

type MovementRepository struct {
	coll *mongo.Collection
}

func NewMovementRepository(db *mongo.Database) *MovementRepository {
	return &MovementRepository{coll: db.Collection(movementsCollection)}
}

type mongoMovement struct {
	SweetID      string    `bson:"sweet_id"`
	Kind         string    `bson:"kind"`
	Quantity     int       `bson:"quantity"`
	ResultingQty int       `bson:"resulting_quantity"`
	Actor        string    `bson:"actor"`
	Timestamp    time.Time `bson:"timestamp"`
}

func (r *MovementRepository) Insert(ctx context.Context, m *domain.StockMovement) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoMovement{
		SweetID:      m.SweetID,
		Kind:         string(m.Kind),
		Quantity:     m.Quantity,
		ResultingQty: m.ResultingQty,
		Actor:        m.Actor,
		Timestamp:    m.Timestamp,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

func (r *MovementRepository) ListBySweet(ctx context.Context, sweetID string, limit int) ([]*domain.StockMovement, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.M{"sweet_id": sweetID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find movements: %w", err)
	}
	defer cur.Close(ctx)

	movements := []*domain.StockMovement{}
	for cur.Next(ctx) {
		var mm mongoMovement
		if err := cur.Decode(&mm); err != nil {
			return nil, fmt.Errorf("decode movement: %w", err)
		}
		movements = append(movements, &domain.StockMovement{
			SweetID:      mm.SweetID,
			Kind:         domain.MovementKind(mm.Kind),
			Quantity:     mm.Quantity,
			ResultingQty: mm.ResultingQty,
			Actor:        mm.Actor,
			Timestamp:    mm.Timestamp,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate movements: %w", err)
	}
	return movements, nil
}

// EnsureIndexes creates the lookup index on the stock_movements collection.
func (r *MovementRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sweet_id", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	return err
}
