package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ronagung/wedding-registry/internal/core/domain"
	"github.com/ronagung/wedding-registry/internal/core/ports"
)

const collectionGifts = "gifts"

type GiftRepository struct {
	col      *mongo.Collection
	counters *Counters
}

func NewGiftRepository(db *mongo.Database, counters *Counters) *GiftRepository {
	return &GiftRepository{col: db.Collection(collectionGifts), counters: counters}
}

// List returns all gifts, newest first.
func (r *GiftRepository) List(ctx context.Context) ([]*domain.Gift, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find gifts: %w", err)
	}
	defer cur.Close(ctx)

	gifts := make([]*domain.Gift, 0)
	if err := cur.All(ctx, &gifts); err != nil {
		return nil, fmt.Errorf("decode gifts: %w", err)
	}
	return gifts, nil
}

// Create allocates an ID and inserts the gift.
func (r *GiftRepository) Create(ctx context.Context, g *domain.Gift) (ports.WriteResult, error) {
	id, err := r.counters.Next(ctx, collectionGifts)
	if err != nil {
		return ports.WriteResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := *g
	doc.ID = id
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return ports.WriteResult{}, fmt.Errorf("insert gift: %w", err)
	}
	return ports.WriteResult{InsertedID: id, RowsAffected: 1}, nil
}

// SetPurchased reports matched rows, so setting the current value again still
// counts as one change.
func (r *GiftRepository) SetPurchased(ctx context.Context, id int64, purchased bool) (ports.WriteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_purchased": purchased}})
	if err != nil {
		return ports.WriteResult{}, fmt.Errorf("update gift: %w", err)
	}
	return ports.WriteResult{RowsAffected: res.MatchedCount}, nil
}

func (r *GiftRepository) Delete(ctx context.Context, id int64) (ports.WriteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return ports.WriteResult{}, fmt.Errorf("delete gift: %w", err)
	}
	return ports.WriteResult{RowsAffected: res.DeletedCount}, nil
}

func (r *GiftRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count gifts: %w", err)
	}
	return n, nil
}

// EnsureIndexes creates the listing index.
func (r *GiftRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("gift indexes: %w", err)
	}
	return nil
}
