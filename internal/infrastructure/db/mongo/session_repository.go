package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ronagung/wedding-registry/internal/core/domain"
	"github.com/ronagung/wedding-registry/internal/core/ports"
)

const collectionSessions = "cms_sessions"

// SessionRepository stores sessions in MongoDB. Every method is one
// single-document (or single DeleteMany) command.
type SessionRepository struct {
	col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{col: db.Collection(collectionSessions)}
}

type sessionDocument struct {
	ID        string    `bson:"_id"`
	Token     string    `bson:"token"`
	UserID    int64     `bson:"user_id"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d *sessionDocument) toDomain() domain.Session {
	return domain.Session{
		ID:        d.ID,
		Token:     d.Token,
		UserID:    d.UserID,
		ExpiresAt: d.ExpiresAt,
		CreatedAt: d.CreatedAt,
	}
}

type sessionJoinDocument struct {
	sessionDocument `bson:",inline"`
	Account         []accountDocument `bson:"account"`
}

func (r *SessionRepository) Insert(ctx context.Context, s *domain.Session) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, sessionDocument{
		ID:        s.ID,
		Token:     s.Token,
		UserID:    s.UserID,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateToken
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// FindByToken loads the session and its account in one round trip.
func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*domain.SessionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"token": token}}},
		{{Key: "$limit", Value: 1}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionAccounts,
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "account",
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return nil, fmt.Errorf("find session: %w", err)
		}
		return nil, domain.ErrSessionNotFound
	}

	var doc sessionJoinDocument
	if err := cur.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	rec := &domain.SessionRecord{Session: doc.toDomain()}
	if len(doc.Account) > 0 {
		rec.Account = doc.Account[0].toDomain()
	}
	return rec, nil
}

// ExtendExpiry applies $max so concurrent slides can only move the expiry
// forward.
func (r *SessionRepository) ExtendExpiry(ctx context.Context, id string, expiresAt time.Time) (time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc sessionDocument
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$max": bson.M{"expires_at": expiresAt}},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return time.Time{}, domain.ErrSessionNotFound
		}
		return time.Time{}, fmt.Errorf("extend session: %w", err)
	}
	return doc.ExpiresAt, nil
}

func (r *SessionRepository) DeleteByToken(ctx context.Context, token string) (ports.WriteResult, error) {
	return r.deleteOne(ctx, bson.M{"token": token})
}

func (r *SessionRepository) DeleteIfExpired(ctx context.Context, token string, now time.Time) (ports.WriteResult, error) {
	return r.deleteOne(ctx, bson.M{"token": token, "expires_at": bson.M{"$lte": now}})
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (ports.WriteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return ports.WriteResult{}, fmt.Errorf("delete expired sessions: %w", err)
	}
	return ports.WriteResult{RowsAffected: res.DeletedCount}, nil
}

func (r *SessionRepository) deleteOne(ctx context.Context, filter bson.M) (ports.WriteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return ports.WriteResult{}, fmt.Errorf("delete session: %w", err)
	}
	return ports.WriteResult{RowsAffected: res.DeletedCount}, nil
}

// EnsureIndexes creates the unique token index and the expiry index used by
// the sweeper.
func (r *SessionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}
	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("session indexes: %w", err)
	}
	return nil
}
