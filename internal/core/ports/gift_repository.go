package ports

import (
	"context"

	"github.com/ronagung/wedding-registry/internal/core/domain"
)

// GiftRepository defines persistence operations for registry gifts.
type GiftRepository interface {
	// List returns all gifts, newest first.
	List(ctx context.Context) ([]*domain.Gift, error)
	Create(ctx context.Context, gift *domain.Gift) (WriteResult, error)
	SetPurchased(ctx context.Context, id int64, purchased bool) (WriteResult, error)
	Delete(ctx context.Context, id int64) (WriteResult, error)
	Count(ctx context.Context) (int64, error)
}
