package ports

import (
	"context"

	"github.com/ronagung/wedding-registry/internal/core/domain"
)

// CreateGiftInput carries the fields of a new gift.
type CreateGiftInput struct {
	Name     string
	Category string
	Price    int64
	ImageURL string
	LinkURL  string
}

// GiftService defines use-case operations for the registry.
type GiftService interface {
	List(ctx context.Context) ([]*domain.Gift, error)
	Create(ctx context.Context, in CreateGiftInput) (*domain.Gift, error)
	SetPurchased(ctx context.Context, id int64, purchased bool) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	// SeedDefaults inserts the sample catalogue when the registry is empty and
	// reports how many gifts were added.
	SeedDefaults(ctx context.Context) (int, error)
}
