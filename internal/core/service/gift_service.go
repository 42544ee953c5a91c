package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ronagung/wedding-registry/internal/core/domain"
	"github.com/ronagung/wedding-registry/internal/core/ports"
)

// defaultGifts is the starter catalogue inserted into an empty registry.
var defaultGifts = []ports.CreateGiftInput{
	{Name: "Lampu Gantung Minimalis", Category: "Home", Price: 399000, ImageURL: "https://images.unsplash.com/photo-1513506003011-38c346e67512?w=500", LinkURL: "https://shopee.co.id/lampu-gantung"},
	{Name: "Hair Dryer Panasonic", Category: "Electronics", Price: 450000, ImageURL: "https://images.unsplash.com/photo-1522338140262-f46f5913618a?w=500", LinkURL: "https://tokopedia.com/hair-dryer"},
	{Name: "Set Piring Keramik (Isi 6)", Category: "Kitchen", Price: 250000, ImageURL: "https://images.unsplash.com/photo-1603195885232-a7d039648942?w=500", LinkURL: "https://shopee.co.id/piring-keramik"},
	{Name: "Coffee Maker", Category: "Kitchen", Price: 1200000, ImageURL: "https://images.unsplash.com/photo-1517701550927-30cf4ba1dba5?w=500", LinkURL: "https://tokopedia.com/coffee-maker"},
	{Name: "Bed Cover King Size", Category: "Bedroom", Price: 850000, ImageURL: "https://images.unsplash.com/photo-1522771753035-10a637fa3d64?w=500", LinkURL: "https://shopee.co.id/bed-cover"},
}

type GiftService struct {
	repo   ports.GiftRepository
	logger zerolog.Logger
}

func NewGiftService(repo ports.GiftRepository, logger zerolog.Logger) *GiftService {
	return &GiftService{repo: repo, logger: logger}
}

func (s *GiftService) List(ctx context.Context) ([]*domain.Gift, error) {
	gifts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list gifts: %w", err)
	}
	return gifts, nil
}

// Create stores a new gift. Name is the only required field.
func (s *GiftService) Create(ctx context.Context, in ports.CreateGiftInput) (*domain.Gift, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, &domain.ValidationError{Fields: []string{"name"}}
	}
	if in.Price < 0 {
		return nil, &domain.ValidationError{Fields: []string{"price"}, Reason: "price must not be negative"}
	}

	gift := &domain.Gift{
		Name:      in.Name,
		Category:  in.Category,
		Price:     in.Price,
		ImageURL:  in.ImageURL,
		LinkURL:   in.LinkURL,
		CreatedAt: time.Now().UTC(),
	}

	res, err := s.repo.Create(ctx, gift)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create gift")
		return nil, fmt.Errorf("create gift: %w", err)
	}
	gift.ID = res.InsertedID

	s.logger.Info().Int64("gift_id", gift.ID).Str("name", gift.Name).Msg("gift created")
	return gift, nil
}

// SetPurchased flips the purchased flag and returns the number of rows changed.
func (s *GiftService) SetPurchased(ctx context.Context, id int64, purchased bool) (int64, error) {
	res, err := s.repo.SetPurchased(ctx, id, purchased)
	if err != nil {
		return 0, fmt.Errorf("update gift %d: %w", id, err)
	}
	if res.RowsAffected == 0 {
		return 0, domain.ErrGiftNotFound
	}
	s.logger.Info().Int64("gift_id", id).Bool("purchased", purchased).Msg("gift purchase status updated")
	return res.RowsAffected, nil
}

func (s *GiftService) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete gift %d: %w", id, err)
	}
	if res.RowsAffected == 0 {
		return 0, domain.ErrGiftNotFound
	}
	s.logger.Info().Int64("gift_id", id).Msg("gift deleted")
	return res.RowsAffected, nil
}

// SeedDefaults inserts defaultGifts when the registry is empty.
func (s *GiftService) SeedDefaults(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed gifts: %w", err)
	}
	if n > 0 {
		s.logger.Info().Int64("existing", n).Msg("registry already has gifts, skipping seed")
		return 0, nil
	}

	for i, in := range defaultGifts {
		if _, err := s.Create(ctx, in); err != nil {
			return i, fmt.Errorf("seed gifts: %w", err)
		}
	}
	return len(defaultGifts), nil
}
