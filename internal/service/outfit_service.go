package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stash/internal/domain"
	"stash/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyOutfit = errors.New("an outfit needs at least one item")
)

// OutfitService defines the interface for outfit business logic
type OutfitService interface {
	Create(ctx context.Context, name string, items []domain.WardrobeItem, tags []string, season string, year int) (*domain.Outfit, error)
	SetFavorite(ctx context.Context, id uuid.UUID, favorite bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.Outfit, error)
}

type outfitService struct {
	outfitRepo repository.OutfitRepository
	logger     *zap.Logger
}

// NewOutfitService creates a new instance of OutfitService
func NewOutfitService(outfitRepo repository.OutfitRepository, logger *zap.Logger) OutfitService {
	return &outfitService{
		outfitRepo: outfitRepo,
		logger:     logger,
	}
}

// Create persists a finalized outfit with its item links in one
// transaction. Season defaults to "Any" and year to the current year
// when left unset.
func (s *outfitService) Create(ctx context.Context, name string, items []domain.WardrobeItem, tags []string, season string, year int) (*domain.Outfit, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOutfit
	}

	if season == "" {
		season = "Any"
	}
	if year == 0 {
		year = time.Now().Year()
	}
	if tags == nil {
		tags = []string{}
	}

	outfit := &domain.Outfit{
		ID:        uuid.New(),
		Name:      name,
		Items:     items,
		Tags:      tags,
		Season:    season,
		Year:      year,
		CreatedAt: time.Now(),
	}

	if err := s.outfitRepo.Create(ctx, outfit); err != nil {
		return nil, fmt.Errorf("failed to create outfit: %w", err)
	}

	s.logger.Info("outfit saved",
		zap.String("id", outfit.ID.String()),
		zap.Int("items", len(outfit.Items)))

	return outfit, nil
}

// SetFavorite persists the favorite flag for an outfit
func (s *outfitService) SetFavorite(ctx context.Context, id uuid.UUID, favorite bool) error {
	return s.outfitRepo.Update(ctx, id, repository.OutfitUpdate{IsFavorite: &favorite})
}

// Delete removes a saved outfit and its item links
func (s *outfitService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.outfitRepo.Delete(ctx, id)
}

// List retrieves all saved outfits, newest first
func (s *outfitService) List(ctx context.Context) ([]*domain.Outfit, error) {
	return s.outfitRepo.List(ctx)
}
