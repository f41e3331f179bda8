package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stash/internal/catalog"
	"stash/internal/domain"
	"stash/internal/imaging"
	"stash/internal/repository"
	"stash/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrDraftNotPersisted = errors.New("draft items have no stored record")
)

// ItemUpdateInput is the editable slice of an item. Colorway and season
// are fixed at creation and cannot be changed afterwards.
type ItemUpdateInput struct {
	Name     *string
	Category *string
	Tags     *[]string
	ImageURL *string
}

// ItemService defines the interface for wardrobe item business logic
type ItemService interface {
	Create(ctx context.Context, item *domain.WardrobeItem) (*domain.WardrobeItem, error)
	Update(ctx context.Context, id uuid.UUID, input ItemUpdateInput) (*domain.WardrobeItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WardrobeItem, error)
	List(ctx context.Context) ([]*domain.WardrobeItem, error)
}

type itemService struct {
	itemRepo repository.ItemRepository
	media    storage.MediaStore
	logger   *zap.Logger
}

// NewItemService creates a new instance of ItemService
func NewItemService(itemRepo repository.ItemRepository, media storage.MediaStore, logger *zap.Logger) ItemService {
	return &itemService{
		itemRepo: itemRepo,
		media:    media,
		logger:   logger,
	}
}

// persistImage swaps an inline data URL for a durable object-store URL.
// Already-hosted URLs pass through untouched. Stored records never carry
// raw image bytes.
func (s *itemService) persistImage(ctx context.Context, imageURL string) (string, error) {
	if !imaging.IsDataURL(imageURL) {
		return imageURL, nil
	}

	data, mimeType, err := imaging.DecodeDataURL(imageURL)
	if err != nil {
		return "", fmt.Errorf("failed to decode image payload: %w", err)
	}

	url, err := s.media.Upload(ctx, data, mimeType)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	return url, nil
}

// Create persists a reviewed draft as a catalogued item. The category is
// normalized to its canonical bucket and inline images are uploaded first.
func (s *itemService) Create(ctx context.Context, item *domain.WardrobeItem) (*domain.WardrobeItem, error) {
	imageURL, err := s.persistImage(ctx, item.ImageURL)
	if err != nil {
		return nil, err
	}

	created := &domain.WardrobeItem{
		ID:        uuid.New(),
		Name:      item.Name,
		Category:  catalog.NormalizeCategory(item.Category),
		Colorway:  item.Colorway,
		Season:    item.Season,
		Tags:      item.Tags,
		ImageURL:  imageURL,
		CreatedAt: time.Now(),
	}

	if err := s.itemRepo.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.logger.Info("item catalogued",
		zap.String("id", created.ID.String()),
		zap.String("category", created.Category))

	return created, nil
}

// Update applies the editable fields to a stored item and returns the
// fresh record
func (s *itemService) Update(ctx context.Context, id uuid.UUID, input ItemUpdateInput) (*domain.WardrobeItem, error) {
	if id == uuid.Nil {
		return nil, ErrDraftNotPersisted
	}

	update := repository.ItemUpdate{
		Name: input.Name,
		Tags: input.Tags,
	}

	if input.Category != nil {
		normalized := catalog.NormalizeCategory(*input.Category)
		update.Category = &normalized
	}

	if input.ImageURL != nil {
		imageURL, err := s.persistImage(ctx, *input.ImageURL)
		if err != nil {
			return nil, err
		}
		update.ImageURL = &imageURL
	}

	if err := s.itemRepo.Update(ctx, id, update); err != nil {
		return nil, err
	}

	return s.itemRepo.FindByID(ctx, id)
}

// Delete removes a stored item. Drafts were never persisted, so deleting
// one is an error.
func (s *itemService) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrDraftNotPersisted
	}
	return s.itemRepo.Delete(ctx, id)
}

// GetByID retrieves a stored item by ID
func (s *itemService) GetByID(ctx context.Context, id uuid.UUID) (*domain.WardrobeItem, error) {
	if id == uuid.Nil {
		return nil, ErrDraftNotPersisted
	}
	return s.itemRepo.FindByID(ctx, id)
}

// List retrieves all catalogued items, newest first
func (s *itemService) List(ctx context.Context) ([]*domain.WardrobeItem, error) {
	return s.itemRepo.List(ctx)
}
