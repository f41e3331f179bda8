package workflow

import (
	"context"
	"fmt"

	"stash/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BoardStore is the slice of outfit persistence the board needs.
type BoardStore interface {
	List(ctx context.Context) ([]*domain.Outfit, error)
	SetFavorite(ctx context.Context, id uuid.UUID, favorite bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Board holds the displayed outfit list and keeps it consistent with the
// store across optimistic updates. Not safe for concurrent use.
type Board struct {
	store  BoardStore
	logger *zap.Logger

	outfits []*domain.Outfit
	worn    map[uuid.UUID]bool
}

// NewBoard creates a new instance of Board
func NewBoard(store BoardStore, logger *zap.Logger) *Board {
	return &Board{
		store:   store,
		logger:  logger,
		outfits: []*domain.Outfit{},
		worn:    map[uuid.UUID]bool{},
	}
}

// Outfits returns the displayed list
func (b *Board) Outfits() []*domain.Outfit {
	return b.outfits
}

// Load replaces the displayed list with the store's truth
func (b *Board) Load(ctx context.Context) error {
	outfits, err := b.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load outfits: %w", err)
	}
	b.outfits = outfits
	return nil
}

// ToggleFavorite flips the flag in the displayed list first, then
// persists it. A failed persist reverts the flip and reloads the whole
// list so the display matches the store again.
func (b *Board) ToggleFavorite(ctx context.Context, id uuid.UUID) error {
	outfit := b.find(id)
	if outfit == nil {
		return fmt.Errorf("outfit %s not on the board", id)
	}

	outfit.IsFavorite = !outfit.IsFavorite

	if err := b.store.SetFavorite(ctx, id, outfit.IsFavorite); err != nil {
		outfit.IsFavorite = !outfit.IsFavorite
		b.logger.Warn("favorite toggle rejected, reloading", zap.String("id", id.String()), zap.Error(err))
		if loadErr := b.Load(ctx); loadErr != nil {
			return fmt.Errorf("toggle failed and reload failed: %w", loadErr)
		}
		return err
	}

	return nil
}

// Delete removes the outfit with a single store call and drops it from
// the displayed list immediately
func (b *Board) Delete(ctx context.Context, id uuid.UUID) error {
	if err := b.store.Delete(ctx, id); err != nil {
		return err
	}

	kept := b.outfits[:0]
	for _, outfit := range b.outfits {
		if outfit.ID != id {
			kept = append(kept, outfit)
		}
	}
	b.outfits = kept
	delete(b.worn, id)
	return nil
}

// MarkWorn flags an outfit as worn today. Display-only state: nothing is
// persisted, and the flag lives only as long as the board.
func (b *Board) MarkWorn(id uuid.UUID) error {
	if b.find(id) == nil {
		return fmt.Errorf("outfit %s not on the board", id)
	}
	b.worn[id] = true
	return nil
}

// WornToday reports whether the outfit was marked worn on this board
func (b *Board) WornToday(id uuid.UUID) bool {
	return b.worn[id]
}

func (b *Board) find(id uuid.UUID) *domain.Outfit {
	for _, outfit := range b.outfits {
		if outfit.ID == id {
			return outfit
		}
	}
	return nil
}
