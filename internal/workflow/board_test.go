package workflow

import (
	"context"
	"errors"
	"testing"

	"stash/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeBoardStore struct {
	outfits     map[uuid.UUID]*domain.Outfit
	favoriteErr error
	deleteCalls []uuid.UUID
	deleteErr   error
}

func newFakeBoardStore(outfits ...*domain.Outfit) *fakeBoardStore {
	store := &fakeBoardStore{outfits: make(map[uuid.UUID]*domain.Outfit)}
	for _, outfit := range outfits {
		store.outfits[outfit.ID] = outfit
	}
	return store
}

func (f *fakeBoardStore) List(ctx context.Context) ([]*domain.Outfit, error) {
	out := []*domain.Outfit{}
	for _, outfit := range f.outfits {
		copied := *outfit
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeBoardStore) SetFavorite(ctx context.Context, id uuid.UUID, favorite bool) error {
	if f.favoriteErr != nil {
		return f.favoriteErr
	}
	outfit, exists := f.outfits[id]
	if !exists {
		return errors.New("not found")
	}
	outfit.IsFavorite = favorite
	return nil
}

func (f *fakeBoardStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.deleteCalls = append(f.deleteCalls, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.outfits, id)
	return nil
}

func boardOutfit(name string) *domain.Outfit {
	return &domain.Outfit{ID: uuid.New(), Name: name, Tags: []string{}, Season: "Any", Year: 2026}
}

func TestBoard_ToggleFavoritePersists(t *testing.T) {
	outfit := boardOutfit("Look A")
	store := newFakeBoardStore(outfit)
	board := NewBoard(store, zap.NewNop())
	ctx := context.Background()

	if err := board.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := board.ToggleFavorite(ctx, outfit.ID); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}

	if !store.outfits[outfit.ID].IsFavorite {
		t.Error("favorite flag not persisted")
	}
	if !board.Outfits()[0].IsFavorite {
		t.Error("displayed list not flipped")
	}
}

func TestBoard_ToggleFavoriteRevertsAndReloadsOnFailure(t *testing.T) {
	outfit := boardOutfit("Look B")
	store := newFakeBoardStore(outfit)
	board := NewBoard(store, zap.NewNop())
	ctx := context.Background()

	if err := board.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	store.favoriteErr = errors.New("backend rejected update")
	if err := board.ToggleFavorite(ctx, outfit.ID); err == nil {
		t.Fatal("expected toggle failure")
	}

	// After revert + reload the display matches the store exactly
	displayed := board.Outfits()
	if len(displayed) != 1 {
		t.Fatalf("display size = %d", len(displayed))
	}
	if displayed[0].IsFavorite != store.outfits[outfit.ID].IsFavorite {
		t.Error("display diverged from store after failed toggle")
	}
	if displayed[0].IsFavorite {
		t.Error("optimistic flip not reverted")
	}
}

func TestBoard_DeleteRemovesImmediatelyWithOneStoreCall(t *testing.T) {
	kept := boardOutfit("Keep")
	doomed := boardOutfit("Doomed")
	store := newFakeBoardStore(kept, doomed)
	board := NewBoard(store, zap.NewNop())
	ctx := context.Background()

	if err := board.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := board.Delete(ctx, doomed.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if len(store.deleteCalls) != 1 || store.deleteCalls[0] != doomed.ID {
		t.Errorf("expected exactly one store delete for %s, got %v", doomed.ID, store.deleteCalls)
	}

	displayed := board.Outfits()
	if len(displayed) != 1 || displayed[0].ID != kept.ID {
		t.Errorf("displayed list wrong after delete: %v", displayed)
	}
}

func TestBoard_MarkWornIsDisplayOnlyState(t *testing.T) {
	outfit := boardOutfit("Look C")
	store := newFakeBoardStore(outfit)
	board := NewBoard(store, zap.NewNop())
	ctx := context.Background()

	if err := board.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if board.WornToday(outfit.ID) {
		t.Error("outfit must start unworn")
	}
	if err := board.MarkWorn(outfit.ID); err != nil {
		t.Fatalf("MarkWorn failed: %v", err)
	}
	if !board.WornToday(outfit.ID) {
		t.Error("worn flag not set")
	}

	// Unknown outfits cannot be marked
	if err := board.MarkWorn(uuid.New()); err == nil {
		t.Error("expected error for outfit not on the board")
	}

	// Deleting the outfit drops its worn flag
	if err := board.Delete(ctx, outfit.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if board.WornToday(outfit.ID) {
		t.Error("worn flag must not outlive the outfit")
	}
}

func TestBoard_DeleteFailureKeepsDisplay(t *testing.T) {
	outfit := boardOutfit("Sticky")
	store := newFakeBoardStore(outfit)
	board := NewBoard(store, zap.NewNop())
	ctx := context.Background()

	if err := board.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	store.deleteErr = errors.New("backend down")
	if err := board.Delete(ctx, outfit.ID); err == nil {
		t.Fatal("expected delete failure")
	}
	if len(board.Outfits()) != 1 {
		t.Error("failed delete must keep the outfit displayed")
	}
}
