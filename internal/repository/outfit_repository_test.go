package repository

import (
	"context"
	"testing"
	"time"

	"stash/internal/domain"

	"github.com/google/uuid"
)

func createOutfitFixture(t *testing.T, itemNames ...string) (*domain.Outfit, func()) {
	t.Helper()

	itemRepo := NewItemRepository(testDB)
	outfitRepo := NewOutfitRepository(testDB)
	ctx := context.Background()

	items := make([]domain.WardrobeItem, 0, len(itemNames))
	for _, name := range itemNames {
		item := newTestItem(name, "Tops")
		if err := itemRepo.Create(ctx, item); err != nil {
			t.Fatalf("Create item failed: %v", err)
		}
		items = append(items, *item)
	}

	outfit := &domain.Outfit{
		ID:        uuid.New(),
		Name:      "Weekend Look",
		Items:     items,
		Tags:      []string{"Casual"},
		Season:    "Any",
		Year:      2026,
		CreatedAt: time.Now(),
	}
	if err := outfitRepo.Create(ctx, outfit); err != nil {
		t.Fatalf("Create outfit failed: %v", err)
	}

	cleanup := func() {
		testDB.Exec("DELETE FROM outfits WHERE id = $1", outfit.ID)
		for _, it := range items {
			testDB.Exec("DELETE FROM items WHERE id = $1", it.ID)
		}
	}
	return outfit, cleanup
}

func TestOutfitRepository_CreateResolvesItemsInOrder(t *testing.T) {
	outfit, cleanup := createOutfitFixture(t, "First", "Second", "Third")
	defer cleanup()

	repo := NewOutfitRepository(testDB)
	outfits, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	var found *domain.Outfit
	for _, o := range outfits {
		if o.ID == outfit.ID {
			found = o
			break
		}
	}
	if found == nil {
		t.Fatal("created outfit missing from List")
	}

	if len(found.Items) != 3 {
		t.Fatalf("expected 3 resolved items, got %d", len(found.Items))
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if found.Items[i].Name != want {
			t.Errorf("canvas order lost at position %d: got %q, want %q", i, found.Items[i].Name, want)
		}
	}
	if len(found.Tags) != 1 || found.Tags[0] != "Casual" {
		t.Errorf("tags round trip failed: got %v", found.Tags)
	}
}

func TestOutfitRepository_CreateRollsBackOnBadItemLink(t *testing.T) {
	repo := NewOutfitRepository(testDB)
	ctx := context.Background()

	outfit := &domain.Outfit{
		ID:        uuid.New(),
		Name:      "Broken Look",
		Items:     []domain.WardrobeItem{{ID: uuid.New()}}, // no such item row
		Season:    "Any",
		Year:      2026,
		CreatedAt: time.Now(),
	}

	if err := repo.Create(ctx, outfit); err == nil {
		t.Fatal("expected FK violation to fail the create")
	}

	// The outfit row must not survive a failed link insert
	var count int
	if err := testDB.QueryRow("SELECT COUNT(*) FROM outfits WHERE id = $1", outfit.ID).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("outfit row leaked from rolled-back transaction")
	}
}

func TestOutfitRepository_FavoriteUpdate(t *testing.T) {
	outfit, cleanup := createOutfitFixture(t, "Solo")
	defer cleanup()

	repo := NewOutfitRepository(testDB)
	ctx := context.Background()

	favorite := true
	if err := repo.Update(ctx, outfit.ID, OutfitUpdate{IsFavorite: &favorite}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	outfits, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, o := range outfits {
		if o.ID == outfit.ID {
			if !o.IsFavorite {
				t.Error("favorite flag not persisted")
			}
			if o.Name != outfit.Name {
				t.Errorf("name changed by favorite update: got %q", o.Name)
			}
			return
		}
	}
	t.Fatal("outfit missing from List")
}

func TestOutfitRepository_UpdateUnknownOutfit(t *testing.T) {
	repo := NewOutfitRepository(testDB)

	favorite := true
	err := repo.Update(context.Background(), uuid.New(), OutfitUpdate{IsFavorite: &favorite})
	if err != ErrOutfitNotFound {
		t.Errorf("expected ErrOutfitNotFound, got %v", err)
	}
}

func TestOutfitRepository_DeleteCascadesLinks(t *testing.T) {
	outfit, cleanup := createOutfitFixture(t, "Linked")
	defer cleanup()

	repo := NewOutfitRepository(testDB)
	if err := repo.Delete(context.Background(), outfit.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var count int
	if err := testDB.QueryRow("SELECT COUNT(*) FROM outfit_items WHERE outfit_id = $1", outfit.ID).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("outfit_items rows survived cascade delete")
	}
}

func TestOutfitRepository_ItemDeletePrunesLinkButKeepsOutfit(t *testing.T) {
	outfit, cleanup := createOutfitFixture(t, "Keep", "Drop")
	defer cleanup()

	itemRepo := NewItemRepository(testDB)
	outfitRepo := NewOutfitRepository(testDB)
	ctx := context.Background()

	if err := itemRepo.Delete(ctx, outfit.Items[1].ID); err != nil {
		t.Fatalf("item Delete failed: %v", err)
	}

	outfits, err := outfitRepo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, o := range outfits {
		if o.ID == outfit.ID {
			if len(o.Items) != 1 || o.Items[0].Name != "Keep" {
				t.Errorf("expected only the surviving item, got %v", o.Items)
			}
			return
		}
	}
	t.Fatal("outfit should survive deletion of a linked item")
}
