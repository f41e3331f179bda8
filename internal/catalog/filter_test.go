package catalog

import (
	"reflect"
	"testing"

	"stash/internal/domain"

	"github.com/google/uuid"
)

func fixtureItems() []domain.WardrobeItem {
	specs := []struct {
		name     string
		category string
		tags     []string
	}{
		{"Basic Tee", "T-Shirts", []string{"Cotton", "Essential"}},
		{"Slim Jeans", "Jeans", []string{"Denim", "Stretch"}},
		{"Biker Jacket", "Jackets", []string{"Leather", "Edgy"}},
		{"Retro Logo Tee", "T-Shirts", []string{"Graphic", "Vintage"}},
		{"Mom Jeans", "Jeans", []string{"Relaxed", "90s"}},
		{"Summer Sundress", "Dresses", []string{"Flowy", "Cute"}},
		{"Denim Jacket", "Jackets", []string{"Layering", "Rugged"}},
	}

	items := make([]domain.WardrobeItem, len(specs))
	for i, s := range specs {
		items[i] = domain.WardrobeItem{
			ID:       uuid.New(),
			Name:     s.name,
			Category: s.category,
			Tags:     s.tags,
		}
	}
	return items
}

func TestNormalizeCategoryMapsSynonymsToCanonicalBuckets(t *testing.T) {
	canonical := map[string]bool{
		CategoryTops:    true,
		CategoryBottoms: true,
		CategoryOuter:   true,
		CategoryDresses: true,
	}

	for spelling := range categorySynonyms {
		got := NormalizeCategory(spelling)
		if !canonical[got] {
			t.Errorf("NormalizeCategory(%q) = %q, not a canonical bucket", spelling, got)
		}
	}

	// Case-insensitive on input.
	if got := NormalizeCategory("JEANS"); got != CategoryBottoms {
		t.Errorf("NormalizeCategory(JEANS) = %q, want %q", got, CategoryBottoms)
	}
}

func TestNormalizeCategoryPassesUnmappedThrough(t *testing.T) {
	for _, category := range []string{"Accessories", "Hats", ""} {
		if got := NormalizeCategory(category); got != category {
			t.Errorf("NormalizeCategory(%q) = %q, want unchanged", category, got)
		}
	}
}

func TestSearchItemsMatchesNameSubstring(t *testing.T) {
	items := fixtureItems()

	got := SearchItems(items, "jean")
	want := []string{"Slim Jeans", "Mom Jeans"}

	if len(got) != len(want) {
		t.Fatalf("SearchItems(jean) returned %d items, want %d", len(got), len(want))
	}
	for i, item := range got {
		if item.Name != want[i] {
			t.Errorf("SearchItems(jean)[%d] = %q, want %q", i, item.Name, want[i])
		}
	}
}

func TestSearchItemsEmptyQueryReturnsAll(t *testing.T) {
	items := fixtureItems()
	if got := SearchItems(items, ""); len(got) != len(items) {
		t.Errorf("SearchItems with empty query returned %d items, want %d", len(got), len(items))
	}
}

func TestSearchInventoryMatchesTags(t *testing.T) {
	items := fixtureItems()

	got := SearchInventory(items, "leather")
	if len(got) != 1 || got[0].Name != "Biker Jacket" {
		t.Errorf("SearchInventory(leather) = %v, want [Biker Jacket]", names(got))
	}
}

func TestFilterByCategoryGroupsLegacySpellings(t *testing.T) {
	items := fixtureItems()

	cases := []struct {
		bucket string
		want   int
	}{
		{"Tops", 2},
		{"Bottoms", 2},
		{"Outer", 2},
		{"Dresses", 1},
		// Legacy spelling as the bucket name resolves the same way.
		{"Jeans", 2},
	}

	for _, tc := range cases {
		if got := FilterByCategory(items, tc.bucket); len(got) != tc.want {
			t.Errorf("FilterByCategory(%q) returned %d items, want %d", tc.bucket, len(got), tc.want)
		}
	}
}

func TestFilterOptionsSortedWithAllFirst(t *testing.T) {
	outfits := []domain.Outfit{
		{Name: "Monday Minimalist", Tags: []string{"Work", "Essential"}},
		{Name: "Weekend Chill", Tags: []string{"Casual"}},
	}

	got := FilterOptions(outfits)
	want := []string{"All", "Casual", "Essential", "Work"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterOptions = %v, want %v", got, want)
	}
}

func TestFilterOptionsNoOutfits(t *testing.T) {
	got := FilterOptions(nil)
	if !reflect.DeepEqual(got, []string{"All"}) {
		t.Errorf("FilterOptions(nil) = %v, want [All]", got)
	}
}

func TestSearchOutfitsExactTagFilter(t *testing.T) {
	outfits := []domain.Outfit{
		{Name: "Monday Minimalist", Tags: []string{"Work", "Essential"}},
		{Name: "Weekend Chill", Tags: []string{"Casual"}},
	}

	got := SearchOutfits(outfits, "", "Casual")
	if len(got) != 1 || got[0].Name != "Weekend Chill" {
		t.Errorf("SearchOutfits tag filter Casual returned wrong set: %v", outfitNames(got))
	}

	// The tag filter is exact, not substring.
	if got := SearchOutfits(outfits, "", "Casu"); len(got) != 0 {
		t.Errorf("partial tag filter should match nothing, got %v", outfitNames(got))
	}

	// AllFilter disables the tag filter.
	if got := SearchOutfits(outfits, "", AllFilter); len(got) != 2 {
		t.Errorf("All filter returned %d outfits, want 2", len(got))
	}
}

func TestSearchOutfitsQueryMatchesNameAndTags(t *testing.T) {
	outfits := []domain.Outfit{
		{Name: "Monday Minimalist", Tags: []string{"Work", "Essential"}},
		{Name: "Weekend Chill", Tags: []string{"Casual"}},
	}

	if got := SearchOutfits(outfits, "chill", AllFilter); len(got) != 1 {
		t.Errorf("SearchOutfits(chill) returned %d outfits, want 1", len(got))
	}
	if got := SearchOutfits(outfits, "work", AllFilter); len(got) != 1 {
		t.Errorf("SearchOutfits(work) returned %d outfits, want 1", len(got))
	}
}

func names(items []domain.WardrobeItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}

func outfitNames(outfits []domain.Outfit) []string {
	out := make([]string, len(outfits))
	for i, o := range outfits {
		out[i] = o.Name
	}
	return out
}
