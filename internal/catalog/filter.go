package catalog

import (
	"sort"
	"strings"

	"stash/internal/domain"
)

// AllFilter is the implicit first option in the outfit tag filter list.
const AllFilter = "All"

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// SearchItems filters items by case-insensitive substring match on name and
// category. Used by the home browsing list.
func SearchItems(items []domain.WardrobeItem, query string) []domain.WardrobeItem {
	matched := []domain.WardrobeItem{}
	for _, item := range items {
		if containsFold(item.Name, query) || containsFold(item.Category, query) {
			matched = append(matched, item)
		}
	}
	return matched
}

// SearchInventory filters items by substring match on name, category, and
// tags. Used by the full-inventory view.
func SearchInventory(items []domain.WardrobeItem, query string) []domain.WardrobeItem {
	matched := []domain.WardrobeItem{}
	for _, item := range items {
		if containsFold(item.Name, query) || containsFold(item.Category, query) || anyTagContains(item.Tags, query) {
			matched = append(matched, item)
		}
	}
	return matched
}

// FilterByCategory returns the items whose stored category falls into the
// given canonical bucket, legacy spellings included.
func FilterByCategory(items []domain.WardrobeItem, bucket string) []domain.WardrobeItem {
	matched := []domain.WardrobeItem{}
	for _, item := range items {
		if InCategory(item.Category, bucket) {
			matched = append(matched, item)
		}
	}
	return matched
}

// SearchOutfits filters outfits by substring match on name and tags, plus an
// optional exact-match tag filter. Passing AllFilter (or "") as tagFilter
// disables the tag filter.
func SearchOutfits(outfits []domain.Outfit, query, tagFilter string) []domain.Outfit {
	matched := []domain.Outfit{}
	for _, outfit := range outfits {
		if tagFilter != "" && tagFilter != AllFilter && !hasTag(outfit.Tags, tagFilter) {
			continue
		}
		if containsFold(outfit.Name, query) || anyTagContains(outfit.Tags, query) {
			matched = append(matched, outfit)
		}
	}
	return matched
}

// FilterOptions derives the outfit tag filter vocabulary: the sorted set of
// distinct tags across all outfits, with AllFilter first.
func FilterOptions(outfits []domain.Outfit) []string {
	seen := map[string]bool{}
	for _, outfit := range outfits {
		for _, tag := range outfit.Tags {
			seen[tag] = true
		}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return append([]string{AllFilter}, tags...)
}

func anyTagContains(tags []string, query string) bool {
	for _, tag := range tags {
		if containsFold(tag, query) {
			return true
		}
	}
	return false
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}
