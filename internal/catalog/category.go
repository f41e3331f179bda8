package catalog

import "strings"

// Canonical category buckets. All legacy spellings normalize into this set.
const (
	CategoryTops    = "Tops"
	CategoryBottoms = "Bottoms"
	CategoryOuter   = "Outer"
	CategoryDresses = "Dresses"
)

// categorySynonyms maps lowercase legacy category spellings to their
// canonical bucket. Spellings not listed here pass through unchanged.
var categorySynonyms = map[string]string{
	"tops":     CategoryTops,
	"top":      CategoryTops,
	"t-shirts": CategoryTops,
	"t-shirt":  CategoryTops,
	"shirts":   CategoryTops,
	"shirt":    CategoryTops,
	"blouse":   CategoryTops,
	"sweater":  CategoryTops,

	"bottoms":  CategoryBottoms,
	"bottom":   CategoryBottoms,
	"jeans":    CategoryBottoms,
	"pants":    CategoryBottoms,
	"shorts":   CategoryBottoms,
	"skirt":    CategoryBottoms,
	"trousers": CategoryBottoms,

	"outer":    CategoryOuter,
	"jackets":  CategoryOuter,
	"jacket":   CategoryOuter,
	"coat":     CategoryOuter,
	"cardigan": CategoryOuter,
	"blazer":   CategoryOuter,

	"dresses": CategoryDresses,
	"dress":   CategoryDresses,
	"gown":    CategoryDresses,
}

// NormalizeCategory maps a stored category string to its canonical bucket.
// Unmapped categories are returned as-is so nothing gets lost on display.
func NormalizeCategory(category string) string {
	if canonical, ok := categorySynonyms[strings.ToLower(category)]; ok {
		return canonical
	}
	return category
}

// InCategory reports whether a stored category string belongs to the given
// bucket, accepting both canonical and legacy spellings for the bucket name.
func InCategory(category, bucket string) bool {
	return strings.EqualFold(NormalizeCategory(category), NormalizeCategory(bucket))
}
