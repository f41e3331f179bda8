package ai

import (
	"encoding/json"
	"strings"
)

// Default classification fields used when the reply omits them.
const (
	DefaultName     = "New Drop"
	DefaultCategory = "Tops"
	DefaultColorway = "Default"
)

// DefaultTags is the fallback tag set for an unclassifiable garment.
func DefaultTags() []string { return []string{"Fresh"} }

// Classification holds the structured fields extracted from a garment
// analysis reply.
type Classification struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Colorway string   `json:"colorway"`
	Tags     []string `json:"tags"`

	// Some replies label the tag list style_tags instead.
	StyleTags []string `json:"style_tags"`
}

// ParseStatus tags how a classification was obtained.
type ParseStatus int

const (
	// ParseOK means every field came from the reply.
	ParseOK ParseStatus = iota
	// ParseDefaulted means one or more fields were substituted because the
	// reply was missing, malformed, or incomplete.
	ParseDefaulted
)

// ParseResult is a classification plus the provenance tag every consumer
// must check: a Defaulted result is usable but not trustworthy.
type ParseResult struct {
	Fields Classification
	Status ParseStatus
	Reason string
}

// ExtractJSON pulls the first JSON object embedded in free text, matching
// from the first opening brace to the last closing one. The reply format is
// not contractually guaranteed, so this is deliberately permissive.
func ExtractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// ParseClassification extracts classification fields from a free-text reply,
// defaulting each field individually when absent. It never fails: a fully
// unusable reply yields an all-defaults result tagged ParseDefaulted.
func ParseClassification(text string) ParseResult {
	result := ParseResult{
		Fields: Classification{
			Name:     DefaultName,
			Category: DefaultCategory,
			Colorway: DefaultColorway,
			Tags:     DefaultTags(),
		},
	}

	raw, found := ExtractJSON(text)
	if !found {
		result.Status = ParseDefaulted
		result.Reason = "no JSON object in reply"
		return result
	}

	var parsed Classification
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		result.Status = ParseDefaulted
		result.Reason = "embedded JSON did not parse: " + err.Error()
		return result
	}

	var missing []string
	if parsed.Name != "" {
		result.Fields.Name = parsed.Name
	} else {
		missing = append(missing, "name")
	}
	if parsed.Category != "" {
		result.Fields.Category = parsed.Category
	} else {
		missing = append(missing, "category")
	}
	if parsed.Colorway != "" {
		result.Fields.Colorway = parsed.Colorway
	} else {
		missing = append(missing, "colorway")
	}

	switch {
	case len(parsed.StyleTags) > 0:
		result.Fields.Tags = parsed.StyleTags
	case len(parsed.Tags) > 0:
		result.Fields.Tags = parsed.Tags
	default:
		missing = append(missing, "tags")
	}

	if len(missing) > 0 {
		result.Status = ParseDefaulted
		result.Reason = "missing fields: " + strings.Join(missing, ", ")
	}
	return result
}

// OutfitSuggestion is the reply shape for the stylist suggestion call.
type OutfitSuggestion struct {
	OutfitName  string   `json:"outfitName"`
	ItemIDs     []string `json:"itemIds"`
	StyleReason string   `json:"styleReason"`
}

// OutfitNaming is the reply shape for the outfit naming call.
type OutfitNaming struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}
