package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"stash/internal/ai"
	"stash/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxCanvasItems bounds the composition canvas.
const MaxCanvasItems = 4

// MaxReviewTags bounds the AI-proposed tag list.
const MaxReviewTags = 3

var (
	ErrCanvasFull    = errors.New("canvas already holds the maximum number of items")
	ErrCanvasEmpty   = errors.New("canvas is empty")
	ErrNoSuggestion  = errors.New("stylist could not suggest a combination from this inventory")
	ErrNotInReview   = errors.New("no review in progress")
	ErrBadCanvasSlot = errors.New("no item at that canvas position")
)

// Stylist is the slice of the AI client the composer needs.
type Stylist interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// OutfitSaver persists a finalized composition.
type OutfitSaver interface {
	Create(ctx context.Context, name string, items []domain.WardrobeItem, tags []string, season string, year int) (*domain.Outfit, error)
}

// Review holds the editable name and tags of a composition awaiting save.
type Review struct {
	Name string
	Tags []string
}

// Composer drives one outfit-building session over a fixed inventory
// snapshot. Not safe for concurrent use.
type Composer struct {
	inventory []domain.WardrobeItem
	stylist   Stylist
	logger    *zap.Logger

	canvas []domain.WardrobeItem
	review *Review
}

// NewComposer creates a new instance of Composer over the given inventory
func NewComposer(inventory []domain.WardrobeItem, stylist Stylist, logger *zap.Logger) *Composer {
	return &Composer{
		inventory: inventory,
		stylist:   stylist,
		logger:    logger,
		canvas:    []domain.WardrobeItem{},
	}
}

// Canvas returns a copy of the current canvas in order
func (c *Composer) Canvas() []domain.WardrobeItem {
	out := make([]domain.WardrobeItem, len(c.canvas))
	copy(out, c.canvas)
	return out
}

// Add appends an item to the canvas. Duplicates are allowed; a full
// canvas rejects the add.
func (c *Composer) Add(item domain.WardrobeItem) error {
	if len(c.canvas) >= MaxCanvasItems {
		return ErrCanvasFull
	}
	c.canvas = append(c.canvas, item)
	return nil
}

// Remove drops the item at the given canvas position
func (c *Composer) Remove(index int) error {
	if index < 0 || index >= len(c.canvas) {
		return ErrBadCanvasSlot
	}
	c.canvas = append(c.canvas[:index], c.canvas[index+1:]...)
	return nil
}

// Clear empties the canvas
func (c *Composer) Clear() {
	c.canvas = []domain.WardrobeItem{}
}

// Suggest asks the stylist for a 2-4 item combination from the inventory
// and replaces the canvas with it. Unknown ids in the reply are silently
// dropped; if nothing valid remains the canvas is left untouched and the
// caller gets ErrNoSuggestion.
func (c *Composer) Suggest(ctx context.Context) error {
	if len(c.inventory) == 0 {
		return ErrNoSuggestion
	}

	var sb strings.Builder
	sb.WriteString("You are a fashion stylist. From the wardrobe below, pick a combination of 2 to 4 items that work together as one outfit.\n")
	sb.WriteString("Reply with a JSON object: {\"outfitName\": string, \"itemIds\": [string], \"styleReason\": string}.\n\nWardrobe:\n")
	for _, item := range c.inventory {
		fmt.Fprintf(&sb, "- id=%s name=%q tags=%s\n", item.ID, item.Name, strings.Join(item.Tags, ","))
	}

	reply, err := c.stylist.GenerateJSON(ctx, sb.String())
	if err != nil {
		return fmt.Errorf("suggestion call failed: %w", err)
	}

	raw, found := ai.ExtractJSON(reply)
	if !found {
		return ErrNoSuggestion
	}

	var suggestion ai.OutfitSuggestion
	if err := json.Unmarshal([]byte(raw), &suggestion); err != nil {
		return ErrNoSuggestion
	}

	byID := make(map[uuid.UUID]domain.WardrobeItem, len(c.inventory))
	for _, item := range c.inventory {
		byID[item.ID] = item
	}

	picked := []domain.WardrobeItem{}
	for _, rawID := range suggestion.ItemIDs {
		id, err := uuid.Parse(rawID)
		if err != nil {
			continue
		}
		item, known := byID[id]
		if !known {
			continue
		}
		picked = append(picked, item)
		if len(picked) == MaxCanvasItems {
			break
		}
	}

	if len(picked) == 0 {
		return ErrNoSuggestion
	}

	c.canvas = picked
	c.logger.Info("stylist suggestion applied",
		zap.Int("items", len(picked)),
		zap.String("reason", suggestion.StyleReason))
	return nil
}

// StartReview asks the stylist to name the composition and propose up to
// three tags, preferring tags already used on saved outfits. A failed or
// unusable reply falls back to a generated name so review always opens.
func (c *Composer) StartReview(ctx context.Context, existingTags []string) (*Review, error) {
	if len(c.canvas) == 0 {
		return nil, ErrCanvasEmpty
	}

	review := &Review{
		Name: fmt.Sprintf("Look #%d", rand.Intn(1000)),
		Tags: []string{"Custom", "Style"},
	}

	names := make([]string, 0, len(c.canvas))
	for _, item := range c.canvas {
		names = append(names, item.Name)
	}

	var sb strings.Builder
	sb.WriteString("Name this outfit and give it at most 3 short style tags.\n")
	sb.WriteString("Reply with a JSON object: {\"name\": string, \"tags\": [string]}.\n")
	if len(existingTags) > 0 {
		fmt.Fprintf(&sb, "Prefer reusing these existing tags where they fit: %s.\n", strings.Join(existingTags, ", "))
	}
	fmt.Fprintf(&sb, "Items: %s.\n", strings.Join(names, ", "))

	reply, err := c.stylist.GenerateJSON(ctx, sb.String())
	if err != nil {
		c.logger.Warn("naming call failed, using fallback", zap.Error(err))
		c.review = review
		return review, nil
	}

	raw, found := ai.ExtractJSON(reply)
	if found {
		var naming ai.OutfitNaming
		if err := json.Unmarshal([]byte(raw), &naming); err == nil {
			if naming.Name != "" {
				review.Name = naming.Name
			}
			if len(naming.Tags) > 0 {
				if len(naming.Tags) > MaxReviewTags {
					naming.Tags = naming.Tags[:MaxReviewTags]
				}
				review.Tags = naming.Tags
			}
		}
	}

	c.review = review
	return review, nil
}

// ReviewState returns the open review, if any
func (c *Composer) ReviewState() (*Review, bool) {
	if c.review == nil {
		return nil, false
	}
	return c.review, true
}

// Rename sets the review name
func (c *Composer) Rename(name string) error {
	if c.review == nil {
		return ErrNotInReview
	}
	c.review.Name = name
	return nil
}

// AddTag upper-cases the tag and appends it unless an equivalent tag is
// already present
func (c *Composer) AddTag(tag string) error {
	if c.review == nil {
		return ErrNotInReview
	}

	tag = strings.ToUpper(strings.TrimSpace(tag))
	if tag == "" {
		return nil
	}
	for _, existing := range c.review.Tags {
		if strings.EqualFold(existing, tag) {
			return nil
		}
	}
	c.review.Tags = append(c.review.Tags, tag)
	return nil
}

// RemoveTag drops the tag at the given position
func (c *Composer) RemoveTag(index int) error {
	if c.review == nil {
		return ErrNotInReview
	}
	if index < 0 || index >= len(c.review.Tags) {
		return ErrBadCanvasSlot
	}
	c.review.Tags = append(c.review.Tags[:index], c.review.Tags[index+1:]...)
	return nil
}

// Finalize commits the reviewed composition. A failed save keeps the
// review open so the user can retry; success resets the session.
func (c *Composer) Finalize(ctx context.Context, saver OutfitSaver) (*domain.Outfit, error) {
	if c.review == nil {
		return nil, ErrNotInReview
	}

	outfit, err := saver.Create(ctx, c.review.Name, c.Canvas(), c.review.Tags, "", 0)
	if err != nil {
		return nil, err
	}

	c.review = nil
	c.Clear()
	return outfit, nil
}
