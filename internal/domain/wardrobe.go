package domain

import (
	"time"

	"github.com/google/uuid"
)

// WardrobeItem represents a single catalogued garment.
//
// A draft item produced by the capture workflow carries a zero ID and may
// hold a transient data URL in ImageURL. Persisted items always have a
// server-assigned ID and a durable remote ImageURL.
type WardrobeItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Category  string    `json:"category" db:"category"`
	Colorway  string    `json:"colorway" db:"colorway"`
	Season    []string  `json:"season" db:"season"`
	Tags      []string  `json:"tags" db:"tags"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsDraft reports whether the item has not yet been persisted.
func (i *WardrobeItem) IsDraft() bool {
	return i.ID == uuid.Nil
}

// Outfit represents a saved combination of wardrobe items.
//
// Items holds resolved snapshots for display; persistence stores only the
// identity links in the outfit_items join table.
type Outfit struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	Name       string         `json:"name" db:"name"`
	Items      []WardrobeItem `json:"items"`
	Tags       []string       `json:"tags" db:"tags"`
	Season     string         `json:"season" db:"season"`
	Year       int            `json:"year" db:"year"`
	IsFavorite bool           `json:"is_favorite" db:"is_favorite"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}
