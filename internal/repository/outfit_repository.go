package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stash/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOutfitNotFound = errors.New("outfit not found")
)

// OutfitUpdate is a partial update payload; nil fields are left unchanged.
type OutfitUpdate struct {
	Name       *string
	Tags       *[]string
	Season     *string
	Year       *int
	IsFavorite *bool
}

// OutfitRepository defines the interface for outfit data access
type OutfitRepository interface {
	Create(ctx context.Context, outfit *domain.Outfit) error
	Update(ctx context.Context, id uuid.UUID, update OutfitUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.Outfit, error)
}

type outfitRepository struct {
	db *sql.DB
}

// NewOutfitRepository creates a new instance of OutfitRepository
func NewOutfitRepository(db *sql.DB) OutfitRepository {
	return &outfitRepository{db: db}
}

// Create inserts the outfit row and one join row per linked item in a single
// transaction: either the outfit and all its links commit together or
// nothing does. A partially-created outfit with zero links cannot occur.
func (r *outfitRepository) Create(ctx context.Context, outfit *domain.Outfit) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin outfit transaction: %w", err)
	}
	defer tx.Rollback()

	tags, err := marshalList(outfit.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	outfitQuery := `
		INSERT INTO outfits (id, name, tags, season, year, is_favorite, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.ExecContext(
		ctx,
		outfitQuery,
		outfit.ID,
		outfit.Name,
		tags,
		outfit.Season,
		outfit.Year,
		outfit.IsFavorite,
		outfit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outfit: %w", err)
	}

	linkQuery := `
		INSERT INTO outfit_items (outfit_id, item_id, position)
		VALUES ($1, $2, $3)
	`
	for position, item := range outfit.Items {
		if _, err := tx.ExecContext(ctx, linkQuery, outfit.ID, item.ID, position); err != nil {
			return fmt.Errorf("failed to link item to outfit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit outfit: %w", err)
	}

	return nil
}

// Update applies only the fields present in the partial payload
func (r *outfitRepository) Update(ctx context.Context, id uuid.UUID, update OutfitUpdate) error {
	setClause := ""
	args := []interface{}{id}
	argIndex := 2

	appendSet := func(column string, value interface{}) {
		if setClause != "" {
			setClause += ", "
		}
		setClause += fmt.Sprintf("%s = $%d", column, argIndex)
		args = append(args, value)
		argIndex++
	}

	if update.Name != nil {
		appendSet("name", *update.Name)
	}
	if update.Tags != nil {
		tags, err := marshalList(*update.Tags)
		if err != nil {
			return fmt.Errorf("failed to encode tags: %w", err)
		}
		appendSet("tags", tags)
	}
	if update.Season != nil {
		appendSet("season", *update.Season)
	}
	if update.Year != nil {
		appendSet("year", *update.Year)
	}
	if update.IsFavorite != nil {
		appendSet("is_favorite", *update.IsFavorite)
	}

	if setClause == "" {
		return nil
	}

	query := fmt.Sprintf("UPDATE outfits SET %s WHERE id = $1", setClause)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update outfit: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOutfitNotFound
	}

	return nil
}

// Delete removes an outfit; its join rows are pruned by ON DELETE CASCADE.
func (r *outfitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM outfits WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete outfit: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOutfitNotFound
	}

	return nil
}

// List retrieves all outfits ordered by creation time, newest first, with
// the outfit_items join resolved into full embedded item snapshots in
// canvas order.
func (r *outfitRepository) List(ctx context.Context) ([]*domain.Outfit, error) {
	query := `
		SELECT o.id, o.name, o.tags, o.season, o.year, o.is_favorite, o.created_at,
		       i.id, i.name, i.category, i.colorway, i.season, i.tags, i.image_url, i.created_at
		FROM outfits o
		LEFT JOIN outfit_items oi ON oi.outfit_id = o.id
		LEFT JOIN items i ON i.id = oi.item_id
		ORDER BY o.created_at DESC, oi.position ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list outfits: %w", err)
	}
	defer rows.Close()

	outfits := []*domain.Outfit{}
	byID := map[uuid.UUID]*domain.Outfit{}

	for rows.Next() {
		outfit := &domain.Outfit{}
		var outfitTags []byte
		var itemID sql.NullString
		var itemName, itemCategory, itemColorway, itemImageURL sql.NullString
		var itemSeason, itemTags []byte
		var itemCreatedAt sql.NullTime

		err := rows.Scan(
			&outfit.ID,
			&outfit.Name,
			&outfitTags,
			&outfit.Season,
			&outfit.Year,
			&outfit.IsFavorite,
			&outfit.CreatedAt,
			&itemID,
			&itemName,
			&itemCategory,
			&itemColorway,
			&itemSeason,
			&itemTags,
			&itemImageURL,
			&itemCreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outfit: %w", err)
		}

		existing, seen := byID[outfit.ID]
		if !seen {
			if outfit.Tags, err = unmarshalList(outfitTags); err != nil {
				return nil, fmt.Errorf("failed to decode outfit tags: %w", err)
			}
			outfit.Items = []domain.WardrobeItem{}
			byID[outfit.ID] = outfit
			outfits = append(outfits, outfit)
			existing = outfit
		}

		if !itemID.Valid {
			continue
		}

		id, err := uuid.Parse(itemID.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse linked item id: %w", err)
		}

		item := domain.WardrobeItem{
			ID:        id,
			Name:      itemName.String,
			Category:  itemCategory.String,
			Colorway:  itemColorway.String,
			ImageURL:  itemImageURL.String,
			CreatedAt: itemCreatedAt.Time,
		}
		if item.Season, err = unmarshalList(itemSeason); err != nil {
			return nil, fmt.Errorf("failed to decode item season: %w", err)
		}
		if item.Tags, err = unmarshalList(itemTags); err != nil {
			return nil, fmt.Errorf("failed to decode item tags: %w", err)
		}

		existing.Items = append(existing.Items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outfits: %w", err)
	}

	return outfits, nil
}
