package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"stash/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrItemNotFound = errors.New("item not found")
)

// ItemUpdate is a partial update payload; nil fields are left unchanged.
type ItemUpdate struct {
	Name     *string
	Category *string
	Colorway *string
	Season   *[]string
	Tags     *[]string
	ImageURL *string
}

// ItemRepository defines the interface for wardrobe item data access
type ItemRepository interface {
	Create(ctx context.Context, item *domain.WardrobeItem) error
	Update(ctx context.Context, id uuid.UUID, update ItemUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.WardrobeItem, error)
	List(ctx context.Context) ([]*domain.WardrobeItem, error)
}

type itemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new instance of ItemRepository
func NewItemRepository(db *sql.DB) ItemRepository {
	return &itemRepository{db: db}
}

// Season and tag lists are stored as JSONB columns so the wire record shape
// stays driver-agnostic.
func marshalList(list []string) ([]byte, error) {
	if list == nil {
		list = []string{}
	}
	return json.Marshal(list)
}

func unmarshalList(raw []byte) ([]string, error) {
	list := []string{}
	if len(raw) == 0 {
		return list, nil
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Create inserts a new item into the database using parameterized queries
func (r *itemRepository) Create(ctx context.Context, item *domain.WardrobeItem) error {
	query := `
		INSERT INTO items (id, name, category, colorway, season, tags, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	season, err := marshalList(item.Season)
	if err != nil {
		return fmt.Errorf("failed to encode season: %w", err)
	}
	tags, err := marshalList(item.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	_, err = r.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.Name,
		item.Category,
		item.Colorway,
		season,
		tags,
		item.ImageURL,
		item.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

// Update applies only the fields present in the partial payload; omitted
// fields are left unchanged server-side.
func (r *itemRepository) Update(ctx context.Context, id uuid.UUID, update ItemUpdate) error {
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
	if update.Category != nil {
		appendSet("category", *update.Category)
	}
	if update.Colorway != nil {
		appendSet("colorway", *update.Colorway)
	}
	if update.Season != nil {
		season, err := marshalList(*update.Season)
		if err != nil {
			return fmt.Errorf("failed to encode season: %w", err)
		}
		appendSet("season", season)
	}
	if update.Tags != nil {
		tags, err := marshalList(*update.Tags)
		if err != nil {
			return fmt.Errorf("failed to encode tags: %w", err)
		}
		appendSet("tags", tags)
	}
	if update.ImageURL != nil {
		appendSet("image_url", *update.ImageURL)
	}

	if setClause == "" {
		return nil
	}

	query := fmt.Sprintf("UPDATE items SET %s WHERE id = $1", setClause)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrItemNotFound
	}

	return nil
}

// Delete removes an item. Outfit links referencing it are pruned by the
// schema's ON DELETE CASCADE.
func (r *itemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM items WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrItemNotFound
	}

	return nil
}

func scanItem(scan func(dest ...interface{}) error) (*domain.WardrobeItem, error) {
	item := &domain.WardrobeItem{}
	var season, tags []byte

	if err := scan(
		&item.ID,
		&item.Name,
		&item.Category,
		&item.Colorway,
		&season,
		&tags,
		&item.ImageURL,
		&item.CreatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if item.Season, err = unmarshalList(season); err != nil {
		return nil, fmt.Errorf("failed to decode season: %w", err)
	}
	if item.Tags, err = unmarshalList(tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}

	return item, nil
}

// FindByID retrieves an item by ID. Callers treat ErrItemNotFound as a
// navigation-redirect condition, not a fatal error.
func (r *itemRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.WardrobeItem, error) {
	query := `
		SELECT id, name, category, colorway, season, tags, image_url, created_at
		FROM items
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)
	item, err := scanItem(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to find item by ID: %w", err)
	}

	return item, nil
}

// List retrieves all items ordered by creation time, newest first
func (r *itemRepository) List(ctx context.Context) ([]*domain.WardrobeItem, error) {
	query := `
		SELECT id, name, category, colorway, season, tags, image_url, created_at
		FROM items
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []*domain.WardrobeItem{}
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}
