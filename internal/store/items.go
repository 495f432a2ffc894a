package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/medinv/medinv/internal/model"
)

// CreateItem creates a new catalog item.
func CreateItem(ctx context.Context, db *sql.DB, name, category, unit string) (*model.Item, error) {
	if unit == "" {
		unit = "unit"
	}
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, category, unit) VALUES (?, ?, ?)`,
		name, category, unit,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item := &model.Item{}
	var category, photoMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, category, unit, photo_mime, created_at, updated_at, deleted_at
		 FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Name, &category, &item.Unit, &photoMime, &item.CreatedAt, &item.UpdatedAt, &item.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	item.Category = category.String
	item.PhotoMime = photoMime.String
	return item, nil
}

// ListItems returns all non-deleted items, optionally filtered by category.
func ListItems(ctx context.Context, db *sql.DB, category string) ([]model.Item, error) {
	var rows *sql.Rows
	var err error

	if category != "" {
		rows, err = db.QueryContext(ctx,
			`SELECT id, name, category, unit, photo_mime, created_at, updated_at, deleted_at
			 FROM items WHERE deleted_at IS NULL AND category = ? ORDER BY name`, category,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT id, name, category, unit, photo_mime, created_at, updated_at, deleted_at
			 FROM items WHERE deleted_at IS NULL ORDER BY name`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		var category, photoMime sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &category, &item.Unit, &photoMime, &item.CreatedAt, &item.UpdatedAt, &item.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		item.Category = category.String
		item.PhotoMime = photoMime.String
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateItem updates an item's metadata. Quantities are never touched here;
// stock moves only through ledger transactions.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, name, category, unit string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET name = ?, category = ?, unit = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		name, category, unit, id,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// DeleteItem soft-deletes an item.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// SetItemPhoto stores an item's photo data.
func SetItemPhoto(ctx context.Context, db *sql.DB, id int64, photo []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET photo = ?, photo_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		photo, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item photo: %w", err)
	}
	return nil
}

// GetItemPhoto returns an item's photo data and MIME type.
func GetItemPhoto(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM items WHERE id = ?`, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item photo: %w", err)
	}
	return photo, mime.String, nil
}
