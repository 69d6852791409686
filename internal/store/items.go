package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/erazemk/gegenstand/internal/model"
)

const itemColumns = `id, owner_id, name, location, importance, category, last_used, dispose_on,
	purchase_price, desired_sale_price, reminder_enabled, reminder_sent,
	photo_mime IS NOT NULL, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	var (
		item                  model.Item
		lastUsed, disposeOn   sql.NullString
		purchase, desiredSale decimal.NullDecimal
	)
	err := row.Scan(&item.ID, &item.OwnerID, &item.Name, &item.Location, &item.Importance, &item.Category,
		&lastUsed, &disposeOn, &purchase, &desiredSale, &item.ReminderEnabled, &item.ReminderSent,
		&item.HasPhoto, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if item.LastUsed, err = parseNullDate(lastUsed); err != nil {
		return nil, fmt.Errorf("item %d last_used: %w", item.ID, err)
	}
	if item.DisposeOn, err = parseNullDate(disposeOn); err != nil {
		return nil, fmt.Errorf("item %d dispose_on: %w", item.ID, err)
	}
	if purchase.Valid {
		item.PurchasePrice = &purchase.Decimal
	}
	if desiredSale.Valid {
		item.DesiredSalePrice = &desiredSale.Decimal
	}
	return &item, nil
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// CreateItem inserts a new item owned by ownerID. The reminder-sent flag
// always starts false.
func CreateItem(ctx context.Context, db *sql.DB, ownerID int64, in model.ItemInput) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (owner_id, name, location, importance, category, last_used, dispose_on,
		                    purchase_price, desired_sale_price, reminder_enabled, reminder_sent)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		ownerID, in.Name, in.Location, in.Importance, in.Category,
		nullDate(in.LastUsed), nullDate(in.DisposeOn),
		nullDecimal(in.PurchasePrice), nullDecimal(in.DesiredSalePrice), in.RemindersOn(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItemForOwner(ctx, db, ownerID, id)
}

// GetItemForOwner returns the item with the given id if ownerID owns it, or
// nil when no such (id, owner) pair exists.
func GetItemForOwner(ctx context.Context, db *sql.DB, ownerID, id int64) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ? AND owner_id = ?`, id, ownerID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItemsForOwner returns all items of ownerID ordered by id.
func ListItemsForOwner(ctx context.Context, db *sql.DB, ownerID int64) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE owner_id = ? ORDER BY id`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return scanItems(rows)
}

// UpdateItemForOwner replaces all mutable fields of an owned item. The
// reminder-sent flag is left alone, and so is the reminder-enabled flag when
// the input omits it. It reports whether a row was updated.
func UpdateItemForOwner(ctx context.Context, db *sql.DB, ownerID, id int64, in model.ItemInput) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET name = ?, location = ?, importance = ?, category = ?, last_used = ?, dispose_on = ?,
		                  purchase_price = ?, desired_sale_price = ?,
		                  reminder_enabled = COALESCE(?, reminder_enabled),
		                  updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND owner_id = ?`,
		in.Name, in.Location, in.Importance, in.Category,
		nullDate(in.LastUsed), nullDate(in.DisposeOn),
		nullDecimal(in.PurchasePrice), nullDecimal(in.DesiredSalePrice), nullBool(in.ReminderEnabled),
		id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("updating item: %w", err)
	}
	return affected(result)
}

// DeleteItemForOwner removes an owned item in a single statement. It reports
// whether a row was deleted, so of two concurrent deletes exactly one wins.
func DeleteItemForOwner(ctx context.Context, db *sql.DB, ownerID, id int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM items WHERE id = ? AND owner_id = ?`, id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	return affected(result)
}

// ListDueItems returns items whose disposal date is on or before today, that
// have reminders enabled, and whose reminder has not been sent yet.
func ListDueItems(ctx context.Context, db *sql.DB, today model.Date) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE dispose_on IS NOT NULL AND dispose_on <= ?
		   AND reminder_enabled = 1 AND reminder_sent = 0
		 ORDER BY id`, today.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("listing due items: %w", err)
	}
	return scanItems(rows)
}

// MarkReminderSent flips the reminder-sent flag of an item. It reports false
// when the item is gone or was already marked.
func MarkReminderSent(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET reminder_sent = 1 WHERE id = ? AND reminder_sent = 0`, id,
	)
	if err != nil {
		return false, fmt.Errorf("marking reminder sent: %w", err)
	}
	return affected(result)
}

// SetItemPhotoForOwner stores a photo on an owned item.
func SetItemPhotoForOwner(ctx context.Context, db *sql.DB, ownerID, id int64, photo []byte, mime string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET photo = ?, photo_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND owner_id = ?`,
		photo, mime, id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("setting item photo: %w", err)
	}
	return affected(result)
}

// GetItemPhotoForOwner returns an owned item's photo and MIME type. Data is nil
// when the item is missing or has no photo.
func GetItemPhotoForOwner(ctx context.Context, db *sql.DB, ownerID, id int64) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM items WHERE id = ? AND owner_id = ?`, id, ownerID,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item photo: %w", err)
	}
	return photo, mime.String, nil
}
