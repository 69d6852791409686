// Package service holds the business rules on top of the store: ownership,
// validation, authentication and the reminder sweep.
package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/gegenstand/internal/imaging"
	"github.com/erazemk/gegenstand/internal/model"
	"github.com/erazemk/gegenstand/internal/store"
)

// Items manages items on behalf of an explicitly passed owner.
type Items struct {
	db    *sql.DB
	photo imaging.Options
}

// NewItems returns an item service.
func NewItems(db *sql.DB, photo imaging.Options) *Items {
	return &Items{db: db, photo: photo}
}

// ListForOwner returns the owner's items ordered by id.
func (s *Items) ListForOwner(ctx context.Context, ownerID int64) ([]model.Item, error) {
	items, err := store.ListItemsForOwner(ctx, s.db, ownerID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// GetForOwner returns one of the owner's items.
func (s *Items) GetForOwner(ctx context.Context, ownerID, itemID int64) (*model.Item, error) {
	item, err := store.GetItemForOwner(ctx, s.db, ownerID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// CreateForOwner validates in and stores it as a new item of ownerID.
// Invalid input is returned as model.FieldErrors and nothing is written.
func (s *Items) CreateForOwner(ctx context.Context, ownerID int64, in model.ItemInput) (*model.Item, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	item, err := store.CreateItem(ctx, s.db, ownerID, in)
	if err != nil {
		return nil, err
	}
	slog.Info("item created", "item", item.ID, "owner", ownerID)
	return item, nil
}

// UpdateForOwner replaces all mutable fields of an owned item. A missing or
// foreign item is reported before any validation problem.
func (s *Items) UpdateForOwner(ctx context.Context, ownerID, itemID int64, in model.ItemInput) (*model.Item, error) {
	if _, err := s.GetForOwner(ctx, ownerID, itemID); err != nil {
		return nil, err
	}

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ok, err := store.UpdateItemForOwner(ctx, s.db, ownerID, itemID, in)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Deleted between the check and the write.
		return nil, ErrNotFound
	}
	return s.GetForOwner(ctx, ownerID, itemID)
}

// DeleteForOwner removes an owned item. Notifications about it are kept.
func (s *Items) DeleteForOwner(ctx context.Context, ownerID, itemID int64) error {
	ok, err := store.DeleteItemForOwner(ctx, s.db, ownerID, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	slog.Info("item deleted", "item", itemID, "owner", ownerID)
	return nil
}

// SetPhotoForOwner processes an uploaded image and attaches it to an owned
// item. Undecodable uploads come back as model.FieldErrors on "photo".
func (s *Items) SetPhotoForOwner(ctx context.Context, ownerID, itemID int64, upload []byte) (*model.Item, error) {
	if _, err := s.GetForOwner(ctx, ownerID, itemID); err != nil {
		return nil, err
	}

	photo, err := imaging.Process(bytes.NewReader(upload), s.photo)
	if errors.Is(err, imaging.ErrUnsupportedFormat) {
		return nil, model.FieldErrors{"photo": "must be a JPEG, PNG or GIF image"}
	}
	if err != nil {
		return nil, fmt.Errorf("processing photo: %w", err)
	}

	ok, err := store.SetItemPhotoForOwner(ctx, s.db, ownerID, itemID, photo.Data, photo.MIME)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return s.GetForOwner(ctx, ownerID, itemID)
}

// PhotoForOwner returns the stored photo of an owned item and its MIME type.
func (s *Items) PhotoForOwner(ctx context.Context, ownerID, itemID int64) ([]byte, string, error) {
	data, mime, err := store.GetItemPhotoForOwner(ctx, s.db, ownerID, itemID)
	if err != nil {
		return nil, "", err
	}
	if data == nil {
		return nil, "", ErrNotFound
	}
	return data, mime, nil
}
