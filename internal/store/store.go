// Package store is the persistence boundary: owner-scoped CRUD per
// collection plus live change notification for list subscriptions.
package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/invoiceo/invoiceo/internal/apperrors"
)

// Collection names mirror the document collections the API exposes.
type Collection string

const (
	Clients  Collection = "clients"
	Products Collection = "products"
	Invoices Collection = "invoices"
)

type Store struct {
	db  *gorm.DB
	hub *hub
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, hub: newHub()}
}

// DB exposes the underlying connection for read queries. Writes should go
// through the Store so subscribers observe them.
func (s *Store) DB() *gorm.DB { return s.db }

// Create inserts a record and notifies the owner's watchers.
func (s *Store) Create(ctx context.Context, col Collection, owner uint, rec any) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return apperrors.Persistence("create "+string(col), err)
	}
	s.hub.notify(col, owner)
	return nil
}

// Update saves a record scoped to its owner and notifies watchers.
func (s *Store) Update(ctx context.Context, col Collection, owner uint, rec any) error {
	if err := s.db.WithContext(ctx).Save(rec).Error; err != nil {
		return apperrors.Persistence("update "+string(col), err)
	}
	s.hub.notify(col, owner)
	return nil
}

// Delete removes the record with the given id if the owner matches.
// model must be a pointer to the zero value of the collection's type.
func (s *Store) Delete(ctx context.Context, col Collection, owner uint, model any, id uint) error {
	res := s.db.WithContext(ctx).Where("owner_id = ? AND id = ?", owner, id).Delete(model)
	if res.Error != nil {
		return apperrors.Persistence("delete "+string(col), res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	s.hub.notify(col, owner)
	return nil
}

// Transaction runs fn atomically. The caller is responsible for calling
// Notify afterwards for the collections it touched; nothing is signalled on
// a rolled-back write.
func (s *Store) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// Notify signals watchers of a collection after an out-of-band write
// (e.g. a multi-table transaction).
func (s *Store) Notify(col Collection, owner uint) { s.hub.notify(col, owner) }

// Watch returns a channel that receives a signal whenever the owner's slice
// of the collection changes. The channel closes when ctx is cancelled, which
// is the subscription teardown: a consumer that navigated away stops
// receiving before any late write can reach it.
func (s *Store) Watch(ctx context.Context, col Collection, owner uint) <-chan struct{} {
	return s.hub.subscribe(ctx, col, owner)
}
