package repository

import (
	"context"
	"errors"

	"fileapi/internal/model"
)

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

// ErrUniqueViolation is returned when an insert collides with an existing uuid or (disk, filepath).
var ErrUniqueViolation = errors.New("unique constraint violated")

// ErrOwnerMissing is returned when a file row references an owner that does not exist.
var ErrOwnerMissing = errors.New("referenced owner does not exist")

// FileRepository defines data access for file records using SQL queries only.
// Lookups of a single missing row return sql.ErrNoRows.
type FileRepository interface {
	// Create inserts a new file record. The ID and timestamps are assigned by the database.
	Create(ctx context.Context, f *model.File) (*model.File, error)

	// FindByID returns a file by its ID.
	FindByID(ctx context.Context, id string) (*model.File, error)

	// ListByOwner returns every file attached to the owner, oldest first.
	ListByOwner(ctx context.Context, owner model.OwnerRef) ([]model.File, error)

	// Update writes the mutable columns (display name and meta) of an existing record.
	Update(ctx context.Context, f *model.File) (*model.File, error)

	// Delete removes a file record by ID. It returns nil if the row did not exist.
	Delete(ctx context.Context, id string) error

	// DeleteByOwner removes all file records attached to the owner and returns how many were removed.
	DeleteByOwner(ctx context.Context, owner model.OwnerRef) (int64, error)
}

// OwnerRepository defines data access for owners.
type OwnerRepository interface {
	// Create inserts a new owner.
	Create(ctx context.Context, o *model.Owner) (*model.Owner, error)

	// Find returns the owner, including soft-deleted ones.
	Find(ctx context.Context, ref model.OwnerRef) (*model.Owner, error)

	// Exists reports whether the owner is persisted. Soft-deleted owners exist.
	Exists(ctx context.Context, ref model.OwnerRef) (bool, error)

	// SoftDelete marks the owner as deleted and keeps the row.
	SoftDelete(ctx context.Context, ref model.OwnerRef) error

	// Restore clears the soft-delete marker.
	Restore(ctx context.Context, ref model.OwnerRef) error

	// Delete removes the owner row permanently.
	Delete(ctx context.Context, ref model.OwnerRef) error
}

// Transactor runs fn with repositories bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(files FileRepository, owners OwnerRepository) error) error
}
