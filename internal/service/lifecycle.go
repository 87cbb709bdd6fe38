package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"fileapi/internal/model"
	"fileapi/internal/repository"
	"fileapi/internal/storage"
)

// DeleteMode tells DeleteOwner whether the owner is trashed or removed for good.
type DeleteMode int

const (
	SoftDelete DeleteMode = iota
	HardDelete
)

func (m DeleteMode) String() string {
	switch m {
	case SoftDelete:
		return "soft"
	case HardDelete:
		return "hard"
	default:
		return fmt.Sprintf("DeleteMode(%d)", int(m))
	}
}

// Lifecycle applies owner and file deletion rules.
type Lifecycle struct {
	disks   *storage.Disks
	files   repository.FileRepository
	owners  repository.OwnerRepository
	tx      repository.Transactor
	logger  *slog.Logger
	metrics *Metrics
}

// LifecycleOption mutates the coordinator during construction.
type LifecycleOption func(*Lifecycle)

func WithLifecycleLogger(l *slog.Logger) LifecycleOption {
	return func(lc *Lifecycle) { lc.logger = l }
}

func WithLifecycleMetrics(m *Metrics) LifecycleOption {
	return func(lc *Lifecycle) { lc.metrics = m }
}

func NewLifecycle(disks *storage.Disks, files repository.FileRepository, owners repository.OwnerRepository, tx repository.Transactor, opts ...LifecycleOption) *Lifecycle {
	lc := &Lifecycle{
		disks:  disks,
		files:  files,
		owners: owners,
		tx:     tx,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(lc)
		}
	}
	return lc
}

// DeleteOwner trashes the owner (SoftDelete) or removes it with every attached file (HardDelete).
//
// A hard delete removes the bytes of each file in order and stops at the first failure with a
// *CascadeDeleteError; records and the owner row are only deleted, in one transaction, once every
// blob is gone. The transaction rolls back when it finds files attached after the listing, so
// their bytes keep a record. Calling it again after a failure resumes where it stopped.
func (lc *Lifecycle) DeleteOwner(ctx context.Context, ref model.OwnerRef, mode DeleteMode) error {
	ctx, span := tracer.Start(ctx, "Lifecycle.DeleteOwner")
	defer span.End()
	span.SetAttributes(
		attribute.String("owner", ref.String()),
		attribute.String("mode", mode.String()),
	)

	err := lc.deleteOwner(ctx, ref, mode)
	lc.metrics.observeOwnerDelete(mode, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (lc *Lifecycle) deleteOwner(ctx context.Context, ref model.OwnerRef, mode DeleteMode) error {
	if ref.IsZero() {
		return ErrOwnerRequired
	}
	switch mode {
	case SoftDelete:
		if err := lc.owners.SoftDelete(ctx, ref); err != nil {
			return ownerError(err)
		}
		lc.logger.InfoContext(ctx, "owner_trashed", "owner", ref.String())
		return nil
	case HardDelete:
		return lc.purgeOwner(ctx, ref)
	default:
		return fmt.Errorf("unsupported delete mode %s", mode)
	}
}

func (lc *Lifecycle) purgeOwner(ctx context.Context, ref model.OwnerRef) error {
	ok, err := lc.owners.Exists(ctx, ref)
	if err != nil {
		return fmt.Errorf("check owner: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrOwnerNotFound, ref)
	}

	files, err := lc.files.ListByOwner(ctx, ref)
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}

	removed := make([]string, 0, len(files))
	for i := range files {
		f := &files[i]
		if err := lc.deleteBytes(ctx, f); err != nil {
			return &CascadeDeleteError{FileID: f.ID, Removed: removed, Err: err}
		}
		removed = append(removed, f.ID)
	}

	var n int64
	err = lc.tx.WithinTx(ctx, func(txFiles repository.FileRepository, txOwners repository.OwnerRepository) error {
		var err error
		if n, err = txFiles.DeleteByOwner(ctx, ref); err != nil {
			return fmt.Errorf("delete files: %w", err)
		}
		// Rows beyond the listed ones were attached after the listing and still have bytes.
		if late := n - int64(len(files)); late > 0 {
			return fmt.Errorf("%w: %d files attached during delete", ErrCascadeDeleteFailed, late)
		}
		if err := txOwners.Delete(ctx, ref); err != nil {
			return fmt.Errorf("delete owner: %w", ownerError(err))
		}
		return nil
	})
	if err != nil {
		return err
	}

	lc.logger.InfoContext(ctx, "owner_deleted", "owner", ref.String(), "files", n)
	return nil
}

// DeleteFile removes the file's bytes, if the disk still has them, and then its record.
func (lc *Lifecycle) DeleteFile(ctx context.Context, f *model.File) error {
	ctx, span := tracer.Start(ctx, "Lifecycle.DeleteFile")
	defer span.End()
	span.SetAttributes(attribute.String("file.id", f.ID))

	if err := lc.deleteBytes(ctx, f); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := lc.files.Delete(ctx, f.ID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("delete record: %w", err)
	}
	lc.logger.InfoContext(ctx, "file_deleted", "file_id", f.ID, "disk", f.Disk, "path", f.Filepath)
	return nil
}

// Restore clears the owner's soft-delete marker.
func (lc *Lifecycle) Restore(ctx context.Context, ref model.OwnerRef) error {
	if ref.IsZero() {
		return ErrOwnerRequired
	}
	if err := lc.owners.Restore(ctx, ref); err != nil {
		return ownerError(err)
	}
	lc.logger.InfoContext(ctx, "owner_restored", "owner", ref.String())
	return nil
}

func (lc *Lifecycle) deleteBytes(ctx context.Context, f *model.File) error {
	disk, err := lc.disks.Disk(f.Disk)
	if err != nil {
		return err
	}
	ok, err := disk.Exists(ctx, f.Filepath)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return disk.Delete(ctx, f.Filepath)
}

func ownerError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOwnerNotFound
	}
	return err
}
