package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"fileapi/internal/model"
	"fileapi/internal/repository"
	"fileapi/internal/storage"
)

// FileListResult is the service-level DTO for an owner's files.
type FileListResult struct {
	Items []model.File `json:"data"`
	Total int          `json:"total"`
}

// UploadOptions carry the optional builder settings of an upload.
type UploadOptions struct {
	Disk        string
	Directory   string
	DisplayName string
	Meta        map[string]any
}

// FileUpdate lists the mutable attributes of a file. Nil fields are left untouched;
// an empty DisplayName clears it.
type FileUpdate struct {
	DisplayName *string
	Meta        map[string]any
}

// FileService defines the use cases behind the HTTP API.
type FileService interface {
	// CreateOwner registers an owner files can be attached to.
	CreateOwner(ctx context.Context, ref model.OwnerRef) (*model.Owner, error)

	// DeleteOwner trashes the owner, or removes it with all of its files when force is set.
	DeleteOwner(ctx context.Context, ref model.OwnerRef, force bool) error

	// RestoreOwner reverses a soft delete.
	RestoreOwner(ctx context.Context, ref model.OwnerRef) (*model.Owner, error)

	// Upload ingests an uploaded file for the owner.
	Upload(ctx context.Context, owner model.OwnerRef, up *UploadedFile, opts UploadOptions) (*model.File, error)

	// ListByOwner returns the owner's files.
	ListByOwner(ctx context.Context, owner model.OwnerRef) (*FileListResult, error)

	// Get returns a single file by its ID.
	Get(ctx context.Context, id string) (*model.File, error)

	// Update replaces the display name and/or meta of a file.
	Update(ctx context.Context, id string, in FileUpdate) (*model.File, error)

	// Delete removes a file's bytes and its record.
	Delete(ctx context.Context, id string) error

	// URL returns the public locator of the file, if its disk has one.
	URL(f *model.File) (string, bool)

	// ModifiedAt returns the last modification time reported by the file's disk.
	ModifiedAt(ctx context.Context, f *model.File) (time.Time, error)

	// Stream opens the file's bytes. The caller must close the reader.
	Stream(ctx context.Context, f *model.File) (io.ReadCloser, error)
}

type fileService struct {
	ingestor  *Ingestor
	lifecycle *Lifecycle
	disks     *storage.Disks
	files     repository.FileRepository
	owners    repository.OwnerRepository
}

// NewFileService constructs a new FileService.
func NewFileService(ingestor *Ingestor, lifecycle *Lifecycle, disks *storage.Disks, files repository.FileRepository, owners repository.OwnerRepository) FileService {
	return &fileService{
		ingestor:  ingestor,
		lifecycle: lifecycle,
		disks:     disks,
		files:     files,
		owners:    owners,
	}
}

func (s *fileService) CreateOwner(ctx context.Context, ref model.OwnerRef) (*model.Owner, error) {
	if ref.IsZero() {
		return nil, ErrOwnerRequired
	}
	o, err := s.owners.Create(ctx, &model.Owner{Kind: ref.Kind, ID: ref.ID})
	if err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, ErrOwnerExists
		}
		return nil, err
	}
	return o, nil
}

func (s *fileService) DeleteOwner(ctx context.Context, ref model.OwnerRef, force bool) error {
	mode := SoftDelete
	if force {
		mode = HardDelete
	}
	return s.lifecycle.DeleteOwner(ctx, ref, mode)
}

func (s *fileService) RestoreOwner(ctx context.Context, ref model.OwnerRef) (*model.Owner, error) {
	if err := s.lifecycle.Restore(ctx, ref); err != nil {
		return nil, err
	}
	return s.owners.Find(ctx, ref)
}

func (s *fileService) Upload(ctx context.Context, owner model.OwnerRef, up *UploadedFile, opts UploadOptions) (*model.File, error) {
	if up == nil {
		return nil, ErrSourceRequired
	}
	b := s.ingestor.Add(up).ToOwner(owner)
	if opts.Disk != "" {
		b.OnDisk(opts.Disk)
	}
	if opts.Directory != "" {
		b.InDirectory(opts.Directory)
	}
	if opts.DisplayName != "" {
		b.DisplayedAs(opts.DisplayName)
	}
	if opts.Meta != nil {
		b.WithMeta(opts.Meta)
	}
	return b.Finalize(ctx)
}

func (s *fileService) ListByOwner(ctx context.Context, owner model.OwnerRef) (*FileListResult, error) {
	if owner.IsZero() {
		return nil, ErrOwnerRequired
	}
	ok, err := s.owners.Exists(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOwnerNotFound
	}
	items, err := s.files.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	return &FileListResult{Items: items, Total: len(items)}, nil
}

// Get returns a file by ID.
func (s *fileService) Get(ctx context.Context, id string) (*model.File, error) {
	f, err := s.files.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *fileService) Update(ctx context.Context, id string, in FileUpdate) (*model.File, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.DisplayName != nil {
		if *in.DisplayName == "" {
			f.DisplayName = nil
		} else {
			name := *in.DisplayName
			f.DisplayName = &name
		}
	}
	if in.Meta != nil {
		f.Meta = in.Meta
	}
	updated, err := s.files.Update(ctx, f)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update file: %w", err)
	}
	return updated, nil
}

// Delete looks the file up and hands it to the lifecycle coordinator.
func (s *fileService) Delete(ctx context.Context, id string) error {
	f, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.lifecycle.DeleteFile(ctx, f)
}

func (s *fileService) URL(f *model.File) (string, bool) {
	disk, err := s.disks.Disk(f.Disk)
	if err != nil {
		return "", false
	}
	return disk.URL(f.Filepath)
}

func (s *fileService) ModifiedAt(ctx context.Context, f *model.File) (time.Time, error) {
	disk, err := s.disks.Disk(f.Disk)
	if err != nil {
		return time.Time{}, err
	}
	t, ok, err := disk.LastModified(ctx, f.Filepath)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", storage.ErrNotFound, f.Filepath)
	}
	return t, nil
}

func (s *fileService) Stream(ctx context.Context, f *model.File) (io.ReadCloser, error) {
	disk, err := s.disks.Disk(f.Disk)
	if err != nil {
		return nil, err
	}
	return disk.ReadStream(ctx, f.Filepath)
}
