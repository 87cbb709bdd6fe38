package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"fileapi/internal/model"
	"fileapi/internal/repository"
	"fileapi/internal/storage"
)

var tracer = otel.Tracer("fileapi/service")

// TapFunc inspects or adjusts the pending record right before the storing hooks run.
// Changes to the owner are discarded.
type TapFunc func(pending *model.File, owner model.OwnerRef, src Source)

// Builder collects the options of one ingestion. It is single-use and not safe for concurrent use.
type Builder struct {
	in *Ingestor

	src         Source
	owner       model.OwnerRef
	disk        string
	dir         string
	name        string
	displayName *string
	meta        map[string]any
	tap         TapFunc
	preserve    bool

	finalized bool
}

// WithSource sets the input to ingest.
func (b *Builder) WithSource(src Source) *Builder {
	b.src = src
	return b
}

// ToOwner sets the owner the file is attached to.
func (b *Builder) ToOwner(ref model.OwnerRef) *Builder {
	b.owner = ref
	return b
}

// OnDisk selects the target disk. The configured default disk is used otherwise.
func (b *Builder) OnDisk(id string) *Builder {
	b.disk = id
	return b
}

// InDirectory places the file under dir on the disk.
func (b *Builder) InDirectory(dir string) *Builder {
	b.dir = strings.TrimRight(dir, "/")
	return b
}

// Named overrides the logical filename.
func (b *Builder) Named(name string) *Builder {
	b.name = name
	return b
}

func (b *Builder) DisplayedAs(name string) *Builder {
	b.displayName = &name
	return b
}

func (b *Builder) WithMeta(meta map[string]any) *Builder {
	b.meta = make(map[string]any, len(meta))
	for k, v := range meta {
		b.meta[k] = v
	}
	return b
}

func (b *Builder) Tap(fn TapFunc) *Builder {
	b.tap = fn
	return b
}

// PreserveOriginal controls whether a path source stays in place after its bytes were stored.
// Path sources are removed by default.
func (b *Builder) PreserveOriginal(preserve bool) *Builder {
	b.preserve = preserve
	return b
}

// Finalize stores the bytes and persists the record.
//
// When the original path source cannot be removed, the stored record is returned
// together with an error wrapping ErrCleanupFailed.
func (b *Builder) Finalize(ctx context.Context) (*model.File, error) {
	if b.finalized {
		return nil, ErrAlreadyFinalized
	}
	b.finalized = true
	if b.src != nil {
		defer closeSource(b.src)
	}

	ctx, span := tracer.Start(ctx, "FileIngestion.Finalize")
	defer span.End()

	f, err := b.finalize(ctx)

	var size int64
	if f != nil {
		size = f.Size
		span.SetAttributes(
			attribute.String("file.uuid", f.UUID),
			attribute.String("file.disk", f.Disk),
			attribute.Int64("file.size", size),
		)
	}
	b.in.metrics.observeIngestion(size, err)
	if err != nil {
		span.RecordError(err)
		if !errors.Is(err, ErrCleanupFailed) {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	return f, err
}

func (b *Builder) finalize(ctx context.Context) (*model.File, error) {
	in := b.in
	if b.src == nil {
		return nil, ErrSourceRequired
	}
	if b.owner.IsZero() {
		return nil, ErrOwnerRequired
	}

	res, err := resolveSource(in.fs, b.src, b.name, in.cfg.MaxStreamBytes, in.now())
	if err != nil {
		return nil, err
	}

	diskID := b.disk
	if diskID == "" {
		diskID = in.cfg.DefaultDisk
	}

	pending := &model.File{
		Owner:       b.owner,
		UUID:        uuid.NewString(),
		DisplayName: b.displayName,
		Disk:        diskID,
		Filename:    res.filename,
		Mimetype:    res.mimetype,
		Size:        res.size,
		Meta:        b.meta,
	}
	pending.Filepath = buildPath(b.dir, pending.UUID, pending.Extension())

	if b.tap != nil {
		b.tap(pending, b.owner, b.src)
		pending.Owner = b.owner
	}

	disk, err := in.disks.Disk(pending.Disk)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}

	if err := in.hooks.fireStoring(ctx, pending); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreVetoed, err)
	}

	if err := b.put(ctx, disk, pending, res); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	in.hooks.fireStored(ctx, pending)

	var cleanupErr error
	removed := false
	if res.remove != nil && !b.preserve {
		if err := res.remove(); err != nil {
			cleanupErr = err
		} else {
			removed = true
		}
	}

	stored, err := b.bind(ctx, pending)
	if err != nil {
		if !errors.Is(err, ErrUniquenessViolation) {
			b.rollback(ctx, disk, pending, removed, err)
		} else {
			in.logger.WarnContext(ctx, "file_conflict",
				"uuid", pending.UUID,
				"disk", pending.Disk,
				"path", pending.Filepath,
			)
		}
		return nil, err
	}

	in.logger.InfoContext(ctx, "file_stored",
		"file_id", stored.ID,
		"owner", stored.Owner.String(),
		"disk", stored.Disk,
		"path", stored.Filepath,
		"mimetype", stored.Mimetype,
		"size", stored.Size,
	)

	if cleanupErr != nil {
		in.logger.WarnContext(ctx, "original_cleanup_failed", "file_id", stored.ID, "error", cleanupErr)
		return stored, fmt.Errorf("%w: %v", ErrCleanupFailed, cleanupErr)
	}
	return stored, nil
}

func (b *Builder) put(ctx context.Context, disk storage.Disk, f *model.File, res *resolvedSource) error {
	rc, err := res.open()
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer rc.Close()

	return disk.Put(ctx, f.Filepath, rc, storage.PutOptions{
		Size:        f.Size,
		ContentType: f.Mimetype,
		Metadata: map[string]string{
			"original-filename": f.Filename,
		},
	})
}

// bind attaches the pending record to its owner.
func (b *Builder) bind(ctx context.Context, f *model.File) (*model.File, error) {
	ok, err := b.in.owners.Exists(ctx, f.Owner)
	if err != nil {
		return nil, fmt.Errorf("check owner: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOwnerNotPersisted, f.Owner)
	}

	stored, err := b.in.files.Create(ctx, f)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUniqueViolation):
			return nil, fmt.Errorf("%w: %v", ErrUniquenessViolation, err)
		case errors.Is(err, repository.ErrOwnerMissing):
			// the owner was removed after the existence check
			return nil, fmt.Errorf("%w: %s", ErrOwnerNotPersisted, f.Owner)
		}
		return nil, fmt.Errorf("persist file: %w", err)
	}
	return stored, nil
}

// rollback removes bytes that have no record. Once the original is gone the bytes are
// the only copy, so they are kept and reported instead.
func (b *Builder) rollback(ctx context.Context, disk storage.Disk, f *model.File, originalRemoved bool, cause error) {
	log := b.in.logger
	if originalRemoved {
		log.ErrorContext(ctx, "file_orphaned",
			"disk", f.Disk,
			"path", f.Filepath,
			"owner", f.Owner.String(),
			"error", cause,
		)
		return
	}
	if err := disk.Delete(ctx, f.Filepath); err != nil {
		log.ErrorContext(ctx, "file_orphaned",
			"disk", f.Disk,
			"path", f.Filepath,
			"owner", f.Owner.String(),
			"error", cause,
			"rollback_error", err,
		)
	}
}

// buildPath returns dir/uuid.ext, leaving out the dot when ext is empty.
func buildPath(dir, id, ext string) string {
	name := id
	if ext != "" {
		name += "." + ext
	}
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
