package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// Package storage contains the disk abstraction files are written to and its implementations
// (local filesystem, S3-compatible object storage).

var (
	// ErrNotFound is returned by ReadStream when nothing is stored at the path.
	ErrNotFound = errors.New("object not found")
	// ErrUnknownDisk is returned by Disks.Disk for ids that were never registered.
	ErrUnknownDisk = errors.New("unknown disk")
)

// PutOptions define optional parameters for writing objects.
// Size should be the exact number of bytes if known, or -1 if unknown.
type PutOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// Disk is a byte store addressed by backend-relative paths.
// Implementations must be safe for concurrent use.
type Disk interface {
	// Exists reports whether an object is stored at path.
	Exists(ctx context.Context, path string) (bool, error)
	// ReadStream opens the object for reading. The caller must close it.
	ReadStream(ctx context.Context, path string) (io.ReadCloser, error)
	// Put writes the reader's content to path, replacing what was there.
	Put(ctx context.Context, path string, r io.Reader, opt PutOptions) error
	// Delete removes the object. Deleting a missing path succeeds.
	Delete(ctx context.Context, path string) error
	// URL returns a public locator for path; ok is false for private disks.
	URL(path string) (url string, ok bool)
	// LastModified returns the modification time; ok is false when the object is missing.
	LastModified(ctx context.Context, path string) (t time.Time, ok bool, err error)
}

// Disks is a registry of named disks.
type Disks struct {
	mu    sync.RWMutex
	disks map[string]Disk
}

// NewDisks returns an empty registry.
func NewDisks() *Disks {
	return &Disks{disks: make(map[string]Disk)}
}

// Register adds or replaces the disk stored under id.
func (d *Disks) Register(id string, disk Disk) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disks[id] = disk
}

// Disk returns the disk registered under id.
func (d *Disks) Disk(id string) (Disk, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	disk, ok := d.disks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDisk, id)
	}
	return disk, nil
}

// IDs returns the registered disk ids in sorted order.
func (d *Disks) IDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]string, 0, len(d.disks))
	for id := range d.disks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
