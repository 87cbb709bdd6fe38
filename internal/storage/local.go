package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// localDisk stores objects as files below a root directory.
// Writes go to a temp file that is renamed into place, so readers never see partial content.
type localDisk struct {
	fs      afero.Fs
	baseURL string
}

// NewLocal creates a disk rooted at root on the given filesystem.
// baseURL may be empty, in which case the disk is private.
func NewLocal(fsys afero.Fs, root, baseURL string) (Disk, error) {
	if root == "" {
		return nil, fmt.Errorf("local disk root is required")
	}
	if err := fsys.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create local disk root %s: %w", root, err)
	}
	return &localDisk{
		fs:      afero.NewBasePathFs(fsys, root),
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (l *localDisk) Exists(_ context.Context, p string) (bool, error) {
	info, err := l.fs.Stat(clean(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func (l *localDisk) ReadStream(_ context.Context, p string) (io.ReadCloser, error) {
	f, err := l.fs.Open(clean(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	return f, nil
}

func (l *localDisk) Put(_ context.Context, p string, r io.Reader, _ PutOptions) error {
	target := clean(p)
	if err := l.fs.MkdirAll(path.Dir(target), 0o750); err != nil {
		return fmt.Errorf("create directory for %s: %w", p, err)
	}

	tmp := target + ".tmp"
	f, err := l.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = l.fs.Remove(tmp)
		return fmt.Errorf("write %s: %w", p, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = l.fs.Remove(tmp)
		return fmt.Errorf("sync %s: %w", p, err)
	}
	if err := f.Close(); err != nil {
		_ = l.fs.Remove(tmp)
		return fmt.Errorf("close %s: %w", p, err)
	}
	if err := l.fs.Rename(tmp, target); err != nil {
		_ = l.fs.Remove(tmp)
		return fmt.Errorf("rename into %s: %w", p, err)
	}
	return nil
}

func (l *localDisk) Delete(_ context.Context, p string) error {
	err := l.fs.Remove(clean(p))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", p, err)
	}
	return nil
}

func (l *localDisk) URL(p string) (string, bool) {
	if l.baseURL == "" {
		return "", false
	}
	return l.baseURL + clean(p), true
}

func (l *localDisk) LastModified(_ context.Context, p string) (time.Time, bool, error) {
	info, err := l.fs.Stat(clean(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return info.ModTime(), true, nil
}

// clean makes p absolute relative to the disk root so it cannot escape it.
func clean(p string) string {
	return path.Clean("/" + p)
}
