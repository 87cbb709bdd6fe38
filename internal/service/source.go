package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Source is the raw input of an ingestion: a filesystem path, a byte stream or an uploaded file.
type Source interface {
	kind() string
}

type pathSource struct {
	path string
}

// PathSource ingests the file at path. Unless preserved, the file is removed after storing.
func PathSource(path string) Source {
	return pathSource{path: path}
}

func (pathSource) kind() string { return "path" }

type streamSource struct {
	r    io.Reader
	name string
}

// StreamSource ingests r, which is buffered in memory to measure and sniff it.
// name is the original filename if known. If r is an io.Closer it is closed by Finalize.
func StreamSource(r io.Reader, name string) Source {
	return streamSource{r: r, name: name}
}

func (streamSource) kind() string { return "stream" }

// UploadedFile wraps client-declared metadata around content that can be opened for reading.
type UploadedFile struct {
	Filename string
	MimeType string
	// Size is the content length in bytes, or -1 if unknown.
	Size int64
	Open func() (io.ReadCloser, error)
}

func (*UploadedFile) kind() string { return "upload" }

// FromFileHeader adapts a multipart upload.
func FromFileHeader(fh *multipart.FileHeader) *UploadedFile {
	return &UploadedFile{
		Filename: fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// resolvedSource is the metadata of a source plus how to read and clean it up.
type resolvedSource struct {
	filename string
	mimetype string
	size     int64
	open     func() (io.ReadCloser, error)
	// remove deletes the original; nil for sources that have nothing to clean up.
	remove func() error
}

// resolveSource inspects src. name, when set, overrides the filename derived from the source.
func resolveSource(fsys afero.Fs, src Source, name string, maxStream int64, now time.Time) (*resolvedSource, error) {
	var (
		res *resolvedSource
		err error
	)
	switch s := src.(type) {
	case pathSource:
		res, err = resolvePath(fsys, s.path)
	case streamSource:
		res, err = resolveStream(s, maxStream, now)
	case *UploadedFile:
		res, err = resolveUpload(s, now)
	default:
		return nil, fmt.Errorf("%w: unsupported source %T", ErrSourceUnreadable, src)
	}
	if err != nil {
		return nil, err
	}
	if name != "" {
		res.filename = name
	}
	return res, nil
}

func resolvePath(fsys afero.Fs, p string) (*resolvedSource, error) {
	info, err := fsys.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, p)
		}
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceUnreadable, p)
	}

	f, err := fsys.Open(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	mt, err := mimetype.DetectReader(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: sniff %s: %v", ErrSourceUnreadable, p, err)
	}

	return &resolvedSource{
		filename: filepath.Base(p),
		mimetype: mt.String(),
		size:     info.Size(),
		open: func() (io.ReadCloser, error) {
			return fsys.Open(p)
		},
		remove: func() error {
			return fsys.Remove(p)
		},
	}, nil
}

// resolveStream buffers the whole stream. maxStream bounds the buffer; zero means unbounded.
func resolveStream(s streamSource, maxStream int64, now time.Time) (*resolvedSource, error) {
	if s.r == nil {
		return nil, fmt.Errorf("%w: nil reader", ErrSourceUnreadable)
	}
	r := s.r
	if maxStream > 0 {
		r = io.LimitReader(r, maxStream+1)
	}

	var buf bytes.Buffer
	n, err := buf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	if maxStream > 0 && n > maxStream {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrSourceTooLarge, maxStream)
	}

	data := buf.Bytes()
	mt := mimetype.Detect(data)
	name := s.name
	if name == "" {
		name = synthesizeFilename(now, mt.Extension())
	}
	return &resolvedSource{
		filename: name,
		mimetype: mt.String(),
		size:     n,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}, nil
}

func resolveUpload(u *UploadedFile, now time.Time) (*resolvedSource, error) {
	if u.Open == nil {
		return nil, fmt.Errorf("%w: uploaded file has no content", ErrSourceUnreadable)
	}
	res := &resolvedSource{
		filename: u.Filename,
		mimetype: u.MimeType,
		size:     u.Size,
		open:     u.Open,
	}

	if res.mimetype == "" || res.size < 0 {
		rc, err := u.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
		}
		defer rc.Close()

		// DetectReader only reads the header; count the rest when the size is unknown.
		counter := &countingReader{r: rc}
		mt, err := mimetype.DetectReader(counter)
		if err != nil {
			return nil, fmt.Errorf("%w: sniff upload: %v", ErrSourceUnreadable, err)
		}
		if res.mimetype == "" {
			res.mimetype = mt.String()
		}
		if res.size < 0 {
			if _, err := io.Copy(io.Discard, counter); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
			}
			res.size = counter.n
		}
	}

	if res.filename == "" {
		ext := ""
		if mt := mimetype.Lookup(res.mimetype); mt != nil {
			ext = mt.Extension()
		}
		res.filename = synthesizeFilename(now, ext)
	}
	return res, nil
}

// synthesizeFilename builds {timestamp}-{random token}{ext} for sources without a name.
func synthesizeFilename(now time.Time, ext string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	return fmt.Sprintf("%s-%s%s", now.Format("20060102_150405"), token, ext)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// closeSource closes stream sources that are io.Closers.
func closeSource(src Source) {
	if s, ok := src.(streamSource); ok {
		if c, ok := s.r.(io.Closer); ok {
			_ = c.Close()
		}
	}
}
