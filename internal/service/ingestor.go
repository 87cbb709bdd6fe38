package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/spf13/afero"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"fileapi/internal/repository"
	"fileapi/internal/storage"
)

// IngestConfig holds the settings consulted by every ingestion.
type IngestConfig struct {
	DefaultDisk string
	// MaxStreamBytes bounds the buffer used for stream sources. Zero disables the bound.
	MaxStreamBytes int64
}

// Ingestor creates ingestion builders and carries their shared dependencies.
// It is safe for concurrent use; the builders it returns are not.
type Ingestor struct {
	disks   *storage.Disks
	files   repository.FileRepository
	owners  repository.OwnerRepository
	hooks   *Hooks
	cfg     IngestConfig
	fs      afero.Fs
	logger  *slog.Logger
	metrics *Metrics
	client  *http.Client
	now     func() time.Time
}

// IngestorOption mutates the ingestor during construction.
type IngestorOption func(*Ingestor)

// WithFs sets the filesystem path sources are read from and removed on. Defaults to the OS filesystem.
func WithFs(fsys afero.Fs) IngestorOption {
	return func(in *Ingestor) { in.fs = fsys }
}

func WithLogger(l *slog.Logger) IngestorOption {
	return func(in *Ingestor) { in.logger = l }
}

func WithMetrics(m *Metrics) IngestorOption {
	return func(in *Ingestor) { in.metrics = m }
}

// WithHTTPClient sets the client used by FromURL.
func WithHTTPClient(c *http.Client) IngestorOption {
	return func(in *Ingestor) { in.client = c }
}

func WithClock(now func() time.Time) IngestorOption {
	return func(in *Ingestor) { in.now = now }
}

// NewIngestor builds an ingestor. hooks may be nil, in which case a private registry is used.
func NewIngestor(disks *storage.Disks, files repository.FileRepository, owners repository.OwnerRepository, hooks *Hooks, cfg IngestConfig, opts ...IngestorOption) *Ingestor {
	if hooks == nil {
		hooks = NewHooks()
	}
	in := &Ingestor{
		disks:  disks,
		files:  files,
		owners: owners,
		hooks:  hooks,
		cfg:    cfg,
		fs:     afero.NewOsFs(),
		logger: slog.Default(),
		client: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(in)
		}
	}
	return in
}

// Hooks returns the registry consulted before and after each byte write.
func (in *Ingestor) Hooks() *Hooks {
	return in.hooks
}

// NewBuilder returns an empty builder.
func (in *Ingestor) NewBuilder() *Builder {
	return &Builder{in: in}
}

// Add returns a builder for src.
func (in *Ingestor) Add(src Source) *Builder {
	return in.NewBuilder().WithSource(src)
}

// FromDisk returns a builder that copies path from another disk, named after its base name.
func (in *Ingestor) FromDisk(ctx context.Context, diskID, p string) (*Builder, error) {
	disk, err := in.disks.Disk(diskID)
	if err != nil {
		return nil, err
	}
	rc, err := disk.ReadStream(ctx, p)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrSourceNotFound, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	return in.Add(StreamSource(rc, path.Base(p))).Named(path.Base(p)), nil
}

// FromURL returns a builder for the body of a GET on rawURL, named after the last path segment.
// The response body is closed by Finalize.
func (in *Ingestor) FromURL(ctx context.Context, rawURL string) (*Builder, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	resp, err := in.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, rawURL)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %d", ErrSourceUnreadable, rawURL, resp.StatusCode)
	}

	name, err := url.PathUnescape(path.Base(u.EscapedPath()))
	if err != nil || name == "/" || name == "." {
		name = ""
	}
	b := in.Add(StreamSource(resp.Body, name))
	if name != "" {
		b.Named(name)
	}
	return b, nil
}
