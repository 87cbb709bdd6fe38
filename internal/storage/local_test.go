package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemDisk(t *testing.T, baseURL string) (Disk, afero.Fs) {
	t.Helper()
	mem := afero.NewMemMapFs()
	disk, err := NewLocal(mem, "/data", baseURL)
	require.NoError(t, err)
	return disk, mem
}

func TestNewLocal(t *testing.T) {
	_, err := NewLocal(afero.NewMemMapFs(), "", "")
	assert.Error(t, err)

	_, mem := newMemDisk(t, "")
	ok, err := afero.DirExists(mem, "/data")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalDisk_PutAndRead(t *testing.T) {
	ctx := context.Background()
	disk, mem := newMemDisk(t, "")

	err := disk.Put(ctx, "2024/06/abc.txt", strings.NewReader("hello"), PutOptions{Size: 5})
	require.NoError(t, err)

	// written below the root, temp file renamed away
	ok, _ := afero.Exists(mem, "/data/2024/06/abc.txt")
	assert.True(t, ok)
	ok, _ = afero.Exists(mem, "/data/2024/06/abc.txt.tmp")
	assert.False(t, ok)

	exists, err := disk.Exists(ctx, "2024/06/abc.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := disk.ReadStream(ctx, "2024/06/abc.txt")
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	ts, ok, err := disk.LastModified(ctx, "2024/06/abc.txt")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, ts.IsZero())
}

func TestLocalDisk_Missing(t *testing.T) {
	ctx := context.Background()
	disk, _ := newMemDisk(t, "")

	exists, err := disk.Exists(ctx, "nope.bin")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = disk.ReadStream(ctx, "nope.bin")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, ok, err := disk.LastModified(ctx, "nope.bin")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalDisk_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	disk, _ := newMemDisk(t, "")

	require.NoError(t, disk.Put(ctx, "a.bin", strings.NewReader("x"), PutOptions{Size: 1}))
	require.NoError(t, disk.Delete(ctx, "a.bin"))
	require.NoError(t, disk.Delete(ctx, "a.bin"))

	exists, err := disk.Exists(ctx, "a.bin")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalDisk_PathCannotEscapeRoot(t *testing.T) {
	ctx := context.Background()
	disk, mem := newMemDisk(t, "")

	require.NoError(t, disk.Put(ctx, "../../etc/evil", strings.NewReader("x"), PutOptions{Size: 1}))

	ok, _ := afero.Exists(mem, "/etc/evil")
	assert.False(t, ok)
	ok, _ = afero.Exists(mem, "/data/etc/evil")
	assert.True(t, ok)
}

func TestLocalDisk_URL(t *testing.T) {
	private, _ := newMemDisk(t, "")
	_, ok := private.URL("a.jpg")
	assert.False(t, ok)

	public, _ := newMemDisk(t, "https://cdn.example.com/files/")
	u, ok := public.URL("2024/a.jpg")
	assert.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/files/2024/a.jpg", u)
}

func TestDisks(t *testing.T) {
	disks := NewDisks()
	local, _ := newMemDisk(t, "")
	disks.Register("local", local)
	disks.Register("backup", local)

	got, err := disks.Disk("local")
	require.NoError(t, err)
	assert.Equal(t, local, got)

	_, err = disks.Disk("s3")
	assert.ErrorIs(t, err, ErrUnknownDisk)

	assert.Equal(t, []string{"backup", "local"}, disks.IDs())
}
