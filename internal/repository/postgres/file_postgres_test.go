package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fileapi/internal/model"
	"fileapi/internal/repository"
)

var fileRowColumns = []string{
	"id", "owner_kind", "owner_id", "uuid", "display_name", "disk", "filepath",
	"filename", "mimetype", "size", "meta", "created_at", "updated_at",
}

func TestFilePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	label := "Cover"
	f := &model.File{
		Owner:       model.OwnerRef{Kind: "post", ID: "1"},
		UUID:        "0f8fad5b-d9cb-469f-a165-70867728950e",
		DisplayName: &label,
		Disk:        "local",
		Filepath:    "2024/06/0f8fad5b-d9cb-469f-a165-70867728950e.jpg",
		Filename:    "photo.jpg",
		Mimetype:    "image/jpeg",
		Size:        2048,
		Meta:        map[string]any{"alt": "a photo"},
	}

	t.Run("success", func(t *testing.T) {
		now := time.Now().UTC()
		rows := sqlmock.NewRows(fileRowColumns).
			AddRow("row-id", "post", "1", f.UUID, "Cover", "local", f.Filepath, "photo.jpg", "image/jpeg", int64(2048), []byte(`{"alt":"a photo"}`), now, now)

		mock.ExpectQuery("INSERT INTO files").
			WithArgs("post", "1", f.UUID, "Cover", "local", f.Filepath, "photo.jpg", "image/jpeg", int64(2048), []byte(`{"alt":"a photo"}`), sqlmock.AnyArg()).
			WillReturnRows(rows)

		out, err := repo.Create(ctx, f)

		require.NoError(t, err)
		assert.Equal(t, "row-id", out.ID)
		assert.Equal(t, "Cover", *out.DisplayName)
		assert.Equal(t, map[string]any{"alt": "a photo"}, out.Meta)
		assert.Equal(t, model.OwnerRef{Kind: "post", ID: "1"}, out.Owner)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO files").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "files_disk_filepath_key"})

		out, err := repo.Create(ctx, f)

		assert.Nil(t, out)
		assert.ErrorIs(t, err, repository.ErrUniqueViolation)
		assert.Contains(t, err.Error(), "files_disk_filepath_key")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("owner foreign key violation", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO files").
			WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "files_owner_fkey"})

		out, err := repo.Create(ctx, f)

		assert.Nil(t, out)
		assert.ErrorIs(t, err, repository.ErrOwnerMissing)
		assert.False(t, errors.Is(err, repository.ErrUniqueViolation))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other error passes through", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO files").WillReturnError(errors.New("conn reset"))

		_, err := repo.Create(ctx, f)

		assert.EqualError(t, err, "conn reset")
		assert.False(t, errors.Is(err, repository.ErrUniqueViolation))
	})
}

func TestFilePostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	t.Run("found without display name or meta", func(t *testing.T) {
		rows := sqlmock.NewRows(fileRowColumns).
			AddRow("test-id", "post", "1", "u-1", nil, "local", "u-1.txt", "file.txt", "text/plain", int64(100), nil, time.Now(), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM files WHERE id = ?").
			WithArgs("test-id").
			WillReturnRows(rows)

		f, err := repo.FindByID(ctx, "test-id")

		require.NoError(t, err)
		assert.Equal(t, "test-id", f.ID)
		assert.Nil(t, f.DisplayName)
		assert.Nil(t, f.Meta)
		assert.Equal(t, "file", f.Name())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM files WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		f, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, f)
	})

	t.Run("corrupt meta", func(t *testing.T) {
		rows := sqlmock.NewRows(fileRowColumns).
			AddRow("bad-id", "post", "1", "u-2", nil, "local", "u-2.txt", "file.txt", "text/plain", int64(1), []byte(`{`), time.Now(), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM files WHERE id = ?").
			WithArgs("bad-id").
			WillReturnRows(rows)

		_, err := repo.FindByID(ctx, "bad-id")
		assert.ErrorContains(t, err, "decode meta of file bad-id")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_ListByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()
	owner := model.OwnerRef{Kind: "post", ID: "7"}

	rows := sqlmock.NewRows(fileRowColumns).
		AddRow("a", "post", "7", "u-a", nil, "local", "u-a.jpg", "a.jpg", "image/jpeg", int64(1), nil, time.Now(), time.Now()).
		AddRow("b", "post", "7", "u-b", nil, "s3", "u-b.png", "b.png", "image/png", int64(2), []byte(`{"k":"v"}`), time.Now(), time.Now())

	mock.ExpectQuery("SELECT (.+) FROM files WHERE owner_kind = (.+) AND owner_id = (.+) ORDER BY created_at").
		WithArgs("post", "7").
		WillReturnRows(rows)

	files, err := repo.ListByOwner(ctx, owner)

	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a", files[0].ID)
	assert.Equal(t, "s3", files[1].Disk)
	assert.Equal(t, "v", files[1].Meta["k"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	label := "Renamed"
	f := &model.File{ID: "id-1", DisplayName: &label}

	rows := sqlmock.NewRows(fileRowColumns).
		AddRow("id-1", "post", "1", "u", "Renamed", "local", "u.txt", "a.txt", "text/plain", int64(1), nil, time.Now(), time.Now())

	mock.ExpectQuery("UPDATE files SET display_name").
		WithArgs("id-1", "Renamed", nil, sqlmock.AnyArg()).
		WillReturnRows(rows)

	out, err := repo.Update(ctx, f)

	require.NoError(t, err)
	assert.Equal(t, "Renamed", out.Name())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM files WHERE id = ?").
		WithArgs("test-id").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM files WHERE owner_kind = (.+) AND owner_id = (.+)").
		WithArgs("post", "1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.Delete(ctx, "test-id"))

	n, err := repo.DeleteByOwner(ctx, model.OwnerRef{Kind: "post", ID: "1"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
