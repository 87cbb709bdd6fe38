package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"fileapi/internal/model"
	"fileapi/internal/repository"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FilePostgres struct {
	db DBTX
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db DBTX) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

const fileColumns = `id, owner_kind, owner_id, uuid, display_name, disk, filepath, filename, mimetype, size, meta, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*model.File, error) {
	var (
		f    model.File
		meta []byte
	)
	if err := row.Scan(
		&f.ID,
		&f.Owner.Kind,
		&f.Owner.ID,
		&f.UUID,
		&f.DisplayName,
		&f.Disk,
		&f.Filepath,
		&f.Filename,
		&f.Mimetype,
		&f.Size,
		&meta,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &f.Meta); err != nil {
			return nil, fmt.Errorf("decode meta of file %s: %w", f.ID, err)
		}
	}
	return &f, nil
}

func encodeMeta(meta map[string]any) (any, error) {
	if meta == nil {
		return nil, nil
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode meta: %w", err)
	}
	return b, nil
}

// mapError translates driver errors into repository errors.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", repository.ErrUniqueViolation, pgErr.ConstraintName)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s", repository.ErrOwnerMissing, pgErr.ConstraintName)
	default:
		return err
	}
}

// Create inserts a new file row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, f *model.File) (*model.File, error) {
	meta, err := encodeMeta(f.Meta)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	q := `
		INSERT INTO files (owner_kind, owner_id, uuid, display_name, disk, filepath, filename, mimetype, size, meta, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING ` + fileColumns
	row := r.db.QueryRowContext(ctx, q,
		f.Owner.Kind,
		f.Owner.ID,
		f.UUID,
		f.DisplayName,
		f.Disk,
		f.Filepath,
		f.Filename,
		f.Mimetype,
		f.Size,
		meta,
		now,
	)
	out, err := scanFile(row)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// FindByID fetches a single file by its ID.
func (r *FilePostgres) FindByID(ctx context.Context, id string) (*model.File, error) {
	q := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	return scanFile(r.db.QueryRowContext(ctx, q, id))
}

// ListByOwner returns the owner's files ordered by creation time.
func (r *FilePostgres) ListByOwner(ctx context.Context, owner model.OwnerRef) ([]model.File, error) {
	q := `SELECT ` + fileColumns + `
		FROM files
		WHERE owner_kind = $1 AND owner_id = $2
		ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, owner.Kind, owner.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update stores display_name and meta. Owner, path and content columns are never rewritten.
func (r *FilePostgres) Update(ctx context.Context, f *model.File) (*model.File, error) {
	meta, err := encodeMeta(f.Meta)
	if err != nil {
		return nil, err
	}
	q := `
		UPDATE files SET display_name = $2, meta = $3, updated_at = $4
		WHERE id = $1
		RETURNING ` + fileColumns
	return scanFile(r.db.QueryRowContext(ctx, q, f.ID, f.DisplayName, meta, time.Now().UTC()))
}

// Delete removes a file by ID. It does not return an error if the row does not exist.
func (r *FilePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM files WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// DeleteByOwner removes every file row of the owner.
func (r *FilePostgres) DeleteByOwner(ctx context.Context, owner model.OwnerRef) (int64, error) {
	const q = `DELETE FROM files WHERE owner_kind = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, q, owner.Kind, owner.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
