package postgres

import (
	"context"
	"database/sql"
	"time"

	"fileapi/internal/model"
	"fileapi/internal/repository"
)

// OwnerPostgres is a PostgreSQL implementation of repository.OwnerRepository.
type OwnerPostgres struct {
	db DBTX
}

// NewOwnerPostgres creates a new OwnerPostgres repository.
func NewOwnerPostgres(db DBTX) *OwnerPostgres {
	return &OwnerPostgres{db: db}
}

var _ repository.OwnerRepository = (*OwnerPostgres)(nil)

func (r *OwnerPostgres) Create(ctx context.Context, o *model.Owner) (*model.Owner, error) {
	const q = `
		INSERT INTO owners (kind, id, created_at)
		VALUES ($1, $2, $3)
		RETURNING kind, id, created_at, deleted_at
	`
	var out model.Owner
	err := r.db.QueryRowContext(ctx, q, o.Kind, o.ID, time.Now().UTC()).
		Scan(&out.Kind, &out.ID, &out.CreatedAt, &out.DeletedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

func (r *OwnerPostgres) Find(ctx context.Context, ref model.OwnerRef) (*model.Owner, error) {
	const q = `SELECT kind, id, created_at, deleted_at FROM owners WHERE kind = $1 AND id = $2`
	var out model.Owner
	err := r.db.QueryRowContext(ctx, q, ref.Kind, ref.ID).
		Scan(&out.Kind, &out.ID, &out.CreatedAt, &out.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *OwnerPostgres) Exists(ctx context.Context, ref model.OwnerRef) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM owners WHERE kind = $1 AND id = $2)`
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, ref.Kind, ref.ID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// SoftDelete sets deleted_at once; repeated calls keep the first timestamp.
func (r *OwnerPostgres) SoftDelete(ctx context.Context, ref model.OwnerRef) error {
	const q = `UPDATE owners SET deleted_at = COALESCE(deleted_at, $3) WHERE kind = $1 AND id = $2`
	return r.execOne(ctx, q, ref.Kind, ref.ID, time.Now().UTC())
}

func (r *OwnerPostgres) Restore(ctx context.Context, ref model.OwnerRef) error {
	const q = `UPDATE owners SET deleted_at = NULL WHERE kind = $1 AND id = $2`
	return r.execOne(ctx, q, ref.Kind, ref.ID)
}

func (r *OwnerPostgres) Delete(ctx context.Context, ref model.OwnerRef) error {
	const q = `DELETE FROM owners WHERE kind = $1 AND id = $2`
	return r.execOne(ctx, q, ref.Kind, ref.ID)
}

// execOne runs q and reports sql.ErrNoRows when no owner row matched.
func (r *OwnerPostgres) execOne(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
