package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"fileapi/internal/repository"
)

// TxManager implements repository.Transactor on top of *sql.DB.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a TxManager.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

var _ repository.Transactor = (*TxManager)(nil)

func (m *TxManager) WithinTx(ctx context.Context, fn func(repository.FileRepository, repository.OwnerRepository) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(NewFilePostgres(tx), NewOwnerPostgres(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w; rollback failed: %v", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
