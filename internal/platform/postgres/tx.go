package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/phrazzld/sprachweg/internal/store"
)

// TxManager runs units of work in PostgreSQL transactions.
type TxManager struct {
	db *sql.DB
}

var _ store.TxManager = (*TxManager)(nil)

// NewTxManager creates a TxManager for db.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// RunInTransaction implements store.TxManager.
//
// Serialization failures and deadlocks reported while committing are marked
// with store.ErrConflict so callers can retry the unit of work, the same as
// conflicts raised by individual statements.
func (m *TxManager) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	err := store.RunInTransaction(ctx, m.db, fn)
	if err != nil && !store.IsConflictError(err) && IsConflict(err) {
		return fmt.Errorf("%w: %w", store.ErrConflict, err)
	}
	return err
}
