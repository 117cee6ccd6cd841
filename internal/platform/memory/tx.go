package memory

import (
	"context"
	"log/slog"

	"github.com/phrazzld/sprachweg/internal/platform/logger"
	"github.com/phrazzld/sprachweg/internal/store"
)

// TxManager runs transactions against a DB one at a time.
type TxManager struct {
	db *DB
}

// NewTxManager creates a TxManager for db.
func NewTxManager(db *DB) *TxManager {
	return &TxManager{db: db}
}

// Ensure TxManager implements store.TxManager interface
var _ store.TxManager = (*TxManager)(nil)

// RunInTransaction implements store.TxManager.
// fn receives a nil *sql.Tx; memory stores ignore WithTx and find the
// transaction through the context instead. Writes made with fn's context are
// staged and become visible to other readers only when fn returns nil. If fn
// returns an error or panics the staged writes are discarded.
func (m *TxManager) RunInTransaction(ctx context.Context, fn store.TxFn) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.db.txMu.Lock()
	defer m.db.txMu.Unlock()

	m.db.mu.RLock()
	staged := m.db.data.clone()
	m.db.mu.RUnlock()

	defer func() {
		if p := recover(); p != nil {
			logger.FromContext(ctx).Error("rolled back transaction after panic", slog.Any("panic", p))
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{db: m.db}, &staged), nil); err != nil {
		return err
	}

	m.db.mu.Lock()
	m.db.data = staged
	m.db.mu.Unlock()
	return nil
}
