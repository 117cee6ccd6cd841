package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/sprachweg/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxManager_Commits(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	var gotTx *sql.Tx
	err := NewTxManager(db).RunInTransaction(context.Background(), func(_ context.Context, tx *sql.Tx) error {
		gotTx = tx
		return nil
	})
	require.NoError(t, err)
	assert.NotNil(t, gotTx)
}

func TestTxManager_CommitConflictIsRetryable(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		code string
	}{
		{"serialization failure", serializationFailureCode},
		{"deadlock", deadlockDetectedCode},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)

			mock.ExpectBegin()
			mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: tc.code})

			err := NewTxManager(db).RunInTransaction(context.Background(), func(context.Context, *sql.Tx) error {
				return nil
			})
			require.Error(t, err)
			assert.True(t, store.IsConflictError(err))
			assert.ErrorIs(t, err, store.ErrTransactionFailed)
		})
	}
}

func TestTxManager_OtherErrorsPassThrough(t *testing.T) {
	t.Parallel()

	t.Run("commit failure", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

		err := NewTxManager(db).RunInTransaction(context.Background(), func(context.Context, *sql.Tx) error {
			return nil
		})
		assert.ErrorIs(t, err, store.ErrTransactionFailed)
		assert.False(t, store.IsConflictError(err))
	})

	t.Run("function error", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectRollback()

		fnErr := errors.New("lesson missing")
		err := NewTxManager(db).RunInTransaction(context.Background(), func(context.Context, *sql.Tx) error {
			return fnErr
		})
		assert.Equal(t, fnErr, err)
	})

	t.Run("statement conflict is not wrapped twice", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectRollback()

		mapped := MapError(&pgconn.PgError{Code: serializationFailureCode})
		err := NewTxManager(db).RunInTransaction(context.Background(), func(context.Context, *sql.Tx) error {
			return mapped
		})
		assert.Equal(t, mapped, err)
	})
}
