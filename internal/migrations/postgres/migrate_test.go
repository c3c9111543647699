package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sqlxmock "github.com/zhashkevych/go-sqlxmock"
)

func TestSchema_DeclaresConfirmedSlotIndex(t *testing.T) {
	assert.Contains(t, Schema(), ConfirmedSlotIndex)
	assert.Contains(t, Schema(), "WHERE status = 'confirmed'")
}

func TestRunMigration(t *testing.T) {
	t.Run("commits the schema", func(t *testing.T) {
		db, mock, err := sqlxmock.Newx()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(Schema())).WillReturnResult(sqlxmock.NewResult(0, 0))
		mock.ExpectCommit()

		require.NoError(t, RunMigration(context.Background(), db))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		db, mock, err := sqlxmock.Newx()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(Schema())).WillReturnError(errors.New("syntax error"))
		mock.ExpectRollback()

		err = RunMigration(context.Background(), db)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to apply schema")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
