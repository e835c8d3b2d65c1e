package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyhaven/keyhaven/internal/logger"
)

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func newMockKV(t *testing.T) (*postgresKV, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	kv := &postgresKV{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger:  logger.Nop(),
	}
	return kv, mock
}

// ─────────────────────────────────────────────
// Get
// ─────────────────────────────────────────────

func TestPostgresKV_GetFound(t *testing.T) {
	kv, mock := newMockKV(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_entries WHERE key = $1")).
		WithArgs("k").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("v"))

	value, found, err := kv.Get(context.Background(), "k")

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKV_GetMissing(t *testing.T) {
	kv, mock := newMockKV(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_entries WHERE key = $1")).
		WithArgs("k").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, found, err := kv.Get(context.Background(), "k")

	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─────────────────────────────────────────────
// Put / PutIfAbsent
// ─────────────────────────────────────────────

func TestPostgresKV_PutUpserts(t *testing.T) {
	kv, mock := newMockKV(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO kv_entries (key,value) VALUES ($1,$2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value")).
		WithArgs("k", "v").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, kv.Put(context.Background(), "k", "v"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKV_PutIfAbsentUniqueViolation(t *testing.T) {
	kv, mock := newMockKV(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv_entries (key,value) VALUES ($1,$2)")).
		WithArgs("k", "v").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	err := kv.PutIfAbsent(context.Background(), "k", "v")

	assert.ErrorIs(t, err, ErrKeyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─────────────────────────────────────────────
// Delete
// ─────────────────────────────────────────────

func TestPostgresKV_Delete(t *testing.T) {
	kv, mock := newMockKV(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kv_entries WHERE key = $1")).
		WithArgs("k").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, kv.Delete(context.Background(), "k"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
