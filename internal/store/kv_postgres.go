package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/keyhaven/keyhaven/internal/logger"
)

// postgresKV is the PostgreSQL-backed implementation of [KeyValueStore].
// All entries live in a single kv_entries(key, value) table; the primary
// key on key provides the single-key atomicity the interface assumes and
// backs PutIfAbsent through a unique-violation check.
type postgresKV struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	logger  *logger.Logger
}

// NewPostgresKV opens a connection to the given DSN, pings it, and returns
// a [KeyValueStore] backed by the kv_entries table. Schema creation is
// handled by the goose migrations in the migrations package.
func NewPostgresKV(ctx context.Context, dsn string, log *logger.Logger) (KeyValueStore, *sql.DB, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Err(err).Str("func", "NewPostgresKV").Msg("error occured during database connection")
		return nil, nil, fmt.Errorf("error occured during database connection: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(4)

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewPostgresKV").Msg("error connecting database (ping)")
		return nil, nil, err
	}
	log.Info().Str("func", "NewPostgresKV").Msg("connected to database successfully")

	kv := &postgresKV{
		db:      conn,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger:  log,
	}

	return kv, conn, nil
}

func (p *postgresKV) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := p.builder.
		Select("value").
		From("kv_entries").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("%w: building kv get query: %w", ErrStoreUnavailable, err)
	}

	var value string
	err = p.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: kv get: %w", ErrStoreUnavailable, err)
	}

	return value, true, nil
}

func (p *postgresKV) Put(ctx context.Context, key string, value string) error {
	query, args, err := p.builder.
		Insert("kv_entries").
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: building kv put query: %w", ErrStoreUnavailable, err)
	}

	if _, err = p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: kv put: %w", ErrStoreUnavailable, err)
	}

	return nil
}

func (p *postgresKV) PutIfAbsent(ctx context.Context, key string, value string) error {
	query, args, err := p.builder.
		Insert("kv_entries").
		Columns("key", "value").
		Values(key, value).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: building kv put-if-absent query: %w", ErrStoreUnavailable, err)
	}

	if _, err = p.db.ExecContext(ctx, query, args...); err != nil {
		if postgresError(err) == pgerrcode.UniqueViolation {
			return ErrKeyExists
		}
		return fmt.Errorf("%w: kv put-if-absent: %w", ErrStoreUnavailable, err)
	}

	return nil
}

func (p *postgresKV) Delete(ctx context.Context, key string) error {
	query, args, err := p.builder.
		Delete("kv_entries").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: building kv delete query: %w", ErrStoreUnavailable, err)
	}

	if _, err = p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: kv delete: %w", ErrStoreUnavailable, err)
	}

	return nil
}

// postgresError extracts the PostgreSQL error code from a driver error, or
// returns an empty string for non-postgres errors.
func postgresError(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}
