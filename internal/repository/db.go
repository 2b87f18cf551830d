package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/zeebo/errs"

	"github.com/darkodi/url-alias/internal/config"
	"github.com/darkodi/url-alias/internal/model"
)

var (
	// Error wraps database failures
	Error = errs.Class("repository")
	// ErrNotFound is returned when a row does not exist
	ErrNotFound = errs.Class("record not found")
	// ErrInvalidMove is returned when a move or delete would break the tree
	ErrInvalidMove = errs.Class("invalid move")
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id BIGINT PRIMARY KEY,
		parent_location_id BIGINT NOT NULL,
		content_id BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS locations_parent_idx ON locations (parent_location_id)`,
	`CREATE INDEX IF NOT EXISTS locations_content_idx ON locations (content_id)`,
	`CREATE TABLE IF NOT EXISTS contents (
		id BIGINT PRIMARY KEY,
		main_language_code TEXT NOT NULL,
		always_available BOOLEAN NOT NULL DEFAULT FALSE,
		version_no INTEGER NOT NULL DEFAULT 1,
		status INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS content_names (
		content_id BIGINT NOT NULL,
		language_code TEXT NOT NULL,
		name TEXT NOT NULL,
		PRIMARY KEY (content_id, language_code)
	)`,
	`CREATE TABLE IF NOT EXISTS url_aliases (
		id BIGINT PRIMARY KEY,
		type INTEGER NOT NULL,
		location_id BIGINT NOT NULL DEFAULT 0,
		resource TEXT NOT NULL DEFAULT '',
		path TEXT NOT NULL,
		language_codes TEXT NOT NULL,
		always_available BOOLEAN NOT NULL DEFAULT FALSE,
		is_custom BOOLEAN NOT NULL DEFAULT FALSE,
		is_history BOOLEAN NOT NULL DEFAULT FALSE,
		forward BOOLEAN NOT NULL DEFAULT FALSE
	)`,
}

// DB is a database handle together with the statement builder for its driver
type DB struct {
	*sql.DB
	driver string
	sb     sq.StatementBuilderType
}

// Open connects to the configured database and creates the schema
func Open(cfg *config.DatabaseConfig) (*DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	if cfg.Driver != "postgres" {
		// one connection keeps ":memory:" databases shared and avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}

	d := &DB{
		DB:     db,
		driver: cfg.Driver,
		sb:     sq.StatementBuilder.PlaceholderFormat(placeholderFor(cfg.Driver)),
	}

	if err := d.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

// placeholderFor returns $n placeholders for postgres and ? otherwise
func placeholderFor(driver string) sq.PlaceholderFormat {
	if driver == "postgres" {
		return sq.Dollar
	}
	return sq.Question
}

func (d *DB) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.ExecContext(ctx, stmt); err != nil {
			return Error.New("create schema: %v", err)
		}
	}

	// the root location always exists and has no parent
	sqlStr, args, err := d.sb.Insert("locations").
		Columns("id", "parent_location_id", "content_id").
		Values(model.RootLocationID, 0, 0).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return Error.New("build root location insert: %v", err)
	}
	if _, err := d.ExecContext(ctx, sqlStr, args...); err != nil {
		return Error.New("seed root location: %v", err)
	}
	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// nextID returns MAX(id)+1 for table
func nextID(ctx context.Context, q querier, sb sq.StatementBuilderType, table string) (int64, error) {
	sqlStr, args, err := sb.Select("MAX(id)").From(table).ToSql()
	if err != nil {
		return 0, Error.Wrap(err)
	}

	var maxID sql.NullInt64
	if err := q.QueryRowContext(ctx, sqlStr, args...).Scan(&maxID); err != nil {
		return 0, Error.New("next id for %s: %v", table, err)
	}
	if !maxID.Valid {
		return 1, nil
	}
	return maxID.Int64 + 1, nil
}

// withTx runs fn in a transaction, rolling back on error
func (d *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return Error.Wrap(err)
	}
	defer func() {
		if err != nil {
			err = errs.Combine(err, tx.Rollback())
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return Error.Wrap(tx.Commit())
}

func exec(ctx context.Context, e querier, b sq.Sqlizer) error {
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return Error.Wrap(err)
	}
	if _, err := e.ExecContext(ctx, sqlStr, args...); err != nil {
		return Error.New("%s: %v", sqlStr, err)
	}
	return nil
}

func notFound(err error, format string, args ...any) error {
	if err == sql.ErrNoRows {
		return ErrNotFound.New(format, args...)
	}
	return Error.New("%s: %v", fmt.Sprintf(format, args...), err)
}

// Driver returns the database/sql driver name
func (d *DB) Driver() string {
	return d.driver
}
