// Package sqlite is an embedded ticket store. Timestamps are kept as TEXT so
// rows imported with malformed dates survive and are simply left out of
// time-based reports.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS technicians (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tickets (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	priority    TEXT NOT NULL DEFAULT 'medium',
	status      TEXT NOT NULL DEFAULT 'pending',
	category    TEXT NOT NULL DEFAULT '',
	requester   TEXT NOT NULL DEFAULT '',
	phone       TEXT NOT NULL DEFAULT '',
	department  TEXT NOT NULL DEFAULT '',
	assigned_to TEXT,
	image_url   TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL DEFAULT '',
	updated_at  TEXT
);
CREATE INDEX IF NOT EXISTS idx_tickets_assigned_to ON tickets (assigned_to);
CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets (status);
`

type Options struct {
	DataSource      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
}

type Option func(*Options)

func WithDataSource(dsn string) Option {
	return func(o *Options) { o.DataSource = dsn }
}

func WithMaxOpenConns(count int) Option {
	return func(o *Options) { o.MaxOpenConns = count }
}

func WithConnMaxLifetime(d time.Duration) Option {
	return func(o *Options) { o.ConnMaxLifetime = d }
}

func WithRetry(attempts int, delay time.Duration) Option {
	return func(o *Options) {
		o.RetryAttempts = attempts
		o.RetryDelay = delay
	}
}

// Open connects to a SQLite database and applies the schema. An in-memory
// database is pinned to a single connection, since every connection to
// ":memory:" sees its own empty database.
func Open(ctx context.Context, opts ...Option) (*sql.DB, error) {
	options := &Options{
		DataSource:      ":memory:",
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
		RetryAttempts:   3,
		RetryDelay:      200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.DataSource == "" {
		return nil, fmt.Errorf("sqlite data source cannot be empty")
	}
	if options.DataSource == ":memory:" {
		options.MaxOpenConns = 1
		options.MaxIdleConns = 1
		options.ConnMaxLifetime = 0
	}
	if options.RetryAttempts < 1 {
		options.RetryAttempts = 1
	}

	var (
		db  *sql.DB
		err error
	)
	for i := 0; i < options.RetryAttempts; i++ {
		db, err = sql.Open("sqlite3", options.DataSource)
		if err == nil {
			db.SetMaxOpenConns(options.MaxOpenConns)
			db.SetMaxIdleConns(options.MaxIdleConns)
			db.SetConnMaxLifetime(options.ConnMaxLifetime)

			if err = db.PingContext(ctx); err == nil {
				break
			}
			db.Close()
		}
		if i < options.RetryAttempts-1 {
			time.Sleep(time.Duration(i+1) * options.RetryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite after %d attempts: %w", options.RetryAttempts, err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return db, nil
}
