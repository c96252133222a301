package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/Nazarious-ucu/weather-lookup-api/migrations"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const (
	pingTimeout     = 5 * time.Second
	maxOpenConns    = 10
	connMaxLifetime = 30 * time.Minute
)

var ErrUnknownDialect = errors.New("unknown database dialect")

// ParseDialect accepts "sqlite" or "postgres".
func ParseDialect(name string) (Dialect, error) {
	switch Dialect(name) {
	case DialectSQLite, DialectPostgres:
		return Dialect(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
}

func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

func (d Dialect) gooseDialect() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite3"
}

// Open connects to the database and verifies the connection. For sqlite the
// source is a file path or ":memory:"; for postgres it is a connection URL.
func Open(ctx context.Context, dialect Dialect, source string) (*sql.DB, error) {
	if source == "" {
		return nil, errors.New("open database: source cannot be empty")
	}

	dsn := source
	if dialect == DialectSQLite && source != ":memory:" {
		dsn = "file:" + source + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}

	if dialect == DialectSQLite {
		// one writer; also keeps a :memory: database on a single connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns)
		db.SetConnMaxLifetime(connMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("verify %s connection: %w", dialect, err)
	}

	return db, nil
}

// Migrate applies the embedded migrations for dialect.
func Migrate(db *sql.DB, dialect Dialect) error {
	dir, err := fs.Sub(migrations.FS, string(dialect))
	if err != nil {
		return fmt.Errorf("migrations for %s: %w", dialect, err)
	}

	goose.SetBaseFS(dir)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect.gooseDialect()); err != nil {
		return err
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("apply %s migrations: %w", dialect, err)
	}

	return nil
}
