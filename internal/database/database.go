package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"shareit/internal/config"
	"shareit/internal/domain"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DB owns the connection pool and hands out stores bound either to the pool
// or to a single transaction.
type DB struct {
	*sqlx.DB
	driver  string
	dialect goqu.DialectWrapper
	logger  *zerolog.Logger
}

// sqliteDriverName is go-sqlite3 with lower() replaced by a Unicode-aware version.
// Встроенный lower в SQLite понимает только ASCII.
const sqliteDriverName = "sqlite3_shareit"

var registerSQLite sync.Once

func registerSQLiteDriver() {
	registerSQLite.Do(func() {
		sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("lower", strings.ToLower, true)
			},
		})
	})
}

// Open connects to the database described by cfg and creates the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zerolog.Logger) (*DB, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverSQLite:
		return NewDB(ctx, cfg.Path, logger)
	case DriverPostgres:
		return NewPostgres(ctx, cfg.Postgres, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewDB opens a SQLite database at path. ":memory:" gives a private in-memory database.
func NewDB(ctx context.Context, path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		// Создаем директорию для БД, если её нет
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	registerSQLiteDriver()
	conn, err := sqlx.ConnectContext(ctx, sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite держит одну запись за раз, а :memory: живет в пределах соединения
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db := &DB{DB: conn, driver: DriverSQLite, dialect: goqu.Dialect("sqlite3"), logger: logger}
	if err := db.createTables(ctx, sqliteSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if logger != nil {
		logger.Info().Str("driver", DriverSQLite).Str("path", path).Msg("database initialized")
	}
	return db, nil
}

// NewPostgres connects through the pgx stdlib driver.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zerolog.Logger) (*DB, error) {
	conn, err := sqlx.ConnectContext(ctx, "pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if cfg.MaxConnections > 0 {
		conn.SetMaxOpenConns(cfg.MaxConnections)
	}

	db := &DB{DB: conn, driver: DriverPostgres, dialect: goqu.Dialect("postgres"), logger: logger}
	if err := db.createTables(ctx, postgresSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if logger != nil {
		logger.Info().Str("driver", DriverPostgres).Str("host", cfg.Host).Str("dbname", cfg.DBName).Msg("database initialized")
	}
	return db, nil
}

func (db *DB) createTables(ctx context.Context, queries []string) error {
	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Driver() string {
	return db.driver
}

// Store returns repositories that run directly on the pool.
func (db *DB) Store() domain.Store {
	return db.newStore(db.DB)
}

func (db *DB) newStore(q sqlx.ExtContext) *Store {
	return &Store{q: q, driver: db.driver, dialect: db.dialect}
}

// WithinTx implements domain.Transactor.
func (db *DB) WithinTx(ctx context.Context, readOnly bool, fn func(store domain.Store) error) error {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: readOnly})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(db.newStore(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && db.logger != nil {
			db.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE
        )`,
	`CREATE TABLE IF NOT EXISTS requests (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            description TEXT NOT NULL,
            requestor_id INTEGER NOT NULL REFERENCES users(id),
            created DATETIME NOT NULL
        )`,
	`CREATE TABLE IF NOT EXISTS items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            description TEXT NOT NULL,
            available BOOLEAN NOT NULL,
            owner_id INTEGER NOT NULL REFERENCES users(id),
            request_id INTEGER REFERENCES requests(id)
        )`,
	`CREATE TABLE IF NOT EXISTS bookings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            start_at DATETIME NOT NULL,
            end_at DATETIME NOT NULL,
            item_id INTEGER NOT NULL REFERENCES items(id),
            booker_id INTEGER NOT NULL REFERENCES users(id),
            status TEXT NOT NULL DEFAULT 'WAITING'
        )`,
	`CREATE TABLE IF NOT EXISTS comments (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            text TEXT NOT NULL,
            item_id INTEGER NOT NULL REFERENCES items(id),
            author_id INTEGER NOT NULL REFERENCES users(id),
            created DATETIME NOT NULL
        )`,

	`CREATE INDEX IF NOT EXISTS idx_items_owner_id ON items(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_items_request_id ON items(request_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_item_id ON bookings(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_booker_id ON bookings(booker_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_start_at ON bookings(start_at)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_item_id ON comments(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_requestor_id ON requests(requestor_id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            name VARCHAR(255) NOT NULL,
            email VARCHAR(512) NOT NULL UNIQUE
        )`,
	`CREATE TABLE IF NOT EXISTS requests (
            id BIGSERIAL PRIMARY KEY,
            description VARCHAR(1000) NOT NULL,
            requestor_id BIGINT NOT NULL REFERENCES users(id),
            created TIMESTAMPTZ NOT NULL
        )`,
	`CREATE TABLE IF NOT EXISTS items (
            id BIGSERIAL PRIMARY KEY,
            name VARCHAR(255) NOT NULL,
            description VARCHAR(1000) NOT NULL,
            available BOOLEAN NOT NULL,
            owner_id BIGINT NOT NULL REFERENCES users(id),
            request_id BIGINT REFERENCES requests(id)
        )`,
	`CREATE TABLE IF NOT EXISTS bookings (
            id BIGSERIAL PRIMARY KEY,
            start_at TIMESTAMPTZ NOT NULL,
            end_at TIMESTAMPTZ NOT NULL,
            item_id BIGINT NOT NULL REFERENCES items(id),
            booker_id BIGINT NOT NULL REFERENCES users(id),
            status VARCHAR(16) NOT NULL DEFAULT 'WAITING'
        )`,
	`CREATE TABLE IF NOT EXISTS comments (
            id BIGSERIAL PRIMARY KEY,
            text VARCHAR(1000) NOT NULL,
            item_id BIGINT NOT NULL REFERENCES items(id),
            author_id BIGINT NOT NULL REFERENCES users(id),
            created TIMESTAMPTZ NOT NULL
        )`,

	`CREATE INDEX IF NOT EXISTS idx_items_owner_id ON items(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_items_request_id ON items(request_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_item_id ON bookings(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_booker_id ON bookings(booker_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_start_at ON bookings(start_at)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_item_id ON comments(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_requestor_id ON requests(requestor_id)`,
}
