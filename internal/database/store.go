package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shareit/internal/domain"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// Store implements every repository over either the pool or a transaction.
type Store struct {
	q       sqlx.ExtContext
	driver  string
	dialect goqu.DialectWrapper
}

var _ domain.Store = (*Store)(nil)

func (s *Store) Users() domain.UserRepository       { return s }
func (s *Store) Items() domain.ItemRepository       { return s }
func (s *Store) Bookings() domain.BookingRepository { return s }
func (s *Store) Comments() domain.CommentRepository { return s }
func (s *Store) Requests() domain.RequestRepository { return s }

type sqlBuilder interface {
	ToSQL() (string, []interface{}, error)
}

func (s *Store) get(ctx context.Context, dest interface{}, b sqlBuilder) error {
	query, args, err := b.ToSQL()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return sqlx.GetContext(ctx, s.q, dest, query, args...)
}

func (s *Store) selectAll(ctx context.Context, dest interface{}, b sqlBuilder) error {
	query, args, err := b.ToSQL()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return sqlx.SelectContext(ctx, s.q, dest, query, args...)
}

func (s *Store) exec(ctx context.Context, b sqlBuilder) (sql.Result, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.q.ExecContext(ctx, query, args...)
}

// insert adds one row and returns its generated id.
// goqu не поддерживает RETURNING для sqlite3, поэтому там берем LastInsertId.
func (s *Store) insert(ctx context.Context, table string, row goqu.Record) (int64, error) {
	ds := s.dialect.Insert(table).Prepared(true).Rows(row)

	if s.driver == DriverPostgres {
		query, args, err := ds.Returning("id").ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build query: %w", err)
		}
		var id int64
		if err := s.q.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	result, err := s.exec(ctx, ds)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *Store) count(ctx context.Context, table string, where ...goqu.Expression) (int, error) {
	var n int
	ds := s.dialect.From(table).Prepared(true).Select(goqu.COUNT(goqu.Star())).Where(where...)
	if err := s.get(ctx, &n, ds); err != nil {
		return 0, err
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func notFoundOr(err error, format string, args ...interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(format, args...)
	}
	return err
}
