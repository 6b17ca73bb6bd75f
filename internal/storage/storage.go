// Package storage is the PostgreSQL persistence layer of tipsgol.
//
// Every method runs on the transaction carried by ctx when there is one
// (see WithinTx), otherwise directly on the pool.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// pgx driver for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrTipNotFound          = errors.New("tip not found")
)

// Storage wraps the connection pool.
type Storage struct {
	DB *sql.DB
}

type txKey struct{}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// New opens the pool and checks that the database answers.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady reports an error until the schema has been migrated.
func CheckDatabaseReady(ctx context.Context, s *Storage) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
		SELECT FROM information_schema.tables
		WHERE table_name = 'users'
	)`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("storage.CheckDatabaseReady: %w", err)
	}
	if !exists {
		return errors.New("storage.CheckDatabaseReady: table users is missing")
	}
	return nil
}

// WaitReady polls CheckDatabaseReady until it succeeds, attempts run out or ctx ends.
func WaitReady(ctx context.Context, s *Storage, attempts int, delay time.Duration) error {
	var err error
	for range attempts {
		if err = CheckDatabaseReady(ctx, s); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("storage.WaitReady: not ready after %d attempts: %w", attempts, err)
}

// Close closes the pool.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// WithinTx runs fn in a transaction. Storage calls made with the ctx passed to fn
// join it. A nested call reuses the outer transaction.
func (s *Storage) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	const op = "storage.WithinTx"
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%s: rollback: %v: %w", op, rbErr, err)
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.DB
}

func checkCtx(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		return nil
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
