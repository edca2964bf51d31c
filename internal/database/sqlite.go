package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mixelka/disconnectmon/pkg/models"
)

// sqliteMaxVars keeps IN (...) lists under SQLite's bound-parameter limit
const sqliteMaxVars = 500

const sqliteUpsert = `
	INSERT INTO disconnected_accounts (
		email_account_id, from_email, from_name, account_type, tags, disconnection_type,
		first_disconnected_at, last_seen_disconnected_at, currently_disconnected, disconnect_count, last_payload
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, 1, ?)
	ON CONFLICT(email_account_id) DO UPDATE SET
		from_email = excluded.from_email,
		from_name = excluded.from_name,
		account_type = excluded.account_type,
		tags = excluded.tags,
		disconnection_type = excluded.disconnection_type,
		last_seen_disconnected_at = MAX(disconnected_accounts.last_seen_disconnected_at, excluded.last_seen_disconnected_at),
		disconnect_count = CASE
			WHEN disconnected_accounts.currently_disconnected THEN disconnected_accounts.disconnect_count
			ELSE disconnected_accounts.disconnect_count + 1
		END,
		currently_disconnected = 1,
		last_payload = excluded.last_payload
`

// SQLiteStore is a Store backed by a local SQLite file
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLite opens the database at path, creating the directory and schema if needed
func NewSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sqlx.ConnectContext(ctx, "sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CurrentlyDisconnectedIDs returns the ids of rows flagged currently_disconnected
func (s *SQLiteStore) CurrentlyDisconnectedIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	query := `SELECT email_account_id FROM disconnected_accounts WHERE currently_disconnected = 1 ORDER BY email_account_id`
	if err := s.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("failed to load disconnected ids: %w", err)
	}
	return ids, nil
}

// ApplySnapshot upserts accounts and marks reconnected ids in one transaction
func (s *SQLiteStore) ApplySnapshot(ctx context.Context, accounts []models.Account, reconnected []int64, now time.Time) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := upsertSQLite(ctx, tx, accounts, now); err != nil {
			return err
		}
		return markReconnectedSQLite(ctx, tx, reconnected)
	})
}

// GetDisconnected returns a row by account id
func (s *SQLiteStore) GetDisconnected(ctx context.Context, id int64) (*models.DisconnectedAccount, error) {
	var row models.DisconnectedAccount
	query := `SELECT ` + selectColumns + `, last_payload FROM disconnected_accounts WHERE email_account_id = ?`
	err := s.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get disconnected account: %w", err)
	}
	return &row, nil
}

// ListDisconnected returns currently disconnected rows, or all rows
func (s *SQLiteStore) ListDisconnected(ctx context.Context, all bool) ([]models.DisconnectedAccount, error) {
	query := `SELECT ` + selectColumns + `, last_payload FROM disconnected_accounts`
	if !all {
		query += ` WHERE currently_disconnected = 1`
	}
	query += ` ORDER BY currently_disconnected DESC, last_seen_disconnected_at DESC, email_account_id`

	var rows []models.DisconnectedAccount
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list disconnected accounts: %w", err)
	}
	return rows, nil
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func upsertSQLite(ctx context.Context, tx *sqlx.Tx, accounts []models.Account, now time.Time) error {
	if len(accounts) == 0 {
		return nil
	}

	stmt, err := tx.PreparexContext(ctx, sqliteUpsert)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now = now.UTC()
	for _, acc := range accounts {
		_, err := stmt.ExecContext(ctx,
			acc.ID, acc.FromEmail, acc.FromName, acc.AccountType, acc.TagString(),
			string(acc.DisconnectionType), now, now, payloadText(acc),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert account %d: %w", acc.ID, err)
		}
	}
	return nil
}

func markReconnectedSQLite(ctx context.Context, tx *sqlx.Tx, ids []int64) error {
	for _, batch := range chunk(ids, sqliteMaxVars) {
		query, args, err := sqlx.In(`UPDATE disconnected_accounts SET currently_disconnected = 0 WHERE email_account_id IN (?)`, batch)
		if err != nil {
			return fmt.Errorf("failed to build reconnect query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("failed to mark reconnected: %w", err)
		}
	}
	return nil
}
