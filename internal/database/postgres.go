package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mixelka/disconnectmon/pkg/models"
)

const postgresUpsert = `
	INSERT INTO disconnected_accounts AS d (
		email_account_id, from_email, from_name, account_type, tags, disconnection_type,
		first_disconnected_at, last_seen_disconnected_at, currently_disconnected, disconnect_count, last_payload
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $7, TRUE, 1, $8::jsonb)
	ON CONFLICT (email_account_id) DO UPDATE SET
		from_email = EXCLUDED.from_email,
		from_name = EXCLUDED.from_name,
		account_type = EXCLUDED.account_type,
		tags = EXCLUDED.tags,
		disconnection_type = EXCLUDED.disconnection_type,
		last_seen_disconnected_at = GREATEST(d.last_seen_disconnected_at, EXCLUDED.last_seen_disconnected_at),
		disconnect_count = CASE
			WHEN d.currently_disconnected THEN d.disconnect_count
			ELSE d.disconnect_count + 1
		END,
		currently_disconnected = TRUE,
		last_payload = EXCLUDED.last_payload`

// PostgresStore is a Store backed by PostgreSQL
type PostgresStore struct {
	pool *pgxpool.Pool
}

// defaultMaxConns caps the pool unless the DSN sets pool_max_conns
const defaultMaxConns = 4

func poolConfig(dsn string) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	if !strings.Contains(dsn, "pool_max_conns") {
		cfg.MaxConns = defaultMaxConns
	}
	return cfg, nil
}

// NewPostgres connects to dsn and creates the schema if needed
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := poolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// CurrentlyDisconnectedIDs returns the ids of rows flagged currently_disconnected
func (s *PostgresStore) CurrentlyDisconnectedIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT email_account_id FROM disconnected_accounts WHERE currently_disconnected ORDER BY email_account_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load disconnected ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to load disconnected ids: %w", err)
	}
	return ids, nil
}

// ApplySnapshot upserts accounts and marks reconnected ids in one transaction
func (s *PostgresStore) ApplySnapshot(ctx context.Context, accounts []models.Account, reconnected []int64, now time.Time) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := upsertPostgres(ctx, tx, accounts, now); err != nil {
			return err
		}
		return markReconnectedPostgres(ctx, tx, reconnected)
	})
}

// GetDisconnected returns a row by account id
func (s *PostgresStore) GetDisconnected(ctx context.Context, id int64) (*models.DisconnectedAccount, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+selectColumns+`, last_payload::text AS last_payload FROM disconnected_accounts WHERE email_account_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get disconnected account: %w", err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.DisconnectedAccount])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get disconnected account: %w", err)
	}
	return &row, nil
}

// ListDisconnected returns currently disconnected rows, or all rows
func (s *PostgresStore) ListDisconnected(ctx context.Context, all bool) ([]models.DisconnectedAccount, error) {
	query := `SELECT ` + selectColumns + `, last_payload::text AS last_payload FROM disconnected_accounts`
	if !all {
		query += ` WHERE currently_disconnected`
	}
	query += ` ORDER BY currently_disconnected DESC, last_seen_disconnected_at DESC, email_account_id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list disconnected accounts: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.DisconnectedAccount])
	if err != nil {
		return nil, fmt.Errorf("failed to list disconnected accounts: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func upsertPostgres(ctx context.Context, tx pgx.Tx, accounts []models.Account, now time.Time) error {
	if len(accounts) == 0 {
		return nil
	}

	now = now.UTC()
	batch := &pgx.Batch{}
	for _, acc := range accounts {
		batch.Queue(postgresUpsert,
			acc.ID, acc.FromEmail, acc.FromName, acc.AccountType, acc.TagString(),
			string(acc.DisconnectionType), now, payloadText(acc),
		)
	}

	br := tx.SendBatch(ctx, batch)
	for _, acc := range accounts {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to upsert account %d: %w", acc.ID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to upsert accounts: %w", err)
	}
	return nil
}

func markReconnectedPostgres(ctx context.Context, tx pgx.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx,
		`UPDATE disconnected_accounts SET currently_disconnected = FALSE WHERE email_account_id = ANY($1::bigint[])`, ids)
	if err != nil {
		return fmt.Errorf("failed to mark reconnected: %w", err)
	}
	return nil
}
