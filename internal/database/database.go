// Package database persists the history of disconnected accounts.
package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mixelka/disconnectmon/pkg/models"
)

// ErrNotFound is returned when a record is not found
var ErrNotFound = errors.New("record not found")

// Store is the disconnected-account history table.
//
// Rows are never deleted: reconnection only clears currently_disconnected.
type Store interface {
	// CurrentlyDisconnectedIDs returns the identifiers flagged currently_disconnected, ascending
	CurrentlyDisconnectedIDs(ctx context.Context) ([]int64, error)
	// ApplySnapshot records accounts as disconnected at now and clears
	// currently_disconnected for reconnected, in a single transaction.
	// Counters and timestamps of reconnected rows are left alone.
	ApplySnapshot(ctx context.Context, accounts []models.Account, reconnected []int64, now time.Time) error
	// GetDisconnected returns one row by account id, or ErrNotFound
	GetDisconnected(ctx context.Context, id int64) (*models.DisconnectedAccount, error)
	// ListDisconnected returns currently disconnected rows, or every row when all is set
	ListDisconnected(ctx context.Context, all bool) ([]models.DisconnectedAccount, error)
	Close() error
}

// Open connects to the store named by url: a postgres:// or postgresql:// DSN
// selects PostgreSQL, anything else is treated as a SQLite file path.
// The schema is created if missing.
func Open(ctx context.Context, url string) (Store, error) {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return NewPostgres(ctx, url)
	}
	return NewSQLite(ctx, strings.TrimPrefix(url, "sqlite://"))
}

// payloadText returns the raw payload for storage; empty payloads are stored as {}
func payloadText(acc models.Account) string {
	if len(acc.Payload) == 0 {
		return "{}"
	}
	return string(acc.Payload)
}

// chunk splits ids into slices of at most size elements
func chunk(ids []int64, size int) [][]int64 {
	var out [][]int64
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
