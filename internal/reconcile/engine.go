// Package reconcile compares a run's disconnected accounts with the stored
// history and applies the difference.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/mixelka/disconnectmon/pkg/models"
)

// ErrPersistence wraps any store failure during a reconciliation
var ErrPersistence = errors.New("persistence failure")

// Store is the part of the history table the engine needs
type Store interface {
	CurrentlyDisconnectedIDs(ctx context.Context) ([]int64, error)
	ApplySnapshot(ctx context.Context, accounts []models.Account, reconnected []int64, now time.Time) error
}

// Result of one reconciliation
type Result struct {
	Previous    int              // size of the stored disconnected set before the run
	Current     int              // size of this run's disconnected set
	Newly       []models.Account // current minus previous, ascending id
	Reconnected []int64          // previous minus current, ascending
}

// Engine applies disconnected-account snapshots to a Store
type Engine struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine creates a new engine
func NewEngine(store Store, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logger.With("component", "reconcile"),
		now:    time.Now,
	}
}

// Reconcile records accounts as the current disconnected set.
//
// The previous set is read before anything is written, and both diffs are
// computed from it, so the newly disconnected set is never masked by this
// run's own upsert. Accounts whose type is NONE are not treated as
// disconnected. Duplicate ids keep their first occurrence.
func (e *Engine) Reconcile(ctx context.Context, accounts []models.Account) (*Result, error) {
	current := e.currentSet(accounts)

	previousIDs, err := e.store.CurrentlyDisconnectedIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: loading previous set: %w", ErrPersistence, err)
	}

	currentIDs := make([]int64, len(current))
	for i, acc := range current {
		currentIDs[i] = acc.ID
	}
	newlyIDs, reconnected := Diff(previousIDs, currentIDs)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := e.store.ApplySnapshot(ctx, current, reconnected, e.now()); err != nil {
		return nil, fmt.Errorf("%w: applying snapshot of %d accounts: %w", ErrPersistence, len(current), err)
	}

	byID := make(map[int64]models.Account, len(current))
	for _, acc := range current {
		byID[acc.ID] = acc
	}
	newly := make([]models.Account, 0, len(newlyIDs))
	for _, id := range newlyIDs {
		newly = append(newly, byID[id])
	}

	res := &Result{
		Previous:    len(previousIDs),
		Current:     len(current),
		Newly:       newly,
		Reconnected: reconnected,
	}
	e.logger.Info("reconciled",
		"previous", res.Previous,
		"current", res.Current,
		"newly_disconnected", len(res.Newly),
		"reconnected", len(res.Reconnected),
	)
	return res, nil
}

func (e *Engine) currentSet(accounts []models.Account) []models.Account {
	seen := make(map[int64]bool, len(accounts))
	out := make([]models.Account, 0, len(accounts))
	for _, acc := range accounts {
		if !acc.DisconnectionType.Disconnected() {
			e.logger.Warn("skipping account reported by a failure listing but healthy by its flags",
				"email_account_id", acc.ID, "email", acc.FromEmail)
			continue
		}
		if seen[acc.ID] {
			continue
		}
		seen[acc.ID] = true
		out = append(out, acc)
	}
	return out
}

// Diff returns current minus previous and previous minus current, both ascending
func Diff(previous, current []int64) (newly, reconnected []int64) {
	prev := make(map[int64]bool, len(previous))
	for _, id := range previous {
		prev[id] = true
	}
	cur := make(map[int64]bool, len(current))
	for _, id := range current {
		cur[id] = true
	}

	for id := range cur {
		if !prev[id] {
			newly = append(newly, id)
		}
	}
	for id := range prev {
		if !cur[id] {
			reconnected = append(reconnected, id)
		}
	}

	slices.Sort(newly)
	slices.Sort(reconnected)
	return newly, reconnected
}
