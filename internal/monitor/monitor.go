// Package monitor runs one disconnected-account check end to end.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mixelka/disconnectmon/internal/accounts"
	"github.com/mixelka/disconnectmon/internal/notify"
	"github.com/mixelka/disconnectmon/internal/reconcile"
	"github.com/mixelka/disconnectmon/internal/smartlead"
)

// Upstream is the account listing API
type Upstream interface {
	NegotiateAuth(ctx context.Context, credential string) (smartlead.AuthHeader, error)
	FetchAll(ctx context.Context, h smartlead.AuthHeader, filter smartlead.Filter, pageSize int) ([]smartlead.RawAccount, error)
	Stream(ctx context.Context, h smartlead.AuthHeader, filter smartlead.Filter, pageSize int, fn func([]smartlead.RawAccount) error) (int, error)
}

// Deps dependencies for creating a monitor
type Deps struct {
	Upstream       Upstream
	Engine         *reconcile.Engine
	Dispatcher     *notify.Dispatcher
	Credential     string
	PageSize       int
	ExportPageSize int
	Logger         *slog.Logger
}

// Monitor wires the pipeline stages together
type Monitor struct {
	upstream       Upstream
	engine         *reconcile.Engine
	dispatcher     *notify.Dispatcher
	credential     string
	pageSize       int
	exportPageSize int
	logger         *slog.Logger
}

// Summary of one run
type Summary struct {
	RunID       string        `json:"run_id"`
	New         int           `json:"new"`
	Current     int           `json:"current"`
	Previous    int           `json:"previous"`
	Reconnected int           `json:"reconnected"`
	Report      notify.Report `json:"notifications"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

// New creates a new monitor
func New(deps Deps) *Monitor {
	return &Monitor{
		upstream:       deps.Upstream,
		engine:         deps.Engine,
		dispatcher:     deps.Dispatcher,
		credential:     deps.Credential,
		pageSize:       deps.PageSize,
		exportPageSize: deps.ExportPageSize,
		logger:         deps.Logger.With("component", "monitor"),
	}
}

// Run negotiates auth, fetches the SMTP-failed and IMAP-failed listings,
// reconciles them with the stored history and notifies about newly
// disconnected accounts. Each stage completes before the next starts.
func (m *Monitor) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{RunID: uuid.NewString()}
	logger := m.logger.With("run_id", summary.RunID)
	logger.Info("run started")

	h, err := m.upstream.NegotiateAuth(ctx, m.credential)
	if err != nil {
		return nil, m.fail(logger, "auth", err)
	}
	logger.Info("auth negotiated", "style", h)

	smtpFailed, err := m.upstream.FetchAll(ctx, h, smartlead.FilterSMTPFailed, m.pageSize)
	if err != nil {
		return nil, m.fail(logger, "fetch smtp-failed", err)
	}
	imapFailed, err := m.upstream.FetchAll(ctx, h, smartlead.FilterIMAPFailed, m.pageSize)
	if err != nil {
		return nil, m.fail(logger, "fetch imap-failed", err)
	}

	merged := accounts.Merge(smtpFailed, imapFailed)
	logger.Info("fetched disconnected accounts",
		"smtp_failed", len(smtpFailed), "imap_failed", len(imapFailed), "merged", len(merged))

	res, err := m.engine.Reconcile(ctx, accounts.NormalizeAll(merged))
	if err != nil {
		return nil, m.fail(logger, "reconcile", err)
	}

	summary.New = len(res.Newly)
	summary.Current = res.Current
	summary.Previous = res.Previous
	summary.Reconnected = len(res.Reconnected)

	if len(res.Newly) > 0 {
		summary.Report = m.dispatcher.Dispatch(ctx, res.Newly, notify.Totals{Current: res.Current, Previous: res.Previous})
	}

	summary.Elapsed = time.Since(start)
	logger.Info("run finished",
		"new", summary.New,
		"current", summary.Current,
		"previous", summary.Previous,
		"reconnected", summary.Reconnected,
		"notified", len(summary.Report.Sent),
		"notify_failed", len(summary.Report.Failed),
		"elapsed", summary.Elapsed,
	)
	return summary, nil
}

// Probe negotiates auth only and returns the accepted style
func (m *Monitor) Probe(ctx context.Context) (smartlead.AuthScheme, error) {
	h, err := m.upstream.NegotiateAuth(ctx, m.credential)
	if err != nil {
		return "", m.fail(m.logger, "auth", err)
	}
	return h.Scheme, nil
}

// Export streams the unfiltered listing to w as one JSON object per line and
// returns the number of records written.
func (m *Monitor) Export(ctx context.Context, w io.Writer) (int, error) {
	h, err := m.upstream.NegotiateAuth(ctx, m.credential)
	if err != nil {
		return 0, m.fail(m.logger, "auth", err)
	}

	enc := json.NewEncoder(w)
	n, err := m.upstream.Stream(ctx, h, smartlead.Filter{}, m.exportPageSize, func(batch []smartlead.RawAccount) error {
		for _, acc := range batch {
			if err := enc.Encode(acc); err != nil {
				return fmt.Errorf("failed to write account %d: %w", acc.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return n, m.fail(m.logger, "export", err)
	}
	return n, nil
}

// fail logs err with the upstream diagnostics it carries and returns it wrapped with stage
func (m *Monitor) fail(logger *slog.Logger, stage string, err error) error {
	attrs := []any{"stage", stage, "error", err}

	var apiErr *smartlead.APIError
	if errors.As(err, &apiErr) {
		attrs = append(attrs, "status", apiErr.StatusCode, "offset", apiErr.Offset, "body", apiErr.Body)
	}
	logger.Error("run failed", attrs...)

	return fmt.Errorf("%s: %w", stage, err)
}
