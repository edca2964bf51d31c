package notify

import (
	"context"
	"log/slog"

	"github.com/mixelka/disconnectmon/pkg/models"
)

// Sender delivers a message to a destination
type Sender interface {
	Send(ctx context.Context, destination string, msg Message) error
}

// DispatcherConfig configuration for the dispatcher
type DispatcherConfig struct {
	Classifier   *Classifier
	Destinations map[string]string // group -> destination
	Sender       Sender
	MaxLines     int
	Logger       *slog.Logger
}

// Report summarizes a dispatch by group name
type Report struct {
	Sent    []string `json:"sent,omitempty"`
	Skipped []string `json:"skipped,omitempty"` // no destination configured
	Failed  []string `json:"failed,omitempty"`
}

// Dispatcher sends one message per non-empty group
type Dispatcher struct {
	classifier   *Classifier
	destinations map[string]string
	sender       Sender
	maxLines     int
	logger       *slog.Logger
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		classifier:   cfg.Classifier,
		destinations: cfg.Destinations,
		sender:       cfg.Sender,
		maxLines:     cfg.MaxLines,
		logger:       cfg.Logger.With("component", "notify"),
	}
}

// Dispatch classifies accounts and sends each group's message. Send failures
// are logged and reported per group; they never stop other groups.
func (d *Dispatcher) Dispatch(ctx context.Context, accounts []models.Account, totals Totals) Report {
	var report Report
	if len(accounts) == 0 {
		return report
	}

	grouped := make(map[string][]models.Account)
	for _, acc := range accounts {
		group := d.classifier.Classify(acc.Tags)
		grouped[group] = append(grouped[group], acc)
	}

	for _, group := range d.classifier.Groups() {
		members := grouped[group]
		if len(members) == 0 {
			continue
		}

		dest, ok := d.destinations[group]
		if !ok || dest == "" {
			d.logger.Warn("no destination for group, skipping", "group", group, "count", len(members))
			report.Skipped = append(report.Skipped, group)
			continue
		}

		msg := BuildMessage(group, members, totals, d.maxLines)
		if err := d.sender.Send(ctx, dest, msg); err != nil {
			d.logger.Error("failed to send notification", "group", group, "destination", dest, "error", err)
			report.Failed = append(report.Failed, group)
			continue
		}

		d.logger.Info("posted new disconnects", "group", group, "count", len(members), "destination", dest)
		report.Sent = append(report.Sent, group)
	}

	return report
}
