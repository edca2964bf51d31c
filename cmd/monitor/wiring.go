package main

import (
	"context"
	"fmt"

	"github.com/mixelka/disconnectmon/internal/database"
	"github.com/mixelka/disconnectmon/internal/monitor"
	"github.com/mixelka/disconnectmon/internal/notify"
	"github.com/mixelka/disconnectmon/internal/reconcile"
	"github.com/mixelka/disconnectmon/internal/smartlead"
	"github.com/mixelka/disconnectmon/internal/telegram"
)

// logDestination is the destination label used when no chat transport is configured
const logDestination = "log"

func newClient() *smartlead.Client {
	return smartlead.NewClient(smartlead.Config{
		BaseURL:             cfg.SmartleadBase,
		RequestTimeout:      cfg.RequestTimeout,
		ProbeTimeout:        cfg.ProbeTimeout,
		MaxRateLimitRetries: cfg.MaxRateLimitRetries,
		BackoffBase:         cfg.RateLimitBackoffBase,
		PageDelay:           cfg.PageDelay,
	}, logger)
}

func newDispatcher() (*notify.Dispatcher, error) {
	rules, err := notify.ParseRules(cfg.GroupRules)
	if err != nil {
		return nil, fmt.Errorf("GROUP_RULES: %w", err)
	}
	classifier := notify.NewClassifier(rules, cfg.DefaultGroup)

	var sender notify.Sender
	destinations := make(map[string]string)

	if cfg.TelegramEnabled() {
		for group, dest := range cfg.GroupDestinations {
			if _, err := telegram.ParseDestination(dest); err != nil {
				return nil, fmt.Errorf("GROUP_DESTINATIONS[%s]: %w", group, err)
			}
			destinations[group] = dest
		}
		tg, err := telegram.NewSender(cfg.TelegramToken, logger)
		if err != nil {
			return nil, err
		}
		sender = tg
	} else {
		logger.Warn("TELEGRAM_BOT_TOKEN not set, notifications go to the log")
		for _, group := range classifier.Groups() {
			destinations[group] = logDestination
		}
		sender = notify.NewLogSender(logger)
	}

	return notify.NewDispatcher(notify.DispatcherConfig{
		Classifier:   classifier,
		Destinations: destinations,
		Sender:       sender,
		MaxLines:     cfg.NotifyMaxLines,
		Logger:       logger,
	}), nil
}

// newMonitor builds the pipeline. The store may be nil for commands that do not reconcile.
func newMonitor(store database.Store) (*monitor.Monitor, error) {
	deps := monitor.Deps{
		Upstream:       newClient(),
		Credential:     cfg.BearerToken,
		PageSize:       cfg.PageSize,
		ExportPageSize: cfg.ExportPageSize,
		Logger:         logger,
	}

	if store != nil {
		dispatcher, err := newDispatcher()
		if err != nil {
			return nil, err
		}
		deps.Engine = reconcile.NewEngine(store, logger)
		deps.Dispatcher = dispatcher
	}

	return monitor.New(deps), nil
}

func openStore(ctx context.Context) (database.Store, error) {
	store, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}
