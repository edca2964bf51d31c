package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mixelka/disconnectmon/internal/config"
	"github.com/mixelka/disconnectmon/internal/notify"
	"github.com/mixelka/disconnectmon/pkg/models"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q): expected %s, got %s", in, want, got)
		}
	}
}

func TestSetupLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := setupLogger(&buf, "info", "json")
	l.Debug("hidden")
	l.Info("shown", "run_id", "abc")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("expected debug records to be filtered")
	}
	if !strings.Contains(out, `"run_id":"abc"`) {
		t.Errorf("expected JSON output, got %s", out)
	}
}

func TestNewDispatcher_LogFallback(t *testing.T) {
	var buf bytes.Buffer
	cfg = &config.Config{GroupRules: []string{"ENDY=ENDY"}, DefaultGroup: "DEFAULT", NotifyMaxLines: 10}
	logger = slog.New(slog.NewTextHandler(&buf, nil))

	d, err := newDispatcher()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	report := d.Dispatch(context.Background(), []models.Account{
		{ID: 1, FromEmail: "a@example.com", Tags: []string{"endy"}, DisconnectionType: models.DisconnectionSMTP},
		{ID: 2, FromEmail: "b@example.com", DisconnectionType: models.DisconnectionIMAP},
	}, notify.Totals{Current: 2})

	if len(report.Sent) != 2 {
		t.Errorf("expected both groups to be logged, got %+v", report)
	}
	if !strings.Contains(buf.String(), "[ENDY] 1 newly disconnected") {
		t.Errorf("expected ENDY message in log, got %s", buf.String())
	}
}

func TestNewDispatcher_InvalidConfig(t *testing.T) {
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg = &config.Config{GroupRules: []string{"ENDY"}, DefaultGroup: "DEFAULT", NotifyMaxLines: 10}
	if _, err := newDispatcher(); err == nil {
		t.Error("expected error for malformed rule")
	}

	cfg = &config.Config{
		TelegramToken:     "123:abc",
		GroupDestinations: map[string]string{"DEFAULT": "general"},
		DefaultGroup:      "DEFAULT",
		NotifyMaxLines:    10,
	}
	if _, err := newDispatcher(); err == nil {
		t.Error("expected error for unparsable destination")
	}
}

func executeRoot(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		quietFlag = false
		jsonOutput = false
		statusAll = false
	})
	return rootCmd.Execute()
}

func TestStatus_WorksWithoutSmartleadToken(t *testing.T) {
	t.Setenv("SMARTLEAD_BEARER_TOKEN", "")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "history.db"))

	if err := executeRoot(t, "status", "--quiet"); err != nil {
		t.Fatalf("expected status to run without a Smartlead token, got %v", err)
	}
}

func TestStatus_UnknownAccount(t *testing.T) {
	t.Setenv("SMARTLEAD_BEARER_TOKEN", "")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "history.db"))

	err := executeRoot(t, "status", "--quiet", "404")
	if err == nil || !strings.Contains(err.Error(), "never been recorded") {
		t.Errorf("expected not-recorded error, got %v", err)
	}
}

func TestProbe_RequiresSmartleadToken(t *testing.T) {
	t.Setenv("SMARTLEAD_BEARER_TOKEN", "")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "history.db"))

	err := executeRoot(t, "probe", "--quiet")
	if err == nil || !strings.Contains(err.Error(), "SMARTLEAD_BEARER_TOKEN") {
		t.Errorf("expected missing token error, got %v", err)
	}
}

func TestFilterHistory(t *testing.T) {
	rows := []models.DisconnectedAccount{
		{EmailAccountID: 1, CurrentlyDisconnected: true},
		{EmailAccountID: 2, CurrentlyDisconnected: true},
		{EmailAccountID: 3},
	}

	shown, current := filterHistory(rows, false)
	if current != 2 || len(shown) != 2 {
		t.Errorf("expected 2 current rows shown, got current=%d shown=%d", current, len(shown))
	}

	shown, current = filterHistory(rows, true)
	if current != 2 || len(shown) != 3 {
		t.Errorf("expected all 3 rows with 2 current, got current=%d shown=%d", current, len(shown))
	}
}
