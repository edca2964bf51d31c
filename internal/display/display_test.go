package display

import (
	"strings"
	"testing"
	"time"

	"github.com/mixelka/disconnectmon/pkg/models"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		then     time.Time
		expected string
	}{
		{time.Time{}, ""},
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-50 * time.Hour), "2d ago"},
		{time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), "May 1"},
	}

	for _, tt := range tests {
		if got := TimeAgo(tt.then, now); got != tt.expected {
			t.Errorf("TimeAgo(%s): expected %q, got %q", tt.then, tt.expected, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s        string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a much longer string", 10, "a much..."},
		{"abcdef", 3, "abc"},
	}

	for _, tt := range tests {
		if got := Truncate(tt.s, tt.maxLen); got != tt.expected {
			t.Errorf("Truncate(%q, %d): expected %q, got %q", tt.s, tt.maxLen, tt.expected, got)
		}
	}
}

func TestRow(t *testing.T) {
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	row := models.DisconnectedAccount{
		EmailAccountID:         42,
		FromEmail:              "ops@example.com",
		Tags:                   "ENDY,warm",
		DisconnectionType:      models.DisconnectionBoth,
		LastSeenDisconnectedAt: now.Add(-2 * time.Hour),
		CurrentlyDisconnected:  true,
		DisconnectCount:        3,
	}

	got := Row(row, now)
	for _, want := range []string{"42", "ops@example.com", "BOTH", "ENDY,warm", "2h ago", "x3"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
}

func TestDetail(t *testing.T) {
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	row := models.DisconnectedAccount{
		EmailAccountID:         7,
		FromEmail:              "ops@example.com",
		AccountType:            "GMAIL",
		DisconnectionType:      models.DisconnectionIMAP,
		FirstDisconnectedAt:    now.Add(-48 * time.Hour),
		LastSeenDisconnectedAt: now.Add(-time.Hour),
		CurrentlyDisconnected:  false,
		DisconnectCount:        2,
	}

	got := Detail(row, now)
	for _, want := range []string{"ops@example.com", "7", "GMAIL", "IMAP", "2026-06-08 12:00:00", "2026-06-10 11:00:00", "disconnects"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
	if strings.HasSuffix(got, "\n") {
		t.Error("expected no trailing newline")
	}
}
