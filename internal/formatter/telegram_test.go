package formatter

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mixelka/disconnectmon/internal/notify"
	"github.com/mixelka/disconnectmon/pkg/models"
)

func TestFormat(t *testing.T) {
	f := NewTelegramFormatter()
	msg := notify.BuildMessage("ENDY", []models.Account{
		{ID: 4, FromEmail: "a<b>@example.com", AccountType: "SMTP", Tags: []string{"R&D"}, DisconnectionType: models.DisconnectionSMTP},
	}, notify.Totals{Current: 3, Previous: 3}, 50)

	got := f.Format(msg)
	want := "<b>[ENDY] 1 newly disconnected</b>\n\n" +
		"a&lt;b&gt;@example.com (4) | SMTP | SMTP | R&amp;D\n\n" +
		"<i>Current disconnected: 3 | Previously: 3</i>"
	if got != want {
		t.Errorf("expected\n%s\ngot\n%s", want, got)
	}
}

func TestFormat_TruncatesAtLineBoundary(t *testing.T) {
	f := &TelegramFormatter{maxLength: 300}

	var accounts []models.Account
	for i := 0; i < 40; i++ {
		accounts = append(accounts, models.Account{ID: int64(i), FromEmail: fmt.Sprintf("user%02d@example.com", i), DisconnectionType: models.DisconnectionIMAP})
	}
	msg := notify.BuildMessage("DEFAULT", accounts, notify.Totals{Current: 40, Previous: 0}, 100)

	got := f.Format(msg)
	if n := len([]rune(got)); n > 300 {
		t.Errorf("expected at most 300 characters, got %d", n)
	}
	if !strings.Contains(got, "(message truncated)") {
		t.Error("expected truncation note")
	}
	if !strings.HasSuffix(got, "<i>Current disconnected: 40 | Previously: 0</i>") {
		t.Errorf("expected context line to survive truncation, got %q", got)
	}
	for _, line := range strings.Split(got, "\n") {
		if strings.HasPrefix(line, "user") && !strings.HasSuffix(line, "| -") {
			t.Errorf("expected only whole account lines, got %q", line)
		}
	}
}

func TestTruncate_DoesNotSplitEntities(t *testing.T) {
	f := &TelegramFormatter{}
	s := strings.Repeat("x", 5) + "&amp;" + strings.Repeat("y", 100)

	got := f.truncate(s, 7+len([]rune(truncatedNote)))
	if got != "xxxxx"+truncatedNote {
		t.Errorf("unexpected result %q", got)
	}
}
