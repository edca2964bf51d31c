// Package display provides terminal formatting for the status command.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mixelka/disconnectmon/pkg/models"
)

var (
	Muted    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	Bold     = lipgloss.NewStyle().Bold(true)
	Success  = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	ErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
	Warn     = lipgloss.NewStyle().Foreground(lipgloss.Color("#d97706"))
)

// TypeLabel returns a padded, colored disconnection type
func TypeLabel(t models.DisconnectionType) string {
	label := fmt.Sprintf("%-4s", string(t))
	switch t {
	case models.DisconnectionBoth:
		return ErrStyle.Render(label)
	case models.DisconnectionSMTP, models.DisconnectionIMAP:
		return Warn.Render(label)
	default:
		return Muted.Render(label)
	}
}

// StateDot is a red dot while disconnected and a green one once reconnected
func StateDot(currentlyDisconnected bool) string {
	if currentlyDisconnected {
		return ErrStyle.Render("●")
	}
	return Success.Render("○")
}

// Row renders one history row on a single line
func Row(r models.DisconnectedAccount, now time.Time) string {
	tags := ""
	if r.Tags != "" {
		tags = " " + Muted.Render("["+Truncate(r.Tags, 40)+"]")
	}
	count := ""
	if r.DisconnectCount > 1 {
		count = Muted.Render(fmt.Sprintf(" x%d", r.DisconnectCount))
	}
	return fmt.Sprintf("%s %s %-8d %s%s %s%s",
		StateDot(r.CurrentlyDisconnected),
		TypeLabel(r.DisconnectionType),
		r.EmailAccountID,
		Truncate(r.FromEmail, 40),
		tags,
		Muted.Render(TimeAgo(r.LastSeenDisconnectedAt, now)),
		count,
	)
}

// Summary is the one-line header of the status command
func Summary(current, total int) string {
	return fmt.Sprintf("%s %d currently disconnected %s",
		Bold.Render("Disconnected accounts:"), current, Muted.Render(fmt.Sprintf("(%d in history)", total)))
}

// Detail renders every stored field of one history row
func Detail(r models.DisconnectedAccount, now time.Time) string {
	var b strings.Builder
	field := func(name, value string) {
		if value == "" {
			value = Muted.Render("-")
		}
		fmt.Fprintf(&b, "  %s %s\n", Muted.Render(fmt.Sprintf("%-14s", name)), value)
	}

	fmt.Fprintf(&b, "%s %s %d\n", StateDot(r.CurrentlyDisconnected), Bold.Render(r.FromEmail), r.EmailAccountID)
	field("name", r.FromName)
	field("type", r.AccountType)
	field("disconnection", TypeLabel(r.DisconnectionType))
	field("tags", r.Tags)
	field("first seen", r.FirstDisconnectedAt.UTC().Format(time.DateTime)+" "+Muted.Render(TimeAgo(r.FirstDisconnectedAt, now)))
	field("last seen", r.LastSeenDisconnectedAt.UTC().Format(time.DateTime)+" "+Muted.Render(TimeAgo(r.LastSeenDisconnectedAt, now)))
	field("disconnects", fmt.Sprintf("%d", r.DisconnectCount))
	return strings.TrimRight(b.String(), "\n")
}

// TimeAgo formats t relative to now
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

// Truncate shortens a string to maxLen runes, adding ellipsis if needed.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return strings.TrimSpace(string(runes[:maxLen-3])) + "..."
}
