package notify

import (
	"fmt"
	"strings"

	"github.com/mixelka/disconnectmon/pkg/models"
)

// BlockKind is the role of a content block
type BlockKind string

const (
	BlockSection BlockKind = "section"
	BlockContext BlockKind = "context"
)

// Block is one piece of message content; Text may span several lines
type Block struct {
	Kind BlockKind
	Text string
}

// Message is a transport-neutral notification: a header and ordered blocks
type Message struct {
	Group    string
	Header   string
	Blocks   []Block
	Fallback string // short plain-text summary
}

// Totals are the set sizes shown in the context line
type Totals struct {
	Current  int
	Previous int
}

// BuildMessage renders the notification for one group. At most maxLines
// account lines are listed; the rest are summarized in a final line.
func BuildMessage(group string, accounts []models.Account, totals Totals, maxLines int) Message {
	lines := make([]string, 0, len(accounts)+1)
	for i, acc := range accounts {
		if maxLines > 0 && i == maxLines {
			lines = append(lines, fmt.Sprintf("…and %d more", len(accounts)-maxLines))
			break
		}
		lines = append(lines, AccountLine(acc))
	}

	return Message{
		Group:  group,
		Header: fmt.Sprintf("[%s] %d newly disconnected", group, len(accounts)),
		Blocks: []Block{
			{Kind: BlockSection, Text: strings.Join(lines, "\n")},
			{Kind: BlockContext, Text: fmt.Sprintf("Current disconnected: %d | Previously: %d", totals.Current, totals.Previous)},
		},
		Fallback: fmt.Sprintf("%s new disconnections", group),
	}
}

// AccountLine is the per-account summary: email, id, account type, disconnection type, tags
func AccountLine(acc models.Account) string {
	email := acc.FromEmail
	if email == "" {
		email = "(no email)"
	}
	tags := "-"
	if len(acc.Tags) > 0 {
		tags = strings.Join(acc.Tags, ", ")
	}
	accountType := acc.AccountType
	if accountType == "" {
		accountType = "-"
	}
	return fmt.Sprintf("%s (%d) | %s | %s | %s", email, acc.ID, accountType, acc.DisconnectionType, tags)
}

// Text renders the message as plain text
func (m Message) Text() string {
	var sb strings.Builder
	sb.WriteString(m.Header)
	for _, b := range m.Blocks {
		sb.WriteString("\n")
		sb.WriteString(b.Text)
	}
	return sb.String()
}
