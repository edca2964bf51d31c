package formatter

import (
	"fmt"
	"strings"

	"github.com/mixelka/disconnectmon/internal/notify"
)

const truncatedNote = "\n<i>... (message truncated)</i>"

// TelegramFormatter renders notifications as Telegram HTML
type TelegramFormatter struct {
	maxLength int
}

// NewTelegramFormatter creates a new Telegram formatter
func NewTelegramFormatter() *TelegramFormatter {
	return &TelegramFormatter{
		maxLength: 4000, // Telegram limit is 4096
	}
}

// Format renders msg: bold header, section blocks as plain lines, context
// blocks in italics. Section text is cut at a line boundary when the result
// would exceed the length limit; the header and context are always kept.
func (f *TelegramFormatter) Format(msg notify.Message) string {
	head := fmt.Sprintf("<b>%s</b>\n", f.escapeHTML(msg.Header))

	var sections, contexts []string
	for _, b := range msg.Blocks {
		switch b.Kind {
		case notify.BlockContext:
			contexts = append(contexts, fmt.Sprintf("<i>%s</i>", f.escapeHTML(b.Text)))
		default:
			sections = append(sections, f.escapeHTML(b.Text))
		}
	}

	tail := ""
	if len(contexts) > 0 {
		tail = "\n\n" + strings.Join(contexts, "\n")
	}

	body := strings.Join(sections, "\n\n")
	budget := f.maxLength - runeLen(head) - runeLen(tail) - 1
	body = f.truncate(body, budget)

	var sb strings.Builder
	sb.WriteString(head)
	if body != "" {
		sb.WriteString("\n")
		sb.WriteString(body)
	}
	sb.WriteString(tail)
	return sb.String()
}

// escapeHTML escapes HTML special characters for Telegram
func (f *TelegramFormatter) escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// truncate cuts already escaped text to maxLen characters including the note,
// preferring the last line break and never splitting an entity
func (f *TelegramFormatter) truncate(s string, maxLen int) string {
	if runeLen(s) <= maxLen {
		return s
	}
	maxLen -= runeLen(truncatedNote)
	if maxLen <= 0 {
		return strings.TrimPrefix(truncatedNote, "\n")
	}

	cut := string([]rune(s)[:maxLen])
	if i := strings.LastIndex(cut, "\n"); i > 0 {
		cut = cut[:i]
	} else if amp := strings.LastIndex(cut, "&"); amp > strings.LastIndex(cut, ";") {
		cut = cut[:amp]
	}
	return cut + truncatedNote
}

func runeLen(s string) int {
	return len([]rune(s))
}
