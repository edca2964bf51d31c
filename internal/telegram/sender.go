// Package telegram delivers notifications through the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mixelka/disconnectmon/internal/formatter"
	"github.com/mixelka/disconnectmon/internal/notify"
)

const sendTimeout = 10 * time.Second

// messageAPI is the part of *bot.Bot used for sending
type messageAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Destination is a chat and an optional forum topic
type Destination struct {
	ChatID  any // int64 chat id or "@channel" username
	TopicID int
}

// ParseDestination parses "chatID", "chatID/topicID" or "@channel"
func ParseDestination(s string) (Destination, error) {
	s = strings.TrimSpace(s)
	chat, topic, hasTopic := strings.Cut(s, "/")

	var d Destination
	switch {
	case chat == "":
		return d, fmt.Errorf("invalid destination %q: empty chat", s)
	case strings.HasPrefix(chat, "@"):
		d.ChatID = chat
	default:
		id, err := strconv.ParseInt(chat, 10, 64)
		if err != nil {
			return d, fmt.Errorf("invalid destination %q: chat id must be numeric or @channel", s)
		}
		d.ChatID = id
	}

	if hasTopic {
		id, err := strconv.Atoi(topic)
		if err != nil || id <= 0 {
			return d, fmt.Errorf("invalid destination %q: topic id must be a positive number", s)
		}
		d.TopicID = id
	}
	return d, nil
}

// Sender implements notify.Sender over Telegram
type Sender struct {
	api       messageAPI
	formatter *formatter.TelegramFormatter
	logger    *slog.Logger
}

// NewSender creates a sender for the bot token. No request is made until the first send.
func NewSender(token string, logger *slog.Logger) (*Sender, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return newSender(b, logger), nil
}

func newSender(api messageAPI, logger *slog.Logger) *Sender {
	return &Sender{
		api:       api,
		formatter: formatter.NewTelegramFormatter(),
		logger:    logger.With("component", "telegram"),
	}
}

// Send renders msg as HTML and posts it to destination
func (s *Sender) Send(ctx context.Context, destination string, msg notify.Message) error {
	dest, err := ParseDestination(destination)
	if err != nil {
		return err
	}

	params := &bot.SendMessageParams{
		ChatID:    dest.ChatID,
		Text:      s.formatter.Format(msg),
		ParseMode: models.ParseModeHTML,
	}
	if dest.TopicID != 0 {
		params.MessageThreadID = dest.TopicID
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	sent, err := s.api.SendMessage(sendCtx, params)
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", destination, err)
	}

	s.logger.Debug("message sent", "destination", destination, "message_id", sent.ID, "group", msg.Group)
	return nil
}

var _ notify.Sender = (*Sender)(nil)
