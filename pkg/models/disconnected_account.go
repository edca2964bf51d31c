package models

import (
	"strings"
	"time"
)

// DisconnectedAccount is the persisted history row of an account ever seen disconnected
type DisconnectedAccount struct {
	EmailAccountID         int64             `db:"email_account_id" json:"email_account_id"`
	FromEmail              string            `db:"from_email" json:"from_email"`
	FromName               string            `db:"from_name" json:"from_name"`
	AccountType            string            `db:"account_type" json:"account_type"`
	Tags                   string            `db:"tags" json:"tags"` // comma-joined
	DisconnectionType      DisconnectionType `db:"disconnection_type" json:"disconnection_type"`
	FirstDisconnectedAt    time.Time         `db:"first_disconnected_at" json:"first_disconnected_at"`
	LastSeenDisconnectedAt time.Time         `db:"last_seen_disconnected_at" json:"last_seen_disconnected_at"`
	CurrentlyDisconnected  bool              `db:"currently_disconnected" json:"currently_disconnected"`
	DisconnectCount        int               `db:"disconnect_count" json:"disconnect_count"`
	LastPayload            string            `db:"last_payload" json:"-"`
}

// TagList splits the stored tag string back into its parts
func (d *DisconnectedAccount) TagList() []string {
	if d.Tags == "" {
		return nil
	}
	return strings.Split(d.Tags, ",")
}
