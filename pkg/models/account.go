package models

import (
	"encoding/json"
	"strings"
)

// DisconnectionType classifies which health check an account is failing
type DisconnectionType string

const (
	DisconnectionNone DisconnectionType = "NONE"
	DisconnectionSMTP DisconnectionType = "SMTP"
	DisconnectionIMAP DisconnectionType = "IMAP"
	DisconnectionBoth DisconnectionType = "BOTH"
)

// DisconnectionTypeFor derives the disconnection type from the two health flags
func DisconnectionTypeFor(smtpOK, imapOK bool) DisconnectionType {
	switch {
	case !smtpOK && !imapOK:
		return DisconnectionBoth
	case !smtpOK:
		return DisconnectionSMTP
	case !imapOK:
		return DisconnectionIMAP
	default:
		return DisconnectionNone
	}
}

// Disconnected reports whether the type represents a failing account
func (t DisconnectionType) Disconnected() bool {
	return t != "" && t != DisconnectionNone
}

// Account is the canonical form of an upstream email sending account
type Account struct {
	ID                int64
	FromEmail         string
	FromName          string
	AccountType       string
	Tags              []string // upstream order
	DisconnectionType DisconnectionType
	Payload           json.RawMessage // full upstream record
}

// TagString joins tags the way they are stored
func (a Account) TagString() string {
	return strings.Join(a.Tags, ",")
}
