package smartlead

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// RawAccount is an email account record as returned by the listing endpoint.
// Only the consumed fields are modeled; the full record is kept in Raw.
type RawAccount struct {
	ID               int64           `json:"id"`
	FromName         string          `json:"from_name"`
	FromEmail        string          `json:"from_email"`
	Type             string          `json:"type"`
	IsSMTPSuccess    *bool           `json:"is_smtp_success"`
	IsIMAPSuccess    *bool           `json:"is_imap_success"`
	TagMappings      []TagMapping    `json:"email_account_tag_mappings"`
	CampaignMappings *CountAggregate `json:"email_campaign_account_mappings_aggregate"`

	Raw json.RawMessage `json:"-"`
}

type rawAccountAlias RawAccount

// UnmarshalJSON decodes the record, accepting numeric or quoted identifiers,
// and keeps a compacted copy of the upstream bytes.
func (a *RawAccount) UnmarshalJSON(data []byte) error {
	aux := struct {
		ID json.RawMessage `json:"id"`
		*rawAccountAlias
	}{rawAccountAlias: (*rawAccountAlias)(a)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	id, err := parseID(aux.ID)
	if err != nil {
		return err
	}
	a.ID = id
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return err
	}
	a.Raw = compact.Bytes()
	return nil
}

// MarshalJSON emits the original upstream record when available
func (a RawAccount) MarshalJSON() ([]byte, error) {
	if len(a.Raw) > 0 {
		return a.Raw, nil
	}
	return json.Marshal(rawAccountAlias(a))
}

func parseID(raw json.RawMessage) (int64, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0, fmt.Errorf("account record without id")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid account id %q: %w", s, err)
	}
	return id, nil
}

// SMTPOK reports the SMTP health flag; a missing flag counts as healthy
func (a *RawAccount) SMTPOK() bool {
	return a.IsSMTPSuccess == nil || *a.IsSMTPSuccess
}

// IMAPOK reports the IMAP health flag; a missing flag counts as healthy
func (a *RawAccount) IMAPOK() bool {
	return a.IsIMAPSuccess == nil || *a.IsIMAPSuccess
}

// Tag is an account label
type Tag struct {
	ID    json.Number `json:"id"`
	Name  string      `json:"name"`
	Color string      `json:"color"`
}

// TagMapping associates a tag with an account. Some payloads inline the tag
// fields instead of nesting them under "tag".
type TagMapping struct {
	Tag   *Tag        `json:"tag"`
	ID    json.Number `json:"id"`
	Name  string      `json:"name"`
	Color string      `json:"color"`
}

// Resolve returns the tag carried by the mapping
func (m TagMapping) Resolve() Tag {
	if m.Tag != nil {
		return *m.Tag
	}
	return Tag{ID: m.ID, Name: m.Name, Color: m.Color}
}

// CountAggregate is the nested aggregate count shape
type CountAggregate struct {
	Aggregate struct {
		Count int `json:"count"`
	} `json:"aggregate"`
}

// Filter narrows the listing to failing accounts. An empty filter lists everything.
type Filter struct {
	SMTPFailed bool
	IMAPFailed bool
}

var (
	FilterSMTPFailed = Filter{SMTPFailed: true}
	FilterIMAPFailed = Filter{IMAPFailed: true}
)

func (f Filter) apply(q url.Values) {
	if f.SMTPFailed {
		q.Set("isSmtpSuccess", "false")
	}
	if f.IMAPFailed {
		q.Set("isImapSuccess", "false")
	}
}

func (f Filter) String() string {
	switch {
	case f.SMTPFailed && f.IMAPFailed:
		return "smtp+imap-failed"
	case f.SMTPFailed:
		return "smtp-failed"
	case f.IMAPFailed:
		return "imap-failed"
	default:
		return "all"
	}
}

// Page is one page of the listing
type Page struct {
	Accounts   []RawAccount
	LastSeenID *int64
}

type envelope struct {
	Data *struct {
		EmailAccounts []RawAccount `json:"email_accounts"`
		LastSeenID    *int64       `json:"lastSeenId"`
	} `json:"data"`
	OK      *bool  `json:"ok"`
	Message string `json:"message"`
}

// success reports whether the envelope signals a successful call.
// Without an explicit ok flag, the presence of data decides.
func (e *envelope) success() bool {
	if e.OK != nil {
		return *e.OK
	}
	return e.Data != nil
}
