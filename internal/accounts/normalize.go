// Package accounts turns upstream listing records into the canonical account model.
package accounts

import (
	"strings"

	"github.com/mixelka/disconnectmon/internal/smartlead"
	"github.com/mixelka/disconnectmon/pkg/models"
)

// Normalize maps a raw record to its canonical form. Missing health flags count
// as healthy, so the derived type is NONE unless a flag is explicitly false.
func Normalize(raw smartlead.RawAccount) models.Account {
	acc := models.Account{
		ID:                raw.ID,
		FromEmail:         strings.TrimSpace(raw.FromEmail),
		FromName:          strings.TrimSpace(raw.FromName),
		AccountType:       raw.Type,
		DisconnectionType: models.DisconnectionTypeFor(raw.SMTPOK(), raw.IMAPOK()),
		Payload:           raw.Raw,
	}

	for _, m := range raw.TagMappings {
		name := strings.TrimSpace(m.Resolve().Name)
		if name != "" {
			acc.Tags = append(acc.Tags, name)
		}
	}

	return acc
}

// NormalizeAll normalizes records preserving their order
func NormalizeAll(raws []smartlead.RawAccount) []models.Account {
	out := make([]models.Account, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw))
	}
	return out
}
