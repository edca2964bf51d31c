package accounts

import "github.com/mixelka/disconnectmon/internal/smartlead"

// Merge concatenates the result sets of several filtered listings and removes
// duplicate identifiers.
//
// The first occurrence of an identifier keeps its position and payload. Health
// flags of later duplicates are folded in so that a failure reported by any of
// the listings wins; the outcome does not depend on the order of the inputs.
func Merge(sets ...[]smartlead.RawAccount) []smartlead.RawAccount {
	index := make(map[int64]int)
	var out []smartlead.RawAccount

	for _, set := range sets {
		for _, acc := range set {
			i, seen := index[acc.ID]
			if !seen {
				index[acc.ID] = len(out)
				out = append(out, acc)
				continue
			}

			first := &out[i]
			first.IsSMTPSuccess = healthy(first.SMTPOK() && acc.SMTPOK())
			first.IsIMAPSuccess = healthy(first.IMAPOK() && acc.IMAPOK())
		}
	}

	return out
}

func healthy(ok bool) *bool {
	return &ok
}
