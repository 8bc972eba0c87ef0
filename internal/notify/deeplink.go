// Package notify delivers deferred-categorization notifications to the user,
// each carrying a deep link back into the host UI's categorise screen.
package notify

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultScheme is used when no deep-link base is configured.
const DefaultScheme = "rupeeflow://"

// BuildCategoriseLink encodes the deferred event so the host UI can resume
// categorization later: receiver, amount, the stored always-ask flag and the
// identifier of the pending ledger row.
func BuildCategoriseLink(base, receiver string, amount float64, alwaysAsk bool, transactionID int64) string {
	if base == "" {
		base = DefaultScheme
	}

	values := url.Values{}
	values.Set("receiver", receiver)
	values.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))
	values.Set("alwaysask", strconv.FormatBool(alwaysAsk))
	values.Set("transactionId", strconv.FormatInt(transactionID, 10))

	return strings.TrimSuffix(base, "/") + "/categorise?" + values.Encode()
}
