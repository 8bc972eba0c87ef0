package pipeline

import (
	"regexp"
	"strings"
)

// amountPattern spots a currency amount: ₹, Rs or INR followed by a number,
// optionally with thousands separators and a decimal part.
var amountPattern = regexp.MustCompile(`(?i)(?:₹|rs\.?|inr)\s?[\d,]+(?:\.\d{1,2})?`)

// bankKeywords are the banking-context fragments a payment notification is
// expected to carry. Matched against the lowercased text.
var bankKeywords = []string{"bank", "axis", "icici", "hdfc", "sbi", "a/c", "account", "upi"}

// LooksLikePayment reports whether notification text plausibly describes a
// payment event. It requires both a currency amount and a banking keyword,
// which keeps extraction and classification off the vast majority of
// notifications that have nothing to do with money.
func LooksLikePayment(text string) bool {
	lower := strings.ToLower(text)

	if !amountPattern.MatchString(lower) {
		return false
	}

	for _, keyword := range bankKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
