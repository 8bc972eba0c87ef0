package pipeline

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Fields holds the values parsed out of a payment notification.
type Fields struct {
	Receiver string
	Amount   float64
}

// Extractor parses payment fields out of notification text. Each
// implementation targets one notification template; returning ok=false means
// the text does not match that template and the next extractor is tried.
type Extractor interface {
	Extract(text string) (Fields, bool)
}

// bulletPattern matches the bullet-separated UPI notification template,
// e.g. "₹1,250.00 • UPI • Blinkitx238". The trailing capture is the receiver,
// taken verbatim as the merchant identity key.
var bulletPattern = regexp.MustCompile(`(?i)(?:₹|rs\.?|inr)\s*([\d,]+(?:\.\d{1,2})?)\s*•\s*(?:.*?)\s*•\s*(.*)`)

// BulletExtractor extracts fields from the bullet-separated UPI template.
type BulletExtractor struct{}

// Extract implements Extractor.
func (BulletExtractor) Extract(text string) (Fields, bool) {
	match := bulletPattern.FindStringSubmatch(text)
	if match == nil {
		return Fields{}, false
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return Fields{}, false
	}

	receiver := strings.TrimSpace(match[2])
	if receiver == "" {
		return Fields{}, false
	}

	return Fields{Receiver: receiver, Amount: amount}, true
}
