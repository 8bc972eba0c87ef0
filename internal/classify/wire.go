package classify

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"rupeeflow/internal/common"
	"rupeeflow/internal/model"
)

// confidenceScore tolerates both JSON numbers and quoted numbers; the
// classifier backend is known to return `"confidence_score": "9.5"`.
type confidenceScore float64

func (c *confidenceScore) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid confidence score %q: %w", s, err)
	}
	*c = confidenceScore(v)
	return nil
}

type wireSuggestion struct {
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Confidence  confidenceScore `json:"confidence_score"`
	Error       string          `json:"error,omitempty"`
}

// parseSuggestion decodes a classifier response body. A payload carrying an
// error field or no category counts as "no suggestion".
func parseSuggestion(data []byte) (model.Suggestion, error) {
	var wire wireSuggestion
	if err := json.Unmarshal(data, &wire); err != nil {
		return model.Suggestion{}, fmt.Errorf("failed to parse classifier response: %w", err)
	}
	if wire.Error != "" {
		return model.Suggestion{}, fmt.Errorf("%w: %s", common.ErrNoSuggestion, wire.Error)
	}
	if wire.Category == "" {
		return model.Suggestion{}, common.ErrNoSuggestion
	}

	return model.Suggestion{
		Category:    wire.Category,
		Description: wire.Description,
		Type:        wire.Type,
		Confidence:  float64(wire.Confidence),
	}, nil
}

// stripCodeFences removes markdown code fences a model may wrap around JSON
// despite instructions not to.
func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
