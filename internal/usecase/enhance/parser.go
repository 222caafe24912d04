package enhance

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/recall-vault/recall/internal/domain/search/query"
)

// enhancementSchema is the strict shape expected inside a language-service
// response. Everything beyond Enhanced is optional.
type enhancementSchema struct {
	Enhanced   string   `json:"enhanced"`
	Intents    []string `json:"intents"`
	Filters    filters  `json:"filters"`
	Confidence float64  `json:"confidence"`
}

type filters struct {
	ContentTypes []string `json:"content_types"`
	Categories   []string `json:"categories"`
	DateFrom     string   `json:"date_from"`
	DateTo       string   `json:"date_to"`
}

const dateLayout = "2006-01-02"

// parseResponse extracts the first well-formed JSON object from a raw
// language-service response and validates required fields. The model is
// free text and cannot be trusted: surrounding prose, code fences and
// malformed blocks are all expected.
func parseResponse(raw string) (enhancementSchema, error) {
	block, ok := firstJSONBlock(raw)
	if !ok {
		return enhancementSchema{}, fmt.Errorf("no JSON block in response")
	}

	var parsed enhancementSchema
	if err := json.Unmarshal([]byte(block), &parsed); err != nil {
		return enhancementSchema{}, fmt.Errorf("decode enhancement block: %w", err)
	}

	parsed.Enhanced = strings.TrimSpace(parsed.Enhanced)
	if len(parsed.Enhanced) < query.MinEnhancedLength {
		return enhancementSchema{}, fmt.Errorf("enhanced text too short: %q", parsed.Enhanced)
	}
	if parsed.Confidence < 0 || parsed.Confidence > 1 {
		return enhancementSchema{}, fmt.Errorf("confidence out of range: %v", parsed.Confidence)
	}

	return parsed, nil
}

// suggestedFilters converts the parsed filter block, dropping unparseable dates.
func (s enhancementSchema) suggestedFilters() query.SuggestedFilters {
	out := query.SuggestedFilters{
		ContentTypes: s.Filters.ContentTypes,
		Categories:   s.Filters.Categories,
	}
	if from, err := time.ParseInLocation(dateLayout, s.Filters.DateFrom, time.UTC); err == nil {
		if to, err := time.ParseInLocation(dateLayout, s.Filters.DateTo, time.UTC); err == nil && !to.Before(from) {
			out.DateFrom = &from
			out.DateTo = &to
		}
	}
	return out
}

// firstJSONBlock returns the first balanced top-level {...} substring.
func firstJSONBlock(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// skip structural chars inside strings
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
