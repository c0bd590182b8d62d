package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// datetimeFormats are the layouts accepted for the createdAt field. The
// prompt asks for ISO 8601 but the backend is only instructed, not
// guaranteed, so a few common variants are tolerated.
var datetimeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// extractJSONObject locates the first JSON object embedded in free-form
// generated text. It tolerates surrounding commentary and markdown code
// blocks by taking the span from the first { to the last }.
func extractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return "", fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return "", fmt.Errorf("invalid JSON object in response")
	}

	return text[startIdx : endIdx+1], nil
}

// parseTransactionJSON extracts and validates a transaction payload from raw
// generated text. Fields are checked in a fixed order and the first invalid
// field is named in the error.
func parseTransactionJSON(raw string) (*TransactionData, error) {
	jsonText, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(jsonText), &obj); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	caption, ok := obj["caption"].(string)
	if !ok || strings.TrimSpace(caption) == "" {
		return nil, fmt.Errorf("response is missing a usable caption")
	}

	amount, ok := obj["amount"].(float64)
	if !ok {
		return nil, fmt.Errorf("response amount is not a number")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("response amount must be positive, got %v", amount)
	}

	category, ok := obj["category"].(string)
	if !ok {
		return nil, fmt.Errorf("response category is not a string")
	}
	if !validCategory(category) {
		return nil, fmt.Errorf("response category %q is not an allowed category", category)
	}

	txType, ok := obj["type"].(string)
	if !ok || (txType != "income" && txType != "spent") {
		return nil, fmt.Errorf("response type must be income or spent")
	}

	createdAt, ok := obj["createdAt"].(string)
	if !ok {
		return nil, fmt.Errorf("response createdAt is not a string")
	}
	if _, err := parseDatetime(createdAt); err != nil {
		return nil, fmt.Errorf("response createdAt %q is not a valid datetime", createdAt)
	}

	return &TransactionData{
		Caption:   strings.TrimSpace(caption),
		Amount:    amount,
		Category:  category,
		Type:      txType,
		CreatedAt: createdAt,
	}, nil
}

// parseCaptionJSON extracts and validates a caption payload from raw
// generated text.
func parseCaptionJSON(raw string) (*CaptionData, error) {
	jsonText, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(jsonText), &obj); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	caption, ok := obj["caption"].(string)
	if !ok || strings.TrimSpace(caption) == "" {
		return nil, fmt.Errorf("response is missing a usable caption")
	}

	rawItems, ok := obj["items"].([]any)
	if !ok {
		return nil, fmt.Errorf("response items is not an array")
	}

	items := make([]string, 0, len(rawItems))
	for _, item := range rawItems {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("response items must contain only strings")
		}
		items = append(items, s)
	}

	return &CaptionData{
		Items:   items,
		Caption: strings.TrimSpace(caption),
	}, nil
}

func parseDatetime(s string) (time.Time, error) {
	var lastErr error
	for _, format := range datetimeFormats {
		t, err := time.Parse(format, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func validCategory(category string) bool {
	for _, c := range ExpenseCategories {
		if category == c {
			return true
		}
	}
	for _, c := range IncomeCategories {
		if category == c {
			return true
		}
	}
	return false
}
