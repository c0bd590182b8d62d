package scanning

import (
	"context"
	"time"
)

// Language selects the wording of prompts and generated captions.
type Language string

const (
	LanguageVietnamese Language = "vie"
	LanguageEnglish    Language = "eng"
)

// ParseLanguage maps a request-supplied language value to a supported
// Language. Anything other than "vie" falls back to English.
func ParseLanguage(s string) Language {
	if s == string(LanguageVietnamese) {
		return LanguageVietnamese
	}
	return LanguageEnglish
}

// Expense and income categories the generation backend is allowed to use.
// The validator rejects anything outside these sets.
var (
	ExpenseCategories = []string{
		"food", "transport", "shopping", "entertainment",
		"bills", "health", "education", "other",
	}
	IncomeCategories = []string{
		"salary", "freelance", "investment", "gift",
		"refund", "other_income",
	}
)

// TransactionData is the structured payload extracted from generated text.
type TransactionData struct {
	Caption   string  `json:"caption"`
	Amount    float64 `json:"amount"`
	Category  string  `json:"category"`
	Type      string  `json:"type"`
	CreatedAt string  `json:"createdAt"` // ISO 8601 datetime
}

// CaptionData is the structured payload extracted for an item photo.
type CaptionData struct {
	Items   []string `json:"items"`
	Caption string   `json:"caption"`
}

// Generator defines the interface to the text/vision generation backend.
type Generator interface {
	// ParseTransaction converts free text into a transaction payload.
	// ref is the reference datetime used to resolve relative dates; it is
	// captured once per request by the caller.
	ParseTransaction(ctx context.Context, text string, lang Language, ref time.Time) (*TransactionData, error)
	// CaptionImage identifies items in a photo and produces a short caption.
	CaptionImage(ctx context.Context, image []byte, contentType string, lang Language) (*CaptionData, error)
	// Close closes the generator and releases resources.
	Close() error
}
