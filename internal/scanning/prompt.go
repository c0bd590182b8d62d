package scanning

import (
	"fmt"
	"strings"
	"time"
)

// transactionPrompt builds the instruction string for the text->transaction
// task. It embeds the reference datetime, the required output shape, the
// closed category lists, and the rules for resolving ambiguous dates.
func transactionPrompt(text string, lang Language, ref time.Time) string {
	captionRule := `"caption" must be a short note in English (e.g. "Morning coffee", "Lunch").`
	if lang == LanguageVietnamese {
		captionRule = `"caption" must be a short note in Vietnamese (e.g. "Cà phê sáng", "Ăn trưa").`
	}

	return fmt.Sprintf(`You are a transaction parser.

Your job: convert the user text into exactly ONE valid JSON object.

Current datetime reference (ISO 8601):
%s

User text:
"""
%s
"""

Return exactly ONE JSON object (no markdown, no extra text) in this shape:

{
  "caption": string,
  "amount": number,
  "category": string,
  "type": "income" | "spent",
  "createdAt": string
}

Rules:

CAPTION (IMPORTANT):
- %s
- Keep it concise; it will be used as a transaction note.

AMOUNT:
- "amount" must be a positive number.
- If multiple items exist, sum them.

TYPE:
- "income" if money received, otherwise "spent".

CATEGORY:
- MUST be one of these exact values:

Expenses:
%s

Income:
%s

- Never invent new categories.

CREATEDAT (IMPORTANT):
- "createdAt" must be ISO 8601 datetime.
- If the user text contains a specific date, use that date.
- If the user says "today" or "yesterday", resolve it relative to the current datetime reference above.
- If the user provides a date but NO time, set the time to exactly 00:00:00.
- If the user provides NO date at all, use the current datetime reference above.

OUTPUT FORMAT:
- Return ONLY the JSON object.
- No backticks.
- No explanations.`,
		ref.Format(time.RFC3339),
		text,
		captionRule,
		quoteList(ExpenseCategories),
		quoteList(IncomeCategories),
	)
}

// captionPrompt builds the instruction string for the image->caption task.
func captionPrompt(lang Language) string {
	captionLang := "English"
	itemsExample := `"milk tea", "hamburger", "sneakers"`
	if lang == LanguageVietnamese {
		captionLang = "Vietnamese"
		itemsExample = `"trà sữa", "hamburger", "giày thể thao"`
	}

	return fmt.Sprintf(`You are helping a user log a personal expense.

Look carefully at the provided image (a photo of items, food, bill, or scene related to spending).

Your task:
- Identify the main items in the image (max 5 short names).
- Write ONE very short %s caption (<= 50 characters) that could be used as a note for this expense.

Return ONLY a JSON object with this exact shape:
{
  "items": string[],
  "caption": string
}

Rules:
- "items" should be short phrases in %s, e.g. %s.
- "caption" must be in %s, friendly, and concise.
- Do NOT include currency or amount in the caption.
- Output must be valid JSON, no comments, no extra text.`,
		captionLang, captionLang, itemsExample, captionLang,
	)
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
