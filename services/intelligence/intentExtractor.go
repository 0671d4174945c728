// File: services/intelligence/intentExtractor.go
package ai

import (
	"context"
	"encoding/json"
	"strings"

	"apptdesk/models"
)

const extractionPrompt = `Extract booking information from the user's chat message.
Return a JSON object with the following fields:
- intent: "book", "reschedule", "cancel", "inquiry", or "unknown"
- date: requested date in YYYY-MM-DD format (if mentioned)
- time: requested time in HH:MM format (if mentioned)
- patient_name: patient's name (if mentioned)
- phone: phone number (if mentioned)
- email: email address (if mentioned)
- reason: reason for visit (if mentioned)
- confirmation_number: confirmation number (if mentioned, for reschedule/cancel)

Only include fields that are explicitly mentioned. Return valid JSON only.`

// IntentExtractor turns free text into a BookingIntent using the language model,
// falling back to keyword matching when the model's output is not JSON.
type IntentExtractor struct {
	llm LanguageModel
}

func NewIntentExtractor(llm LanguageModel) *IntentExtractor {
	return &IntentExtractor{llm: llm}
}

func (e *IntentExtractor) Extract(ctx context.Context, text string) models.BookingIntent {
	raw, err := e.llm.Chat(ctx, extractionPrompt, nil, text)
	if err != nil {
		return models.BookingIntent{Intent: models.IntentUnknown, Error: err.Error()}
	}

	var intent models.BookingIntent
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &intent); err != nil {
		return models.BookingIntent{Intent: keywordIntent(text)}
	}
	intent.Intent = strings.ToLower(strings.TrimSpace(intent.Intent))
	switch intent.Intent {
	case models.IntentBook, models.IntentReschedule, models.IntentCancel, models.IntentInquiry:
	default:
		intent.Intent = models.IntentUnknown
	}
	intent.ConfirmationNumber = strings.ToUpper(strings.TrimSpace(intent.ConfirmationNumber))
	return intent
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	parts := strings.Split(s, "```")
	if len(parts) < 2 {
		return s
	}
	body := strings.TrimSpace(parts[1])
	body = strings.TrimPrefix(body, "json")
	return strings.TrimSpace(body)
}

func keywordIntent(text string) string {
	lower := strings.ToLower(text)
	containsAny := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}
	// "reschedule my appointment" must not fall into the book branch.
	switch {
	case containsAny("reschedule", "change", "move"):
		return models.IntentReschedule
	case containsAny("cancel"):
		return models.IntentCancel
	case containsAny("book", "schedule", "appointment"):
		return models.IntentBook
	default:
		return models.IntentUnknown
	}
}
