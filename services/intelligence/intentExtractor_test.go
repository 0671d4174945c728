package ai

import (
	"context"
	"errors"
	"testing"

	"apptdesk/models"

	"github.com/stretchr/testify/assert"
)

func TestIntentExtractor_ParsesFencedJSON(t *testing.T) {
	llm := &scriptedLLM{extraction: "```json\n{\"intent\":\"Reschedule\",\"confirmation_number\":\" apt202512230001 \",\"date\":\"2025-12-24\",\"time\":\"11:00\"}\n```"}
	got := NewIntentExtractor(llm).Extract(context.Background(), "move my appointment")

	assert.Equal(t, models.IntentReschedule, got.Intent)
	assert.Equal(t, "APT202512230001", got.ConfirmationNumber)
	assert.Equal(t, "2025-12-24", got.Date)
	assert.Equal(t, "11:00", got.Time)
}

func TestIntentExtractor_UnknownIntentValue(t *testing.T) {
	llm := &scriptedLLM{extraction: `{"intent":"complain"}`}
	got := NewIntentExtractor(llm).Extract(context.Background(), "meh")
	assert.Equal(t, models.IntentUnknown, got.Intent)
}

func TestIntentExtractor_KeywordFallback(t *testing.T) {
	cases := map[string]string{
		"I want to book a cleaning":           models.IntentBook,
		"Can I make an appointment?":          models.IntentBook,
		"Please reschedule my appointment":    models.IntentReschedule,
		"I need to change the time":           models.IntentReschedule,
		"cancel my appointment tomorrow":      models.IntentCancel,
		"What is your address?":               models.IntentUnknown,
	}
	for text, want := range cases {
		llm := &scriptedLLM{extraction: "Sure! I can help with that."}
		got := NewIntentExtractor(llm).Extract(context.Background(), text)
		assert.Equal(t, want, got.Intent, text)
		assert.Empty(t, got.Error)
	}
}

func TestIntentExtractor_ModelError(t *testing.T) {
	llm := &scriptedLLM{extractErr: errors.New("API authentication failed: bad key")}
	got := NewIntentExtractor(llm).Extract(context.Background(), "book me in")
	assert.Equal(t, models.IntentUnknown, got.Intent)
	assert.Equal(t, "API authentication failed: bad key", got.Error)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`  {"a":1}  `))
}
