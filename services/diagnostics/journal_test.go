package diagnostics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"apptdesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestJournal(t *testing.T, now time.Time) *Journal {
	t.Helper()
	j, err := NewJournal(filepath.Join(t.TempDir(), ".tmp", "error_log.jsonl"), zap.NewNop())
	require.NoError(t, err)
	j.now = func() time.Time { return now }
	return j
}

func TestJournal_AnalyzeEmpty(t *testing.T) {
	j := newTestJournal(t, time.Now())
	analysis, err := j.Analyze(7)
	require.NoError(t, err)
	assert.Equal(t, 0, analysis.TotalErrors)
	assert.Empty(t, analysis.CommonPatterns)
}

func TestJournal_AnalyzeGroupsErrors(t *testing.T) {
	now := time.Date(2025, 12, 20, 12, 0, 0, 0, time.UTC)
	j := newTestJournal(t, now)

	// Outside the window.
	require.NoError(t, j.Record(models.JournalEntry{
		Type: models.EntryError, Error: "API rate limit exceeded: old", Timestamp: now.AddDate(0, 0, -10),
	}))
	j.RecordError("/api/chat", errors.New("API authentication failed: invalid key"), "hello")
	j.RecordError("/api/chat", errors.New("AI chat processing failed: connection timeout"), "hi")
	j.RecordError("/api/voice", errors.New("speech recognition failed: missing audio"), "")
	j.RecordBooking(models.Appointment{ConfirmationNumber: "APT202512230001", AppointmentDatetime: "2025-12-23 10:00"})

	analysis, err := j.Analyze(7)
	require.NoError(t, err)
	assert.Equal(t, 3, analysis.TotalErrors)
	assert.Equal(t, map[string]int{
		"API authentication failed":  1,
		"AI chat processing failed":  1,
		"speech recognition failed":  1,
	}, analysis.ErrorTypes)

	kinds := map[string]int{}
	for _, p := range analysis.CommonPatterns {
		kinds[p.Type] = p.Count
		assert.NotEmpty(t, p.Suggestion)
	}
	assert.Equal(t, map[string]int{"API Error": 1, "Network Error": 1, "Validation Error": 2}, kinds)
	require.Len(t, analysis.RecentErrors, 3)
	assert.Equal(t, "/api/voice", analysis.RecentErrors[2].Endpoint)

	all, err := j.Analyze(30)
	require.NoError(t, err)
	assert.Equal(t, 4, all.TotalErrors)
}

func TestJournal_KeepsLastFiveAndTruncatesMessages(t *testing.T) {
	j := newTestJournal(t, time.Now())
	for i := 0; i < 8; i++ {
		j.RecordError("/api/chat", errors.New("boom: failure"), strings.Repeat("x", 250))
	}
	analysis, err := j.Analyze(1)
	require.NoError(t, err)
	assert.Equal(t, 8, analysis.TotalErrors)
	require.Len(t, analysis.RecentErrors, recentErrorsKept)
	assert.Len(t, analysis.RecentErrors[0].Message, messagePreviewRunes)
}

func TestJournal_SkipsCorruptLines(t *testing.T) {
	j := newTestJournal(t, time.Now())
	j.RecordError("/api/chat", errors.New("boom: one"), "")
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{garbage\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	j.RecordError("/api/chat", errors.New("boom: two"), "")

	analysis, err := j.Analyze(1)
	require.NoError(t, err)
	assert.Equal(t, 2, analysis.TotalErrors)
}

func TestJournal_Health(t *testing.T) {
	j := newTestJournal(t, time.Now())
	assert.Equal(t, "healthy", j.Health().Status)

	for i := 0; i < degradedThreshold; i++ {
		j.RecordError("/api/chat", errors.New("boom: again"), "")
	}
	h := j.Health()
	assert.Equal(t, "degraded", h.Status)
	assert.Equal(t, degradedThreshold, h.ErrorsLast24)
}

func TestTopCounts(t *testing.T) {
	counts := map[string]int{"a": 5, "b": 4, "c": 3, "d": 1}
	assert.Equal(t, map[string]int{"a": 5, "b": 4}, topCounts(counts, 2))
}
