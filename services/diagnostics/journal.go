// Package diagnostics keeps an append-only journal of failures and completed
// bookings and summarises recurring error patterns from it.
package diagnostics

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"apptdesk/models"

	"go.uber.org/zap"
)

const (
	messagePreviewRunes = 100
	recentErrorsKept    = 5
	topErrorTypes       = 10
	// degradedThreshold is the number of errors within a day that flips Health to degraded.
	degradedThreshold = 10
)

type Journal struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
	now    func() time.Time
}

func NewJournal(path string, logger *zap.Logger) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	return &Journal{path: path, logger: logger, now: time.Now}, nil
}

// Record appends one entry as a JSON line.
func (j *Journal) Record(entry models.JournalEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = j.now()
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(line, '\n'))
	return err
}

// RecordError journals a failure. Journal write errors are logged, never returned.
func (j *Journal) RecordError(endpoint string, err error, message string) {
	entry := models.JournalEntry{
		Type:     models.EntryError,
		Endpoint: endpoint,
		Error:    err.Error(),
		Message:  preview(message),
	}
	if werr := j.Record(entry); werr != nil {
		j.logger.Warn("Failed to write diagnostics journal", zap.Error(werr))
	}
}

func (j *Journal) RecordBooking(appt models.Appointment) {
	entry := models.JournalEntry{
		Type: models.EntrySuccessfulBooking,
		Data: map[string]string{
			"confirmation_number": appt.ConfirmationNumber,
			"appointment_time":    appt.AppointmentDatetime,
		},
	}
	if err := j.Record(entry); err != nil {
		j.logger.Warn("Failed to write diagnostics journal", zap.Error(err))
	}
}

// Analyze summarises error entries from the last days days. A missing journal
// yields an empty analysis; unparsable lines are skipped.
func (j *Journal) Analyze(days int) (models.ErrorAnalysis, error) {
	if days <= 0 {
		days = 7
	}
	errs, err := j.errorsSince(j.now().AddDate(0, 0, -days))
	if err != nil {
		return models.ErrorAnalysis{}, err
	}
	if len(errs) == 0 {
		return models.ErrorAnalysis{}, nil
	}

	counts := make(map[string]int)
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		kind, _, _ := strings.Cut(e.Error, ":")
		counts[strings.TrimSpace(kind)]++
		messages = append(messages, e.Error)
	}

	return models.ErrorAnalysis{
		TotalErrors:    len(errs),
		ErrorTypes:     topCounts(counts, topErrorTypes),
		CommonPatterns: commonPatterns(messages),
		RecentErrors:   errs[max(0, len(errs)-recentErrorsKept):],
	}, nil
}

// HealthSummary is the journal's view of system health.
type HealthSummary struct {
	Status       string `json:"status"`
	ErrorsLast24 int    `json:"errors_last_24h"`
}

func (j *Journal) Health() HealthSummary {
	errs, err := j.errorsSince(j.now().Add(-24 * time.Hour))
	if err != nil {
		j.logger.Warn("Failed to read diagnostics journal", zap.Error(err))
		return HealthSummary{Status: "unknown"}
	}
	status := "healthy"
	if len(errs) >= degradedThreshold {
		status = "degraded"
	}
	return HealthSummary{Status: status, ErrorsLast24: len(errs)}
}

func (j *Journal) errorsSince(cutoff time.Time) ([]models.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []models.JournalEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var entry models.JournalEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		if entry.Error == "" || entry.Timestamp.Before(cutoff) {
			continue
		}
		out = append(out, entry)
	}
	return out, scanner.Err()
}

type patternRule struct {
	kind       string
	suggestion string
	keywords   []string
}

var patternRules = []patternRule{
	{"API Error", "Check API key validity and rate limits", []string{"api", "gemini"}},
	{"Network Error", "Check internet connection and retry logic", []string{"connection", "timeout", "network"}},
	{"Validation Error", "Improve input validation and error messages", []string{"value", "invalid", "missing", "required"}},
}

func commonPatterns(messages []string) []models.ErrorPattern {
	var patterns []models.ErrorPattern
	for _, rule := range patternRules {
		n := 0
		for _, m := range messages {
			lower := strings.ToLower(m)
			for _, kw := range rule.keywords {
				if strings.Contains(lower, kw) {
					n++
					break
				}
			}
		}
		if n > 0 {
			patterns = append(patterns, models.ErrorPattern{Type: rule.kind, Count: n, Suggestion: rule.suggestion})
		}
	}
	return patterns
}

func topCounts(counts map[string]int, limit int) map[string]int {
	if len(counts) <= limit {
		return counts
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if counts[keys[a]] != counts[keys[b]] {
			return counts[keys[a]] > counts[keys[b]]
		}
		return keys[a] < keys[b]
	})
	out := make(map[string]int, limit)
	for _, k := range keys[:limit] {
		out[k] = counts[k]
	}
	return out
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= messagePreviewRunes {
		return s
	}
	return string([]rune(s)[:messagePreviewRunes])
}
