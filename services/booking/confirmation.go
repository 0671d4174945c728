package booking

import (
	"fmt"
	"strings"
	"time"
)

const ConfirmationPrefix = "APT"

// ConfirmationNumber renders prefix + YYYYMMDD + 4-digit sequence, e.g. APT202512230001.
func ConfirmationNumber(start time.Time, seq int) string {
	return fmt.Sprintf("%s%s%04d", ConfirmationPrefix, start.Format("20060102"), seq)
}

// nextConfirmationLocked derives the number from the record count plus one and bumps
// the sequence past any number already issued, so numbers are never reused.
func (s *Scheduler) nextConfirmationLocked(start time.Time) string {
	for seq := len(s.records) + 1; ; seq++ {
		c := ConfirmationNumber(start, seq)
		if _, taken := s.byConf[c]; !taken {
			return c
		}
	}
}

// lookupLocked finds a record position by confirmation number. Caller text is trimmed
// and upper-cased so every lookup path accepts the same spellings.
func (s *Scheduler) lookupLocked(confirmation string) (int, bool) {
	pos, ok := s.byConf[strings.ToUpper(strings.TrimSpace(confirmation))]
	return pos, ok
}
