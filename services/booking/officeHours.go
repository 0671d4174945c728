package booking

import (
	"fmt"
	"strings"
	"time"
)

// DayHours is an opening window in minutes from midnight, open inclusive and close exclusive.
type DayHours struct {
	Open  int
	Close int
}

// OfficeHours maps each weekday to its window. A missing weekday is closed.
type OfficeHours map[time.Weekday]DayHours

// DefaultOfficeHours is Mon-Fri 09:00-17:00, Sat 09:00-13:00, Sun closed.
func DefaultOfficeHours() OfficeHours {
	weekday := DayHours{Open: 9 * 60, Close: 17 * 60}
	return OfficeHours{
		time.Monday:    weekday,
		time.Tuesday:   weekday,
		time.Wednesday: weekday,
		time.Thursday:  weekday,
		time.Friday:    weekday,
		time.Saturday:  {Open: 9 * 60, Close: 13 * 60},
	}
}

// For returns the window for day and whether the office opens at all.
func (h OfficeHours) For(day time.Weekday) (DayHours, bool) {
	dh, ok := h[day]
	if !ok || dh.Close <= dh.Open {
		return DayHours{}, false
	}
	return dh, true
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseOfficeHours reads a table like "mon-fri=09:00-17:00;sat=09:00-13:00;sun=closed".
// Days that are not listed are closed. An empty table means DefaultOfficeHours.
func ParseOfficeHours(raw string) (OfficeHours, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultOfficeHours(), nil
	}
	hours := OfficeHours{}
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		daysPart, window, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("office hours entry %q: missing '='", entry)
		}
		days, err := parseDayRange(strings.ToLower(strings.TrimSpace(daysPart)))
		if err != nil {
			return nil, err
		}
		window = strings.TrimSpace(window)
		if strings.EqualFold(window, "closed") {
			for _, d := range days {
				delete(hours, d)
			}
			continue
		}
		openStr, closeStr, ok := strings.Cut(window, "-")
		if !ok {
			return nil, fmt.Errorf("office hours entry %q: window must be HH:MM-HH:MM", entry)
		}
		open, err := ParseClockToMinutes(strings.TrimSpace(openStr))
		if err != nil {
			return nil, fmt.Errorf("office hours entry %q: %w", entry, err)
		}
		closeAt, err := ParseClockToMinutes(strings.TrimSpace(closeStr))
		if err != nil {
			return nil, fmt.Errorf("office hours entry %q: %w", entry, err)
		}
		if closeAt <= open {
			return nil, fmt.Errorf("office hours entry %q: close must be after open", entry)
		}
		for _, d := range days {
			hours[d] = DayHours{Open: open, Close: closeAt}
		}
	}
	return hours, nil
}

func parseDayRange(s string) ([]time.Weekday, error) {
	from, to, isRange := strings.Cut(s, "-")
	start, ok := weekdayNames[from]
	if !ok {
		return nil, fmt.Errorf("unknown weekday %q", from)
	}
	if !isRange {
		return []time.Weekday{start}, nil
	}
	end, ok := weekdayNames[to]
	if !ok {
		return nil, fmt.Errorf("unknown weekday %q", to)
	}
	var days []time.Weekday
	for d := start; ; d = (d + 1) % 7 {
		days = append(days, d)
		if d == end {
			break
		}
	}
	return days, nil
}
