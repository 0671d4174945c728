package booking

import "time"

// dateIndex buckets record positions by calendar date (in the office location).
// Positions are stable because records are never removed.
type dateIndex map[string][]int

func (idx dateIndex) add(key string, pos int) {
	idx[key] = append(idx[key], pos)
}

func (idx dateIndex) remove(key string, pos int) {
	bucket := idx[key]
	for i, p := range bucket {
		if p == pos {
			idx[key] = append(bucket[:i:i], bucket[i+1:]...)
			break
		}
	}
	if len(idx[key]) == 0 {
		delete(idx, key)
	}
}

// around returns positions booked on t's date and the neighbouring dates, which is
// enough for any interval shorter than a day to find every overlap.
func (idx dateIndex) around(t time.Time) []int {
	var out []int
	for _, d := range []int{-1, 0, 1} {
		out = append(out, idx[dateKey(t.AddDate(0, 0, d))]...)
	}
	return out
}
