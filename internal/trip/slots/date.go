package slots

import "time"

const DateLayout = "2006-01-02"

// NormalizeDate parses a YYYY-MM-DD date. Anything else falls back to thirty
// days after now.
func NormalizeDate(s string, now time.Time) time.Time {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t
	}
	y, m, d := now.AddDate(0, 0, 30).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
