package timex

import "time"

// DayLayout is the ISO calendar-date layout used for day keys.
const DayLayout = "2006-01-02"

// DayKey returns the UTC calendar date of t as "YYYY-MM-DD".
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// MaxMillis is the last millisecond of 9999-12-31 UTC, the latest instant
// whose day key still fits DayLayout.
var MaxMillis = time.Date(9999, 12, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC).UnixMilli()

// MillisInRange reports whether ms lies between the Unix epoch and MaxMillis.
func MillisInRange(ms int64) bool {
	return ms >= 0 && ms <= MaxMillis
}

// DayKeyFromMillis is DayKey for a Unix epoch timestamp in milliseconds.
func DayKeyFromMillis(ms int64) string {
	return DayKey(time.UnixMilli(ms))
}

// DaysBetween returns the number of whole calendar days from one day key to
// another (negative when to is earlier). Both keys are read as UTC midnights.
func DaysBetween(from, to string) (int, error) {
	f, err := time.ParseInLocation(DayLayout, from, time.UTC)
	if err != nil {
		return 0, err
	}
	t, err := time.ParseInLocation(DayLayout, to, time.UTC)
	if err != nil {
		return 0, err
	}
	return int(t.Sub(f).Hours() / 24), nil
}
