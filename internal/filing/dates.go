package filing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The disclosure table mixes several date encodings in the same column:
// real date cells, ROC (民國) digit strings like 1141021, Gregorian digit
// strings like 20241021, and both calendars with . / - separators.

// rocYearOffset converts a ROC year to its Gregorian year.
const rocYearOffset = 1911

// floorYear guards against transcription noise such as a wrong century.
const floorYear = 1990

var rocSeparatedRe = regexp.MustCompile(`^(\d{3})[./-](\d{1,2})[./-](\d{1,2})$`)

var gregorianLayouts = []string{"2006-01-02", "2006/01/02", "06/01/02"}

// ParseDate normalizes a raw table cell into a Date. Rules are tried in
// order and the first one producing a real calendar date wins; a cell
// matching no rule comes back absent, never as an error.
func ParseDate(cell any) Date {
	switch v := cell.(type) {
	case nil:
		return Date{}
	case time.Time:
		return DateOf(v)
	case string:
		return parseDateString(v)
	}
	return parseDateString(fmt.Sprint(cell))
}

func parseDateString(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}

	if isDigits(s) {
		switch len(s) {
		case 7:
			// ROC date: YYYMMDD
			y, _ := strconv.Atoi(s[:3])
			m, _ := strconv.Atoi(s[3:5])
			d, _ := strconv.Atoi(s[5:7])
			if date, ok := makeDate(y+rocYearOffset, m, d); ok {
				return date
			}
		case 8:
			if t, err := time.Parse("20060102", s); err == nil {
				return DateOf(t)
			}
		}
	}

	if m := rocSeparatedRe.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		if date, ok := makeDate(y+rocYearOffset, mo, d); ok {
			return date
		}
	}

	for _, layout := range gregorianLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t)
		}
	}

	return Date{}
}

// ClampDate drops dates outside the plausible window: before floorYear or
// after today. Today is evaluated once at run start, so a run crossing
// midnight keeps judging against its start date. Idempotent.
func ClampDate(d Date, today time.Time) Date {
	if !d.Valid {
		return Date{}
	}
	if d.Year() < floorYear {
		return Date{}
	}
	if d.Time.After(DateOf(today).Time) {
		return Date{}
	}
	return d
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// makeDate builds a Date and rejects components that do not form a real
// calendar date (month 13, February 30, ...).
func makeDate(y, m, d int) (Date, bool) {
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return Date{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return Date{}, false
	}
	return Date{Time: t, Valid: true}, true
}
