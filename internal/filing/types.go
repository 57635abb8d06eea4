package filing

import "time"

// Record is one row of the FSC daily disclosure table, reduced to the
// columns the reports keep. Category is carried only so the filter can
// match on it; the raw date cells stay untouched until enrichment.
type Record struct {
	Code         string
	CompanyType  string
	ClosureType  string
	CompanyName  string
	Category     string
	ReceivedRaw  string
	EffectiveRaw string
}

// Date is a calendar date that may be absent. The zero value is absent.
// A present Date is always normalized to midnight UTC so comparisons
// only ever see the year/month/day components.
type Date struct {
	time.Time
	Valid bool
}

// DateOf takes the date portion of t.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}
