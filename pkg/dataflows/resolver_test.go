package dataflows

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yclin/bondwatch/internal/filing"
)

// fakeProvider serves canned bars and counts remote calls per symbol.
type fakeProvider struct {
	bars         map[string][]Bar // keyed by symbol|YYYY-MM-DD of the window start
	recent       map[string][]Bar // keyed by symbol
	errs         map[string]error // keyed by symbol
	betweenCalls map[string]int
	recentCalls  map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		bars:         make(map[string][]Bar),
		recent:       make(map[string][]Bar),
		errs:         make(map[string]error),
		betweenCalls: make(map[string]int),
		recentCalls:  make(map[string]int),
	}
}

func (f *fakeProvider) key(symbol string, start time.Time) string {
	return symbol + "|" + start.Format("2006-01-02")
}

func (f *fakeProvider) BarsBetween(symbol string, start, end time.Time) ([]Bar, error) {
	f.betweenCalls[symbol]++
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	return f.bars[f.key(symbol, start)], nil
}

func (f *fakeProvider) BarsRecent(symbol string, days int) ([]Bar, error) {
	f.recentCalls[symbol]++
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	return f.recent[symbol], nil
}

func bar(close float64, volume int64) Bar {
	return Bar{Close: decimal.NewFromFloat(close), Volume: volume}
}

func day(y int, m time.Month, d int) filing.Date {
	return filing.DateOf(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func TestObservationAtAbsentDate(t *testing.T) {
	fp := newFakeProvider()
	r := NewResolver(fp, nil)

	obs := r.ObservationAt("1234", filing.Date{})
	if obs.Valid {
		t.Fatalf("absent date must resolve to absent observation")
	}
	if len(fp.betweenCalls) != 0 {
		t.Fatalf("absent date must not hit the provider, calls=%v", fp.betweenCalls)
	}
}

func TestObservationAtPrimaryVenueWins(t *testing.T) {
	fp := newFakeProvider()
	fp.bars["1234.TW|2024-01-15"] = []Bar{bar(45.2, 2500000)}
	fp.bars["1234.TWO|2024-01-15"] = []Bar{bar(99.9, 1)}
	r := NewResolver(fp, nil)

	obs := r.ObservationAt("1234", day(2024, time.January, 15))
	if !obs.Valid {
		t.Fatalf("expected a resolved observation")
	}
	if !obs.Close.Equal(decimal.NewFromFloat(45.2)) {
		t.Fatalf("expected primary venue close 45.2, got %s", obs.Close)
	}
	if fp.betweenCalls["1234.TWO"] != 0 {
		t.Fatalf("secondary venue must not be consulted after a primary hit")
	}
}

func TestObservationAtFallsBackOnEmpty(t *testing.T) {
	fp := newFakeProvider()
	fp.bars["1234.TWO|2024-01-15"] = []Bar{bar(33.3, 800000)}
	r := NewResolver(fp, nil)

	obs := r.ObservationAt("1234", day(2024, time.January, 15))
	if !obs.Valid || !obs.Close.Equal(decimal.NewFromFloat(33.3)) {
		t.Fatalf("expected secondary venue bar, got %+v", obs)
	}
}

func TestObservationAtFallsBackOnError(t *testing.T) {
	fp := newFakeProvider()
	fp.errs["1234.TW"] = errors.New("transport down")
	fp.bars["1234.TWO|2024-01-15"] = []Bar{bar(33.3, 800000)}
	r := NewResolver(fp, nil)

	obs := r.ObservationAt("1234", day(2024, time.January, 15))
	if !obs.Valid || !obs.Close.Equal(decimal.NewFromFloat(33.3)) {
		t.Fatalf("provider error must fall through to secondary venue, got %+v", obs)
	}
}

func TestObservationAtBothVenuesMiss(t *testing.T) {
	fp := newFakeProvider()
	fp.errs["1234.TW"] = errors.New("transport down")
	r := NewResolver(fp, nil)

	obs := r.ObservationAt("1234", day(2024, time.January, 15))
	if obs.Valid {
		t.Fatalf("miss on every venue must yield an absent observation")
	}
}

func TestLatestFetchesOncePerCode(t *testing.T) {
	fp := newFakeProvider()
	fp.recent["1234.TW"] = []Bar{bar(40.0, 100000), bar(41.5, 200000)}
	r := NewResolver(fp, nil)

	first := r.Latest("1234")
	second := r.Latest("1234")
	third := r.Latest(" 1234 ") // codes are trimmed before cache lookup

	if fp.recentCalls["1234.TW"] != 1 {
		t.Fatalf("expected exactly one latest fetch, got %d", fp.recentCalls["1234.TW"])
	}
	for _, obs := range []Observation{first, second, third} {
		if !obs.Valid || !obs.Close.Equal(decimal.NewFromFloat(41.5)) {
			t.Fatalf("latest must be the newest bar of the window, got %+v", obs)
		}
	}
}

func TestLatestCachesMisses(t *testing.T) {
	fp := newFakeProvider()
	r := NewResolver(fp, nil)

	if obs := r.Latest("1234"); obs.Valid {
		t.Fatalf("expected an absent latest observation")
	}
	if obs := r.Latest("1234"); obs.Valid {
		t.Fatalf("expected the cached absent observation")
	}

	if fp.recentCalls["1234.TW"] != 1 || fp.recentCalls["1234.TWO"] != 1 {
		t.Fatalf("a miss must be cached: calls=%v", fp.recentCalls)
	}
}

func TestLatestFallsBackToSecondaryVenue(t *testing.T) {
	fp := newFakeProvider()
	fp.recent["1234.TWO"] = []Bar{bar(12.3, 50000)}
	r := NewResolver(fp, nil)

	obs := r.Latest("1234")
	if !obs.Valid || !obs.Close.Equal(decimal.NewFromFloat(12.3)) {
		t.Fatalf("expected secondary venue latest bar, got %+v", obs)
	}
}

func TestSymbol(t *testing.T) {
	if got := Symbol(" 2330 ", "TW"); got != "2330.TW" {
		t.Fatalf("Symbol = %q", got)
	}
}
