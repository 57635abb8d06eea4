package dataflows

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yclin/bondwatch/internal/filing"
)

// DefaultVenues is the listing fallback order: TWSE first, then TPEX.
var DefaultVenues = []string{"TW", "TWO"}

// latestWindowDays is the trailing window consulted for the most recent
// trading bar. Five calendar days always span at least one session, long
// holiday runs excepted.
const latestWindowDays = 5

// Resolver resolves close/volume observations for instrument codes,
// consulting each venue suffix in order. The latest-observation cache is
// scoped to one Resolver, and a Resolver is scoped to one run; misses are
// cached alongside hits so a code is fetched at most once per run.
//
// Resolver methods never return an error: a transport failure and an
// empty result are the same miss, logged and absorbed.
type Resolver struct {
	provider BarProvider
	venues   []string
	latest   map[string]Observation
	log      *logrus.Entry
}

// NewResolver creates a Resolver with an empty latest cache. A nil or
// empty venue list falls back to DefaultVenues.
func NewResolver(provider BarProvider, venues []string) *Resolver {
	if len(venues) == 0 {
		venues = DefaultVenues
	}
	return &Resolver{
		provider: provider,
		venues:   venues,
		latest:   make(map[string]Observation),
		log:      logrus.WithField("component", "resolver"),
	}
}

// Symbol qualifies an instrument code with a venue suffix.
func Symbol(code, venue string) string {
	return strings.TrimSpace(code) + "." + venue
}

// ObservationAt resolves the bar for code on the given date. An absent
// date resolves to an absent observation without touching the provider.
func (r *Resolver) ObservationAt(code string, date filing.Date) Observation {
	if !date.Valid {
		return Observation{}
	}

	start := date.Time
	end := start.AddDate(0, 0, 1)

	for _, venue := range r.venues {
		symbol := Symbol(code, venue)
		bars, err := r.provider.BarsBetween(symbol, start, end)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"symbol": symbol,
				"date":   start.Format("2006-01-02"),
			}).WithError(err).Warn("daily bar lookup failed")
			continue
		}
		if len(bars) == 0 {
			continue
		}
		b := bars[0]
		return Observation{Close: b.Close, Volume: b.Volume, Valid: true}
	}

	return Observation{}
}

// Latest resolves the most recent bar for code, at most once per run per
// code. A cached absent result is returned as-is without a new fetch.
func (r *Resolver) Latest(code string) Observation {
	code = strings.TrimSpace(code)

	if obs, ok := r.latest[code]; ok {
		return obs
	}

	obs := r.fetchLatest(code)
	r.latest[code] = obs
	return obs
}

func (r *Resolver) fetchLatest(code string) Observation {
	for _, venue := range r.venues {
		symbol := Symbol(code, venue)
		bars, err := r.provider.BarsRecent(symbol, latestWindowDays)
		if err != nil {
			r.log.WithField("symbol", symbol).WithError(err).Warn("latest bar lookup failed")
			continue
		}
		if len(bars) == 0 {
			continue
		}
		b := bars[len(bars)-1]
		return Observation{Close: b.Close, Volume: b.Volume, Valid: true}
	}

	return Observation{}
}
