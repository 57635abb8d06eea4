package dataflows

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one daily trading bar.
type Bar struct {
	Symbol string          `json:"symbol"`
	Date   time.Time       `json:"date"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// Observation is the close and traded share volume resolved for one
// instrument on one day. Valid is false when no bar was available from
// any venue; a failed lookup and an unpublished trading day look the
// same downstream.
type Observation struct {
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
	Valid  bool            `json:"valid"`
}

// BarProvider fetches daily bars for a fully qualified symbol
// (instrument code plus venue suffix, e.g. 2330.TW).
type BarProvider interface {
	// BarsBetween returns the bars inside [start, end), oldest first.
	BarsBetween(symbol string, start, end time.Time) ([]Bar, error)
	// BarsRecent returns the bars of the trailing days calendar days,
	// oldest first.
	BarsRecent(symbol string, days int) ([]Bar, error)
}
