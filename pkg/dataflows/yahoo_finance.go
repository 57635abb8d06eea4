package dataflows

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"github.com/yclin/bondwatch/config"
)

// YahooClient fetches daily bars from Yahoo Finance.
type YahooClient struct {
	cache *CacheManager
}

// NewYahooClient creates a new Yahoo Finance client.
func NewYahooClient(cfg *config.Config) *YahooClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "yahoo_finance")
	cache := NewCacheManager(cacheDir, 24*time.Hour, cfg.CacheEnabled)

	return &YahooClient{
		cache: cache,
	}
}

// BarsBetween returns the daily bars inside [start, end), oldest first.
// Dated bars never change once published, so results are cached on disk.
func (yc *YahooClient) BarsBetween(symbol string, start, end time.Time) ([]Bar, error) {
	cacheKey := map[string]interface{}{
		"symbol": symbol,
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
	}

	var cached []Bar
	if yc.cache.Get("yahoo", "bars", cacheKey, &cached) {
		return cached, nil
	}

	bars, err := yc.fetch(symbol, start, end)
	if err != nil {
		return nil, err
	}

	yc.cache.Set("yahoo", "bars", cacheKey, bars)

	return bars, nil
}

// BarsRecent returns the bars of the trailing days calendar days. The
// window tracks the current trading session, so it is always fetched
// live; the run-scoped cache in Resolver bounds the request count.
func (yc *YahooClient) BarsRecent(symbol string, days int) ([]Bar, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	return yc.fetch(symbol, start, end)
}

func (yc *YahooClient) fetch(symbol string, start, end time.Time) ([]Bar, error) {
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)

	bars := make([]Bar, 0)
	for iter.Next() {
		b := iter.Bar()

		bars = append(bars, Bar{
			Symbol: symbol,
			Date:   time.Unix(int64(b.Timestamp), 0),
			Close:  b.Close,
			Volume: int64(b.Volume),
		})
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get bars for %s: %w", symbol, err)
	}

	return bars, nil
}
