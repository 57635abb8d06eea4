// Package app wires the per-run pipeline: download, filter, enrich,
// report, notify.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yclin/bondwatch/config"
	"github.com/yclin/bondwatch/internal/enrich"
	"github.com/yclin/bondwatch/internal/filing"
	"github.com/yclin/bondwatch/internal/notify"
	"github.com/yclin/bondwatch/internal/report"
	"github.com/yclin/bondwatch/pkg/dataflows"
)

// FilingSource supplies the disclosure records published for a date.
type FilingSource interface {
	FetchDaily(ctx context.Context, date time.Time) ([]filing.Record, error)
}

// SummaryPusher delivers the per-run summary text.
type SummaryPusher interface {
	Push(ctx context.Context, text string) error
}

// Runner executes one end-to-end run. The bar provider is long-lived;
// the latest-observation cache is not, so each run builds its own
// Resolver.
type Runner struct {
	cfg      *config.Config
	source   FilingSource
	provider dataflows.BarProvider
	writer   *report.Writer
	pusher   SummaryPusher
	log      *logrus.Entry
}

// NewRunner wires a Runner from config.
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{
		cfg:      cfg,
		source:   dataflows.NewFSCClient(),
		provider: dataflows.NewYahooClient(cfg),
		writer:   report.NewWriter(cfg.OutputDir),
		pusher:   notify.NewPusher(cfg.NotifyEndpoint, cfg.NotifyToken),
		log:      logrus.WithField("component", "runner"),
	}
}

// RunOnce processes the disclosure table for runDate. Failing to obtain
// the table is the only fatal error; an unpublished workbook is a
// normal no-filings day, and everything downstream degrades to absent
// fields. A zero runDate means today.
func (r *Runner) RunOnce(ctx context.Context, runDate time.Time) error {
	if runDate.IsZero() {
		runDate = time.Now()
	}
	r.log.WithField("date", runDate.Format("2006-01-02")).Info("run started")

	records, err := r.source.FetchDaily(ctx, runDate)
	if err != nil {
		if errors.Is(err, dataflows.ErrNotPublished) {
			r.log.WithField("date", runDate.Format("2006-01-02")).
				Info("no disclosure table for this date")
			r.push(ctx, notify.NoFilingsMessage(runDate))
			return nil
		}
		return fmt.Errorf("fetch daily disclosure table: %w", err)
	}

	filtered := filing.FilterConvertibleBond(records, r.cfg.CompanyKeyword)
	r.log.WithFields(logrus.Fields{
		"total":    len(records),
		"filtered": len(filtered),
	}).Info("filings filtered")

	if len(filtered) == 0 {
		r.push(ctx, notify.NoFilingsMessage(runDate))
		return nil
	}

	if err := report.WriteFilteredCSV(r.writer.CSVPath(runDate), filtered); err != nil {
		r.log.WithError(err).Warn("filtered CSV not written")
	}

	resolver := dataflows.NewResolver(r.provider, r.cfg.Venues)
	pipeline := enrich.NewPipeline(resolver, runDate)
	rows := pipeline.Enrich(filtered)

	if path, err := r.writer.WriteEnriched(runDate, rows); err != nil {
		r.log.WithError(err).Warn("enriched workbook not written")
	} else {
		r.log.WithField("path", path).Info("enriched workbook written")
	}

	window := enrich.TailWindow(rows, enrich.WindowSize)
	if path, err := r.writer.WriteWindow(runDate, window); err != nil {
		r.log.WithError(err).Warn("window workbook not written")
	} else {
		r.log.WithField("path", path).Info("window workbook written")
	}

	r.push(ctx, notify.FormatSummary(runDate, len(rows), window))

	r.log.Info("run finished")
	return nil
}

// push logs delivery failures instead of failing the run; by the time
// the summary exists the artifacts are already on disk.
func (r *Runner) push(ctx context.Context, text string) {
	if err := r.pusher.Push(ctx, text); err != nil {
		r.log.WithError(err).Warn("notification push failed")
	}
}
