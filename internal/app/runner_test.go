package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yclin/bondwatch/config"
	"github.com/yclin/bondwatch/internal/filing"
	"github.com/yclin/bondwatch/internal/notify"
	"github.com/yclin/bondwatch/internal/report"
	"github.com/yclin/bondwatch/pkg/dataflows"
)

var runDay = time.Date(2026, 8, 21, 9, 0, 0, 0, time.Local)

type fakeSource struct {
	records []filing.Record
	err     error
}

func (f *fakeSource) FetchDaily(ctx context.Context, date time.Time) ([]filing.Record, error) {
	return f.records, f.err
}

type fakePusher struct {
	texts []string
}

func (f *fakePusher) Push(ctx context.Context, text string) error {
	f.texts = append(f.texts, text)
	return nil
}

type fakeProvider struct {
	recent map[string][]dataflows.Bar
}

func (f *fakeProvider) BarsBetween(symbol string, start, end time.Time) ([]dataflows.Bar, error) {
	return nil, nil
}

func (f *fakeProvider) BarsRecent(symbol string, days int) ([]dataflows.Bar, error) {
	return f.recent[symbol], nil
}

func newTestRunner(t *testing.T, source FilingSource, pusher SummaryPusher, provider dataflows.BarProvider) *Runner {
	t.Helper()
	dir := t.TempDir()
	return &Runner{
		cfg: &config.Config{
			OutputDir: dir,
			Venues:    []string{"TW", "TWO"},
		},
		source:   source,
		provider: provider,
		writer:   report.NewWriter(dir),
		pusher:   pusher,
		log:      logrus.WithField("component", "runner"),
	}
}

func artifactCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	return len(entries)
}

func TestRunOnceUnpublishedDay(t *testing.T) {
	source := &fakeSource{err: fmt.Errorf("%w: weekend", dataflows.ErrNotPublished)}
	pusher := &fakePusher{}
	r := newTestRunner(t, source, pusher, &fakeProvider{})

	if err := r.RunOnce(context.Background(), runDay); err != nil {
		t.Fatalf("an unpublished workbook must not fail the run: %v", err)
	}
	if len(pusher.texts) != 1 || pusher.texts[0] != notify.NoFilingsMessage(runDay) {
		t.Fatalf("expected exactly the no-filings message, got %v", pusher.texts)
	}
	if n := artifactCount(t, r.cfg.OutputDir); n != 0 {
		t.Fatalf("an unpublished day must write no artifacts, found %d", n)
	}
}

func TestRunOnceFetchFailureIsFatal(t *testing.T) {
	source := &fakeSource{err: errors.New("connection reset")}
	pusher := &fakePusher{}
	r := newTestRunner(t, source, pusher, &fakeProvider{})

	if err := r.RunOnce(context.Background(), runDay); err == nil {
		t.Fatalf("a transport failure must fail the run")
	}
	if len(pusher.texts) != 0 {
		t.Fatalf("a failed run must push nothing, got %v", pusher.texts)
	}
}

func TestRunOnceNoMatchingFilings(t *testing.T) {
	source := &fakeSource{records: []filing.Record{
		{Code: "5678", CompanyName: "乙公司", Category: "現金增資"},
	}}
	pusher := &fakePusher{}
	r := newTestRunner(t, source, pusher, &fakeProvider{})

	if err := r.RunOnce(context.Background(), runDay); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(pusher.texts) != 1 || pusher.texts[0] != notify.NoFilingsMessage(runDay) {
		t.Fatalf("expected exactly the no-filings message, got %v", pusher.texts)
	}
	if n := artifactCount(t, r.cfg.OutputDir); n != 0 {
		t.Fatalf("an empty filtered set must write no artifacts, found %d", n)
	}
}

func TestRunOnceMatchingFilings(t *testing.T) {
	source := &fakeSource{records: []filing.Record{
		{Code: "1234", CompanyName: "甲公司", Category: "國內轉換公司債",
			ReceivedRaw: "1130115", EffectiveRaw: "20240301"},
		{Code: "5678", CompanyName: "乙公司", Category: "現金增資"},
	}}
	pusher := &fakePusher{}
	provider := &fakeProvider{recent: map[string][]dataflows.Bar{
		"1234.TW": {{
			Symbol: "1234.TW",
			Date:   runDay.AddDate(0, 0, -1),
			Close:  decimal.NewFromFloat(52.5),
			Volume: 3000000,
		}},
	}}
	r := newTestRunner(t, source, pusher, provider)

	if err := r.RunOnce(context.Background(), runDay); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if len(pusher.texts) != 1 {
		t.Fatalf("expected one summary push, got %v", pusher.texts)
	}
	summary := pusher.texts[0]
	if summary == notify.NoFilingsMessage(runDay) {
		t.Fatalf("a non-empty run must push the full summary")
	}
	if !strings.Contains(summary, "Filings: 1") || !strings.Contains(summary, "1234 甲公司") {
		t.Fatalf("summary missing filing details: %q", summary)
	}
	if !strings.Contains(summary, "latest close 52.5") {
		t.Fatalf("summary missing latest close: %q", summary)
	}

	for _, name := range []string{
		"fsc_convbond_20260821.csv",
		"fsc_convbond_20260821_with_price.xlsx",
		"fsc_convbond_20260821_last20.xlsx",
	} {
		if _, err := os.Stat(filepath.Join(r.cfg.OutputDir, name)); err != nil {
			t.Fatalf("artifact %s not written: %v", name, err)
		}
	}
}
