package enrich

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yclin/bondwatch/internal/filing"
	"github.com/yclin/bondwatch/pkg/dataflows"
)

// LotSize is the number of shares per traded lot on Taiwanese markets.
const LotSize = 1000

// Headers is the column ordering shared by the full and windowed
// artifacts.
var Headers = []string{
	"證券代號", "公司型態", "結案類型", "公司名稱", "收文日期", "生效日期",
	"收文日期當天股價", "生效日期當天股價", "今日股價",
	"收文日期成交張數", "生效日期成交張數", "今日成交張數",
}

// LotCount is a traded volume expressed in whole lots, or absent.
type LotCount struct {
	Lots  int64
	Valid bool
}

// Lots converts a raw share volume to lots, rounding half to even. A
// missing volume and a zero volume both come back absent; the reports do
// not distinguish a no-trade day from a failed lookup.
func Lots(volume int64, ok bool) LotCount {
	if !ok || volume == 0 {
		return LotCount{}
	}
	return LotCount{
		Lots:  int64(math.RoundToEven(float64(volume) / LotSize)),
		Valid: true,
	}
}

// Row is a filing record enriched with its market observations.
type Row struct {
	Record filing.Record

	Received  filing.Date
	Effective filing.Date

	ReceivedObs  dataflows.Observation
	EffectiveObs dataflows.Observation
	LatestObs    dataflows.Observation

	ReceivedLots  LotCount
	EffectiveLots LotCount
	LatestLots    LotCount
}

// Cells renders the row in Headers order. Absent values render empty;
// the raw date cells are carried through untouched.
func (r Row) Cells() []string {
	return []string{
		r.Record.Code,
		r.Record.CompanyType,
		r.Record.ClosureType,
		r.Record.CompanyName,
		r.Record.ReceivedRaw,
		r.Record.EffectiveRaw,
		priceCell(r.ReceivedObs),
		priceCell(r.EffectiveObs),
		priceCell(r.LatestObs),
		lotsCell(r.ReceivedLots),
		lotsCell(r.EffectiveLots),
		lotsCell(r.LatestLots),
	}
}

func priceCell(obs dataflows.Observation) string {
	if !obs.Valid {
		return ""
	}
	return obs.Close.String()
}

func lotsCell(lc LotCount) string {
	if !lc.Valid {
		return ""
	}
	return strconv.FormatInt(lc.Lots, 10)
}

// Resolver is the part of dataflows.Resolver the pipeline depends on.
type Resolver interface {
	ObservationAt(code string, date filing.Date) dataflows.Observation
	Latest(code string) dataflows.Observation
}

// Pipeline walks filing records in order and enriches each one.
type Pipeline struct {
	resolver Resolver
	today    time.Time
	log      *logrus.Entry
}

// NewPipeline creates a Pipeline. Today is fixed once per run and bounds
// the date sanity filter for the whole run.
func NewPipeline(resolver Resolver, today time.Time) *Pipeline {
	return &Pipeline{
		resolver: resolver,
		today:    today,
		log:      logrus.WithField("component", "enrich"),
	}
}

// Enrich processes records in original order. A blank instrument code is
// the end-of-data sentinel and stops the walk; missing market data never
// drops a row.
func (p *Pipeline) Enrich(records []filing.Record) []Row {
	rows := make([]Row, 0, len(records))

	for _, rec := range records {
		if strings.TrimSpace(rec.Code) == "" {
			break
		}

		received := filing.ClampDate(filing.ParseDate(rec.ReceivedRaw), p.today)
		effective := filing.ClampDate(filing.ParseDate(rec.EffectiveRaw), p.today)

		receivedObs := p.resolver.ObservationAt(rec.Code, received)
		effectiveObs := p.resolver.ObservationAt(rec.Code, effective)
		latestObs := p.resolver.Latest(rec.Code)

		rows = append(rows, Row{
			Record:        rec,
			Received:      received,
			Effective:     effective,
			ReceivedObs:   receivedObs,
			EffectiveObs:  effectiveObs,
			LatestObs:     latestObs,
			ReceivedLots:  Lots(receivedObs.Volume, receivedObs.Valid),
			EffectiveLots: Lots(effectiveObs.Volume, effectiveObs.Valid),
			LatestLots:    Lots(latestObs.Volume, latestObs.Valid),
		})
	}

	p.log.WithField("rows", len(rows)).Info("enrichment complete")
	return rows
}
