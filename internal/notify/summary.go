// Package notify renders the per-run text summary and delivers it over a
// webhook channel.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/yclin/bondwatch/internal/enrich"
	"github.com/yclin/bondwatch/internal/filing"
	"github.com/yclin/bondwatch/pkg/dataflows"
)

// SummaryBudget is the summary's own character cap. It is deliberately
// below any channel hard limit so the formatter, not the channel,
// decides where the text ends.
const SummaryBudget = 1800

// TruncationMark is appended when the summary is cut at SummaryBudget.
const TruncationMark = "…(truncated)"

const preamble = "FSC convertible bond filings"

// FormatSummary renders the trailing window into a single text block.
// The result never exceeds SummaryBudget plus the truncation mark.
func FormatSummary(runDate time.Time, total int, win enrich.Window) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", preamble)
	fmt.Fprintf(&b, "Date: %s\n", runDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "Filings: %d\n", total)

	for _, row := range win.Rows {
		b.WriteString("\n")
		b.WriteString(entry(row))
		b.WriteString("\n")
	}

	return Truncate(b.String(), SummaryBudget)
}

// NoFilingsMessage is the degenerate summary for a day without matching
// filings.
func NoFilingsMessage(runDate time.Time) string {
	return fmt.Sprintf("%s\nDate: %s\nNo matching filings today.",
		preamble, runDate.Format("2006-01-02"))
}

// Truncate cuts s to exactly budget characters and appends the
// truncation mark when s is longer than budget.
func Truncate(s string, budget int) string {
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget]) + TruncationMark
}

func entry(row enrich.Row) string {
	return fmt.Sprintf("%s %s\nreceived %s close %s\neffective %s close %s\nlatest close %s",
		row.Record.Code,
		row.Record.CompanyName,
		dateText(row.Received),
		priceText(row.ReceivedObs),
		dateText(row.Effective),
		priceText(row.EffectiveObs),
		priceText(row.LatestObs),
	)
}

func dateText(d filing.Date) string {
	if !d.Valid {
		return ""
	}
	return d.Format("2006-01-02")
}

func priceText(obs dataflows.Observation) string {
	if !obs.Valid {
		return ""
	}
	return obs.Close.String()
}
