package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/dustin/go-humanize"

	"ComputeStats/internal/model"
)

// FormatDigest renders the short per-run message: total credits, the 30-day
// average and the next milestone, plus providers that failed.
func FormatDigest(snap model.Snapshot, report *model.Report, records []*model.ProviderRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 <b>Compute stats</b> | %s\n\n", snap.Date)

	total, ok := snap.Lookup(model.Metric(model.MetricTotalCredits))
	if !ok {
		b.WriteString("No provider reported today.\n")
	} else {
		fmt.Fprintf(&b, "Total credits: <b>%s</b>\n", humanize.Comma(total))
	}

	mt := report.Trend(model.MetricTotalCredits)
	switch {
	case report == nil || report.Status != model.StatusOK:
		b.WriteString("Trends: not enough history yet\n")
	case mt == nil:
	default:
		if w, ok := mt.Window(30); ok {
			fmt.Fprintf(&b, "30-day average: %s/day\n", humanize.Comma(w.AvgPerDay))
		} else if mt.BestAvg > 0 {
			fmt.Fprintf(&b, "Average: %s/day (%s)\n", humanize.Comma(mt.BestAvg), mt.BestSource)
		}
		if len(mt.Milestones) > 0 {
			m := mt.Milestones[0]
			fmt.Fprintf(&b, "Next milestone: %s in %d days (%s)\n",
				humanize.Comma(m.Threshold), m.DaysToReach, m.EstimatedDate)
		}
	}

	var failed []string
	for _, r := range records {
		if r.Status == model.ProviderFailed {
			failed = append(failed, html.EscapeString(r.Name))
		}
	}
	if len(failed) > 0 {
		fmt.Fprintf(&b, "\n⚠️ Failed: %s\n", strings.Join(failed, ", "))
	}
	return b.String()
}
