package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"ComputeStats/internal/history"
	"ComputeStats/internal/model"
	"ComputeStats/internal/pipeline"
	"ComputeStats/internal/recorder"
)

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed, color.Bold)
	skipColor = color.New(color.FgHiBlack)
	warnColor = color.New(color.FgYellow)
)

func statusText(s model.ProviderStatus) string {
	switch s {
	case model.ProviderOK:
		return okColor.Sprint(string(s))
	case model.ProviderFailed:
		return failColor.Sprint(string(s))
	default:
		return skipColor.Sprint(string(s))
	}
}

// printRunSummary prints one row per provider followed by the trend status.
func printRunSummary(w io.Writer, res *pipeline.Result) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Provider", "Account", "Status", "Credit", "Detail"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, r := range res.Records {
		credit, detail := "", r.Err
		if r.Status == model.ProviderOK {
			if r.Windowed {
				detail = "recent results only, not counted in totals"
			} else {
				credit = humanize.Comma(r.Credit)
			}
		}
		data = append(data, []string{r.Name, r.Identity, statusText(r.Status), credit, detail})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if total, ok := res.Snapshot.Lookup(model.Metric(model.MetricTotalCredits)); ok {
		fmt.Fprintf(w, "Total credits: %s (%d provider(s) reporting)\n", humanize.Comma(total), res.Reporting)
	} else {
		warnColor.Fprintln(w, "No provider reported; history left unchanged.")
	}
	fmt.Fprintf(w, "Trend status: %s, %d data point(s)\n", res.Report.Status, res.Report.Points)
	return nil
}

func avgCell(mt *model.MetricTrend, days int) string {
	if w, ok := mt.Window(days); ok {
		return humanize.Comma(w.AvgPerDay)
	}
	return "-"
}

// printReport prints the stored report: a metric table, then milestones and
// the most active projects.
func printReport(w io.Writer, f history.File) error {
	r := f.LastReport
	if r == nil {
		warnColor.Fprintln(w, "No report yet. Run `computestats run` first.")
		return nil
	}
	fmt.Fprintf(w, "Report for %s: %d data point(s)\n", r.Today, r.Points)
	if r.Status != model.StatusOK {
		warnColor.Fprintf(w, "Not enough history for trends (%d data point(s)).\n", r.Points)
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Current", "7d/day", "30d/day", "90d/day", "All-time/day", "Slope/day"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	var milestones [][]string
	for i := range r.Metrics {
		mt := &r.Metrics[i]
		allTime, slope := "-", "-"
		if mt.AllTime != nil {
			allTime = humanize.Comma(mt.AllTime.AvgPerDay)
		}
		if mt.Slope != nil {
			slope = fmt.Sprintf("%.1f", *mt.Slope)
		}
		data = append(data, []string{
			mt.Metric, humanize.Comma(mt.Current),
			avgCell(mt, 7), avgCell(mt, 30), avgCell(mt, 90), allTime, slope,
		})
		for _, m := range mt.Milestones {
			milestones = append(milestones, []string{
				mt.Metric, humanize.Comma(m.Threshold), humanize.Comma(m.Remaining),
				fmt.Sprintf("%d", m.DaysToReach), m.EstimatedDate.String(),
			})
		}
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(milestones) > 0 {
		fmt.Fprintln(w, "\nMilestones")
		mtable := tablewriter.NewWriter(w)
		mtable.Header([]string{"Metric", "Target", "Remaining", "Days", "ETA"})
		if err := mtable.Bulk(milestones); err != nil {
			return err
		}
		if err := mtable.Render(); err != nil {
			return err
		}
	}

	if len(r.MostActive) > 0 {
		fmt.Fprintln(w, "\nMost active projects (30 days)")
		for i, p := range r.MostActive {
			fmt.Fprintf(w, "%d. %s  +%s (total %s)\n", i+1, p.Project, humanize.Comma(p.Gain30d), humanize.Comma(p.Current))
		}
	}
	return nil
}

// printArchive prints archived values with the change since the previous row.
func printArchive(w io.Writer, name string, points []recorder.Point) error {
	if len(points) == 0 {
		warnColor.Fprintf(w, "Nothing archived for %s.\n", name)
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", name, "Change"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for i, p := range points {
		change := "-"
		if i > 0 {
			d := p.Value - points[i-1].Value
			change = humanize.Comma(d)
			if d > 0 {
				change = "+" + change
			}
		}
		data = append(data, []string{p.Date.String(), humanize.Comma(p.Value), change})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
