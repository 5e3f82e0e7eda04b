// Package render turns a snapshot and its trend report into the Markdown
// section embedded in the README.
package render

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"ComputeStats/internal/model"
)

// View is everything the renderer reads. It is never modified.
type View struct {
	GeneratedAt time.Time
	Records     []*model.ProviderRecord
	Snapshot    model.Snapshot
	Report      *model.Report
}

func (v View) record(key string) *model.ProviderRecord {
	for _, r := range v.Records {
		if r != nil && r.Key == key {
			return r
		}
	}
	return nil
}

func comma(n int64) string { return humanize.Comma(n) }

// badgeText escapes text for a shields.io static badge path segment.
func badgeText(s string) string {
	s = strings.ReplaceAll(s, "-", "--")
	s = strings.ReplaceAll(s, "_", "__")
	s = strings.ReplaceAll(s, " ", "_")
	return url.PathEscape(s)
}

func badge(label, value, color, logo string) string {
	return fmt.Sprintf("![%s](https://img.shields.io/badge/%s-%s-%s?style=for-the-badge&logo=%s)",
		label, badgeText(label), badgeText(value), color, logo)
}

// Markdown renders the complete stats section.
func Markdown(v View) string {
	var b strings.Builder

	b.WriteString("## 🧬 Scientific Computing Contributions\n\n")
	b.WriteString("I contribute computing power to distributed research platforms.\n\n")
	b.WriteString(fmt.Sprintf("**🔄 Last Updated:** `%s`\n\n---\n\n", v.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC")))

	anyData := false
	for _, rec := range v.Records {
		if rec == nil {
			continue
		}
		if rec.Status == model.ProviderOK {
			anyData = true
		}
		switch rec.Key {
		case "fah":
			writeFAH(&b, rec)
		case "wcg":
			writeWCG(&b, rec)
		default:
			writeBOINC(&b, rec)
		}
	}

	if anyData {
		writeCombined(&b, v)
	}
	writeTrends(&b, v.Report)

	b.WriteString("### 🔧 About This Dashboard\n\n")
	b.WriteString("Statistics are fetched from public provider APIs once a day and rendered automatically.\n")
	return b.String()
}

func writePlaceholder(b *strings.Builder, title string, rec *model.ProviderRecord) {
	b.WriteString(fmt.Sprintf("### %s\n\n", title))
	if rec.Identity != "" {
		b.WriteString(fmt.Sprintf("**Account:** `%s`  \n", rec.Identity))
	}
	switch rec.Status {
	case model.ProviderNotConfigured:
		b.WriteString("**Status:** ⚙️ Not configured yet\n\n---\n\n")
	default:
		b.WriteString("**Status:** ⏳ Connecting to API, no data yet\n\n---\n\n")
	}
}

func writeFAH(b *strings.Builder, rec *model.ProviderRecord) {
	const title = "💻 Folding@home"
	if rec.Status != model.ProviderOK {
		writePlaceholder(b, title, rec)
		return
	}
	score := rec.Metrics["score"]
	wus := rec.Metrics["wus"]
	rank, hasRank := rec.Metrics["rank"]
	users := rec.Metrics["users"]

	b.WriteString(fmt.Sprintf("### %s\n\n", title))
	b.WriteString(badge("Score", comma(score), "blue", "bitcoin") + "\n")
	b.WriteString(badge("Work Units", comma(wus), "green", "checkmarx") + "\n")
	if hasRank {
		b.WriteString(badge("Rank", "#"+comma(rank), "purple", "rancher") + "\n")
	}
	b.WriteString("\n**My Folding@home Contribution:**\n")
	b.WriteString(fmt.Sprintf("- 🎯 **%s Points** earned through protein folding calculations\n", comma(score)))
	b.WriteString(fmt.Sprintf("- ⚡ **%s Work Units** completed for disease research\n", comma(wus)))
	if hasRank && users > 0 {
		b.WriteString(fmt.Sprintf("- 🏆 **Rank #%s** out of %s contributors\n", comma(rank), comma(users)))
		b.WriteString(fmt.Sprintf("- 📊 **Top %.1f%%** of all Folding@home volunteers\n", Percentile(rank, users)))
	}
	b.WriteString(fmt.Sprintf("\n**Username:** `%s`  \n", rec.Identity))
	b.WriteString(fmt.Sprintf("**Profile:** [View on F@H Stats](https://stats.foldingathome.org/donor/%s)\n\n---\n\n", url.PathEscape(rec.Identity)))
}

// Percentile is the share of volunteers ranked below rank, as in "top X%".
func Percentile(rank, users int64) float64 {
	if users <= 0 {
		return 0
	}
	return 100 - float64(rank)/float64(users)*100
}

// CPUYears converts CPU seconds to years of single-core compute.
func CPUYears(cpuSeconds int64) float64 {
	return float64(cpuSeconds) / 3600 / 8760
}

func formatCPUYears(years float64) string {
	if years < 1 {
		return fmt.Sprintf("%.2f", years)
	}
	return fmt.Sprintf("%.1f", years)
}

func writeWCG(b *strings.Builder, rec *model.ProviderRecord) {
	const title = "🌍 World Community Grid"
	if rec.Status != model.ProviderOK {
		writePlaceholder(b, title, rec)
		return
	}
	cpu := rec.Metrics["cpu_seconds"]
	years := formatCPUYears(CPUYears(cpu))
	hours := float64(cpu) / 3600

	b.WriteString(fmt.Sprintf("### %s\n\n", title))
	b.WriteString(badge("CPU Years", years, "purple", "cpanel") + "\n")
	b.WriteString(badge("Tasks", comma(rec.Metrics["results"]), "red", "dna") + "\n")
	b.WriteString(badge("Points", comma(rec.Metrics["points"]), "green", "ethereum") + "\n")
	b.WriteString("\n**My World Community Grid Contribution:**\n")
	b.WriteString(fmt.Sprintf("- ⚡ **%s CPU-Years** dedicated to medical research\n", years))
	b.WriteString(fmt.Sprintf("- 🧬 **%s research calculations** completed\n", comma(rec.Metrics["results"])))
	b.WriteString(fmt.Sprintf("- ⏱️ **%s+ hours** of processing power donated\n", comma(int64(hours))))
	b.WriteString(fmt.Sprintf("- 📅 **%.0f days** of continuous computing\n", hours/24))
	b.WriteString(fmt.Sprintf("\n_Figures cover the latest %s results returned by the WCG API._\n", comma(rec.Metrics["results"])))
	b.WriteString(fmt.Sprintf("\n**Username:** `%s`  \n", rec.Identity))
	b.WriteString(fmt.Sprintf("**Profile:** [View on WCG](https://www.worldcommunitygrid.org/stat/viewMemberInfo.do?userName=%s)\n\n---\n\n",
		url.QueryEscape(rec.Identity)))
}

func writeBOINC(b *strings.Builder, rec *model.ProviderRecord) {
	title := "🛰️ " + rec.Name
	if rec.Status != model.ProviderOK {
		writePlaceholder(b, title, rec)
		return
	}
	b.WriteString(fmt.Sprintf("### %s\n\n", title))
	b.WriteString(badge("Credit", comma(rec.Metrics["credit"]), "orange", "boinc") + "\n\n")
	b.WriteString(fmt.Sprintf("- 🏅 **%s total credit**\n", comma(rec.Metrics["credit"])))
	b.WriteString(fmt.Sprintf("- 📈 **%s recent average credit** per day\n\n---\n\n", comma(rec.Metrics["expavg_credit"])))
}

func writeCombined(b *strings.Builder, v View) {
	b.WriteString("### 🌟 Combined Impact\n\n")
	if total, ok := v.Snapshot.Lookup(model.Metric(model.MetricTotalCredits)); ok {
		n := 0
		for _, rec := range v.Records {
			if rec != nil && rec.Status == model.ProviderOK && !rec.Windowed {
				n++
			}
		}
		b.WriteString(fmt.Sprintf("**%s credits** across %d platform(s).\n\n", comma(total), n))
	}
	b.WriteString("**Research Areas:** protein folding, infectious disease, cancer research, neurological disorders, astrophysics.\n\n---\n\n")
}

func writeTrends(b *strings.Builder, r *model.Report) {
	b.WriteString("### 📈 Trends\n\n")
	if r == nil {
		b.WriteString("_No history yet._\n\n---\n\n")
		return
	}
	if r.Status == model.StatusInsufficientData {
		b.WriteString(fmt.Sprintf("_Collecting history: %d data point(s) so far, trends appear after the second day._\n\n---\n\n", r.Points))
		return
	}

	if mt := r.Trend(model.MetricTotalCredits); mt != nil {
		b.WriteString("| Window | Gain | Per day |\n|---|---:|---:|\n")
		for _, w := range mt.Windows {
			b.WriteString(fmt.Sprintf("| %d days | %s | %s |\n", w.Days, comma(w.Delta), comma(w.AvgPerDay)))
		}
		if mt.AllTime != nil {
			b.WriteString(fmt.Sprintf("| all time (%d days) | %s | %s |\n", mt.AllTime.Days, comma(mt.AllTime.Delta), comma(mt.AllTime.AvgPerDay)))
		}
		if len(mt.Windows) == 0 && mt.AllTime == nil {
			b.WriteString("| – | – | – |\n")
		}
		b.WriteString("\n")
		if mt.Slope != nil {
			b.WriteString(fmt.Sprintf("Trend line over the last 30 days: **%s credits/day**.\n\n", comma(int64(*mt.Slope))))
		}

		if len(mt.Milestones) > 0 {
			b.WriteString(fmt.Sprintf("#### 🎯 Next Milestones (at %s/day, %s average)\n\n", comma(mt.BestAvg), mt.BestSource))
			b.WriteString("| Milestone | Remaining | Days | ETA |\n|---:|---:|---:|---|\n")
			for _, m := range mt.Milestones {
				b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", comma(m.Threshold), comma(m.Remaining), comma(m.DaysToReach), m.EstimatedDate))
			}
			b.WriteString("\n")
		} else {
			b.WriteString("_No milestone projection: credits are not growing in the measured windows._\n\n")
		}
	}

	if len(r.MostActive) > 0 {
		b.WriteString("#### 🔥 Most Active (30 days)\n\n")
		for i, a := range r.MostActive {
			b.WriteString(fmt.Sprintf("%d. **%s**: +%s (total %s)\n", i+1, a.Project, comma(a.Gain30d), comma(a.Current)))
		}
		b.WriteString("\n")
	}
	b.WriteString("---\n\n")
}
