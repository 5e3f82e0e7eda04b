package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ComputeStats/internal/model"
	"ComputeStats/internal/trend"
)

var today = model.NewDate(2026, 10, 19)

func snapAt(daysAgo int, credits int64) model.Snapshot {
	s := model.NewSnapshot(today.AddDays(-daysAgo))
	s.Metrics[model.MetricTotalCredits] = credits
	return s
}

func assertStrictlyAscending(t *testing.T, series model.Series) {
	t.Helper()
	for i := 1; i < len(series); i++ {
		assert.True(t, series[i-1].Date.Before(series[i].Date),
			"entry %d (%s) not before entry %d (%s)", i-1, series[i-1].Date, i, series[i].Date)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	st := NewStore(filepath.Join(t.TempDir(), "nope.json"), 0)
	f := st.Load()
	assert.Empty(t, f.Series)
	assert.Nil(t, f.LastReport)
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"series": [ {"date": "oops"`), 0o644))

	f := NewStore(path, 0).Load()
	assert.Empty(t, f.Series)
}

func TestLoad_NormalizesUnorderedInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	raw := `{"series":[
		{"date":"2026-10-18","metrics":{"total_credits":20}},
		{"date":"2026-10-10","metrics":{"total_credits":10}},
		{"date":"2026-10-18","metrics":{"total_credits":25}}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	f := NewStore(path, 0).Load()
	require.Len(t, f.Series, 2)
	assertStrictlyAscending(t, f.Series)
	assert.Equal(t, int64(25), f.Series[1].Metrics[model.MetricTotalCredits])
}

func TestAppendOrReplace_ReplacesSameDate(t *testing.T) {
	st := NewStore("unused", 365)
	series := model.Series{snapAt(10, 100), snapAt(5, 150), snapAt(0, 200)}

	replacement := snapAt(5, 999)
	out := st.AppendOrReplace(series, replacement, today)

	require.Len(t, out, len(series))
	assert.Equal(t, replacement, out[1])
	assert.Equal(t, int64(150), series[1].Metrics[model.MetricTotalCredits], "input must not be mutated")
}

func TestAppendOrReplace_InsertsAndSorts(t *testing.T) {
	st := NewStore("unused", 365)
	series := model.Series{snapAt(10, 100), snapAt(1, 150)}

	out := st.AppendOrReplace(series, snapAt(4, 120), today)
	require.Len(t, out, 3)
	assertStrictlyAscending(t, out)
	assert.Equal(t, int64(120), out[1].Metrics[model.MetricTotalCredits])
}

func TestAppendOrReplace_TrimsRetentionWindow(t *testing.T) {
	st := NewStore("unused", 30)
	series := model.Series{snapAt(45, 1), snapAt(31, 2), snapAt(30, 3), snapAt(2, 4)}

	out := st.AppendOrReplace(series, snapAt(0, 5), today)
	cutoff := today.AddDays(-30)
	for _, e := range out {
		assert.False(t, e.Date.Before(cutoff), "entry %s older than cutoff %s", e.Date, cutoff)
	}
	assert.Len(t, out, 3)
	assertStrictlyAscending(t, out)
}

func TestAppendOrReplace_RepairsDuplicateInput(t *testing.T) {
	st := NewStore("unused", 365)
	series := model.Series{snapAt(3, 30), snapAt(7, 10), snapAt(3, 35)}

	out := st.AppendOrReplace(series, snapAt(0, 50), today)
	require.Len(t, out, 3)
	assertStrictlyAscending(t, out)
	assert.Equal(t, int64(35), out[1].Metrics[model.MetricTotalCredits])
}

func TestSaveLoad_RoundTripIsStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "history.json")
	st := NewStore(path, 365)

	s := snapAt(0, 250)
	s.Projects["fah"] = 200
	slope := 12.5
	f := File{
		Series: model.Series{snapAt(10, 100), s},
		LastReport: &model.Report{
			Status: model.StatusOK,
			Today:  today,
			Points: 2,
			Metrics: []model.MetricTrend{{
				Metric:  model.MetricTotalCredits,
				Current: 250,
				Windows: []model.WindowStat{{Days: 7, Delta: 150, AvgPerDay: 21}},
				Slope:   &slope,
			}},
		},
	}
	require.NoError(t, st.Save(f))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, st.Save(st.Load()))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))

	loaded := st.Load()
	require.Len(t, loaded.Series, 2)
	assert.Equal(t, int64(200), loaded.Series[1].Projects["fah"])
	assert.Equal(t, today, loaded.LastReport.Today)
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(filepath.Join(dir, "history.json"), 365)
	require.NoError(t, st.Save(File{Series: model.Series{snapAt(0, 1)}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "history.json", entries[0].Name())
}

func TestSave_FailureKeepsPreviousCopy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.json")
	st := NewStore(path, 365)
	require.NoError(t, st.Save(File{Series: model.Series{snapAt(0, 1)}}))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// Using the existing file as a parent directory makes the write fail.
	bad := NewStore(filepath.Join(path, "nested.json"), 365)
	assert.Error(t, bad.Save(File{Series: model.Series{snapAt(0, 2)}}))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSaveLoad_FarMilestoneKeepsSeries(t *testing.T) {
	var series model.Series
	for i := 40; i >= 0; i-- {
		series = append(series, snapAt(i, int64(10_000+100*(40-i))))
	}
	current := series[len(series)-1]
	engine := trend.NewEngine(map[string][]int64{model.MetricTotalCredits: {1_000_000, 1_000_000_000}})
	report := engine.Evaluate(series, current, today)

	mt := report.Trend(model.MetricTotalCredits)
	require.NotNil(t, mt)
	require.Len(t, mt.Milestones, 1, "a threshold tens of millennia away is not projected")
	assert.EqualValues(t, 1_000_000, mt.Milestones[0].Threshold)

	st := NewStore(filepath.Join(t.TempDir(), "history.json"), 365)
	require.NoError(t, st.Save(File{Series: series, LastReport: report}))

	loaded := st.Load()
	assert.Len(t, loaded.Series, 41)
	require.NotNil(t, loaded.LastReport)
	assert.Equal(t, model.StatusOK, loaded.LastReport.Status)
}

func TestLoad_WideYearInReportIsReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	body := `{"series":[{"date":"2026-10-18","metrics":{"total_credits":1}},{"date":"2026-10-19","metrics":{"total_credits":2}}],
"last_report":{"status":"ok","today":"2026-10-19","points":2,"metrics":[{"metric":"total_credits","current":2,
"milestones":[{"threshold":1000000000,"remaining":999999998,"days_to_reach":9999999,"estimated_date":"29405-06-27"}]}]}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	f := NewStore(path, 365).Load()
	assert.Len(t, f.Series, 2)
	require.NotNil(t, f.LastReport)
	assert.Equal(t, "29405-06-27", f.LastReport.Metrics[0].Milestones[0].EstimatedDate.String())
}

func TestLoad_UnreadableReportKeepsSeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	body := `{"series":[{"date":"2026-10-19","metrics":{"total_credits":2}}],"last_report":{"today":"not a date"}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	f := NewStore(path, 365).Load()
	assert.Len(t, f.Series, 1)
	assert.Nil(t, f.LastReport)
}
