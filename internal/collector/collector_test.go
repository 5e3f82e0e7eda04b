package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ComputeStats/internal/model"
)

// mockFetcher returns controllable fixed data.
type mockFetcher struct {
	key    string
	credit int64
	err    error
	delay  time.Duration
}

func (m *mockFetcher) Key() string      { return m.key }
func (m *mockFetcher) Name() string     { return "mock " + m.key }
func (m *mockFetcher) Identity() string { return "tester" }

func (m *mockFetcher) Fetch(ctx context.Context) (*model.ProviderRecord, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	rec := newRecord(m)
	rec.Metrics["credit"] = m.credit
	rec.Credit = m.credit
	rec.Projects[m.key] = m.credit
	return rec, nil
}

func TestCollect_PartialFailure(t *testing.T) {
	c := NewCollector([]Fetcher{
		&mockFetcher{key: "a", credit: 100},
		&mockFetcher{key: "b", err: errors.New("boom")},
		&mockFetcher{key: "c", credit: 50},
	}, []Unconfigured{{Key: "wcg", Name: "World Community Grid", Reason: "member name not set"}}, time.Second)

	records := c.Collect(context.Background())
	require.Len(t, records, 4)
	assert.Equal(t, model.ProviderOK, records[0].Status)
	assert.Equal(t, model.ProviderFailed, records[1].Status)
	assert.Equal(t, "boom", records[1].Err)
	assert.Equal(t, model.ProviderOK, records[2].Status)
	assert.Equal(t, model.ProviderNotConfigured, records[3].Status)
	assert.Equal(t, 2, Reporting(records))
}

func TestCollect_TimeoutDoesNotBlockOthers(t *testing.T) {
	c := NewCollector([]Fetcher{
		&mockFetcher{key: "slow", credit: 1, delay: 5 * time.Second},
		&mockFetcher{key: "fast", credit: 2},
	}, nil, 50*time.Millisecond)

	start := time.Now()
	records := c.Collect(context.Background())
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, model.ProviderFailed, records[0].Status)
	assert.Equal(t, model.ProviderOK, records[1].Status)
}

func TestBuild(t *testing.T) {
	day := model.NewDate(2026, 10, 19)
	records := []*model.ProviderRecord{
		{Key: "fah", Status: model.ProviderOK, Credit: 1000,
			Metrics: map[string]int64{"score": 1000, "wus": 12}, Projects: map[string]int64{"fah": 1000}},
		{Key: "wcg", Status: model.ProviderFailed, Err: "timeout"},
		{Key: "einstein", Status: model.ProviderOK, Credit: 250,
			Metrics: map[string]int64{"credit": 250}, Projects: map[string]int64{"einstein": 250}},
	}

	snap := Build(day, records)
	assert.Equal(t, day, snap.Date)
	assert.Equal(t, int64(1250), snap.Metrics[model.MetricTotalCredits])
	assert.Equal(t, int64(2), snap.Metrics[model.MetricProvidersReporting])
	assert.Equal(t, int64(12), snap.Metrics["fah_wus"])
	_, ok := snap.Metrics["wcg_points"]
	assert.False(t, ok, "failed provider must leave its metrics absent")
	assert.Equal(t, map[string]int64{"fah": 1000, "einstein": 250}, snap.Projects)
}

func TestBuild_WindowedRecordIsNotCounted(t *testing.T) {
	day := model.NewDate(2026, 10, 19)
	records := []*model.ProviderRecord{
		{Key: "fah", Status: model.ProviderOK, Credit: 1000,
			Metrics: map[string]int64{"score": 1000}, Projects: map[string]int64{"fah": 1000}},
		{Key: "wcg", Status: model.ProviderOK, Windowed: true,
			Metrics: map[string]int64{"points": 5000, "results": 250}, Projects: map[string]int64{}},
	}

	snap := Build(day, records)
	assert.Equal(t, int64(1000), snap.Metrics[model.MetricTotalCredits])
	assert.Equal(t, int64(2), snap.Metrics[model.MetricProvidersReporting])
	_, ok := snap.Metrics["wcg_points"]
	assert.False(t, ok)
	assert.Equal(t, map[string]int64{"fah": 1000}, snap.Projects)
}

func TestBuild_OnlyWindowedRecords(t *testing.T) {
	snap := Build(model.NewDate(2026, 10, 19), []*model.ProviderRecord{
		{Key: "wcg", Status: model.ProviderOK, Windowed: true, Metrics: map[string]int64{"points": 5000}},
	})
	_, ok := snap.Metrics[model.MetricTotalCredits]
	assert.False(t, ok)
	assert.Equal(t, int64(1), snap.Metrics[model.MetricProvidersReporting])
}

func TestBuild_NothingReported(t *testing.T) {
	snap := Build(model.NewDate(2026, 10, 19), []*model.ProviderRecord{{Key: "fah", Status: model.ProviderFailed}})
	assert.Empty(t, snap.Metrics)
}

func TestFAHFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/some%20one", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"name":"some one","score":9800000,"wus":321,"rank":12345,"users":250000}`))
	}))
	defer srv.Close()

	f := NewFAHFetcher(srv.URL, "some one", "")
	rec, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(9_800_000), rec.Metrics["score"])
	assert.Equal(t, int64(321), rec.Metrics["wus"])
	assert.Equal(t, int64(12345), rec.Metrics["rank"])
	assert.Equal(t, int64(250000), rec.Metrics["users"])
	assert.Equal(t, int64(9_800_000), rec.Credit)
	assert.Equal(t, int64(9_800_000), rec.Projects["fah"])
}

func TestFAHFetcher_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewFAHFetcher(srv.URL, "ghost", "").Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestFAHFetcher_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := NewFAHFetcher(srv.URL, "x", "").Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fah decode")
}

func TestWCGFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/members/member/results", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("code"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "250", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"results":[
			{"AppName":"OPN1","points":120.4,"CpuTime":3600},
			{"AppName":"MCM1","points":80.2,"CpuTime":7200.5}
		]}`))
	}))
	defer srv.Close()

	rec, err := NewWCGFetcher(srv.URL, "member", "secret", "").Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.Metrics["results"])
	assert.Equal(t, int64(201), rec.Metrics["points"])
	assert.Equal(t, int64(10801), rec.Metrics["cpu_seconds"])
	assert.True(t, rec.Windowed)
	assert.Zero(t, rec.Credit)
	assert.Empty(t, rec.Projects)
}

func TestWCGFetcher_EmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	_, err := NewWCGFetcher(srv.URL, "member", "secret", "").Fetch(context.Background())
	assert.Error(t, err)
}

func TestBOINCFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/show_user.php", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("userid"))
		assert.Equal(t, "xml", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(`<user>
  <id>42</id>
  <name>volunteer</name>
  <total_credit>123456.789</total_credit>
  <expavg_credit>987.6</expavg_credit>
</user>`))
	}))
	defer srv.Close()

	f := NewBOINCFetcher("einstein", "Einstein@Home", srv.URL+"/", "42", "")
	rec, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "einstein", rec.Key)
	assert.Equal(t, int64(123457), rec.Metrics["credit"])
	assert.Equal(t, int64(988), rec.Metrics["expavg_credit"])
	assert.Equal(t, int64(123457), rec.Projects["einstein"])
}

func TestBOINCFetcher_ErrorDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<error><error_num>-136</error_num><error_msg>No such user</error_msg></error>`))
	}))
	defer srv.Close()

	_, err := NewBOINCFetcher("rosetta", "Rosetta@home", srv.URL, "1", "").Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No such user")
}
