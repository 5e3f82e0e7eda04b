package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"

	"ComputeStats/internal/model"
)

// DefaultWCGBaseURL is the World Community Grid site.
const DefaultWCGBaseURL = "https://www.worldcommunitygrid.org"

// wcgResultLimit is the page size requested from the results API.
const wcgResultLimit = 250

// WCGFetcher sums recent results from the World Community Grid member API.
// The results endpoint is paged, so the sums cover at most wcgResultLimit
// results and are reported as windowed figures.
type WCGFetcher struct {
	BaseURL          string
	MemberName       string
	VerificationCode string
	Client           *http.Client
}

// NewWCGFetcher creates a World Community Grid fetcher.
func NewWCGFetcher(baseURL, memberName, verificationCode, proxyURL string) *WCGFetcher {
	if baseURL == "" {
		baseURL = DefaultWCGBaseURL
	}
	return &WCGFetcher{
		BaseURL:          baseURL,
		MemberName:       memberName,
		VerificationCode: verificationCode,
		Client:           newHTTPClient(proxyURL),
	}
}

func (f *WCGFetcher) Key() string      { return "wcg" }
func (f *WCGFetcher) Name() string     { return "World Community Grid" }
func (f *WCGFetcher) Identity() string { return f.MemberName }

type wcgResults struct {
	Results []struct {
		AppName string  `json:"AppName"`
		Points  float64 `json:"points"`
		CPUTime float64 `json:"CpuTime"`
	} `json:"results"`
}

func (f *WCGFetcher) Fetch(ctx context.Context) (*model.ProviderRecord, error) {
	q := url.Values{}
	q.Set("code", f.VerificationCode)
	q.Set("format", "json")
	q.Set("limit", fmt.Sprint(wcgResultLimit))
	endpoint := fmt.Sprintf("%s/api/members/%s/results?%s", f.BaseURL, url.PathEscape(f.MemberName), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wcg fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("wcg: status %d, body: %s", resp.StatusCode, string(body))
	}

	var data wcgResults
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("wcg decode: %w", err)
	}
	if len(data.Results) == 0 {
		return nil, fmt.Errorf("wcg: no results returned")
	}

	var points, cpu float64
	for _, r := range data.Results {
		points += r.Points
		cpu += r.CPUTime
	}

	rec := newRecord(f)
	rec.Metrics["results"] = int64(len(data.Results))
	rec.Metrics["points"] = int64(math.Round(points))
	rec.Metrics["cpu_seconds"] = int64(math.Round(cpu))
	rec.Windowed = true
	return rec, nil
}
