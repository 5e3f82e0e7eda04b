package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"ComputeStats/internal/model"
)

// DefaultFAHBaseURL is the public Folding@home stats API.
const DefaultFAHBaseURL = "https://api.foldingathome.org"

// FAHFetcher reads donor totals from the Folding@home API.
type FAHFetcher struct {
	BaseURL  string
	Username string
	Client   *http.Client
}

// NewFAHFetcher creates a Folding@home fetcher.
func NewFAHFetcher(baseURL, username, proxyURL string) *FAHFetcher {
	if baseURL == "" {
		baseURL = DefaultFAHBaseURL
	}
	return &FAHFetcher{BaseURL: baseURL, Username: username, Client: newHTTPClient(proxyURL)}
}

func (f *FAHFetcher) Key() string      { return "fah" }
func (f *FAHFetcher) Name() string     { return "Folding@home" }
func (f *FAHFetcher) Identity() string { return f.Username }

// fahUser is the subset of /user/{name} we use.
type fahUser struct {
	Name  string `json:"name"`
	Score int64  `json:"score"`
	WUs   int64  `json:"wus"`
	Rank  int64  `json:"rank"`
	Users int64  `json:"users"`
}

func (f *FAHFetcher) Fetch(ctx context.Context) (*model.ProviderRecord, error) {
	endpoint := fmt.Sprintf("%s/user/%s", f.BaseURL, url.PathEscape(f.Username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fah fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fah: status %d, body: %s", resp.StatusCode, string(body))
	}

	var user fahUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("fah decode: %w", err)
	}

	rec := newRecord(f)
	rec.Metrics["score"] = user.Score
	rec.Metrics["wus"] = user.WUs
	if user.Rank > 0 {
		rec.Metrics["rank"] = user.Rank
	}
	if user.Users > 0 {
		rec.Metrics["users"] = user.Users
	}
	rec.Credit = user.Score
	rec.Projects[f.Key()] = user.Score
	return rec, nil
}
