package collector

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"

	"ComputeStats/internal/model"
)

// BOINCFetcher reads a user's totals from any BOINC project's show_user.php.
type BOINCFetcher struct {
	ProjectKey  string
	ProjectName string
	BaseURL     string
	UserID      string
	Client      *http.Client
}

// NewBOINCFetcher creates a fetcher for one BOINC project.
func NewBOINCFetcher(key, name, baseURL, userID, proxyURL string) *BOINCFetcher {
	return &BOINCFetcher{
		ProjectKey:  key,
		ProjectName: name,
		BaseURL:     strings.TrimRight(baseURL, "/"),
		UserID:      userID,
		Client:      newHTTPClient(proxyURL),
	}
}

func (f *BOINCFetcher) Key() string      { return f.ProjectKey }
func (f *BOINCFetcher) Name() string     { return f.ProjectName }
func (f *BOINCFetcher) Identity() string { return f.UserID }

// boincUser is the XML document returned by show_user.php?format=xml.
type boincUser struct {
	XMLName      xml.Name `xml:"user"`
	ID           string   `xml:"id"`
	Name         string   `xml:"name"`
	TotalCredit  float64  `xml:"total_credit"`
	ExpAvgCredit float64  `xml:"expavg_credit"`
}

// boincError is returned by BOINC servers for unknown users.
type boincError struct {
	XMLName xml.Name `xml:"error"`
	Msg     string   `xml:"error_msg"`
}

func (f *BOINCFetcher) Fetch(ctx context.Context) (*model.ProviderRecord, error) {
	q := url.Values{}
	q.Set("userid", f.UserID)
	q.Set("format", "xml")
	endpoint := fmt.Sprintf("%s/show_user.php?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("boinc %s fetch: %w", f.ProjectKey, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("boinc %s read body: %w", f.ProjectKey, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("boinc %s: status %d", f.ProjectKey, resp.StatusCode)
	}

	var user boincUser
	if err := xml.Unmarshal(body, &user); err != nil {
		var e boincError
		if xml.Unmarshal(body, &e) == nil && e.Msg != "" {
			return nil, fmt.Errorf("boinc %s: %s", f.ProjectKey, e.Msg)
		}
		return nil, fmt.Errorf("boinc %s decode: %w", f.ProjectKey, err)
	}

	rec := newRecord(f)
	rec.Metrics["credit"] = int64(math.Round(user.TotalCredit))
	rec.Metrics["expavg_credit"] = int64(math.Round(user.ExpAvgCredit))
	rec.Credit = rec.Metrics["credit"]
	rec.Projects[f.ProjectKey] = rec.Credit
	return rec, nil
}
