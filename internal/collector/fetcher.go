package collector

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"ComputeStats/internal/model"
)

// DefaultTimeout applies to each fetch when none is configured.
const DefaultTimeout = 30 * time.Second

// Fetcher retrieves one provider's statistics for a configured identity.
type Fetcher interface {
	Fetch(ctx context.Context) (*model.ProviderRecord, error)
	Key() string
	Name() string
	Identity() string
}

// newHTTPClient builds a client with optional proxy support.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{Transport: transport}
}

func newRecord(f Fetcher) *model.ProviderRecord {
	return &model.ProviderRecord{
		Key:       f.Key(),
		Name:      f.Name(),
		Identity:  f.Identity(),
		Status:    model.ProviderOK,
		Metrics:   map[string]int64{},
		Projects:  map[string]int64{},
		FetchedAt: time.Now(),
	}
}
