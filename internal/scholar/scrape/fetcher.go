package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"scholar-fetch/internal/scholar/model"
)

// Browser-like headers; the portals serve block pages to obvious bots. The
// reverse proxy sends the same pair so both paths present one client.
const (
	BrowserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	AcceptHTML       = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8"
)

// Fetcher retrieves one page of a source's listing markup. status is the
// upstream HTTP status; err covers transport-level failure only.
type Fetcher interface {
	FetchPage(ctx context.Context, src model.Source, page int) (body []byte, status int, err error)
}

// PortalFetcher fetches listing pages over HTTP, either straight from the
// portal or through a deployed reverse proxy when proxyBaseURL is set
// (browsers need the proxy for CORS; server-side scrapes usually do not).
type PortalFetcher struct {
	client       *resty.Client
	proxyBaseURL string
}

func NewPortalFetcher(timeout time.Duration, proxyBaseURL string) *PortalFetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", BrowserUserAgent).
		SetHeader("Accept", AcceptHTML).
		SetHeader("Accept-Language", "en-US,en;q=0.9")
	return &PortalFetcher{client: client, proxyBaseURL: proxyBaseURL}
}

func (f *PortalFetcher) FetchPage(ctx context.Context, src model.Source, page int) ([]byte, int, error) {
	url := src.ListingURL(page)
	if f.proxyBaseURL != "" {
		url = fmt.Sprintf("%s/proxy/%s%s?page=%d", f.proxyBaseURL, src.ID, src.ListingPath, page)
	}
	res, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, 0, err
	}
	return res.Body(), res.StatusCode(), nil
}
