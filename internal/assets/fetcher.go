package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
)

// MaxDownloadBytes matches the largest attachment discord accepts without nitro.
const MaxDownloadBytes = 25 * 1024 * 1024

var ErrTooLarge = errors.New("download exceeds size limit")

// Fetcher downloads generated images and user supplied image URLs.
type Fetcher struct {
	httpClient *resty.Client
	maxBytes   int64
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		httpClient: resty.New().
			SetHeader("User-Agent", "dallebot/1.0").
			SetTimeout(timeout),
		maxBytes: MaxDownloadBytes,
	}
}

// Fetch returns the body of url. Any non 2xx response, or a body larger than
// MaxDownloadBytes, is an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.httpClient.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("download %s: unexpected status %d", url, resp.StatusCode())
	}
	data, err := io.ReadAll(io.LimitReader(body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("download %s: %w of %d bytes", url, ErrTooLarge, f.maxBytes)
	}
	return data, nil
}
