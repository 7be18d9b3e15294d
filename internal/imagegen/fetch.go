package imagegen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Shaharyar2310/silkif.y/internal/domain"
)

const defaultMaxFetchBytes = 32 << 20

// Fetcher downloads image bytes over HTTP. It never retries.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// FetcherOptions configures NewFetcher.
type FetcherOptions struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	MaxBytes   int64
}

func NewFetcher(opts FetcherOptions) *Fetcher {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxFetchBytes
	}
	return &Fetcher{client: client, maxBytes: maxBytes}
}

// Fetch returns the body and Content-Type of url. Non-2xx answers and
// transport failures come back as *domain.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", &domain.FetchError{URL: url, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", &domain.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, "", &domain.FetchError{URL: url, StatusCode: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, "", &domain.FetchError{URL: url, Err: err}
	}
	if int64(len(data)) > f.maxBytes {
		return nil, "", &domain.FetchError{URL: url, Err: fmt.Errorf("body exceeds %d bytes", f.maxBytes)}
	}
	return data, strings.TrimSpace(resp.Header.Get("Content-Type")), nil
}
