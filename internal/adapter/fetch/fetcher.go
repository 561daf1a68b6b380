package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"adtest/internal/preview"
)

// ErrUnsupportedRef is returned for references that are neither data URIs
// nor http(s) URLs.
var ErrUnsupportedRef = errors.New("unsupported preview reference")

// maxBody caps remote payloads well above the admission ceiling.
const maxBody = 64 << 20

// Fetcher implements port.Fetcher. Data URIs are decoded in place; http and
// https URLs are downloaded with the configured client.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher whose remote requests time out after timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// NewFetcherWithClient returns a Fetcher using client for remote references.
func NewFetcherWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch resolves ref to its binary payload.
func (f *Fetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return preview.DecodeDataURI(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return f.get(ctx, ref)
	default:
		return nil, fmt.Errorf("%w: %.32q", ErrUnsupportedRef, ref)
	}
}

func (f *Fetcher) get(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: unexpected status %s", ref, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBody))
}
