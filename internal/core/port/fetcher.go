package port

import "context"

// Fetcher retrieves the binary payload behind a creative's preview reference.
type Fetcher interface {
	// Fetch resolves ref (a data URI or an http(s) URL) to its bytes.
	Fetch(ctx context.Context, ref string) ([]byte, error)
}
