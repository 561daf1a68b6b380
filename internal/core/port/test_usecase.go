package port

import (
	"context"

	"adtest/internal/core/domain"
)

// TestUseCase is the primary port over saved display tests.
type TestUseCase interface {
	// Save assigns an id, renders the embedded-mode preview document and
	// appends the test to the stored collection. Creatives are copied, so
	// later changes to the draft's slice do not affect the saved test.
	Save(ctx context.Context, draft domain.TestDraft) (*domain.GeneratedTest, error)

	// List returns all saved tests in storage order. A corrupted collection
	// is reported as empty.
	List(ctx context.Context) ([]domain.GeneratedTest, error)

	// Get returns the test with id, or nil when it does not exist.
	Get(ctx context.Context, id string) (*domain.GeneratedTest, error)

	// Delete removes the whole test and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// Preview returns the embedded-mode document stored at save time.
	Preview(ctx context.Context, id string) (*Download, error)

	// RenderHTML re-renders the embedded-mode document as a download named
	// test_<slug>.html.
	RenderHTML(ctx context.Context, id string) (*Download, error)

	// Package builds the ZIP archive (relative-mode HTML plus images). Any
	// creative fetch failure fails the whole call with a *domain.FetchError.
	Package(ctx context.Context, id string) (*Download, error)
}

// Download is a generated artifact ready to be served or written to disk.
type Download struct {
	FileName    string
	ContentType string
	Data        []byte
}
