package port

import (
	"context"

	"adtest/internal/core/domain"
	"adtest/internal/core/ingest"
)

// DraftUseCase manages the in-memory working sets users author before saving
// a test. Each creative in a draft owns a preview handle that is released
// when the creative is removed, the draft is discarded, or the draft is saved.
type DraftUseCase interface {
	// Create starts an empty draft. An empty name defaults to "Test <date>".
	Create(ctx context.Context, name string, session *domain.Session) (*domain.Draft, error)

	// Get returns a snapshot of the draft, or nil when it does not exist.
	Get(ctx context.Context, id string) (*domain.Draft, error)

	// Rename changes the draft's test name.
	Rename(ctx context.Context, id, name string) (*domain.Draft, error)

	// AddFiles admits and ingests files, appending accepted ones in order.
	AddFiles(ctx context.Context, id string, files []ingest.RawFile) (*AddFilesResult, error)

	// UpdateTracking changes the tracking slots of one creative. Nil fields
	// are left untouched.
	UpdateTracking(ctx context.Context, id, creativeID string, upd TrackingUpdate) (*domain.Creative, error)

	// ApplyGlobalTracking sets the same tracking URLs on every creative.
	ApplyGlobalTracking(ctx context.Context, id string, tracking domain.Tracking) (*domain.Draft, error)

	// RemoveCreative drops a creative and releases its preview.
	RemoveCreative(ctx context.Context, id, creativeID string) error

	// Save validates the draft, stores it as a test and disposes the draft.
	// On failure the draft is left intact.
	Save(ctx context.Context, id string) (*domain.GeneratedTest, error)

	// Discard drops the draft and releases all its previews.
	Discard(ctx context.Context, id string) error
}

// TrackingUpdate is a partial update of a creative's tracking slots.
type TrackingUpdate struct {
	ClickURL       *string `json:"clickUrl,omitempty"`
	ImpressionURL1 *string `json:"impressionUrl1,omitempty"`
	ImpressionURL2 *string `json:"impressionUrl2,omitempty"`
}

// Rejection reports a file refused by the admission policy.
type Rejection struct {
	Name    string        `json:"name"`
	Reason  ingest.Reason `json:"reason"`
	Message string        `json:"message"`
}

// AddFilesResult lists the creatives created from an upload and the files
// that were refused.
type AddFilesResult struct {
	Added    []domain.Creative `json:"added"`
	Rejected []Rejection       `json:"rejected"`
}
