package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"adtest/internal/core/domain"
	"adtest/internal/core/ingest"
	"adtest/internal/core/port"
	"adtest/internal/preview"
)

// DraftIDPrefix prefixes every draft id.
const DraftIDPrefix = "draft-"

type draftState struct {
	draft   domain.Draft
	handles map[string]*preview.Handle
}

// DraftUseCase keeps drafts in process memory. Drafts are not persisted and
// are lost on restart.
type DraftUseCase struct {
	ingester *ingest.Ingester
	policy   ingest.Policy
	tests    port.TestUseCase
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.Mutex
	drafts map[string]*draftState
}

// NewDraftUseCase creates a DraftUseCase saving through tests.
func NewDraftUseCase(ingester *ingest.Ingester, policy ingest.Policy, tests port.TestUseCase, logger *slog.Logger) *DraftUseCase {
	return &DraftUseCase{
		ingester: ingester,
		policy:   policy,
		tests:    tests,
		logger:   logger,
		now:      time.Now,
		drafts:   make(map[string]*draftState),
	}
}

var _ port.DraftUseCase = (*DraftUseCase)(nil)

// DefaultTestName is the name proposed for a new draft.
func DefaultTestName(now time.Time) string {
	return fmt.Sprintf("Test %d/%d/%d", int(now.Month()), now.Day(), now.Year())
}

// Create opens an empty draft owned by session. A blank name is replaced by
// DefaultTestName.
func (u *DraftUseCase) Create(ctx context.Context, name string, session *domain.Session) (*domain.Draft, error) {
	now := u.now()
	if strings.TrimSpace(name) == "" {
		name = DefaultTestName(now)
	}
	st := &draftState{
		draft: domain.Draft{
			ID:        DraftIDPrefix + uuid.Must(uuid.NewV7()).String(),
			Name:      name,
			Author:    session.Author(),
			CreatedAt: now.UTC(),
			Creatives: []domain.Creative{},
		},
		handles: make(map[string]*preview.Handle),
	}

	u.mu.Lock()
	u.drafts[st.draft.ID] = st
	u.mu.Unlock()

	u.logger.DebugContext(ctx, "draft created", slog.String("draft_id", st.draft.ID))
	return snapshot(st), nil
}

// Get returns a snapshot of the draft, or nil when no draft has that id.
func (u *DraftUseCase) Get(_ context.Context, id string) (*domain.Draft, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	st, ok := u.drafts[id]
	if !ok {
		return nil, nil
	}
	return snapshot(st), nil
}

// Rename sets the draft's test name.
func (u *DraftUseCase) Rename(_ context.Context, id, name string) (*domain.Draft, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	st, err := u.lookup(id)
	if err != nil {
		return nil, err
	}
	st.draft.Name = name
	return snapshot(st), nil
}

// AddFiles runs admission on every file, ingests the accepted ones outside
// the workspace lock and appends them in upload order.
func (u *DraftUseCase) AddFiles(ctx context.Context, id string, files []ingest.RawFile) (*port.AddFilesResult, error) {
	u.mu.Lock()
	_, ok := u.drafts[id]
	u.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", id, domain.ErrNotFound)
	}

	res := &port.AddFilesResult{Added: []domain.Creative{}, Rejected: []port.Rejection{}}
	accepted := make([]ingest.RawFile, 0, len(files))
	for i := range files {
		f := files[i]
		if err := u.policy.Admit(&f); err != nil {
			var admErr *ingest.AdmissionError
			if !errors.As(err, &admErr) {
				return nil, err
			}
			res.Rejected = append(res.Rejected, port.Rejection{
				Name:    admErr.Name,
				Reason:  admErr.Reason,
				Message: admErr.Error(),
			})
			continue
		}
		accepted = append(accepted, f)
	}

	results := u.ingester.Ingest(ctx, accepted)

	u.mu.Lock()
	defer u.mu.Unlock()

	st, ok := u.drafts[id]
	if !ok {
		preview.ReleaseAll(ingest.Handles(results))
		return nil, fmt.Errorf("draft %s: %w", id, domain.ErrNotFound)
	}
	for _, r := range results {
		st.draft.Creatives = append(st.draft.Creatives, r.Creative)
		st.handles[r.Creative.ID] = r.Preview
		res.Added = append(res.Added, r.Creative.Clone())
	}

	u.logger.InfoContext(ctx, "creatives added",
		slog.String("draft_id", id),
		slog.Int("added", len(res.Added)),
		slog.Int("rejected", len(res.Rejected)))
	return res, nil
}

// UpdateTracking applies upd to a single creative of the draft.
func (u *DraftUseCase) UpdateTracking(_ context.Context, id, creativeID string, upd port.TrackingUpdate) (*domain.Creative, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	st, err := u.lookup(id)
	if err != nil {
		return nil, err
	}
	i := st.indexOf(creativeID)
	if i < 0 {
		return nil, fmt.Errorf("creative %s: %w", creativeID, domain.ErrNotFound)
	}

	t := &st.draft.Creatives[i].Tracking
	if upd.ClickURL != nil {
		t.ClickURL = *upd.ClickURL
	}
	if upd.ImpressionURL1 != nil {
		t.ImpressionURL1 = *upd.ImpressionURL1
	}
	if upd.ImpressionURL2 != nil {
		t.ImpressionURL2 = *upd.ImpressionURL2
	}
	c := st.draft.Creatives[i].Clone()
	return &c, nil
}

// ApplyGlobalTracking overwrites the tracking of every creative, including
// slots set individually before.
func (u *DraftUseCase) ApplyGlobalTracking(_ context.Context, id string, tracking domain.Tracking) (*domain.Draft, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	st, err := u.lookup(id)
	if err != nil {
		return nil, err
	}
	for i := range st.draft.Creatives {
		st.draft.Creatives[i].Tracking = tracking
	}
	return snapshot(st), nil
}

// RemoveCreative drops a creative from the draft and releases its preview.
func (u *DraftUseCase) RemoveCreative(ctx context.Context, id, creativeID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	st, err := u.lookup(id)
	if err != nil {
		return err
	}
	i := st.indexOf(creativeID)
	if i < 0 {
		return fmt.Errorf("creative %s: %w", creativeID, domain.ErrNotFound)
	}
	st.draft.Creatives = slices.Delete(st.draft.Creatives, i, i+1)
	if h, ok := st.handles[creativeID]; ok {
		if err = h.Release(); err != nil {
			u.logger.WarnContext(ctx, "preview release failed",
				slog.String("creative_id", creativeID), slog.Any("error", err))
		}
		delete(st.handles, creativeID)
	}
	return nil
}

// Save validates the draft and hands it to the test store. The draft and its
// previews are disposed only after the store accepted the test.
func (u *DraftUseCase) Save(ctx context.Context, id string) (*domain.GeneratedTest, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	st, err := u.lookup(id)
	if err != nil {
		return nil, err
	}
	if err = validateDraft(st.draft); err != nil {
		return nil, err
	}

	test, err := u.tests.Save(ctx, domain.TestDraft{
		TestMeta: domain.TestMeta{
			Name:      strings.TrimSpace(st.draft.Name),
			Timestamp: u.now().UnixMilli(),
			Author:    st.draft.Author,
		},
		Creatives: st.draft.Creatives,
	})
	if err != nil {
		return nil, err
	}

	u.dispose(id, st)
	return test, nil
}

// Discard drops the draft and releases every preview it holds.
func (u *DraftUseCase) Discard(ctx context.Context, id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	st, err := u.lookup(id)
	if err != nil {
		return err
	}
	u.dispose(id, st)
	u.logger.DebugContext(ctx, "draft discarded", slog.String("draft_id", id))
	return nil
}

// Close discards every remaining draft.
func (u *DraftUseCase) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()

	for id, st := range u.drafts {
		u.dispose(id, st)
	}
}

// Len reports the number of open drafts.
func (u *DraftUseCase) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.drafts)
}

func (u *DraftUseCase) lookup(id string) (*draftState, error) {
	st, ok := u.drafts[id]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", id, domain.ErrNotFound)
	}
	return st, nil
}

// dispose must be called with u.mu held.
func (u *DraftUseCase) dispose(id string, st *draftState) {
	for _, h := range st.handles {
		_ = h.Release()
	}
	clear(st.handles)
	delete(u.drafts, id)
}

func (st *draftState) indexOf(creativeID string) int {
	return slices.IndexFunc(st.draft.Creatives, func(c domain.Creative) bool { return c.ID == creativeID })
}

func snapshot(st *draftState) *domain.Draft {
	d := st.draft
	d.Creatives = domain.CloneCreatives(st.draft.Creatives)
	return &d
}

func validateDraft(d domain.Draft) error {
	if strings.TrimSpace(d.Name) == "" {
		return &domain.ValidationError{Field: "name", Message: "Please enter a test name"}
	}
	if len(d.Creatives) == 0 {
		return &domain.ValidationError{Field: "creatives", Message: "Please upload at least one creative file"}
	}
	for _, c := range d.Creatives {
		checks := []struct {
			field, label, value string
		}{
			{"clickUrl", "Click URL", c.ClickURL},
			{"impressionUrl1", "Impression URL 1", c.ImpressionURL1},
			{"impressionUrl2", "Impression URL 2", c.ImpressionURL2},
		}
		for _, chk := range checks {
			if chk.value != "" && !strings.HasPrefix(chk.value, "http") {
				return &domain.ValidationError{
					Field:   chk.field,
					Message: fmt.Sprintf("Invalid %s for %s", chk.label, c.File.Name),
				}
			}
		}
	}
	return nil
}
