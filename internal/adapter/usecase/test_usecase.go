package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"adtest/internal/core/archive"
	"adtest/internal/core/domain"
	"adtest/internal/core/port"
	"adtest/internal/core/render"
	"adtest/internal/preview"
)

const (
	// TestIDPrefix prefixes every saved test id.
	TestIDPrefix = "test-"

	previewMIME     = "text/html"
	htmlContentType = "text/html; charset=utf-8"
)

// TestUseCase persists generated tests as a single JSON array stored under
// one key of a port.KVStore, and produces their HTML and ZIP artifacts.
//
// Every mutation is a read-modify-write of the whole collection. Writers in
// this process are serialised; writers in other processes sharing the same
// store are not, and the last write wins.
type TestUseCase struct {
	kv       port.KVStore
	key      string
	gen      *render.Generator
	packager *archive.Packager
	logger   *slog.Logger
	now      func() time.Time

	mu sync.Mutex
}

// NewTestUseCase creates a TestUseCase over kv. key names the slot holding
// the collection.
func NewTestUseCase(kv port.KVStore, key string, gen *render.Generator, packager *archive.Packager, logger *slog.Logger) *TestUseCase {
	return &TestUseCase{
		kv:       kv,
		key:      key,
		gen:      gen,
		packager: packager,
		logger:   logger,
		now:      time.Now,
	}
}

var _ port.TestUseCase = (*TestUseCase)(nil)

// Save stores draft as a new test.
func (u *TestUseCase) Save(ctx context.Context, draft domain.TestDraft) (*domain.GeneratedTest, error) {
	if strings.TrimSpace(draft.Name) == "" {
		return nil, &domain.ValidationError{Field: "name", Message: "Please enter a test name"}
	}

	meta := draft.TestMeta
	if meta.Timestamp == 0 {
		meta.Timestamp = u.now().UnixMilli()
	}
	if meta.Author == "" {
		meta.Author = domain.UnknownAuthor
	}

	creatives := domain.CloneCreatives(draft.Creatives)
	html, err := u.gen.Render(meta, creatives, render.Embedded)
	if err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}

	test := domain.GeneratedTest{
		ID:            TestIDPrefix + uuid.Must(uuid.NewV7()).String(),
		TestMeta:      meta,
		CreativeCount: len(creatives),
		PreviewURL:    preview.DataURI(previewMIME, []byte(html), "charset", "utf-8"),
		Creatives:     creatives,
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	tests, err := u.load(ctx)
	if err != nil {
		return nil, err
	}
	tests = append(tests, test)
	if err = u.store(ctx, tests); err != nil {
		return nil, err
	}

	u.logger.InfoContext(ctx, "test saved",
		slog.String("test_id", test.ID),
		slog.String("name", test.Name),
		slog.Int("creatives", test.CreativeCount))

	return &test, nil
}

// List returns every saved test.
func (u *TestUseCase) List(ctx context.Context) ([]domain.GeneratedTest, error) {
	return u.load(ctx)
}

// Get returns the test with id or nil when absent.
func (u *TestUseCase) Get(ctx context.Context, id string) (*domain.GeneratedTest, error) {
	tests, err := u.load(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(tests, func(t domain.GeneratedTest) bool { return t.ID == id })
	if i < 0 {
		return nil, nil
	}
	return &tests[i], nil
}

// Delete removes the test with id. Deleting an unknown id is not an error
// and leaves the collection untouched.
func (u *TestUseCase) Delete(ctx context.Context, id string) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	tests, err := u.load(ctx)
	if err != nil {
		return false, err
	}
	kept := slices.DeleteFunc(tests, func(t domain.GeneratedTest) bool { return t.ID == id })
	if len(kept) == len(tests) {
		return false, nil
	}
	if err = u.store(ctx, kept); err != nil {
		return false, err
	}

	u.logger.InfoContext(ctx, "test deleted", slog.String("test_id", id))
	return true, nil
}

// Preview decodes the document rendered at save time.
func (u *TestUseCase) Preview(ctx context.Context, id string) (*port.Download, error) {
	test, err := u.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := decodePreview(test.PreviewURL)
	if err != nil {
		return nil, fmt.Errorf("test %s: %w", id, err)
	}
	return &port.Download{
		FileName:    render.HTMLFileName(test.Name),
		ContentType: htmlContentType,
		Data:        data,
	}, nil
}

// RenderHTML regenerates the embedded-mode document.
func (u *TestUseCase) RenderHTML(ctx context.Context, id string) (*port.Download, error) {
	test, err := u.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	html, err := u.gen.Render(test.TestMeta, test.Creatives, render.Embedded)
	if err != nil {
		return nil, err
	}
	return &port.Download{
		FileName:    render.HTMLFileName(test.Name),
		ContentType: htmlContentType,
		Data:        []byte(html),
	}, nil
}

// Package builds the test's ZIP archive.
func (u *TestUseCase) Package(ctx context.Context, id string) (*port.Download, error) {
	test, err := u.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	arc, err := u.packager.Package(ctx, *test)
	if err != nil {
		return nil, err
	}
	return &port.Download{
		FileName:    arc.FileName,
		ContentType: archive.ContentType,
		Data:        arc.Data,
	}, nil
}

func (u *TestUseCase) mustGet(ctx context.Context, id string) (*domain.GeneratedTest, error) {
	test, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if test == nil {
		return nil, fmt.Errorf("test %s: %w", id, domain.ErrNotFound)
	}
	return test, nil
}

// load reads the collection. An absent key is an empty collection; an
// unparseable one is logged and also treated as empty.
func (u *TestUseCase) load(ctx context.Context) ([]domain.GeneratedTest, error) {
	raw, err := u.kv.Get(ctx, u.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u.key, err)
	}
	if raw == nil {
		return []domain.GeneratedTest{}, nil
	}

	var tests []domain.GeneratedTest
	if err = json.Unmarshal(raw, &tests); err != nil {
		u.logger.WarnContext(ctx, "stored tests unreadable, treating as empty",
			slog.String("key", u.key),
			slog.Any("error", errors.Join(domain.ErrStorageCorrupt, err)))
		return []domain.GeneratedTest{}, nil
	}
	if tests == nil {
		tests = []domain.GeneratedTest{}
	}
	return tests, nil
}

func (u *TestUseCase) store(ctx context.Context, tests []domain.GeneratedTest) error {
	raw, err := json.Marshal(tests)
	if err != nil {
		return fmt.Errorf("encode tests: %w", err)
	}
	if err = u.kv.Put(ctx, u.key, raw); err != nil {
		return fmt.Errorf("write %s: %w", u.key, err)
	}
	return nil
}

func decodePreview(uri string) ([]byte, error) {
	data, err := preview.DecodeDataURI(uri)
	if err != nil {
		return nil, errors.Join(domain.ErrStorageCorrupt, err)
	}
	return data, nil
}
