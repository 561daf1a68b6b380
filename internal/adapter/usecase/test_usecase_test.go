package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"adtest/internal/adapter/fetch"
	"adtest/internal/adapter/memory"
	"adtest/internal/adapter/sqlite"
	"adtest/internal/core/archive"
	"adtest/internal/core/domain"
	"adtest/internal/core/port"
	"adtest/internal/core/port/mocks"
	"adtest/internal/core/render"
	"adtest/internal/db"
	"adtest/internal/preview"
	"adtest/internal/testutil"
)

const testKey = "display_tests"

var fixedNow = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

func newTestUseCase(kv port.KVStore) *TestUseCase {
	gen := render.New(time.UTC)
	packager := archive.NewPackager(fetch.NewFetcher(time.Second), gen, testutil.Logger())
	u := NewTestUseCase(kv, testKey, gen, packager, testutil.Logger())
	u.now = func() time.Time { return fixedNow }
	return u
}

func sampleDraft(t *testing.T, name string) domain.TestDraft {
	t.Helper()
	return domain.TestDraft{
		TestMeta: domain.TestMeta{Name: name, Timestamp: fixedNow.UnixMilli(), Author: "admin"},
		Creatives: []domain.Creative{
			{
				ID:         "file-1",
				File:       domain.FileMeta{Name: "a.png", Size: 2048, Type: "image/png"},
				Preview:    preview.DataURI("image/png", testutil.PNG(t, 300, 250)),
				Dimensions: &domain.Dimensions{Width: 300, Height: 250},
				Tracking:   domain.Tracking{ClickURL: "https://example.com/click"},
			},
			{
				ID:      "file-2",
				File:    domain.FileMeta{Name: "b.jpg", Size: 1000, Type: "image/jpeg"},
				Preview: preview.DataURI("image/jpeg", testutil.JPEG(t, 4, 4)),
			},
		},
	}
}

func TestSave_AssignsAndStores(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	u := newTestUseCase(kv)

	draft := sampleDraft(t, "Spring Launch")
	saved, err := u.Save(ctx, draft)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(saved.ID, TestIDPrefix))
	assert.Equal(t, 2, saved.CreativeCount)
	assert.Equal(t, draft.TestMeta, saved.TestMeta)
	assert.True(t, strings.HasPrefix(saved.PreviewURL, "data:text/html;charset=utf-8;base64,"))

	raw, err := kv.Get(ctx, testKey)
	require.NoError(t, err)
	var stored []domain.GeneratedTest
	require.NoError(t, json.Unmarshal(raw, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, saved.ID, stored[0].ID)
	assert.Equal(t, draft.Creatives, stored[0].Creatives)
}

func TestSave_CopiesCreatives(t *testing.T) {
	ctx := context.Background()
	u := newTestUseCase(memory.NewKVStore())

	draft := sampleDraft(t, "Copy")
	saved, err := u.Save(ctx, draft)
	require.NoError(t, err)

	draft.Creatives[0].ClickURL = "https://changed.example"
	draft.Creatives[0].Dimensions.Width = 1

	got, err := u.Get(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "https://example.com/click", got.Creatives[0].ClickURL)
	assert.Equal(t, 300, got.Creatives[0].Dimensions.Width)
}

func TestSave_Defaults(t *testing.T) {
	u := newTestUseCase(memory.NewKVStore())

	saved, err := u.Save(context.Background(), domain.TestDraft{TestMeta: domain.TestMeta{Name: "x"}})
	require.NoError(t, err)
	assert.Equal(t, fixedNow.UnixMilli(), saved.Timestamp)
	assert.Equal(t, domain.UnknownAuthor, saved.Author)
	assert.Equal(t, 0, saved.CreativeCount)
}

func TestSave_EmptyName(t *testing.T) {
	u := newTestUseCase(memory.NewKVStore())

	_, err := u.Save(context.Background(), sampleDraft(t, "   "))
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "name", vErr.Field)
}

func TestList_PreservesOrderAndIsolation(t *testing.T) {
	ctx := context.Background()
	u := newTestUseCase(memory.NewKVStore())

	var ids []string
	for _, name := range []string{"A", "B", "C"} {
		saved, err := u.Save(ctx, sampleDraft(t, name))
		require.NoError(t, err)
		ids = append(ids, saved.ID)
	}

	tests, err := u.List(ctx)
	require.NoError(t, err)
	require.Len(t, tests, 3)
	for i, tt := range tests {
		assert.Equal(t, ids[i], tt.ID)
		assert.Equal(t, tt.CreativeCount, len(tt.Creatives))
	}
	assert.NotEqual(t, ids[0], ids[1])
}

func TestList_AbsentKey(t *testing.T) {
	kv := mocks.NewMockKVStore(t)
	kv.EXPECT().Get(mock.Anything, testKey).Return(nil, nil)

	tests, err := newTestUseCase(kv).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tests)
	assert.Empty(t, tests)
}

func TestList_CorruptIsEmpty(t *testing.T) {
	kv := mocks.NewMockKVStore(t)
	kv.EXPECT().Get(mock.Anything, testKey).Return([]byte("{not json"), nil)

	tests, err := newTestUseCase(kv).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tests)
}

func TestList_ReadError(t *testing.T) {
	boom := errors.New("disk gone")
	kv := mocks.NewMockKVStore(t)
	kv.EXPECT().Get(mock.Anything, testKey).Return(nil, boom)

	_, err := newTestUseCase(kv).List(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestSave_WriteError(t *testing.T) {
	boom := errors.New("read-only")
	kv := mocks.NewMockKVStore(t)
	kv.EXPECT().Get(mock.Anything, testKey).Return(nil, nil)
	kv.EXPECT().Put(mock.Anything, testKey, mock.Anything).Return(boom)

	saved, err := newTestUseCase(kv).Save(context.Background(), sampleDraft(t, "x"))
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, saved)
}

func TestGet_Unknown(t *testing.T) {
	u := newTestUseCase(memory.NewKVStore())

	got, err := u.Get(context.Background(), "test-missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	u := newTestUseCase(memory.NewKVStore())

	a, err := u.Save(ctx, sampleDraft(t, "A"))
	require.NoError(t, err)
	b, err := u.Save(ctx, sampleDraft(t, "B"))
	require.NoError(t, err)

	ok, err := u.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	tests, err := u.List(ctx)
	require.NoError(t, err)
	require.Len(t, tests, 1)
	assert.Equal(t, b.ID, tests[0].ID)

	ok, err = u.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete_UnknownDoesNotWrite(t *testing.T) {
	raw, err := json.Marshal([]domain.GeneratedTest{{ID: "test-1"}})
	require.NoError(t, err)

	kv := mocks.NewMockKVStore(t)
	kv.EXPECT().Get(mock.Anything, testKey).Return(raw, nil)

	ok, err := newTestUseCase(kv).Delete(context.Background(), "test-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPreviewAndRenderHTML(t *testing.T) {
	ctx := context.Background()
	u := newTestUseCase(memory.NewKVStore())

	draft := sampleDraft(t, "Spring Launch")
	saved, err := u.Save(ctx, draft)
	require.NoError(t, err)

	want, err := render.New(time.UTC).Render(draft.TestMeta, draft.Creatives, render.Embedded)
	require.NoError(t, err)

	pv, err := u.Preview(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, want, string(pv.Data))

	dl, err := u.RenderHTML(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "test_spring_launch.html", dl.FileName)
	assert.Equal(t, want, string(dl.Data))
}

func TestPackage(t *testing.T) {
	ctx := context.Background()
	u := newTestUseCase(memory.NewKVStore())

	saved, err := u.Save(ctx, sampleDraft(t, "Spring Launch"))
	require.NoError(t, err)

	dl, err := u.Package(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "test_spring_launch.zip", dl.FileName)
	assert.Equal(t, archive.ContentType, dl.ContentType)
	assert.NotEmpty(t, dl.Data)
}

func TestArtifacts_NotFound(t *testing.T) {
	ctx := context.Background()
	u := newTestUseCase(memory.NewKVStore())

	_, err := u.Preview(ctx, "test-x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = u.RenderHTML(ctx, "test-x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = u.Package(ctx, "test-x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStoreRoundTrip(t *testing.T) {
	backends := map[string]func(t *testing.T) port.KVStore{
		"memory": func(*testing.T) port.KVStore { return memory.NewKVStore() },
		"sqlite": func(t *testing.T) port.KVStore {
			conn, err := db.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "adtest.db"))
			require.NoError(t, err)
			t.Cleanup(func() { conn.Close() })
			return sqlite.NewKVStore(conn)
		},
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			u := newTestUseCase(open(t))

			saved, err := u.Save(ctx, sampleDraft(t, "Round Trip"))
			require.NoError(t, err)

			got, err := u.Get(ctx, saved.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, *saved, *got)

			ok, err := u.Delete(ctx, saved.ID)
			require.NoError(t, err)
			require.True(t, ok)

			got, err = u.Get(ctx, saved.ID)
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}
