package httpadapter

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adtest/internal/adapter/fetch"
	"adtest/internal/adapter/memory"
	"adtest/internal/adapter/usecase"
	"adtest/internal/config/configs"
	"adtest/internal/core/archive"
	"adtest/internal/core/domain"
	"adtest/internal/core/ingest"
	"adtest/internal/core/port"
	"adtest/internal/core/render"
	"adtest/internal/preview"
	"adtest/internal/session"
	"adtest/internal/testutil"
)

type apiFixture struct {
	srv      *httptest.Server
	client   *http.Client
	previews *preview.Registry
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	logger := testutil.Logger()
	previews := preview.NewRegistry()
	gen := render.New(time.UTC)
	packager := archive.NewPackager(fetch.NewFetcher(time.Second), gen, logger)
	tests := usecase.NewTestUseCase(memory.NewKVStore(), "display_tests", gen, packager, logger)
	drafts := usecase.NewDraftUseCase(ingest.New(previews, logger), ingest.Policy{}, tests, logger)

	h := NewHandler(Deps{
		Tests:    tests,
		Drafts:   drafts,
		Sessions: session.NewManager(configs.Auth{Username: "admin", Password: "admin123", Role: "admin", SessionTTL: time.Hour}),
		Previews: previews,
	}, logger)

	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &apiFixture{srv: srv, client: &http.Client{Jar: jar}, previews: previews}
}

func (a *apiFixture) do(t *testing.T, method, path, contentType string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, a.srv.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := a.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *apiFixture) doJSON(t *testing.T, method, path string, v any) *http.Response {
	t.Helper()
	var body io.Reader
	if v != nil {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return a.do(t, method, path, "application/json", body)
}

func (a *apiFixture) login(t *testing.T) {
	t.Helper()
	resp := a.doJSON(t, http.MethodPost, "/api/v1/session", loginRequest{Username: "admin", Password: "admin123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func (a *apiFixture) upload(t *testing.T, draftID string, files ...ingest.RawFile) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="files"; filename="`+f.Name+`"`)
		hdr.Set("Content-Type", f.Type)
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(f.Data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return a.do(t, http.MethodPost, "/api/v1/drafts/"+draftID+"/creatives", mw.FormDataContentType(), &buf)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	a := newAPI(t)

	resp := a.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(0), body["previews"])
}

func TestSession(t *testing.T) {
	a := newAPI(t)

	resp := a.doJSON(t, http.MethodPost, "/api/v1/session", loginRequest{Username: "admin", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/v1/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	a.login(t)
	resp = a.do(t, http.MethodGet, "/api/v1/session", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "admin", decode[domain.Session](t, resp).Username)

	resp = a.do(t, http.MethodDelete, "/api/v1/session", "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = a.do(t, http.MethodGet, "/api/v1/tests", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	a := newAPI(t)

	for _, path := range []string{"/api/v1/tests", "/api/v1/tests/test-1/zip", "/api/v1/drafts/draft-1"} {
		resp := a.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestDraftToDownloads(t *testing.T) {
	a := newAPI(t)
	a.login(t)

	resp := a.doJSON(t, http.MethodPost, "/api/v1/drafts", draftNameRequest{Name: "Spring Launch"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	draft := decode[domain.Draft](t, resp)
	assert.Equal(t, "admin", draft.Author)

	resp = a.upload(t, draft.ID,
		ingest.RawFile{Name: "a.png", Type: "image/png", Data: testutil.PNG(t, 300, 250)},
		ingest.RawFile{Name: "notes.txt", Type: "text/plain", Data: []byte("hi")},
		ingest.RawFile{Name: "b.gif", Type: "image/gif", Data: testutil.GIF(t, 728, 90)},
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	added := decode[port.AddFilesResult](t, resp)
	require.Len(t, added.Added, 2)
	require.Len(t, added.Rejected, 1)
	assert.Equal(t, 2, a.previews.Live())

	resp = a.doJSON(t, http.MethodPut, "/api/v1/drafts/"+draft.ID+"/tracking",
		domain.Tracking{ClickURL: "https://example.com/click"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	imp := "https://example.com/imp"
	resp = a.doJSON(t, http.MethodPatch, "/api/v1/drafts/"+draft.ID+"/creatives/"+added.Added[1].ID,
		port.TrackingUpdate{ImpressionURL1: &imp})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[domain.Creative](t, resp)
	assert.Equal(t, "https://example.com/click", updated.ClickURL)
	assert.Equal(t, imp, updated.ImpressionURL1)

	resp = a.do(t, http.MethodPost, "/api/v1/drafts/"+draft.ID+"/save", "", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	saved := decode[domain.GeneratedTest](t, resp)
	assert.Equal(t, 2, saved.CreativeCount)
	assert.Equal(t, 0, a.previews.Live())

	resp = a.do(t, http.MethodGet, "/api/v1/drafts/"+draft.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/v1/tests", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]domain.GeneratedTest](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)

	resp = a.do(t, http.MethodGet, "/api/v1/tests/"+saved.ID+"/preview", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "sandbox allow-scripts", resp.Header.Get("Content-Security-Policy"))
	previewDoc, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(previewDoc), "<h1>Display Test - Spring Launch</h1>")

	resp = a.do(t, http.MethodGet, "/api/v1/tests/"+saved.ID+"/html", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename=test_spring_launch.html`, resp.Header.Get("Content-Disposition"))

	resp = a.do(t, http.MethodGet, "/api/v1/tests/"+saved.ID+"/zip", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, archive.ContentType, resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"index.html", "images/", "images/creative-1.png", "images/creative-2.gif"}, names)

	resp = a.do(t, http.MethodDelete, "/api/v1/tests/"+saved.ID, "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = a.do(t, http.MethodDelete, "/api/v1/tests/"+saved.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSaveValidationError(t *testing.T) {
	a := newAPI(t)
	a.login(t)

	resp := a.do(t, http.MethodPost, "/api/v1/drafts", "", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	draft := decode[domain.Draft](t, resp)
	assert.True(t, strings.HasPrefix(draft.Name, "Test "))

	resp = a.do(t, http.MethodPost, "/api/v1/drafts/"+draft.ID+"/save", "", nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[errorResponse](t, resp)
	assert.Equal(t, "creatives", body.Field)
	assert.Equal(t, "Please upload at least one creative file", body.Error)

	resp = a.do(t, http.MethodDelete, "/api/v1/drafts/"+draft.ID, "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestUploadWithoutFiles(t *testing.T) {
	a := newAPI(t)
	a.login(t)

	resp := a.do(t, http.MethodPost, "/api/v1/drafts", "", nil)
	draft := decode[domain.Draft](t, resp)

	resp = a.upload(t, draft.ID)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = a.upload(t, "draft-missing", ingest.RawFile{Name: "a.png", Type: "image/png", Data: testutil.PNG(t, 1, 1)})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTestNotFound(t *testing.T) {
	a := newAPI(t)
	a.login(t)

	for _, path := range []string{"/api/v1/tests/test-x", "/api/v1/tests/test-x/html", "/api/v1/tests/test-x/zip", "/api/v1/tests/test-x/preview"} {
		resp := a.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}
