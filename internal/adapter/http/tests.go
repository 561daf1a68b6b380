package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"adtest/internal/core/domain"
)

func (h *Handler) handleListTests(w http.ResponseWriter, r *http.Request) {
	tests, err := h.tests.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tests)
}

func (h *Handler) handleGetTest(w http.ResponseWriter, r *http.Request) {
	test, err := h.tests.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if test == nil {
		h.writeError(w, r, domain.ErrNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, test)
}

func (h *Handler) handleDeleteTest(w http.ResponseWriter, r *http.Request) {
	ok, err := h.tests.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !ok {
		h.writeError(w, r, domain.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	dl, err := h.tests.Preview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	// Creatives may carry scripts; keep them away from the API's origin.
	w.Header().Set("Content-Security-Policy", "sandbox allow-scripts")
	h.writeDownload(w, dl, false)
}

func (h *Handler) handleDownloadHTML(w http.ResponseWriter, r *http.Request) {
	dl, err := h.tests.RenderHTML(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeDownload(w, dl, true)
}

func (h *Handler) handleDownloadZip(w http.ResponseWriter, r *http.Request) {
	dl, err := h.tests.Package(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeDownload(w, dl, true)
}
