package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"adtest/internal/core/domain"
	"adtest/internal/core/ingest"
	"adtest/internal/core/port"
)

const uploadField = "files"

type draftNameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	var req draftNameRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			h.badRequest(w, "invalid JSON")
			return
		}
	}
	d, err := h.drafts.Create(r.Context(), req.Name, sessionFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, d)
}

func (h *Handler) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	d, err := h.drafts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if d == nil {
		h.writeError(w, r, domain.ErrNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

func (h *Handler) handleRenameDraft(w http.ResponseWriter, r *http.Request) {
	var req draftNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON")
		return
	}
	d, err := h.drafts.Rename(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

func (h *Handler) handleDiscardDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.drafts.Discard(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAddCreatives accepts a multipart form with one or more "files"
// parts. Files refused by admission are reported in the response and do not
// fail the request.
func (h *Handler) handleAddCreatives(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "upload too large"})
			return
		}
		h.badRequest(w, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[uploadField]
	if len(headers) == 0 {
		h.badRequest(w, fmt.Sprintf("no %q parts in upload", uploadField))
		return
	}

	files := make([]ingest.RawFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readPart(fh)
		if err != nil {
			h.logger.WarnContext(r.Context(), "upload part unreadable",
				slog.String("file", fh.Filename), slog.Any("error", err))
			h.badRequest(w, fmt.Sprintf("could not read %q", fh.Filename))
			return
		}
		files = append(files, f)
	}

	res, err := h.drafts.AddFiles(r.Context(), chi.URLParam(r, "id"), files)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

func readPart(fh *multipart.FileHeader) (ingest.RawFile, error) {
	f, err := fh.Open()
	if err != nil {
		return ingest.RawFile{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return ingest.RawFile{}, err
	}
	return ingest.RawFile{
		Name: fh.Filename,
		Type: fh.Header.Get("Content-Type"),
		Data: data,
	}, nil
}

func (h *Handler) handleUpdateTracking(w http.ResponseWriter, r *http.Request) {
	var upd port.TrackingUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		h.badRequest(w, "invalid JSON")
		return
	}
	c, err := h.drafts.UpdateTracking(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "creativeID"), upd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

func (h *Handler) handleRemoveCreative(w http.ResponseWriter, r *http.Request) {
	if err := h.drafts.RemoveCreative(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "creativeID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGlobalTracking(w http.ResponseWriter, r *http.Request) {
	var tracking domain.Tracking
	if err := json.NewDecoder(r.Body).Decode(&tracking); err != nil {
		h.badRequest(w, "invalid JSON")
		return
	}
	d, err := h.drafts.ApplyGlobalTracking(r.Context(), chi.URLParam(r, "id"), tracking)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

func (h *Handler) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	test, err := h.drafts.Save(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, test)
}
