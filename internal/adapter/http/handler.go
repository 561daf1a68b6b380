package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"adtest/internal/core/port"
	"adtest/internal/preview"
	"adtest/internal/session"
)

const defaultMaxUploadSize = 64 << 20

// Handler contains dependencies and routes. It is an inbound adapter for HTTP.
// Routes are registered on a chi.Router for convenient method handling.
type Handler struct {
	tests         port.TestUseCase
	drafts        port.DraftUseCase
	sessions      *session.Manager
	previews      *preview.Registry
	logger        *slog.Logger
	maxUploadSize int64
	router        chi.Router
}

// Deps are the services a Handler serves.
type Deps struct {
	Tests    port.TestUseCase
	Drafts   port.DraftUseCase
	Sessions *session.Manager
	Previews *preview.Registry
	// MaxUploadSize caps a whole multipart upload body. Zero means 64MB.
	MaxUploadSize int64
}

// NewHandler creates a handler with all routes configured. Draft and test
// routes require a session cookie issued by POST /api/v1/session.
func NewHandler(deps Deps, logger *slog.Logger) *Handler {
	h := &Handler{
		tests:         deps.Tests,
		drafts:        deps.Drafts,
		sessions:      deps.Sessions,
		previews:      deps.Previews,
		logger:        logger,
		maxUploadSize: deps.MaxUploadSize,
	}
	if h.maxUploadSize <= 0 {
		h.maxUploadSize = defaultMaxUploadSize
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/session", h.handleLogin)
		r.Delete("/session", h.handleLogout)
		r.Get("/session", h.handleSession)

		r.Group(func(r chi.Router) {
			r.Use(h.requireSession)

			r.Post("/drafts", h.handleCreateDraft)
			r.Route("/drafts/{id}", func(r chi.Router) {
				r.Get("/", h.handleGetDraft)
				r.Patch("/", h.handleRenameDraft)
				r.Delete("/", h.handleDiscardDraft)
				r.Post("/creatives", h.handleAddCreatives)
				r.Patch("/creatives/{creativeID}", h.handleUpdateTracking)
				r.Delete("/creatives/{creativeID}", h.handleRemoveCreative)
				r.Put("/tracking", h.handleGlobalTracking)
				r.Post("/save", h.handleSaveDraft)
			})

			r.Get("/tests", h.handleListTests)
			r.Route("/tests/{id}", func(r chi.Router) {
				r.Get("/", h.handleGetTest)
				r.Delete("/", h.handleDeleteTest)
				r.Get("/preview", h.handlePreview)
				r.Get("/html", h.handleDownloadHTML)
				r.Get("/zip", h.handleDownloadZip)
			})
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	live := 0
	if h.previews != nil {
		live = h.previews.Live()
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"previews": live,
	})
}
