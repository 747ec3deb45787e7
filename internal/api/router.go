package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evz/family-wiki-sub001/internal/treeservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *treeservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Indexed tree.
	r.Get("/persons", h.ListPersons)
	r.Get("/persons/{id}", h.GetPerson)
	r.Get("/families", h.ListFamilies)
	r.Get("/search", h.Search)

	// Source files.
	r.Get("/sources", h.ListSources)
	r.Post("/sources", h.UploadSource)
	r.Delete("/sources/*", h.DeleteSource)
	r.Get("/export/*", h.ExportSource)

	// Stateless codec.
	r.Post("/gedcom/decode", h.Decode)
	r.Post("/gedcom/encode", h.Encode)
	r.Post("/gedcom/validate", h.Validate)

	// Normalizers.
	r.Post("/parse/name", h.ParseName)
	r.Post("/parse/date", h.ParseDate)
	r.Post("/parse/place", h.ParsePlace)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
