package api

import (
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/evz/family-wiki-sub001/internal/index"
	"github.com/evz/family-wiki-sub001/internal/treeservice"
)

// maxUploadBytes caps uploaded .ged files.
const maxUploadBytes = 50 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *treeservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *treeservice.Service) *Handler {
	return &Handler{svc: svc}
}

// sourcePath extracts the source path from the URL wildcard.
// Supports encoded slashes from OpenAPI clients (e.g. tak%2Fjansen.ged).
func sourcePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func pageParams(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	return limit, offset
}

// ListPersons handles GET /api/persons.
//
//	@Summary		List indexed persons
//	@Tags			persons
//	@Produce		json
//	@Param			source	query		string	false	"Filter by source file"
//	@Param			surname	query		string	false	"Filter by surname substring"
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	PersonListResponse
//	@Security		BearerAuth
//	@Router			/persons [get]
func (h *Handler) ListPersons(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	q := r.URL.Query()
	items, total, err := h.svc.ListPersons(r.Context(), index.PersonFilter{
		Source:  q.Get("source"),
		Surname: q.Get("surname"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		writeError(w, "list persons", err)
		return
	}
	writeJSON(w, http.StatusOK, PersonListResponse{Persons: items, Total: total})
}

// GetPerson handles GET /api/persons/{id}.
//
//	@Summary		Get a person with their families
//	@Tags			persons
//	@Produce		json
//	@Param			id		path		string	true	"Person id"
//	@Param			source	query		string	false	"Source file"
//	@Success		200		{object}	PersonDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/persons/{id} [get]
func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.svc.GetPerson(r.Context(), r.URL.Query().Get("source"), id)
	if err != nil {
		writeError(w, "get person", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListFamilies handles GET /api/families.
//
//	@Summary		List indexed families
//	@Tags			families
//	@Produce		json
//	@Param			source	query		string	false	"Filter by source file"
//	@Param			person	query		string	false	"Only families the person belongs to"
//	@Success		200		{object}	FamilyListResponse
//	@Security		BearerAuth
//	@Router			/families [get]
func (h *Handler) ListFamilies(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	q := r.URL.Query()
	items, total, err := h.svc.ListFamilies(r.Context(), index.FamilyFilter{
		Source: q.Get("source"),
		Person: q.Get("person"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, "list families", err)
		return
	}
	writeJSON(w, http.StatusOK, FamilyListResponse{Families: items, Total: total})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across persons
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// ListSources handles GET /api/sources.
//
//	@Summary		List imported .ged files
//	@Tags			sources
//	@Produce		json
//	@Success		200	{object}	SourceListResponse
//	@Security		BearerAuth
//	@Router			/sources [get]
func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.svc.Sources(r.Context())
	if err != nil {
		writeError(w, "list sources", err)
		return
	}
	writeJSON(w, http.StatusOK, SourceListResponse{Sources: sources})
}

// UploadSource handles POST /api/sources. The file arrives either as the
// "file" field of a multipart form or as the raw body with a "path" query
// parameter.
//
//	@Summary		Upload and index a .ged file
//	@Tags			sources
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file		formData	file	false	"GEDCOM file"
//	@Param			path		query		string	false	"Target path in the tree"
//	@Param			overwrite	query		bool	false	"Replace an existing source"
//	@Success		201			{object}	SourceDetail
//	@Failure		400			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sources [post]
func (h *Handler) UploadSource(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	target := r.URL.Query().Get("path")
	overwrite, _ := strconv.ParseBool(r.URL.Query().Get("overwrite"))

	var data []byte
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
			return
		}
		defer file.Close()
		if target == "" {
			target = r.FormValue("path")
		}
		if target == "" {
			target = path.Base(strings.ReplaceAll(header.Filename, `\`, "/"))
		}
		if data, err = io.ReadAll(file); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
			return
		}
	} else {
		var err error
		if data, err = io.ReadAll(r.Body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
			return
		}
	}
	if target == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}

	detail, err := h.svc.ImportSource(r.Context(), target, data, overwrite)
	if err != nil {
		writeError(w, "upload source", err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

// DeleteSource handles DELETE /api/sources/*.
//
//	@Summary		Delete a source file and its index rows
//	@Tags			sources
//	@Param			path	path	string	true	"Source path"
//	@Success		204		"Source deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sources/{path} [delete]
func (h *Handler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	p := sourcePath(r)
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteSource(r.Context(), p); err != nil {
		writeError(w, "delete source", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportSource handles GET /api/export/*. It returns the re-encoded GEDCOM
// text, or the text with its validation report when format=json.
//
//	@Summary		Export an indexed source as GEDCOM
//	@Tags			sources
//	@Produce		plain,json
//	@Param			path	path		string	true	"Source path"
//	@Param			format	query		string	false	"Response format"	Enums(ged, json)
//	@Success		200		{object}	ExportResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/export/{path} [get]
func (h *Handler) ExportSource(w http.ResponseWriter, r *http.Request) {
	p := sourcePath(r)
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	exp, err := h.svc.ExportSource(r.Context(), p)
	if err != nil {
		writeError(w, "export source", err)
		return
	}
	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, exp)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(p)+`"`)
	w.Header().Set("X-Gedcom-Valid", strconv.FormatBool(exp.Report.Valid))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, exp.Text+"\n")
}
