package api

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/evz/family-wiki-sub001/internal/dutch"
	"github.com/evz/family-wiki-sub001/internal/extraction"
)

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return nil, false
	}
	return data, true
}

// Decode handles POST /api/gedcom/decode.
//
//	@Summary		Decode GEDCOM text into individuals and families
//	@Tags			gedcom
//	@Accept			plain
//	@Produce		json
//	@Success		200	{object}	DocumentResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/gedcom/decode [post]
func (h *Handler) Decode(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r)
	if !ok {
		return
	}
	doc, err := h.svc.Decode(r.Context(), bytes.NewReader(data))
	if err != nil {
		writeError(w, "decode", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Encode handles POST /api/gedcom/encode. The body is extracted person data
// in JSON, or YAML when the content type says so.
//
//	@Summary		Encode extracted persons and families as GEDCOM
//	@Tags			gedcom
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	EncodeResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/gedcom/encode [post]
func (h *Handler) Encode(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r)
	if !ok {
		return
	}
	asYAML := strings.Contains(r.Header.Get("Content-Type"), "yaml")
	res, err := extraction.Parse(data, asYAML)
	if err != nil {
		writeError(w, "encode", err)
		return
	}
	exp := h.svc.Encode(res.Individuals, res.Families)
	writeJSON(w, http.StatusOK, EncodeResponse{
		GEDCOM:  exp.Text,
		Report:  exp.Report,
		Skipped: res.Skipped,
		Issues:  nonNil(res.Issues),
	})
}

// Validate handles POST /api/gedcom/validate.
//
//	@Summary		Run the structural validator over GEDCOM text
//	@Tags			gedcom
//	@Accept			plain
//	@Produce		json
//	@Success		200	{object}	ValidationReport
//	@Security		BearerAuth
//	@Router			/gedcom/validate [post]
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r)
	if !ok {
		return
	}
	report := h.svc.Validate(r.Context(), data)
	if report.Issues == nil {
		report.Issues = []string{}
	}
	writeJSON(w, http.StatusOK, report)
}

// ParseName handles POST /api/parse/name.
//
//	@Summary		Split and standardize a Dutch name
//	@Tags			parse
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ParseRequest	true	"Name text"
//	@Success		200		{object}	NameResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/parse/name [post]
func (h *Handler) ParseName(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	given, particle, surname := dutch.ParseName(req.Text)
	writeJSON(w, http.StatusOK, NameResponse{
		GivenNames:   given,
		Particle:     particle,
		Surname:      surname,
		Standardized: dutch.StandardizeName(req.Text),
		Gender:       string(dutch.DetectGender(given)),
	})
}

// ParseDate handles POST /api/parse/date.
//
//	@Summary		Normalize a date to GEDCOM form
//	@Tags			parse
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ParseRequest	true	"Date text"
//	@Success		200		{object}	DateResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/parse/date [post]
func (h *Handler) ParseDate(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, DateResponse{
		GEDCOM:    dutch.ParseDate(req.Text),
		Extracted: nonNil(dutch.ExtractDates(req.Text)),
	})
}

// ParsePlace handles POST /api/parse/place.
//
//	@Summary		Split and standardize a place name
//	@Tags			parse
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ParseRequest	true	"Place text"
//	@Success		200		{object}	PlaceResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/parse/place [post]
func (h *Handler) ParsePlace(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	stripped := dutch.StripPlaceIndicators(req.Text)
	writeJSON(w, http.StatusOK, PlaceResponse{
		Place:        dutch.ParsePlace(req.Text),
		Standardized: dutch.StandardizePlace(stripped),
		Dutch:        dutch.IsDutchPlace(stripped),
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
