package api

import (
	"github.com/evz/family-wiki-sub001/internal/dutch"
	"github.com/evz/family-wiki-sub001/internal/gedcom"
	"github.com/evz/family-wiki-sub001/internal/index"
	"github.com/evz/family-wiki-sub001/internal/models"
	"github.com/evz/family-wiki-sub001/internal/treeservice"
)

// PersonDetail is a person with their families (aliased from the domain layer).
type PersonDetail = treeservice.PersonDetail

// SourceDetail describes an uploaded source (aliased from the domain layer).
type SourceDetail = treeservice.SourceDetail

// ExportResponse is the JSON form of an export.
type ExportResponse = treeservice.Export

// ValidationReport is the structural validator's result.
type ValidationReport = gedcom.Report

// DocumentResponse is a decoded GEDCOM document.
type DocumentResponse = models.Document

// PersonListResponse wraps paginated person listings.
type PersonListResponse struct {
	Persons []index.PersonRow `json:"persons" validate:"required"`
	Total   int               `json:"total" example:"42" validate:"required"`
}

// FamilyListResponse wraps paginated family listings.
type FamilyListResponse struct {
	Families []index.FamilyRow `json:"families" validate:"required"`
	Total    int               `json:"total" example:"7" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// SourceListResponse wraps the imported sources.
type SourceListResponse struct {
	Sources []index.SourceRow `json:"sources" validate:"required"`
}

// EncodeResponse is returned by POST /gedcom/encode.
type EncodeResponse struct {
	GEDCOM  string        `json:"gedcom" validate:"required"`
	Report  gedcom.Report `json:"report" validate:"required"`
	Skipped int           `json:"skipped" example:"0"`
	Issues  []string      `json:"issues"`
}

// ParseRequest is the request body for the normalizer endpoints.
type ParseRequest struct {
	Text string `json:"text" example:"Jan van der Berg" validate:"required"`
}

// NameResponse is the result of POST /parse/name.
type NameResponse struct {
	GivenNames   string `json:"given_names" example:"Jan"`
	Particle     string `json:"particle" example:"van der"`
	Surname      string `json:"surname" example:"Berg"`
	Standardized string `json:"standardized" example:"Jan van der Berg"`
	Gender       string `json:"gender" example:"male"`
}

// DateResponse is the result of POST /parse/date.
type DateResponse struct {
	GEDCOM    string   `json:"gedcom" example:"15 MAR 1850"`
	Extracted []string `json:"extracted"`
}

// PlaceResponse is the result of POST /parse/place.
type PlaceResponse struct {
	dutch.Place
	Standardized string `json:"standardized" example:"Den Haag"`
	Dutch        bool   `json:"dutch"`
}
