// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes family-wiki tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/evz/family-wiki-sub001/internal/apperr"
	"github.com/evz/family-wiki-sub001/internal/dutch"
	"github.com/evz/family-wiki-sub001/internal/extraction"
	"github.com/evz/family-wiki-sub001/internal/treeservice"
)

const contractURI = "familywiki://gedcom-format"

// Server wraps the MCP server with family-wiki tools.
type Server struct {
	mcp *server.MCPServer
	svc *treeservice.Service
}

// New creates a new MCP server with all family-wiki tools registered.
func New(svc *treeservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Family Wiki",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_persons",
		mcp.WithDescription("Full-text search through indexed persons by name, place and occupation."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchPersons)

	s.mcp.AddTool(mcp.NewTool("get_person",
		mcp.WithDescription("Read one indexed person with the families they belong to as child or parent."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Person id as written in the source file, e.g. I12")),
		mcp.WithString("source", mcp.Description("Source .ged file; optional when the id is unique")),
	), s.getPerson)

	s.mcp.AddTool(mcp.NewTool("list_sources",
		mcp.WithDescription("List imported .ged files with their record counts."),
	), s.listSources)

	s.mcp.AddTool(mcp.NewTool("parse_name",
		mcp.WithDescription("Split a Dutch name into given names, particle and surname, and guess the gender."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Full name, e.g. 'Jan van der Berg' or 'Jan /Berg/'")),
	), s.parseName)

	s.mcp.AddTool(mcp.NewTool("parse_date",
		mcp.WithDescription("Normalize a Dutch date to GEDCOM 'DD MON YYYY' and list the dates found in the text."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Date or free text, e.g. '15 maart 1850'")),
	), s.parseDate)

	s.mcp.AddTool(mcp.NewTool("parse_place",
		mcp.WithDescription("Split a place into place, municipality, province and country."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Place text, e.g. 'te Amsterdam, Noord-Holland'")),
	), s.parsePlace)

	s.mcp.AddTool(mcp.NewTool("validate_gedcom",
		mcp.WithDescription("Run the structural GEDCOM validator and report line-numbered issues."),
		mcp.WithString("gedcom", mcp.Required(), mcp.Description("GEDCOM text")),
	), s.validateGEDCOM)

	s.mcp.AddTool(mcp.NewTool("export_gedcom",
		mcp.WithDescription("Render GEDCOM either from an indexed source or from extraction data "+
			"(JSON or YAML persons and families). Read the contract first via the "+
			"get_gedcom_contract tool or the "+contractURI+" resource."),
		mcp.WithString("source", mcp.Description("Indexed source .ged file to re-export")),
		mcp.WithString("data", mcp.Description("Extraction data following the family-wiki GEDCOM contract")),
	), s.exportGEDCOM)

	s.mcp.AddTool(mcp.NewTool("import_gedcom",
		mcp.WithDescription("Download a .ged file from an http(s) URL or a base64 data URI, store it in the tree and index it."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:text/plain;base64,... URI")),
		mcp.WithString("path", mcp.Description("Target path in the tree (default: derived from the URL)")),
	), s.importGEDCOM)

	s.mcp.AddTool(mcp.NewTool("get_gedcom_contract",
		mcp.WithDescription("Returns the GEDCOM subset and extraction data format family-wiki understands."),
	), s.getGEDCOMContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "GEDCOM Format Contract",
			mcp.WithResourceDescription("GEDCOM subset and extraction data format used by family-wiki."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}

func (s *Server) searchPersons(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no persons found"), nil
	}
	return jsonResult(results), nil
}

func (s *Server) getPerson(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.GetPerson(ctx, req.GetString("source", ""), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(p), nil
}

func (s *Server) listSources(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sources, err := s.svc.Sources(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lines := make([]string, 0, len(sources))
	for _, src := range sources {
		lines = append(lines, fmt.Sprintf("%s (%d individuals, %d families)", src.Source, src.Individuals, src.Families))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) parseName(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	given, particle, surname := dutch.ParseName(text)
	return jsonResult(map[string]string{
		"given_names":  given,
		"particle":     particle,
		"surname":      surname,
		"standardized": dutch.StandardizeName(text),
		"gender":       string(dutch.DetectGender(given)),
	}), nil
}

func (s *Server) parseDate(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	found := dutch.ExtractDates(text)
	if found == nil {
		found = []string{}
	}
	return jsonResult(map[string]any{
		"gedcom":    dutch.ParseDate(text),
		"extracted": found,
	}), nil
}

func (s *Server) parsePlace(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	stripped := dutch.StripPlaceIndicators(text)
	return jsonResult(map[string]any{
		"place":        dutch.ParsePlace(text),
		"standardized": dutch.StandardizePlace(stripped),
		"dutch":        dutch.IsDutchPlace(stripped),
	}), nil
}

func (s *Server) validateGEDCOM(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("gedcom")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report := s.svc.Validate(ctx, []byte(text))
	if report.Valid {
		return mcp.NewToolResultText(fmt.Sprintf("valid: %d lines", report.LineCount)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("invalid: %d lines, %d issues\n%s",
		report.LineCount, len(report.Issues), strings.Join(report.Issues, "\n"))), nil
}

func (s *Server) exportGEDCOM(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source := req.GetString("source", "")
	data := req.GetString("data", "")

	var exp *treeservice.Export
	var skipped int
	switch {
	case source != "" && data != "":
		return mcp.NewToolResultError("pass either source or data, not both"), nil
	case source != "":
		var err error
		if exp, err = s.svc.ExportSource(ctx, source); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("not found: %s", source)), nil
			}
			return mcp.NewToolResultError(err.Error()), nil
		}
	case data != "":
		res, err := extraction.Parse([]byte(data), false)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		exp = s.svc.Encode(res.Individuals, res.Families)
		skipped = res.Skipped
	default:
		return mcp.NewToolResultError("source or data is required"), nil
	}

	summary := fmt.Sprintf("valid: %t, lines: %d, issues: %d", exp.Report.Valid, exp.Report.LineCount, len(exp.Report.Issues))
	if skipped > 0 {
		summary += fmt.Sprintf(", skipped persons: %d", skipped)
	}
	return mcp.NewToolResultText(exp.Text + "\n\n" + summary), nil
}

func (s *Server) getGEDCOMContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(GEDCOMFormatContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     GEDCOMFormatContract,
		},
	}, nil
}
