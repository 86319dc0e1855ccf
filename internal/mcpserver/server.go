// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Taxon tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/taxon/internal/apperr"
	"github.com/starford/taxon/internal/catalog"
	"github.com/starford/taxon/internal/models"
	"github.com/starford/taxon/internal/tagging"
)

const tagFormatURI = "taxon://tag-format"

var stringItems = mcp.Items(map[string]any{"type": "string"})

// Server wraps the MCP server with Taxon tools.
type Server struct {
	mcp             *server.MCPServer
	svc             *catalog.Service
	suggestionLimit int
}

// New creates a new MCP server with all Taxon tools registered.
func New(svc *catalog.Service, suggestionLimit int) *Server {
	s := &Server{svc: svc, suggestionLimit: suggestionLimit}

	s.mcp = server.NewMCPServer(
		"Taxon",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("normalize_tags",
		mcp.WithDescription("Normalize raw tag strings into canonical #tags, de-duplicated in first-seen order."),
		mcp.WithArray("tags", mcp.Required(), stringItems, mcp.Description("Raw tag strings")),
	), s.normalizeTags)

	s.mcp.AddTool(mcp.NewTool("infer_tags",
		mcp.WithDescription("Infer facet tags (e.g. #fitness, #sono) from free-text fragments using the rule table."),
		mcp.WithArray("fragments", mcp.Required(), stringItems, mcp.Description("Text fragments such as a name and a description")),
	), s.inferTags)

	s.mcp.AddTool(mcp.NewTool("extract_tags",
		mcp.WithDescription("Extract unigram and bigram tags from free text, skipping Portuguese stopwords."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to extract from")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of tags (default 4)")),
	), s.extractTags)

	s.mcp.AddTool(mcp.NewTool("derive_profile_tags",
		mcp.WithDescription("Map profile selections to semantic tags and recommended professional specialties."),
		mcp.WithArray("health_complaints", stringItems, mcp.Description("Selected health complaint labels")),
		mcp.WithArray("neuro_conditions", stringItems, mcp.Description("Selected neurodevelopmental condition labels")),
		mcp.WithArray("extra_tags", stringItems, mcp.Description("Additional free tags")),
	), s.deriveProfileTags)

	s.mcp.AddTool(mcp.NewTool("get_taxonomy",
		mcp.WithDescription("Return the official tags of a family."),
		mcp.WithString("family_id", mcp.Required(), mcp.Description("Family ID")),
	), s.getTaxonomy)

	s.mcp.AddTool(mcp.NewTool("promote_tag",
		mcp.WithDescription("Make a tag official for a family. Read the tag contract first via "+
			"the get_tag_contract tool or the "+tagFormatURI+" resource."),
		mcp.WithString("family_id", mcp.Required(), mcp.Description("Family ID")),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag to promote")),
	), s.promoteTag)

	s.mcp.AddTool(mcp.NewTool("demote_tag",
		mcp.WithDescription("Remove a tag from a family's official tags."),
		mcp.WithString("family_id", mcp.Required(), mcp.Description("Family ID")),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag to demote")),
	), s.demoteTag)

	s.mcp.AddTool(mcp.NewTool("suggested_tags",
		mcp.WithDescription("List non-official tags ranked by usage score, candidates for promotion."),
		mcp.WithString("family_id", mcp.Required(), mcp.Description("Family ID")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of suggestions")),
	), s.suggestedTags)

	s.mcp.AddTool(mcp.NewTool("tag_entity",
		mcp.WithDescription("Compute the tags of a created or edited habit, reward, product or profile "+
			"and update the family's tag scores."),
		mcp.WithString("family_id", mcp.Required(), mcp.Description("Family ID")),
		mcp.WithString("kind", mcp.Required(), mcp.Enum(models.EntityKinds...), mcp.Description("Entity kind")),
		mcp.WithString("name", mcp.Description("Entity name")),
		mcp.WithString("description", mcp.Description("Entity description")),
		mcp.WithArray("extra_tags", stringItems, mcp.Description("Tags chosen explicitly")),
		mcp.WithArray("previous_tags", stringItems, mcp.Description("Tags the entity had before this edit")),
	), s.tagEntity)

	s.mcp.AddTool(mcp.NewTool("get_tag_contract",
		mcp.WithDescription("Returns the canonical Taxon tag format contract. "+
			"Call this before promoting tags to ensure correct structure."),
	), s.getTagContract)

	// Resource: tag format contract.
	s.mcp.AddResource(
		mcp.NewResource(tagFormatURI, "Tag Format Contract",
			mcp.WithResourceDescription("Canonical tag format and catalog rules."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTagFormatResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func catalogError(familyID string, err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("family not found: %s", familyID))
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) normalizeTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(tagging.NormalizeTags(req.GetStringSlice("tags", nil)))
}

func (s *Server) inferTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fragments := req.GetStringSlice("fragments", nil)
	if len(fragments) == 0 {
		return mcp.NewToolResultError("fragments must not be empty"), nil
	}
	return jsonResult(s.svc.InferTags(fragments...))
}

func (s *Server) extractTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", tagging.DefaultExtractLimit)
	return jsonResult(s.svc.ExtractTags(text, limit))
}

func (s *Server) deriveProfileTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.DeriveProfileTags(tagging.ProfileInput{
		HealthComplaints: req.GetStringSlice("health_complaints", nil),
		NeuroConditions:  req.GetStringSlice("neuro_conditions", nil),
		ExtraTags:        req.GetStringSlice("extra_tags", nil),
	}))
}

func (s *Server) getTaxonomy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("family_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.svc.Taxonomy(ctx, id)
	if err != nil {
		return catalogError(id, err), nil
	}
	return jsonResult(t)
}

func (s *Server) promoteTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("family_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if tagging.NormalizeTag(tag) == "" {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %q", apperr.ErrInvalidTag, tag)), nil
	}
	t, err := s.svc.PromoteTag(ctx, id, tag)
	if err != nil {
		return catalogError(id, err), nil
	}
	return jsonResult(t)
}

func (s *Server) demoteTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("family_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.svc.RemoveOfficialTag(ctx, id, tag)
	if err != nil {
		return catalogError(id, err), nil
	}
	return jsonResult(t)
}

func (s *Server) suggestedTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("family_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sugg, err := s.svc.Suggestions(ctx, id, req.GetInt("limit", s.suggestionLimit))
	if err != nil {
		return catalogError(id, err), nil
	}
	return jsonResult(sugg)
}

func (s *Server) tagEntity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("family_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kind, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !slices.Contains(models.EntityKinds, kind) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown kind: %s", kind)), nil
	}

	res, err := s.svc.RecordTagging(ctx, id, models.TaggingEvent{
		Kind:         kind,
		Name:         req.GetString("name", ""),
		Description:  req.GetString("description", ""),
		ExtraTags:    req.GetStringSlice("extra_tags", nil),
		PreviousTags: req.GetStringSlice("previous_tags", nil),
	})
	if err != nil {
		return catalogError(id, err), nil
	}
	return jsonResult(res)
}

func (s *Server) getTagContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(TagFormatContract), nil
}

func (s *Server) readTagFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      tagFormatURI,
			MIMEType: "text/markdown",
			Text:     TagFormatContract,
		},
	}, nil
}
