package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/taxon/internal/catalog"
	"github.com/starford/taxon/internal/models"
	"github.com/starford/taxon/internal/synonyms"
	"github.com/starford/taxon/internal/tagging"
	"github.com/starford/taxon/internal/testutil"
)

func testServer(t *testing.T) (*Server, *catalog.Service) {
	t.Helper()
	svc := testutil.TestService(t,
		catalog.WithDefaultOfficialTags([]string{"#sono"}),
		catalog.WithExtractLimit(0),
		catalog.WithSynonyms(synonyms.NewHolder(map[string]string{"#corrida": "#cardio"})),
	)
	return New(svc, 0), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no in-process "call tool" helper, so handlers are called
	// directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "normalize_tags":
		result, err = srv.normalizeTags(ctx, req)
	case "infer_tags":
		result, err = srv.inferTags(ctx, req)
	case "extract_tags":
		result, err = srv.extractTags(ctx, req)
	case "derive_profile_tags":
		result, err = srv.deriveProfileTags(ctx, req)
	case "get_taxonomy":
		result, err = srv.getTaxonomy(ctx, req)
	case "promote_tag":
		result, err = srv.promoteTag(ctx, req)
	case "demote_tag":
		result, err = srv.demoteTag(ctx, req)
	case "suggested_tags":
		result, err = srv.suggestedTags(ctx, req)
	case "tag_entity":
		result, err = srv.tagEntity(ctx, req)
	case "get_tag_contract":
		result, err = srv.getTagContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func resultJSON[T any](t *testing.T, r *mcp.CallToolResult) T {
	t.Helper()
	if r.IsError {
		t.Fatalf("tool error: %s", resultText(r))
	}
	var v T
	if err := json.Unmarshal([]byte(resultText(r)), &v); err != nil {
		t.Fatalf("decode %q: %v", resultText(r), err)
	}
	return v
}

func TestNormalizeTags(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "normalize_tags", map[string]any{"tags": []any{"Rotina Diária", "#sono", "sono"}})
	got := resultJSON[[]string](t, r)
	if strings.Join(got, ",") != "#rotina_diária,#sono" {
		t.Errorf("tags = %v", got)
	}
}

func TestInferTags(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "infer_tags", map[string]any{"fragments": []any{"Foi correr na academia hoje"}})
	got := resultJSON[[]string](t, r)
	if strings.Join(got, ",") != "#fitness,#cardio" {
		t.Errorf("tags = %v", got)
	}

	r = callTool(t, srv, "infer_tags", map[string]any{})
	if !r.IsError {
		t.Error("expected error for missing fragments")
	}
}

func TestExtractTags(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "extract_tags", map[string]any{"text": "Mais tempo em familia no fim de semana"})
	if got := resultJSON[[]string](t, r); len(got) != tagging.DefaultExtractLimit {
		t.Errorf("tags = %v, want %d", got, tagging.DefaultExtractLimit)
	}

	r = callTool(t, srv, "extract_tags", map[string]any{"text": "Mais tempo em familia no fim de semana", "limit": float64(1)})
	if got := resultJSON[[]string](t, r); len(got) != 1 || got[0] != "#tempo" {
		t.Errorf("limited tags = %v", got)
	}

	r = callTool(t, srv, "extract_tags", map[string]any{})
	if !r.IsError {
		t.Error("expected error for missing text")
	}
}

func TestDeriveProfileTags(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "derive_profile_tags", map[string]any{
		"health_complaints": []any{"Ansiedade"},
		"extra_tags":        []any{"música"},
	})
	got := resultJSON[tagging.ProfileTags](t, r)
	joined := strings.Join(got.SemanticTags, ",")
	if !strings.Contains(joined, "#ansiedade") || !strings.Contains(joined, "#música") {
		t.Errorf("semantic tags = %v", got.SemanticTags)
	}
	if len(got.RecommendedProfessionalSpecialties) == 0 {
		t.Error("no specialties")
	}
}

func TestCurationTools(t *testing.T) {
	srv, svc := testServer(t)
	fam, err := svc.CreateFamily(context.Background())
	if err != nil {
		t.Fatalf("CreateFamily: %v", err)
	}
	id := fam.FamilyID

	r := callTool(t, srv, "promote_tag", map[string]any{"family_id": id, "tag": "Xadrez"})
	tax := resultJSON[catalog.Taxonomy](t, r)
	if strings.Join(tax.OfficialTags, ",") != "#sono,#xadrez" {
		t.Errorf("after promote = %v", tax.OfficialTags)
	}

	r = callTool(t, srv, "demote_tag", map[string]any{"family_id": id, "tag": "sono"})
	tax = resultJSON[catalog.Taxonomy](t, r)
	if strings.Join(tax.OfficialTags, ",") != "#xadrez" {
		t.Errorf("after demote = %v", tax.OfficialTags)
	}

	r = callTool(t, srv, "get_taxonomy", map[string]any{"family_id": id})
	tax = resultJSON[catalog.Taxonomy](t, r)
	if tax.FamilyID != id {
		t.Errorf("family id = %q", tax.FamilyID)
	}

	r = callTool(t, srv, "promote_tag", map[string]any{"family_id": id, "tag": "#"})
	if !r.IsError {
		t.Error("expected error for empty tag")
	}
}

func TestTagEntityAndSuggestions(t *testing.T) {
	srv, svc := testServer(t)
	fam, _ := svc.CreateFamily(context.Background())
	id := fam.FamilyID

	r := callTool(t, srv, "tag_entity", map[string]any{
		"family_id":  id,
		"kind":       models.EntityHabit,
		"name":       "Correr no parque",
		"extra_tags": []any{"Corrida"},
	})
	res := resultJSON[models.TaggingResult](t, r)
	if strings.Join(res.Tags, ",") != "#fitness,#cardio,#lazer" {
		t.Errorf("tags = %v", res.Tags)
	}

	r = callTool(t, srv, "suggested_tags", map[string]any{"family_id": id, "limit": float64(2)})
	sugg := resultJSON[[]models.SuggestedTagCandidate](t, r)
	if len(sugg) != 2 || sugg[0].Tag != "#cardio" {
		t.Errorf("suggestions = %+v", sugg)
	}

	r = callTool(t, srv, "tag_entity", map[string]any{"family_id": id, "kind": "spaceship"})
	if !r.IsError {
		t.Error("expected error for unknown kind")
	}
}

func TestUnknownFamily(t *testing.T) {
	srv, _ := testServer(t)
	for _, tool := range []string{"get_taxonomy", "suggested_tags"} {
		r := callTool(t, srv, tool, map[string]any{"family_id": "nope"})
		if !r.IsError || !strings.Contains(resultText(r), "family not found") {
			t.Errorf("%s: result = %q", tool, resultText(r))
		}
	}
	r := callTool(t, srv, "tag_entity", map[string]any{"family_id": "nope", "kind": models.EntityReward, "name": "x"})
	if !r.IsError {
		t.Error("tag_entity on missing family should fail")
	}
}

func TestTagContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_tag_contract", nil)
	if !strings.Contains(resultText(r), "Tag Format Contract") {
		t.Errorf("unexpected contract text")
	}

	contents, err := srv.readTagFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("read resource: %v", err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != tagFormatURI || tc.Text != TagFormatContract {
		t.Errorf("resource = %+v", contents[0])
	}
}

func TestServerRegistersTools(t *testing.T) {
	srv, _ := testServer(t)
	if srv.MCPServer() == nil {
		t.Fatal("nil MCP server")
	}
}
