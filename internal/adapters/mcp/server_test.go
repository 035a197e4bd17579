package mcpadapter

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
	"github.com/ksrishi31-git/smart-document-organizer/internal/core/usecase"
)

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("tool returned error: %v", err)
	}
	if res == nil {
		t.Fatal("tool returned nil result")
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected one content item, got %d", len(res.Content))
	}
	text, ok := mcp.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func newTestTools() *Tools {
	catalog := domain.DefaultCatalog()
	return NewTools(usecase.NewClassifier(catalog, usecase.DefaultClassifierConfig(), nil), catalog)
}

func TestClassifyDocumentUsesKeywords(t *testing.T) {
	tools := newTestTools()

	res := callTool(t, tools.ClassifyDocument, map[string]any{
		"filename": "notes.txt",
		"text":     "university lab assignment methodology",
	})
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}

	var decision domain.Decision
	if err := json.Unmarshal([]byte(resultText(t, res)), &decision); err != nil {
		t.Fatalf("decode decision: %v", err)
	}
	if decision.Category != domain.CategoryAcademic || decision.Stage != domain.StageKeywordScore {
		t.Fatalf("unexpected decision %+v", decision)
	}
}

func TestClassifyDocumentWithoutTextFallsBackToExtension(t *testing.T) {
	tools := newTestTools()

	res := callTool(t, tools.ClassifyDocument, map[string]any{"filename": "data.xyz"})

	var decision domain.Decision
	if err := json.Unmarshal([]byte(resultText(t, res)), &decision); err != nil {
		t.Fatalf("decode decision: %v", err)
	}
	if decision.Category != domain.CategoryOthers || decision.Stage != domain.StageExtensionNoText {
		t.Fatalf("unexpected decision %+v", decision)
	}
}

func TestClassifyDocumentRequiresFilename(t *testing.T) {
	tools := newTestTools()

	res := callTool(t, tools.ClassifyDocument, map[string]any{"text": "anything"})
	if !res.IsError {
		t.Fatal("expected tool error for missing filename")
	}
}

func TestListCategories(t *testing.T) {
	tools := newTestTools()

	res := callTool(t, tools.ListCategories, nil)

	var payload struct {
		Categories []domain.Category `json:"categories"`
		Fallback   domain.Category   `json:"fallback"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &payload); err != nil {
		t.Fatalf("decode categories: %v", err)
	}
	if len(payload.Categories) == 0 {
		t.Fatal("expected categories")
	}
	if payload.Fallback != domain.CategoryOthers {
		t.Fatalf("expected Others fallback, got %q", payload.Fallback)
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	s := NewServer(newTestTools())
	tools := s.ListTools()
	for _, name := range []string{"classify_document", "list_categories"} {
		if _, ok := tools[name]; !ok {
			t.Fatalf("tool %q not registered", name)
		}
	}
}
