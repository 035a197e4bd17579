// Package mcpadapter exposes the category classifier as MCP tools so agents
// can label text they already hold without uploading files.
package mcpadapter

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
	"github.com/ksrishi31-git/smart-document-organizer/internal/core/ports"
)

const (
	serverName    = "smart-document-organizer"
	serverVersion = "1.0.0"
)

type Tools struct {
	classifier ports.CategoryClassifier
	catalog    domain.Catalog
}

func NewTools(classifier ports.CategoryClassifier, catalog domain.Catalog) *Tools {
	return &Tools{classifier: classifier, catalog: catalog}
}

// NewServer registers the organizer tools on a fresh MCP server.
func NewServer(tools *Tools) *server.MCPServer {
	s := server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("classify_document",
		mcp.WithDescription("Pick the storage category for a document from its filename and extracted text."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Original file name, including extension.")),
		mcp.WithString("text", mcp.Description("Extracted document text; may be empty.")),
	), tools.ClassifyDocument)

	s.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the categories files can be organized into."),
	), tools.ListCategories)

	return s
}

func (t *Tools) ClassifyDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := req.RequireString("filename")
	if err != nil || strings.TrimSpace(filename) == "" {
		return mcp.NewToolResultError("filename is required"), nil
	}
	text := req.GetString("text", "")

	decision := t.classifier.Classify(ctx, text, filename)
	return jsonResult(decision)
}

func (t *Tools) ListCategories(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{
		"categories": t.catalog.Categories(),
		"fallback":   t.catalog.Fallback,
	})
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return mcp.NewToolResultError("encode result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}
