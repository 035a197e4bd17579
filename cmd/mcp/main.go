package main

import (
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/ksrishi31-git/smart-document-organizer/internal/adapters/mcp"
	"github.com/ksrishi31-git/smart-document-organizer/internal/bootstrap"
	"github.com/ksrishi31-git/smart-document-organizer/internal/config"
	"github.com/ksrishi31-git/smart-document-organizer/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	// stdout carries the MCP protocol, so logs go to stderr.
	slog.SetDefault(logging.NewStderrLogger("organizer-mcp", cfg.LogLevel))

	classifier, catalog, err := bootstrap.NewClassifier(cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}

	s := mcpadapter.NewServer(mcpadapter.NewTools(classifier, catalog))
	if err := server.ServeStdio(s); err != nil {
		slog.Error("mcp_server_failed", "error", err)
		os.Exit(1)
	}
}
