// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gitattrib/gitattrib/internal/contract"
)

// NewMCPServer initializes and configures the gitattrib MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(client contract.GitClient, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Gitattrib Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		client: client,
		mgr:    mgr,
	}

	// --- 1. Tool: get_settings ---
	s.AddTool(mcp.NewTool("get_settings",
		mcp.WithDescription("Return the persisted analysis settings, or the documented defaults when nothing has been saved."),
	), h.handleGetSettings)

	// --- 2. Tool: save_settings ---
	s.AddTool(mcp.NewTool("save_settings",
		mcp.WithDescription("Validate and persist an analysis settings document. Unknown fields are rejected."),
		mcp.WithString("settings", mcp.Description("Full settings document as a JSON object."), mcp.Required()),
	), h.handleSaveSettings)

	// --- 3. Tool: execute_analysis ---
	s.AddTool(mcp.NewTool("execute_analysis",
		mcp.WithDescription("Run contribution analysis over the configured repositories and return per-author and per-file statistics."),
		mcp.WithString("settings", mcp.Description("Settings document as a JSON object. Defaults to the persisted settings when omitted.")),
		mcp.WithString("input_fstrs", mcp.Description("Comma-separated repository paths, overriding the settings document.")),
		mcp.WithNumber("dryrun", mcp.Description("Dry-run level: 1 lists repositories and files without blaming, 2 validates settings only.")),
	), h.handleExecuteAnalysis)

	return s
}

// StartMCPServer starts the gitattrib MCP server on stdio.
func StartMCPServer(_ context.Context, client contract.GitClient, mgr contract.CacheManager) error {
	s := NewMCPServer(client, mgr)
	return server.ServeStdio(s)
}
