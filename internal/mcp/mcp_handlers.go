package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gitattrib/gitattrib/core"
	"github.com/gitattrib/gitattrib/internal/contract"
	"github.com/gitattrib/gitattrib/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	client contract.GitClient
	mgr    contract.CacheManager
}

func (h *toolHandler) handleGetSettings(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	settings, err := core.GetSettings()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading settings failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(settings, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleSaveSettings(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc := request.GetString("settings", "")
	if doc == "" {
		return mcp.NewToolResultError("settings document is required"), nil
	}

	settings, err := schema.DecodeSettings([]byte(doc))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid settings: %v", err)), nil
	}

	result := core.SaveSettings(settings)
	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleExecuteAnalysis(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	settings, err := h.resolveSettings(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid settings: %v", err)), nil
	}

	if inputs := request.GetString("input_fstrs", ""); inputs != "" {
		settings.InputFstrs = splitInputs(inputs)
	}
	if level := request.GetInt("dryrun", -1); level >= 0 {
		settings.DryRun = level
	}

	result, err := core.ExecuteAnalysis(ctx, settings, h.client, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// resolveSettings picks the request's inline settings document when present,
// falling back to the persisted settings.
func (h *toolHandler) resolveSettings(request mcp.CallToolRequest) (schema.Settings, error) {
	if doc := request.GetString("settings", ""); doc != "" {
		return schema.DecodeSettings([]byte(doc))
	}
	return core.GetSettings()
}

func splitInputs(raw string) []string {
	var inputs []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			inputs = append(inputs, p)
		}
	}
	return inputs
}
