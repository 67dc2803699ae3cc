package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/cleanscore/core"
	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	orch    *core.Orchestrator
	mgr     contract.StoreManager
}

func (h *toolHandler) handleAnalyzeCommit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	commitID := strings.TrimSpace(request.GetString("commit_id", ""))
	if commitID == "" {
		return mcp.NewToolResultError("commit_id is required"), nil
	}

	outcome, err := h.orch.AnalyzeCommit(ctx, commitID)
	if err != nil {
		if errors.Is(err, schema.ErrCommitNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("commit %s not found", commitID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	return jsonResult(outcome)
}

func (h *toolHandler) handleGetCommitAnalysis(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	commitID := strings.TrimSpace(request.GetString("commit_id", ""))
	if commitID == "" {
		return mcp.NewToolResultError("commit_id is required"), nil
	}

	analysis, err := h.orch.FindAnalysis(ctx, commitID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	if analysis == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no analysis stored for commit %s", commitID)), nil
	}
	return jsonResult(analysis)
}

func (h *toolHandler) handleListCommitAnalyses(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := schema.ListFilter{
		Limit:    h.baseCfg.ListLimit,
		Language: request.GetString("language", ""),
	}
	if l := request.GetInt("limit", 0); l > 0 {
		filter.Limit = l
	}

	summaries, err := h.list(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing failed: %v", err)), nil
	}
	return jsonResult(summaries)
}

func (h *toolHandler) handleGetStatistics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summaries, err := h.list(ctx, schema.ListFilter{Language: request.GetString("language", "")})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("statistics failed: %v", err)), nil
	}
	return jsonResult(core.BuildStatistics(summaries))
}

func (h *toolHandler) list(ctx context.Context, filter schema.ListFilter) ([]schema.AnalysisSummary, error) {
	if h.mgr == nil || h.mgr.GetAnalysisStore() == nil {
		return nil, errors.New("analysis store is not initialized")
	}
	summaries, err := h.mgr.GetAnalysisStore().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []schema.AnalysisSummary{}
	}
	return summaries, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
