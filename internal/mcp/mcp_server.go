// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/cleanscore/core"
	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the cleanscore MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, orch *core.Orchestrator, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Cleanscore Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		orch:    orch,
		mgr:     mgr,
	}

	// --- 1. Tool: analyze_commit ---
	s.AddTool(mcp.NewTool("analyze_commit",
		mcp.WithDescription("Rate the clean code quality of every source file changed by a commit and store the result."),
		mcp.WithString("commit_id", mcp.Description("Full or abbreviated commit hash."), mcp.Required()),
	), h.handleAnalyzeCommit)

	// --- 2. Tool: get_commit_analysis ---
	s.AddTool(mcp.NewTool("get_commit_analysis",
		mcp.WithDescription("Return the stored analysis of a commit, including file ratings and suggestions."),
		mcp.WithString("commit_id", mcp.Description("Full or abbreviated commit hash."), mcp.Required()),
	), h.handleGetCommitAnalysis)

	// --- 3. Tool: list_commit_analyses ---
	s.AddTool(mcp.NewTool("list_commit_analyses",
		mcp.WithDescription("List stored commit analyses, newest first."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
		mcp.WithString("language", mcp.Description("Only return commits whose dominant language matches.")),
	), h.handleListCommitAnalyses)

	// --- 4. Tool: get_statistics ---
	s.AddTool(mcp.NewTool("get_statistics",
		mcp.WithDescription("Summarize every stored analysis: average, best and worst notes, quality tiers and languages."),
		mcp.WithString("language", mcp.Description("Only include commits whose dominant language matches.")),
	), h.handleGetStatistics)

	return s
}

// StartMCPServer starts the cleanscore MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, orch *core.Orchestrator, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, orch, mgr)
	return server.ServeStdio(s)
}
