// Package mcpserver implements an MCP (Model Context Protocol) server that
// exposes swagsync capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/swagsync/swagsync"
)

const serverInstructions = `swagsync MCP server — scans Python handler and model trees, infers OpenAPI schemas from type annotations, and reports swagger coverage and drift.

Tools take handler/model/swagger locations per call; nothing is cached between calls. The sync tool is always a dry run: it returns the merged document instead of writing it.`

// Run starts the MCP server over stdio and blocks until the client
// disconnects or the context is cancelled.
func Run(ctx context.Context) error {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "swagsync", Version: swagsync.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "scan_endpoints",
		Description: "Scan a Python handler tree for routing decorators and embedded documentation blocks. Returns one record per (path, method) plus the explicitly ignored routes. Use strict=true to fail on documentation blocks declaring methods absent from the decorator.",
	}, handleScanEndpoints)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scan_models",
		Description: "Scan a Python model tree for component-decorated classes and infer their OpenAPI schemas from type annotations. Returns a summary per component plus the names excluded from swagger output.",
	}, handleScanModels)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "coverage",
		Description: "Compute documentation coverage for a handler tree against a swagger document: documented/discovered endpoint counts, ignored routes, component counts, orphans, and the coverage percentage.",
	}, handleCoverage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "orphans",
		Description: "Report swagger entries with no source counterpart: each (path, method) with no scanned handler, and each component schema missing from the model scan. Component orphans are only reported when a models directory is given.",
	}, handleOrphans)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sync",
		Description: "Preview a sync: scan handlers and models, merge into the swagger document in memory, and return the change notes, per-entry diffs, and the merged document. Never writes to disk.",
	}, handleSync)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}
