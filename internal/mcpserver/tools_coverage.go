package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/swagsync/swagsync/report"
	"github.com/swagsync/swagsync/spec"
)

type coverageInput struct {
	scanInput
	Swagger string `json:"swagger" jsonschema:"Path to the swagger document"`
}

func handleCoverage(_ context.Context, _ *mcp.CallToolRequest, input coverageInput) (*mcp.CallToolResult, report.Summary, error) {
	doc, err := spec.Load(input.Swagger)
	if err != nil {
		return errResult(err), report.Summary{}, nil
	}
	results, err := input.runScan()
	if err != nil {
		return errResult(err), report.Summary{}, nil
	}
	return nil, report.Build(doc, results.endpoints, results.components), nil
}
