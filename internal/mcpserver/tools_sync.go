package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/swagsync/swagsync/merge"
	"github.com/swagsync/swagsync/spec"
)

type syncInput struct {
	scanInput
	Swagger string `json:"swagger" jsonschema:"Path to the swagger document"`
}

type syncOutput struct {
	Changed bool                `json:"changed"`
	Notes   []string            `json:"notes,omitempty"`
	Diffs   map[string][]string `json:"diffs,omitempty"`
	// Document is the merged document as YAML. The file on disk is never
	// touched.
	Document string `json:"document"`
}

func handleSync(_ context.Context, _ *mcp.CallToolRequest, input syncInput) (*mcp.CallToolResult, syncOutput, error) {
	doc, err := spec.Load(input.Swagger)
	if err != nil {
		return errResult(err), syncOutput{}, nil
	}
	results, err := input.runScan()
	if err != nil {
		return errResult(err), syncOutput{}, nil
	}

	res := merge.Merge(doc, results.endpoints.Endpoints)
	if results.components != nil {
		res.Merge(merge.MergeComponents(doc, results.components))
	}

	data, err := spec.Marshal(doc)
	if err != nil {
		return errResult(err), syncOutput{}, nil
	}
	output := syncOutput{
		Changed:  res.Changed,
		Notes:    res.Notes,
		Document: string(data),
	}
	if len(res.Diffs) > 0 {
		output.Diffs = res.Diffs
	}
	return nil, output, nil
}
