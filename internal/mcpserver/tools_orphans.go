package mcpserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/swagsync/swagsync/merge"
	"github.com/swagsync/swagsync/spec"
)

type orphansInput struct {
	scanInput
	Swagger string `json:"swagger" jsonschema:"Path to the swagger document"`
}

type orphansOutput struct {
	OrphanOperations []string `json:"orphan_operations,omitempty"`
	OrphanComponents []string `json:"orphan_components,omitempty"`
}

func handleOrphans(_ context.Context, _ *mcp.CallToolRequest, input orphansInput) (*mcp.CallToolResult, orphansOutput, error) {
	doc, err := spec.Load(input.Swagger)
	if err != nil {
		return errResult(err), orphansOutput{}, nil
	}
	results, err := input.runScan()
	if err != nil {
		return errResult(err), orphansOutput{}, nil
	}

	paths, components := merge.DetectOrphans(doc, results.endpoints.Endpoints, results.components)
	output := orphansOutput{
		OrphanOperations: makeSlice[string](len(paths)),
		OrphanComponents: components,
	}
	for _, o := range paths {
		output.OrphanOperations = append(output.OrphanOperations, strings.ToUpper(o.Method)+" "+o.Path)
	}
	return nil, output, nil
}
