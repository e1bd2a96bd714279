package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type scanEndpointsInput struct {
	scanInput
}

type endpointRecord struct {
	Path     string `json:"path"`
	Method   string `json:"method"`
	File     string `json:"file"`
	Function string `json:"function"`
}

type scanEndpointsOutput struct {
	EndpointCount int              `json:"endpoint_count"`
	IgnoredCount  int              `json:"ignored_count"`
	Endpoints     []endpointRecord `json:"endpoints,omitempty"`
	Ignored       []endpointRecord `json:"ignored,omitempty"`
}

func handleScanEndpoints(_ context.Context, _ *mcp.CallToolRequest, input scanEndpointsInput) (*mcp.CallToolResult, scanEndpointsOutput, error) {
	results, err := input.runScan()
	if err != nil {
		return errResult(err), scanEndpointsOutput{}, nil
	}

	scanned := results.endpoints
	output := scanEndpointsOutput{
		EndpointCount: len(scanned.Endpoints),
		IgnoredCount:  len(scanned.Ignored),
		Endpoints:     makeSlice[endpointRecord](len(scanned.Endpoints)),
		Ignored:       makeSlice[endpointRecord](len(scanned.Ignored)),
	}
	for _, ep := range scanned.Endpoints {
		output.Endpoints = append(output.Endpoints, endpointRecord{
			Path: ep.Path, Method: ep.Method, File: ep.File, Function: ep.Function,
		})
	}
	for _, ig := range scanned.Ignored {
		output.Ignored = append(output.Ignored, endpointRecord{
			Path: ig.Path, Method: ig.Method, File: ig.File, Function: ig.Function,
		})
	}
	return nil, output, nil
}
