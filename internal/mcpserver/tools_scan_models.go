package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/swagsync/swagsync/spec"
)

type scanModelsInput struct {
	scanInput
}

type componentRecord struct {
	Name          string `json:"name"`
	Shape         string `json:"shape"`
	PropertyCount int    `json:"property_count,omitempty"`
}

type scanModelsOutput struct {
	ComponentCount int               `json:"component_count"`
	Components     []componentRecord `json:"components,omitempty"`
	Excluded       []string          `json:"excluded,omitempty"`
}

func handleScanModels(_ context.Context, _ *mcp.CallToolRequest, input scanModelsInput) (*mcp.CallToolResult, scanModelsOutput, error) {
	if input.Models == "" {
		return errResult(fmt.Errorf("models directory is required")), scanModelsOutput{}, nil
	}
	results, err := input.runScan()
	if err != nil {
		return errResult(err), scanModelsOutput{}, nil
	}

	output := scanModelsOutput{
		ComponentCount: len(results.components),
		Components:     makeSlice[componentRecord](len(results.components)),
		Excluded:       results.excluded,
	}
	for _, name := range spec.SortedNames(results.components) {
		output.Components = append(output.Components, describeComponent(name, results.components[name]))
	}
	return nil, output, nil
}

func describeComponent(name string, schema *spec.Schema) componentRecord {
	rec := componentRecord{Name: name, PropertyCount: len(schema.Properties)}
	switch {
	case schema.Raw != nil:
		rec.Shape = "override"
	case len(schema.AllOf) > 0:
		rec.Shape = "allOf"
		for _, member := range schema.AllOf {
			rec.PropertyCount += len(member.Properties)
		}
	case len(schema.OneOf) > 0:
		rec.Shape = "oneOf"
	case len(schema.AnyOf) > 0:
		rec.Shape = "anyOf"
	case schema.IsRef():
		rec.Shape = "ref"
	default:
		rec.Shape = schema.Type
		if rec.Shape == "" {
			rec.Shape = "object"
		}
	}
	return rec
}
