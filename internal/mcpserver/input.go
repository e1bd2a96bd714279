package mcpserver

import (
	"fmt"

	"github.com/swagsync/swagsync/aliases"
	"github.com/swagsync/swagsync/endpoints"
	"github.com/swagsync/swagsync/models"
	"github.com/swagsync/swagsync/spec"
)

// scanInput holds the source locations shared by every scanning tool.
type scanInput struct {
	Handlers       string   `json:"handlers"                  jsonschema:"Handler directory to scan"`
	Models         string   `json:"models,omitempty"          jsonschema:"Model directory to scan; omit to skip model scanning"`
	ProjectRoot    string   `json:"project_root,omitempty"    jsonschema:"Root for absolute-import alias resolution; defaults to the handlers directory"`
	Strict         bool     `json:"strict,omitempty"          jsonschema:"Fail on documentation blocks declaring methods absent from the decorator"`
	IgnorePatterns []string `json:"ignore_patterns,omitempty" jsonschema:"Glob patterns for handler files to skip"`
}

// scanResults bundles the outcome of one full source scan.
type scanResults struct {
	endpoints  *endpoints.Result
	components map[string]*spec.Schema
	excluded   []string
}

// runScan executes the endpoint scan and, when a models directory was given,
// the model scan, sharing one alias registry.
func (in scanInput) runScan() (*scanResults, error) {
	if in.Handlers == "" {
		return nil, fmt.Errorf("handlers directory is required")
	}
	projectRoot := in.ProjectRoot
	if projectRoot == "" {
		projectRoot = in.Handlers
	}

	es := endpoints.NewScanner()
	defer es.Close()
	es.Strict = in.Strict
	es.IgnorePatterns = in.IgnorePatterns

	scanned, err := es.Scan(in.Handlers)
	if err != nil {
		return nil, err
	}

	results := &scanResults{endpoints: scanned}
	if in.Models != "" {
		reg := aliases.NewRegistry(projectRoot)
		defer reg.Close()

		ms := models.NewScanner()
		defer ms.Close()
		ms.Aliases = reg

		modelResult, err := ms.Scan(in.Models)
		if err != nil {
			return nil, err
		}
		results.components = modelResult.Components
		results.excluded = modelResult.Excluded
	}
	return results, nil
}
