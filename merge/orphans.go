package merge

import (
	"sort"

	"github.com/swagsync/swagsync/endpoints"
	"github.com/swagsync/swagsync/pysrc"
	"github.com/swagsync/swagsync/spec"
)

// PathOrphan identifies a documented operation with no scanned handler.
type PathOrphan struct {
	Path   string
	Method string
}

// DetectOrphans reports document entries without a source counterpart: every
// (path, method) with no matching endpoint, exactly once, and every
// component schema name absent from the scanned component mapping. Component
// orphans are only checked when a component mapping is supplied; passing nil
// skips them.
func DetectOrphans(doc *spec.Document, eps []endpoints.Endpoint, components map[string]*spec.Schema) ([]PathOrphan, []string) {
	implemented := make(map[PathOrphan]bool, len(eps))
	for _, ep := range eps {
		implemented[PathOrphan{Path: ep.Path, Method: ep.Method}] = true
	}

	var paths []PathOrphan
	for _, path := range doc.SortedPaths() {
		item := doc.Paths[path]
		methods := make([]string, 0, len(item))
		for method := range item {
			// Path items may carry non-operation keys like parameters.
			if pysrc.IsHTTPMethod(method) {
				methods = append(methods, method)
			}
		}
		sort.Strings(methods)
		for _, method := range methods {
			key := PathOrphan{Path: path, Method: method}
			if !implemented[key] {
				paths = append(paths, key)
			}
		}
	}

	var orphanComponents []string
	if components != nil && doc.Components != nil {
		for _, name := range spec.SortedNames(doc.Components.Schemas) {
			if _, ok := components[name]; !ok {
				orphanComponents = append(orphanComponents, name)
			}
		}
	}
	return paths, orphanComponents
}
