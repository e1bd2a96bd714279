package spec

import (
	"context"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Validate checks the document against the OpenAPI 3 specification using
// kin-openapi. It is an optional post-merge safety net: the merge engine
// itself assumes $ref targets are valid and never checks them.
//
// Documents that do not declare an OpenAPI 3.x version are rejected up
// front, since validation semantics differ across major versions.
func Validate(ctx context.Context, doc *Document) error {
	if !strings.HasPrefix(doc.OpenAPI, "3.") {
		return fmt.Errorf("validation requires an OpenAPI 3.x document, got %q", doc.OpenAPI)
	}

	data, err := Marshal(doc)
	if err != nil {
		return err
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	parsed, err := loader.LoadFromData(data)
	if err != nil {
		return fmt.Errorf("document failed to load for validation: %w", err)
	}
	if err := parsed.Validate(ctx); err != nil {
		return fmt.Errorf("document failed validation: %w", err)
	}
	return nil
}
