// Package swagsync keeps a hand-authored OpenAPI/Swagger document synchronized
// with Python HTTP handler classes and data-model classes.
//
// swagsync scans handler source trees for routing decorators and embedded
// ">>>openapi" documentation blocks, scans model trees for component
// decorators, infers OpenAPI schema fragments from Python type annotations
// without ever importing or executing the analyzed code, merges the derived
// operations and component schemas into the swagger document, and reports
// coverage and drift.
//
// # Packages
//
//   - pysrc: tree-sitter based Python source parsing (classes, decorators,
//     docstrings, documentation-block extraction)
//   - typeinfer: type-annotation to OpenAPI schema inference (unions,
//     optionals, literals, containers, model references)
//   - aliases: type-alias discovery, cross-file resolution, and expansion
//   - endpoints: handler-tree scanning into normalized endpoint records
//   - models: model-tree scanning into named component schemas
//   - merge: reconciliation of scanned records against a swagger document,
//     with change notes, line diffs, and orphan detection
//   - spec: the in-memory swagger document model and YAML persistence
//   - report: coverage computation and JSON/text/markdown/XML/badge renderers
//   - config: configuration file loading and validation
//
// # Quick start
//
// Scan a handler tree and merge into a document:
//
//	doc, err := spec.Load("swagger.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	scanner := endpoints.NewScanner()
//	defer scanner.Close()
//	result, err := scanner.Scan("handlers")
//	if err != nil {
//		log.Fatal(err)
//	}
//	merged := merge.Merge(doc, result.Endpoints)
//	if merged.Changed {
//		_ = spec.Save("swagger.yaml", doc)
//	}
//
// All analysis is purely syntactic: the analyzed Python grammar is fixed and
// target source is treated as untrusted text, never evaluated.
package swagsync
