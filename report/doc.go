// Package report computes documentation-coverage figures for a scanned
// codebase and renders them as JSON, plain text, markdown, XML, or an SVG
// coverage badge.
package report
