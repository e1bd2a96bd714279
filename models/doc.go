// Package models scans a Python model directory for component-decorated
// classes and assembles named OpenAPI component schemas from them.
//
// Attribute schemas are inferred statically from the annotations on self
// assignments in __init__, expanded through the session alias registry and
// resolved with typeinfer. Class docstrings may carry an embedded
// documentation block supplying either per-property metadata or a verbatim
// full-schema override, and decorator metadata (property annotations,
// extension attributes, project-configured attribute aliases) is merged in.
// Detected inheritance becomes an allOf composition referencing the base
// components.
package models
