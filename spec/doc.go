// Package spec provides the in-memory swagger document model used by the
// scanners and the merge engine, plus YAML persistence.
//
// The model is deliberately asymmetric: component schemas are fully typed
// ([Schema]) because the inference engine builds them field by field, while
// path operations are generic mappings ([Operation]) because they originate
// from author-supplied YAML documentation blocks and are compared and merged
// structurally, never interpreted.
//
// Ownership of a loaded [Document] is transient: the merge engine mutates it
// in place and the caller decides whether to persist or discard it.
package spec
