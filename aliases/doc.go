// Package aliases discovers Python type-alias declarations and expands them
// inside annotations before schema inference.
//
// Two declaration spellings are recognized in top-level assignments whose
// declared type is TypeAlias: a plain type expression, and a
// component_alias(...) factory call carrying component metadata
// (name, description, default, managed/anyOf flags, extensions). Aliases
// imported with "from X import name" are resolved across files, relative or
// project-root absolute, and cached per resolved path.
//
// All state is owned by a [Registry] constructed per scan session; there are
// no package-level tables, so tests and repeated invocations start fresh.
package aliases
