// Package pysrc provides purely syntactic access to Python source files via
// tree-sitter.
//
// The analyzed code is never imported or executed: every extraction here is
// structural pattern matching over the parse tree plus text manipulation of
// the raw source. The package exposes the handful of Python shapes the
// scanners care about (decorated classes and methods, docstrings, top-level
// assignments, imports) and the delimiter/marker registry for embedded
// documentation blocks.
package pysrc
