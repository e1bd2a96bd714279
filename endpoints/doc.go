// Package endpoints scans a handler directory tree for routing-decorated
// methods and produces one normalized endpoint record per (path, method)
// pair, plus the list of routes explicitly excluded from swagger.
//
// Scanning is isolation-per-file: a file that fails to parse is warned about
// and skipped, never aborting the walk. Two conditions are fatal: a
// documentation block that is not a YAML mapping (an authoring error that
// makes the handler's contract untrustworthy), and, in strict mode, a
// method-rooted block key not declared on the routing decorator.
package endpoints
