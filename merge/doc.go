// Package merge reconciles scanned endpoints and component schemas against a
// swagger document: it builds the canonical operation object for each
// endpoint, overwrites drifted entries in place, records human-readable
// change notes with line-level diffs, and reports orphaned paths and
// components that no longer have a source counterpart.
package merge
