// Package severity provides the severity levels attached to sync findings.
//
// Findings reported by the check and sync flows carry one of four levels,
// ordered from least to most severe: Info < Warning < Error < Critical.
package severity

// Severity indicates how serious a sync finding is.
type Severity int

const (
	// SeverityInfo is a non-actionable notice, such as a merge change note.
	SeverityInfo Severity = iota

	// SeverityWarning covers degradations the scan recovered from: skipped
	// unparseable files, unresolvable route paths, or method mismatches in
	// non-strict mode.
	SeverityWarning

	// SeverityError indicates drift that check mode fails on: a changed
	// operation, an orphaned path, or an orphaned component.
	SeverityError

	// SeverityCritical indicates an authoring error that aborts the scan,
	// such as a documentation block that does not parse as a YAML mapping.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}
