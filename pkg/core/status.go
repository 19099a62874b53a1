package core

// SentinelStatus describes a step's completion sentinel on disk.
type SentinelStatus int

const (
	StatusMissing SentinelStatus = iota // Sentinel file does not exist
	StatusStale                         // Sentinel exists but a dependency is newer or missing
	StatusDone                          // Sentinel exists and is not older than any dependency
)

// String returns the string representation of SentinelStatus
func (s SentinelStatus) String() string {
	switch s {
	case StatusMissing:
		return "missing"
	case StatusStale:
		return "stale"
	case StatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// NeedsRun reports whether make would run the step again.
func (s SentinelStatus) NeedsRun() bool {
	return s != StatusDone
}

// ErrorCategory classifies the type of error for better reporting
type ErrorCategory int

const (
	ErrCategoryNone   ErrorCategory = iota // No error
	ErrCategoryGraph                       // Invalid step: empty target, empty command, duplicate target
	ErrCategoryIO                          // Build script could not be written
	ErrCategoryInput                       // Sample manifest could not be read or parsed
	ErrCategoryConfig                      // Invalid configuration or option
	ErrCategoryRemote                      // Remote listing failed
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryGraph:
		return "graph"
	case ErrCategoryIO:
		return "io"
	case ErrCategoryInput:
		return "input"
	case ErrCategoryConfig:
		return "config"
	case ErrCategoryRemote:
		return "remote"
	default:
		return "unknown"
	}
}
