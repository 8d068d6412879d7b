package models

// Backend identifies one of the supported source log formats.
type Backend string

const (
	BackendClaude Backend = "claude"
	BackendCodex  Backend = "codex"
	BackendGemini Backend = "gemini"
)

// SupportedBackends lists the closed set of backends in display order.
var SupportedBackends = []Backend{BackendClaude, BackendCodex, BackendGemini}

// Abbr returns the fixed three-letter column label for list output.
func (b Backend) Abbr() string {
	switch b {
	case BackendClaude:
		return "CLD"
	case BackendCodex:
		return "CDX"
	case BackendGemini:
		return "GMN"
	}
	if len(b) >= 3 {
		return string(b[:3])
	}
	return string(b)
}

// Valid reports whether b is one of the supported backends.
func (b Backend) Valid() bool {
	switch b {
	case BackendClaude, BackendCodex, BackendGemini:
		return true
	}
	return false
}
