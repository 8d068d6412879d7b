package errors

import "fmt"

// ParseFailure creates a file-scoped parse error. Used only for formats
// where a malformed top-level document leaves nothing to resume into
// (Gemini's single JSON object); line-delimited formats recover per line.
func ParseFailure(path string, offset int64, cause error) *RecapError {
	return Wrap(cause, ErrCodeParseFailure,
		fmt.Sprintf("failed to parse %s at byte offset %d", path, offset)).
		WithDetail("path", path).
		WithDetail("offset", offset)
}

// UnreadableFile creates a discovery-time file access error
func UnreadableFile(path string, cause error) *RecapError {
	return Wrap(cause, ErrCodeUnreadableFile, fmt.Sprintf("cannot read %s", path)).
		WithDetail("path", path)
}

// BackendInference creates an error naming the attempted path and every
// known storage-root convention
func BackendInference(path string, roots map[string]string) *RecapError {
	err := New(ErrCodeBackendInference,
		fmt.Sprintf("cannot infer backend for %s: path matches no known storage root", path)).
		WithDetail("path", path)
	for backend, root := range roots {
		err = err.WithDetail("root."+backend, root)
	}
	return err
}

// EmptySession creates an error for a session that parsed to zero events
func EmptySession(path string) *RecapError {
	return New(ErrCodeEmptySession, fmt.Sprintf("session %s contains no events", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *RecapError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}
