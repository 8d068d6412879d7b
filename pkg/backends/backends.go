// Package backends maps the three supported session log formats onto the
// canonical event model.
//
// Each backend implements Parser with its own mapping table but an
// identical output contract: an ordered event sequence in which no
// unrecognized block is ever dropped. Unrecognized-but-valid JSON becomes
// an unknown event carrying the raw payload; for line-delimited formats a
// line that is not valid JSON becomes an unknown event carrying the raw
// line text and an error marker.
package backends

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/recaptools/recap/config"
	"github.com/recaptools/recap/errors"
	"github.com/recaptools/recap/pkg/models"
)

// Parser converts raw session file content into canonical events.
type Parser interface {
	// Backend identifies the source format this parser handles.
	Backend() models.Backend

	// Parse converts raw content into an ordered event sequence. The path
	// argument is used only for error context.
	Parse(r io.Reader, path string) ([]models.Event, error)

	// CanInfer reports whether path lives under this backend's storage root.
	CanInfer(path string) bool

	// Describe extracts session metadata without materializing the full
	// event sequence. Cheaper than Parse; tool payloads are never decoded.
	Describe(path string) (*models.SessionDescriptor, error)
}

// New returns the parser for a backend.
func New(backend models.Backend, roots config.Roots) (Parser, error) {
	switch backend {
	case models.BackendClaude:
		return &claudeParser{root: roots[models.BackendClaude]}, nil
	case models.BackendCodex:
		return &codexParser{root: roots[models.BackendCodex]}, nil
	case models.BackendGemini:
		return &geminiParser{root: roots[models.BackendGemini]}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported backend").
		WithDetail("backend", string(backend))
}

// All returns parsers for every supported backend in display order.
func All(roots config.Roots) []Parser {
	parsers := make([]Parser, 0, len(models.SupportedBackends))
	for _, backend := range models.SupportedBackends {
		p, _ := New(backend, roots)
		parsers = append(parsers, p)
	}
	return parsers
}

// Infer picks the backend for a path by matching it against the known
// storage-root conventions. Failure is fatal for the caller and names both
// the path and every convention that was tried.
func Infer(path string, roots config.Roots) (Parser, error) {
	for _, p := range All(roots) {
		if p.CanInfer(path) {
			return p, nil
		}
	}
	return nil, errors.BackendInference(path, roots.Strings())
}

// ParseFile opens and parses a session file. A session that parses to zero
// events is reported as an empty-session error.
func ParseFile(p Parser, path string) ([]models.Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.UnreadableFile(path, err)
	}
	defer file.Close()

	events, err := p.Parse(file, path)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, errors.EmptySession(path)
	}
	return events, nil
}

// underRoot reports whether path is inside root.
func underRoot(path, root string) bool {
	if root == "" {
		return false
	}
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}
