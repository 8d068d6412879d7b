// Package sessions implements candidate discovery and deterministic
// ranking over session descriptors.
package sessions

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/recaptools/recap/config"
	"github.com/recaptools/recap/logging"
	"github.com/recaptools/recap/pkg/backends"
	"github.com/recaptools/recap/pkg/models"
)

// DefaultLimit caps descriptors per backend, matching the point where a
// discovery listing stops being scannable.
const DefaultLimit = 50

// geminiProjectLimit bounds the project directories scanned for Gemini,
// which keeps one directory per project hash.
const geminiProjectLimit = 20

// ScanResult carries the discovered descriptors plus the number of
// candidates skipped because they could not be read or parsed. Skips never
// abort a scan; partial results beat none.
type ScanResult struct {
	Descriptors []*models.SessionDescriptor
	Skipped     int
}

// DiscoverOptions controls a discovery scan.
type DiscoverOptions struct {
	// Backend restricts the scan to one backend; empty scans all backends
	// whose storage root exists.
	Backend models.Backend

	// Cutoff drops candidates whose mtime is older. Zero disables.
	Cutoff time.Time

	// Limit caps descriptors per backend; 0 means DefaultLimit.
	Limit int
}

// Discover scans the storage roots for candidate session files and builds
// a descriptor per readable candidate, newest first. Unreadable or
// unparseable candidates are counted and skipped with a warning.
func Discover(roots config.Roots, opts DiscoverOptions) *ScanResult {
	log := logging.NewLogger("discovery")
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	result := &ScanResult{}
	for _, parser := range backends.All(roots) {
		backend := parser.Backend()
		if opts.Backend != "" && backend != opts.Backend {
			continue
		}
		root := roots[backend]
		if _, err := os.Stat(root); err != nil {
			if opts.Backend == "" {
				continue
			}
			// An explicitly requested backend with no root is still a scan
			// over zero candidates, not an error.
			continue
		}

		candidates := listCandidates(backend, root, opts.Cutoff)
		kept := 0
		for _, path := range candidates {
			if kept >= limit {
				break
			}
			descriptor, err := parser.Describe(path)
			if err != nil {
				result.Skipped++
				log.WithError(err).WithField("path", path).Warn("skipping unreadable session")
				continue
			}
			// Sessions with no user text render to nothing useful in a
			// discovery listing.
			if descriptor.LatestUserSnippet == "" {
				continue
			}
			result.Descriptors = append(result.Descriptors, descriptor)
			kept++
		}
	}

	if result.Skipped > 0 {
		log.WithField("skipped", result.Skipped).Warn("some sessions could not be read")
	}
	return result
}

// listCandidates returns candidate file paths for a backend root, newest
// mtime first.
func listCandidates(backend models.Backend, root string, cutoff time.Time) []string {
	type candidate struct {
		path  string
		mtime time.Time
	}
	var found []candidate

	add := func(path string, info os.FileInfo) {
		if !cutoff.IsZero() && info.ModTime().Before(cutoff) {
			return
		}
		found = append(found, candidate{path: path, mtime: info.ModTime()})
	}

	switch backend {
	case models.BackendGemini:
		// Gemini keeps one directory per project hash with sessions under
		// chats/. Only the most recently touched projects are worth opening.
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil
		}
		type project struct {
			dir   string
			mtime time.Time
		}
		var projects []project
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			projects = append(projects, project{
				dir:   filepath.Join(root, entry.Name()),
				mtime: info.ModTime(),
			})
		}
		sort.Slice(projects, func(i, j int) bool {
			if !projects[i].mtime.Equal(projects[j].mtime) {
				return projects[i].mtime.After(projects[j].mtime)
			}
			return projects[i].dir < projects[j].dir
		})
		if len(projects) > geminiProjectLimit {
			projects = projects[:geminiProjectLimit]
		}
		for _, p := range projects {
			matches, err := filepath.Glob(filepath.Join(p.dir, "chats", "session-*.json"))
			if err != nil {
				continue
			}
			for _, path := range matches {
				info, err := os.Stat(path)
				if err != nil {
					continue
				}
				add(path, info)
			}
		}

	default:
		_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				return nil
			}
			if !strings.HasSuffix(info.Name(), ".jsonl") {
				return nil
			}
			// Claude agent sidecar transcripts shadow the main session.
			if backend == models.BackendClaude && strings.Contains(info.Name(), "agent-") {
				return nil
			}
			add(path, info)
			return nil
		})
	}

	sort.Slice(found, func(i, j int) bool {
		if !found[i].mtime.Equal(found[j].mtime) {
			return found[i].mtime.After(found[j].mtime)
		}
		return found[i].path < found[j].path
	})
	paths := make([]string, len(found))
	for i, c := range found {
		paths[i] = c.path
	}
	return paths
}
