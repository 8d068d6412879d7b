package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/recaptools/recap/errors"
	"github.com/recaptools/recap/pkg/backends"
	"github.com/recaptools/recap/pkg/models"
	"github.com/recaptools/recap/pkg/sessions"
)

type listFlags struct {
	backend string
	query   string
	since   string
	allTime bool
	tsv     bool
	limit   int
}

// NewListCmd discovers recent sessions across the storage roots and
// prints them ranked, newest and most relevant first.
func NewListCmd() *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent sessions across all backends",
		Long: `List recent sessions across all backends, ranked by match count and
recency. With --query, sessions are ranked by full-text match count and
sessions without a match are dropped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := NewErrorHandler(cmd.Flags().Changed("debug"))
			if err := runList(cmd, flags); err != nil {
				return handler.Handle(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.backend, "backend", "", "Restrict to one backend (claude|codex|gemini)")
	cmd.Flags().StringVarP(&flags.query, "query", "q", "", "Rank sessions by full-text match count")
	cmd.Flags().StringVar(&flags.since, "since", "", "Recency horizon (e.g. 12h, 1d, 2w; default: 1w)")
	cmd.Flags().BoolVar(&flags.allTime, "all-time", false, "Disable the recency horizon")
	cmd.Flags().BoolVar(&flags.tsv, "tsv", false, "Print discovery results as TSV (script-friendly)")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "Max sessions per backend (default 50)")
	cmd.MarkFlagsMutuallyExclusive("since", "all-time")

	return cmd
}

func runList(cmd *cobra.Command, flags *listFlags) error {
	log := GetLogger(cmd, "list")

	_, roots, err := LoadConfig(cmd)
	if err != nil {
		return err
	}

	var backend models.Backend
	if flags.backend != "" {
		backend = models.Backend(flags.backend)
		if !backend.Valid() {
			return errors.New(errors.ErrCodeInvalidInput, "unsupported backend").
				WithDetail("backend", flags.backend)
		}
	}

	horizon := sessions.DefaultHorizon
	switch {
	case flags.allTime:
		horizon = sessions.AllTime()
	case flags.since != "":
		horizon, err = sessions.ParseHorizon(flags.since)
		if err != nil {
			return err
		}
	}

	now := time.Now()
	scan := sessions.Discover(roots, sessions.DiscoverOptions{
		Backend: backend,
		Cutoff:  horizon.Cutoff(now),
		Limit:   flags.limit,
	})
	if scan.Skipped > 0 {
		log.WithField("skipped", scan.Skipped).Debug("skipped unreadable sessions")
	}

	var scanner sessions.Scanner
	if flags.query != "" {
		parsers := make(map[models.Backend]backends.Parser)
		for _, p := range backends.All(roots) {
			parsers[p.Backend()] = p
		}
		scanner = sessions.FullTextScanner(parsers)
	}
	ranked := sessions.Rank(scan.Descriptors, flags.query, horizon, now, scanner)

	if flags.tsv {
		emitTSV(cmd.OutOrStdout(), ranked)
		return nil
	}

	if len(ranked) == 0 {
		fmt.Fprintf(os.Stderr, "No sessions found within %s.\n", horizon.Label)
		return nil
	}

	queried := flags.query != ""
	styled := isatty.IsTerminal(os.Stdout.Fd())
	for _, r := range ranked {
		fmt.Fprintln(cmd.OutOrStdout(), listRow(r, queried, styled))
	}
	return nil
}

// listRow formats one ranked session as a fixed-width line:
// "CLD 02-08 14:20 999.9KB  12 abc12345  Primary... | Secondary..."
func listRow(r models.RankedResult, queried, styled bool) string {
	d := r.Descriptor
	hits := "   "
	if queried {
		hits = fmt.Sprintf("%3d", r.MatchCount)
	}
	primary, secondary := sessions.Contexts(r, queried)

	abbr := d.Backend.Abbr()
	stamp := formatListTime(d.Recency())
	size := FormatSize(d.SizeBytes)
	id := d.DisplayID(8)

	if styled {
		abbr = backendStyle(d.Backend).Render(abbr)
		stamp = mutedStyle.Render(stamp)
		id = idStyle.Render(id)
		if queried && r.MatchCount > 0 {
			hits = hitStyle.Render(hits)
		}
	}
	return fmt.Sprintf("%s %s %s %s %s  %s | %s", abbr, stamp, size, hits, id, primary, secondary)
}

var (
	mutedStyle  = lipgloss.NewStyle().Faint(true)
	idStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	hitStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	claudeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	codexStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	geminiStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

func backendStyle(b models.Backend) lipgloss.Style {
	switch b {
	case models.BackendCodex:
		return codexStyle
	case models.BackendGemini:
		return geminiStyle
	default:
		return claudeStyle
	}
}

// emitTSV prints one header row plus one row per session, tab-separated.
// Tabs and newlines inside snippets are flattened so rows stay one line.
func emitTSV(w io.Writer, ranked []models.RankedResult) {
	fmt.Fprintln(w, "backend\ttimestamp\tsize_bytes\tsize_display\tmatch_count\tsession_id\tpath\tsummary")
	for _, r := range ranked {
		d := r.Descriptor
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%s\t%s\t%s\n",
			d.Backend,
			formatTSVTime(d.LastModified),
			d.SizeBytes,
			strings.TrimSpace(FormatSize(d.SizeBytes)),
			r.MatchCount,
			strings.TrimSpace(d.DisplayID(8)),
			d.Path,
			tsvSummary(d.LatestUserSnippet),
		)
	}
}

func tsvSummary(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) > 50 {
		return string(runes[:47]) + "..."
	}
	return s
}
