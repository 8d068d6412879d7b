package sessions

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/recaptools/recap/pkg/backends"
	"github.com/recaptools/recap/pkg/models"
)

// ContextWidth is the fixed rune width of every emitted context snippet.
const ContextWidth = 40

// Scanner counts case-insensitive query occurrences across a session's
// full text and returns a context snippet around the first match. Rank
// falls back to the descriptor's snippet surfaces when nil.
type Scanner func(d *models.SessionDescriptor, query string) (int, string)

// Rank filters descriptors to the horizon, scores them against the query,
// and orders them deterministically: match count descending, recency
// descending, then path ascending so that identical inputs always produce
// identical output.
//
// With a query, descriptors with zero matches are dropped. Without one,
// every surviving descriptor is returned with a zero count.
func Rank(descriptors []*models.SessionDescriptor, query string, horizon Horizon, now time.Time, scan Scanner) []models.RankedResult {
	var results []models.RankedResult
	needle := strings.ToLower(strings.TrimSpace(query))

	for _, d := range descriptors {
		if !horizon.Contains(d.Recency(), now) {
			continue
		}

		if needle == "" {
			results = append(results, models.RankedResult{Descriptor: d})
			continue
		}

		var count int
		var context string
		if scan != nil {
			count, context = scan(d, query)
		} else {
			count, context = snippetMatches(d, needle)
		}
		if count == 0 {
			continue
		}
		if context == "" {
			context = d.LatestUserSnippet
		}
		results = append(results, models.RankedResult{
			Descriptor:   d,
			MatchCount:   count,
			MatchContext: context,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].MatchCount != results[j].MatchCount {
			return results[i].MatchCount > results[j].MatchCount
		}
		ri, rj := results[i].Descriptor.Recency(), results[j].Descriptor.Recency()
		if !ri.Equal(rj) {
			return ri.After(rj)
		}
		return results[i].Descriptor.Path < results[j].Descriptor.Path
	})
	return results
}

// snippetMatches counts query occurrences over the descriptor's snippet
// surfaces, the cheap default when no full-text scanner is wired.
func snippetMatches(d *models.SessionDescriptor, needle string) (int, string) {
	count := strings.Count(strings.ToLower(d.LatestUserSnippet), needle)
	if d.EarliestUserSnippet != d.LatestUserSnippet {
		count += strings.Count(strings.ToLower(d.EarliestUserSnippet), needle)
	}
	if count == 0 {
		return 0, ""
	}
	context := matchContext(d.LatestUserSnippet, needle)
	if context == "" {
		context = matchContext(d.EarliestUserSnippet, needle)
	}
	return count, context
}

// FullTextScanner builds a Scanner that parses the complete session and
// counts matches over every text-bearing event, lazily per descriptor.
func FullTextScanner(parsers map[models.Backend]backends.Parser) Scanner {
	return func(d *models.SessionDescriptor, query string) (int, string) {
		parser, ok := parsers[d.Backend]
		if !ok {
			return 0, ""
		}
		events, err := backends.ParseFile(parser, d.Path)
		if err != nil {
			return 0, ""
		}

		needle := strings.ToLower(strings.TrimSpace(query))
		total := 0
		context := ""
		for _, event := range events {
			if !event.HasText() {
				continue
			}
			total += strings.Count(strings.ToLower(event.Text), needle)
			if context == "" {
				context = matchContext(event.Text, needle)
			}
		}
		return total, context
	}
}

// matchContext returns a short window of text around the first needle
// occurrence, or empty when absent.
func matchContext(text, needle string) string {
	lowered := strings.ToLower(text)
	idx := strings.Index(lowered, needle)
	if idx < 0 {
		return ""
	}
	runes := []rune(text)
	// The byte index is valid only in the lowered string; lowercasing can
	// change a rune's byte length. Rune offsets agree between the two
	// strings because ToLower maps rune to rune.
	runeIdx := utf8.RuneCountInString(lowered[:idx])
	start := runeIdx - 25
	if start < 0 {
		start = 0
	}
	end := runeIdx + utf8.RuneCountInString(needle) + 25
	if end > len(runes) {
		end = len(runes)
	}
	return clampSnippet(string(runes[start:end]), 60)
}

// Contexts returns the two display snippet columns for a ranked result:
// (latest, earliest) without a query, (latest, first match context) with
// one. Both columns are exactly ContextWidth runes.
func Contexts(r models.RankedResult, queried bool) (string, string) {
	primary := FormatContext(r.Descriptor.LatestUserSnippet)
	if queried {
		secondary := r.MatchContext
		if secondary == "" {
			secondary = r.Descriptor.LatestUserSnippet
		}
		return primary, FormatContext(secondary)
	}
	secondary := r.Descriptor.EarliestUserSnippet
	if secondary == "" {
		secondary = r.Descriptor.LatestUserSnippet
	}
	return primary, FormatContext(secondary)
}

// FormatContext fits text into exactly ContextWidth runes: newlines
// collapse to spaces, overlong text ends in an ellipsis marker, short text
// is right-padded.
func FormatContext(text string) string {
	clean := clampSnippet(text, ContextWidth)
	if pad := ContextWidth - len([]rune(clean)); pad > 0 {
		clean += strings.Repeat(" ", pad)
	}
	return clean
}

// clampSnippet flattens whitespace and cuts text to at most width runes,
// ending in "..." when truncated.
func clampSnippet(text string, width int) string {
	clean := strings.Join(strings.Fields(text), " ")
	runes := []rune(clean)
	if len(runes) <= width {
		return clean
	}
	return string(runes[:width-3]) + "..."
}
