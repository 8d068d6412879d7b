package models

import "time"

// SessionDescriptor holds lightweight metadata about a candidate session
// file. It is built without materializing the full event sequence, so
// discovery over many files stays cheap. Constructed fresh per discovery
// run, never persisted, immutable once built.
type SessionDescriptor struct {
	Backend      Backend
	Path         string
	SessionID    string
	StartTime    time.Time
	LastModified time.Time
	SizeBytes    int64

	// LatestUserSnippet and EarliestUserSnippet are the last and first user
	// text fragments found in the session, untruncated.
	LatestUserSnippet   string
	EarliestUserSnippet string
}

// Recency returns the instant used for horizon filtering and recency
// ordering: the start time when known, otherwise the file mtime.
func (d *SessionDescriptor) Recency() time.Time {
	if !d.StartTime.IsZero() {
		return d.StartTime
	}
	return d.LastModified
}

// DisplayID returns the session id cut to width runes and left-justified,
// for aligned tabular output.
func (d *SessionDescriptor) DisplayID(width int) string {
	runes := []rune(d.SessionID)
	if len(runes) > width {
		runes = runes[:width]
	}
	id := string(runes)
	for pad := width - len(runes); pad > 0; pad-- {
		id += " "
	}
	return id
}

// RankedResult pairs a descriptor with its query match count and a
// fixed-width context snippet. Display-only; never persisted.
type RankedResult struct {
	Descriptor   *SessionDescriptor
	MatchCount   int
	MatchContext string
}
