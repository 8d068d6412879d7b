package models

import (
	"encoding/json"
	"time"
)

// EventKind classifies a normalized unit of session content.
type EventKind string

const (
	KindUserText      EventKind = "user_text"
	KindAssistantText EventKind = "assistant_text"
	KindThinking      EventKind = "thinking"
	KindToolCall      EventKind = "tool_call"
	KindToolResult    EventKind = "tool_result"
	KindMeta          EventKind = "meta"
	KindUnknown       EventKind = "unknown"
)

// Actor labels used for section headers.
const (
	ActorUser      = "user"
	ActorAssistant = "assistant"
	ActorMeta      = "meta"
)

// Event is one normalized unit of session content. Every backend maps its
// raw schema onto this shape at parse time; the renderer and ranking engine
// never look at raw source records.
type Event struct {
	Kind       EventKind       `json:"kind"`
	Timestamp  time.Time       `json:"timestamp,omitempty"`
	Actor      string          `json:"actor"`
	Text       string          `json:"text,omitempty"`
	Structured json.RawMessage `json:"structured,omitempty"`
	ToolName   string          `json:"tool_name,omitempty"`
	ToolID     string          `json:"tool_id,omitempty"`

	// Label annotates meta events ("Session Meta", "Token Count") and names
	// the source shape for unknown events ("response_item:web_search").
	Label string `json:"label,omitempty"`

	// IsError marks failed tool results.
	IsError bool `json:"is_error,omitempty"`

	// SourceIndex is assigned monotonically at parse time and is the sole
	// ordering key. Events are never re-sorted by timestamp.
	SourceIndex int `json:"source_index"`
}

// HasText reports whether the event carries conversation text. Head/tail
// filtering and chat-mode turn dropping both key off this.
func (e Event) HasText() bool {
	return (e.Kind == KindUserText || e.Kind == KindAssistantText) && e.Text != ""
}

// HasTimestamp reports whether a source timestamp was present and parseable.
func (e Event) HasTimestamp() bool {
	return !e.Timestamp.IsZero()
}
