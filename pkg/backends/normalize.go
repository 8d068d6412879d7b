package backends

import (
	"bufio"
	"encoding/json"
	"io"
	"time"

	"github.com/recaptools/recap/pkg/models"
)

// eventBuilder assigns source indices as events are emitted. The index is
// the sole ordering key downstream; timestamps never reorder events.
type eventBuilder struct {
	next   int
	events []models.Event
}

func (b *eventBuilder) add(e models.Event) {
	e.SourceIndex = b.next
	b.next++
	b.events = append(b.events, e)
}

// parseTimestamp parses the timestamp formats observed across backends
// (RFC3339 with or without fractional seconds, Z or offset). Unparseable
// values degrade to the zero time, never to an error.
func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Time{}
}

// parseJSONMaybe interprets s as JSON when possible, otherwise wraps it as
// a JSON string. Codex stores tool-call arguments as a JSON-encoded string;
// Gemini stores them natively.
func parseJSONMaybe(s string) json.RawMessage {
	trimmed := []byte(s)
	if json.Valid(trimmed) && len(s) > 0 {
		return json.RawMessage(trimmed)
	}
	quoted, err := json.Marshal(s)
	if err != nil {
		return json.RawMessage(`""`)
	}
	return json.RawMessage(quoted)
}

// unknownFromLine wraps an unparseable line as an unknown event with an
// error marker. The raw line text is preserved verbatim.
func unknownFromLine(line string, parseErr error) models.Event {
	payload, _ := json.Marshal(map[string]string{
		"error": parseErr.Error(),
		"raw":   line,
	})
	return models.Event{
		Kind:       models.KindUnknown,
		Actor:      models.ActorMeta,
		Label:      "invalid_json",
		Structured: payload,
	}
}

// unknownFromPayload wraps a syntactically valid but structurally
// unrecognized block as an unknown event. source names the shape that
// failed classification.
func unknownFromPayload(source string, timestamp time.Time, raw json.RawMessage) models.Event {
	structured := raw
	if len(structured) == 0 {
		structured = json.RawMessage("null")
	}
	return models.Event{
		Kind:       models.KindUnknown,
		Actor:      models.ActorMeta,
		Timestamp:  timestamp,
		Label:      source,
		Structured: structured,
	}
}

// newScanner builds a line scanner sized for large payloads such as
// embedded instructions blocks.
func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	const maxCapacity = 8 * 1024 * 1024
	buf := make([]byte, 1024)
	scanner.Buffer(buf, maxCapacity)
	return scanner
}
