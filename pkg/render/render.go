// Package render turns a canonical event sequence into a Markdown
// transcript under one of three fidelity modes.
//
// Each mode is a strict inclusion policy over event kinds; no mode
// re-parses, only filters and formats. Section order always follows the
// source index, never timestamps.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/recaptools/recap/pkg/models"
)

// TruncationMarker is the format appended to payloads cut at a size
// threshold; the argument is the original rune length.
const truncationMarker = "[TRUNCATED len=%d]"

const (
	// standardLimit bounds text payloads in chat and thoughts mode.
	standardLimit = 4000
	// verboseLimit is the hard ceiling for verbose mode. Verbose keeps
	// everything short of pathological payloads, but output stays bounded.
	verboseLimit = 200000
)

// Redactor is the optional substitution pass applied to payload strings
// before formatting. Implemented by pkg/redact.
type Redactor interface {
	Redact(string) string
	RedactJSON(json.RawMessage) json.RawMessage
	Level() string
}

// Options controls a single render pass.
type Options struct {
	Mode     models.Mode
	Redactor Redactor // nil disables redaction

	// Head and Tail keep only the first or last N text-bearing events,
	// preserving source order. Head wins when both are set.
	Head int
	Tail int
}

// Render writes the Markdown transcript for events to w. The path is used
// only for the title line.
func Render(w io.Writer, path string, events []models.Event, opts Options) error {
	mode := opts.Mode
	if !mode.Valid() {
		mode = models.ModeChat
	}

	if err := writeHeader(w, path, mode, opts.Redactor); err != nil {
		return err
	}

	events = applyHeadTail(events, opts.Head, opts.Tail)

	for _, event := range events {
		if !includes(mode, event.Kind) {
			continue
		}
		body := renderBody(event, mode, opts.Redactor)
		if body == "" {
			continue
		}
		heading := fmt.Sprintf("## %s (%s)\n\n", titleActor(event.Actor), headingTimestamp(event))
		if _, err := io.WriteString(w, heading+body+"\n\n---\n\n"); err != nil {
			return err
		}
	}
	return nil
}

// RenderString renders to a string; convenience for tests and callers that
// post-process the document.
func RenderString(path string, events []models.Event, opts Options) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, path, events, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeHeader(w io.Writer, path string, mode models.Mode, red Redactor) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Transcript: %s\n", filepath.Base(path))
	fmt.Fprintf(&sb, "Mode: %s\n", mode)
	fmt.Fprintf(&sb, "Description: %s\n\n", mode.Description())
	if red != nil && red.Level() != "none" {
		fmt.Fprintf(&sb, "Redaction: %s\n", red.Level())
		sb.WriteString("WARNING: Redaction enabled (pattern-based; not guaranteed safe to share).\n")
		if red.Level() == "strict" {
			sb.WriteString("WARNING: Strict redaction may over-redact and remove useful context.\n")
		}
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// includes is the per-mode inclusion table. Chat keeps conversation text
// only; thoughts and verbose keep every kind, differing in how tool result
// bodies render.
func includes(mode models.Mode, kind models.EventKind) bool {
	if mode == models.ModeChat {
		return kind == models.KindUserText || kind == models.KindAssistantText
	}
	return true
}

func renderBody(event models.Event, mode models.Mode, red Redactor) string {
	limit := standardLimit
	if mode == models.ModeVerbose {
		limit = verboseLimit
	}

	switch event.Kind {
	case models.KindUserText, models.KindAssistantText:
		return truncate(redactText(red, event.Text), limit)

	case models.KindThinking:
		thinking := truncate(redactText(red, event.Text), limit)
		var sb strings.Builder
		sb.WriteString("> **Thinking**")
		for _, line := range strings.Split(thinking, "\n") {
			sb.WriteString("\n> " + line)
		}
		return sb.String()

	case models.KindToolCall:
		return fmt.Sprintf("**Tool Use: `%s`**\n%s",
			event.ToolName, jsonFence(redactJSON(red, event.Structured), limit))

	case models.KindToolResult:
		if mode == models.ModeThoughts {
			status := "Success"
			if event.IsError {
				status = "Error"
			}
			return fmt.Sprintf("_[Tool Result: %s - Output Omitted]_", status)
		}
		header := "**Tool Result**"
		if event.IsError {
			header = "**Tool Result (Error)**"
		}
		return header + "\n" + resultFence(redactJSON(red, event.Structured), limit)

	case models.KindMeta:
		label := event.Label
		if label == "" {
			label = "Meta"
		}
		return fmt.Sprintf("**%s**\n%s", label, jsonFence(redactJSON(red, event.Structured), limit))

	case models.KindUnknown:
		source := event.Label
		if source == "" {
			source = "unknown"
		}
		return fmt.Sprintf("**Unknown Block: `%s`**\n%s",
			source, jsonFence(redactJSON(red, event.Structured), limit))
	}
	return ""
}

// jsonFence renders a structured payload as an indented fenced JSON block.
func jsonFence(raw json.RawMessage, limit int) string {
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	body := string(raw)
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err == nil {
		body = buf.String()
	}
	return "```json\n" + truncate(body, limit) + "\n```"
}

// resultFence renders a tool result payload: plain string outputs as a text
// fence, everything else as the full JSON payload.
func resultFence(raw json.RawMessage, limit int) string {
	if len(raw) == 0 {
		return "```text\n\n```"
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return "```text\n" + truncate(asString, limit) + "\n```"
	}
	return jsonFence(raw, limit)
}

// applyHeadTail keeps only the first or last n text-bearing events. Events
// between kept ones are removed as well, matching the conversational
// head/tail semantics of the CLI flags.
func applyHeadTail(events []models.Event, head, tail int) []models.Event {
	if head <= 0 && tail <= 0 {
		return events
	}

	var textIdx []int
	for i, e := range events {
		if e.HasText() {
			textIdx = append(textIdx, i)
		}
	}

	keep := make(map[int]bool)
	if head > 0 {
		if head > len(textIdx) {
			head = len(textIdx)
		}
		for _, i := range textIdx[:head] {
			keep[i] = true
		}
	} else {
		if tail > len(textIdx) {
			tail = len(textIdx)
		}
		for _, i := range textIdx[len(textIdx)-tail:] {
			keep[i] = true
		}
	}

	var out []models.Event
	for i, e := range events {
		if keep[i] {
			out = append(out, e)
		}
	}
	return out
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "\n" + fmt.Sprintf(truncationMarker, len(runes))
}

func headingTimestamp(event models.Event) string {
	if !event.HasTimestamp() {
		return "unknown time"
	}
	return event.Timestamp.Local().Format("2006-01-02 15:04:05")
}

func titleActor(actor string) string {
	if actor == "" {
		return "Unknown"
	}
	return strings.ToUpper(actor[:1]) + actor[1:]
}

func redactText(red Redactor, s string) string {
	if red == nil {
		return s
	}
	return red.Redact(s)
}

func redactJSON(red Redactor, raw json.RawMessage) json.RawMessage {
	if red == nil {
		return raw
	}
	return red.RedactJSON(raw)
}
