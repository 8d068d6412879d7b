package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recaptools/recap/pkg/backends"
	"github.com/recaptools/recap/pkg/models"
)

func ts(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func sampleEvents() []models.Event {
	return []models.Event{
		{Kind: models.KindMeta, Actor: models.ActorMeta, Label: "Session Meta", Structured: json.RawMessage(`{"cwd":"/work"}`), SourceIndex: 0},
		{Kind: models.KindUserText, Actor: models.ActorUser, Timestamp: ts("2026-02-08T14:20:00Z"), Text: "run the tests", SourceIndex: 1},
		{Kind: models.KindThinking, Actor: models.ActorAssistant, Timestamp: ts("2026-02-08T14:20:01Z"), Text: "need to run go test", SourceIndex: 2},
		{Kind: models.KindToolCall, Actor: models.ActorAssistant, Timestamp: ts("2026-02-08T14:20:02Z"), ToolName: "shell", ToolID: "call_1", Structured: json.RawMessage(`{"command":["go","test","./..."]}`), SourceIndex: 3},
		{Kind: models.KindToolResult, Actor: models.ActorAssistant, Timestamp: ts("2026-02-08T14:20:03Z"), ToolID: "call_1", Structured: json.RawMessage(`"ok \trecap/pkg/render 0.3s"`), SourceIndex: 4},
		{Kind: models.KindAssistantText, Actor: models.ActorAssistant, Timestamp: ts("2026-02-08T14:20:04Z"), Text: "All tests pass.", SourceIndex: 5},
	}
}

func renderMode(t *testing.T, mode models.Mode) string {
	t.Helper()
	out, err := RenderString("session.jsonl", sampleEvents(), Options{Mode: mode})
	require.NoError(t, err)
	return out
}

func TestRenderHeader(t *testing.T) {
	out := renderMode(t, models.ModeChat)
	assert.True(t, strings.HasPrefix(out, "# Transcript: session.jsonl\n"))
	assert.Contains(t, out, "Mode: chat\n")
	assert.Contains(t, out, "Description: "+models.ModeChat.Description())
	assert.NotContains(t, out, "Redaction:")
}

func TestChatModeKeepsConversationOnly(t *testing.T) {
	out := renderMode(t, models.ModeChat)

	assert.Contains(t, out, "run the tests")
	assert.Contains(t, out, "All tests pass.")
	assert.NotContains(t, out, "Thinking")
	assert.NotContains(t, out, "Tool Use")
	assert.NotContains(t, out, "Session Meta")
	assert.NotContains(t, out, "go test")
}

func TestThoughtsModeSummarizesToolResults(t *testing.T) {
	out := renderMode(t, models.ModeThoughts)

	assert.Contains(t, out, "> **Thinking**\n> need to run go test")
	assert.Contains(t, out, "**Tool Use: `shell`**")
	assert.Contains(t, out, "_[Tool Result: Success - Output Omitted]_")
	assert.NotContains(t, out, "recap/pkg/render 0.3s")
}

func TestVerboseModeKeepsFullOutputs(t *testing.T) {
	out := renderMode(t, models.ModeVerbose)

	assert.Contains(t, out, "**Tool Result**\n```text\nok \trecap/pkg/render 0.3s\n```")
	assert.Contains(t, out, "**Session Meta**")
	assert.Contains(t, out, `"cwd": "/work"`)
}

func TestModeMonotonicity(t *testing.T) {
	sections := func(mode models.Mode) int {
		return strings.Count(renderMode(t, mode), "\n## ")
	}
	chat, thoughts, verbose := sections(models.ModeChat), sections(models.ModeThoughts), sections(models.ModeVerbose)
	assert.LessOrEqual(t, chat, thoughts)
	assert.LessOrEqual(t, thoughts, verbose)
}

func TestRenderOrderFollowsSourceIndex(t *testing.T) {
	// Later timestamp first in the slice; output must keep slice order.
	events := []models.Event{
		{Kind: models.KindUserText, Actor: models.ActorUser, Timestamp: ts("2026-02-08T18:00:00Z"), Text: "alpha", SourceIndex: 0},
		{Kind: models.KindUserText, Actor: models.ActorUser, Timestamp: ts("2026-02-08T12:00:00Z"), Text: "omega", SourceIndex: 1},
	}
	out, err := RenderString("s.jsonl", events, Options{Mode: models.ModeChat})
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "alpha"), strings.Index(out, "omega"))
}

func TestErrorToolResultHeader(t *testing.T) {
	events := []models.Event{
		{Kind: models.KindToolResult, Actor: models.ActorAssistant, IsError: true, Structured: json.RawMessage(`"no such file"`)},
	}
	out, err := RenderString("s.jsonl", events, Options{Mode: models.ModeVerbose})
	require.NoError(t, err)
	assert.Contains(t, out, "**Tool Result (Error)**")

	out, err = RenderString("s.jsonl", events, Options{Mode: models.ModeThoughts})
	require.NoError(t, err)
	assert.Contains(t, out, "_[Tool Result: Error - Output Omitted]_")
}

func TestTruncationMarker(t *testing.T) {
	long := strings.Repeat("x", standardLimit+100)
	events := []models.Event{
		{Kind: models.KindUserText, Actor: models.ActorUser, Text: long},
	}
	out, err := RenderString("s.jsonl", events, Options{Mode: models.ModeChat})
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("[TRUNCATED len=%d]", standardLimit+100))
	assert.NotContains(t, out, long)

	// Verbose keeps it whole below its own ceiling.
	out, err = RenderString("s.jsonl", events, Options{Mode: models.ModeVerbose})
	require.NoError(t, err)
	assert.Contains(t, out, long)
	assert.NotContains(t, out, "[TRUNCATED")
}

func TestVerboseHardCeiling(t *testing.T) {
	huge := strings.Repeat("y", verboseLimit+50)
	events := []models.Event{
		{Kind: models.KindUserText, Actor: models.ActorUser, Text: huge},
	}
	out, err := RenderString("s.jsonl", events, Options{Mode: models.ModeVerbose})
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("[TRUNCATED len=%d]", verboseLimit+50))
	assert.NotContains(t, out, huge)
}

func TestMissingTimestampHeading(t *testing.T) {
	events := []models.Event{
		{Kind: models.KindUserText, Actor: models.ActorUser, Text: "no clock"},
	}
	out, err := RenderString("s.jsonl", events, Options{Mode: models.ModeChat})
	require.NoError(t, err)
	assert.Contains(t, out, "## User (unknown time)")
}

func TestUnknownEventsRenderedVerbatim(t *testing.T) {
	events := []models.Event{
		{Kind: models.KindUnknown, Actor: models.ActorMeta, Label: "claude:summary", Structured: json.RawMessage(`{"summary":"compacted"}`)},
	}
	out, err := RenderString("s.jsonl", events, Options{Mode: models.ModeVerbose})
	require.NoError(t, err)
	assert.Contains(t, out, "**Unknown Block: `claude:summary`**")
	assert.Contains(t, out, `"summary": "compacted"`)

	// Chat hides it entirely.
	out, err = RenderString("s.jsonl", events, Options{Mode: models.ModeChat})
	require.NoError(t, err)
	assert.NotContains(t, out, "compacted")
}

func TestHeadTail(t *testing.T) {
	var events []models.Event
	for i := 0; i < 5; i++ {
		events = append(events, models.Event{
			Kind:        models.KindUserText,
			Actor:       models.ActorUser,
			Text:        fmt.Sprintf("message %d", i),
			SourceIndex: i,
		})
	}

	out, err := RenderString("s.jsonl", events, Options{Mode: models.ModeChat, Head: 2})
	require.NoError(t, err)
	assert.Contains(t, out, "message 0")
	assert.Contains(t, out, "message 1")
	assert.NotContains(t, out, "message 4")

	out, err = RenderString("s.jsonl", events, Options{Mode: models.ModeChat, Tail: 2})
	require.NoError(t, err)
	assert.NotContains(t, out, "message 0")
	assert.Contains(t, out, "message 3")
	assert.Contains(t, out, "message 4")
}

func TestCodexSessionAcrossModes(t *testing.T) {
	raw := strings.Join([]string{
		`{"timestamp":"2026-02-08T14:20:00Z","type":"session_meta","payload":{"id":"s1","cwd":"/work"}}`,
		`{"timestamp":"2026-02-08T14:20:01Z","type":"event_msg","payload":{"type":"user_message","message":"can you quickly test the context7 mcp"}}`,
		`{"timestamp":"2026-02-08T14:20:01Z","type":"event_msg","payload":{"type":"user_message","message":"can you quickly test the context7 mcp"}}`,
		`{"timestamp":"2026-02-08T14:20:02Z","type":"response_item","payload":{"type":"reasoning","summary":[{"type":"summary_text","text":"try the resolver"}]}}`,
		`{"timestamp":"2026-02-08T14:20:03Z","type":"response_item","payload":{"type":"function_call","name":"resolve-library-id","arguments":"{\"libraryName\":\"context7\"}","call_id":"c1"}}`,
		`{"timestamp":"2026-02-08T14:20:04Z","type":"response_item","payload":{"type":"function_call_output","call_id":"c1","output":"[{\"id\":\"/upstash/context7\"}]"}}`,
		`{"timestamp":"2026-02-08T14:20:05Z","type":"event_msg","payload":{"type":"agent_message","message":"It works."}}`,
	}, "\n")

	parser, err := backends.New(models.BackendCodex, nil)
	require.NoError(t, err)
	events, err := parser.Parse(strings.NewReader(raw), "rollout.jsonl")
	require.NoError(t, err)

	chat, err := RenderString("rollout.jsonl", events, Options{Mode: models.ModeChat})
	require.NoError(t, err)
	// Both duplicate user lines survive; nothing de-duplicates.
	assert.Equal(t, 2, strings.Count(chat, "can you quickly test the context7 mcp"))
	assert.Contains(t, chat, "It works.")
	assert.NotContains(t, chat, "resolve-library-id")
	assert.NotContains(t, chat, "Session Meta")

	thoughts, err := RenderString("rollout.jsonl", events, Options{Mode: models.ModeThoughts})
	require.NoError(t, err)
	assert.Contains(t, thoughts, "> **Thinking**\n> try the resolver")
	assert.Contains(t, thoughts, "**Tool Use: `resolve-library-id`**")
	assert.Contains(t, thoughts, "_[Tool Result: Success - Output Omitted]_")
	assert.NotContains(t, thoughts, "/upstash/context7")

	verbose, err := RenderString("rollout.jsonl", events, Options{Mode: models.ModeVerbose})
	require.NoError(t, err)
	assert.Contains(t, verbose, "/upstash/context7")
}

type fakeRedactor struct{}

func (fakeRedactor) Redact(s string) string { return strings.ReplaceAll(s, "secret", "XXX") }
func (fakeRedactor) RedactJSON(raw json.RawMessage) json.RawMessage {
	return json.RawMessage(strings.ReplaceAll(string(raw), "secret", "XXX"))
}
func (fakeRedactor) Level() string { return "standard" }

func TestRenderWithRedactor(t *testing.T) {
	events := []models.Event{
		{Kind: models.KindUserText, Actor: models.ActorUser, Text: "the secret word"},
	}
	out, err := RenderString("s.jsonl", events, Options{Mode: models.ModeChat, Redactor: fakeRedactor{}})
	require.NoError(t, err)
	assert.Contains(t, out, "Redaction: standard")
	assert.Contains(t, out, "WARNING: Redaction enabled")
	assert.Contains(t, out, "the XXX word")
	assert.NotContains(t, out, "secret")
}
