package backends

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recaptools/recap/errors"
	"github.com/recaptools/recap/pkg/models"
)

const geminiFixture = `{
  "sessionId": "f47ac10b-58cc-4372-a567-0e02b2c3d479",
  "projectHash": "abc123",
  "startTime": "2026-02-08T09:00:00.000Z",
  "messages": [
    {"type": "user", "timestamp": "2026-02-08T09:00:01.000Z", "content": "summarize the repo"},
    {
      "type": "gemini",
      "timestamp": "2026-02-08T09:00:05.000Z",
      "content": "Here is a summary.",
      "thoughts": [{"subject": "Scanning", "description": "Reading the tree first."}],
      "toolCalls": [
        {"name": "list_directory", "args": {"path": "."}, "result": [{"functionResponse": {"name": "list_directory"}}]},
        {"name": "read_file", "args": {"path": "gone.txt"}, "result": null}
      ]
    },
    {"type": "error", "timestamp": "2026-02-08T09:00:10.000Z", "content": "quota exceeded"}
  ]
}`

func TestGeminiParse(t *testing.T) {
	p := &geminiParser{}
	events, err := p.Parse(strings.NewReader(geminiFixture), "session-1.json")
	require.NoError(t, err)
	require.Len(t, events, 8)

	assert.Equal(t, models.KindUserText, events[0].Kind)
	assert.Equal(t, "summarize the repo", events[0].Text)

	assert.Equal(t, models.KindThinking, events[1].Kind)
	assert.Equal(t, "**Scanning**\nReading the tree first.", events[1].Text)

	assert.Equal(t, models.KindAssistantText, events[2].Kind)
	assert.Equal(t, "Here is a summary.", events[2].Text)

	// Each tool call yields a call event plus a synthetic result event.
	assert.Equal(t, models.KindToolCall, events[3].Kind)
	assert.Equal(t, "list_directory", events[3].ToolName)
	assert.Equal(t, models.KindToolResult, events[4].Kind)
	assert.False(t, events[4].IsError)

	assert.Equal(t, models.KindToolCall, events[5].Kind)
	assert.Equal(t, "read_file", events[5].ToolName)

	// A null result is an empty payload, not an error.
	nullResult := events[6]
	assert.Equal(t, models.KindToolResult, nullResult.Kind)
	assert.False(t, nullResult.IsError)

	errMsg := events[7]
	assert.Equal(t, models.KindMeta, errMsg.Kind)
	assert.Equal(t, "Error", errMsg.Label)
	assert.Contains(t, string(errMsg.Structured), "quota exceeded")
}

func TestGeminiMalformedDocumentIsFatal(t *testing.T) {
	p := &geminiParser{}
	_, err := p.Parse(strings.NewReader(`{"sessionId": "x", "messages": [`), "broken.json")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeParseFailure, errors.GetCode(err))

	var recapErr *errors.RecapError
	require.ErrorAs(t, err, &recapErr)
	assert.Contains(t, recapErr.Details, "offset")
}

func TestGeminiResultErrorDetection(t *testing.T) {
	assert.False(t, geminiResultIsError(nil))
	assert.False(t, geminiResultIsError([]byte(`null`)))
	assert.False(t, geminiResultIsError([]byte(`[{"functionResponse":{"name":"x"}}]`)))
	assert.True(t, geminiResultIsError([]byte(`[{"error":"permission denied"}]`)))
}

func TestGeminiUnknownMessageTypePreserved(t *testing.T) {
	doc := `{"sessionId":"s","messages":[{"type":"quota_update","remaining":10}]}`
	p := &geminiParser{}
	events, err := p.Parse(strings.NewReader(doc), "session-2.json")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.KindUnknown, events[0].Kind)
	assert.Equal(t, "gemini:quota_update", events[0].Label)
}

func TestGeminiDescribe(t *testing.T) {
	dir := t.TempDir()
	path := writeLines(t, dir, "chats/session-20260208.json", geminiFixture)

	p := &geminiParser{}
	d, err := p.Describe(path)
	require.NoError(t, err)

	assert.Equal(t, models.BackendGemini, d.Backend)
	assert.Equal(t, "f47ac10b-58cc-4372-a567-0e02b2c3d479", d.SessionID)
	assert.Equal(t, "summarize the repo", d.LatestUserSnippet)
	assert.Equal(t, "summarize the repo", d.EarliestUserSnippet)
	assert.False(t, d.StartTime.IsZero())
}
