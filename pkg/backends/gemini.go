package backends

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/recaptools/recap/errors"
	"github.com/recaptools/recap/pkg/models"
)

// geminiParser reads Gemini CLI chat files: a single JSON object holding a
// messages array, not line-delimited. A malformed top-level document is
// fatal for the file since there is no line boundary to resume at.
type geminiParser struct {
	root string
}

type geminiSession struct {
	SessionID   string            `json:"sessionId"`
	ProjectHash string            `json:"projectHash"`
	StartTime   string            `json:"startTime"`
	Messages    []json.RawMessage `json:"messages"`
}

type geminiMessage struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Content   string          `json:"content"`
	Thoughts  []geminiThought `json:"thoughts"`
	ToolCalls []geminiCall    `json:"toolCalls"`
}

type geminiThought struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

type geminiCall struct {
	Name   string          `json:"name"`
	Args   json.RawMessage `json:"args"`
	Result json.RawMessage `json:"result"`
}

func (p *geminiParser) Backend() models.Backend { return models.BackendGemini }

func (p *geminiParser) CanInfer(path string) bool { return underRoot(path, p.root) }

func (p *geminiParser) Parse(r io.Reader, path string) ([]models.Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.UnreadableFile(path, err)
	}

	var session geminiSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.ParseFailure(path, jsonErrorOffset(err), err)
	}

	b := &eventBuilder{}
	for _, rawMsg := range session.Messages {
		var msg geminiMessage
		if err := json.Unmarshal(rawMsg, &msg); err != nil {
			b.add(unknownFromPayload("gemini:message", time.Time{}, rawMsg))
			continue
		}
		p.addMessage(b, rawMsg, msg)
	}
	return b.events, nil
}

func (p *geminiParser) addMessage(b *eventBuilder, rawMsg json.RawMessage, msg geminiMessage) {
	ts := parseTimestamp(msg.Timestamp)

	switch msg.Type {
	case "user":
		b.add(textEvent(models.ActorUser, ts, msg.Content))

	case "gemini":
		for _, thought := range msg.Thoughts {
			if thought.Description == "" {
				continue
			}
			text := thought.Description
			if thought.Subject != "" {
				text = "**" + thought.Subject + "**\n" + thought.Description
			}
			b.add(models.Event{
				Kind:      models.KindThinking,
				Actor:     models.ActorAssistant,
				Timestamp: ts,
				Text:      text,
			})
		}

		if msg.Content != "" {
			b.add(textEvent(models.ActorAssistant, ts, msg.Content))
		}

		for _, call := range msg.ToolCalls {
			b.add(models.Event{
				Kind:       models.KindToolCall,
				Actor:      models.ActorAssistant,
				Timestamp:  ts,
				ToolName:   call.Name,
				Structured: call.Args,
			})
			// Synthetic result built from the call's embedded result field.
			// A null or absent result is a valid empty payload, not an error.
			b.add(models.Event{
				Kind:       models.KindToolResult,
				Actor:      models.ActorAssistant,
				Timestamp:  ts,
				ToolName:   call.Name,
				Structured: call.Result,
				IsError:    geminiResultIsError(call.Result),
			})
		}

	case "error", "info":
		label := strings.ToUpper(msg.Type[:1]) + msg.Type[1:]
		content, _ := json.Marshal(msg.Content)
		b.add(metaEvent(ts, label, content))

	default:
		source := "gemini:" + msg.Type
		if msg.Type == "" {
			source = "gemini:untyped"
		}
		b.add(unknownFromPayload(source, ts, rawMsg))
	}
}

// geminiResultIsError reports whether the first result entry carries an
// error key instead of a functionResponse.
func geminiResultIsError(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil || len(entries) == 0 {
		return false
	}
	if _, ok := entries[0]["functionResponse"]; ok {
		return false
	}
	_, hasErr := entries[0]["error"]
	return hasErr
}

// jsonErrorOffset extracts the byte offset from a JSON decoding error, when
// the error type carries one.
func jsonErrorOffset(err error) int64 {
	switch e := err.(type) {
	case *json.SyntaxError:
		return e.Offset
	case *json.UnmarshalTypeError:
		return e.Offset
	}
	return 0
}
