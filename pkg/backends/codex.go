package backends

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/recaptools/recap/pkg/models"
)

// codexParser reads Codex CLI rollout logs: JSONL with discriminated line
// types (session_meta, turn_context, event_msg, response_item).
type codexParser struct {
	root string
}

type codexLine struct {
	Timestamp string          `json:"timestamp"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

type codexSessionMeta struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
}

type codexEventMsg struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Message string `json:"message"`
}

type codexResponseItem struct {
	Type      string          `json:"type"`
	Role      string          `json:"role"`
	Name      string          `json:"name"`
	Arguments string          `json:"arguments"`
	CallID    string          `json:"call_id"`
	Output    json.RawMessage `json:"output"`
	Content   []codexContent  `json:"content"`
	Summary   json.RawMessage `json:"summary"`
}

type codexContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (p *codexParser) Backend() models.Backend { return models.BackendCodex }

func (p *codexParser) CanInfer(path string) bool { return underRoot(path, p.root) }

func (p *codexParser) Parse(r io.Reader, path string) ([]models.Event, error) {
	b := &eventBuilder{}
	scanner := newScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}

		var rec codexLine
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			b.add(unknownFromLine(line, err))
			continue
		}

		p.addLine(b, line, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.events, nil
}

func (p *codexParser) addLine(b *eventBuilder, line string, rec codexLine) {
	ts := parseTimestamp(rec.Timestamp)

	switch rec.Type {
	case "session_meta":
		if ts.IsZero() {
			var meta codexSessionMeta
			if err := json.Unmarshal(rec.Payload, &meta); err == nil {
				ts = parseTimestamp(meta.Timestamp)
			}
		}
		b.add(metaEvent(ts, "Session Meta", rec.Payload))
	case "turn_context":
		b.add(metaEvent(ts, "Turn Context", rec.Payload))
	case "event_msg":
		p.addEventMsg(b, ts, rec.Payload)
	case "response_item":
		p.addResponseItem(b, ts, rec.Payload)
	default:
		source := "codex:" + rec.Type
		if rec.Type == "" {
			source = "codex:untyped"
		}
		b.add(unknownFromPayload(source, ts, json.RawMessage(line)))
	}
}

func (p *codexParser) addEventMsg(b *eventBuilder, ts time.Time, payload json.RawMessage) {
	var msg codexEventMsg
	if err := json.Unmarshal(payload, &msg); err != nil {
		b.add(unknownFromPayload("event_msg", ts, payload))
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Message
	}

	switch msg.Type {
	case "user_message":
		b.add(textEvent(models.ActorUser, ts, text))
	case "agent_message":
		b.add(textEvent(models.ActorAssistant, ts, text))
	case "agent_reasoning":
		b.add(models.Event{
			Kind:      models.KindThinking,
			Actor:     models.ActorAssistant,
			Timestamp: ts,
			Text:      text,
		})
	case "token_count":
		b.add(metaEvent(ts, "Token Count", payload))
	default:
		b.add(unknownFromPayload("event_msg:"+msg.Type, ts, payload))
	}
}

func (p *codexParser) addResponseItem(b *eventBuilder, ts time.Time, payload json.RawMessage) {
	var item codexResponseItem
	if err := json.Unmarshal(payload, &item); err != nil {
		b.add(unknownFromPayload("response_item", ts, payload))
		return
	}

	switch item.Type {
	case "message":
		p.addMessageItem(b, ts, item)
	case "function_call", "custom_tool_call":
		b.add(models.Event{
			Kind:       models.KindToolCall,
			Actor:      models.ActorAssistant,
			Timestamp:  ts,
			ToolName:   item.Name,
			ToolID:     item.CallID,
			Structured: parseJSONMaybe(item.Arguments),
		})
	case "function_call_output", "custom_tool_call_output":
		b.add(models.Event{
			Kind:       models.KindToolResult,
			Actor:      models.ActorAssistant,
			Timestamp:  ts,
			ToolID:     item.CallID,
			Structured: item.Output,
		})
	case "reasoning":
		thinking := codexSummaryText(item.Summary)
		if thinking == "" {
			thinking = "[Reasoning summary unavailable]"
		}
		b.add(models.Event{
			Kind:      models.KindThinking,
			Actor:     models.ActorAssistant,
			Timestamp: ts,
			Text:      thinking,
		})
	default:
		b.add(unknownFromPayload("response_item:"+item.Type, ts, payload))
	}
}

// addMessageItem handles response_item messages. When the payload names a
// role, content item texts collapse into one event; otherwise each item
// becomes its own event with the role implied by the item type.
func (p *codexParser) addMessageItem(b *eventBuilder, ts time.Time, item codexResponseItem) {
	if item.Role != "" {
		var parts []string
		for _, c := range item.Content {
			if c.Text != "" {
				parts = append(parts, c.Text)
			}
		}
		text := strings.TrimSpace(strings.Join(parts, "\n"))
		if text == "" {
			return
		}
		b.add(textEvent(item.Role, ts, text))
		return
	}

	for _, c := range item.Content {
		if c.Text == "" {
			continue
		}
		actor := models.ActorAssistant
		if c.Type == "input_text" {
			actor = models.ActorUser
		}
		b.add(textEvent(actor, ts, c.Text))
	}
}

// codexSummaryText flattens a reasoning summary, which may be a list of
// text items or a plain string.
func codexSummaryText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var items []codexContent
	if err := json.Unmarshal(raw, &items); err == nil {
		var parts []string
		for _, item := range items {
			if item.Text != "" {
				parts = append(parts, item.Text)
			}
		}
		return strings.TrimSpace(strings.Join(parts, "\n"))
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	return ""
}

func metaEvent(ts time.Time, label string, payload json.RawMessage) models.Event {
	structured := payload
	if len(structured) == 0 {
		structured = json.RawMessage("null")
	}
	return models.Event{
		Kind:       models.KindMeta,
		Actor:      models.ActorMeta,
		Timestamp:  ts,
		Label:      label,
		Structured: structured,
	}
}
