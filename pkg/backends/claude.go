package backends

import (
	"encoding/json"
	"io"
	"time"

	"github.com/recaptools/recap/pkg/models"
)

// claudeParser reads Claude Code project logs: JSONL with one user or
// assistant message object per line and nested content blocks.
type claudeParser struct {
	root string
}

type claudeLine struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Message   json.RawMessage `json:"message"`
}

type claudeMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type claudeBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	Thinking  string          `json:"thinking"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	Content   json.RawMessage `json:"content"`
	IsError   bool            `json:"is_error"`
}

func (p *claudeParser) Backend() models.Backend { return models.BackendClaude }

func (p *claudeParser) CanInfer(path string) bool { return underRoot(path, p.root) }

func (p *claudeParser) Parse(r io.Reader, path string) ([]models.Event, error) {
	b := &eventBuilder{}
	scanner := newScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}

		var rec claudeLine
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

func (p *claudeParser) addLine(b *eventBuilder, line string, rec claudeLine) {
	ts := parseTimestamp(rec.Timestamp)

	if rec.Type != "user" && rec.Type != "assistant" {
		source := "claude:" + rec.Type
		if rec.Type == "" {
			source = "claude:untyped"
		}
		b.add(unknownFromPayload(source, ts, json.RawMessage(line)))
		return
	}

	var msg claudeMessage
	if err := json.Unmarshal(rec.Message, &msg); err != nil || len(msg.Content) == 0 {
		b.add(unknownFromPayload("claude:"+rec.Type, ts, json.RawMessage(line)))
		return
	}

	actor := msg.Role
	if actor == "" {
		actor = rec.Type
	}

	// Content is either a plain string or a list of typed blocks.
	var asString string
	if err := json.Unmarshal(msg.Content, &asString); err == nil {
		b.add(textEvent(actor, ts, asString))
		return
	}

	var rawBlocks []json.RawMessage
	if err := json.Unmarshal(msg.Content, &rawBlocks); err != nil {
		b.add(unknownFromPayload("claude:"+rec.Type, ts, json.RawMessage(line)))
		return
	}

	for _, rawBlock := range rawBlocks {
		p.addBlock(b, actor, ts, rawBlock)
	}
}

func (p *claudeParser) addBlock(b *eventBuilder, actor string, ts time.Time, rawBlock json.RawMessage) {
	var block claudeBlock
	if err := json.Unmarshal(rawBlock, &block); err != nil {
		b.add(unknownFromPayload("claude:block", ts, rawBlock))
		return
	}

	switch block.Type {
	case "text":
		b.add(textEvent(actor, ts, block.Text))
	case "thinking":
		b.add(models.Event{
			Kind:      models.KindThinking,
			Actor:     models.ActorAssistant,
			Timestamp: ts,
			Text:      block.Thinking,
		})
	case "tool_use":
		b.add(models.Event{
			Kind:       models.KindToolCall,
			Actor:      models.ActorAssistant,
			Timestamp:  ts,
			ToolName:   block.Name,
			ToolID:     block.ID,
			Structured: block.Input,
		})
	case "tool_result":
		b.add(models.Event{
			Kind:       models.KindToolResult,
			Actor:      actor,
			Timestamp:  ts,
			ToolID:     block.ToolUseID,
			Structured: block.Content,
			IsError:    block.IsError,
		})
	default:
		source := "claude:block"
		if block.Type != "" {
			source = "claude:block:" + block.Type
		}
		b.add(unknownFromPayload(source, ts, rawBlock))
	}
}

func textEvent(actor string, ts time.Time, text string) models.Event {
	kind := models.KindAssistantText
	if actor == models.ActorUser {
		kind = models.KindUserText
	}
	return models.Event{
		Kind:      kind,
		Actor:     actor,
		Timestamp: ts,
		Text:      text,
	}
}
