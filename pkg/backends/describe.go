package backends

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/recaptools/recap/errors"
	"github.com/recaptools/recap/pkg/models"
)

// The describe path reads only enough of a file to fill a
// SessionDescriptor: backend-native id, start timestamp, filesystem mtime,
// and the first/last user text snippets. Tool payloads are never
// materialized.

var uuidRegex = regexp.MustCompile(`[0-9a-fA-F]{8}(?:-[0-9a-fA-F]{4}){3}-[0-9a-fA-F]{12}`)

func newDescriptor(path string, backend models.Backend) (*models.SessionDescriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.UnreadableFile(path, err)
	}
	return &models.SessionDescriptor{
		Backend:      backend,
		Path:         path,
		LastModified: info.ModTime(),
		SizeBytes:    info.Size(),
	}, nil
}

// recordUserText folds one user text fragment into the descriptor.
// Fragments that open with an angle bracket are injected command or system
// wrappers, not something the user typed.
func recordUserText(d *models.SessionDescriptor, text string) {
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(text, "<") {
		return
	}
	if d.EarliestUserSnippet == "" {
		d.EarliestUserSnippet = text
	}
	d.LatestUserSnippet = text
}

func recordStart(d *models.SessionDescriptor, ts time.Time) {
	if d.StartTime.IsZero() && !ts.IsZero() {
		d.StartTime = ts
	}
}

func stemID(path string, prefixes ...string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if m := uuidRegex.FindString(stem); m != "" {
		return m
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(stem, prefix) {
			return strings.TrimPrefix(stem, prefix)
		}
	}
	return stem
}

func (p *claudeParser) Describe(path string) (*models.SessionDescriptor, error) {
	d, err := newDescriptor(path, models.BackendClaude)
	if err != nil {
		return nil, err
	}
	d.SessionID = stemID(path, "agent-")

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.UnreadableFile(path, err)
	}
	defer file.Close()

	scanner := newScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec claudeLine
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		recordStart(d, parseTimestamp(rec.Timestamp))
		if rec.Type != "user" {
			continue
		}
		var msg claudeMessage
		if err := json.Unmarshal(rec.Message, &msg); err != nil {
			continue
		}
		recordUserText(d, claudeTextOnly(msg.Content))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.UnreadableFile(path, err)
	}
	return d, nil
}

// claudeTextOnly extracts plain text from a message content field without
// touching tool blocks.
func claudeTextOnly(content json.RawMessage) string {
	var asString string
	if err := json.Unmarshal(content, &asString); err == nil {
		return asString
	}
	var blocks []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(content, &blocks); err != nil {
		return ""
	}
	var parts []string
	for _, block := range blocks {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, " ")
}

func (p *codexParser) Describe(path string) (*models.SessionDescriptor, error) {
	d, err := newDescriptor(path, models.BackendCodex)
	if err != nil {
		return nil, err
	}
	d.SessionID = stemID(path, "rollout-")

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.UnreadableFile(path, err)
	}
	defer file.Close()

	scanner := newScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec codexLine
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		recordStart(d, parseTimestamp(rec.Timestamp))

		switch rec.Type {
		case "session_meta":
			var meta codexSessionMeta
			if err := json.Unmarshal(rec.Payload, &meta); err == nil {
				if meta.ID != "" {
					d.SessionID = meta.ID
				}
				recordStart(d, parseTimestamp(meta.Timestamp))
			}
		case "event_msg":
			var msg codexEventMsg
			if err := json.Unmarshal(rec.Payload, &msg); err == nil && msg.Type == "user_message" {
				text := msg.Text
				if text == "" {
					text = msg.Message
				}
				recordUserText(d, text)
			}
		case "response_item":
			var item codexResponseItem
			if err := json.Unmarshal(rec.Payload, &item); err != nil {
				continue
			}
			if item.Type != "message" {
				continue
			}
			for _, c := range item.Content {
				if item.Role == models.ActorUser || c.Type == "input_text" {
					recordUserText(d, c.Text)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.UnreadableFile(path, err)
	}
	return d, nil
}

func (p *geminiParser) Describe(path string) (*models.SessionDescriptor, error) {
	d, err := newDescriptor(path, models.BackendGemini)
	if err != nil {
		return nil, err
	}
	d.SessionID = stemID(path, "session-")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.UnreadableFile(path, err)
	}

	var session struct {
		SessionID string `json:"sessionId"`
		StartTime string `json:"startTime"`
		Messages  []struct {
			Type      string `json:"type"`
			Timestamp string `json:"timestamp"`
			Content   string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.ParseFailure(path, jsonErrorOffset(err), err)
	}

	if session.SessionID != "" {
		d.SessionID = session.SessionID
	}
	recordStart(d, parseTimestamp(session.StartTime))
	for _, msg := range session.Messages {
		recordStart(d, parseTimestamp(msg.Timestamp))
		if msg.Type == "user" {
			recordUserText(d, msg.Content)
		}
	}
	return d, nil
}
