package errors

import (
	"fmt"
	"testing"
)

func TestRecapError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeEmptySession, "session is empty")
	if err.Code != ErrCodeEmptySession {
		t.Errorf("expected code %s, got %s", ErrCodeEmptySession, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeParseFailure, "parse failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	// Test Is function
	if !Is(wrapped, ErrCodeParseFailure) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeEmptySession) {
		t.Error("Is should return false for non-matching code")
	}

	// Test WithDetail
	detailed := err.WithDetail("path", "/tmp/x.jsonl").WithDetail("offset", 42)
	if detailed.Details["path"] != "/tmp/x.jsonl" {
		t.Error("WithDetail should add details")
	}
}

func TestErrorConstructors(t *testing.T) {
	err := ParseFailure("/tmp/session.json", 117, fmt.Errorf("unexpected end of JSON input"))
	if err.Code != ErrCodeParseFailure {
		t.Errorf("expected code %s, got %s", ErrCodeParseFailure, err.Code)
	}
	if err.Details["offset"] != int64(117) {
		t.Error("ParseFailure should include the byte offset")
	}

	infErr := BackendInference("/tmp/unknown.jsonl", map[string]string{
		"claude": "/home/u/.claude/projects",
		"codex":  "/home/u/.codex/sessions",
	})
	if infErr.Code != ErrCodeBackendInference {
		t.Errorf("expected code %s, got %s", ErrCodeBackendInference, infErr.Code)
	}
	if infErr.Details["root.claude"] != "/home/u/.claude/projects" {
		t.Error("BackendInference should name every known convention")
	}
	if infErr.Details["path"] != "/tmp/unknown.jsonl" {
		t.Error("BackendInference should name the attempted path")
	}
}
