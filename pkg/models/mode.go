package models

// Mode is a named fidelity level controlling which event kinds and payload
// details appear in rendered output.
type Mode string

const (
	ModeChat     Mode = "chat"
	ModeThoughts Mode = "thoughts"
	ModeVerbose  Mode = "verbose"
)

// ModeDescriptions feed both CLI help and the rendered document header.
var ModeDescriptions = map[Mode]string{
	ModeChat:     "Conversation text only. No thinking blocks or tool details.",
	ModeThoughts: "Logic flow. Includes thinking and tool usage. Tool outputs are summarized.",
	ModeVerbose:  "Full record. Includes all thinking, tool usage, and full tool outputs.",
}

// Valid reports whether m is a known rendering mode.
func (m Mode) Valid() bool {
	_, ok := ModeDescriptions[m]
	return ok
}

// Description returns the one-line mode description.
func (m Mode) Description() string {
	return ModeDescriptions[m]
}
