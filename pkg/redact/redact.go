// Package redact implements a pure pattern -> placeholder substitution
// pass over payload strings.
//
// Properties the rule tables maintain: applying a redactor to its own
// output is a no-op, and no pattern can match Markdown fence delimiters or
// JSON structural characters, so redacted documents stay well-formed.
// Strict mode is documented as prone to over-redaction; that is an accepted
// tradeoff, not a defect.
package redact

import (
	"encoding/json"
	"regexp"

	"github.com/recaptools/recap/errors"
)

// Level selects a substitution table.
type Level string

const (
	LevelNone     Level = "none"
	LevelStandard Level = "standard"
	LevelStrict   Level = "strict"
)

// Valid reports whether l is a known redaction level.
func (l Level) Valid() bool {
	return l == LevelNone || l == LevelStandard || l == LevelStrict
}

// RuleSpec is the externally-configurable form of one substitution.
type RuleSpec struct {
	Pattern string
	Replace string
	// Strict restricts the rule to the strict level.
	Strict bool
}

type rule struct {
	pattern *regexp.Regexp
	replace string
}

// Redactor applies an ordered substitution table. The zero level (none) is
// the identity function.
type Redactor struct {
	level Level
	rules []rule
}

// New builds a redactor over the built-in rule tables. Strict is a strict
// superset of standard.
func New(level Level) *Redactor {
	r := &Redactor{level: level}
	if level == LevelNone {
		return r
	}
	for _, spec := range builtinRules {
		if spec.Strict && level != LevelStrict {
			continue
		}
		r.rules = append(r.rules, rule{
			pattern: regexp.MustCompile(spec.Pattern),
			replace: spec.Replace,
		})
	}
	return r
}

// NewFromSpecs builds a redactor from an external rule table, replacing the
// built-ins entirely.
func NewFromSpecs(level Level, specs []RuleSpec) (*Redactor, error) {
	r := &Redactor{level: level}
	if level == LevelNone {
		return r, nil
	}
	for _, spec := range specs {
		if spec.Strict && level != LevelStrict {
			continue
		}
		pattern, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid redaction pattern").
				WithDetail("pattern", spec.Pattern)
		}
		r.rules = append(r.rules, rule{pattern: pattern, replace: spec.Replace})
	}
	return r, nil
}

// Level returns the level name for document headers.
func (r *Redactor) Level() string { return string(r.level) }

// Redact applies every substitution to s.
func (r *Redactor) Redact(s string) string {
	for _, rule := range r.rules {
		s = rule.pattern.ReplaceAllString(s, rule.replace)
	}
	return s
}

// RedactJSON applies the substitutions to every string value inside a JSON
// payload, leaving structure, keys, and non-string scalars untouched. An
// undecodable payload is returned unchanged.
func (r *Redactor) RedactJSON(raw json.RawMessage) json.RawMessage {
	if len(r.rules) == 0 || len(raw) == 0 {
		return raw
	}
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return raw
	}
	redacted, err := json.Marshal(r.redactValue(value))
	if err != nil {
		return raw
	}
	return redacted
}

func (r *Redactor) redactValue(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return r.Redact(t)
	case []interface{}:
		for i, item := range t {
			t[i] = r.redactValue(item)
		}
		return t
	case map[string]interface{}:
		for k, item := range t {
			t[k] = r.redactValue(item)
		}
		return t
	}
	return v
}
