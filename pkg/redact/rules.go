package redact

// builtinRules is the default substitution table. Placeholders are chosen
// so that no pattern in the table can match them again: replacements are
// uppercase with hyphens, patterns target lowercase domains, hex runs,
// addresses, and prefixed tokens. None of the patterns can consume
// backticks, braces, brackets, or double quotes.
var builtinRules = []RuleSpec{
	// Home directory paths.
	{Pattern: `/Users/[A-Za-z0-9._-]+`, Replace: `/Users/USER`},
	{Pattern: `/home/[A-Za-z0-9._-]+`, Replace: `/home/USER`},

	// Email addresses.
	{Pattern: `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`, Replace: `EMAIL-REDACTED`},

	// URL hosts; the path is kept.
	{Pattern: "(https?://)[^\\s/\"'<>`]+", Replace: `${1}HOST-REDACTED`},

	// Prefixed API tokens (sk-, ghp_, xoxb-, AKIA...).
	{Pattern: `\b(?:sk|pk|ghp|gho|ghu|xox[bap])[-_][A-Za-z0-9_-]{6,}\b`, Replace: `TOKEN-REDACTED`},
	{Pattern: `\bAKIA[A-Z0-9]{12,}\b`, Replace: `TOKEN-REDACTED`},

	// Strict: secret-looking key=value pairs. The value class excludes
	// quotes and structural characters so encoded JSON is never reshaped.
	{Pattern: `(?i)\b(api[_-]?key|token|secret|password|passwd|authorization)(\s*[=:]\s*)[A-Za-z0-9_\-./+]+`, Replace: `${1}${2}TOKEN-REDACTED`, Strict: true},

	// Strict: long hex runs (keys, digests).
	{Pattern: `\b[0-9a-fA-F]{32,}\b`, Replace: `TOKEN-REDACTED`, Strict: true},

	// Strict: bare IPv4 addresses and lowercase domains. Known to
	// over-redact dotted identifiers; accepted for strict.
	{Pattern: `\b\d{1,3}(?:\.\d{1,3}){3}\b`, Replace: `HOST-REDACTED`, Strict: true},
	{Pattern: `\b[a-z0-9][a-z0-9-]*(?:\.[a-z0-9][a-z0-9-]+)+\b`, Replace: `HOST-REDACTED`, Strict: true},
}
