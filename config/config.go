// Package config holds the resolved runtime configuration for recap.
//
// Environment lookups happen exactly once, at process start, inside
// ResolveRoots; the core packages receive the resulting Roots value and
// never read environment state themselves.
package config

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/recaptools/recap/errors"
	"github.com/recaptools/recap/pkg/models"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Roots maps each backend to its resolved session storage root.
type Roots map[models.Backend]string

// RedactionRule is one externally-configured pattern -> placeholder
// substitution. Patterns are Go regular expressions.
type RedactionRule struct {
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
	Replace string `yaml:"replace" mapstructure:"replace"`
	// Strict marks rules that only apply at the strict level.
	Strict bool `yaml:"strict,omitempty" mapstructure:"strict"`
}

// Config is the top-level recap.yml structure.
type Config struct {
	Version string `yaml:"version,omitempty"`

	// Backends overrides the default storage root per backend.
	Backends map[string]string `yaml:"backends,omitempty"`

	// Redaction replaces the built-in rule tables when non-empty.
	Redaction []RedactionRule `yaml:"redaction,omitempty"`

	// Extensions captures unknown top-level sections so downstream tools can
	// piggyback on the same file.
	Extensions map[string]interface{} `yaml:",inline"`
}

// UnmarshalExtension decodes a named extension section into out.
func (c *Config) UnmarshalExtension(name string, out interface{}) error {
	raw, ok := c.Extensions[name]
	if !ok {
		return errors.New(errors.ErrCodeConfigNotFound, "extension section not found").
			WithDetail("section", name)
	}
	if err := mapstructure.Decode(raw, out); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to decode extension section").
			WithDetail("section", name)
	}
	return nil
}

// Load reads and parses a recap configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeConfigNotFound, "configuration file not found").
				WithDetail("path", path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses configuration data with ${VAR} expansion.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse config YAML")
	}
	return &cfg, nil
}

// expandEnvVars replaces ${VAR} references with environment values.
func expandEnvVars(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarRegex.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

// ResolveRoots resolves the storage root for every backend, in precedence
// order: config file entry, backend-specific environment override, platform
// default under the user's home directory.
func ResolveRoots(cfg *Config) Roots {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	defaults := Roots{
		models.BackendClaude: filepath.Join(home, ".claude", "projects"),
		models.BackendCodex:  filepath.Join(home, ".codex", "sessions"),
		models.BackendGemini: filepath.Join(home, ".gemini", "tmp"),
	}
	envVars := map[models.Backend]string{
		models.BackendClaude: "CLAUDE_LOG_DIR",
		models.BackendCodex:  "CODEX_LOG_DIR",
		models.BackendGemini: "GEMINI_LOG_DIR",
	}

	roots := make(Roots, len(defaults))
	for backend, def := range defaults {
		root := def
		if env := os.Getenv(envVars[backend]); env != "" {
			root = env
		}
		if cfg != nil {
			if override, ok := cfg.Backends[string(backend)]; ok && override != "" {
				root = override
			}
		}
		roots[backend] = root
	}
	return roots
}

// Strings returns the roots keyed by backend name, for error details.
func (r Roots) Strings() map[string]string {
	out := make(map[string]string, len(r))
	for backend, root := range r {
		out[string(backend)] = root
	}
	return out
}
