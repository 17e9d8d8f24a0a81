package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the optional configuration file name.
const DefaultFilename = "librarian.yaml"

// envPattern matches ${VAR} and ${VAR:-default} expressions.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// Load builds the configuration: `.env` (if present), the optional YAML
// file, then environment variable overrides, then defaults. Only a file
// that exists but cannot be parsed is an error — absence of every
// optional source leaves a pure-env configuration.
func Load(path string) (*Config, error) {
	// Development convenience; a missing .env is the normal case.
	_ = godotenv.Load()

	cfg := &Config{}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err == nil {
			expanded, err := expandEnv(raw)
			if err != nil {
				return nil, fmt.Errorf("config: expanding variables in %s: %w", path, err)
			}
			if err := yaml.Unmarshal(expanded, cfg); err != nil {
				return nil, fmt.Errorf("config: parsing %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)
	cfg.defaults()
	return cfg, nil
}

// findConfigFile searches standard locations for the config file.
// Search order: $XDG_CONFIG_HOME/librarian/librarian.yaml → ./librarian.yaml
func findConfigFile() string {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "librarian", DefaultFilename))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "librarian", DefaultFilename))
	}
	candidates = append(candidates, DefaultFilename)

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// applyEnv overrides file-sourced values with environment variables.
// The environment is the primary configuration surface; the file only
// fills what the environment leaves unset.
func applyEnv(cfg *Config) {
	setString(&cfg.Discord.Token, "DISCORD_BOT_TOKEN")
	setString(&cfg.Discord.AppID, "DISCORD_APP_ID")
	setString(&cfg.Discord.ContactID, "LIBRARIAN_CONTACT_ID")
	setString(&cfg.Library.URL, "LIBRARY_API_URL")
	setString(&cfg.Library.Token, "LIBRARY_API_TOKEN")
	setString(&cfg.Ops.Addr, "LIBRARIAN_OPS_ADDR")
	setString(&cfg.LogLevel, "LIBRARIAN_LOG_LEVEL")

	if v, ok := os.LookupEnv("LIBRARIAN_DEFAULT_ALLOW"); ok {
		b := Truthy(v)
		cfg.Access.DefaultAllow = &b
	}
	if v, ok := os.LookupEnv("LIBRARIAN_TRACE"); ok {
		cfg.Trace = Truthy(v)
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

// defaults applies default values to unset fields.
func (c *Config) defaults() {
	if c.Library.URL == "" {
		c.Library.URL = "http://localhost:3000"
	}
	if c.Ops.Addr == "" {
		c.Ops.Addr = ":8099"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Truthy reports whether s is an affirmative free-text flag value.
// Accepted: 1, true, yes (case-insensitive).
func Truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// expandEnv replaces ${VAR} and ${VAR:-default} patterns in raw YAML bytes.
// Returns an error listing all unresolved variables (no default, no env value).
func expandEnv(raw []byte) ([]byte, error) {
	var errs []error

	result := envPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		subs := envPattern.FindSubmatch(match)
		name := string(subs[1])
		hasDefault := len(subs) > 2 && subs[2] != nil
		defaultVal := ""
		if hasDefault {
			defaultVal = string(subs[2])
		}

		value, ok := os.LookupEnv(name)
		if ok {
			return []byte(value)
		}

		if hasDefault {
			return []byte(defaultVal)
		}

		errs = append(errs, fmt.Errorf("unresolved variable: %s", name))
		return match
	})

	return result, errors.Join(errs...)
}
