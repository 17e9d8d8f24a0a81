// Package config handles configuration for the librarian bot. Settings
// are environment-sourced, with an optional YAML file underneath (the
// environment always wins) and `.env` support for development.
package config

// Config is the top-level configuration structure.
type Config struct {
	Discord DiscordConfig `yaml:"discord"`
	Library LibraryConfig `yaml:"library"`
	Access  AccessConfig  `yaml:"access"`
	Ops     OpsConfig     `yaml:"ops"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Trace enables the stdout trace exporter.
	Trace bool `yaml:"trace"`
}

// DiscordConfig identifies the bot on the platform. Token and AppID are
// the bot's identity; missing either aborts startup.
type DiscordConfig struct {
	Token string `yaml:"token"`
	AppID string `yaml:"app_id"`

	// ContactID, when set, is the user mentioned in server-denial notices.
	ContactID string `yaml:"contact_id"`
}

// LibraryConfig points at the document-retrieval backend.
type LibraryConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// AccessConfig governs the allow-list gate.
type AccessConfig struct {
	// DefaultAllow decides guilds absent from allowed-context.json.
	// Unset means allow.
	DefaultAllow *bool `yaml:"default_allow"`
}

// Allow resolves the default policy, defaulting to allow when unset.
func (c AccessConfig) Allow() bool {
	if c.DefaultAllow == nil {
		return true
	}
	return *c.DefaultAllow
}

// OpsConfig configures the operational HTTP endpoint.
type OpsConfig struct {
	// Addr is the listen address. Empty disables the endpoint.
	Addr string `yaml:"addr"`
}
