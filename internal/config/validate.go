package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks the structural validity of a Config. The bot credential
// and application identifier are the only hard requirements: running
// without either would mean running with no identity, so startup aborts.
// Everything else collects into one joined error for a single report.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Discord.Token == "" {
		errs = append(errs, errors.New("config: DISCORD_BOT_TOKEN is required"))
	}
	if cfg.Discord.AppID == "" {
		errs = append(errs, errors.New("config: DISCORD_APP_ID is required"))
	}

	if cfg.Library.URL != "" {
		u, err := url.Parse(cfg.Library.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Errorf("config: library url must be a valid http/https URL, got %q", cfg.Library.URL))
		}
	}

	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log level %q", cfg.LogLevel))
	}

	return errors.Join(errs...)
}
