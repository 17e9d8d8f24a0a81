// Package access implements the guild/channel allow-list gate. A JSON
// document maps guild IDs to the channel IDs the bot may answer in; the
// gate decides, per interaction, whether it is permitted to run at all.
package access

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Filename is the well-known name of the allow-list document.
const Filename = "allowed-context.json"

// ContextList is the parsed allow-list document: guild ID → set of
// channel IDs. It is built once at startup and never mutated, so it is
// safe to read from concurrent event handlers without locking.
//
// A nil *ContextList means the document is absent, which allows every
// guild and channel. That is distinct from an empty document, where no
// guild is explicitly listed and the default policy decides.
type ContextList struct {
	source string
	guilds map[string]map[string]struct{}
}

// DefaultCandidates returns the paths probed for the allow-list document:
// the working directory, then its parent.
func DefaultCandidates() []string {
	return []string{
		Filename,
		filepath.Join("..", Filename),
	}
}

// Load reads the allow-list from the first candidate path that exists.
// It never fails: a missing document, an unreadable file, or a document
// of the wrong shape all yield nil (allow everywhere). Malformed input
// is logged and dropped rather than aborting startup — the bot fails
// open by design of record.
func Load(logger *slog.Logger, candidates ...string) *ContextList {
	if logger == nil {
		logger = slog.Default()
	}
	if len(candidates) == 0 {
		candidates = DefaultCandidates()
	}

	for _, path := range candidates {
		raw, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			logger.Warn("access: allow-list unreadable, allowing everywhere",
				"path", path,
				"error", err,
			)
			return nil
		}

		list, err := parse(raw)
		if err != nil {
			logger.Warn("access: allow-list malformed, allowing everywhere",
				"path", path,
				"error", err,
			)
			return nil
		}

		list.source = path
		logger.Info("access: allow-list loaded",
			"path", path,
			"guilds", len(list.guilds),
		)
		return list
	}

	return nil
}

// parse validates that raw is a JSON object whose every value is an
// array of strings, and builds the lookup sets.
func parse(raw []byte) (*ContextList, error) {
	trimmed := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(trimmed, []byte("{")) {
		return nil, errors.New("access: document is not a JSON object")
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("access: invalid JSON: %w", err)
	}

	list := &ContextList{
		guilds: make(map[string]map[string]struct{}, len(entries)),
	}
	for guildID, value := range entries {
		if !bytes.HasPrefix(bytes.TrimSpace(value), []byte("[")) {
			return nil, fmt.Errorf("access: guild %q: value is not an array", guildID)
		}
		var channels []string
		if err := json.Unmarshal(value, &channels); err != nil {
			return nil, fmt.Errorf("access: guild %q: %w", guildID, err)
		}

		set := make(map[string]struct{}, len(channels))
		for _, ch := range channels {
			set[ch] = struct{}{}
		}
		list.guilds[guildID] = set
	}

	return list, nil
}

// Absent reports whether no allow-list document was loaded.
func (l *ContextList) Absent() bool {
	return l == nil
}

// Source returns the path the document was loaded from, or "" when absent.
func (l *ContextList) Source() string {
	if l == nil {
		return ""
	}
	return l.source
}

// Guilds returns the number of explicitly listed guilds.
func (l *ContextList) Guilds() int {
	if l == nil {
		return 0
	}
	return len(l.guilds)
}

// GuildAllowed reports whether the bot may answer anywhere in the guild.
//
// Rules:
//   - Empty guild ID → deny (DMs are rejected before this check runs).
//   - Document absent → allow.
//   - Guild listed, with any channel set → allow.
//   - Guild unlisted → the default policy decides.
//
// Pure and deterministic: no I/O, no side effects.
func (l *ContextList) GuildAllowed(guildID string, defaultAllow bool) bool {
	if guildID == "" {
		return false
	}
	if l == nil {
		return true
	}
	if _, ok := l.guilds[guildID]; ok {
		return true
	}
	return defaultAllow
}

// ChannelAllowed reports whether the bot may answer in the channel.
// A channel can never be allowed when its guild is not: guild allowance
// bounds channel allowance.
//
// Rules:
//   - Empty guild or channel ID → deny.
//   - Document absent → allow.
//   - Guild denied → deny.
//   - Guild listed with an empty channel set → every channel allowed.
//   - Guild listed with channels → allow iff the channel is a member.
//   - Guild unlisted → the default policy decides (an unlisted guild,
//     if allowed at all, allows all its channels).
func (l *ContextList) ChannelAllowed(guildID, channelID string, defaultAllow bool) bool {
	if guildID == "" || channelID == "" {
		return false
	}
	if l == nil {
		return true
	}
	if !l.GuildAllowed(guildID, defaultAllow) {
		return false
	}

	channels, ok := l.guilds[guildID]
	if !ok {
		return defaultAllow
	}
	if len(channels) == 0 {
		return true
	}
	_, member := channels[channelID]
	return member
}
