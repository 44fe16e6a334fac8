package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"weave/internal/router"
)

// Config is weave's on-disk configuration: the knobs spec §6 lists as
// "consumed, not defined" by the core — scrollback cap, default shell,
// a resolved keybinding table, a theme placeholder, and the on-pane-exit
// policy. Grounded on dcosson-h2/internal/config/config.go's Config/Load/
// LoadFrom/validate shape; re-scoped from h2's per-user Telegram/macOS-
// notify bridge settings (an AI-coding-agent bridge concern with no
// terminal-multiplexer analogue) to this module's own domain.
type Config struct {
	ScrollbackLines int                          `yaml:"scrollback_lines"`
	Shell           string                       `yaml:"shell"`
	PrefixKey       string                       `yaml:"prefix_key"`
	AutoCloseOnExit bool                         `yaml:"auto_close_on_exit"`
	EventLog        bool                         `yaml:"event_log"`
	Theme           ThemeConfig                  `yaml:"theme"`
	Keybindings     map[string]map[string]string `yaml:"keybindings"`
}

// ThemeConfig holds border colors loaded from the config file. The screen
// compositor does not read them; its border styles are fixed in render.go.
// A placeholder in the sense that spec §6 names a "theme" knob but defines
// no color-table schema beyond focused/unfocused pane borders; richer
// theming (256-color palettes, per-element overrides) is a natural
// follow-on this struct can grow into without a breaking change.
type ThemeConfig struct {
	BorderFocused   string `yaml:"border_focused"`
	BorderUnfocused string `yaml:"border_unfocused"`
}

// Default returns the built-in configuration applied before any on-disk
// config.yaml is merged in.
func Default() *Config {
	return &Config{
		ScrollbackLines: 10000,
		Shell:           defaultShell(),
		PrefixKey:       "C-b",
		AutoCloseOnExit: false,
		EventLog:        true,
		Theme: ThemeConfig{
			BorderFocused:   "\033[1;36m",
			BorderUnfocused: "\033[2m",
		},
	}
}

func defaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

// ConfigDir returns weave's configuration directory (~/.weave/), or
// WEAVE_DIR if set.
func ConfigDir() string {
	if dir := os.Getenv("WEAVE_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".weave")
	}
	return filepath.Join(home, ".weave")
}

// LogPath returns the path of a named session's JSONL event log, under
// ConfigDir()'s "logs" subdirectory.
func LogPath(name string) string {
	return filepath.Join(ConfigDir(), "logs", name+".jsonl")
}

// Load reads weave's config from ~/.weave/config.yaml, merged over
// Default(). If the file does not exist, Default() is returned unmodified.
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(ConfigDir(), "config.yaml"))
}

// LoadFrom reads and merges a config file at the given path over
// Default(). If the file does not exist, Default() is returned unmodified.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var shellPathRe = regexp.MustCompile(`^[^\x00]+$`)

func (c *Config) validate() error {
	if c.ScrollbackLines < 0 {
		return fmt.Errorf("scrollback_lines: must be >= 0, got %d", c.ScrollbackLines)
	}
	if c.Shell != "" && !shellPathRe.MatchString(c.Shell) {
		return fmt.Errorf("shell: invalid path %q", c.Shell)
	}
	for mode, bindings := range c.Keybindings {
		if _, ok := router.ModeByName(mode); !ok {
			return fmt.Errorf("keybindings: unknown mode %q", mode)
		}
		for key, action := range bindings {
			if _, ok := router.ActionByName(action); !ok {
				return fmt.Errorf("keybindings: mode %q: key %q: unknown action %q", mode, key, action)
			}
		}
	}
	return nil
}

// ApplyKeybindings overrides r's default bindings with every mode/key/
// action triple named in c.Keybindings and, if set, c.PrefixKey. Callers
// typically do this once at daemon startup for each new Router.
func (c *Config) ApplyKeybindings(r *router.Router) {
	if c.PrefixKey != "" {
		r.SetPrefixKey(c.PrefixKey)
	}
	for modeName, bindings := range c.Keybindings {
		mode, ok := router.ModeByName(modeName)
		if !ok {
			continue // already rejected by validate() for loaded configs
		}
		for key, actionName := range bindings {
			action, ok := router.ActionByName(actionName)
			if !ok {
				continue
			}
			r.Bind(mode, key, action)
		}
	}
}
