// Package settings persists user preferences: shortcut chords, page zoom, and
// session options. Pool sizing and readiness budgets are deliberately not
// settings; they ship as constants.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Setting keys.
const (
	KeyShortcutNewChat   = "shortcuts.new_chat"
	KeyShortcutNextChat  = "shortcuts.next_chat"
	KeyShortcutCloseChat = "shortcuts.close_chat"
	KeyShortcutFocus     = "shortcuts.focus_input"
	KeyZoom              = "zoom"
	KeyChatURL           = "chat_url"
	KeyStealth           = "stealth"
	KeyHeadless          = "headless"
	KeyUserScriptsDir    = "user_scripts_dir"
)

var knownKeys = []string{
	KeyShortcutNewChat,
	KeyShortcutNextChat,
	KeyShortcutCloseChat,
	KeyShortcutFocus,
	KeyZoom,
	KeyChatURL,
	KeyStealth,
	KeyHeadless,
	KeyUserScriptsDir,
}

// Settings wraps the config file. Values can be overridden per-invocation
// through CHATDECK_* environment variables.
type Settings struct {
	v    *viper.Viper
	path string
}

// Load reads the default config file, creating nothing: a missing file just
// yields defaults.
func Load() (*Settings, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(dir, "config.yaml"))
}

// LoadFrom reads the config file at path.
func LoadFrom(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CHATDECK")
	// Dotted keys become underscored env names: shortcuts.new_chat is
	// overridden by CHATDECK_SHORTCUTS_NEW_CHAT.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyShortcutNewChat, "cmd+n")
	v.SetDefault(KeyShortcutNextChat, "cmd+]")
	v.SetDefault(KeyShortcutCloseChat, "cmd+w")
	v.SetDefault(KeyShortcutFocus, "cmd+l")
	v.SetDefault(KeyZoom, 0.0)
	v.SetDefault(KeyChatURL, "")
	v.SetDefault(KeyStealth, false)
	v.SetDefault(KeyHeadless, false)
	v.SetDefault(KeyUserScriptsDir, "")

	// A missing file just yields defaults.
	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	return &Settings{v: v, path: path}, nil
}

// Keys returns every recognized setting key, sorted.
func Keys() []string {
	keys := append([]string(nil), knownKeys...)
	sort.Strings(keys)
	return keys
}

// IsKnown reports whether key is a recognized setting.
func IsKnown(key string) bool {
	for _, k := range knownKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the current value for key.
func (s *Settings) Get(key string) (any, error) {
	if !IsKnown(key) {
		return nil, fmt.Errorf("unknown setting %q", key)
	}
	return s.v.Get(key), nil
}

// Set updates key and persists the file.
func (s *Settings) Set(key, value string) error {
	if !IsKnown(key) {
		return fmt.Errorf("unknown setting %q", key)
	}
	s.v.Set(key, value)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// GetString returns key as a string.
func (s *Settings) GetString(key string) string { return s.v.GetString(key) }

// Zoom returns the configured page zoom, 0 meaning native.
func (s *Settings) Zoom() float64 { return s.v.GetFloat64(KeyZoom) }

// ChatURL returns the configured chat site URL, empty meaning the default.
func (s *Settings) ChatURL() string { return s.v.GetString(KeyChatURL) }

// Stealth reports whether sessions launch in stealth mode.
func (s *Settings) Stealth() bool { return s.v.GetBool(KeyStealth) }

// Headless reports whether sessions launch headless.
func (s *Settings) Headless() bool { return s.v.GetBool(KeyHeadless) }

// UserScriptsDir returns the extra page-scripts directory, or empty.
func (s *Settings) UserScriptsDir() string { return s.v.GetString(KeyUserScriptsDir) }

// Shortcuts returns the configured chord per shortcut key.
func (s *Settings) Shortcuts() map[string]string {
	return map[string]string{
		KeyShortcutNewChat:   s.v.GetString(KeyShortcutNewChat),
		KeyShortcutNextChat:  s.v.GetString(KeyShortcutNextChat),
		KeyShortcutCloseChat: s.v.GetString(KeyShortcutCloseChat),
		KeyShortcutFocus:     s.v.GetString(KeyShortcutFocus),
	}
}

// Path returns the config file location.
func (s *Settings) Path() string { return s.path }

func configDir() (string, error) {
	if dir := os.Getenv("CHATDECK_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "chatdeck"), nil
}
