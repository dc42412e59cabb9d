package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mavwarf/favpack/internal/ico"
	"github.com/Mavwarf/favpack/internal/paths"
)

// DefaultPort is the port "favpack serve" listens on.
const DefaultPort = 8787

// DefaultMaxUploadBytes bounds uploaded images (5 MiB).
const DefaultMaxUploadBytes = 5 << 20

// Storage backends for the activity log.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// Hook types.
const (
	HookMQTT     = "mqtt"
	HookWebhook  = "webhook"
	HookDiscord  = "discord"
	HookSlack    = "slack"
	HookTelegram = "telegram"
	HookCommand  = "command"
)

// Credentials holds secret values for remote announcements.
type Credentials struct {
	DiscordWebhook string `json:"discord_webhook,omitempty"`
	SlackWebhook   string `json:"slack_webhook,omitempty"`
	TelegramToken  string `json:"telegram_token,omitempty"`
	TelegramChatID string `json:"telegram_chat_id,omitempty"`
	MQTTUsername   string `json:"mqtt_username,omitempty"`
	MQTTPassword   string `json:"mqtt_password,omitempty"`
}

// Manifest holds the site.webmanifest fields written into each pack.
type Manifest struct {
	Name            string `json:"name,omitempty"`
	ShortName       string `json:"short_name,omitempty"`
	ThemeColor      string `json:"theme_color,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
	Display         string `json:"display,omitempty"`
}

// Hook is one announcement run after a successful generation.
type Hook struct {
	Type     string            `json:"type"`                // "mqtt" | "webhook" | "discord" | "slack" | "telegram" | "command"
	When     string            `json:"when,omitempty"`      // "bundle" | "ico" | "png" | "" (always)
	Cooldown int               `json:"cooldown,omitempty"`  // seconds between runs per kind, 0 = none
	Message  string            `json:"message,omitempty"`   // type=mqtt|discord|slack|telegram|command
	Broker   string            `json:"broker,omitempty"`    // type=mqtt
	Topic    string            `json:"topic,omitempty"`     // type=mqtt
	ClientID string            `json:"client_id,omitempty"` // type=mqtt
	QoS      *int              `json:"qos,omitempty"`       // type=mqtt, nil = 0
	Retain   bool              `json:"retain,omitempty"`    // type=mqtt
	URL      string            `json:"url,omitempty"`       // type=webhook
	Headers  map[string]string `json:"headers,omitempty"`   // type=webhook
	Attach   bool              `json:"attach,omitempty"`    // type=discord|telegram
	Command  string            `json:"command,omitempty"`   // type=command
	Timeout  *int              `json:"timeout,omitempty"`   // type=command, seconds; nil = 10, 0 = none
}

// Config holds the top-level configuration.
type Config struct {
	Manifest       Manifest    `json:"manifest"`
	ArchiveName    string      `json:"archive_name,omitempty"`
	IcoSizes       []int       `json:"ico_sizes,omitempty"`
	MaxUploadBytes int64       `json:"max_upload_bytes,omitempty"`
	Port           int         `json:"port,omitempty"`
	Log            bool        `json:"log,omitempty"`
	Storage        string      `json:"storage,omitempty"`
	Hooks          []Hook      `json:"hooks,omitempty"`
	Credentials    Credentials `json:"credentials,omitempty"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	var c Config
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.MaxUploadBytes = DefaultMaxUploadBytes
	c.Port = DefaultPort
	c.Storage = StorageFile
}

// UnmarshalJSON sets defaults then decodes the JSON structure.
// Go's json.Unmarshal merges into existing struct fields, so only
// values present in JSON override the defaults.
func (c *Config) UnmarshalJSON(data []byte) error {
	c.setDefaults()
	type Alias Config
	return json.Unmarshal(data, (*Alias)(c))
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if len(c.IcoSizes) > 0 {
		if err := ico.ValidateSizes(c.IcoSizes); err != nil {
			return fmt.Errorf("ico_sizes: %w", err)
		}
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	switch c.Storage {
	case StorageFile, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage %q (want %q or %q)", c.Storage, StorageFile, StorageSQLite)
	}
	for i, h := range c.Hooks {
		if err := h.validate(c.Credentials); err != nil {
			return fmt.Errorf("hooks[%d]: %w", i, err)
		}
	}
	return nil
}

func (h Hook) validate(creds Credentials) error {
	switch h.When {
	case "", "bundle", "ico", "png":
	default:
		return fmt.Errorf("unknown when %q", h.When)
	}
	if h.Cooldown < 0 {
		return fmt.Errorf("cooldown %d must not be negative", h.Cooldown)
	}
	switch h.Type {
	case HookMQTT:
		if h.Broker == "" || h.Topic == "" {
			return errors.New("mqtt hook needs broker and topic")
		}
		if h.QoS != nil && (*h.QoS < 0 || *h.QoS > 2) {
			return fmt.Errorf("mqtt qos %d out of range", *h.QoS)
		}
	case HookWebhook:
		if h.URL == "" {
			return errors.New("webhook hook needs url")
		}
	case HookDiscord:
		if creds.DiscordWebhook == "" {
			return errors.New("discord hook needs credentials.discord_webhook")
		}
	case HookSlack:
		if creds.SlackWebhook == "" {
			return errors.New("slack hook needs credentials.slack_webhook")
		}
	case HookTelegram:
		if creds.TelegramToken == "" || creds.TelegramChatID == "" {
			return errors.New("telegram hook needs credentials.telegram_token and telegram_chat_id")
		}
	case HookCommand:
		if h.Command == "" {
			return errors.New("command hook needs command")
		}
		if h.Timeout != nil && *h.Timeout < 0 {
			return fmt.Errorf("command timeout %d must not be negative", *h.Timeout)
		}
	default:
		return fmt.Errorf("unknown hook type %q", h.Type)
	}
	return nil
}

// Load reads and parses a config file. It tries, in order:
//  1. explicitPath (if non-empty)
//  2. favpack-config.json next to the running binary
//  3. ~/.config/favpack/favpack-config.json (%APPDATA%\favpack on Windows)
//
// With no explicit path and no file found, Load returns Default().
func Load(explicitPath string) (Config, error) {
	if explicitPath != "" {
		return readConfig(explicitPath)
	}

	// Next to binary
	exe, err := os.Executable()
	if err == nil {
		p := filepath.Join(filepath.Dir(exe), paths.ConfigFileName)
		if _, err := os.Stat(p); err == nil {
			return readConfig(p)
		}
	}

	// User config directory
	if p := paths.ConfigPath(); p != "" {
		if _, err := os.Stat(p); err == nil {
			return readConfig(p)
		}
	}

	return Default(), nil
}

func readConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
